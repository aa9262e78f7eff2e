// internal/utils/money.go
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EurosToCents converts a euro-decimal string ("45.50", "45,50") to
// integer cents, rounding half away from zero. Monetary arithmetic in
// the rest of the system is integer-only; this conversion exists solely
// at the UI edge.
func EurosToCents(value string) (int64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	euros, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	return int64(math.Round(euros * 100)), nil
}

// CentsToEuros formats integer cents as a euro-decimal string.
func CentsToEuros(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}
