// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

var (
	ErrSeasonNotFound     = errors.New("no active season configured")
	ErrOfferingNotFound   = errors.New("offering not found for the requested combination")
	ErrInvalidSupplements = errors.New("one or more selected supplements are invalid")
	ErrCourseNotFound     = errors.New("course not found")
	ErrTierNotFound       = errors.New("course price tier not available")
	ErrCourseFull         = errors.New("no spots remaining for this course")
	ErrOrderNotFound      = errors.New("order not found")
	ErrLicenseFileMissing = errors.New("uploaded license file not found")
)

// GatewayError wraps a payment gateway failure so handlers can surface
// the underlying gateway message with a 502.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway error: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
