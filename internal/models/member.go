// internal/models/member.go
package models

import (
	"strings"
	"time"
)

// Member holds applicant identity data, keyed by the national ID.
// Rows are upserted on every checkout and never deleted while an order
// references them.
type Member struct {
	BaseModel
	DNI       string     `json:"dni" gorm:"size:20;not null;uniqueIndex"`
	FirstName string     `json:"first_name" gorm:"size:100;not null"`
	LastName  string     `json:"last_name" gorm:"size:150;not null"`
	Email     string     `json:"email" gorm:"size:255;not null"`
	Phone     string     `json:"phone" gorm:"size:30"`
	BirthDate *time.Time `json:"birth_date"`
	Address   string     `json:"address" gorm:"size:255"`

	Memberships   []Membership         `json:"memberships,omitempty" gorm:"foreignKey:MemberID"`
	Registrations []CourseRegistration `json:"registrations,omitempty" gorm:"foreignKey:MemberID"`
}

// NormalizeDNI trims surrounding whitespace and uppercases the national
// ID so that " x1234567b " and "X1234567B" address the same member row.
// The function is idempotent.
func NormalizeDNI(dni string) string {
	return strings.ToUpper(strings.TrimSpace(dni))
}
