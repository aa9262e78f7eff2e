// internal/models/season.go
package models

import "time"

// Season is the pricing window. Exactly one season is expected to be
// active at a time; the flag is a business invariant, not a constraint.
type Season struct {
	BaseModel
	Name               string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	StartsAt           time.Time `json:"starts_at"`
	EndsAt             time.Time `json:"ends_at"`
	Active             bool      `json:"active" gorm:"default:false;index"`
	MembershipFeeCents int64     `json:"membership_fee_cents" gorm:"not null;default:0"`

	Offerings []LicenseOffering `json:"offerings,omitempty" gorm:"foreignKey:SeasonID"`
	Courses   []Course          `json:"courses,omitempty" gorm:"foreignKey:SeasonID"`
}
