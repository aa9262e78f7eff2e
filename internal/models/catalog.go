// internal/models/catalog.go
package models

import "github.com/google/uuid"

// LicenseOffering is the season-scoped price of a (type, subtype,
// category) combination. Immutable once a paid order references it;
// price changes are new rows on a future season.
type LicenseOffering struct {
	BaseModel
	SeasonID    uuid.UUID `json:"season_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_offering_combo"`
	LicenseType string    `json:"license_type" gorm:"size:50;not null;uniqueIndex:idx_offering_combo"`
	Subtype     string    `json:"subtype" gorm:"size:50;not null;uniqueIndex:idx_offering_combo"`
	Category    string    `json:"category" gorm:"size:50;not null;uniqueIndex:idx_offering_combo"`
	Label       string    `json:"label" gorm:"size:150;not null"`
	PriceCents  int64     `json:"price_cents" gorm:"not null"`

	Season Season `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
}

// SupplementGroup bundles supplements that share one group price. The
// group price is charged once no matter how many members are selected.
type SupplementGroup struct {
	BaseModel
	Name string `json:"name" gorm:"size:100;not null;uniqueIndex"`

	Supplements []Supplement           `json:"supplements,omitempty" gorm:"foreignKey:GroupID"`
	Prices      []SupplementGroupPrice `json:"prices,omitempty" gorm:"foreignKey:GroupID"`
}

// Supplement is an optional add-on. With a GroupID the group's seasonal
// price applies; without one the supplement's own seasonal price does.
type Supplement struct {
	BaseModel
	Name    string     `json:"name" gorm:"size:100;not null"`
	GroupID *uuid.UUID `json:"group_id" gorm:"type:uuid;index"`
	Active  bool       `json:"active" gorm:"default:true;index"`

	Group  *SupplementGroup  `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	Prices []SupplementPrice `json:"prices,omitempty" gorm:"foreignKey:SupplementID"`
}

// SupplementPrice is the per-season price row of an ungrouped supplement.
type SupplementPrice struct {
	BaseModel
	SupplementID uuid.UUID `json:"supplement_id" gorm:"type:uuid;not null;uniqueIndex:idx_supplement_season"`
	SeasonID     uuid.UUID `json:"season_id" gorm:"type:uuid;not null;uniqueIndex:idx_supplement_season"`
	PriceCents   int64     `json:"price_cents" gorm:"not null"`
}

// SupplementGroupPrice is the per-season price row of a supplement group.
type SupplementGroupPrice struct {
	BaseModel
	GroupID    uuid.UUID `json:"group_id" gorm:"type:uuid;not null;uniqueIndex:idx_group_season"`
	SeasonID   uuid.UUID `json:"season_id" gorm:"type:uuid;not null;uniqueIndex:idx_group_season"`
	PriceCents int64     `json:"price_cents" gorm:"not null"`
}

// Course is a capacity-limited offering tied to a season.
type Course struct {
	BaseModel
	SeasonID    uuid.UUID `json:"season_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"size:150;not null"`
	MaxCapacity int       `json:"max_capacity" gorm:"not null"`
	Active      bool      `json:"active" gorm:"default:true;index"`

	Season Season        `json:"season,omitempty" gorm:"foreignKey:SeasonID"`
	Prices []CoursePrice `json:"prices,omitempty" gorm:"foreignKey:CourseID"`
}

// CoursePrice is one price tier of a course.
type CoursePrice struct {
	BaseModel
	CourseID   uuid.UUID `json:"course_id" gorm:"type:uuid;not null;uniqueIndex:idx_course_tier"`
	Tier       string    `json:"tier" gorm:"size:50;not null;uniqueIndex:idx_course_tier"`
	Label      string    `json:"label" gorm:"size:150;not null"`
	PriceCents int64     `json:"price_cents" gorm:"not null"`
}
