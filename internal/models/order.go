// internal/models/order.go
package models

import "github.com/google/uuid"

// Membership is the order row of a membership checkout. Price fields are
// frozen at creation; they are never recomputed from live catalog rows.
type Membership struct {
	BaseModel
	MemberID             uuid.UUID        `json:"member_id" gorm:"type:uuid;not null;index"`
	OfferingID           uuid.UUID        `json:"offering_id" gorm:"type:uuid;not null;index"`
	SeasonID             uuid.UUID        `json:"season_id" gorm:"type:uuid;not null;index"`
	LicensePriceSnapshot int64            `json:"license_price_snapshot" gorm:"not null"`
	LicenseLabelSnapshot string           `json:"license_label_snapshot" gorm:"size:150;not null"`
	SupplementsSnapshot  JSONB            `json:"supplements_snapshot" gorm:"type:jsonb"`
	TotalAmountCents     int64            `json:"total_amount_cents" gorm:"not null"`
	PaymentStatus        PaymentStatus    `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	Status               MembershipStatus `json:"status" gorm:"type:varchar(20);default:'pending_payment';index"`
	StripeSessionID      string           `json:"stripe_session_id" gorm:"size:255;index"`
	StripePaymentID      string           `json:"stripe_payment_id" gorm:"size:255"`

	Member   Member          `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Offering LicenseOffering `json:"offering,omitempty" gorm:"foreignKey:OfferingID"`
}

// CourseRegistration is the order row of a course checkout.
type CourseRegistration struct {
	BaseModel
	MemberID         uuid.UUID          `json:"member_id" gorm:"type:uuid;not null;index"`
	CourseID         uuid.UUID          `json:"course_id" gorm:"type:uuid;not null;index"`
	CoursePriceID    uuid.UUID          `json:"course_price_id" gorm:"type:uuid;not null;index"`
	PriceSnapshot    int64              `json:"price_snapshot" gorm:"not null"`
	LabelSnapshot    string             `json:"label_snapshot" gorm:"size:150;not null"`
	LicenseFileKey   string             `json:"license_file_key" gorm:"size:255"`
	TotalAmountCents int64              `json:"total_amount_cents" gorm:"not null"`
	PaymentStatus    PaymentStatus      `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	Status           RegistrationStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	StripeSessionID  string             `json:"stripe_session_id" gorm:"size:255;index"`
	StripePaymentID  string             `json:"stripe_payment_id" gorm:"size:255"`

	Member Member `json:"member,omitempty" gorm:"foreignKey:MemberID"`
	Course Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
