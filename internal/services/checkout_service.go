// internal/services/checkout_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/database"
	"github.com/ocioclub/club-backend/internal/models"
	"github.com/ocioclub/club-backend/internal/pricing"
)

// CheckoutService orchestrates the public checkout paths: it resolves
// the selection against the active season's catalog, prices it
// server-side, persists a pending order with a frozen price snapshot,
// and requests a gateway session. Exactly one order row is created per
// call and at most one gateway session is requested.
type CheckoutService struct {
	db      *gorm.DB
	members *MemberService
	catalog *CatalogService
	gateway PaymentGateway
	storage *StorageService
}

type MembershipCheckoutRequest struct {
	Applicant     ApplicantData `json:"applicant" validate:"required"`
	LicenseType   string        `json:"license_type" validate:"required,max=50"`
	Subtype       string        `json:"subtype" validate:"required,max=50"`
	Category      string        `json:"category" validate:"required,max=50"`
	SupplementIDs []uuid.UUID   `json:"supplement_ids"`
}

type CourseCheckoutRequest struct {
	Applicant      ApplicantData `json:"applicant" validate:"required"`
	CourseID       uuid.UUID     `json:"course_id" validate:"required"`
	Tier           string        `json:"tier" validate:"required,max=50"`
	LicenseFileKey string        `json:"license_file_key" validate:"required,max=255"`
}

// CheckoutResult carries the gateway URL the payer is redirected to and
// the breakdown that was charged.
type CheckoutResult struct {
	OrderID    uuid.UUID          `json:"order_id"`
	PaymentURL string             `json:"url"`
	Breakdown  *pricing.Breakdown `json:"breakdown"`
}

func NewCheckoutService(db *gorm.DB, members *MemberService, catalog *CatalogService, gateway PaymentGateway, storage *StorageService) *CheckoutService {
	return &CheckoutService{
		db:      db,
		members: members,
		catalog: catalog,
		gateway: gateway,
		storage: storage,
	}
}

// BeginMembershipCheckout resolves and prices the selection, persists a
// pending membership, and requests a payment session. A gateway failure
// leaves the order row in place as a cancelled, auditable attempt.
func (s *CheckoutService) BeginMembershipCheckout(req *MembershipCheckoutRequest) (*CheckoutResult, error) {
	season, err := s.catalog.ActiveSeason()
	if err != nil {
		return nil, err
	}

	offering, err := s.catalog.ResolveOffering(season.ID, req.LicenseType, req.Subtype, req.Category)
	if err != nil {
		return nil, err
	}

	addOns, err := s.catalog.ResolveSupplements(season.ID, req.SupplementIDs)
	if err != nil {
		return nil, err
	}

	breakdown := pricing.Quote(offering.Label, offering.PriceCents, season.MembershipFeeCents, addOns)

	var membership models.Membership
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		member, err := s.members.Upsert(tx, &req.Applicant)
		if err != nil {
			return err
		}

		membership = models.Membership{
			MemberID:             member.ID,
			OfferingID:           offering.ID,
			SeasonID:             season.ID,
			LicensePriceSnapshot: offering.PriceCents,
			LicenseLabelSnapshot: offering.Label,
			SupplementsSnapshot:  supplementsSnapshot(breakdown),
			TotalAmountCents:     breakdown.TotalCents,
			PaymentStatus:        models.PaymentStatusPending,
			Status:               models.MembershipStatusPendingPayment,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create membership order: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(&CheckoutSessionInput{
		OrderID:     membership.ID.String(),
		OrderKind:   string(models.OrderKindMembership),
		Description: fmt.Sprintf("%s - season %s", offering.Label, season.Name),
		AmountCents: breakdown.TotalCents,
		Email:       req.Applicant.Email,
	})
	if err != nil {
		s.failMembership(&membership, err)
		return nil, &GatewayError{Err: err}
	}

	err = s.db.Model(&membership).
		Update("stripe_session_id", session.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record gateway session: %w", err)
	}

	return &CheckoutResult{
		OrderID:    membership.ID,
		PaymentURL: session.URL,
		Breakdown:  breakdown,
	}, nil
}

// BeginCourseCheckout is the capacity-guarded counterpart for courses.
func (s *CheckoutService) BeginCourseCheckout(req *CourseCheckoutRequest) (*CheckoutResult, error) {
	season, err := s.catalog.ActiveSeason()
	if err != nil {
		return nil, err
	}

	course, err := s.catalog.ResolveCourse(season.ID, req.CourseID)
	if err != nil {
		return nil, err
	}

	tier, err := s.catalog.ResolveCourseTier(course.ID, req.Tier)
	if err != nil {
		return nil, err
	}

	remaining, err := s.catalog.RemainingSpots(course)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, ErrCourseFull
	}

	if s.storage.Enabled() {
		exists, err := s.storage.FileExists(req.LicenseFileKey)
		if err != nil {
			return nil, fmt.Errorf("failed to verify license file: %w", err)
		}
		if !exists {
			return nil, ErrLicenseFileMissing
		}
	}

	breakdown := pricing.Quote(tier.Label, tier.PriceCents, 0, nil)

	var registration models.CourseRegistration
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		member, err := s.members.Upsert(tx, &req.Applicant)
		if err != nil {
			return err
		}

		registration = models.CourseRegistration{
			MemberID:         member.ID,
			CourseID:         course.ID,
			CoursePriceID:    tier.ID,
			PriceSnapshot:    tier.PriceCents,
			LabelSnapshot:    tier.Label,
			LicenseFileKey:   req.LicenseFileKey,
			TotalAmountCents: breakdown.TotalCents,
			PaymentStatus:    models.PaymentStatusPending,
			Status:           models.RegistrationStatusPending,
		}
		return tx.Create(&registration).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create course registration: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(&CheckoutSessionInput{
		OrderID:     registration.ID.String(),
		OrderKind:   string(models.OrderKindCourseRegistration),
		Description: fmt.Sprintf("%s - %s", course.Name, tier.Label),
		AmountCents: breakdown.TotalCents,
		Email:       req.Applicant.Email,
	})
	if err != nil {
		s.failRegistration(&registration, err)
		return nil, &GatewayError{Err: err}
	}

	err = s.db.Model(&registration).
		Update("stripe_session_id", session.ID).Error
	if err != nil {
		return nil, fmt.Errorf("failed to record gateway session: %w", err)
	}

	return &CheckoutResult{
		OrderID:    registration.ID,
		PaymentURL: session.URL,
		Breakdown:  breakdown,
	}, nil
}

// failMembership marks the order as a failed attempt. The row is kept,
// not rolled back.
func (s *CheckoutService) failMembership(membership *models.Membership, cause error) {
	err := s.db.Model(membership).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusFailed,
		"status":         models.MembershipStatusCancelled,
	}).Error
	if err != nil {
		logrus.WithError(err).WithField("order_id", membership.ID).
			Error("Failed to mark membership as failed")
	}

	logrus.WithFields(logrus.Fields{
		"order_id": membership.ID,
		"kind":     models.OrderKindMembership,
	}).WithError(cause).Warn("Gateway session creation failed")
}

func (s *CheckoutService) failRegistration(registration *models.CourseRegistration, cause error) {
	err := s.db.Model(registration).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusFailed,
		"status":         models.RegistrationStatusFailed,
	}).Error
	if err != nil {
		logrus.WithError(err).WithField("order_id", registration.ID).
			Error("Failed to mark registration as failed")
	}

	logrus.WithFields(logrus.Fields{
		"order_id": registration.ID,
		"kind":     models.OrderKindCourseRegistration,
	}).WithError(cause).Warn("Gateway session creation failed")
}

func supplementsSnapshot(breakdown *pricing.Breakdown) models.JSONB {
	items := make([]interface{}, 0, len(breakdown.Items))
	for _, item := range breakdown.Items {
		items = append(items, map[string]interface{}{
			"label":       item.Label,
			"price_cents": item.PriceCents,
			"grouped":     item.Grouped,
		})
	}

	return models.JSONB{
		"fee_cents": breakdown.MembershipFeeCents,
		"items":     items,
	}
}
