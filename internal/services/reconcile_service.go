// internal/services/reconcile_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/models"
)

// ReconcileService applies the gateway's definitive payment outcome to
// an order. MarkPaid is the single transition function shared by both
// confirmation paths (webhook and return-page poll); it may be called
// concurrently and repeatedly for the same order.
type ReconcileService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewReconcileService(db *gorm.DB, notifications *NotificationService) *ReconcileService {
	return &ReconcileService{
		db:            db,
		notifications: notifications,
	}
}

// MarkPaid transitions a pending order to its paid terminal state and
// records the gateway payment id. The update is a single conditional
// statement guarded on payment_status, so whichever caller arrives
// first wins and every later call is a no-op. Calling it for an
// already-completed order is not an error.
func (s *ReconcileService) MarkPaid(kind models.OrderKind, orderID uuid.UUID, gatewayPaymentID string) error {
	switch kind {
	case models.OrderKindMembership:
		return s.markMembershipPaid(orderID, gatewayPaymentID)
	case models.OrderKindCourseRegistration:
		return s.markRegistrationPaid(orderID, gatewayPaymentID)
	default:
		return fmt.Errorf("unknown order kind %q", kind)
	}
}

func (s *ReconcileService) markMembershipPaid(orderID uuid.UUID, gatewayPaymentID string) error {
	result := s.db.Model(&models.Membership{}).
		Where("id = ? AND payment_status <> ?", orderID, models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"payment_status":    models.PaymentStatusCompleted,
			"status":            models.MembershipStatusActive,
			"stripe_payment_id": gatewayPaymentID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark membership paid: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Already completed, or unknown id. Distinguish only for logging.
		var count int64
		s.db.Model(&models.Membership{}).Where("id = ?", orderID).Count(&count)
		if count == 0 {
			return ErrOrderNotFound
		}

		logrus.WithField("order_id", orderID).Debug("Membership already reconciled")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   orderID,
		"payment_id": gatewayPaymentID,
	}).Info("Membership payment reconciled")

	s.sendConfirmation(models.OrderKindMembership, orderID)
	return nil
}

func (s *ReconcileService) markRegistrationPaid(orderID uuid.UUID, gatewayPaymentID string) error {
	result := s.db.Model(&models.CourseRegistration{}).
		Where("id = ? AND payment_status <> ?", orderID, models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"payment_status":    models.PaymentStatusCompleted,
			"status":            models.RegistrationStatusCompleted,
			"stripe_payment_id": gatewayPaymentID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark registration paid: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		s.db.Model(&models.CourseRegistration{}).Where("id = ?", orderID).Count(&count)
		if count == 0 {
			return ErrOrderNotFound
		}

		logrus.WithField("order_id", orderID).Debug("Registration already reconciled")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   orderID,
		"payment_id": gatewayPaymentID,
	}).Info("Course registration payment reconciled")

	s.sendConfirmation(models.OrderKindCourseRegistration, orderID)
	return nil
}

// OrderState is the persisted outcome surfaced to the return page.
type OrderState struct {
	OrderID          uuid.UUID            `json:"order_id"`
	Kind             models.OrderKind     `json:"kind"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	Status           string               `json:"status"`
	TotalAmountCents int64                `json:"total_amount_cents"`
}

// FindBySession locates the order a gateway session belongs to.
func (s *ReconcileService) FindBySession(sessionID string) (*OrderState, error) {
	var membership models.Membership
	err := s.db.Where("stripe_session_id = ?", sessionID).First(&membership).Error
	if err == nil {
		return &OrderState{
			OrderID:          membership.ID,
			Kind:             models.OrderKindMembership,
			PaymentStatus:    membership.PaymentStatus,
			Status:           string(membership.Status),
			TotalAmountCents: membership.TotalAmountCents,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up membership by session: %w", err)
	}

	var registration models.CourseRegistration
	err = s.db.Where("stripe_session_id = ?", sessionID).First(&registration).Error
	if err == nil {
		return &OrderState{
			OrderID:          registration.ID,
			Kind:             models.OrderKindCourseRegistration,
			PaymentStatus:    registration.PaymentStatus,
			Status:           string(registration.Status),
			TotalAmountCents: registration.TotalAmountCents,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up registration by session: %w", err)
	}

	return nil, ErrOrderNotFound
}

// GetState returns the current stored state of an order.
func (s *ReconcileService) GetState(kind models.OrderKind, orderID uuid.UUID) (*OrderState, error) {
	switch kind {
	case models.OrderKindMembership:
		var membership models.Membership
		if err := s.db.First(&membership, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
		return &OrderState{
			OrderID:          membership.ID,
			Kind:             kind,
			PaymentStatus:    membership.PaymentStatus,
			Status:           string(membership.Status),
			TotalAmountCents: membership.TotalAmountCents,
		}, nil
	case models.OrderKindCourseRegistration:
		var registration models.CourseRegistration
		if err := s.db.First(&registration, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
		return &OrderState{
			OrderID:          registration.ID,
			Kind:             kind,
			PaymentStatus:    registration.PaymentStatus,
			Status:           string(registration.Status),
			TotalAmountCents: registration.TotalAmountCents,
		}, nil
	default:
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}
}

// sendConfirmation runs only on the call that actually transitioned the
// order, so a duplicate reconciliation can never duplicate the email.
func (s *ReconcileService) sendConfirmation(kind models.OrderKind, orderID uuid.UUID) {
	if s.notifications == nil {
		return
	}

	if err := s.notifications.SendPaymentConfirmation(kind, orderID); err != nil {
		logrus.WithError(err).WithField("order_id", orderID).
			Warn("Failed to send payment confirmation")
	}
}
