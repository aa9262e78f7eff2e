// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/config"
	"github.com/ocioclub/club-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// SendPaymentConfirmation emails the member once their order reaches a
// paid terminal state. Callers guarantee it runs at most once per order.
func (s *NotificationService) SendPaymentConfirmation(kind models.OrderKind, orderID uuid.UUID) error {
	var (
		email  string
		name   string
		label  string
		amount int64
	)

	switch kind {
	case models.OrderKindMembership:
		var membership models.Membership
		if err := s.db.Preload("Member").First(&membership, "id = ?", orderID).Error; err != nil {
			return fmt.Errorf("failed to load membership: %w", err)
		}
		email = membership.Member.Email
		name = membership.Member.FirstName
		label = membership.LicenseLabelSnapshot
		amount = membership.TotalAmountCents
	case models.OrderKindCourseRegistration:
		var registration models.CourseRegistration
		if err := s.db.Preload("Member").First(&registration, "id = ?", orderID).Error; err != nil {
			return fmt.Errorf("failed to load registration: %w", err)
		}
		email = registration.Member.Email
		name = registration.Member.FirstName
		label = registration.LabelSnapshot
		amount = registration.TotalAmountCents
	default:
		return fmt.Errorf("unknown order kind %q", kind)
	}

	data := map[string]interface{}{
		"Name":     name,
		"Label":    label,
		"Amount":   fmt.Sprintf("%.2f", float64(amount)/100),
		"ClubName": s.config.Email.FromName,
	}

	body, err := s.renderTemplate(paymentConfirmationTemplate.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(email, paymentConfirmationTemplate.Subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email not configured (local development); skip silently.
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, body))

	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

var paymentConfirmationTemplate = EmailTemplate{
	Subject: "Payment received",
	Body: `<p>Hi {{.Name}},</p>
<p>We received your payment of {{.Amount}} EUR for <strong>{{.Label}}</strong>.</p>
<p>See you at the club!</p>
<p>{{.ClubName}}</p>`,
}
