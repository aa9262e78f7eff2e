// internal/services/payment_gateway.go
package services

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/ocioclub/club-backend/internal/config"
)

const (
	metadataOrderID   = "order_id"
	metadataOrderKind = "order_kind"
)

// CheckoutSessionInput describes the single payment a checkout requests.
type CheckoutSessionInput struct {
	OrderID     string
	OrderKind   string
	Description string
	AmountCents int64
	Email       string
}

// CheckoutSession is the created gateway session the payer is sent to.
type CheckoutSession struct {
	ID  string
	URL string
}

// SessionStatus is the gateway's view of a session, re-queried on the
// return page.
type SessionStatus struct {
	ID        string
	Paid      bool
	PaymentID string
	OrderID   string
	OrderKind string
}

// WebhookEvent is a verified gateway callback event.
type WebhookEvent struct {
	Type      string
	PaymentID string
	OrderID   string
	OrderKind string
}

// PaymentGateway abstracts the payment provider. The production
// implementation wraps an injected Stripe client; tests substitute a
// fake.
type PaymentGateway interface {
	CreateCheckoutSession(input *CheckoutSessionInput) (*CheckoutSession, error)
	GetCheckoutSession(sessionID string) (*SessionStatus, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type stripeGateway struct {
	api    *client.API
	config *config.StripeConfig
}

// NewStripeGateway builds a gateway on its own Stripe client, initialized
// from configuration rather than the package-level stripe.Key.
func NewStripeGateway(cfg *config.StripeConfig) PaymentGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &stripeGateway{
		api:    api,
		config: cfg,
	}
}

func (g *stripeGateway) CreateCheckoutSession(input *CheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.config.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(g.config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.config.Currency),
					UnitAmount: stripe.Int64(input.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(input.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	if input.Email != "" {
		params.CustomerEmail = stripe.String(input.Email)
	}

	params.AddMetadata(metadataOrderID, input.OrderID)
	params.AddMetadata(metadataOrderKind, input.OrderKind)

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

func (g *stripeGateway) GetCheckoutSession(sessionID string) (*SessionStatus, error) {
	session, err := g.api.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	status := &SessionStatus{
		ID:        session.ID,
		Paid:      session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		OrderID:   session.Metadata[metadataOrderID],
		OrderKind: session.Metadata[metadataOrderKind],
	}
	if session.PaymentIntent != nil {
		status.PaymentID = session.PaymentIntent.ID
	}

	return status, nil
}

func (g *stripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	webhookEvent := &WebhookEvent{Type: string(event.Type)}

	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to parse checkout session event: %w", err)
		}

		webhookEvent.OrderID = session.Metadata[metadataOrderID]
		webhookEvent.OrderKind = session.Metadata[metadataOrderKind]
		if session.PaymentIntent != nil {
			webhookEvent.PaymentID = session.PaymentIntent.ID
		}
	}

	return webhookEvent, nil
}
