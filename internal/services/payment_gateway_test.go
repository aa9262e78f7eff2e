// internal/services/payment_gateway_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/ocioclub/club-backend/internal/config"
)

const testWebhookSecret = "whsec_test_secret"

func newTestStripeGateway() PaymentGateway {
	return NewStripeGateway(&config.StripeConfig{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		Currency:      "eur",
		SuccessURL:    "http://localhost:3000/checkout/success",
		CancelURL:     "http://localhost:3000/checkout/cancel",
	})
}

func signedEventPayload(t *testing.T, eventType, orderID, orderKind string) *webhook.SignedPayload {
	t.Helper()

	payload := fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": "2022-11-15",
		"type": %q,
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"payment_status": "paid",
				"payment_intent": "pi_test_1",
				"metadata": {"order_id": %q, "order_kind": %q}
			}
		}
	}`, eventType, orderID, orderKind)

	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
}

func TestVerifyWebhookCompletedSession(t *testing.T) {
	gateway := newTestStripeGateway()
	signed := signedEventPayload(t, "checkout.session.completed", "order-1", "membership")

	event, err := gateway.VerifyWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, "membership", event.OrderKind)
	assert.Equal(t, "pi_test_1", event.PaymentID)
}

func TestVerifyWebhookUnknownEventType(t *testing.T) {
	gateway := newTestStripeGateway()
	signed := signedEventPayload(t, "invoice.created", "order-1", "membership")

	event, err := gateway.VerifyWebhook(signed.Payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "invoice.created", event.Type)

	// Metadata is only extracted for the completed-checkout event.
	assert.Empty(t, event.OrderID)
	assert.Empty(t, event.PaymentID)
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	gateway := newTestStripeGateway()
	signed := signedEventPayload(t, "checkout.session.completed", "order-1", "membership")

	_, err := gateway.VerifyWebhook(signed.Payload, "t=1,v1=deadbeef")
	assert.Error(t, err)
}

func TestVerifyWebhookRejectsTamperedPayload(t *testing.T) {
	gateway := newTestStripeGateway()
	signed := signedEventPayload(t, "checkout.session.completed", "order-1", "membership")

	tampered := append([]byte{}, signed.Payload...)
	tampered[len(tampered)-2] = ' '

	_, err := gateway.VerifyWebhook(tampered, signed.Header)
	assert.Error(t, err)
}
