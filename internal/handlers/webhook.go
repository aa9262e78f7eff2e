// internal/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ocioclub/club-backend/internal/config"
	"github.com/ocioclub/club-backend/internal/models"
	"github.com/ocioclub/club-backend/internal/services"
	"github.com/ocioclub/club-backend/internal/utils"
)

// WebhookHandler is the asynchronous confirmation path: the gateway
// calls back with a signed event and the handler forwards the outcome
// to the shared reconciler.
type WebhookHandler struct {
	gateway          services.PaymentGateway
	reconcileService *services.ReconcileService
	config           *config.Config
}

func NewWebhookHandler(gateway services.PaymentGateway, reconcileService *services.ReconcileService, config *config.Config) *WebhookHandler {
	return &WebhookHandler{
		gateway:          gateway,
		reconcileService: reconcileService,
		config:           config,
	}
}

// POST /webhooks/payment
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	if h.config.Stripe.WebhookSecret == "" {
		utils.InternalErrorResponse(c, "Webhook secret not configured")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		utils.BadRequestResponse(c, "Missing signature header", nil)
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read request body", nil)
		return
	}

	event, err := h.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		logrus.WithError(err).Warn("Webhook signature verification failed")
		utils.BadRequestResponse(c, "Invalid signature", nil)
		return
	}

	// Unrecognized event types are acknowledged without side effects.
	if event.Type == "checkout.session.completed" {
		if err := h.reconcile(event); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id":   event.OrderID,
				"order_kind": event.OrderKind,
			}).Error("Webhook reconciliation failed")
			utils.InternalErrorResponse(c, "Failed to process payment event")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) reconcile(event *services.WebhookEvent) error {
	orderID, err := uuid.Parse(event.OrderID)
	if err != nil {
		return err
	}

	return h.reconcileService.MarkPaid(models.OrderKind(event.OrderKind), orderID, event.PaymentID)
}
