// internal/handlers/confirm.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ocioclub/club-backend/internal/models"
	"github.com/ocioclub/club-backend/internal/services"
	"github.com/ocioclub/club-backend/internal/utils"
)

// ConfirmHandler is the synchronous confirmation path: when the payer's
// browser returns with a session id, the handler re-queries the gateway
// and, only if the session reports paid, invokes the same reconciler
// the webhook path uses.
type ConfirmHandler struct {
	gateway          services.PaymentGateway
	reconcileService *services.ReconcileService
}

func NewConfirmHandler(gateway services.PaymentGateway, reconcileService *services.ReconcileService) *ConfirmHandler {
	return &ConfirmHandler{
		gateway:          gateway,
		reconcileService: reconcileService,
	}
}

// GET /checkout/confirm?session_id=...
func (h *ConfirmHandler) ConfirmCheckout(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		utils.BadRequestResponse(c, "Missing session_id", nil)
		return
	}

	session, err := h.gateway.GetCheckoutSession(sessionID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).
			Warn("Failed to query gateway session")
		utils.BadGatewayResponse(c, err.Error())
		return
	}

	if session.Paid && session.OrderID != "" {
		orderID, err := uuid.Parse(session.OrderID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid order metadata", nil)
			return
		}

		err = h.reconcileService.MarkPaid(models.OrderKind(session.OrderKind), orderID, session.PaymentID)
		if err != nil && !errors.Is(err, services.ErrOrderNotFound) {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
	}

	state, err := h.reconcileService.FindBySession(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.NotFoundResponse(c, "No order found for this session")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, state)
}
