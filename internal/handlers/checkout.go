// internal/handlers/checkout.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ocioclub/club-backend/internal/services"
	"github.com/ocioclub/club-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// POST /checkout
func (h *CheckoutHandler) BeginMembershipCheckout(c *gin.Context) {
	var req services.MembershipCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.checkoutService.BeginMembershipCheckout(&req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /course-checkout
func (h *CheckoutHandler) BeginCourseCheckout(c *gin.Context) {
	var req services.CourseCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.checkoutService.BeginCourseCheckout(&req)
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func respondCheckoutError(c *gin.Context, err error) {
	var gatewayErr *services.GatewayError

	switch {
	case errors.As(err, &gatewayErr):
		utils.BadGatewayResponse(c, gatewayErr.Error())
	case errors.Is(err, services.ErrCourseNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrCourseFull):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrSeasonNotFound),
		errors.Is(err, services.ErrOfferingNotFound),
		errors.Is(err, services.ErrInvalidSupplements),
		errors.Is(err, services.ErrTierNotFound),
		errors.Is(err, services.ErrLicenseFileMissing):
		utils.BadRequestResponse(c, err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
