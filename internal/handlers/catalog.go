// internal/handlers/catalog.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ocioclub/club-backend/internal/services"
	"github.com/ocioclub/club-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// GET /catalog
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	catalog, err := h.catalogService.LoadCatalog()
	if err != nil {
		if errors.Is(err, services.ErrSeasonNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, catalog)
}

// GET /courses/:id/availability
func (h *CatalogHandler) GetCourseAvailability(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid course id", nil)
		return
	}

	season, err := h.catalogService.ActiveSeason()
	if err != nil {
		if errors.Is(err, services.ErrSeasonNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	course, err := h.catalogService.ResolveCourse(season.ID, courseID)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			utils.NotFoundResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	remaining, err := h.catalogService.RemainingSpots(course)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"course_id":       course.ID,
		"max_capacity":    course.MaxCapacity,
		"remaining_spots": remaining,
	})
}
