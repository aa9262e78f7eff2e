// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/models"
	"github.com/ocioclub/club-backend/internal/pricing"
)

type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ActiveSeason returns the season currently flagged active.
func (s *CatalogService) ActiveSeason() (*models.Season, error) {
	var season models.Season
	if err := s.db.Where("active = ?", true).First(&season).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to load active season: %w", err)
	}
	return &season, nil
}

// ResolveOffering looks up the season-scoped price row for the exact
// (type, subtype, category) combination.
func (s *CatalogService) ResolveOffering(seasonID uuid.UUID, licenseType, subtype, category string) (*models.LicenseOffering, error) {
	var offering models.LicenseOffering
	err := s.db.Where(
		"season_id = ? AND license_type = ? AND subtype = ? AND category = ?",
		seasonID, licenseType, subtype, category,
	).First(&offering).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to resolve offering: %w", err)
	}
	return &offering, nil
}

// ResolveSupplements maps the requested supplement IDs to priced add-ons
// for the season. Repeated IDs in the request count once. Every
// requested ID must resolve to an active supplement; unknown or
// inactive IDs fail the whole selection rather than being dropped.
// Missing seasonal price rows price as zero.
func (s *CatalogService) ResolveSupplements(seasonID uuid.UUID, supplementIDs []uuid.UUID) ([]pricing.AddOn, error) {
	supplementIDs = dedupeIDs(supplementIDs)
	if len(supplementIDs) == 0 {
		return nil, nil
	}

	var supplements []models.Supplement
	err := s.db.Preload("Group").
		Where("id IN ? AND active = ?", supplementIDs, true).
		Find(&supplements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve supplements: %w", err)
	}

	found := make(map[uuid.UUID]*models.Supplement, len(supplements))
	for i := range supplements {
		found[supplements[i].ID] = &supplements[i]
	}

	addOns := make([]pricing.AddOn, 0, len(supplementIDs))
	for _, id := range supplementIDs {
		supplement, ok := found[id]
		if !ok {
			return nil, ErrInvalidSupplements
		}

		addOn := pricing.AddOn{
			ID:      supplement.ID,
			Name:    supplement.Name,
			GroupID: supplement.GroupID,
		}

		if supplement.GroupID != nil {
			if supplement.Group != nil {
				addOn.GroupName = supplement.Group.Name
			}
			var groupPrice models.SupplementGroupPrice
			err := s.db.Where("group_id = ? AND season_id = ?", *supplement.GroupID, seasonID).
				First(&groupPrice).Error
			if err == nil {
				addOn.GroupPriceCents = groupPrice.PriceCents
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to resolve group price: %w", err)
			}
		} else {
			var price models.SupplementPrice
			err := s.db.Where("supplement_id = ? AND season_id = ?", supplement.ID, seasonID).
				First(&price).Error
			if err == nil {
				addOn.PriceCents = price.PriceCents
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to resolve supplement price: %w", err)
			}
		}

		addOns = append(addOns, addOn)
	}

	return addOns, nil
}

// dedupeIDs drops repeated IDs while keeping first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// ResolveCourse returns the active course for the season.
func (s *CatalogService) ResolveCourse(seasonID, courseID uuid.UUID) (*models.Course, error) {
	var course models.Course
	err := s.db.Where("id = ? AND season_id = ? AND active = ?", courseID, seasonID, true).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to resolve course: %w", err)
	}
	return &course, nil
}

// ResolveCourseTier returns the requested price tier of a course.
func (s *CatalogService) ResolveCourseTier(courseID uuid.UUID, tier string) (*models.CoursePrice, error) {
	var price models.CoursePrice
	err := s.db.Where("course_id = ? AND tier = ?", courseID, tier).First(&price).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to resolve course tier: %w", err)
	}
	return &price, nil
}

// RemainingSpots computes max_capacity minus the count of completed
// registrations. This is a read-then-act check, not a reservation: two
// checkouts racing for the last spot can both pass, and overbooking is
// bounded by how many of those pending orders later complete payment.
func (s *CatalogService) RemainingSpots(course *models.Course) (int, error) {
	var completed int64
	err := s.db.Model(&models.CourseRegistration{}).
		Where("course_id = ? AND payment_status = ?", course.ID, models.PaymentStatusCompleted).
		Count(&completed).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed registrations: %w", err)
	}

	return course.MaxCapacity - int(completed), nil
}

// CatalogSupplement is a supplement with its season-resolved price for
// the public catalog listing.
type CatalogSupplement struct {
	models.Supplement
	PriceCents      int64  `json:"price_cents"`
	GroupName       string `json:"group_name,omitempty"`
	GroupPriceCents int64  `json:"group_price_cents,omitempty"`
}

// CatalogCourse is a course with remaining spots for the public listing.
type CatalogCourse struct {
	models.Course
	RemainingSpots int `json:"remaining_spots"`
}

// Catalog is the payer-facing view of the active season. It is built
// from the same rows the pricing engine charges.
type Catalog struct {
	Season      *models.Season           `json:"season"`
	Offerings   []models.LicenseOffering `json:"offerings"`
	Supplements []CatalogSupplement      `json:"supplements"`
	Courses     []CatalogCourse          `json:"courses"`
}

// LoadCatalog assembles the active season's offerings, priced
// supplements, and courses with availability.
func (s *CatalogService) LoadCatalog() (*Catalog, error) {
	season, err := s.ActiveSeason()
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Season: season}

	if err := s.db.Where("season_id = ?", season.ID).
		Order("license_type, subtype, category").
		Find(&catalog.Offerings).Error; err != nil {
		return nil, fmt.Errorf("failed to load offerings: %w", err)
	}

	var supplements []models.Supplement
	if err := s.db.Preload("Group").Where("active = ?", true).
		Order("name").Find(&supplements).Error; err != nil {
		return nil, fmt.Errorf("failed to load supplements: %w", err)
	}

	for _, supplement := range supplements {
		entry := CatalogSupplement{Supplement: supplement}
		if supplement.GroupID != nil {
			if supplement.Group != nil {
				entry.GroupName = supplement.Group.Name
			}
			var groupPrice models.SupplementGroupPrice
			if err := s.db.Where("group_id = ? AND season_id = ?", *supplement.GroupID, season.ID).
				First(&groupPrice).Error; err == nil {
				entry.GroupPriceCents = groupPrice.PriceCents
			}
		} else {
			var price models.SupplementPrice
			if err := s.db.Where("supplement_id = ? AND season_id = ?", supplement.ID, season.ID).
				First(&price).Error; err == nil {
				entry.PriceCents = price.PriceCents
			}
		}
		catalog.Supplements = append(catalog.Supplements, entry)
	}

	var courses []models.Course
	if err := s.db.Preload("Prices").
		Where("season_id = ? AND active = ?", season.ID, true).
		Order("name").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}

	for i := range courses {
		remaining, err := s.RemainingSpots(&courses[i])
		if err != nil {
			return nil, err
		}
		catalog.Courses = append(catalog.Courses, CatalogCourse{
			Course:         courses[i],
			RemainingSpots: remaining,
		})
	}

	return catalog, nil
}
