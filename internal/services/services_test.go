// internal/services/services_test.go
package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ocioclub/club-backend/internal/config"
	"github.com/ocioclub/club-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A fresh connection would see an empty in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Season{},
		&models.Member{},
		&models.LicenseOffering{},
		&models.SupplementGroup{},
		&models.Supplement{},
		&models.SupplementPrice{},
		&models.SupplementGroupPrice{},
		&models.Course{},
		&models.CoursePrice{},
		&models.Membership{},
		&models.CourseRegistration{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// testCatalog is a seeded season with one offering, grouped and
// ungrouped supplements, and one two-spot course.
type testCatalog struct {
	Season     *models.Season
	Offering   *models.LicenseOffering
	Group      *models.SupplementGroup
	GroupedA   *models.Supplement
	GroupedB   *models.Supplement
	Ungrouped  *models.Supplement
	Course     *models.Course
	CourseTier *models.CoursePrice
}

func seedCatalog(t *testing.T, db *gorm.DB) *testCatalog {
	t.Helper()

	season := &models.Season{
		Name:               "2026/2027",
		StartsAt:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:             time.Date(2027, 8, 31, 0, 0, 0, 0, time.UTC),
		Active:             true,
		MembershipFeeCents: 2000,
	}
	mustCreate(t, db, season)

	offering := &models.LicenseOffering{
		SeasonID:    season.ID,
		LicenseType: "national",
		Subtype:     "senior",
		Category:    "standard",
		Label:       "National senior license",
		PriceCents:  4500,
	}
	mustCreate(t, db, offering)

	group := &models.SupplementGroup{Name: "Insurance pack"}
	mustCreate(t, db, group)
	mustCreate(t, db, &models.SupplementGroupPrice{
		GroupID:    group.ID,
		SeasonID:   season.ID,
		PriceCents: 2000,
	})

	groupedA := &models.Supplement{Name: "Travel insurance", GroupID: &group.ID, Active: true}
	groupedB := &models.Supplement{Name: "Equipment insurance", GroupID: &group.ID, Active: true}
	ungrouped := &models.Supplement{Name: "Club magazine", Active: true}
	mustCreate(t, db, groupedA)
	mustCreate(t, db, groupedB)
	mustCreate(t, db, ungrouped)
	mustCreate(t, db, &models.SupplementPrice{
		SupplementID: ungrouped.ID,
		SeasonID:     season.ID,
		PriceCents:   1000,
	})

	course := &models.Course{
		SeasonID:    season.ID,
		Name:        "Beginner course",
		MaxCapacity: 2,
		Active:      true,
	}
	mustCreate(t, db, course)

	tier := &models.CoursePrice{
		CourseID:   course.ID,
		Tier:       "adult",
		Label:      "Beginner course (adult)",
		PriceCents: 9000,
	}
	mustCreate(t, db, tier)

	return &testCatalog{
		Season:     season,
		Offering:   offering,
		Group:      group,
		GroupedA:   groupedA,
		GroupedB:   groupedB,
		Ungrouped:  ungrouped,
		Course:     course,
		CourseTier: tier,
	}
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to seed %T: %v", value, err)
	}
}

func testConfig() *config.Config {
	// No AWS credentials and no SMTP user: storage checks and emails are
	// skipped in tests.
	return &config.Config{
		Environment: "test",
		Stripe: config.StripeConfig{
			Currency: "eur",
		},
	}
}

func testApplicant() ApplicantData {
	return ApplicantData{
		DNI:       "12345678Z",
		FirstName: "Ana",
		LastName:  "García",
		Email:     "ana@example.com",
	}
}

// fakeGateway records calls and lets tests force failures and session
// states without touching Stripe.
type fakeGateway struct {
	createCalls int
	failCreate  bool
	sessions    map[string]*SessionStatus
	events      map[string]*WebhookEvent
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		sessions: make(map[string]*SessionStatus),
		events:   make(map[string]*WebhookEvent),
	}
}

func (g *fakeGateway) CreateCheckoutSession(input *CheckoutSessionInput) (*CheckoutSession, error) {
	g.createCalls++
	if g.failCreate {
		return nil, errors.New("gateway unavailable")
	}

	id := fmt.Sprintf("cs_test_%d", g.createCalls)
	g.sessions[id] = &SessionStatus{
		ID:        id,
		OrderID:   input.OrderID,
		OrderKind: input.OrderKind,
	}

	return &CheckoutSession{ID: id, URL: "https://pay.example.com/" + id}, nil
}

func (g *fakeGateway) GetCheckoutSession(sessionID string) (*SessionStatus, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	return session, nil
}

func (g *fakeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "invalid" {
		return nil, errors.New("signature mismatch")
	}

	event, ok := g.events[string(payload)]
	if !ok {
		return &WebhookEvent{Type: "unknown.event"}, nil
	}
	return event, nil
}

// markPaid flips the fake session to paid, as the gateway would after a
// successful payment.
func (g *fakeGateway) markPaid(sessionID, paymentID string) {
	if session, ok := g.sessions[sessionID]; ok {
		session.Paid = true
		session.PaymentID = paymentID
	}
}
