// internal/services/checkout_service_test.go
package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ocioclub/club-backend/internal/models"
)

type CheckoutServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	catalog  *testCatalog
	gateway  *fakeGateway
	checkout *CheckoutService
}

func (suite *CheckoutServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.catalog = seedCatalog(suite.T(), suite.db)
	suite.gateway = newFakeGateway()

	members := NewMemberService(suite.db)
	catalogService := NewCatalogService(suite.db)
	storage, err := NewStorageService(testConfig())
	suite.Require().NoError(err)

	suite.checkout = NewCheckoutService(suite.db, members, catalogService, suite.gateway, storage)
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutSuccess() {
	req := &MembershipCheckoutRequest{
		Applicant:     testApplicant(),
		LicenseType:   "national",
		Subtype:       "senior",
		Category:      "standard",
		SupplementIDs: []uuid.UUID{suite.catalog.Ungrouped.ID},
	}

	result, err := suite.checkout.BeginMembershipCheckout(req)
	suite.Require().NoError(err)

	assert.Equal(suite.T(), int64(7500), result.Breakdown.TotalCents)
	assert.NotEmpty(suite.T(), result.PaymentURL)
	assert.Equal(suite.T(), 1, suite.gateway.createCalls)

	var membership models.Membership
	suite.Require().NoError(suite.db.First(&membership, "id = ?", result.OrderID).Error)
	assert.Equal(suite.T(), models.PaymentStatusPending, membership.PaymentStatus)
	assert.Equal(suite.T(), models.MembershipStatusPendingPayment, membership.Status)
	assert.Equal(suite.T(), int64(7500), membership.TotalAmountCents)
	assert.Equal(suite.T(), int64(4500), membership.LicensePriceSnapshot)
	assert.Equal(suite.T(), "National senior license", membership.LicenseLabelSnapshot)
	assert.NotEmpty(suite.T(), membership.StripeSessionID)
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutDeduplicatesGroup() {
	req := &MembershipCheckoutRequest{
		Applicant:   testApplicant(),
		LicenseType: "national",
		Subtype:     "senior",
		Category:    "standard",
		SupplementIDs: []uuid.UUID{
			suite.catalog.GroupedA.ID,
			suite.catalog.GroupedB.ID,
		},
	}

	result, err := suite.checkout.BeginMembershipCheckout(req)
	suite.Require().NoError(err)

	// 4500 base + 2000 fee + 2000 group price, charged once.
	assert.Equal(suite.T(), int64(8500), result.Breakdown.TotalCents)
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutRepeatedSupplementChargedOnce() {
	req := &MembershipCheckoutRequest{
		Applicant:   testApplicant(),
		LicenseType: "national",
		Subtype:     "senior",
		Category:    "standard",
		SupplementIDs: []uuid.UUID{
			suite.catalog.Ungrouped.ID,
			suite.catalog.Ungrouped.ID,
		},
	}

	result, err := suite.checkout.BeginMembershipCheckout(req)
	suite.Require().NoError(err)

	// 4500 base + 2000 fee + 1000 magazine. The repeated ID in the
	// request body must not inflate the total.
	assert.Equal(suite.T(), int64(7500), result.Breakdown.TotalCents)
	suite.Require().Len(result.Breakdown.Items, 1)
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutUnknownOffering() {
	req := &MembershipCheckoutRequest{
		Applicant:   testApplicant(),
		LicenseType: "national",
		Subtype:     "junior",
		Category:    "standard",
	}

	_, err := suite.checkout.BeginMembershipCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrOfferingNotFound)
	assert.Equal(suite.T(), 0, suite.gateway.createCalls)
	suite.assertNoOrders()
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutUnknownSupplement() {
	req := &MembershipCheckoutRequest{
		Applicant:     testApplicant(),
		LicenseType:   "national",
		Subtype:       "senior",
		Category:      "standard",
		SupplementIDs: []uuid.UUID{uuid.New()},
	}

	_, err := suite.checkout.BeginMembershipCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrInvalidSupplements)

	// Rejected before any write or gateway call.
	assert.Equal(suite.T(), 0, suite.gateway.createCalls)
	suite.assertNoOrders()
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutInactiveSupplement() {
	suite.Require().NoError(
		suite.db.Model(suite.catalog.Ungrouped).Update("active", false).Error)

	req := &MembershipCheckoutRequest{
		Applicant:     testApplicant(),
		LicenseType:   "national",
		Subtype:       "senior",
		Category:      "standard",
		SupplementIDs: []uuid.UUID{suite.catalog.Ungrouped.ID},
	}

	_, err := suite.checkout.BeginMembershipCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrInvalidSupplements)
}

func (suite *CheckoutServiceTestSuite) TestMembershipCheckoutGatewayFailure() {
	suite.gateway.failCreate = true

	req := &MembershipCheckoutRequest{
		Applicant:   testApplicant(),
		LicenseType: "national",
		Subtype:     "senior",
		Category:    "standard",
	}

	_, err := suite.checkout.BeginMembershipCheckout(req)

	var gatewayErr *GatewayError
	suite.Require().True(errors.As(err, &gatewayErr))

	// The order row survives the failure as an auditable attempt.
	var memberships []models.Membership
	suite.Require().NoError(suite.db.Find(&memberships).Error)
	suite.Require().Len(memberships, 1)
	assert.Equal(suite.T(), models.PaymentStatusFailed, memberships[0].PaymentStatus)
	assert.Equal(suite.T(), models.MembershipStatusCancelled, memberships[0].Status)
	assert.Empty(suite.T(), memberships[0].StripeSessionID)
}

func (suite *CheckoutServiceTestSuite) TestCourseCheckoutSuccess() {
	req := &CourseCheckoutRequest{
		Applicant:      testApplicant(),
		CourseID:       suite.catalog.Course.ID,
		Tier:           "adult",
		LicenseFileKey: "uploads/license.pdf",
	}

	result, err := suite.checkout.BeginCourseCheckout(req)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(9000), result.Breakdown.TotalCents)

	var registration models.CourseRegistration
	suite.Require().NoError(suite.db.First(&registration, "id = ?", result.OrderID).Error)
	assert.Equal(suite.T(), models.RegistrationStatusPending, registration.Status)
	assert.Equal(suite.T(), "uploads/license.pdf", registration.LicenseFileKey)
	assert.Equal(suite.T(), int64(9000), registration.PriceSnapshot)
}

func (suite *CheckoutServiceTestSuite) TestCourseCheckoutUnknownCourse() {
	req := &CourseCheckoutRequest{
		Applicant:      testApplicant(),
		CourseID:       uuid.New(),
		Tier:           "adult",
		LicenseFileKey: "uploads/license.pdf",
	}

	_, err := suite.checkout.BeginCourseCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrCourseNotFound)
}

func (suite *CheckoutServiceTestSuite) TestCourseCheckoutUnknownTier() {
	req := &CourseCheckoutRequest{
		Applicant:      testApplicant(),
		CourseID:       suite.catalog.Course.ID,
		Tier:           "youth",
		LicenseFileKey: "uploads/license.pdf",
	}

	_, err := suite.checkout.BeginCourseCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrTierNotFound)
}

func (suite *CheckoutServiceTestSuite) TestCourseCheckoutFullCourse() {
	suite.fillCourse()

	req := &CourseCheckoutRequest{
		Applicant:      testApplicant(),
		CourseID:       suite.catalog.Course.ID,
		Tier:           "adult",
		LicenseFileKey: "uploads/license.pdf",
	}

	_, err := suite.checkout.BeginCourseCheckout(req)
	assert.ErrorIs(suite.T(), err, ErrCourseFull)
	assert.Equal(suite.T(), 0, suite.gateway.createCalls)

	// No new registration beyond the seeded completed ones.
	var count int64
	suite.db.Model(&models.CourseRegistration{}).Count(&count)
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *CheckoutServiceTestSuite) TestCourseCheckoutPendingDoesNotConsumeSpots() {
	// A pending registration holds no spot; only completed payments count.
	member := suite.seedMember("11111111H")
	suite.createRegistration(member.ID, models.PaymentStatusPending, models.RegistrationStatusPending)

	req := &CourseCheckoutRequest{
		Applicant:      testApplicant(),
		CourseID:       suite.catalog.Course.ID,
		Tier:           "adult",
		LicenseFileKey: "uploads/license.pdf",
	}

	_, err := suite.checkout.BeginCourseCheckout(req)
	assert.NoError(suite.T(), err)
}

func (suite *CheckoutServiceTestSuite) assertNoOrders() {
	var membershipCount, registrationCount int64
	suite.db.Model(&models.Membership{}).Count(&membershipCount)
	suite.db.Model(&models.CourseRegistration{}).Count(&registrationCount)
	assert.Zero(suite.T(), membershipCount)
	assert.Zero(suite.T(), registrationCount)
}

func (suite *CheckoutServiceTestSuite) fillCourse() {
	first := suite.seedMember("22222222J")
	second := suite.seedMember("33333333P")
	suite.createRegistration(first.ID, models.PaymentStatusCompleted, models.RegistrationStatusCompleted)
	suite.createRegistration(second.ID, models.PaymentStatusCompleted, models.RegistrationStatusCompleted)
}

func (suite *CheckoutServiceTestSuite) seedMember(dni string) *models.Member {
	member := &models.Member{
		DNI:       dni,
		FirstName: "Test",
		LastName:  "Member",
		Email:     dni + "@example.com",
	}
	mustCreate(suite.T(), suite.db, member)
	return member
}

func (suite *CheckoutServiceTestSuite) createRegistration(memberID uuid.UUID, payment models.PaymentStatus, status models.RegistrationStatus) {
	registration := &models.CourseRegistration{
		MemberID:         memberID,
		CourseID:         suite.catalog.Course.ID,
		CoursePriceID:    suite.catalog.CourseTier.ID,
		PriceSnapshot:    suite.catalog.CourseTier.PriceCents,
		LabelSnapshot:    suite.catalog.CourseTier.Label,
		TotalAmountCents: suite.catalog.CourseTier.PriceCents,
		PaymentStatus:    payment,
		Status:           status,
	}
	mustCreate(suite.T(), suite.db, registration)
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}
