// internal/services/member_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ocioclub/club-backend/internal/models"
)

type MemberService struct {
	db *gorm.DB
}

type ApplicantData struct {
	DNI       string `json:"dni" validate:"required,dni"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

func NewMemberService(db *gorm.DB) *MemberService {
	return &MemberService{db: db}
}

// Upsert creates or updates the member addressed by the normalized
// national ID and returns the stored row. Runs inside the caller's
// transaction when tx is non-nil.
func (s *MemberService) Upsert(tx *gorm.DB, data *ApplicantData) (*models.Member, error) {
	if tx == nil {
		tx = s.db
	}

	member := models.Member{
		DNI:       models.NormalizeDNI(data.DNI),
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Phone:     data.Phone,
		Address:   data.Address,
	}

	if data.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", data.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("invalid birth date: %w", err)
		}
		member.BirthDate = &birthDate
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dni"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "phone", "birth_date", "address", "updated_at",
		}),
	}).Create(&member).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert member: %w", err)
	}

	// The conflict path does not report the existing row's ID, so read
	// it back by the natural key.
	var stored models.Member
	if err := tx.Where("dni = ?", member.DNI).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}

	return &stored, nil
}

// FindByDNI returns the member stored under the normalized national ID.
func (s *MemberService) FindByDNI(dni string) (*models.Member, error) {
	var member models.Member
	if err := s.db.Where("dni = ?", models.NormalizeDNI(dni)).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
