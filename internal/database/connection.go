// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ocioclub/club-backend/internal/config"
	"github.com/ocioclub/club-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable pgcrypto for gen_random_uuid()
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
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
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Server-side UUID defaults stay out of the model tags so the DDL
	// is portable; Postgres gets them here for out-of-band inserts.
	if err := applyUUIDDefaults(db); err != nil {
		return fmt.Errorf("failed to apply uuid defaults: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func applyUUIDDefaults(db *gorm.DB) error {
	tables := []string{
		"seasons",
		"members",
		"license_offerings",
		"supplement_groups",
		"supplements",
		"supplement_prices",
		"supplement_group_prices",
		"courses",
		"course_prices",
		"memberships",
		"course_registrations",
	}

	for _, table := range tables {
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN id SET DEFAULT gen_random_uuid()", table)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set uuid default on %s: %w", table, err)
		}
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Member indexes
		"CREATE INDEX IF NOT EXISTS idx_members_email ON members(email)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_memberships_member_season ON memberships(member_id, season_id)",
		"CREATE INDEX IF NOT EXISTS idx_memberships_payment_status ON memberships(payment_status, status)",
		"CREATE INDEX IF NOT EXISTS idx_memberships_created_at ON memberships(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_course_payment ON course_registrations(course_id, payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_created_at ON course_registrations(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// Seed initial data
func SeedInitialData(db *gorm.DB) error {
	log.Println("Seeding initial data...")

	var seasonCount int64
	db.Model(&models.Season{}).Count(&seasonCount)

	if seasonCount == 0 {
		now := time.Now()
		season := &models.Season{
			Name:               fmt.Sprintf("%d/%d", now.Year(), now.Year()+1),
			StartsAt:           time.Date(now.Year(), time.September, 1, 0, 0, 0, 0, time.UTC),
			EndsAt:             time.Date(now.Year()+1, time.August, 31, 0, 0, 0, 0, time.UTC),
			Active:             true,
			MembershipFeeCents: 2000,
		}

		if err := db.Create(season).Error; err != nil {
			return fmt.Errorf("failed to create default season: %w", err)
		}

		log.Printf("Default season %s created successfully", season.Name)
	}

	log.Println("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
