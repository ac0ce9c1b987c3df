package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/config"
	"github.com/motmatch/mot-marketplace/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Garage{},
		&models.User{},
		&models.GarageService{},
		&models.Vehicle{},
		&models.SchedulePattern{},
		&models.ScheduleException{},
		&models.Slot{},
		&models.Booking{},
		&models.BookingLine{},
		&models.Plan{},
		&models.Subscription{},
		&models.Invoice{},
		&models.Notification{},
		&models.WebhookEvent{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE garages
        SET timezone = 'Europe/London'
        WHERE timezone IS NULL OR timezone = ''
    `)

	return db
}
