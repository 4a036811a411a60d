package database

import (
	"log"

	"github.com/sundaiclub/pitch-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Member{},
		&models.Project{},
		&models.Event{},
		&models.QueueItem{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	return db
}
