package database

import (
	"weblynx/internal/database/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.LogSource{},
		&models.RequestRecord{},
		&models.IPLocation{},
	)
}
