package database

import (
	"forestry-backend/internal/config"
	"forestry-backend/internal/logging"
	"forestry-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	log := logging.GetLogger()

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	err = DB.AutoMigrate(
		&models.AuthUser{},
		&models.Member{},
		&models.Attendance{},
		&models.StaffMember{},
		&models.YearlyGoal{},
		&models.StockItem{},
		&models.Distribution{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	log.Info("database connected, migration complete")
}
