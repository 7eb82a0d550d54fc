package database

import (
	"fmt"
	"time"

	"ss-uniforms/internal/config"
	"ss-uniforms/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database, retrying while it comes up, and syncs the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("database: DB_DSN is not configured for driver %q", cfg.DBDriver)
	}

	level := logger.Info
	if cfg.Production() {
		level = logger.Warn
	}

	var db *gorm.DB
	var err error

	// Wait for DB to be ready
	for i := 0; i < 5; i++ {
		var dialector gorm.Dialector
		dialector, err = Dialector(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger: logger.Default.LogMode(level),
		})
		if err == nil {
			break
		}
		log.WithError(err).Warnf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("database: connect after 5 attempts: %w", err)
	}

	log.WithField("driver", cfg.DBDriver).Info("Connected to database")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database schema synced")

	return db, nil
}

// Dialector maps a driver name to its gorm dialector.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q (supported: mysql, postgres, sqlite)", driver)
	}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Catalogue{},
		&models.Item{},
		&models.ItemSize{},
		&models.Sale{},
		&models.ShopInfo{},
	)
	if err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}
