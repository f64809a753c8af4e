package database

import (
	"fmt"

	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/models"
	"github.com/rollcall-app/rollcall/internal/store"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open builds the store selected by storage.driver. The memory driver needs
// no connection; the relational drivers open gorm and run auto-migration.
func Open(cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite", "mysql":
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return store.NewGorm(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openDB(cfg *config.AppConfig) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch cfg.Storage.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:               cfg.Storage.DSN,
			DefaultStringSize: 191,
		})
	default:
		dialector = sqlite.Open(cfg.Storage.Path)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// migrate runs GORM auto-migration for all models.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Session{},
		&models.AttendanceRecord{},
		&models.Student{},
	)
}
