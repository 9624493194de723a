package database

import (
	"fmt"
	"time"

	"catering/internal/config"
	"catering/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// Open connects to the configured database and sizes the connection pool
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(cfg.LogMode)

	if cfg.Driver == "sqlite3" {
		// sqlite serializes writers; a single connection also keeps an
		// in-memory database alive and shared.
		db.DB().SetMaxOpenConns(1)
		db.Exec("PRAGMA foreign_keys = ON")
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
		db.DB().SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// OpenMemory opens a migrated, empty in-memory sqlite database
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Customer{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.ReviewMenuItem{},
		&models.TodaysMenu{},
	).Error; err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.Model(&models.TodaysMenu{}).
		AddUniqueIndex("idx_todays_menu_item_date", "menu_item_id", "date").Error; err != nil {
		return fmt.Errorf("failed to index todays_menu: %w", err)
	}
	if err := db.Model(&models.OrderItem{}).
		AddIndex("idx_order_items_order_line", "order_id", "menu_item_id", "size_type").Error; err != nil {
		return fmt.Errorf("failed to index order_items: %w", err)
	}
	return nil
}
