package infra

import (
	"fmt"

	"github.com/ciprianbratila/ortho-orders/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate to create or update all tables.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against
// throwaway containers.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Material{},
		&model.MaterialPriceHistory{},
		&model.MaterialStockMovement{},
		&model.Product{},
		&model.ProductComponent{},
		&model.Client{},
		&model.ClientDocument{},
		&model.Employee{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.DocumentCounter{},
		&model.UserGroup{},
		&model.User{},
	)
}
