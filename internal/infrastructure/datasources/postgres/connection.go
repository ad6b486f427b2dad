package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blood-donate.backend/internal/config"
	"blood-donate.backend/internal/infrastructure/models"
	_ "github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	sqlOpen = sql.Open
	dbPing  = func(db *sql.DB) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.PingContext(ctx)
	}
)

// NewConnection opens a lib/pq pool, verifies it, and hands it to gorm.
func NewConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	sqlDB, err := sqlOpen("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := dbPing(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the tables and unique indexes.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.DonationRequest{}, &models.Funding{})
}

// Ping checks the pool answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
