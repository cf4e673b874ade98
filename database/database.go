package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"game-catalog-sync/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to dsn. Postgres is the default; "file:", "sqlite://" and ":memory:"
// DSNs open a pure-Go SQLite database instead (local runs and tests).
func Open(dsn string, opts ...func(*gorm.Config)) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	for _, opt := range opts {
		opt(cfg)
	}

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		dialector = sqlite.Open("file:" + strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// one connection so every session sees the same in-memory database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// WithNowFunc overrides the clock gorm uses for CreatedAt/UpdatedAt.
func WithNowFunc(now func() time.Time) func(*gorm.Config) {
	return func(cfg *gorm.Config) { cfg.NowFunc = now }
}

// Migrate creates or updates the catalog schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Game{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// Ping runs a trivial round trip, for the db-health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[DB] ⚠️ Failed to get handle for close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("[DB] ⚠️ Close failed: %v", err)
	}
}
