// Package db opens the database and keeps its schema current.
package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/diewo77/go-faktury/internal/config"
	"github.com/diewo77/go-faktury/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// MigrationsSource is where the SQL migrations live.
var MigrationsSource = "file://migrations"

// Connect opens the configured database, retrying while postgres starts up.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	switch cfg.Driver {
	case "sqlite":
		log.Printf("Opening sqlite database %s", cfg.SQLitePath)
		d, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite only enforces ON DELETE CASCADE with foreign keys on
		if err := d.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return d, nil
	case "postgres":
		dsn := NormalizeDSN(cfg.KeyValueDSN())
		log.Printf("Connecting to database: %s", MaskDSN(dsn))
		var d *gorm.DB
		var err error
		for i := range connectAttempts {
			d, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				break
			}
			log.Printf("Database not ready (attempt %d/%d): %v", i+1, connectAttempts, err)
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("connect database after retries: %w", err)
		}
		if err := d.Exec("SELECT 1").Error; err != nil {
			return nil, fmt.Errorf("db ping failed: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies the SQL migrations with golang-migrate. Only
// postgres is supported; url is a postgres:// connection string.
func RunSQLMigrations(url string) error {
	m, err := migrate.New(MigrationsSource, url)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Setup brings the schema up to date: SQL migrations on postgres when
// requested, AutoMigrate otherwise.
func Setup(db *gorm.DB, cfg config.DatabaseConfig, sqlMigrations bool) error {
	if sqlMigrations && cfg.Postgres() {
		log.Println("Running SQL migrations")
		return RunSQLMigrations(cfg.URL())
	}
	return Migrate(db)
}

// Seed adds the allow-listed e-mails. Running it twice changes nothing.
func Seed(db *gorm.DB, allowedEmails []string) error {
	for _, e := range allowedEmails {
		email := models.NormalizeEmail(e)
		if email == "" {
			continue
		}
		var existing models.AllowedEmail
		err := db.Where("email = ?", email).First(&existing).Error
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&models.AllowedEmail{Email: email}).Error; err != nil {
				return fmt.Errorf("seed allowed email %s: %w", email, err)
			}
		default:
			return fmt.Errorf("lookup allowed email %s: %w", email, err)
		}
	}
	return nil
}
