// Package db opens the database, creates the documents table and seeds the
// default settings document.
package db

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/traiteur/internal/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Dialector picks the gorm driver and DSN for cfg.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case DriverPostgres, "":
		dsn := NormalizeDSN(cfg.DSN())
		if dsn == "" {
			return nil, "", fmt.Errorf("empty postgres DSN")
		}
		return postgres.Open(dsn), dsn, nil
	case DriverSQLite:
		dsn := cfg.Path
		if cfg.DSNOverride != "" {
			dsn = cfg.DSNOverride
		}
		return sqlite.Open(dsn), dsn, nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Connect opens the database, retrying while a postgres server starts up.
func Connect(ctx context.Context, cfg config.DatabaseConfig, dev bool, log *zap.Logger) (*gorm.DB, error) {
	log = log.Named("db")
	dialector, dsn, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	level := logger.Silent
	if dev {
		level = logger.Warn
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	attempts := connectAttempts
	if cfg.Driver == DriverSQLite {
		attempts = 1
	}
	var gdb *gorm.DB
	for i := 1; i <= attempts; i++ {
		gdb, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn("connection attempt failed", zap.Int("attempt", i), zap.Int("of", attempts), zap.Error(err))
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if err := gdb.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("connected", zap.String("driver", gdb.Dialector.Name()), zap.String("dsn", MaskDSN(dsn)))
	return gdb, nil
}
