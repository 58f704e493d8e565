package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/traiteur/internal/docstore"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate creates or updates the schema with gorm AutoMigrate.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&docstore.Document{}); err != nil {
		return fmt.Errorf("automigrate %T: %w", docstore.Document{}, err)
	}
	if !gdb.Migrator().HasTable(docstore.Document{}.TableName()) {
		return errors.New("missing table after migration: " + docstore.Document{}.TableName())
	}
	return nil
}

// MigrateSQL applies the embedded SQL migrations with golang-migrate. Only
// postgres is supported; sqlite databases go through Migrate.
func MigrateSQL(gdb *gorm.DB, log *zap.Logger) error {
	if gdb.Dialector.Name() != DriverPostgres {
		return fmt.Errorf("sql migrations need postgres, got %s", gdb.Dialector.Name())
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, DriverPostgres, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sql migrations failed: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Named("db").Info("sql migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Setup runs the migrations selected by useSQL.
func Setup(gdb *gorm.DB, useSQL bool, log *zap.Logger) error {
	if useSQL {
		return MigrateSQL(gdb, log)
	}
	return Migrate(gdb)
}
