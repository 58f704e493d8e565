package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/config"
	"github.com/diewo77/traiteur/internal/db"
	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	log, closeLog, err := logging.New(cfg.Log, cfg.App.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	defer log.Sync() //nolint:errcheck
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Connect(ctx, cfg.Database, cfg.App.Dev, log)
	if err != nil {
		return err
	}
	if err := db.Setup(gdb, cfg.App.Migrations, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	if *migrateOnlyFlag {
		log.Info("migrations completed")
		return nil
	}

	if cfg.App.Seed || *seedOnlyFlag {
		if _, err := db.Seed(ctx, docstore.New(gdb, log), cfg.App.Title, log); err != nil {
			return err
		}
	}
	if *seedOnlyFlag {
		log.Info("seeding completed")
		return nil
	}

	app, err := NewApp(ctx, gdb, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()
	app.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	timeout := time.Duration(cfg.Server.ShutdownTimeout * float64(time.Second))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
