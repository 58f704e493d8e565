package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/archive"
	"github.com/diewo77/traiteur/internal/config"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/editor"
	"github.com/diewo77/traiteur/internal/geo"
	"github.com/diewo77/traiteur/internal/grid"
	"github.com/diewo77/traiteur/internal/handlers"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/realtime"
)

// App owns the long-lived components and serves the API.
type App struct {
	handler http.Handler
	state   *data.State
	editor  *editor.Manager
	hub     *realtime.Hub
	bridge  *docstore.Bridge
	redis   *redis.Client
	log     *zap.Logger

	stopPublish func()
}

// NewApp subscribes to the store and wires the API. Close releases what
// it started.
func NewApp(ctx context.Context, gdb *gorm.DB, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{log: log}

	store := docstore.New(gdb, log)
	if cfg.Redis.Enabled() {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		app.bridge = docstore.NewBridge(app.redis, cfg.Redis.Channel, store, log)
		store.SetPublisher(app.bridge)
	}

	app.state = data.New(store, log)
	app.hub = realtime.NewHub(log)
	app.stopPublish = app.state.OnChange(func(d data.Data) {
		if err := app.hub.Publish(realtime.TypeData, d); err != nil {
			log.Warn("data not published", zap.Error(err))
		}
	})
	if err := app.state.Start(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("start data: %w", err)
	}
	notifier := notify.NewLogger(log, app.hub)

	arch, err := archive.New(cfg.Storage, log)
	if err != nil {
		app.Close()
		return nil, err
	}
	if b, ok := arch.(*archive.Bucket); ok {
		if err := b.EnsureBucket(ctx); err != nil {
			log.Warn("quote archive unavailable", zap.Error(err))
		}
	}

	caps := grid.DefaultCapabilities()
	caps.Delete = cfg.App.AllowDelete

	app.editor = editor.NewManager(app.state, geo.New(cfg.Maps, log), notifier, editor.DefaultTTL, log)
	api := handlers.New(handlers.Options{
		Store:        app.state,
		Editor:       app.editor,
		Archive:      arch,
		Hub:          app.hub,
		Notifier:     notifier,
		Capabilities: caps,
		Log:          log,
	})
	mux := http.NewServeMux()
	api.Register(mux)
	app.handler = withRecover(log, withLogging(log, mux))
	return app, nil
}

// Run starts the background loops; they stop with ctx.
func (a *App) Run(ctx context.Context) {
	go a.editor.Run(ctx)
	if a.bridge != nil {
		go func() {
			if err := a.bridge.Run(ctx); err != nil {
				a.log.Error("change bridge stopped", zap.Error(err))
			}
		}()
	}
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Close stops the subscriptions.
func (a *App) Close() {
	if a.stopPublish != nil {
		a.stopPublish()
	}
	if a.state != nil {
		a.state.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
}

// statusRecorder keeps the status for the access log. Streams need the
// flusher and the hijacker of the wrapped writer.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// withLogging adds request logging middleware.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	log = log.Named("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// withRecover turns a panic into a 500.
func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Error("panic serving request",
					zap.String("path", r.URL.Path),
					zap.Any("panic", v),
					zap.ByteString("stack", debug.Stack()),
				)
				httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
