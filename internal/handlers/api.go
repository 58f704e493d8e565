// Package handlers exposes the catering back office as a JSON API.
package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/archive"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/editor"
	"github.com/diewo77/traiteur/internal/grid"
	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/realtime"
)

// Store is the data layer as seen by the handlers.
type Store interface {
	Snapshot() data.Data
	Update(ctx context.Context, p data.Partial) (data.UpdatedKeys, error)
	Reset(ctx context.Context, field string) error
	Refetch(ctx context.Context) error
	Writer(collection string) data.Writer
}

// Options wire the API. Archive, Hub and Notifier may be nil.
type Options struct {
	Store        Store
	Editor       *editor.Manager
	Archive      archive.Archiver
	Hub          *realtime.Hub
	Notifier     notify.Notifier
	Capabilities grid.Capabilities
	Log          *zap.Logger
	Now          func() time.Time
	// Heartbeat is the keepalive period of the realtime streams.
	Heartbeat time.Duration
}

// API serves every route under /api plus the health checks.
type API struct {
	store     Store
	editor    *editor.Manager
	archive   archive.Archiver
	hub       *realtime.Hub
	notifier  notify.Notifier
	caps      grid.Capabilities
	log       *zap.Logger
	now       func() time.Time
	heartbeat time.Duration
}

func New(o Options) *API {
	if o.Archive == nil {
		o.Archive = archive.Disabled{}
	}
	if o.Notifier == nil {
		o.Notifier = notify.Discard{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Heartbeat <= 0 {
		o.Heartbeat = 30 * time.Second
	}
	return &API{
		store:     o.Store,
		editor:    o.Editor,
		archive:   o.Archive,
		hub:       o.Hub,
		notifier:  o.Notifier,
		caps:      o.Capabilities,
		log:       o.Log.Named("api"),
		now:       o.Now,
		heartbeat: o.Heartbeat,
	}
}

// gridCollections are the collections served by a grid.
var gridCollections = []string{
	models.CollectionClients,
	models.CollectionEvents,
	models.CollectionDishes,
	models.CollectionMenus,
	models.CollectionMaterials,
	models.CollectionDrinks,
}

// Register mounts the routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.healthz)
	mux.HandleFunc("GET /readyz", a.readyz)

	for _, c := range gridCollections {
		headers, _ := headcell.For(c)
		g := &gridRoutes{api: a, collection: c, headers: headers}
		mux.HandleFunc("GET /api/"+c, g.list)
		mux.HandleFunc("POST /api/"+c, g.create)
		mux.HandleFunc("PUT /api/"+c+"/{id}", g.update)
		mux.HandleFunc("DELETE /api/"+c+"/{id}", g.remove)
		mux.HandleFunc("GET /api/"+c+"/options", g.options)
		mux.HandleFunc("GET /api/"+c+"/hierarchy", g.hierarchy)
		mux.HandleFunc("POST /api/"+c+"/selection", g.selection)
		mux.HandleFunc("GET /api/"+c+"/export.xlsx", g.export)
		mux.HandleFunc("GET /api/"+c+"/suggest", g.suggest)
		mux.HandleFunc("POST /api/"+c+"/inline", g.inline)
	}

	mux.HandleFunc("GET /api/config", a.getConfig)
	mux.HandleFunc("PATCH /api/config", a.patchConfig)
	mux.HandleFunc("POST /api/admin/reset", a.reset)
	mux.HandleFunc("POST /api/admin/refetch", a.refetch)

	mux.HandleFunc("GET /api/menus/{id}/groups", a.menuGroups)
	mux.HandleFunc("GET /api/events/{id}/quote", a.quoteModel)
	mux.HandleFunc("GET /api/events/{id}/quote.pdf", a.quotePDF)
	mux.HandleFunc("GET /api/events/{id}/quote.html", a.quotePage)
	mux.HandleFunc("GET /api/events/{id}/labels", a.labelOptions)
	mux.HandleFunc("POST /api/events/{id}/labels", a.addLabel)
	mux.HandleFunc("DELETE /api/events/{id}/labels/{label}", a.removeLabel)
	mux.HandleFunc("GET /api/archive/{key...}", a.archived)
	mux.HandleFunc("GET /api/calendar", a.calendar)
	mux.HandleFunc("GET /api/history", a.history)

	mux.HandleFunc("POST /api/editor", a.openEditor)
	mux.HandleFunc("GET /api/editor/{sid}", a.getEditor)
	mux.HandleFunc("DELETE /api/editor/{sid}", a.closeEditor)
	mux.HandleFunc("POST /api/editor/{sid}/save", a.saveEditor)
	mux.HandleFunc("POST /api/editor/{sid}/{action}", a.applyEditor)

	mux.HandleFunc("GET /api/stream", a.stream)
	mux.HandleFunc("GET /api/ws", a.ws)
}

// snapshot returns the data, or ErrConfigMissing while the store is broken.
func (a *API) snapshot() (data.Data, error) {
	d := a.store.Snapshot()
	if d.Critical {
		return d, data.ErrConfigMissing
	}
	return d, nil
}

// recorder collects the toasts of one request and forwards them.
func (a *API) recorder() *notify.Recorder { return notify.NewRecorder(a.notifier) }
