package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/notify"
)

func (a *API) getConfig(w http.ResponseWriter, r *http.Request) {
	d, err := a.snapshot()
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, d.Config)
}

// patchConfig merges the body over the current config. Lists are replaced
// as a whole.
func (a *API) patchConfig(w http.ResponseWriter, r *http.Request) {
	d, err := a.snapshot()
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	cfg := d.Config
	if err := httpx.Decode(r, &cfg); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	rec := a.recorder()
	if _, err := a.store.Update(r.Context(), data.Partial{Config: &cfg}); err != nil {
		rec.Notify("Config could not be saved.", notify.Error)
		a.fail(w, r, err, nil, rec)
		return
	}
	rec.Notify("Config updated.", notify.Success)
	httpx.JSON(w, http.StatusOK, struct {
		Config any            `json:"config"`
		Toasts []notify.Toast `json:"toasts"`
	}{cfg, rec.Toasts()})
}

// reset empties the collection named by ?field=, or every collection but
// the config.
func (a *API) reset(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")
	if err := a.store.Reset(r.Context(), field); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	a.log.Warn("collection reset", zap.String("field", field))
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) refetch(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Refetch(r.Context()); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) healthz(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports ready once every view is computed and the config exists.
func (a *API) readyz(w http.ResponseWriter, _ *http.Request) {
	d := a.store.Snapshot()
	switch {
	case d.Critical:
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "critical", "message": data.CriticalMessage})
	case !d.Ready.All():
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading", "ready": d.Ready})
	default:
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "ready", "ready": d.Ready})
	}
}
