package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/archive"
	"github.com/diewo77/traiteur/internal/calendar"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/quote"
	"github.com/diewo77/traiteur/internal/subeditor"
	"github.com/diewo77/traiteur/view"
)

const pdfContentType = "application/pdf"

func (a *API) event(id string) (models.Event, data.Data, error) {
	d, err := a.snapshot()
	if err != nil {
		return models.Event{}, d, err
	}
	e, ok := d.Event(id)
	if !ok {
		return e, d, fmt.Errorf("event %s: %w", id, errNotFound)
	}
	return e, d, nil
}

// menuGroups returns the dishes of a menu bucketed by the configured
// categories.
func (a *API) menuGroups(w http.ResponseWriter, r *http.Request) {
	d, err := a.snapshot()
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	id := r.PathValue("id")
	m, ok := d.Menu(id)
	if !ok {
		a.fail(w, r, fmt.Errorf("menu %s: %w", id, errNotFound), nil, nil)
		return
	}
	category := func(p models.Plat) string { return p.Category }
	httpx.JSON(w, http.StatusOK, subeditor.Group(m.Plats, category, d.Config.CategoriesSorted))
}

func (a *API) quoteModel(w http.ResponseWriter, r *http.Request) {
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, quote.Build(e, d.Config))
}

// quotePage renders the quote as an HTML page.
func (a *API) quotePage(w http.ResponseWriter, r *http.Request) {
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	q := quote.Build(e, d.Config)
	if err := view.Render(w, "quote.html", map[string]any{"Title": q.Title, "Company": q.Company, "Quote": q}); err != nil {
		a.fail(w, r, err, nil, nil)
	}
}

// quotePDF renders the quote and keeps a copy in the archive when one is
// configured. The archive key is returned in X-Archive-Key.
func (a *API) quotePDF(w http.ResponseWriter, r *http.Request) {
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	body, err := quote.Render(quote.Build(e, d.Config))
	if err != nil {
		a.fail(w, r, fmt.Errorf("render quote: %w", err), nil, nil)
		return
	}
	key := archive.QuoteKey(e.ID, e.Date)
	switch err := a.archive.Put(r.Context(), key, body, pdfContentType); {
	case err == nil:
		w.Header().Set("X-Archive-Key", key)
	case !errors.Is(err, archive.ErrDisabled):
		a.log.Warn("quote not archived", zap.String("event", e.ID), zap.Error(err))
	}
	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="devis-%s.pdf"`, e.Date.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// archived streams back an archived document.
func (a *API) archived(w http.ResponseWriter, r *http.Request) {
	rc, err := a.archive.Get(r.Context(), r.PathValue("key"))
	if errors.Is(err, archive.ErrDisabled) {
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
		return
	}
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", pdfContentType)
	if _, err := io.Copy(w, rc); err != nil {
		a.log.Warn("archive stream interrupted", zap.Error(err))
	}
}

type labelsResponse struct {
	Labels []models.Label `json:"labels"`
	Status []models.Label `json:"status"`
}

// labelOptions lists what can still be attached to the event.
func (a *API) labelOptions(w http.ResponseWriter, r *http.Request) {
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, labelsResponse{
		Labels: calendar.LabelOptions(e, d.Config),
		Status: calendar.StatusOptions(e, d.Config),
	})
}

type eventResponse struct {
	Event  models.Event   `json:"event"`
	Toasts []notify.Toast `json:"toasts"`
}

func (a *API) addLabel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	e, err = calendar.ApplyLabel(e, d.Config, body.ID)
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	a.saveEvent(w, r, e, "Label added.")
}

func (a *API) removeLabel(w http.ResponseWriter, r *http.Request) {
	e, d, err := a.event(r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	e, err = calendar.RemoveLabel(e, d.Config, r.PathValue("label"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	a.saveEvent(w, r, e, "Label removed.")
}

func (a *API) saveEvent(w http.ResponseWriter, r *http.Request, e models.Event, msg string) {
	rec := a.recorder()
	if _, err := a.store.Update(r.Context(), data.Partial{Events: []models.Event{e}}); err != nil {
		rec.Notify("Event could not be saved.", notify.Error)
		a.fail(w, r, err, nil, rec)
		return
	}
	rec.Notify(msg, notify.Success)
	httpx.JSON(w, http.StatusOK, eventResponse{Event: e, Toasts: rec.Toasts()})
}

// filters switches off every ?off= name.
func filters(r *http.Request, cfg models.Config) calendar.Filters {
	f := calendar.DefaultFilters(cfg)
	for _, name := range r.URL.Query()["off"] {
		f[name] = false
	}
	return f
}

// parseBound accepts RFC 3339 timestamps and plain dates.
func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", errBadRequest, s)
	}
	return t, nil
}

var errBadRequest = errors.New("bad request")

func (a *API) calendar(w http.ResponseWriter, r *http.Request) {
	d, err := a.snapshot()
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	q := r.URL.Query()
	from, err := parseBound(q.Get("from"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	to, err := parseBound(q.Get("to"))
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, calendar.Items(d.Events, d.Config, filters(r, d.Config), from, to))
}

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	d, err := a.snapshot()
	if err != nil {
		a.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, calendar.Split(d.Events, a.now(), r.URL.Query().Get("client"), filters(r, d.Config)))
}
