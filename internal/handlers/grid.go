package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/export"
	"github.com/diewo77/traiteur/internal/grid"
	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/internal/selector"
	"github.com/diewo77/traiteur/validation"
)

// SuggestLimit caps the suggestions of one type-ahead request.
const SuggestLimit = 10

// gridRoutes serves one collection. Every request builds its engine from
// the latest snapshot.
type gridRoutes struct {
	api        *API
	collection string
	headers    []headcell.HeadCell
}

var titles = map[string]string{
	models.CollectionClients:   "Client",
	models.CollectionEvents:    "Event",
	models.CollectionDishes:    "Dish",
	models.CollectionMenus:     "Menu",
	models.CollectionMaterials: "Material",
	models.CollectionDrinks:    "Drink",
}

type writeResponse struct {
	ID     string         `json:"id,omitempty"`
	Toasts []notify.Toast `json:"toasts"`
}

func (g *gridRoutes) engine(n notify.Notifier) (*grid.Engine, error) {
	return g.newEngine(grid.Options{Notifier: n})
}

// newEngine completes opts with the collection settings and loads the
// current rows.
func (g *gridRoutes) newEngine(opts grid.Options) (*grid.Engine, error) {
	d, err := g.api.snapshot()
	if err != nil {
		return nil, err
	}
	rows, err := d.Rows(g.collection)
	if err != nil {
		return nil, err
	}
	opts.Title = titles[g.collection]
	opts.Headers = g.headers
	opts.Capabilities = g.api.caps
	opts.Writer = g.api.store.Writer(g.collection)
	e := grid.New(opts)
	e.SetData(rows)
	return e, nil
}

// applyFilters reads f.<field> (column filters) from the query. Array
// columns accept the parameter several times.
func (g *gridRoutes) applyFilters(e *grid.Engine, r *http.Request, prefix string) {
	q := r.URL.Query()
	for _, h := range g.headers {
		vals, ok := q[prefix+h.Field]
		if !ok {
			continue
		}
		if h.IsArray() {
			list := make([]any, 0, len(vals))
			for _, v := range vals {
				if v != "" {
					list = append(list, v)
				}
			}
			e.SetFilter(h.Field, list)
			continue
		}
		e.SetFilter(h.Field, vals[0])
	}
}

func (g *gridRoutes) list(w http.ResponseWriter, r *http.Request) {
	e, err := g.engine(nil)
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	q := r.URL.Query()
	g.applyFilters(e, r, "f.")
	if clear, _ := strconv.ParseBool(q.Get("clearFilters")); clear {
		e.ClearFilters()
	}
	e.SetQuery(q.Get("q"))
	e.SetSort(q.Get("orderBy"), grid.Order(q.Get("order")))
	if field := q.Get("sort"); field != "" {
		e.RequestSort(field)
	}
	if s := q.Get("rowsPerPage"); s != "" {
		n, err := strconv.Atoi(s)
		if err == nil {
			err = e.SetRowsPerPage(n)
		}
		if err != nil {
			g.api.fail(w, r, fmt.Errorf("%w: %s", grid.ErrInvalidPageSize, s), nil, nil)
			return
		}
	}
	if s := q.Get("page"); s != "" {
		n, _ := strconv.Atoi(s)
		e.SetPage(n)
	}
	httpx.JSON(w, http.StatusOK, struct {
		grid.Page
		Capabilities grid.Capabilities `json:"capabilities"`
	}{e.View(), e.Capabilities()})
}

// currentValues reads the v.<field> values of a form being filled.
func (g *gridRoutes) currentValues(r *http.Request) record.Row {
	current := record.Row{}
	q := r.URL.Query()
	for _, h := range g.headers {
		vals, ok := q["v."+h.Field]
		if !ok {
			continue
		}
		if h.IsArray() {
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			current[h.Field] = list
			continue
		}
		current[h.Field] = vals[0]
	}
	return current
}

// options returns the column descriptors with their filter options
// narrowed by the v.<field> values.
func (g *gridRoutes) options(w http.ResponseWriter, r *http.Request) {
	e, err := g.engine(nil)
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, headcell.BuildHeadersOptions(g.headers, e.Data(), g.currentValues(r)))
}

type hierarchyResponse struct {
	Field   string   `json:"field"`
	Path    []string `json:"path"`
	Options []string `json:"options"`
}

// hierarchy returns the next segments of a hierarchization column after
// the path segments given so far, among the rows matching the v.<field>
// values of its parents.
func (g *gridRoutes) hierarchy(w http.ResponseWriter, r *http.Request) {
	e, err := g.engine(nil)
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	q := r.URL.Query()
	field := q.Get("field")
	h, ok := headcell.Find(headcell.BuildHeadersOptions(g.headers, e.Data(), g.currentValues(r)), field)
	if !ok || h.Type() != headcell.Hierarchization {
		g.api.fail(w, r, fmt.Errorf("%w: %q is not a hierarchy column", errBadRequest, field), nil, nil)
		return
	}
	path := q["path"]
	if path == nil {
		path = []string{}
	}
	opts := headcell.BuildHierarchyOptions(h.Paths, path)
	if opts == nil {
		opts = []string{}
	}
	httpx.JSON(w, http.StatusOK, hierarchyResponse{Field: field, Path: path, Options: opts})
}

type selectionRequest struct {
	Selected []string `json:"selected"`
	Action   string   `json:"action"`
	ID       string   `json:"id,omitempty"`
}

type selectionResponse struct {
	Selected []string     `json:"selected"`
	Rows     []record.Row `json:"rows"`
}

// selection applies one selection action to the ids the client holds.
// "all" selects the rows matching the f.<field> and q parameters.
func (g *gridRoutes) selection(w http.ResponseWriter, r *http.Request) {
	var body selectionRequest
	if err := httpx.Decode(r, &body); err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	var rows []record.Row
	e, err := g.newEngine(grid.Options{
		OnSelectionChange: func(selected []record.Row) { rows = selected },
	})
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	g.applyFilters(e, r, "f.")
	e.SetQuery(r.URL.Query().Get("q"))
	e.SetSelection(body.Selected)

	switch body.Action {
	case "toggle":
		if !slices.ContainsFunc(e.Data(), func(row record.Row) bool { return row.ID() == body.ID }) {
			g.api.fail(w, r, fmt.Errorf("%w: %s", grid.ErrNotFound, body.ID), nil, nil)
			return
		}
		e.Toggle(body.ID)
	case "all":
		e.SelectAll()
	case "clear":
		e.ClearSelection()
	default:
		g.api.fail(w, r, fmt.Errorf("%w: selection action %q", errBadRequest, body.Action), nil, nil)
		return
	}
	selected := e.Selected()
	if selected == nil {
		selected = []string{}
	}
	if rows == nil {
		rows = []record.Row{}
	}
	httpx.JSON(w, http.StatusOK, selectionResponse{Selected: selected, Rows: rows})
}

// export writes the filtered and sorted rows as a workbook.
func (g *gridRoutes) export(w http.ResponseWriter, r *http.Request) {
	e, err := g.engine(nil)
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	q := r.URL.Query()
	g.applyFilters(e, r, "f.")
	e.SetQuery(q.Get("q"))
	rows := grid.Sort(g.headers, e.Filtered(), orDefault(q.Get("orderBy"), grid.DefaultOrderBy), grid.Order(q.Get("order")))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, g.collection))
	if err := export.Write(w, g.collection, g.headers, rows); err != nil {
		g.api.fail(w, r, err, nil, nil)
	}
}

func (g *gridRoutes) create(w http.ResponseWriter, r *http.Request) {
	var values record.Row
	if err := httpx.Decode(r, &values); err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	rec := g.api.recorder()
	e, err := g.engine(rec)
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	f, err := e.OpenCreate()
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	merged := f.Values()
	for k, v := range values {
		merged[k] = v
	}
	f.SetValues(merged, true)
	g.submit(w, r, e, rec, http.StatusCreated)
}

func (g *gridRoutes) update(w http.ResponseWriter, r *http.Request) {
	var values record.Row
	if err := httpx.Decode(r, &values); err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	rec := g.api.recorder()
	e, err := g.engine(rec)
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	f, err := e.OpenUpdate(r.PathValue("id"))
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	merged := f.Values()
	for k, v := range values {
		merged[k] = v
	}
	f.SetValues(merged, true)
	g.submit(w, r, e, rec, http.StatusOK)
}

func (g *gridRoutes) submit(w http.ResponseWriter, r *http.Request, e *grid.Engine, rec *notify.Recorder, status int) {
	f := e.Form()
	id, err := e.Submit(r.Context())
	if err != nil {
		var details any
		if statusOf(err) == http.StatusUnprocessableEntity {
			details = f.Violations()
		}
		g.api.fail(w, r, err, details, rec)
		return
	}
	httpx.JSON(w, status, writeResponse{ID: id, Toasts: rec.Toasts()})
}

// remove deletes the path id plus any ids of the body list. Deletion needs
// confirm=true.
func (g *gridRoutes) remove(w http.ResponseWriter, r *http.Request) {
	var extra []string
	if err := httpx.Decode(r, &extra); err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	rec := g.api.recorder()
	e, err := g.engine(rec)
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	ids := append([]string{r.PathValue("id")}, extra...)
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := e.Delete(r.Context(), ids, confirmed); err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	httpx.JSON(w, http.StatusOK, writeResponse{Toasts: rec.Toasts()})
}

func (g *gridRoutes) selector(n notify.Notifier) (*selector.Selector, error) {
	d, err := g.api.snapshot()
	if err != nil {
		return nil, err
	}
	rows, err := d.Rows(g.collection)
	if err != nil {
		return nil, err
	}
	var creator selector.Creator
	if g.api.caps.Create {
		writer := g.api.store.Writer(g.collection)
		creator = selector.CreatorFunc(func(ctx context.Context, row record.Row) (string, error) {
			return writer.Save(ctx, validation.ModeAdd, row)
		})
	}
	return selector.New(selector.Options{
		Title:    titles[g.collection],
		Pool:     rows,
		Headers:  g.headers,
		Creator:  creator,
		Notifier: n,
	}), nil
}

type suggestResponse struct {
	Options   []record.Row `json:"options"`
	CanCreate bool         `json:"canCreate"`
}

func (g *gridRoutes) suggest(w http.ResponseWriter, r *http.Request) {
	s, err := g.selector(nil)
	if err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	text := r.URL.Query().Get("q")
	limit := SuggestLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = n
	}
	opts := s.Suggest(text, limit)
	if opts == nil {
		opts = []record.Row{}
	}
	httpx.JSON(w, http.StatusOK, suggestResponse{Options: opts, CanCreate: s.CanCreate(strings.TrimSpace(text))})
}

type inlineResponse struct {
	Row    record.Row     `json:"row"`
	Toasts []notify.Toast `json:"toasts"`
}

// inline creates an entity from a type-ahead field.
func (g *gridRoutes) inline(w http.ResponseWriter, r *http.Request) {
	var values record.Row
	if err := httpx.Decode(r, &values); err != nil {
		g.api.fail(w, r, err, nil, nil)
		return
	}
	rec := g.api.recorder()
	s, err := g.selector(rec)
	if err != nil {
		g.api.fail(w, r, err, nil, rec)
		return
	}
	if values == nil {
		values = record.Row{}
	}
	row, err := s.CreateInline(r.Context(), values)
	if err != nil {
		var details any
		if statusOf(err) == http.StatusUnprocessableEntity {
			details = s.Violations()
		}
		g.api.fail(w, r, err, details, rec)
		return
	}
	httpx.JSON(w, http.StatusCreated, inlineResponse{Row: row, Toasts: rec.Toasts()})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
