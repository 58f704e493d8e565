package grid

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

func ids(rows []record.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID()
	}
	return out
}

func drinks() []record.Row {
	return []record.Row{
		{"id": "d1", "name": "Vin rouge", "category": "alcool", "subcategory": "vin", "price": 12.0},
		{"id": "d2", "name": "Vin blanc", "category": "alcool", "subcategory": "vin", "price": 20.0},
		{"id": "d3", "name": "Jus rouge", "category": "minérale", "subcategory": "jus", "price": 5.0},
		{"id": "d4", "name": "Eau", "category": "minérale", "subcategory": "eau", "price": 10.0},
	}
}

func TestFilter_GlobalQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query keeps all", "", []string{"d1", "d2", "d3", "d4"}},
		{"every token must match", "vin rouge", []string{"d1"}},
		{"case insensitive", "VIN", []string{"d1", "d2"}},
		{"tokens across cells", "jus minér", []string{"d3"}},
		{"no match", "bière", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(headcell.Drinks(), drinks(), nil, tt.query))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_Numeric(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{">10", []string{"d1", "d2"}},
		{"<10", []string{"d3"}},
		{"10", []string{"d4"}},
		{"0", []string{"d1", "d2", "d3", "d4"}},
		{"", []string{"d1", "d2", "d3", "d4"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := ids(Filter(headcell.Drinks(), drinks(), record.Row{"price": tt.filter}, ""))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("price filter %q = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestFilter_TextAndHierarchy(t *testing.T) {
	rows := []record.Row{
		{"id": "p1", "name": "Tartare", "category": "Entrée", "categorization": []any{"Poisson", "Saumon"}},
		{"id": "p2", "name": "Tarte", "category": "Dessert", "categorization": []any{"Fruit"}},
		{"id": "p3", "name": "Filet", "category": "Plat", "categorization": []any{"Poisson", "Saumon"}},
	}
	got := ids(Filter(headcell.Plats(), rows, record.Row{"name": "TART"}, ""))
	assert.Equal(t, []string{"p1", "p2"}, got)

	got = ids(Filter(headcell.Plats(), rows, record.Row{"categorization": "poisson,saumon"}, ""))
	assert.Equal(t, []string{"p1", "p3"}, got)

	got = ids(Filter(headcell.Plats(), rows, record.Row{"categorization": "Poisson"}, ""))
	assert.Empty(t, got)
}

func TestFilter_ArraySubset(t *testing.T) {
	rows := []record.Row{
		{"id": "p1", "name": "A", "materials": []any{map[string]any{"id": "m1"}, map[string]any{"id": "m2"}}},
		{"id": "p2", "name": "B", "materials": []any{map[string]any{"id": "m2"}}},
		{"id": "p3", "name": "C", "materials": []any{}},
	}
	tests := []struct {
		name   string
		filter []any
		want   []string
	}{
		{"no filter", []any{}, []string{"p1", "p2", "p3"}},
		{"single", []any{map[string]any{"id": "m2"}}, []string{"p1", "p2"}},
		{"subset", []any{map[string]any{"id": "m1"}, map[string]any{"id": "m2"}}, []string{"p1"}},
		{"absent", []any{map[string]any{"id": "m3"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(headcell.Plats(), rows, record.Row{"materials": tt.filter}, ""))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	filters := record.Row{"category": "alcool", "price": ">5"}
	once := Filter(headcell.Drinks(), drinks(), filters, "vin")
	twice := Filter(headcell.Drinks(), once, filters, "vin")
	assert.Equal(t, ids(once), ids(twice))
}

func TestSort_Stable(t *testing.T) {
	rows := []record.Row{
		{"id": "a", "category": "x"},
		{"id": "b", "category": "y"},
		{"id": "c", "category": "x"},
		{"id": "d", "category": "y"},
		{"id": "e", "category": "x"},
	}
	asc := ids(Sort(headcell.Drinks(), rows, "category", Asc))
	assert.Equal(t, []string{"a", "c", "e", "b", "d"}, asc)

	desc := ids(Sort(headcell.Drinks(), rows, "category", Desc))
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, desc)
}

func TestSort_ComputedValue(t *testing.T) {
	headers := []headcell.HeadCell{
		{Field: "client", ComputeValue: func(r record.Row) string { return r.String("client.name") }},
	}
	rows := []record.Row{
		{"id": "1", "client": map[string]any{"name": "Zoé"}},
		{"id": "2", "client": map[string]any{"name": "Anne"}},
	}
	assert.Equal(t, []string{"2", "1"}, ids(Sort(headers, rows, "client", Asc)))
}

func TestSort_Numbers(t *testing.T) {
	got := ids(Sort(headcell.Drinks(), drinks(), "price", Desc))
	assert.Equal(t, []string{"d2", "d1", "d4", "d3"}, got)
}

func TestEngine_Pagination(t *testing.T) {
	var rows []record.Row
	for i := 0; i < 23; i++ {
		rows = append(rows, record.Row{"id": string(rune('a' + i)), "name": "n"})
	}
	e := New(Options{Headers: headcell.Clients()})
	e.SetData(rows)

	p := e.View()
	assert.Equal(t, 23, p.Total)
	assert.Len(t, p.Rows, DefaultRowsPerPage)

	e.SetPage(1)
	assert.Len(t, e.View().Rows, 8)

	require.NoError(t, e.SetRowsPerPage(5))
	p = e.View()
	assert.Equal(t, 0, p.Page, "changing page size resets the page")
	assert.Len(t, p.Rows, 5)

	err := e.SetRowsPerPage(7)
	assert.ErrorIs(t, err, ErrInvalidPageSize)

	e.SetPage(99)
	assert.Empty(t, e.View().Rows)
}

func TestPaginate(t *testing.T) {
	rows := drinks()
	tests := []struct {
		name       string
		page, size int
		want       []string
	}{
		{"first page", 0, 3, []string{"d1", "d2", "d3"}},
		{"last partial page", 1, 3, []string{"d4"}},
		{"past the end", 5, 3, []string{}},
		{"negative page", -1, 2, []string{"d1", "d2"}},
		{"no size", 0, 0, []string{"d1", "d2", "d3", "d4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Paginate(rows, tt.page, tt.size)))
		})
	}
}

func TestEngine_RequestSort(t *testing.T) {
	e := New(Options{Headers: headcell.Drinks()})
	e.SetData(drinks())

	e.RequestSort("price")
	assert.Equal(t, []string{"d3", "d4", "d1", "d2"}, ids(e.View().Rows))
	e.RequestSort("price")
	assert.Equal(t, Desc, e.View().Order)
	e.RequestSort("name")
	assert.Equal(t, Asc, e.View().Order)
}

func TestEngine_FiltersAndOptions(t *testing.T) {
	e := New(Options{Headers: headcell.Drinks()})
	e.SetData(drinks())

	e.SetFilter("category", "alcool")
	p := e.View()
	assert.Equal(t, []string{"d1", "d2"}, ids(p.Rows))
	sub, _ := headcell.Find(p.Headers, "subcategory")
	assert.Equal(t, []string{"vin"}, sub.Options)

	e.ClearFilters()
	assert.Equal(t, 4, e.View().Total)
}

func TestEngine_Selection(t *testing.T) {
	var emitted [][]string
	e := New(Options{
		Headers:           headcell.Drinks(),
		OnSelectionChange: func(rows []record.Row) { emitted = append(emitted, ids(rows)) },
	})
	e.SetData(drinks())

	e.Toggle("d2")
	e.SetQuery("rouge")
	e.SelectAll()
	assert.Equal(t, []string{"d1", "d3"}, e.Selected())
	e.Toggle("d1")
	e.ClearSelection()

	want := [][]string{{"d2"}, {"d1", "d3"}, {"d3"}, {}}
	assert.Equal(t, want, emitted)

	// no listener wired
	quiet := New(Options{Headers: headcell.Drinks()})
	quiet.SetData(drinks())
	quiet.Toggle("d1")
	quiet.SelectAll()
	assert.Len(t, quiet.Selected(), 4)
}

type fakeWriter struct {
	saved   []record.Row
	modes   []validation.Mode
	deleted []string
	err     error
}

func (w *fakeWriter) Save(_ context.Context, mode validation.Mode, row record.Row) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.saved = append(w.saved, row)
	w.modes = append(w.modes, mode)
	if id := row.ID(); id != "" {
		return id, nil
	}
	return "new-id", nil
}

func (w *fakeWriter) Delete(_ context.Context, ids []string) error {
	if w.err != nil {
		return w.err
	}
	w.deleted = append(w.deleted, ids...)
	return nil
}

func clientEngine(w Writer, n notify.Notifier, caps Capabilities) *Engine {
	e := New(Options{
		Title:        "Client",
		Headers:      headcell.Clients(),
		Capabilities: caps,
		Writer:       w,
		Notifier:     n,
	})
	e.SetData([]record.Row{
		{"id": "c1", "name": "Dupont", "email": "", "phone": ""},
		{"id": "c2", "name": "Martin", "email": "", "phone": ""},
	})
	return e
}

func TestEngine_SubmitValidationFailure(t *testing.T) {
	w := &fakeWriter{}
	rec := notify.NewRecorder(nil)
	e := clientEngine(w, rec, DefaultCapabilities())

	f, err := e.OpenCreate()
	require.NoError(t, err)
	f.Set("name", "Dupont")

	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Empty(t, w.saved, "nothing must be written")
	last, _ := rec.Last()
	assert.Equal(t, notify.Toast{Message: "Inputs validation failed.", Severity: notify.Error}, last)
	assert.Contains(t, e.Form().Violations()["name"], "déjà pris")
}

func TestEngine_SubmitCreateAndUpdate(t *testing.T) {
	w := &fakeWriter{}
	rec := notify.NewRecorder(nil)
	e := clientEngine(w, rec, DefaultCapabilities())

	f, err := e.OpenCreate()
	require.NoError(t, err)
	f.Set("name", "Bernard")
	id, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	assert.Nil(t, e.Form(), "form closes after a successful write")
	last, _ := rec.Last()
	assert.Equal(t, "Client saved.", last.Message)

	f, err = e.OpenUpdate("c1")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", f.Value("name"))
	f.Set("email", "dupont@example.ch")
	id, err = e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "c1", id)
	last, _ = rec.Last()
	assert.Equal(t, notify.Toast{Message: "Client updated.", Severity: notify.Success}, last)
	assert.Equal(t, []validation.Mode{validation.ModeAdd, validation.ModeModify}, w.modes)

	_, err = e.OpenUpdate("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngine_SubmitWriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("boom")}
	rec := notify.NewRecorder(nil)
	e := clientEngine(w, rec, DefaultCapabilities())

	f, _ := e.OpenCreate()
	f.Set("name", "Bernard")
	_, err := e.Submit(context.Background())
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, notify.Error, last.Severity)
	assert.NotNil(t, e.Form(), "form stays open on failure")
}

func TestEngine_Delete(t *testing.T) {
	w := &fakeWriter{}
	e := clientEngine(w, nil, DefaultCapabilities())
	assert.ErrorIs(t, e.Delete(context.Background(), []string{"c1"}, true), ErrForbidden)

	caps := DefaultCapabilities()
	caps.Delete = true
	e = clientEngine(w, nil, caps)
	e.Toggle("c1")
	assert.ErrorIs(t, e.Delete(context.Background(), []string{"c1"}, false), ErrNotConfirmed)
	assert.Empty(t, w.deleted)

	require.NoError(t, e.Delete(context.Background(), []string{"c1"}, true))
	assert.Equal(t, []string{"c1"}, w.deleted)
	assert.Empty(t, e.Selected())
}

func TestEngine_CapabilitiesGateForms(t *testing.T) {
	e := clientEngine(&fakeWriter{}, nil, Capabilities{})
	_, err := e.OpenCreate()
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.OpenUpdate("c1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoForm)
}
