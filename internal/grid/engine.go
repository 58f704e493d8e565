// Package grid filters, sorts, paginates and selects the rows of one entity
// collection and orchestrates their creation, update and deletion. It is
// driven entirely by the column descriptors of the collection.
package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/diewo77/traiteur/internal/form"
	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

// RowsPerPageOptions are the selectable page sizes.
var RowsPerPageOptions = []int{5, 10, 15, 25, 50, 100, 300, 500}

const (
	DefaultOrderBy     = "id"
	DefaultRowsPerPage = 15
)

var (
	ErrForbidden       = errors.New("grid: action not allowed")
	ErrNotConfirmed    = errors.New("grid: deletion not confirmed")
	ErrInvalid         = errors.New("grid: inputs validation failed")
	ErrNoForm          = errors.New("grid: no open form")
	ErrInvalidPageSize = errors.New("grid: unsupported rows per page")
	ErrNotFound        = errors.New("grid: row not found")
)

// Capabilities switch the row actions on.
type Capabilities struct {
	Create bool `json:"create"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// DefaultCapabilities enables creation and update. Deletion stays off until
// a caller turns it on explicitly.
func DefaultCapabilities() Capabilities {
	return Capabilities{Create: true, Update: true}
}

// Writer persists the rows of the collection.
type Writer interface {
	Save(ctx context.Context, mode validation.Mode, row record.Row) (string, error)
	Delete(ctx context.Context, ids []string) error
}

// Options configure an Engine.
type Options struct {
	// Title names one entity in notifications ("Menu saved.").
	Title        string
	Headers      []headcell.HeadCell
	Capabilities Capabilities
	Writer       Writer
	Notifier     notify.Notifier
	// Defaults is the record an empty creation form starts from.
	Defaults record.Row
	// OnSelectionChange receives the selected rows after every change.
	OnSelectionChange func([]record.Row)
}

// Page is one rendered view of the grid.
type Page struct {
	Rows        []record.Row        `json:"rows"`
	Total       int                 `json:"total"`
	Page        int                 `json:"page"`
	RowsPerPage int                 `json:"rowsPerPage"`
	OrderBy     string              `json:"orderBy"`
	Order       Order               `json:"order"`
	Selected    []string            `json:"selected"`
	Headers     []headcell.HeadCell `json:"headers"`
}

// Engine is not safe for concurrent use.
type Engine struct {
	opts    Options
	data    []record.Row
	filters *form.Controller

	query       string
	orderBy     string
	order       Order
	page        int
	rowsPerPage int

	selection Selection

	edit     *form.Controller
	editMode validation.Mode
	editID   string
}

// New builds an engine sorted by id ascending, first page, 15 rows.
func New(opts Options) *Engine {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	return &Engine{
		opts:        opts,
		filters:     form.New(filterDefaults(opts.Headers)),
		orderBy:     DefaultOrderBy,
		order:       Asc,
		rowsPerPage: DefaultRowsPerPage,
	}
}

func filterDefaults(headers []headcell.HeadCell) record.Row {
	out := record.Row{}
	for _, h := range headers {
		if h.IsArray() {
			out[h.Field] = []any{}
			continue
		}
		out[h.Field] = ""
	}
	return out
}

// Headers returns the column descriptors.
func (e *Engine) Headers() []headcell.HeadCell { return e.opts.Headers }

// Capabilities returns the enabled row actions.
func (e *Engine) Capabilities() Capabilities { return e.opts.Capabilities }

// SetData replaces the rows. The selection keeps only ids still present.
func (e *Engine) SetData(rows []record.Row) {
	e.data = rows
	kept := make([]string, 0, e.selection.Len())
	for _, id := range e.selection.IDs() {
		if slices.ContainsFunc(rows, func(r record.Row) bool { return r.ID() == id }) {
			kept = append(kept, id)
		}
	}
	if len(kept) != e.selection.Len() {
		e.selection.Set(kept)
		e.emitSelection()
	}
}

// Data returns the unfiltered rows.
func (e *Engine) Data() []record.Row { return e.data }

// Filters exposes the filter draft record.
func (e *Engine) Filters() *form.Controller { return e.filters }

// SetFilter changes one column filter and goes back to the first page.
func (e *Engine) SetFilter(field string, v any) {
	e.filters.Set(field, v)
	e.page = 0
}

// ClearFilters resets every column filter.
func (e *Engine) ClearFilters() {
	e.filters.Reset()
	e.page = 0
}

// SetQuery sets the global free text search.
func (e *Engine) SetQuery(q string) {
	e.query = q
	e.page = 0
}

// Query returns the global search.
func (e *Engine) Query() string { return e.query }

// RequestSort toggles the direction on the active column and sorts a new
// column ascending.
func (e *Engine) RequestSort(field string) {
	if e.orderBy == field && e.order == Asc {
		e.order = Desc
		return
	}
	e.orderBy = field
	e.order = Asc
}

// SetSort forces the sort column and direction.
func (e *Engine) SetSort(field string, order Order) {
	if field == "" {
		field = DefaultOrderBy
	}
	if order != Desc {
		order = Asc
	}
	e.orderBy, e.order = field, order
}

// SetRowsPerPage changes the page size and returns to the first page.
func (e *Engine) SetRowsPerPage(n int) error {
	if !slices.Contains(RowsPerPageOptions, n) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	e.rowsPerPage = n
	e.page = 0
	return nil
}

// SetPage moves to page n (0-based). Negative pages clamp to 0.
func (e *Engine) SetPage(n int) {
	if n < 0 {
		n = 0
	}
	e.page = n
}

// Filtered returns the rows matching the column filters and the query, in
// data order.
func (e *Engine) Filtered() []record.Row {
	return Filter(e.opts.Headers, e.data, e.filters.Values(), e.query)
}

// View filters, sorts and paginates the data. Header options are computed
// from the whole data set narrowed by the current filter values.
func (e *Engine) View() Page {
	rows := Sort(e.opts.Headers, e.Filtered(), e.orderBy, e.order)
	return Page{
		Rows:        Paginate(rows, e.page, e.rowsPerPage),
		Total:       len(rows),
		Page:        e.page,
		RowsPerPage: e.rowsPerPage,
		OrderBy:     e.orderBy,
		Order:       e.order,
		Selected:    e.selection.IDs(),
		Headers:     headcell.BuildHeadersOptions(e.opts.Headers, e.data, e.filters.Values()),
	}
}

// Paginate returns the rows of page (0-based). Pages past the end are empty.
func Paginate(rows []record.Row, page, rowsPerPage int) []record.Row {
	if rowsPerPage < 1 {
		return rows
	}
	start := min(max(page, 0)*rowsPerPage, len(rows))
	end := min(start+rowsPerPage, len(rows))
	return rows[start:end]
}

// Selected returns the selected ids.
func (e *Engine) Selected() []string { return e.selection.IDs() }

// Toggle flips the selection of one row.
func (e *Engine) Toggle(id string) {
	e.selection.Toggle(id)
	e.emitSelection()
}

// SelectAll selects every currently filtered row.
func (e *Engine) SelectAll() {
	filtered := e.Filtered()
	ids := make([]string, len(filtered))
	for i, r := range filtered {
		ids[i] = r.ID()
	}
	e.selection.Set(ids)
	e.emitSelection()
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.selection.Clear()
	e.emitSelection()
}

// SetSelection replaces the selection from outside without emitting.
func (e *Engine) SetSelection(ids []string) { e.selection.Set(ids) }

func (e *Engine) emitSelection() {
	if e.opts.OnSelectionChange == nil {
		return
	}
	e.opts.OnSelectionChange(e.selection.Rows(e.data))
}

// OpenCreate opens an empty form.
func (e *Engine) OpenCreate() (*form.Controller, error) {
	if !e.opts.Capabilities.Create {
		return nil, ErrForbidden
	}
	e.edit = e.newForm(e.opts.Defaults)
	e.editMode = validation.ModeAdd
	e.editID = ""
	return e.edit, nil
}

// OpenUpdate opens a form pre-filled with the row id.
func (e *Engine) OpenUpdate(id string) (*form.Controller, error) {
	if !e.opts.Capabilities.Update {
		return nil, ErrForbidden
	}
	i := slices.IndexFunc(e.data, func(r record.Row) bool { return r.ID() == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.edit = e.newForm(e.data[i])
	e.editMode = validation.ModeModify
	e.editID = id
	return e.edit, nil
}

// newForm makes sure every described field exists so its criteria run.
func (e *Engine) newForm(values record.Row) *form.Controller {
	base := filterDefaults(e.opts.Headers)
	for k, v := range values {
		base[k] = v
	}
	c := form.New(base)
	c.SetCriterias(headcell.Criterias(e.opts.Headers))
	return c
}

// Form returns the open form, nil when closed.
func (e *Engine) Form() *form.Controller { return e.edit }

// Submit validates the open form against the other rows and writes it. On
// validation failure nothing is written and the form keeps its results.
func (e *Engine) Submit(ctx context.Context) (string, error) {
	if e.edit == nil {
		return "", ErrNoForm
	}
	params := validation.Params{
		Mode: e.editMode,
		ID:   e.editID,
		Data: entries(e.data),
	}
	if !e.edit.Validate(params) {
		e.opts.Notifier.Notify("Inputs validation failed.", notify.Error)
		return "", ErrInvalid
	}
	row := e.edit.Values()
	coerceNumbers(e.opts.Headers, row)
	if e.editMode == validation.ModeModify {
		row["id"] = e.editID
	} else {
		delete(row, "id")
	}
	if e.opts.Writer == nil {
		return "", errors.New("grid: no writer")
	}
	id, err := e.opts.Writer.Save(ctx, e.editMode, row)
	if err != nil {
		e.opts.Notifier.Notify(fmt.Sprintf("%s could not be saved.", e.opts.Title), notify.Error)
		return "", fmt.Errorf("save %s: %w", e.opts.Title, err)
	}
	verb := "saved"
	if e.editMode == validation.ModeModify {
		verb = "updated"
	}
	e.opts.Notifier.Notify(fmt.Sprintf("%s %s.", e.opts.Title, verb), notify.Success)
	e.edit = nil
	return id, nil
}

// Cancel closes the form without writing.
func (e *Engine) Cancel() { e.edit = nil }

// Delete removes rows once confirmed. Deleted ids leave the selection.
func (e *Engine) Delete(ctx context.Context, ids []string, confirmed bool) error {
	if !e.opts.Capabilities.Delete {
		return ErrForbidden
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if len(ids) == 0 {
		return nil
	}
	if e.opts.Writer == nil {
		return errors.New("grid: no writer")
	}
	if err := e.opts.Writer.Delete(ctx, ids); err != nil {
		e.opts.Notifier.Notify(fmt.Sprintf("%s could not be deleted.", e.opts.Title), notify.Error)
		return fmt.Errorf("delete %s: %w", e.opts.Title, err)
	}
	kept := slices.DeleteFunc(e.selection.IDs(), func(id string) bool { return slices.Contains(ids, id) })
	if len(kept) != e.selection.Len() {
		e.selection.Set(kept)
		e.emitSelection()
	}
	e.opts.Notifier.Notify(fmt.Sprintf("%s deleted.", e.opts.Title), notify.Success)
	return nil
}

// coerceNumbers turns number inputs typed as text ("12,5") into numbers.
func coerceNumbers(headers []headcell.HeadCell, row record.Row) {
	for _, h := range headers {
		if h.Type() != headcell.Number {
			continue
		}
		if n, ok := validation.ParseNumber(row[h.Field]); ok {
			row[h.Field] = n
		}
	}
}

func entries(rows []record.Row) []validation.Entry {
	out := make([]validation.Entry, len(rows))
	for i, r := range rows {
		out[i] = validation.Entry{ID: r.ID(), Name: r.Name()}
	}
	return out
}
