// Package selector attaches existing or freshly created entities to a
// collection: type-ahead suggestions, inline creation and bulk picking from
// a grid selection.
package selector

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/diewo77/traiteur/internal/form"
	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

var (
	ErrNotFound  = errors.New("selector: option not found")
	ErrInvalid   = errors.New("selector: inputs validation failed")
	ErrNoCreator = errors.New("selector: inline creation disabled")
)

// Creator persists a new entity and returns its id.
type Creator interface {
	Create(ctx context.Context, row record.Row) (string, error)
}

// CreatorFunc adapts a function to Creator.
type CreatorFunc func(ctx context.Context, row record.Row) (string, error)

func (f CreatorFunc) Create(ctx context.Context, row record.Row) (string, error) { return f(ctx, row) }

// Options configure a Selector.
type Options struct {
	Title   string
	Pool    []record.Row
	Headers []headcell.HeadCell
	// Attach receives the chosen rows.
	Attach   func([]record.Row)
	Creator  Creator
	Notifier notify.Notifier
}

// Selector is not safe for concurrent use.
type Selector struct {
	opts  Options
	draft *form.Controller
}

func New(opts Options) *Selector {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	return &Selector{opts: opts}
}

// Pool returns the known options.
func (s *Selector) Pool() []record.Row { return s.opts.Pool }

// Suggest returns up to limit options whose name contains text, ignoring
// case. Exact names come first, then prefixes, then the rest, each group in
// pool order. A limit <= 0 means no limit.
func (s *Selector) Suggest(text string, limit int) []record.Row {
	q := strings.ToLower(strings.TrimSpace(text))
	var exact, prefix, other []record.Row
	for _, row := range s.opts.Pool {
		name := strings.ToLower(row.Name())
		switch {
		case q == "":
			other = append(other, row)
		case name == q:
			exact = append(exact, row)
		case strings.HasPrefix(name, q):
			prefix = append(prefix, row)
		case strings.Contains(name, q):
			other = append(other, row)
		}
	}
	out := slices.Concat(exact, prefix, other)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Choose attaches an existing option.
func (s *Selector) Choose(id string) (record.Row, error) {
	for _, row := range s.opts.Pool {
		if row.ID() == id {
			s.attach([]record.Row{row})
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// CanCreate reports whether text names no existing option.
func (s *Selector) CanCreate(text string) bool {
	if strings.TrimSpace(text) == "" || s.opts.Creator == nil {
		return false
	}
	return !slices.ContainsFunc(s.opts.Pool, func(r record.Row) bool { return r.Name() == text })
}

// Draft opens the inline creation form pre-filled with name.
func (s *Selector) Draft(name string) *form.Controller {
	values := record.Row{}
	for _, h := range s.opts.Headers {
		if h.IsArray() {
			values[h.Field] = []any{}
		} else {
			values[h.Field] = ""
		}
	}
	values["name"] = name
	s.draft = form.New(values)
	s.draft.SetCriterias(criterias(s.opts.Headers))
	return s.draft
}

// criterias guarantees the name is unique even when the descriptors only
// ask for it to be present.
func criterias(headers []headcell.HeadCell) map[string][]validation.Criterion {
	out := headcell.Criterias(headers)
	if _, ok := out["name"]; !ok {
		out["name"] = []validation.Criterion{validation.UniqueName()}
		return out
	}
	// UniqueName already covers the empty name, keep it first.
	out["name"] = append([]validation.Criterion{validation.UniqueName()}, out["name"]...)
	return out
}

// CreateInline validates values against the whole pool, persists them and
// attaches the new entity. values may be nil to submit the current draft.
func (s *Selector) CreateInline(ctx context.Context, values record.Row) (record.Row, error) {
	if s.opts.Creator == nil {
		return nil, ErrNoCreator
	}
	if values != nil {
		s.Draft("")
		s.draft.SetValues(mergeInto(s.draft.Values(), values), true)
	}
	if s.draft == nil {
		s.Draft("")
	}
	params := validation.Params{Mode: validation.ModeAdd, Data: entries(s.opts.Pool)}
	if !s.draft.Validate(params) {
		s.opts.Notifier.Notify("Inputs validation failed.", notify.Error)
		return nil, ErrInvalid
	}
	row := s.draft.Values()
	delete(row, "id")
	id, err := s.opts.Creator.Create(ctx, row)
	if err != nil {
		s.opts.Notifier.Notify(fmt.Sprintf("%s could not be saved.", s.opts.Title), notify.Error)
		return nil, fmt.Errorf("create %s: %w", s.opts.Title, err)
	}
	row["id"] = id
	s.opts.Pool = append(slices.Clip(s.opts.Pool), row)
	s.draft = nil
	s.opts.Notifier.Notify(fmt.Sprintf("%s saved.", s.opts.Title), notify.Success)
	s.attach([]record.Row{row})
	return row, nil
}

// Violations returns the failures of the last inline validation.
func (s *Selector) Violations() validation.Violations {
	if s.draft == nil {
		return validation.Violations{}
	}
	return s.draft.Violations()
}

// PickFromGrid attaches every option whose id is in ids, in pool order.
// Unknown ids are ignored.
func (s *Selector) PickFromGrid(ids []string) []record.Row {
	var picked []record.Row
	for _, row := range s.opts.Pool {
		if slices.Contains(ids, row.ID()) {
			picked = append(picked, row)
		}
	}
	if len(picked) > 0 {
		s.attach(picked)
	}
	return picked
}

func (s *Selector) attach(rows []record.Row) {
	if s.opts.Attach != nil {
		s.opts.Attach(rows)
	}
}

func mergeInto(base, values record.Row) record.Row {
	for k, v := range values {
		base[k] = v
	}
	return base
}

func entries(rows []record.Row) []validation.Entry {
	out := make([]validation.Entry, len(rows))
	for i, r := range rows {
		out[i] = validation.Entry{ID: r.ID(), Name: r.Name()}
	}
	return out
}
