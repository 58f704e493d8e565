// Package subeditor edits a quantified sub-collection (the dishes of a menu,
// the materials of an event...) grouped into the configured categories.
// Every mutation produces a new collection handed to OnChange; the owner
// recomputes its aggregates from it.
package subeditor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/pool"
)

// Uncategorized is the label of the trailing bucket.
const Uncategorized = "Non catégorisé"

var (
	ErrReadOnly     = errors.New("subeditor: read only")
	ErrOutOfRange   = errors.New("subeditor: index out of range")
	ErrNoCategories = errors.New("subeditor: no category field")
)

// Indexed is an item with its position in the ungrouped collection.
type Indexed[T models.Identifiable] struct {
	Index int                  `json:"index"`
	Item  models.Quantified[T] `json:"item"`
	Total float64              `json:"total"`
}

// Bucket is one category of items. The uncategorized bucket has an empty
// Name.
type Bucket[T models.Identifiable] struct {
	Name  string       `json:"name"`
	Label string       `json:"label"`
	Items []Indexed[T] `json:"items"`
}

// Group sorts items into one bucket per category, in the given order, plus a
// final uncategorized bucket for values outside the list. Empty buckets are
// kept.
func Group[T models.Identifiable](items []models.Quantified[T], key func(T) string, categories []string) []Bucket[T] {
	buckets := make([]Bucket[T], 0, len(categories)+1)
	for _, c := range categories {
		buckets = append(buckets, Bucket[T]{Name: c, Label: c, Items: []Indexed[T]{}})
	}
	buckets = append(buckets, Bucket[T]{Label: Uncategorized, Items: []Indexed[T]{}})

	last := len(buckets) - 1
	for i, it := range items {
		b := last
		if key != nil {
			if j := slices.Index(categories, key(it.Item)); j >= 0 {
				b = j
			}
		}
		buckets[b].Items = append(buckets[b].Items, Indexed[T]{Index: i, Item: it, Total: LineTotal(it)})
	}
	return buckets
}

// LineTotal is price times quantity.
func LineTotal[T models.Identifiable](item models.Quantified[T]) float64 {
	return item.Total()
}

// SetQuantity returns a copy of items where the element at index carries
// qty. Quantities below 1 become 1.
func SetQuantity[T models.Identifiable](items []models.Quantified[T], index, qty int) ([]models.Quantified[T], error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	if qty < 1 {
		qty = 1
	}
	out := pool.Clone(items)
	out[index] = models.Quantified[T]{Item: out[index].Item, Quantity: qty}
	return out, nil
}

// Remove returns a copy of items without the element at index.
func Remove[T models.Identifiable](items []models.Quantified[T], index int) ([]models.Quantified[T], error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	return slices.Delete(pool.Clone(items), index, index+1), nil
}

// Pool returns the candidates of category among all, for a picker scoped to
// one bucket. The empty category selects the items outside categories.
func Pool[T any](all []T, key func(T) string, category string, categories []string) []T {
	var out []T
	for _, it := range all {
		k := key(it)
		if category == "" {
			if !slices.Contains(categories, k) {
				out = append(out, it)
			}
			continue
		}
		if k == category {
			out = append(out, it)
		}
	}
	return out
}

// Editor holds one sub-collection and its listeners.
type Editor[T models.Identifiable] struct {
	items      []models.Quantified[T]
	key        func(T) string
	categories []string

	ReadOnly bool
	// OnChange receives the full collection after each mutation.
	OnChange func([]models.Quantified[T])
	// OnCategorySelect asks the owner for an item of that category.
	OnCategorySelect func(category string)
}

// NewEditor groups by key along categories; key may be nil for an ungrouped
// collection.
func NewEditor[T models.Identifiable](items []models.Quantified[T], key func(T) string, categories []string) *Editor[T] {
	return &Editor[T]{items: pool.Clone(items), key: key, categories: categories}
}

// Items returns a copy of the collection.
func (e *Editor[T]) Items() []models.Quantified[T] { return pool.Clone(e.items) }

// Buckets groups the current collection.
func (e *Editor[T]) Buckets() []Bucket[T] { return Group(e.items, e.key, e.categories) }

// Total sums the line totals.
func (e *Editor[T]) Total() float64 {
	var t float64
	for _, it := range e.items {
		t += LineTotal(it)
	}
	return t
}

// Reset replaces the collection without emitting, used when the owner
// changed it.
func (e *Editor[T]) Reset(items []models.Quantified[T]) { e.items = pool.Clone(items) }

// Add accumulates quantity of item.
func (e *Editor[T]) Add(item T, quantity int) error {
	if e.ReadOnly {
		return ErrReadOnly
	}
	e.commit(pool.Add(e.items, item, quantity))
	return nil
}

// SetQuantity changes one line.
func (e *Editor[T]) SetQuantity(index, qty int) error {
	if e.ReadOnly {
		return ErrReadOnly
	}
	next, err := SetQuantity(e.items, index, qty)
	if err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// Remove drops one line.
func (e *Editor[T]) Remove(index int) error {
	if e.ReadOnly {
		return ErrReadOnly
	}
	next, err := Remove(e.items, index)
	if err != nil {
		return err
	}
	e.commit(next)
	return nil
}

// SelectCategory forwards a bucket click.
func (e *Editor[T]) SelectCategory(name string) error {
	if e.ReadOnly {
		return ErrReadOnly
	}
	if e.key == nil {
		return ErrNoCategories
	}
	if e.OnCategorySelect != nil {
		e.OnCategorySelect(name)
	}
	return nil
}

func (e *Editor[T]) commit(items []models.Quantified[T]) {
	e.items = items
	if e.OnChange != nil {
		e.OnChange(pool.Clone(items))
	}
}
