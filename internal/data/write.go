package data

import (
	"context"
	"fmt"

	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/pool"
	"github.com/diewo77/traiteur/internal/reconcile"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

// Partial lists the items to write. Items without an id are created.
type Partial struct {
	Clients   []models.Client
	Materials []models.Material
	Drinks    []models.Drink
	Dishes    []models.Plat
	Menus     []models.Menu
	Events    []models.Event
	Config    *models.Config
}

// UpdatedKeys maps each written collection to the ids written, in input
// order.
type UpdatedKeys map[string][]string

func put[T any](patch docstore.Patch, keys UpdatedKeys, collection, id string, body T) {
	if id == "" {
		id = docstore.Mint()
	}
	patch[collection+"/"+id] = body
	keys[collection] = append(keys[collection], id)
}

// Update compresses p and writes it in one multi-path write.
func (s *State) Update(ctx context.Context, p Partial) (UpdatedKeys, error) {
	patch := docstore.Patch{}
	keys := UpdatedKeys{}
	for _, c := range p.Clients {
		put(patch, keys, models.CollectionClients, c.ID, CompressClient(c))
	}
	for _, m := range p.Materials {
		put(patch, keys, models.CollectionMaterials, m.ID, CompressMaterial(m))
	}
	for _, d := range p.Drinks {
		put(patch, keys, models.CollectionDrinks, d.ID, CompressDrink(d))
	}
	for _, d := range p.Dishes {
		put(patch, keys, models.CollectionDishes, d.ID, CompressPlat(d))
	}
	for _, m := range p.Menus {
		put(patch, keys, models.CollectionMenus, m.ID, CompressMenu(m))
	}
	for _, e := range p.Events {
		put(patch, keys, models.CollectionEvents, e.ID, CompressEvent(e))
	}
	if p.Config != nil {
		raw := CompressConfig(*p.Config)
		for field, v := range map[string]any{
			"appTitle":         raw.AppTitle,
			"transportCosts":   raw.TransportCosts,
			"wagesServer":      raw.WagesServer,
			"wagesCook":        raw.WagesCook,
			"defaultStatus":    raw.DefaultStatus,
			"addresses":        raw.Addresses,
			"labels":           raw.Labels,
			"categoriesSorted": raw.CategoriesSorted,
		} {
			patch[models.CollectionConfig+"/"+field] = v
		}
		keys[models.CollectionConfig] = []string{docstore.ConfigKey}
	}
	if len(patch) == 0 {
		return keys, nil
	}
	if err := s.store.Update(ctx, patch); err != nil {
		return nil, err
	}
	return keys, nil
}

// Delete removes ids from collection. The config cannot be deleted.
func (s *State) Delete(ctx context.Context, collection string, ids []string) error {
	if collection == models.CollectionConfig || !models.IsCollection(collection) {
		return fmt.Errorf("%w: %q", docstore.ErrInvalidPath, collection)
	}
	patch := docstore.Patch{}
	for _, id := range ids {
		patch[collection+"/"+id] = nil
	}
	return s.store.Update(ctx, patch)
}

// Reset empties one collection, or every collection but the config when
// field is empty.
func (s *State) Reset(ctx context.Context, field string) error {
	if field != "" {
		return s.store.Reset(ctx, field)
	}
	for _, c := range models.Collections {
		if c == models.CollectionConfig {
			continue
		}
		if err := s.store.Reset(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Refetch republishes every collection.
func (s *State) Refetch(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

// Writer persists grid rows of one collection.
type Writer struct {
	state      *State
	collection string
}

// Writer returns the grid writer of collection.
func (s *State) Writer(collection string) Writer {
	return Writer{state: s, collection: collection}
}

// Save decodes row into the collection entity and writes it. Rows saved in
// add mode always get a fresh id. Nested lists go through the pool so
// repeated ids merge and quantities are at least 1.
func (w Writer) Save(ctx context.Context, mode validation.Mode, row record.Row) (string, error) {
	row = row.Clone()
	if mode == validation.ModeAdd {
		delete(row, "id")
	}
	var p Partial
	var err error
	switch w.collection {
	case models.CollectionClients:
		err = decodeInto(row, &p.Clients)
	case models.CollectionMaterials:
		err = decodeInto(row, &p.Materials)
	case models.CollectionDrinks:
		err = decodeInto(row, &p.Drinks)
	case models.CollectionDishes:
		if err = decodeInto(row, &p.Dishes); err == nil {
			d := &p.Dishes[0]
			d.Materials = pool.AddAll(nil, d.Materials...)
		}
	case models.CollectionMenus:
		if err = decodeInto(row, &p.Menus); err == nil {
			m := &p.Menus[0]
			m.Plats = pool.AddAll(nil, m.Plats...)
			w.priceMenu(m)
		}
	case models.CollectionEvents:
		if err = decodeInto(row, &p.Events); err == nil {
			e := &p.Events[0]
			e.Menus = pool.AddAll(nil, e.Menus...)
			e.Materials = pool.AddAll(nil, e.Materials...)
			e.Drinks = pool.AddAll(nil, e.Drinks...)
		}
	default:
		return "", fmt.Errorf("%w: %q", docstore.ErrInvalidPath, w.collection)
	}
	if err != nil {
		return "", err
	}
	keys, err := w.state.Update(ctx, p)
	if err != nil {
		return "", err
	}
	return keys[w.collection][0], nil
}

// priceMenu reprices m against the stored menu it replaces.
func (w Writer) priceMenu(m *models.Menu) {
	var prev *models.Menu
	if m.ID != "" {
		if stored, ok := w.state.Snapshot().Menu(m.ID); ok {
			prev = &stored
		}
	}
	a := reconcile.MenuPrice(prev, *m)
	m.Price, m.PriceMode = a.Price, a.Mode
}

// Delete removes rows by id.
func (w Writer) Delete(ctx context.Context, ids []string) error {
	return w.state.Delete(ctx, w.collection, ids)
}

func decodeInto[T any](row record.Row, out *[]T) error {
	var v T
	if err := record.ToValue(row, &v); err != nil {
		return err
	}
	*out = append(*out, v)
	return nil
}
