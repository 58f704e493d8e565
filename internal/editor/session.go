package editor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/form"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/reconcile"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/internal/selector"
	"github.com/diewo77/traiteur/internal/subeditor"
	"github.com/diewo77/traiteur/validation"
)

// Session edits one event. Every mutation reprices the event.
type Session struct {
	mu sync.Mutex

	id     string
	event  models.Event
	cfg    models.Config
	linker *reconcile.Linker

	// candidates are the items of the last selected bucket.
	candidates   []record.Row
	allMaterials []models.Material
	allDrinks    []models.Drink
	materialCats []string
	drinkCats    []string

	details   *form.Controller
	menus     *subeditor.Editor[models.Menu]
	materials *subeditor.Editor[models.Material]
	drinks    *subeditor.Editor[models.Drink]
}

// View is what a client renders of a session.
type View struct {
	ID          string                               `json:"id"`
	Event       models.Event                         `json:"event"`
	Details     form.Values                          `json:"details"`
	Validations form.Validations                     `json:"validations"`
	Violations  validation.Violations                `json:"violations,omitempty"`
	Linked      bool                                 `json:"linked"`
	Menus       []subeditor.Bucket[models.Menu]      `json:"menus"`
	Materials   []subeditor.Bucket[models.Material]  `json:"materials"`
	Drinks      []subeditor.Bucket[models.Drink]     `json:"drinks"`
	Implied     []models.Quantified[models.Material] `json:"implied"`
	Candidates  []record.Row                         `json:"candidates,omitempty"`
	Total       float64                              `json:"total"`
}

type lookups struct {
	clients    map[string]models.Client
	departures map[string]models.Place
	menus      map[string]models.Menu
	materials  map[string]models.Material
	drinks     map[string]models.Drink
}

func byID[T models.Identifiable](items []T) map[string]T {
	out := make(map[string]T, len(items))
	for _, it := range items {
		out[it.GetID()] = it
	}
	return out
}

func lookupsOf(d data.Data) lookups {
	return lookups{
		clients:    byID(d.Clients),
		departures: byID(d.Config.Addresses),
		menus:      byID(d.Menus),
		materials:  byID(d.Materials),
		drinks:     byID(d.Drinks),
	}
}

// categoriesOf lists the distinct categories in first-seen order.
func categoriesOf[T any](items []T, key func(T) string) []string {
	var out []string
	for _, it := range items {
		if c := key(it); c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func materialCategory(m models.Material) string { return m.Category }
func drinkCategory(d models.Drink) string       { return d.Category }

func newSession(id string, e models.Event, d data.Data) *Session {
	s := &Session{
		id:     id,
		event:  e,
		cfg:    d.Config,
		linker: reconcile.NewLinker(),
	}
	s.details = form.New(detailsOf(e))
	s.details.SetCriterias(detailsCriterias())

	s.catalog(d)
	s.menus = subeditor.NewEditor(e.Menus, nil, nil)
	s.materials = subeditor.NewEditor(e.Materials, materialCategory, s.materialCats)
	s.drinks = subeditor.NewEditor(e.Drinks, drinkCategory, s.drinkCats)

	s.menus.OnChange = func(items []models.Quantified[models.Menu]) {
		s.event.Menus = items
		s.restructured(models.PriceMenus)
		s.setMaterials(s.linker.MenusChanged(items, s.event.Materials))
	}
	s.materials.OnChange = func(items []models.Quantified[models.Material]) {
		s.event.Materials = items
		s.restructured(models.PriceMaterial)
	}
	s.drinks.OnChange = func(items []models.Quantified[models.Drink]) {
		s.event.Drinks = items
		s.restructured(models.PriceDrink)
	}
	s.materials.OnCategorySelect = func(category string) {
		s.candidates, _ = record.FromSlice(subeditor.Pool(s.allMaterials, materialCategory, category, s.materialCats))
	}
	s.drinks.OnCategorySelect = func(category string) {
		s.candidates, _ = record.FromSlice(subeditor.Pool(s.allDrinks, drinkCategory, category, s.drinkCats))
	}
	s.reprice()
	return s
}

// setMaterials replaces the order from outside the materials editor.
func (s *Session) setMaterials(items []models.Quantified[models.Material]) {
	s.event.Materials = items
	s.materials.Reset(items)
}

func (s *Session) reprice() {
	s.event.Price = reconcile.EventPrices(s.event, s.cfg)
}

// restructured drops a manual price of component after its contents
// changed.
func (s *Session) restructured(component string) {
	a := reconcile.Component(s.event, component)
	a.Recompute(reconcile.Derived(s.event, s.cfg).Get(component))
	a.Store(&s.event, component)
}

func (s *Session) view() View {
	return View{
		ID:          s.id,
		Event:       s.event,
		Details:     s.details.Values(),
		Validations: s.details.Validations(),
		Violations:  s.details.Violations(),
		Linked:      s.linker.IsLinked(),
		Menus:       s.menus.Buckets(),
		Materials:   s.materials.Buckets(),
		Drinks:      s.drinks.Buckets(),
		Implied:     s.linker.Implied(),
		Candidates:  s.candidates,
		Total:       s.event.Price.Total(),
	}
}

func (s *Session) setDetails(values form.Values, lk lookups) {
	known := s.details.Defaults()
	for k, v := range values {
		if _, ok := known[k]; ok {
			s.details.Set(k, v)
		}
	}
	applyDetails(&s.event, s.details.Values(), lk)
}

func (s *Session) add(a Action, lk lookups) error {
	switch a.Collection {
	case models.CollectionMenus:
		m, ok := lk.menus[a.ID]
		if !ok {
			return fmt.Errorf("%w: menu %s", ErrUnknownItem, a.ID)
		}
		return s.menus.Add(m, a.Quantity)
	case models.CollectionMaterials:
		m, ok := lk.materials[a.ID]
		if !ok {
			return fmt.Errorf("%w: material %s", ErrUnknownItem, a.ID)
		}
		return s.materials.Add(m, reconcile.RoundToBatch(max(a.Quantity, 1), m.Batch))
	case models.CollectionDrinks:
		d, ok := lk.drinks[a.ID]
		if !ok {
			return fmt.Errorf("%w: drink %s", ErrUnknownItem, a.ID)
		}
		return s.drinks.Add(d, a.Quantity)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, a.Collection)
}

// catalog refreshes the items the session picks from.
func (s *Session) catalog(d data.Data) {
	s.allMaterials = d.Materials
	s.allDrinks = d.Drinks
	s.materialCats = categoriesOf(d.Materials, materialCategory)
	s.drinkCats = categoriesOf(d.Drinks, drinkCategory)
}

// pick attaches one chosen item (a.ID) or a grid selection (a.IDs), each
// with a.Quantity.
func (s *Session) pick(a Action, d data.Data, lk lookups) error {
	switch a.Collection {
	case models.CollectionMenus, models.CollectionMaterials, models.CollectionDrinks:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCollection, a.Collection)
	}
	rows, err := d.Rows(a.Collection)
	if err != nil {
		return err
	}
	var addErr error
	sel := selector.New(selector.Options{
		Pool: rows,
		Attach: func(picked []record.Row) {
			for _, r := range picked {
				err := s.add(Action{Collection: a.Collection, ID: r.ID(), Quantity: a.Quantity}, lk)
				if err != nil && addErr == nil {
					addErr = err
				}
			}
		},
	})
	if a.ID != "" {
		if _, err := sel.Choose(a.ID); err != nil {
			return fmt.Errorf("%w: %v", ErrUnknownItem, err)
		}
		return addErr
	}
	if len(sel.PickFromGrid(a.IDs)) == 0 {
		return fmt.Errorf("%w: none of %v", ErrUnknownItem, a.IDs)
	}
	return addErr
}

// selectCategory lists the candidates of one material or drink bucket.
func (s *Session) selectCategory(a Action) error {
	switch a.Collection {
	case models.CollectionMaterials:
		return s.materials.SelectCategory(a.Category)
	case models.CollectionDrinks:
		return s.drinks.SelectCategory(a.Category)
	case models.CollectionMenus:
		return s.menus.SelectCategory(a.Category)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, a.Collection)
}

func (s *Session) setQuantity(a Action) error {
	switch a.Collection {
	case models.CollectionMenus:
		return s.menus.SetQuantity(a.Index, a.Quantity)
	case models.CollectionMaterials:
		return s.materials.SetQuantity(a.Index, a.Quantity)
	case models.CollectionDrinks:
		return s.drinks.SetQuantity(a.Index, a.Quantity)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, a.Collection)
}

func (s *Session) remove(a Action) error {
	switch a.Collection {
	case models.CollectionMenus:
		return s.menus.Remove(a.Index)
	case models.CollectionMaterials:
		return s.materials.Remove(a.Index)
	case models.CollectionDrinks:
		return s.drinks.Remove(a.Index)
	}
	return fmt.Errorf("%w: %q", ErrUnknownCollection, a.Collection)
}

func (s *Session) step(index int, up bool) error {
	next, err := subeditor.StepDown(s.event.Materials, index)
	if up {
		next, err = subeditor.StepUp(s.event.Materials, index)
	}
	if err != nil {
		return err
	}
	s.setMaterials(next)
	s.restructured(models.PriceMaterial)
	return nil
}

func (s *Session) link(on bool) {
	s.setMaterials(s.linker.SetLinked(on, s.event.Menus, s.event.Materials))
	s.restructured(models.PriceMaterial)
}

func knownComponent(c string) bool {
	return slices.Contains(models.PriceComponents, c)
}

func (s *Session) override(component string, price float64) error {
	if !knownComponent(component) {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, component)
	}
	a := reconcile.Component(s.event, component)
	a.Override(price)
	a.Store(&s.event, component)
	return nil
}

func (s *Session) derive(component string) error {
	if !knownComponent(component) {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, component)
	}
	s.restructured(component)
	return nil
}
