// Package data keeps the decompressed application state in sync with the
// document store and writes changes back in compressed form.
package data

import (
	"fmt"
	"maps"
	"slices"

	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/record"
)

// CriticalMessage is shown when the store holds no config document.
const CriticalMessage = "A critical problem has been detected with the database."

// Ready tells which views are computed. Dishes, menus and events wait for
// the collections they refer to.
type Ready struct {
	Clients   bool `json:"clients"`
	Materials bool `json:"materials"`
	Drinks    bool `json:"drinks"`
	Config    bool `json:"config"`
	Dishes    bool `json:"dishes"`
	Menus     bool `json:"menus"`
	Events    bool `json:"events"`
}

// All reports whether every view is computed.
func (r Ready) All() bool {
	return r.Clients && r.Materials && r.Drinks && r.Config && r.Dishes && r.Menus && r.Events
}

// Data is a consistent view of every collection.
type Data struct {
	Clients   []models.Client   `json:"clients"`
	Materials []models.Material `json:"materials"`
	Drinks    []models.Drink    `json:"drinks"`
	Dishes    []models.Plat     `json:"dishes"`
	Menus     []models.Menu     `json:"menus"`
	Events    []models.Event    `json:"events"`
	Config    models.Config     `json:"config"`
	Ready     Ready             `json:"ready"`
	Critical  bool              `json:"critical"`
	Message   string            `json:"message,omitempty"`
	// Version grows with every applied snapshot.
	Version uint64 `json:"version"`
}

// Rows returns a collection in grid form.
func (d Data) Rows(collection string) ([]record.Row, error) {
	switch collection {
	case models.CollectionClients:
		return record.FromSlice(d.Clients)
	case models.CollectionMaterials:
		return record.FromSlice(d.Materials)
	case models.CollectionDrinks:
		return record.FromSlice(d.Drinks)
	case models.CollectionDishes:
		return record.FromSlice(d.Dishes)
	case models.CollectionMenus:
		return record.FromSlice(d.Menus)
	case models.CollectionEvents:
		return record.FromSlice(d.Events)
	}
	return nil, fmt.Errorf("no rows for collection %q", collection)
}

// Event finds an event by id.
func (d Data) Event(id string) (models.Event, bool) {
	i := slices.IndexFunc(d.Events, func(e models.Event) bool { return e.ID == id })
	if i < 0 {
		return models.Event{}, false
	}
	return d.Events[i], true
}

// Menu finds a menu by id.
func (d Data) Menu(id string) (models.Menu, bool) {
	i := slices.IndexFunc(d.Menus, func(m models.Menu) bool { return m.ID == id })
	if i < 0 {
		return models.Menu{}, false
	}
	return d.Menus[i], true
}

// Clone copies every nested slice and map.
func (d Data) Clone() Data {
	out := d
	out.Clients = slices.Clone(d.Clients)
	out.Materials = slices.Clone(d.Materials)
	out.Drinks = slices.Clone(d.Drinks)
	out.Dishes = cloneEach(d.Dishes, clonePlat)
	out.Menus = cloneEach(d.Menus, cloneMenu)
	out.Events = cloneEach(d.Events, cloneEvent)
	out.Config = cloneConfig(d.Config)
	return out
}

func cloneEach[T any](items []T, clone func(T) T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = clone(it)
	}
	return out
}

func clonePlat(p models.Plat) models.Plat {
	p.Categorization = slices.Clone(p.Categorization)
	p.Materials = slices.Clone(p.Materials)
	return p
}

func cloneMenu(m models.Menu) models.Menu {
	m.Plats = cloneEach(m.Plats, func(q models.Quantified[models.Plat]) models.Quantified[models.Plat] {
		return models.Q(clonePlat(q.Item), q.Quantity)
	})
	return m
}

func cloneLabel(l models.Label) models.Label {
	if l.Status != nil {
		st := *l.Status
		l.Status = &st
	}
	return l
}

func cloneEvent(e models.Event) models.Event {
	e.Labels = cloneEach(e.Labels, cloneLabel)
	e.PriceModes = maps.Clone(e.PriceModes)
	e.Menus = cloneEach(e.Menus, func(q models.Quantified[models.Menu]) models.Quantified[models.Menu] {
		return models.Q(cloneMenu(q.Item), q.Quantity)
	})
	e.Materials = slices.Clone(e.Materials)
	e.Drinks = slices.Clone(e.Drinks)
	return e
}

func cloneConfig(c models.Config) models.Config {
	c.Addresses = slices.Clone(c.Addresses)
	c.LabelsStatus = cloneEach(c.LabelsStatus, cloneLabel)
	c.Labels = cloneEach(c.Labels, cloneLabel)
	c.CategoriesSorted = slices.Clone(c.CategoriesSorted)
	return c
}
