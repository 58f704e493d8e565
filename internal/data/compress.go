package data

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/models"
)

// Stored documents are keyed by id; the id never appears in the body.

func decodeFlat[T any](id string, body json.RawMessage, setID func(*T, string)) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", id, err)
	}
	setID(&v, id)
	return v, nil
}

// CompressClient drops the id.
func CompressClient(c models.Client) models.Client {
	c.ID = ""
	return c
}

// CompressMaterial drops the id.
func CompressMaterial(m models.Material) models.Material {
	m.ID = ""
	return m
}

// CompressDrink drops the id.
func CompressDrink(d models.Drink) models.Drink {
	d.ID = ""
	return d
}

func DecompressClients(docs map[string]json.RawMessage) []models.Client {
	return decompressFlat(docs, func(c *models.Client, id string) { c.ID = id })
}

func DecompressMaterials(docs map[string]json.RawMessage) []models.Material {
	return decompressFlat(docs, func(m *models.Material, id string) { m.ID = id })
}

func DecompressDrinks(docs map[string]json.RawMessage) []models.Drink {
	return decompressFlat(docs, func(d *models.Drink, id string) { d.ID = id })
}

// decompressFlat decodes every document in key order; undecodable documents
// are skipped.
func decompressFlat[T any](docs map[string]json.RawMessage, setID func(*T, string)) []T {
	out := make([]T, 0, len(docs))
	for _, id := range sortedKeys(docs) {
		v, err := decodeFlat(id, docs[id], setID)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func index[T models.Identifiable](items []T) map[string]T {
	out := make(map[string]T, len(items))
	for _, it := range items {
		out[it.GetID()] = it
	}
	return out
}

// quantities compresses a nested list. Quantities below 1 are stored as 1
// and repeated ids are summed.
func quantities[T models.Identifiable](items []models.Quantified[T]) map[string]int {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]int, len(items))
	for _, q := range items {
		out[q.GetID()] += max(q.Quantity, 1)
	}
	return out
}

// resolve expands an {id: qty} map against known items, in key order.
// Unknown ids are skipped.
func resolve[T models.Identifiable](refs map[string]int, known map[string]T) []models.Quantified[T] {
	out := make([]models.Quantified[T], 0, len(refs))
	for _, id := range sortedKeys(refs) {
		item, ok := known[id]
		if !ok {
			continue
		}
		out = append(out, models.Q(item, refs[id]))
	}
	return out
}

func CompressPlat(p models.Plat) models.RawPlat {
	return models.RawPlat{
		Name:           p.Name,
		Price:          p.Price,
		Category:       p.Category,
		Categorization: p.Categorization,
		Season:         p.Season,
		Materials:      quantities(p.Materials),
	}
}

// DecompressPlat resolves the dish materials; unknown materials are dropped.
func DecompressPlat(id string, raw models.RawPlat, materials map[string]models.Material) models.Plat {
	return models.Plat{
		ID:             id,
		Name:           raw.Name,
		Price:          raw.Price,
		Category:       raw.Category,
		Categorization: raw.Categorization,
		Season:         raw.Season,
		Materials:      resolve(raw.Materials, materials),
	}
}

func CompressMenu(m models.Menu) models.RawMenu {
	return models.RawMenu{Name: m.Name, Price: m.Price, PriceMode: m.PriceMode, Dishes: quantities(m.Plats)}
}

// DecompressMenu resolves the menu dishes; unknown dishes are dropped.
func DecompressMenu(id string, raw models.RawMenu, dishes map[string]models.Plat) models.Menu {
	return models.Menu{
		ID:        id,
		Name:      raw.Name,
		Price:     raw.Price,
		PriceMode: raw.PriceMode,
		Plats:     resolve(raw.Dishes, dishes),
	}
}

// CompressEvent keeps references only. Embedded menus keep their name and
// price as ordered.
func CompressEvent(e models.Event) models.RawEvent {
	raw := models.RawEvent{
		Date:           e.Date,
		Status:         e.Status,
		Labels:         make([]string, 0, len(e.Labels)),
		Price:          e.Price,
		PriceModes:     e.PriceModes,
		Comment:        e.Comment,
		Address:        e.Address,
		DepartureID:    e.Departure.ID,
		People:         e.People,
		ClientID:       e.Client.ID,
		Distance:       e.Distance,
		Type:           e.Type,
		Materials:      quantities(e.Materials),
		Drinks:         quantities(e.Drinks),
		Delivery:       e.Delivery,
		ReturnDelivery: e.ReturnDelivery,
		Service:        e.Service,
	}
	for _, l := range e.Labels {
		raw.Labels = append(raw.Labels, l.ID)
	}
	if len(e.Menus) > 0 {
		raw.Menus = make(map[string]models.RawQMenu, len(e.Menus))
		for _, qm := range e.Menus {
			raw.Menus[qm.GetID()] = models.RawQMenu{
				Name:      qm.Item.Name,
				Price:     qm.Item.Price,
				PriceMode: qm.Item.PriceMode,
				Quantity:  max(qm.Quantity, 1),
				Dishes:    quantities(qm.Item.Plats),
			}
		}
	}
	return raw
}

// Lookups are the resolved collections an event refers to.
type Lookups struct {
	Clients   map[string]models.Client
	Materials map[string]models.Material
	Dishes    map[string]models.Plat
	Drinks    map[string]models.Drink
	Config    models.Config
}

// NewLookups indexes the given collections.
func NewLookups(clients []models.Client, materials []models.Material, dishes []models.Plat, drinks []models.Drink, cfg models.Config) Lookups {
	return Lookups{
		Clients:   index(clients),
		Materials: index(materials),
		Dishes:    index(dishes),
		Drinks:    index(drinks),
		Config:    cfg,
	}
}

// DecompressEvent resolves an event. It reports false when the client or
// the departure location is unknown. Unknown dishes, materials, drinks and
// labels are dropped.
func DecompressEvent(id string, raw models.RawEvent, lk Lookups) (models.Event, bool) {
	client, ok := lk.Clients[raw.ClientID]
	if !ok {
		return models.Event{}, false
	}
	departure, ok := lk.Config.Address(raw.DepartureID)
	if !ok {
		return models.Event{}, false
	}
	e := models.Event{
		ID:             id,
		Date:           raw.Date,
		Status:         raw.Status,
		Labels:         []models.Label{},
		Price:          raw.Price,
		PriceModes:     raw.PriceModes,
		Comment:        raw.Comment,
		Address:        raw.Address,
		Departure:      departure,
		People:         raw.People,
		Client:         client,
		Distance:       raw.Distance,
		Type:           raw.Type,
		Menus:          []models.Quantified[models.Menu]{},
		Materials:      resolve(raw.Materials, lk.Materials),
		Drinks:         resolve(raw.Drinks, lk.Drinks),
		Delivery:       raw.Delivery,
		ReturnDelivery: raw.ReturnDelivery,
		Service:        raw.Service,
	}
	for _, lid := range raw.Labels {
		if l, ok := lk.Config.Label(lid); ok {
			e.Labels = append(e.Labels, l)
		}
	}
	for _, mid := range sortedKeys(raw.Menus) {
		qm := raw.Menus[mid]
		menu := models.Menu{
			ID:        mid,
			Name:      qm.Name,
			Price:     qm.Price,
			PriceMode: qm.PriceMode,
			Plats:     resolve(qm.Dishes, lk.Dishes),
		}
		e.Menus = append(e.Menus, models.Q(menu, qm.Quantity))
	}
	return e, true
}

// CompressConfig keys addresses and labels by id, minting ids for new
// entries. Status and free labels share one map.
func CompressConfig(c models.Config) models.RawConfig {
	raw := models.RawConfig{
		AppTitle:         c.AppTitle,
		TransportCosts:   c.TransportCosts,
		WagesServer:      c.WagesServer,
		WagesCook:        c.WagesCook,
		DefaultStatus:    c.DefaultStatus,
		Addresses:        make(map[string]models.Place, len(c.Addresses)),
		Labels:           make(map[string]models.RawLabel, len(c.LabelsStatus)+len(c.Labels)),
		CategoriesSorted: c.CategoriesSorted,
	}
	for _, a := range c.Addresses {
		id := a.ID
		if id == "" {
			id = docstore.Mint()
		}
		a.ID = ""
		raw.Addresses[id] = a
	}
	for _, l := range slices.Concat(c.LabelsStatus, c.Labels) {
		id := l.ID
		if id == "" {
			id = docstore.Mint()
		}
		raw.Labels[id] = models.RawLabel{Name: l.Name, Color: l.Color, Status: l.Status}
	}
	return raw
}

// DecompressConfig splits labels into status labels, in status order, and
// free labels, by name. Addresses are sorted by town then address.
func DecompressConfig(raw models.RawConfig) models.Config {
	c := models.Config{
		AppTitle:         raw.AppTitle,
		TransportCosts:   raw.TransportCosts,
		WagesServer:      raw.WagesServer,
		WagesCook:        raw.WagesCook,
		DefaultStatus:    raw.DefaultStatus,
		Addresses:        []models.Place{},
		LabelsStatus:     []models.Label{},
		Labels:           []models.Label{},
		CategoriesSorted: raw.CategoriesSorted,
	}
	if c.CategoriesSorted == nil {
		c.CategoriesSorted = []string{}
	}
	for _, id := range sortedKeys(raw.Addresses) {
		a := raw.Addresses[id]
		a.ID = id
		c.Addresses = append(c.Addresses, a)
	}
	slices.SortStableFunc(c.Addresses, func(a, b models.Place) int {
		if n := strings.Compare(a.Town, b.Town); n != 0 {
			return n
		}
		return strings.Compare(a.Address, b.Address)
	})
	for _, id := range sortedKeys(raw.Labels) {
		rl := raw.Labels[id]
		l := models.Label{ID: id, Name: rl.Name, Color: rl.Color, Status: rl.Status}
		if l.IsStatus() {
			c.LabelsStatus = append(c.LabelsStatus, l)
		} else {
			c.Labels = append(c.Labels, l)
		}
	}
	slices.SortStableFunc(c.LabelsStatus, func(a, b models.Label) int {
		return slices.Index(models.Statuses, *a.Status) - slices.Index(models.Statuses, *b.Status)
	})
	slices.SortStableFunc(c.Labels, func(a, b models.Label) int { return strings.Compare(a.Name, b.Name) })
	return c
}
