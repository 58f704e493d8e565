// Package models holds the catering domain entities as consumed by the
// editors and the grid, plus their compressed storage forms (see raw.go).
package models

import (
	"encoding/json"
	"fmt"
)

// NoName is the reserved name of the placeholder menu that carries dishes
// ordered outside of any menu.
const NoName = "_NO_NAME_"

// Identifiable is any record addressed by an opaque store id.
type Identifiable interface {
	GetID() string
}

// Named records expose a display name.
type Named interface {
	GetName() string
}

// Priced records expose a unit price in CHF.
type Priced interface {
	GetPrice() float64
}

type Client struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c Client) GetID() string   { return c.ID }
func (c Client) GetName() string { return c.Name }

// Material is rented equipment (plates, glasses, ...). Batch is the minimum
// purchasable unit: ordered quantities are multiples of it.
type Material struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Price       float64 `json:"price"`
	Batch       int     `json:"batch"`
}

func (m Material) GetID() string     { return m.ID }
func (m Material) GetName() string   { return m.Name }
func (m Material) GetPrice() float64 { return m.Price }

type Drink struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Price       float64 `json:"price"`
}

func (d Drink) GetID() string     { return d.ID }
func (d Drink) GetName() string   { return d.Name }
func (d Drink) GetPrice() float64 { return d.Price }

// Plat is a dish. Materials lists what a single serving consumes.
type Plat struct {
	ID             string                 `json:"id,omitempty"`
	Name           string                 `json:"name"`
	Price          float64                `json:"price"`
	Category       string                 `json:"category"`
	Categorization []string               `json:"categorization"`
	Season         string                 `json:"season"`
	Materials      []Quantified[Material] `json:"materials"`
}

func (p Plat) GetID() string     { return p.ID }
func (p Plat) GetName() string   { return p.Name }
func (p Plat) GetPrice() float64 { return p.Price }

// Menu groups dishes. Price is derived from the dishes unless PriceMode is
// manual.
type Menu struct {
	ID        string             `json:"id,omitempty"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	PriceMode PriceMode          `json:"priceMode,omitempty"`
	Plats     []Quantified[Plat] `json:"plats"`
}

func (m Menu) GetID() string     { return m.ID }
func (m Menu) GetName() string   { return m.Name }
func (m Menu) GetPrice() float64 { return m.Price }

// DishesTotal returns the sum of price*quantity over the menu dishes.
func (m Menu) DishesTotal() float64 {
	var total float64
	for _, p := range m.Plats {
		total += p.Total()
	}
	return total
}

// Quantified places an entity inside an order with a quantity. It encodes
// flat: the item fields plus "quantity".
type Quantified[T Identifiable] struct {
	Item     T
	Quantity int
}

// Q is a shorthand constructor.
func Q[T Identifiable](item T, quantity int) Quantified[T] {
	return Quantified[T]{Item: item, Quantity: quantity}
}

func (q Quantified[T]) GetID() string { return q.Item.GetID() }

func (q Quantified[T]) GetName() string {
	if n, ok := any(q.Item).(Named); ok {
		return n.GetName()
	}
	return ""
}

func (q Quantified[T]) GetPrice() float64 {
	if p, ok := any(q.Item).(Priced); ok {
		return p.GetPrice()
	}
	return 0
}

// Total returns the line total price*quantity.
func (q Quantified[T]) Total() float64 {
	return q.GetPrice() * float64(q.Quantity)
}

func (q Quantified[T]) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(q.Item)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("quantified item must encode as an object: %w", err)
	}
	qty, _ := json.Marshal(q.Quantity)
	fields["quantity"] = qty
	return json.Marshal(fields)
}

func (q *Quantified[T]) UnmarshalJSON(data []byte) error {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	var wrapper struct {
		Quantity int `json:"quantity"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	q.Item = item
	q.Quantity = wrapper.Quantity
	return nil
}

// Items strips the quantities.
func Items[T Identifiable](qs []Quantified[T]) []T {
	out := make([]T, len(qs))
	for i, q := range qs {
		out[i] = q.Item
	}
	return out
}
