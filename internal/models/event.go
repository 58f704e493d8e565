package models

import "time"

// EventStatus represents the commercial state of an event.
type EventStatus string

const (
	EventStatusOffer     EventStatus = "Offer"
	EventStatusConfirmed EventStatus = "Confirmed"
	EventStatusCancelled EventStatus = "Cancelled"
)

// Statuses lists the statuses in display order.
var Statuses = []EventStatus{EventStatusOffer, EventStatusConfirmed, EventStatusCancelled}

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// PriceMode tells whether an aggregate price follows its children or was
// typed by hand.
type PriceMode string

const (
	PriceDerived PriceMode = "derived"
	PriceManual  PriceMode = "manual"
)

// IsManual treats the empty mode as derived.
func (m PriceMode) IsManual() bool { return m == PriceManual }

// Price components of an event.
const (
	PriceMenus     = "menus"
	PriceTransport = "transport"
	PriceService   = "service"
	PriceMaterial  = "material"
	PriceDrink     = "drink"
)

// PriceComponents lists the event price components in display order.
var PriceComponents = []string{PriceMenus, PriceTransport, PriceService, PriceMaterial, PriceDrink}

// EventPrice holds the per-category totals of an event.
type EventPrice struct {
	Menus     float64 `json:"menus"`
	Transport float64 `json:"transport"`
	Service   float64 `json:"service"`
	Material  float64 `json:"material"`
	Drink     float64 `json:"drink"`
}

// Total sums every component.
func (p EventPrice) Total() float64 {
	return p.Menus + p.Transport + p.Service + p.Material + p.Drink
}

// Get returns the component by name, 0 for unknown names.
func (p EventPrice) Get(component string) float64 {
	switch component {
	case PriceMenus:
		return p.Menus
	case PriceTransport:
		return p.Transport
	case PriceService:
		return p.Service
	case PriceMaterial:
		return p.Material
	case PriceDrink:
		return p.Drink
	}
	return 0
}

// Set assigns a component by name. Unknown names are ignored.
func (p *EventPrice) Set(component string, v float64) {
	switch component {
	case PriceMenus:
		p.Menus = v
	case PriceTransport:
		p.Transport = v
	case PriceService:
		p.Service = v
	case PriceMaterial:
		p.Material = v
	case PriceDrink:
		p.Drink = v
	}
}

type EventService struct {
	ServersN        int     `json:"serversN"`
	ServersDuration float64 `json:"serversDuration"`
	CooksN          int     `json:"cooksN"`
	CooksDuration   float64 `json:"cooksDuration"`
}

// Label tags an event. Labels carrying a Status mirror the event status and
// are unique per event.
type Label struct {
	ID     string       `json:"id,omitempty"`
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	Status *EventStatus `json:"status,omitempty"`
}

func (l Label) GetID() string   { return l.ID }
func (l Label) GetName() string { return l.Name }

// IsStatus reports whether the label mirrors an event status.
func (l Label) IsStatus() bool { return l.Status != nil }

// Event is a catering order.
type Event struct {
	ID             string                 `json:"id,omitempty"`
	Date           time.Time              `json:"date"`
	Status         EventStatus            `json:"status"`
	Labels         []Label                `json:"labels"`
	Price          EventPrice             `json:"price"`
	PriceModes     map[string]PriceMode   `json:"priceModes,omitempty"`
	Comment        string                 `json:"comment"`
	Address        Place                  `json:"address"`
	Departure      Place                  `json:"departure"`
	People         int                    `json:"people"`
	Client         Client                 `json:"client"`
	Distance       float64                `json:"distance"`
	Type           string                 `json:"type"`
	Menus          []Quantified[Menu]     `json:"menus"`
	Materials      []Quantified[Material] `json:"materials"`
	Drinks         []Quantified[Drink]    `json:"drinks"`
	Delivery       bool                   `json:"delivery"`
	ReturnDelivery bool                   `json:"returnDelivery"`
	Service        EventService           `json:"service"`
}

func (e Event) GetID() string { return e.ID }

// GetName makes events searchable by client name.
func (e Event) GetName() string { return e.Client.Name }

// PriceMode returns the mode of one price component.
func (e Event) PriceMode(component string) PriceMode {
	if m, ok := e.PriceModes[component]; ok {
		return m
	}
	return PriceDerived
}

// SetPriceMode records the mode of one price component.
func (e *Event) SetPriceMode(component string, mode PriceMode) {
	if e.PriceModes == nil {
		e.PriceModes = map[string]PriceMode{}
	}
	if mode == PriceDerived {
		delete(e.PriceModes, component)
		if len(e.PriceModes) == 0 {
			e.PriceModes = nil
		}
		return
	}
	e.PriceModes[component] = mode
}

// HasLabel reports whether a label with id is attached.
func (e Event) HasLabel(id string) bool {
	for _, l := range e.Labels {
		if l.ID == id {
			return true
		}
	}
	return false
}
