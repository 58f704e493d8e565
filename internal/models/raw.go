package models

import "time"

// Storage forms. Nested references are compressed into {childID: quantity}
// maps and records are keyed by id, so the id itself is not part of the body.

type RawPlat struct {
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Category       string         `json:"category"`
	Categorization []string       `json:"categorization,omitempty"`
	Season         string         `json:"season"`
	Materials      map[string]int `json:"materials,omitempty"`
}

type RawMenu struct {
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	PriceMode PriceMode      `json:"priceMode,omitempty"`
	Dishes    map[string]int `json:"dishes,omitempty"`
}

// RawQMenu is a menu embedded in an event. Name and price are frozen at the
// time of the order.
type RawQMenu struct {
	Name      string         `json:"name"`
	Price     float64        `json:"price"`
	PriceMode PriceMode      `json:"priceMode,omitempty"`
	Quantity  int            `json:"quantity"`
	Dishes    map[string]int `json:"dishes,omitempty"`
}

type RawEvent struct {
	Date           time.Time            `json:"date"`
	Status         EventStatus          `json:"status"`
	Labels         []string             `json:"labels"`
	Price          EventPrice           `json:"price"`
	PriceModes     map[string]PriceMode `json:"priceModes,omitempty"`
	Comment        string               `json:"comment"`
	Address        Place                `json:"address"`
	DepartureID    string               `json:"departureID"`
	People         int                  `json:"people"`
	ClientID       string               `json:"clientID"`
	Distance       float64              `json:"distance"`
	Type           string               `json:"type"`
	Menus          map[string]RawQMenu  `json:"menus,omitempty"`
	Materials      map[string]int       `json:"materials,omitempty"`
	Drinks         map[string]int       `json:"drinks,omitempty"`
	Delivery       bool                 `json:"delivery"`
	ReturnDelivery bool                 `json:"returnDelivery"`
	Service        EventService         `json:"service"`
}

type RawLabel struct {
	Name   string       `json:"name"`
	Color  string       `json:"color"`
	Status *EventStatus `json:"status,omitempty"`
}

type RawConfig struct {
	AppTitle         string              `json:"appTitle"`
	TransportCosts   TransportCosts      `json:"transportCosts"`
	WagesServer      float64             `json:"wagesServer"`
	WagesCook        float64             `json:"wagesCook"`
	DefaultStatus    EventStatus         `json:"defaultStatus"`
	Addresses        map[string]Place    `json:"addresses,omitempty"`
	Labels           map[string]RawLabel `json:"labels,omitempty"`
	CategoriesSorted []string            `json:"categoriesSorted"`
}
