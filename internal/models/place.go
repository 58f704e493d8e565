package models

import "fmt"

// PlaceKind discriminates plain delivery addresses from geolocated
// departure locations.
type PlaceKind string

const (
	PlaceAddress  PlaceKind = "address"
	PlaceLocation PlaceKind = "location"
)

// Place is either an address (event destination) or a location with
// coordinates (configured departure points). The kind is fixed by the
// constructor.
type Place struct {
	ID       string    `json:"id,omitempty"`
	Kind     PlaceKind `json:"kind"`
	PlaceID  string    `json:"placeID"`
	Address  string    `json:"address"`
	Postcode int       `json:"postcode"`
	Town     string    `json:"town"`
	Canton   string    `json:"canton"`
	Lat      float64   `json:"lat,omitempty"`
	Lng      float64   `json:"lng,omitempty"`
}

// NewAddress builds a destination address without coordinates.
func NewAddress(placeID, address string, postcode int, town, canton string) Place {
	return Place{
		Kind:     PlaceAddress,
		PlaceID:  placeID,
		Address:  address,
		Postcode: postcode,
		Town:     town,
		Canton:   canton,
	}
}

// NewLocation builds a geolocated place.
func NewLocation(placeID, address string, postcode int, town, canton string, lat, lng float64) Place {
	p := NewAddress(placeID, address, postcode, town, canton)
	p.Kind = PlaceLocation
	p.Lat = lat
	p.Lng = lng
	return p
}

func (p Place) GetID() string   { return p.ID }
func (p Place) GetName() string { return p.Address }

// HasCoordinates is decided by the kind only.
func (p Place) HasCoordinates() bool { return p.Kind == PlaceLocation }

// AsAddress drops the id and coordinates of a location.
func (p Place) AsAddress() Place {
	return NewAddress(p.PlaceID, p.Address, p.Postcode, p.Town, p.Canton)
}

// Line renders "address, postcode town".
func (p Place) Line() string {
	if p.Postcode == 0 && p.Town == "" {
		return p.Address
	}
	return fmt.Sprintf("%s, %d %s", p.Address, p.Postcode, p.Town)
}
