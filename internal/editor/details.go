package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/traiteur/internal/form"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/validation"
)

// DateLayout is the short form accepted for the event date besides RFC 3339.
const DateLayout = "2006-01-02T15:04"

// Detail fields of the event form.
const (
	FieldClient          = "clientID"
	FieldDate            = "date"
	FieldPeople          = "people"
	FieldType            = "type"
	FieldComment         = "comment"
	FieldAddress         = "address"
	FieldPostcode        = "postcode"
	FieldTown            = "town"
	FieldCanton          = "canton"
	FieldPlaceID         = "placeID"
	FieldDeparture       = "departureID"
	FieldDistance        = "distance"
	FieldDelivery        = "delivery"
	FieldReturnDelivery  = "returnDelivery"
	FieldServersN        = "serversN"
	FieldServersDuration = "serversDuration"
	FieldCooksN          = "cooksN"
	FieldCooksDuration   = "cooksDuration"
)

func parseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func dateCriterion() validation.Criterion {
	return func(field string, value any, _ validation.Params) validation.Result {
		if _, ok := parseDate(value); !ok {
			return validation.Result{Error: true, Info: fmt.Sprintf("%s n'est pas une date valide.", field)}
		}
		return validation.Valid
	}
}

func positive() []validation.Criterion {
	return []validation.Criterion{validation.Number(), validation.Min(0)}
}

func detailsCriterias() map[string][]validation.Criterion {
	return map[string][]validation.Criterion{
		FieldClient:          {validation.Required()},
		FieldDate:            {validation.Required(), dateCriterion()},
		FieldPeople:          {validation.Required(), validation.Number(), validation.Min(1)},
		FieldPostcode:        positive(),
		FieldDistance:        positive(),
		FieldServersN:        positive(),
		FieldServersDuration: positive(),
		FieldCooksN:          positive(),
		FieldCooksDuration:   positive(),
	}
}

func detailsOf(e models.Event) form.Values {
	date := ""
	if !e.Date.IsZero() {
		date = e.Date.Format(time.RFC3339)
	}
	return form.Values{
		FieldClient:          e.Client.ID,
		FieldDate:            date,
		FieldPeople:          float64(e.People),
		FieldType:            e.Type,
		FieldComment:         e.Comment,
		FieldAddress:         e.Address.Address,
		FieldPostcode:        float64(e.Address.Postcode),
		FieldTown:            e.Address.Town,
		FieldCanton:          e.Address.Canton,
		FieldPlaceID:         e.Address.PlaceID,
		FieldDeparture:       e.Departure.ID,
		FieldDistance:        e.Distance,
		FieldDelivery:        e.Delivery,
		FieldReturnDelivery:  e.ReturnDelivery,
		FieldServersN:        float64(e.Service.ServersN),
		FieldServersDuration: e.Service.ServersDuration,
		FieldCooksN:          float64(e.Service.CooksN),
		FieldCooksDuration:   e.Service.CooksDuration,
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func number(v any, fallback float64) float64 {
	if n, ok := validation.ParseNumber(v); ok {
		return n
	}
	return fallback
}

func boolean(v any, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return fallback
}

// applyDetails copies the readable detail values onto e. Unreadable values
// leave the event field alone; validation reports them.
func applyDetails(e *models.Event, v form.Values, lk lookups) {
	if c, ok := lk.clients[str(v[FieldClient])]; ok {
		e.Client = c
	} else if str(v[FieldClient]) == "" {
		e.Client = models.Client{}
	}
	if t, ok := parseDate(v[FieldDate]); ok {
		e.Date = t
	}
	e.People = int(number(v[FieldPeople], float64(e.People)))
	e.Type = str(v[FieldType])
	e.Comment = str(v[FieldComment])

	e.Address.Address = str(v[FieldAddress])
	e.Address.Postcode = int(number(v[FieldPostcode], float64(e.Address.Postcode)))
	e.Address.Town = str(v[FieldTown])
	e.Address.Canton = str(v[FieldCanton])
	e.Address.PlaceID = str(v[FieldPlaceID])
	if e.Address.Kind == "" {
		e.Address.Kind = models.PlaceAddress
	}

	if d, ok := lk.departures[str(v[FieldDeparture])]; ok {
		e.Departure = d
	} else {
		e.Departure = models.Place{}
	}
	e.Distance = number(v[FieldDistance], e.Distance)
	e.Delivery = boolean(v[FieldDelivery], e.Delivery)
	e.ReturnDelivery = boolean(v[FieldReturnDelivery], e.ReturnDelivery)

	e.Service = models.EventService{
		ServersN:        int(number(v[FieldServersN], float64(e.Service.ServersN))),
		ServersDuration: number(v[FieldServersDuration], e.Service.ServersDuration),
		CooksN:          int(number(v[FieldCooksN], float64(e.Service.CooksN))),
		CooksDuration:   number(v[FieldCooksDuration], e.Service.CooksDuration),
	}
}
