package reconcile

import (
	"maps"

	"github.com/shopspring/decimal"

	"github.com/diewo77/traiteur/internal/models"
)

// Sum returns Σ price x quantity rounded to the centime.
func Sum[T models.Identifiable](items []models.Quantified[T]) float64 {
	total := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.GetPrice()).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	return total.Round(2).InexactFloat64()
}

// Aggregate is a price that follows its children until it is typed by hand.
// It holds until the next structural change of the children.
type Aggregate struct {
	Price float64          `json:"price"`
	Mode  models.PriceMode `json:"priceMode"`
}

// Recompute follows a structural change of the children: the price becomes
// derived again.
func (a *Aggregate) Recompute(total float64) {
	a.Price = total
	a.Mode = models.PriceDerived
}

// Refresh updates a derived price and leaves a manual one alone.
func (a *Aggregate) Refresh(total float64) {
	if a.Mode.IsManual() {
		return
	}
	a.Price = total
}

// Override sets a manual price.
func (a *Aggregate) Override(v float64) {
	a.Price = v
	a.Mode = models.PriceManual
}

// Component reads one price component of e.
func Component(e models.Event, component string) Aggregate {
	return Aggregate{Price: e.Price.Get(component), Mode: e.PriceMode(component)}
}

// Store writes a back as the component of e.
func (a Aggregate) Store(e *models.Event, component string) {
	e.Price.Set(component, a.Price)
	e.SetPriceMode(component, a.Mode)
}

// Changed reports whether two child lists differ in ids or quantities, as
// they would be stored. Order does not matter.
func Changed[T models.Identifiable](before, after []models.Quantified[T]) bool {
	return !maps.Equal(counts(before), counts(after))
}

func counts[T models.Identifiable](items []models.Quantified[T]) map[string]int {
	out := make(map[string]int, len(items))
	for _, it := range items {
		out[it.GetID()] += max(it.Quantity, 1)
	}
	return out
}

// TransportPrice prices the trips to the event: one per enabled delivery
// direction, at the per-km cost of the distance range.
func TransportPrice(distanceKm float64, delivery, returnDelivery bool, costs models.TransportCosts) float64 {
	trips := TransportFactor(delivery, returnDelivery)
	cost := costs.Under
	if distanceKm > costs.Threshold {
		cost = costs.Upper
	}
	return decimal.NewFromFloat(distanceKm).
		Mul(decimal.NewFromInt(int64(trips))).
		Mul(decimal.NewFromFloat(cost)).
		Round(2).
		InexactFloat64()
}

// TransportFactor is the number of trips, used to split the transport
// price per direction.
func TransportFactor(delivery, returnDelivery bool) int {
	n := 0
	if delivery {
		n++
	}
	if returnDelivery {
		n++
	}
	return n
}

// ServicePrice is the staff cost: cooks and servers at their hourly wage.
func ServicePrice(s models.EventService, wagesCook, wagesServer float64) float64 {
	cooks := decimal.NewFromInt(int64(s.CooksN)).
		Mul(decimal.NewFromFloat(s.CooksDuration)).
		Mul(decimal.NewFromFloat(wagesCook))
	servers := decimal.NewFromInt(int64(s.ServersN)).
		Mul(decimal.NewFromFloat(s.ServersDuration)).
		Mul(decimal.NewFromFloat(wagesServer))
	return cooks.Add(servers).Round(2).InexactFloat64()
}

// Derived computes every component of e from its contents, ignoring the
// price modes.
func Derived(e models.Event, cfg models.Config) models.EventPrice {
	return models.EventPrice{
		Menus:     Sum(e.Menus),
		Transport: TransportPrice(e.Distance, e.Delivery, e.ReturnDelivery, cfg.TransportCosts),
		Service:   ServicePrice(e.Service, cfg.WagesCook, cfg.WagesServer),
		Material:  Sum(e.Materials),
		Drink:     Sum(e.Drinks),
	}
}

// EventPrices refreshes every component of e. Components marked manual keep
// their current value.
func EventPrices(e models.Event, cfg models.Config) models.EventPrice {
	derived := Derived(e, cfg)
	out := e.Price
	for _, c := range models.PriceComponents {
		a := Component(e, c)
		a.Refresh(derived.Get(c))
		out.Set(c, a.Price)
	}
	return out
}

// MenuPrice reprices a menu after an edit. prev is the stored menu, nil on
// creation. A manual price survives unless the dishes changed since prev.
func MenuPrice(prev *models.Menu, m models.Menu) Aggregate {
	a := Aggregate{Price: m.Price, Mode: m.PriceMode}
	total := Sum(m.Plats)
	if prev != nil && prev.PriceMode.IsManual() && Changed(prev.Plats, m.Plats) {
		a.Recompute(total)
		return a
	}
	a.Refresh(total)
	return a
}
