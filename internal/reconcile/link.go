// Package reconcile keeps the derived quantities and prices of an event in
// step with its parts: the materials implied by the ordered menus, the
// aggregate price of every quantified collection and the transport and
// service costs.
package reconcile

import (
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/pool"
)

// RoundToBatch rounds q up to a multiple of batch. A batch below 1 counts
// as 1; non-positive quantities give 0.
func RoundToBatch(q, batch int) int {
	if q <= 0 {
		return 0
	}
	if batch < 1 {
		batch = 1
	}
	return (q + batch - 1) / batch * batch
}

// ImpliedMaterials accumulates menu quantity x dish quantity x material
// quantity per material over every path, then rounds each total to its
// batch.
func ImpliedMaterials(menus []models.Quantified[models.Menu]) []models.Quantified[models.Material] {
	var out []models.Quantified[models.Material]
	for _, menu := range menus {
		for _, plat := range menu.Item.Plats {
			for _, m := range plat.Item.Materials {
				q := menu.Quantity * plat.Quantity * m.Quantity
				if q <= 0 {
					continue
				}
				out = pool.Add(out, m.Item, q)
			}
		}
	}
	for i, m := range out {
		out[i].Quantity = RoundToBatch(m.Quantity, m.Item.Batch)
	}
	return out
}

// Link merges implied into a standalone material order: missing materials
// are added and present ones grow by the implied quantity, so what was
// ordered by hand stays on top of what the menus need. A line already
// holding exactly the implied quantity is taken as covering the menus and
// left alone.
func Link(order, implied []models.Quantified[models.Material]) []models.Quantified[models.Material] {
	out := pool.Clone(order)
	for _, m := range implied {
		if i := pool.Index(out, m.GetID()); i >= 0 && out[i].Quantity == m.Quantity {
			continue
		}
		out = shift(out, m.Item, m.Quantity)
	}
	return out
}

// Relink moves order from the previously implied pool to the next one. Each
// material changes by the difference between both pools; lines falling to
// zero are dropped.
func Relink(order, previous, next []models.Quantified[models.Material]) []models.Quantified[models.Material] {
	out := pool.Clone(order)
	prev := quantities(previous)
	seen := map[string]bool{}

	for _, m := range next {
		id := m.GetID()
		seen[id] = true
		delta := m.Quantity - prev[id]
		if delta == 0 {
			continue
		}
		out = shift(out, m.Item, delta)
	}
	for _, m := range previous {
		if !seen[m.GetID()] {
			out = shift(out, m.Item, -m.Quantity)
		}
	}
	return out
}

// Unlink removes implied from order. Materials wholly covered by implied are
// dropped, the others keep what exceeds it.
func Unlink(order, implied []models.Quantified[models.Material]) []models.Quantified[models.Material] {
	imp := quantities(implied)
	out := make([]models.Quantified[models.Material], 0, len(order))
	for _, m := range order {
		q, ok := imp[m.GetID()]
		if !ok {
			out = append(out, m)
			continue
		}
		if m.Quantity > q {
			out = append(out, models.Q(m.Item, m.Quantity-q))
		}
	}
	return out
}

func quantities(items []models.Quantified[models.Material]) map[string]int {
	out := make(map[string]int, len(items))
	for _, m := range items {
		out[m.GetID()] += m.Quantity
	}
	return out
}

// shift adds delta to a material, appending it when absent and dropping it
// at zero.
func shift(order []models.Quantified[models.Material], item models.Material, delta int) []models.Quantified[models.Material] {
	i := pool.Index(order, item.ID)
	if i < 0 {
		if delta > 0 {
			return append(order, models.Q(item, delta))
		}
		return order
	}
	q := order[i].Quantity + delta
	if q <= 0 {
		return append(order[:i:i], order[i+1:]...)
	}
	order[i] = models.Q(order[i].Item, q)
	return order
}

// LinkState is the state of the materials linkage.
type LinkState string

const (
	Unlinked LinkState = "unlinked"
	Linked   LinkState = "linked"
)

// Linker ties a material order to the menus of an event. It starts
// unlinked.
type Linker struct {
	state   LinkState
	implied []models.Quantified[models.Material]
}

// NewLinker returns an unlinked linker.
func NewLinker() *Linker { return &Linker{state: Unlinked} }

// State returns the current state.
func (l *Linker) State() LinkState {
	if l.state == "" {
		return Unlinked
	}
	return l.state
}

// IsLinked reports whether menu changes flow into the order.
func (l *Linker) IsLinked() bool { return l.State() == Linked }

// Implied returns the last computed implied pool.
func (l *Linker) Implied() []models.Quantified[models.Material] { return pool.Clone(l.implied) }

// SetLinked switches the linkage and returns the adjusted order. Linking
// merges the implied materials once; unlinking takes them back out. Setting
// the current state again changes nothing.
func (l *Linker) SetLinked(on bool, menus []models.Quantified[models.Menu], order []models.Quantified[models.Material]) []models.Quantified[models.Material] {
	switch {
	case on && !l.IsLinked():
		l.implied = ImpliedMaterials(menus)
		l.state = Linked
		return Link(order, l.implied)
	case !on && l.IsLinked():
		l.state = Unlinked
		return Unlink(order, l.implied)
	}
	return pool.Clone(order)
}

// MenusChanged follows a new menu selection while linked.
func (l *Linker) MenusChanged(menus []models.Quantified[models.Menu], order []models.Quantified[models.Material]) []models.Quantified[models.Material] {
	if !l.IsLinked() {
		return pool.Clone(order)
	}
	next := ImpliedMaterials(menus)
	out := Relink(order, l.implied, next)
	l.implied = next
	return out
}
