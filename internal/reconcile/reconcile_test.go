package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/traiteur/internal/models"
)

func TestRoundToBatch(t *testing.T) {
	tests := []struct {
		q, batch, want int
	}{
		{7, 6, 12},
		{12, 6, 12},
		{0, 6, 0},
		{-2, 6, 0},
		{1, 6, 6},
		{5, 0, 5},
		{5, 1, 5},
	}
	for _, tt := range tests {
		if got := RoundToBatch(tt.q, tt.batch); got != tt.want {
			t.Errorf("RoundToBatch(%d, %d) = %d, want %d", tt.q, tt.batch, got, tt.want)
		}
	}
}

var (
	plate = models.Material{ID: "plate", Name: "Assiette", Price: 0.5, Batch: 6}
	glass = models.Material{ID: "glass", Name: "Verre", Price: 0.3, Batch: 10}
	fork  = models.Material{ID: "fork", Name: "Fourchette", Price: 0.1, Batch: 1}
)

func menus(qty int) []models.Quantified[models.Menu] {
	soup := models.Plat{ID: "soup", Materials: []models.Quantified[models.Material]{models.Q(plate, 1), models.Q(fork, 1)}}
	cake := models.Plat{ID: "cake", Materials: []models.Quantified[models.Material]{models.Q(plate, 1)}}
	aperitif := models.Plat{ID: "apero", Materials: []models.Quantified[models.Material]{models.Q(glass, 2)}}
	return []models.Quantified[models.Menu]{
		models.Q(models.Menu{ID: "m1", Plats: []models.Quantified[models.Plat]{models.Q(soup, 1), models.Q(cake, 1)}}, qty),
		models.Q(models.Menu{ID: "m2", Plats: []models.Quantified[models.Plat]{models.Q(aperitif, 1)}}, 3),
	}
}

func quantitiesOf(items []models.Quantified[models.Material]) map[string]int {
	out := map[string]int{}
	for _, m := range items {
		out[m.GetID()] = m.Quantity
	}
	return out
}

func TestImpliedMaterials(t *testing.T) {
	got := quantitiesOf(ImpliedMaterials(menus(5)))
	// plate: 5*1*1 + 5*1*1 = 10 -> 12; fork: 5; glass: 3*1*2 = 6 -> 10
	assert.Equal(t, map[string]int{"plate": 12, "fork": 5, "glass": 10}, got)
}

func TestLinkUnlinkRoundTrip(t *testing.T) {
	order := []models.Quantified[models.Material]{
		models.Q(plate, 3),
		models.Q(models.Material{ID: "tent", Batch: 1}, 1),
	}
	implied := ImpliedMaterials(menus(5))

	linked := Link(order, implied)
	assert.Equal(t, map[string]int{"plate": 15, "tent": 1, "fork": 5, "glass": 10}, quantitiesOf(linked))
	assert.Equal(t, 3, order[0].Quantity, "input untouched")

	back := Unlink(linked, implied)
	assert.Equal(t, quantitiesOf(order), quantitiesOf(back))
}

func TestLink(t *testing.T) {
	tests := []struct {
		name  string
		order []models.Quantified[models.Material]
		want  map[string]int
	}{
		{"empty order", nil, map[string]int{"plate": 12, "fork": 5, "glass": 10}},
		{"grows present lines", []models.Quantified[models.Material]{models.Q(glass, 4)}, map[string]int{"plate": 12, "fork": 5, "glass": 14}},
		{"keeps lines matching the menus", []models.Quantified[models.Material]{models.Q(plate, 12), models.Q(fork, 1)}, map[string]int{"plate": 12, "fork": 6, "glass": 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, quantitiesOf(Link(tt.order, ImpliedMaterials(menus(5)))))
		})
	}
}

func TestUnlink_DropsWhollyImplied(t *testing.T) {
	order := []models.Quantified[models.Material]{models.Q(plate, 6), models.Q(glass, 15)}
	implied := []models.Quantified[models.Material]{models.Q(plate, 12), models.Q(glass, 10)}
	got := Unlink(order, implied)
	assert.Equal(t, map[string]int{"glass": 5}, quantitiesOf(got))
}

func TestLinker(t *testing.T) {
	l := NewLinker()
	assert.Equal(t, Unlinked, l.State())

	order := []models.Quantified[models.Material]{models.Q(fork, 2)}
	// unlinked menu changes do nothing
	assert.Equal(t, order, l.MenusChanged(menus(5), order))

	order = l.SetLinked(true, menus(5), order)
	require.True(t, l.IsLinked())
	assert.Equal(t, map[string]int{"plate": 12, "fork": 7, "glass": 10}, quantitiesOf(order))

	// linking twice changes nothing
	assert.Equal(t, quantitiesOf(order), quantitiesOf(l.SetLinked(true, menus(5), order)))

	// 7 menus: plate 14 -> 18, fork 7
	order = l.MenusChanged(menus(7), order)
	assert.Equal(t, map[string]int{"plate": 18, "fork": 9, "glass": 10}, quantitiesOf(order))

	// menus removed: implied falls to nothing, manual forks remain
	order = l.MenusChanged(nil, order)
	assert.Equal(t, map[string]int{"fork": 2}, quantitiesOf(order))

	order = l.MenusChanged(menus(1), order)
	order = l.SetLinked(false, menus(1), order)
	assert.Equal(t, Unlinked, l.State())
	assert.Equal(t, map[string]int{"fork": 2}, quantitiesOf(order))
}

func TestSum(t *testing.T) {
	items := []models.Quantified[models.Plat]{
		models.Q(models.Plat{ID: "a", Price: 10}, 2),
		models.Q(models.Plat{ID: "b", Price: 5}, 1),
	}
	assert.Equal(t, 25.0, Sum(items))

	cents := []models.Quantified[models.Drink]{
		models.Q(models.Drink{ID: "x", Price: 0.1}, 3),
		models.Q(models.Drink{ID: "y", Price: 0.2}, 1),
	}
	assert.Equal(t, 0.5, Sum(cents))
	assert.Equal(t, 0.0, Sum[models.Drink](nil))
}

func TestAggregate(t *testing.T) {
	var a Aggregate
	a.Recompute(25)
	assert.Equal(t, Aggregate{Price: 25, Mode: models.PriceDerived}, a)

	a.Override(20)
	a.Refresh(30)
	assert.Equal(t, 20.0, a.Price, "manual price wins over refresh")

	a.Recompute(30)
	assert.Equal(t, Aggregate{Price: 30, Mode: models.PriceDerived}, a)
}

func TestTransportPrice(t *testing.T) {
	costs := models.TransportCosts{Under: 1.5, Upper: 1, Threshold: 50}
	tests := []struct {
		name      string
		km        float64
		out, back bool
		want      float64
	}{
		{"both ways under threshold", 20, true, true, 60},
		{"one way under threshold", 20, true, false, 30},
		{"above threshold", 80, true, true, 160},
		{"at threshold uses under", 50, false, true, 75},
		{"no delivery", 20, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransportPrice(tt.km, tt.out, tt.back, costs))
		})
	}
}

func TestServicePrice(t *testing.T) {
	s := models.EventService{CooksN: 2, CooksDuration: 4, ServersN: 3, ServersDuration: 2.5}
	assert.Equal(t, 2*4*40.0+3*2.5*35, ServicePrice(s, 40, 35))
}

func TestEventPrices(t *testing.T) {
	cfg := models.DefaultConfig("t")
	e := models.Event{
		Menus:     []models.Quantified[models.Menu]{models.Q(models.Menu{ID: "m", Price: 30}, 10)},
		Materials: []models.Quantified[models.Material]{models.Q(plate, 12)},
		Drinks:    []models.Quantified[models.Drink]{models.Q(models.Drink{ID: "d", Price: 2.5}, 4)},
		Distance:  10,
		Delivery:  true,
		Service:   models.EventService{CooksN: 1, CooksDuration: 2},
		Price:     models.EventPrice{Menus: 999, Drink: 1},
	}
	e.SetPriceMode(models.PriceMenus, models.PriceManual)

	got := EventPrices(e, cfg)
	assert.Equal(t, models.EventPrice{Menus: 999, Transport: 15, Service: 80, Material: 6, Drink: 10}, got)
}

func TestMenuPrice(t *testing.T) {
	soup := models.Plat{ID: "p", Price: 4}
	bread := models.Plat{ID: "b", Price: 1}
	stored := models.Menu{ID: "m", Price: 12, PriceMode: models.PriceManual, Plats: []models.Quantified[models.Plat]{models.Q(soup, 2)}}

	tests := []struct {
		name string
		prev *models.Menu
		menu models.Menu
		want Aggregate
	}{
		{"new derived menu", nil,
			models.Menu{Price: 99, Plats: []models.Quantified[models.Plat]{models.Q(soup, 2)}},
			Aggregate{Price: 8}},
		{"new manual menu", nil,
			models.Menu{Price: 12, PriceMode: models.PriceManual, Plats: []models.Quantified[models.Plat]{models.Q(soup, 2)}},
			Aggregate{Price: 12, Mode: models.PriceManual}},
		{"manual kept when dishes unchanged", &stored,
			models.Menu{Price: 15, PriceMode: models.PriceManual, Plats: []models.Quantified[models.Plat]{models.Q(soup, 2)}},
			Aggregate{Price: 15, Mode: models.PriceManual}},
		{"quantity change resets", &stored,
			models.Menu{Price: 12, PriceMode: models.PriceManual, Plats: []models.Quantified[models.Plat]{models.Q(soup, 3)}},
			Aggregate{Price: 12, Mode: models.PriceDerived}},
		{"added dish resets", &stored,
			models.Menu{Price: 12, PriceMode: models.PriceManual, Plats: []models.Quantified[models.Plat]{models.Q(soup, 2), models.Q(bread, 1)}},
			Aggregate{Price: 9, Mode: models.PriceDerived}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MenuPrice(tt.prev, tt.menu))
		})
	}
}

func TestChanged(t *testing.T) {
	a := models.Q(models.Drink{ID: "a"}, 1)
	b := models.Q(models.Drink{ID: "b"}, 2)
	assert.False(t, Changed([]models.Quantified[models.Drink]{a, b}, []models.Quantified[models.Drink]{b, a}), "order does not matter")
	assert.True(t, Changed([]models.Quantified[models.Drink]{a}, []models.Quantified[models.Drink]{a, b}))
	assert.True(t, Changed([]models.Quantified[models.Drink]{b}, []models.Quantified[models.Drink]{models.Q(models.Drink{ID: "b"}, 3)}))
	assert.False(t, Changed([]models.Quantified[models.Drink]{a}, []models.Quantified[models.Drink]{models.Q(models.Drink{ID: "a"}, 0)}), "0 is stored as 1")
}

func TestComponent_Store(t *testing.T) {
	var e models.Event
	a := Component(e, models.PriceDrink)
	assert.Equal(t, Aggregate{Mode: models.PriceDerived}, a)

	a.Override(42)
	a.Store(&e, models.PriceDrink)
	assert.Equal(t, 42.0, e.Price.Drink)
	assert.True(t, e.PriceMode(models.PriceDrink).IsManual())

	a = Component(e, models.PriceDrink)
	a.Recompute(10)
	a.Store(&e, models.PriceDrink)
	assert.Equal(t, 10.0, e.Price.Drink)
	assert.Nil(t, e.PriceModes, "derived modes are not stored")
}
