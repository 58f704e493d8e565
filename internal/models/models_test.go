package models

import (
	"encoding/json"
	"testing"
)

func TestMenu_DishesTotal(t *testing.T) {
	tests := []struct {
		name  string
		plats []Quantified[Plat]
		want  float64
	}{
		{"empty", nil, 0},
		{"single", []Quantified[Plat]{Q(Plat{ID: "a", Price: 12.5}, 1)}, 12.5},
		{"quantities", []Quantified[Plat]{
			Q(Plat{ID: "a", Price: 10}, 2),
			Q(Plat{ID: "b", Price: 5}, 1),
		}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Menu{Plats: tt.plats}
			got := m.DishesTotal()
			if diff := got - tt.want; diff > 0.001 || diff < -0.001 {
				t.Errorf("DishesTotal() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEventPrice_Total(t *testing.T) {
	p := EventPrice{Menus: 100, Transport: 20, Service: 30, Material: 12.5, Drink: 7.5}
	if got := p.Total(); got != 170 {
		t.Errorf("Total() = %f, want 170", got)
	}
}

func TestEventPrice_GetSet(t *testing.T) {
	var p EventPrice
	for i, c := range []string{PriceMenus, PriceTransport, PriceService, PriceMaterial, PriceDrink} {
		p.Set(c, float64(i+1))
		if got := p.Get(c); got != float64(i+1) {
			t.Errorf("Get(%q) = %f, want %d", c, got, i+1)
		}
	}
	p.Set("unknown", 99)
	if p.Total() != 15 {
		t.Errorf("unknown component changed the total: %f", p.Total())
	}
}

func TestEvent_PriceModes(t *testing.T) {
	var e Event
	if e.PriceMode(PriceMenus) != PriceDerived {
		t.Fatalf("default mode should be derived")
	}
	e.SetPriceMode(PriceMenus, PriceManual)
	if !e.PriceMode(PriceMenus).IsManual() {
		t.Errorf("menus should be manual")
	}
	e.SetPriceMode(PriceMenus, PriceDerived)
	if e.PriceModes != nil {
		t.Errorf("derived modes are not stored, got %v", e.PriceModes)
	}
}

func TestQuantified_JSONIsFlat(t *testing.T) {
	q := Q(Material{ID: "m1", Name: "Assiette", Price: 0.5, Batch: 6}, 12)
	body, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if fields["quantity"] != float64(12) || fields["name"] != "Assiette" {
		t.Errorf("unexpected encoding %s", body)
	}

	var back Quantified[Material]
	if err := json.Unmarshal(body, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Quantity != 12 || back.Item.Batch != 6 || back.GetID() != "m1" {
		t.Errorf("decoded %+v", back)
	}
	if back.Total() != 6 {
		t.Errorf("Total() = %f, want 6", back.Total())
	}
}

func TestPlace_Kinds(t *testing.T) {
	a := NewAddress("p1", "Rue du Lac 1", 1000, "Lausanne", "VD")
	if a.HasCoordinates() {
		t.Errorf("address should not have coordinates")
	}
	l := NewLocation("p2", "Route 2", 1400, "Yverdon", "VD", 46.7, 6.6)
	if !l.HasCoordinates() {
		t.Errorf("location should have coordinates")
	}
	// zero coordinates keep the location kind
	z := NewLocation("p3", "Null Island", 0, "", "", 0, 0)
	if !z.HasCoordinates() {
		t.Errorf("kind, not coordinates, decides")
	}
	if got := l.AsAddress(); got.HasCoordinates() || got.Town != "Yverdon" {
		t.Errorf("AsAddress() = %+v", got)
	}
	if got := a.Line(); got != "Rue du Lac 1, 1000 Lausanne" {
		t.Errorf("Line() = %q", got)
	}
}

func TestConfig_Lookups(t *testing.T) {
	cfg := DefaultConfig("Traiteur")
	cfg.LabelsStatus[0].ID = "s1"
	cfg.Labels = []Label{{ID: "l1", Name: "VIP"}}
	cfg.Addresses = []Place{{ID: "a1", Kind: PlaceLocation, Town: "Lausanne"}}

	if l, ok := cfg.Label("l1"); !ok || l.Name != "VIP" {
		t.Errorf("Label(l1) = %+v, %v", l, ok)
	}
	if l, ok := cfg.StatusLabel(EventStatusOffer); !ok || l.ID != "s1" {
		t.Errorf("StatusLabel(Offer) = %+v, %v", l, ok)
	}
	if _, ok := cfg.Address("missing"); ok {
		t.Errorf("unknown address found")
	}
	if got := cfg.List("categoriesSorted"); len(got) != 3 {
		t.Errorf("List(categoriesSorted) = %v", got)
	}
	if !EventStatus("Confirmed").Valid() || EventStatus("Draft").Valid() {
		t.Errorf("status validation broken")
	}
}
