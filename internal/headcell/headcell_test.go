package headcell

import (
	"reflect"
	"testing"

	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

func materialsRows() []record.Row {
	return []record.Row{
		{"id": "1", "name": "Flûte", "category": "verre", "subcategory": "flute"},
		{"id": "2", "name": "Tumbler", "category": "verre", "subcategory": "tumbler"},
		{"id": "3", "name": "Assiette", "category": "assiette", "subcategory": "plate"},
		{"id": "4", "name": "Flûte 2", "category": "verre", "subcategory": "flute"},
	}
}

func TestBuildHeadersOptions_Cascading(t *testing.T) {
	headers := BuildHeadersOptions(Materials(), materialsRows(), record.Row{"category": "verre"})

	sub, _ := Find(headers, "subcategory")
	if want := []string{"flute", "tumbler"}; !reflect.DeepEqual(sub.Options, want) {
		t.Errorf("subcategory options = %v, want %v", sub.Options, want)
	}
	cat, _ := Find(headers, "category")
	if want := []string{"verre", "assiette"}; !reflect.DeepEqual(cat.Options, want) {
		t.Errorf("category options = %v, want %v", cat.Options, want)
	}
}

func TestBuildHeadersOptions_EmptyDependencyKeepsAll(t *testing.T) {
	headers := BuildHeadersOptions(Materials(), materialsRows(), record.Row{"category": ""})
	sub, _ := Find(headers, "subcategory")
	if len(sub.Options) != 3 {
		t.Errorf("subcategory options = %v, want all 3", sub.Options)
	}
	name, _ := Find(headers, "name")
	if name.Options != nil {
		t.Errorf("text columns get no options")
	}
}

func TestBuildHeadersOptions_HierarchyPaths(t *testing.T) {
	rows := []record.Row{
		{"category": "Plat", "categorization": []any{"Viande", "Boeuf"}},
		{"category": "Plat", "categorization": []any{"Viande", "Boeuf"}},
		{"category": "Plat", "categorization": []any{"Poisson"}},
		{"category": "Dessert", "categorization": []any{"Gâteau"}},
	}
	headers := BuildHeadersOptions(Plats(), rows, record.Row{"category": "Plat"})
	h, _ := Find(headers, "categorization")
	want := [][]string{{"Viande", "Boeuf"}, {"Poisson"}}
	if !reflect.DeepEqual(h.Paths, want) {
		t.Errorf("paths = %v, want %v", h.Paths, want)
	}
}

func TestBuildHierarchyOptions(t *testing.T) {
	paths := [][]string{{"A", "A1"}, {"A", "A1", "A11"}, {"A", "A2"}, {"B"}, {"B", "B1"}}
	tests := []struct {
		name    string
		current []string
		want    []string
	}{
		{"root", nil, []string{"A", "B"}},
		{"under A", []string{"A"}, []string{"A1", "A2"}},
		{"under A/A1", []string{"A", "A1"}, []string{"A11"}},
		{"leaf", []string{"A", "A1", "A11"}, nil},
		{"unknown prefix", []string{"C"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildHierarchyOptions(paths, tt.current)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildHierarchyOptions(%v) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestCriterias(t *testing.T) {
	crit := Criterias(Materials())
	if len(crit["name"]) != 1 {
		t.Errorf("name criteria = %d, want unique name only", len(crit["name"]))
	}
	// number + min
	if len(crit["batch"]) != 2 {
		t.Errorf("batch criteria = %d, want 2", len(crit["batch"]))
	}
	for _, tt := range []struct {
		value any
		ok    bool
	}{
		{-1, false},
		{0, false},
		{"0", false},
		{1, true},
		{6, true},
	} {
		if r := crit["batch"][1]("batch", tt.value, validation.Params{}); r.Error == tt.ok {
			t.Errorf("batch %v: error = %v, want %v", tt.value, r.Error, !tt.ok)
		}
	}
	if r := crit["price"][1]("price", 0, validation.Params{}); r.Error {
		t.Errorf("free price rejected: %s", r.Info)
	}
	if _, ok := crit["category"]; ok {
		t.Errorf("select without constraints should have no criteria")
	}
}

func TestDisplay(t *testing.T) {
	ev := record.Row{
		"date":    "2024-06-15T18:30:00Z",
		"client":  map[string]any{"name": "Dupont"},
		"address": map[string]any{"town": "Lausanne"},
		"price":   map[string]any{"menus": 100.0, "transport": 20.5},
	}
	headers := Events()
	want := map[string]string{"date": "15.06.2024", "client": "Dupont", "address": "Lausanne", "price": "120.50"}
	for _, h := range headers {
		if w, ok := want[h.Field]; ok {
			if got := h.Display(ev); got != w {
				t.Errorf("%s display = %q, want %q", h.Field, got, w)
			}
		}
	}

	menus, _ := For("menus")
	plats, _ := Find(menus, "plats")
	if got := plats.Display(record.Row{"plats": []any{map[string]any{"id": "p"}}}); got != "1 plat(s)" {
		t.Errorf("plats display = %q", got)
	}
	if got := plats.Display(record.Row{"plats": []any{}}); got != "Aucun" {
		t.Errorf("empty plats display = %q", got)
	}
	price, _ := Find(menus, "price")
	if got := price.Display(record.Row{"price": 12.0}); got != "12.00" {
		t.Errorf("price display = %q", got)
	}
	if _, ok := For("config"); ok {
		t.Errorf("config has no grid")
	}
}
