package headcell

import (
	"fmt"
	"strconv"
	"time"

	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

func atLeast(v float64) *float64 { return &v }

func formatCurrency(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func countFormatter(format, none string) func([]any) string {
	return func(items []any) string {
		if len(items) == 0 {
			return none
		}
		return fmt.Sprintf(format, len(items))
	}
}

// Drinks describes the drinks grid.
func Drinks() []HeadCell {
	return []HeadCell{
		{Field: "name", Label: "Nom", Cols: 12, Input: &InputProps{Custom: []validation.Criterion{validation.UniqueName()}}},
		{Field: "category", Label: "Catégorie", Input: &InputProps{Type: Select}},
		{Field: "subcategory", Label: "Sous-catégorie", Input: &InputProps{Type: Select}, SkimmedBy: []string{"category"}},
		{Field: "price", Label: "Prix", Input: &InputProps{Type: Number, Min: atLeast(0)}, Currency: true},
	}
}

// Materials describes the materials grid.
func Materials() []HeadCell {
	return []HeadCell{
		{Field: "name", Label: "Nom", Cols: 12, Input: &InputProps{Custom: []validation.Criterion{validation.UniqueName()}}},
		{Field: "category", Label: "Catégorie", Input: &InputProps{Type: Select}},
		{Field: "subcategory", Label: "Sous-catégorie", Input: &InputProps{Type: Select}, SkimmedBy: []string{"category"}},
		{Field: "batch", Label: "Lot", Input: &InputProps{Type: Number, Min: atLeast(1)}},
		{Field: "price", Label: "Prix", Input: &InputProps{Type: Number, Min: atLeast(0)}, Currency: true},
	}
}

// Plats describes the dishes grid.
func Plats() []HeadCell {
	return []HeadCell{
		{Field: "name", Label: "Nom", Cols: 12, Input: &InputProps{Required: true}},
		{Field: "category", Label: "Catégorie", Input: &InputProps{Type: Select}, GroupsConfig: "categoriesSorted"},
		{Field: "categorization", Label: "Type", Input: &InputProps{Type: Hierarchization}, SkimmedBy: []string{"category"}},
		{Field: "season", Label: "Saison", Input: &InputProps{Type: Select}},
		{
			Field: "materials", Label: "Matériel", Input: &InputProps{},
			ArrayFormatter: countFormatter("%d matériels", "Aucun"),
			SelectLabel:    "Ajoutez un matériel...",
			DialogTitle:    "Filtrer les plats par: Matériel",
		},
		{Field: "price", Label: "Prix", Input: &InputProps{}, Currency: true},
	}
}

// Menus describes the menus grid.
func Menus() []HeadCell {
	return []HeadCell{
		{Field: "name", Label: "Nom", Cols: 12, Input: &InputProps{Custom: []validation.Criterion{validation.UniqueName()}}},
		{
			Field: "plats", Label: "Plats", Input: &InputProps{},
			ArrayFormatter: countFormatter("%d plat(s)", "Aucun"),
			SelectLabel:    "Ajoutez un plat...",
			DialogTitle:    "Filtrer les menus par: Plat",
			ReportPrice:    true,
			GroupsConfig:   "categoriesSorted",
		},
		{Field: "price", Label: "Prix", Input: &InputProps{Type: Number, Min: atLeast(0)}, Currency: true},
	}
}

// Clients describes the clients grid.
func Clients() []HeadCell {
	return []HeadCell{
		{Field: "name", Label: "Nom", Cols: 12, Input: &InputProps{Custom: []validation.Criterion{validation.UniqueName()}}},
		{Field: "email", Label: "Email", Input: &InputProps{}},
		{Field: "phone", Label: "Téléphone", Input: &InputProps{}},
	}
}

// Events describes the events grid.
func Events() []HeadCell {
	return []HeadCell{
		{Field: "status", Label: "", IsLabelDot: true},
		{Field: "date", Label: "Date", Input: &InputProps{Type: Date}, CompareUsingRaw: true, ComputeValue: eventDate},
		{Field: "client", Label: "Client", Input: &InputProps{}, ComputeValue: func(r record.Row) string { return r.String("client.name") }},
		{Field: "people", Label: "Personnes", Input: &InputProps{}},
		{Field: "address", Label: "Lieu", Input: &InputProps{}, ComputeValue: func(r record.Row) string { return r.String("address.town") }},
		{Field: "price", Label: "Prix", Input: &InputProps{}, Currency: true, ComputeValue: eventTotal},
	}
}

// eventDate renders the date the Swiss way, dd.mm.yyyy.
func eventDate(r record.Row) string {
	raw := r.String("date")
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("02.01.2006")
}

func eventTotal(r record.Row) string {
	var total float64
	if m, ok := r.Get("price").(map[string]any); ok {
		for _, v := range m {
			if n, ok := validation.ParseNumber(v); ok {
				total += n
			}
		}
	}
	return formatCurrency(total)
}

// For returns the descriptors of a collection.
func For(collection string) ([]HeadCell, bool) {
	switch collection {
	case models.CollectionDrinks:
		return Drinks(), true
	case models.CollectionMaterials:
		return Materials(), true
	case models.CollectionDishes:
		return Plats(), true
	case models.CollectionMenus:
		return Menus(), true
	case models.CollectionClients:
		return Clients(), true
	case models.CollectionEvents:
		return Events(), true
	}
	return nil, false
}
