// Package quote builds the offer sent to a client for an event and renders
// it to PDF.
package quote

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/traiteur/internal/i18n"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/reconcile"
)

// Drink categories priced apart on the estimate.
const (
	CategoryMinerals = "minérale"
	CategoryAlcohols = "alcool"
)

// KeyValue is one line of the information page.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MenuBlock lists the dishes of one ordered menu, grouped by category.
type MenuBlock struct {
	Title  string     `json:"title"`
	Groups [][]string `json:"groups"`
}

// Line is one priced line of the estimate. Zero values are not printed.
type Line struct {
	Title    string  `json:"title"`
	Total    float64 `json:"total,omitempty"`
	Quantity int     `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Subtitle string  `json:"subtitle,omitempty"`
}

// Section is a category of the estimate and its lines.
type Section struct {
	Line
	Items []Line `json:"items"`
}

// Quote is the whole offer.
type Quote struct {
	Company     string      `json:"company"`
	Title       string      `json:"title"`
	Information []KeyValue  `json:"information"`
	Menus       []MenuBlock `json:"menus"`
	Estimate    []Section   `json:"estimate"`
	Total       float64     `json:"total"`
	Notes       []string    `json:"notes"`
}

// TotalLabel renders the total as "CHF 1234.50".
func (q Quote) TotalLabel() string { return "CHF " + Amount(q.Total) }

// Amount renders a price with two decimals.
func Amount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func menuTitle(name string) string {
	return strings.ReplaceAll(name, models.NoName, i18n.T("quote.off_menu"))
}

func lineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// Build lays the event out as a quote.
func Build(e models.Event, cfg models.Config) Quote {
	q := Quote{
		Company: cfg.AppTitle,
		Title:   i18n.T("quote.title"),
		Information: []KeyValue{
			{i18n.T("quote.who"), e.Client.Name},
			{i18n.T("quote.where"), e.Address.Address},
			{"", strings.TrimSpace(fmt.Sprintf("%d %s", e.Address.Postcode, e.Address.Town))},
			{i18n.T("quote.when"), i18n.LongDate(e.Date)},
			{i18n.T("quote.guests"), strconv.Itoa(e.People)},
			{i18n.T("quote.delivery_time"), i18n.Clock(e.Date)},
		},
		Menus:    []MenuBlock{},
		Estimate: []Section{},
		Total:    decimal.NewFromFloat(e.Price.Total()).Round(2).InexactFloat64(),
	}
	for _, m := range e.Menus {
		q.Menus = append(q.Menus, MenuBlock{Title: menuTitle(m.Item.Name), Groups: dishGroups(m.Item.Plats, cfg.CategoriesSorted)})
	}
	q.Estimate = estimate(e, cfg)
	q.Notes = notes(e)
	return q
}

// dishGroups follows the configured category order; dishes outside it come
// last.
func dishGroups(dishes []models.Quantified[models.Plat], categories []string) [][]string {
	line := func(d models.Quantified[models.Plat]) string {
		if d.Quantity > 1 {
			return fmt.Sprintf("(x%d) %s", d.Quantity, d.Item.Name)
		}
		return d.Item.Name
	}
	groups := [][]string{}
	rest := dishes
	for _, c := range categories {
		var group []string
		for _, d := range rest {
			if d.Item.Category == c {
				group = append(group, line(d))
			}
		}
		rest = slices.DeleteFunc(slices.Clone(rest), func(d models.Quantified[models.Plat]) bool { return d.Item.Category == c })
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}
	if len(rest) > 0 {
		var group []string
		for _, d := range rest {
			group = append(group, line(d))
		}
		groups = append(groups, group)
	}
	return groups
}

func drinksTotal(drinks []models.Quantified[models.Drink], category string) float64 {
	var in []models.Quantified[models.Drink]
	for _, d := range drinks {
		if d.Item.Category == category {
			in = append(in, d)
		}
	}
	return reconcile.Sum(in)
}

func estimate(e models.Event, cfg models.Config) []Section {
	out := []Section{}

	menus := Section{Line: Line{Title: i18n.T("devis.menu"), Total: e.Price.Menus}}
	for _, m := range e.Menus {
		menus.Items = append(menus.Items, Line{
			Title:    menuTitle(m.Item.Name),
			Total:    lineTotal(m.Item.Price, m.Quantity),
			Quantity: m.Quantity,
			Price:    m.Item.Price,
		})
	}
	out = append(out, menus)

	if len(e.Materials) > 0 {
		s := Section{Line: Line{Title: i18n.T("devis.material"), Total: e.Price.Material}}
		for _, m := range e.Materials {
			s.Items = append(s.Items, Line{Title: m.Item.Name, Total: lineTotal(m.Item.Price, m.Quantity), Quantity: m.Quantity, Price: m.Item.Price})
		}
		out = append(out, s)
	}

	if minerals := drinksTotal(e.Drinks, CategoryMinerals); minerals > 0 {
		out = append(out, Section{Line: Line{Title: i18n.T("devis.minerals"), Total: minerals, Subtitle: i18n.T("devis.minerals_note")}})
	}

	if alcohols := drinksTotal(e.Drinks, CategoryAlcohols); alcohols > 0 {
		s := Section{Line: Line{Title: i18n.T("devis.alcohols"), Total: alcohols}}
		for _, d := range e.Drinks {
			if d.Item.Category == CategoryAlcohols {
				s.Items = append(s.Items, Line{Title: d.Item.Name, Total: lineTotal(d.Item.Price, d.Quantity), Quantity: d.Quantity, Price: d.Item.Price})
			}
		}
		out = append(out, s)
	}

	if e.Price.Transport > 0 {
		s := Section{Line: Line{Title: i18n.T("devis.delivery"), Total: e.Price.Transport}}
		if trips := reconcile.TransportFactor(e.Delivery, e.ReturnDelivery); trips > 0 {
			each := decimal.NewFromFloat(e.Price.Transport).Div(decimal.NewFromInt(int64(trips))).Round(2).InexactFloat64()
			if e.Delivery {
				s.Items = append(s.Items, Line{Title: i18n.T("devis.delivery_out"), Total: each})
			}
			if e.ReturnDelivery {
				s.Items = append(s.Items, Line{Title: i18n.T("devis.delivery_back"), Total: each})
			}
		}
		out = append(out, s)
	}

	if e.Price.Service > 0 {
		s := Section{Line: Line{Title: i18n.T("devis.service"), Total: e.Price.Service}}
		sv := e.Service
		if sv.CooksN > 0 {
			s.Items = append(s.Items, Line{
				Title:    i18n.Tf("devis.cooks", hours(sv.CooksDuration)),
				Total:    reconcile.ServicePrice(models.EventService{CooksN: sv.CooksN, CooksDuration: sv.CooksDuration}, cfg.WagesCook, 0),
				Quantity: sv.CooksN,
				Price:    cfg.WagesCook,
			})
		}
		if sv.ServersN > 0 {
			s.Items = append(s.Items, Line{
				Title:    i18n.Tf("devis.servers", hours(sv.ServersDuration)),
				Total:    reconcile.ServicePrice(models.EventService{ServersN: sv.ServersN, ServersDuration: sv.ServersDuration}, 0, cfg.WagesServer),
				Quantity: sv.ServersN,
				Price:    cfg.WagesServer,
			})
		}
		out = append(out, s)
	}
	return out
}

func hours(h float64) string { return strconv.FormatFloat(h, 'f', -1, 64) }

func notes(e models.Event) []string {
	n := []string{i18n.T("note.drinks")}
	if e.Price.Service > 0 {
		n = append(n, i18n.T("note.service"))
	}
	n = append(n, "", i18n.T("note.guests"), "", i18n.T("note.excluded"), "")
	if drinksTotal(e.Drinks, CategoryMinerals) == 0 {
		n = append(n, i18n.T("note.no_minerals"))
	}
	return append(n, i18n.T("note.room"), i18n.T("note.decoration"))
}
