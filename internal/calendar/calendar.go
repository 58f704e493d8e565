// Package calendar lays events out on a schedule, splits their history and
// manages their labels.
package calendar

import (
	"slices"
	"time"

	"github.com/diewo77/traiteur/internal/models"
)

// ItemDuration is the length given to every event on the schedule.
const ItemDuration = time.Hour

// Filters switch label or status names on and off. Names missing from the
// map are kept.
type Filters map[string]bool

// DefaultFilters keeps every status and every configured label.
func DefaultFilters(cfg models.Config) Filters {
	f := Filters{}
	for _, s := range models.Statuses {
		f[string(s)] = true
	}
	for _, l := range cfg.Labels {
		f[l.Name] = true
	}
	return f
}

// Keep reports whether e survives f: an event is hidden when its status or
// any of its labels is switched off.
func (f Filters) Keep(e models.Event) bool {
	for name, keep := range f {
		if keep {
			continue
		}
		if string(e.Status) == name {
			return false
		}
		if slices.ContainsFunc(e.Labels, func(l models.Label) bool { return l.Name == name }) {
			return false
		}
	}
	return true
}

// Item is one event on the schedule.
type Item struct {
	ID     string    `json:"id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	People int       `json:"people"`
	Town   string    `json:"town"`
	Color  string    `json:"color"`
	Accent string    `json:"accent"`
	Status string    `json:"status"`
}

// Items returns the events starting in [from, to) that pass filters,
// sorted by start. A zero bound is open.
func Items(events []models.Event, cfg models.Config, filters Filters, from, to time.Time) []Item {
	out := []Item{}
	for _, e := range events {
		if !filters.Keep(e) {
			continue
		}
		if !from.IsZero() && e.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !e.Date.Before(to) {
			continue
		}
		item := Item{
			ID:     e.ID,
			Title:  e.Client.Name,
			Start:  e.Date,
			End:    e.Date.Add(ItemDuration),
			People: e.People,
			Town:   e.Address.Town,
			Status: string(e.Status),
		}
		if l, ok := cfg.StatusLabel(e.Status); ok {
			item.Color = l.Color
			item.Accent = l.Color
		}
		if len(e.Labels) > 0 {
			item.Accent = e.Labels[0].Color
		}
		out = append(out, item)
	}
	slices.SortStableFunc(out, func(a, b Item) int { return a.Start.Compare(b.Start) })
	return out
}

// History splits events around a point in time, most recent first.
type History struct {
	Expected []models.Event `json:"expected"`
	Expired  []models.Event `json:"expired"`
}

// Split sorts events by date descending and separates those after now from
// the others. A non-empty clientID keeps that client's events only.
func Split(events []models.Event, now time.Time, clientID string, filters Filters) History {
	h := History{Expected: []models.Event{}, Expired: []models.Event{}}
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.Event) int { return b.Date.Compare(a.Date) })
	for _, e := range sorted {
		if clientID != "" && e.Client.ID != clientID {
			continue
		}
		if !filters.Keep(e) {
			continue
		}
		if e.Date.After(now) {
			h.Expected = append(h.Expected, e)
		} else {
			h.Expired = append(h.Expired, e)
		}
	}
	return h
}
