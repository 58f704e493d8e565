package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/traiteur/internal/models"
)

func testConfig() models.Config {
	cfg := models.DefaultConfig("T")
	for i := range cfg.LabelsStatus {
		cfg.LabelsStatus[i].ID = string(*cfg.LabelsStatus[i].Status)
	}
	cfg.Labels = []models.Label{{ID: "vip", Name: "VIP", Color: "#111"}, {ID: "wed", Name: "Mariage", Color: "#222"}}
	return cfg
}

func day(d int) time.Time { return time.Date(2026, 6, d, 12, 0, 0, 0, time.UTC) }

func events(cfg models.Config) []models.Event {
	return []models.Event{
		{ID: "e1", Date: day(3), Status: models.EventStatusOffer, Client: models.Client{ID: "c1", Name: "Dupont"}},
		{ID: "e2", Date: day(1), Status: models.EventStatusConfirmed, Client: models.Client{ID: "c2", Name: "Martin"}, Labels: []models.Label{cfg.Labels[0]}},
		{ID: "e3", Date: day(5), Status: models.EventStatusCancelled, Client: models.Client{ID: "c1", Name: "Dupont"}},
	}
}

func ids(es []models.Event) []string {
	out := []string{}
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestFilters_Keep(t *testing.T) {
	cfg := testConfig()
	f := DefaultFilters(cfg)
	assert.Len(t, f, 5)

	es := events(cfg)
	tests := []struct {
		name string
		off  string
		want []bool
	}{
		{"all on", "", []bool{true, true, true}},
		{"status off", "Cancelled", []bool{true, true, false}},
		{"label off", "VIP", []bool{true, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilters(cfg)
			if tt.off != "" {
				f[tt.off] = false
			}
			for i, e := range es {
				assert.Equal(t, tt.want[i], f.Keep(e), e.ID)
			}
		})
	}
}

func TestItems(t *testing.T) {
	cfg := testConfig()
	items := Items(events(cfg), cfg, DefaultFilters(cfg), day(1), day(5))
	require.Len(t, items, 2)
	assert.Equal(t, "e2", items[0].ID)
	assert.Equal(t, day(1).Add(time.Hour), items[0].End)
	assert.Equal(t, "#111", items[0].Accent, "first label colors the accent")
	assert.Equal(t, "#5cb85c", items[0].Color)
	assert.Equal(t, "Dupont", items[1].Title)
	assert.Equal(t, items[1].Color, items[1].Accent)
}

func TestSplit(t *testing.T) {
	cfg := testConfig()
	h := Split(events(cfg), day(2), "", DefaultFilters(cfg))
	assert.Equal(t, []string{"e3", "e1"}, ids(h.Expected))
	assert.Equal(t, []string{"e2"}, ids(h.Expired))

	h = Split(events(cfg), day(2), "c1", DefaultFilters(cfg))
	assert.Equal(t, []string{"e3", "e1"}, ids(h.Expected))
	assert.Empty(t, h.Expired)
}

func TestLabels(t *testing.T) {
	cfg := testConfig()
	e := events(cfg)[0]

	e, err := ApplyLabel(e, cfg, "vip")
	require.NoError(t, err)
	assert.True(t, e.HasLabel("vip"))
	_, err = ApplyLabel(e, cfg, "vip")
	assert.ErrorIs(t, err, ErrLabelAttached)

	e, err = ApplyLabel(e, cfg, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusConfirmed, e.Status)
	assert.Len(t, e.Labels, 1, "status labels are not attached")

	assert.Equal(t, []string{"wed"}, labelIDs(LabelOptions(e, cfg)))
	assert.Equal(t, []string{"Offer", "Cancelled"}, labelIDs(StatusOptions(e, cfg)))

	_, err = RemoveLabel(e, cfg, "Confirmed")
	assert.ErrorIs(t, err, ErrStatusLabel)
	e, err = RemoveLabel(e, cfg, "vip")
	require.NoError(t, err)
	assert.Empty(t, e.Labels)
	_, err = ApplyLabel(e, cfg, "nope")
	assert.ErrorIs(t, err, ErrLabelUnknown)
}

func labelIDs(ls []models.Label) []string {
	out := []string{}
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}
