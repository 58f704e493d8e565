package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/geo"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/subeditor"
)

type fakeStore struct {
	mu      sync.Mutex
	data    data.Data
	written []models.Event
	err     error
}

func (f *fakeStore) Snapshot() data.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Clone()
}

func (f *fakeStore) Update(_ context.Context, p data.Partial) (data.UpdatedKeys, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	keys := data.UpdatedKeys{}
	for _, e := range p.Events {
		if e.ID == "" {
			e.ID = "new-event"
		}
		f.written = append(f.written, e)
		keys[models.CollectionEvents] = append(keys[models.CollectionEvents], e.ID)
	}
	return keys, nil
}

type fakeDistances struct {
	route geo.Route
	err   error
	calls int
}

func (f *fakeDistances) Distance(context.Context, models.Place, models.Place) (geo.Route, error) {
	f.calls++
	return f.route, f.err
}

func fixture() data.Data {
	plate := models.Material{ID: "plate", Name: "Assiette", Category: "Vaisselle", Price: 0.5, Batch: 6}
	glass := models.Material{ID: "glass", Name: "Verre", Category: "Verrerie", Price: 0.3, Batch: 12}
	dish := models.Plat{ID: "d1", Name: "Filet", Category: "Plat", Price: 20, Materials: []models.Quantified[models.Material]{models.Q(plate, 1)}}
	menu := models.Menu{ID: "m1", Name: "Gala", Price: 20, Plats: []models.Quantified[models.Plat]{models.Q(dish, 1)}}

	cfg := models.DefaultConfig("Traiteur")
	cfg.DefaultStatus = models.EventStatusOffer
	cfg.Addresses = []models.Place{{ID: "dep", Kind: models.PlaceLocation, PlaceID: "abc", Town: "Lausanne"}}

	existing := models.Event{
		ID:      "e1",
		Date:    time.Date(2026, time.June, 6, 18, 0, 0, 0, time.UTC),
		Status:  models.EventStatusConfirmed,
		People:  10,
		Client:  models.Client{ID: "c1", Name: "Dupont"},
		Address: models.NewAddress("", "Rue du Lac 1", 1000, "Lausanne", "VD"),
		Menus:   []models.Quantified[models.Menu]{models.Q(menu, 10)},

		Delivery: true,
	}
	return data.Data{
		Clients:   []models.Client{{ID: "c1", Name: "Dupont"}},
		Materials: []models.Material{plate, glass},
		Drinks:    []models.Drink{{ID: "wine", Name: "Chasselas", Category: "alcool", Price: 18}},
		Dishes:    []models.Plat{dish},
		Menus:     []models.Menu{menu},
		Events:    []models.Event{existing},
		Config:    cfg,
		Ready:     data.Ready{Clients: true, Materials: true, Drinks: true, Config: true, Dishes: true, Menus: true, Events: true},
	}
}

func newManager(t *testing.T, store Store, distances geo.DistanceProvider) (*Manager, *notify.Recorder) {
	t.Helper()
	rec := notify.NewRecorder(nil)
	return NewManager(store, distances, rec, time.Minute, zaptest.NewLogger(t)), rec
}

func TestOpen(t *testing.T) {
	store := &fakeStore{data: fixture()}
	m, _ := newManager(t, store, nil)

	v, err := m.Open(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Empty(t, v.Event.ID)
	assert.Equal(t, models.EventStatusOffer, v.Event.Status)
	assert.True(t, v.Event.Delivery)
	assert.False(t, v.Linked)

	v, err = m.Open(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "Dupont", v.Event.Client.Name)
	assert.Equal(t, 200.0, v.Event.Price.Menus)
	assert.Equal(t, 2, m.Len())

	_, err = m.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOpen_ConfigMissing(t *testing.T) {
	d := fixture()
	d.Critical = true
	m, _ := newManager(t, &fakeStore{data: d}, nil)

	_, err := m.Open(context.Background(), "")
	assert.ErrorIs(t, err, data.ErrConfigMissing)
}

func TestApply_ItemsAndPrices(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	v, err := m.Open(context.Background(), "")
	require.NoError(t, err)
	sid := v.ID
	ctx := context.Background()

	v, err = m.Apply(ctx, sid, Action{Type: ActionAdd, Collection: models.CollectionMenus, ID: "m1", Quantity: 3})
	require.NoError(t, err)
	v, err = m.Apply(ctx, sid, Action{Type: ActionAdd, Collection: models.CollectionMenus, ID: "m1", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, v.Event.Menus, 1)
	assert.Equal(t, 5, v.Event.Menus[0].Quantity)
	assert.Equal(t, 100.0, v.Event.Price.Menus)

	v, err = m.Apply(ctx, sid, Action{Type: ActionAdd, Collection: models.CollectionMaterials, ID: "glass", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, v.Event.Materials[0].Quantity)
	assert.Equal(t, 3.6, v.Event.Price.Material)

	v, err = m.Apply(ctx, sid, Action{Type: ActionStepUp, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, 24, v.Event.Materials[0].Quantity)

	v, err = m.Apply(ctx, sid, Action{Type: ActionAdd, Collection: models.CollectionDrinks, ID: "wine", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 36.0, v.Event.Price.Drink)

	v, err = m.Apply(ctx, sid, Action{Type: ActionQuantity, Collection: models.CollectionDrinks, Index: 0, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Event.Drinks[0].Quantity)

	v, err = m.Apply(ctx, sid, Action{Type: ActionRemove, Collection: models.CollectionDrinks, Index: 0})
	require.NoError(t, err)
	assert.Empty(t, v.Event.Drinks)
	assert.Zero(t, v.Event.Price.Drink)

	_, err = m.Apply(ctx, sid, Action{Type: ActionAdd, Collection: models.CollectionMenus, ID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownItem)
	_, err = m.Apply(ctx, sid, Action{Type: ActionRemove, Collection: "boats"})
	assert.ErrorIs(t, err, ErrUnknownCollection)
	_, err = m.Apply(ctx, sid, Action{Type: "fly"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestApply_Pick(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	ctx := context.Background()
	v, err := m.Open(ctx, "")
	require.NoError(t, err)
	sid := v.ID

	v, err = m.Apply(ctx, sid, Action{Type: ActionPick, Collection: models.CollectionMaterials, IDs: []string{"glass", "ghost", "plate"}, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, v.Event.Materials, 2)
	assert.Equal(t, "plate", v.Event.Materials[0].GetID(), "picked in catalog order")
	assert.Equal(t, 6, v.Event.Materials[0].Quantity)
	assert.Equal(t, 12, v.Event.Materials[1].Quantity)

	v, err = m.Apply(ctx, sid, Action{Type: ActionPick, Collection: models.CollectionMenus, ID: "m1", Quantity: 4})
	require.NoError(t, err)
	require.Len(t, v.Event.Menus, 1)
	assert.Equal(t, 80.0, v.Event.Price.Menus)

	tests := []struct {
		name string
		a    Action
		want error
	}{
		{"unknown chosen id", Action{Type: ActionPick, Collection: models.CollectionDrinks, ID: "ghost"}, ErrUnknownItem},
		{"empty selection", Action{Type: ActionPick, Collection: models.CollectionDrinks, IDs: []string{"ghost"}}, ErrUnknownItem},
		{"clients cannot be picked", Action{Type: ActionPick, Collection: models.CollectionClients, ID: "c1"}, ErrUnknownCollection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Apply(ctx, sid, tt.a)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApply_Category(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	ctx := context.Background()
	v, err := m.Open(ctx, "")
	require.NoError(t, err)

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionCategory, Collection: models.CollectionMaterials, Category: "Verrerie"})
	require.NoError(t, err)
	require.Len(t, v.Candidates, 1)
	assert.Equal(t, "glass", v.Candidates[0].ID())

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionCategory, Collection: models.CollectionDrinks, Category: "alcool"})
	require.NoError(t, err)
	require.Len(t, v.Candidates, 1)
	assert.Equal(t, "wine", v.Candidates[0].ID())

	_, err = m.Apply(ctx, v.ID, Action{Type: ActionCategory, Collection: models.CollectionMenus, Category: "x"})
	assert.ErrorIs(t, err, subeditor.ErrNoCategories)
}

func TestApply_LinkFollowsMenus(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	v, err := m.Open(context.Background(), "e1")
	require.NoError(t, err)
	ctx := context.Background()

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionLink, On: true})
	require.NoError(t, err)
	assert.True(t, v.Linked)
	require.Len(t, v.Event.Materials, 1)
	assert.Equal(t, 12, v.Event.Materials[0].Quantity)

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionQuantity, Collection: models.CollectionMenus, Index: 0, Quantity: 13})
	require.NoError(t, err)
	assert.Equal(t, 18, v.Event.Materials[0].Quantity)

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionLink, On: false})
	require.NoError(t, err)
	assert.False(t, v.Linked)
	assert.Empty(t, v.Event.Materials)
}

func TestApply_PriceOverride(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	v, err := m.Open(context.Background(), "e1")
	require.NoError(t, err)
	ctx := context.Background()

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionOverride, Component: models.PriceMenus, Price: 150})
	require.NoError(t, err)
	assert.Equal(t, 150.0, v.Event.Price.Menus)
	assert.True(t, v.Event.PriceMode(models.PriceMenus).IsManual())

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionDerive, Component: models.PriceMenus})
	require.NoError(t, err)
	assert.Equal(t, 200.0, v.Event.Price.Menus)

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionOverride, Component: models.PriceMenus, Price: 150})
	require.NoError(t, err)
	v, err = m.Apply(ctx, v.ID, Action{Type: ActionAdd, Collection: models.CollectionMenus, ID: "m1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 220.0, v.Event.Price.Menus, "a structural change returns to derived")

	_, err = m.Apply(ctx, v.ID, Action{Type: ActionOverride, Component: "tips", Price: 1})
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestApply_Transport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantErr  bool
		distance float64
	}{
		{"found", nil, false, 42.5},
		{"disabled keeps typed distance", geo.ErrDisabled, false, 10},
		{"upstream failure", errors.New("boom"), true, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := &fakeDistances{route: geo.Route{DistanceKm: 42.5}, err: tt.err}
			m, rec := newManager(t, &fakeStore{data: fixture()}, dist)
			v, err := m.Open(context.Background(), "e1")
			require.NoError(t, err)

			v, err = m.Apply(context.Background(), v.ID, Action{Type: ActionSet, Values: map[string]any{
				FieldDeparture: "dep",
				FieldDistance:  "10",
			}})
			require.NoError(t, err)
			assert.Equal(t, "dep", v.Event.Departure.ID)
			assert.Equal(t, 15.0, v.Event.Price.Transport)

			v, err = m.Apply(context.Background(), v.ID, Action{Type: ActionTransport})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, dist.calls)
			assert.Equal(t, tt.distance, v.Event.Distance)
			if tt.err != nil {
				last, ok := rec.Last()
				require.True(t, ok)
				assert.Equal(t, notify.Warning, last.Severity)
			}
		})
	}
}

func TestSave(t *testing.T) {
	store := &fakeStore{data: fixture()}
	m, rec := newManager(t, store, nil)
	ctx := context.Background()

	v, err := m.Open(ctx, "")
	require.NoError(t, err)

	v, err = m.Save(ctx, v.ID)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, v.Violations, FieldClient)
	assert.Contains(t, v.Violations, FieldPeople)
	assert.Empty(t, store.written)

	v, err = m.Apply(ctx, v.ID, Action{Type: ActionSet, Values: map[string]any{
		FieldClient: "c1",
		FieldPeople: "25",
		FieldDate:   "2026-07-01T19:30",
		"unknown":   "ignored",
	}})
	require.NoError(t, err)
	assert.NotContains(t, v.Details, "unknown")

	v, err = m.Save(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-event", v.Event.ID)
	require.Len(t, store.written, 1)
	assert.Equal(t, 25, store.written[0].People)
	assert.Equal(t, "Dupont", store.written[0].Client.Name)
	assert.Equal(t, 19, store.written[0].Date.Hour())

	last, _ := rec.Last()
	assert.Equal(t, "Event saved.", last.Message)

	_, err = m.Save(ctx, v.ID)
	require.NoError(t, err)
	last, _ = rec.Last()
	assert.Equal(t, "Event updated.", last.Message)
}

func TestSave_StoreFailure(t *testing.T) {
	store := &fakeStore{data: fixture(), err: errors.New("db down")}
	m, _ := newManager(t, store, nil)
	v, err := m.Open(context.Background(), "e1")
	require.NoError(t, err)

	_, err = m.Save(context.Background(), v.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestClose(t *testing.T) {
	m, _ := newManager(t, &fakeStore{data: fixture()}, nil)
	v, err := m.Open(context.Background(), "")
	require.NoError(t, err)

	m.Close(v.ID)
	_, err = m.Get(v.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
