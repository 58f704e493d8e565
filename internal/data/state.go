package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/models"
)

var (
	ErrConfigMissing = errors.New("data: config document missing")
	ErrNotStarted    = errors.New("data: state not started")
)

// Store is the part of docstore.Store the state needs.
type Store interface {
	Subscribe(ctx context.Context, collection string) (<-chan docstore.Snapshot, func(), error)
	Update(ctx context.Context, patch docstore.Patch) error
	Reset(ctx context.Context, collection string) error
	Refresh(ctx context.Context, collections ...string) error
}

// State is safe for concurrent use.
type State struct {
	store Store
	log   *zap.Logger

	mu       sync.RWMutex
	raw      map[string]map[string]json.RawMessage
	received map[string]bool
	data     Data

	version uint64

	obsMu     sync.Mutex
	observers map[int]func(Data)
	nextObs   int

	// notifyMu orders deliveries; notified is the last delivered version.
	notifyMu sync.Mutex
	notified uint64

	ready     chan struct{}
	readyOnce sync.Once

	cancels []func()
	wg      sync.WaitGroup
}

// New returns a state reading from store. Call Start to subscribe.
func New(store Store, log *zap.Logger) *State {
	return &State{
		store:     store,
		log:       log.Named("data"),
		raw:       map[string]map[string]json.RawMessage{},
		received:  map[string]bool{},
		observers: map[int]func(Data){},
		ready:     make(chan struct{}),
	}
}

// Start subscribes to every collection. Snapshots are applied until ctx
// ends or Stop is called.
func (s *State) Start(ctx context.Context) error {
	for _, c := range models.Collections {
		ch, cancel, err := s.store.Subscribe(ctx, c)
		if err != nil {
			s.Stop()
			return fmt.Errorf("subscribe %s: %w", c, err)
		}
		s.cancels = append(s.cancels, cancel)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for snap := range ch {
				s.apply(snap)
			}
		}()
	}
	s.log.Info("subscribed", zap.Int("collections", len(models.Collections)))
	return nil
}

// Stop cancels every subscription and waits for the pending snapshots.
func (s *State) Stop() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.wg.Wait()
}

func (s *State) apply(snap docstore.Snapshot) {
	s.mu.Lock()
	s.raw[snap.Collection] = snap.Docs
	s.received[snap.Collection] = true
	s.version++
	s.data = s.compute()
	s.data.Version = s.version
	d := s.data.Clone()
	s.mu.Unlock()

	if d.Critical {
		s.log.Error(d.Message)
	}
	s.log.Debug("snapshot applied", zap.String("collection", snap.Collection), zap.Int("docs", len(snap.Docs)))
	if d.Ready.All() {
		s.readyOnce.Do(func() {
			s.log.Info("data ready")
			close(s.ready)
		})
	}
	s.notify(d)
}

// notify delivers d unless a newer version already went out. Snapshots of
// different collections are applied concurrently and may reach this point
// out of order.
func (s *State) notify(d Data) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if d.Version <= s.notified {
		s.log.Debug("stale data dropped", zap.Uint64("version", d.Version), zap.Uint64("delivered", s.notified))
		return
	}
	s.notified = d.Version

	s.obsMu.Lock()
	observers := make([]func(Data), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.obsMu.Unlock()
	for _, fn := range observers {
		fn(d)
	}
}

// compute rebuilds every view from the raw collections received so far.
func (s *State) compute() Data {
	d := Data{
		Clients:   []models.Client{},
		Materials: []models.Material{},
		Drinks:    []models.Drink{},
		Dishes:    []models.Plat{},
		Menus:     []models.Menu{},
		Events:    []models.Event{},
	}
	got := s.received

	if got[models.CollectionClients] {
		d.Clients = DecompressClients(s.raw[models.CollectionClients])
		d.Ready.Clients = true
	}
	if got[models.CollectionMaterials] {
		d.Materials = DecompressMaterials(s.raw[models.CollectionMaterials])
		d.Ready.Materials = true
	}
	if got[models.CollectionDrinks] {
		d.Drinks = DecompressDrinks(s.raw[models.CollectionDrinks])
		d.Ready.Drinks = true
	}
	if got[models.CollectionConfig] {
		cfg, err := decodeConfig(s.raw[models.CollectionConfig])
		if err != nil {
			d.Critical = true
			d.Message = CriticalMessage
		} else {
			d.Config = cfg
			d.Ready.Config = true
		}
	}
	if d.Ready.Materials && got[models.CollectionDishes] {
		materials := index(d.Materials)
		for _, id := range sortedKeys(s.raw[models.CollectionDishes]) {
			var raw models.RawPlat
			if err := json.Unmarshal(s.raw[models.CollectionDishes][id], &raw); err != nil {
				continue
			}
			d.Dishes = append(d.Dishes, DecompressPlat(id, raw, materials))
		}
		d.Ready.Dishes = true
	}
	if d.Ready.Dishes && got[models.CollectionMenus] {
		dishes := index(d.Dishes)
		for _, id := range sortedKeys(s.raw[models.CollectionMenus]) {
			var raw models.RawMenu
			if err := json.Unmarshal(s.raw[models.CollectionMenus][id], &raw); err != nil {
				continue
			}
			d.Menus = append(d.Menus, DecompressMenu(id, raw, dishes))
		}
		d.Ready.Menus = true
	}
	if d.Ready.Clients && d.Ready.Dishes && d.Ready.Drinks && d.Ready.Config && got[models.CollectionEvents] {
		lk := NewLookups(d.Clients, d.Materials, d.Dishes, d.Drinks, d.Config)
		for _, id := range sortedKeys(s.raw[models.CollectionEvents]) {
			var raw models.RawEvent
			if err := json.Unmarshal(s.raw[models.CollectionEvents][id], &raw); err != nil {
				continue
			}
			if e, ok := DecompressEvent(id, raw, lk); ok {
				d.Events = append(d.Events, e)
			}
		}
		d.Ready.Events = true
	}
	return d
}

func decodeConfig(docs map[string]json.RawMessage) (models.Config, error) {
	body, ok := docs[docstore.ConfigKey]
	if !ok {
		return models.Config{}, ErrConfigMissing
	}
	var raw models.RawConfig
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return DecompressConfig(raw), nil
}

// Snapshot returns a copy of the current data.
func (s *State) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Config returns the settings, or ErrConfigMissing while the store holds
// none.
func (s *State) Config() (models.Config, error) {
	d := s.Snapshot()
	if !d.Ready.Config {
		return models.Config{}, ErrConfigMissing
	}
	return d.Config, nil
}

// Wait blocks until every view is computed.
func (s *State) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange calls fn with the new data after applied snapshots, in version
// order; a version overtaken by a newer one is skipped. The Data passed to
// fn is shared between observers and must not be modified. Observers run
// one at a time and must not block.
func (s *State) OnChange(fn func(Data)) (cancel func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}
