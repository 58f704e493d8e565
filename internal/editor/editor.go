// Package editor keeps server-side edit sessions of events. A session owns
// the detail form, the menu, material and drink sub-editors and the
// material linkage of one event until it is saved or expires.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/cache"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/geo"
	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/validation"
)

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 30 * time.Minute

var (
	ErrSessionNotFound   = errors.New("editor: session not found")
	ErrEventNotFound     = errors.New("editor: event not found")
	ErrUnknownAction     = errors.New("editor: unknown action")
	ErrUnknownCollection = errors.New("editor: unknown collection")
	ErrUnknownItem       = errors.New("editor: unknown item")
	ErrUnknownComponent  = errors.New("editor: unknown price component")
	ErrInvalid           = errors.New("editor: inputs validation failed")
)

// Action names.
const (
	ActionSet       = "set"
	ActionAdd       = "add"
	ActionQuantity  = "quantity"
	ActionRemove    = "remove"
	ActionStepUp    = "stepUp"
	ActionStepDown  = "stepDown"
	ActionLink      = "link"
	ActionOverride  = "override"
	ActionDerive    = "derive"
	ActionTransport = "transport"
	ActionPick      = "pick"
	ActionCategory  = "category"
)

// Action is one edit. Which fields matter depends on Type.
type Action struct {
	Type       string         `json:"type"`
	Collection string         `json:"collection,omitempty"`
	ID         string         `json:"id,omitempty"`
	IDs        []string       `json:"ids,omitempty"`
	Category   string         `json:"category,omitempty"`
	Index      int            `json:"index,omitempty"`
	Quantity   int            `json:"quantity,omitempty"`
	On         bool           `json:"on,omitempty"`
	Component  string         `json:"component,omitempty"`
	Price      float64        `json:"price,omitempty"`
	Values     map[string]any `json:"values,omitempty"`
}

// Store is the part of the data layer sessions read from and save to.
type Store interface {
	Snapshot() data.Data
	Update(ctx context.Context, p data.Partial) (data.UpdatedKeys, error)
}

// Manager hands out sessions by id.
type Manager struct {
	store     Store
	distances geo.DistanceProvider
	notifier  notify.Notifier
	sessions  *cache.Cache[string, *Session]
	log       *zap.Logger
	now       func() time.Time
}

// NewManager returns a manager whose sessions expire after ttl of
// inactivity. distances and n may be nil.
func NewManager(store Store, distances geo.DistanceProvider, n notify.Notifier, ttl time.Duration, log *zap.Logger) *Manager {
	if distances == nil {
		distances = geo.Disabled{}
	}
	if n == nil {
		n = notify.Discard{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:     store,
		distances: distances,
		notifier:  n,
		sessions:  cache.New[string, *Session](ttl),
		log:       log.Named("editor"),
		now:       time.Now,
	}
}

// Run drops expired sessions until ctx ends.
func (m *Manager) Run(ctx context.Context) {
	m.sessions.RunSweeper(ctx, m.sessions.TTL()/2)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int { return m.sessions.Len() }

func newEvent(cfg models.Config, now time.Time) models.Event {
	status := cfg.DefaultStatus
	if !status.Valid() {
		status = models.EventStatusOffer
	}
	return models.Event{
		Date:     now.Truncate(time.Minute),
		Status:   status,
		Labels:   []models.Label{},
		Address:  models.NewAddress("", "", 0, "", ""),
		Delivery: true,
	}
}

// Open starts a session on the event id, or on a new event when id is
// empty.
func (m *Manager) Open(ctx context.Context, eventID string) (View, error) {
	d := m.store.Snapshot()
	if d.Critical || !d.Ready.Config {
		return View{}, data.ErrConfigMissing
	}
	e := newEvent(d.Config, m.now())
	if eventID != "" {
		var ok bool
		if e, ok = d.Event(eventID); !ok {
			return View{}, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
	}
	s := newSession(uuid.NewString(), e, d)
	m.sessions.Set(s.id, s)
	m.log.Debug("session opened", zap.String("session", s.id), zap.String("event", eventID))
	return s.view(), nil
}

func (m *Manager) session(id string) (*Session, error) {
	s, ok := m.sessions.Touch(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Get returns the current view of a session.
func (m *Manager) Get(id string) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Close drops a session without saving.
func (m *Manager) Close(id string) { m.sessions.Delete(id) }

// Apply runs one action and reprices the event.
func (m *Manager) Apply(ctx context.Context, id string, a Action) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	d := m.store.Snapshot()
	lk := lookupsOf(d)
	s.catalog(d)
	switch a.Type {
	case ActionSet:
		s.setDetails(a.Values, lk)
	case ActionAdd:
		err = s.add(a, lk)
	case ActionQuantity:
		err = s.setQuantity(a)
	case ActionRemove:
		err = s.remove(a)
	case ActionStepUp, ActionStepDown:
		err = s.step(a.Index, a.Type == ActionStepUp)
	case ActionLink:
		s.link(a.On)
	case ActionOverride:
		err = s.override(a.Component, a.Price)
	case ActionDerive:
		err = s.derive(a.Component)
	case ActionTransport:
		err = m.transport(ctx, s)
	case ActionPick:
		err = s.pick(a, d, lk)
	case ActionCategory:
		err = s.selectCategory(a)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	if err != nil {
		return s.view(), err
	}
	s.reprice()
	return s.view(), nil
}

// transport looks the distance up between the departure and the event
// address. Without a provider or a locatable place the typed distance is
// kept.
func (m *Manager) transport(ctx context.Context, s *Session) error {
	e := s.event
	if e.Departure.ID == "" {
		return nil
	}
	route, err := m.distances.Distance(ctx, e.Departure, e.Address)
	switch {
	case errors.Is(err, geo.ErrDisabled), errors.Is(err, geo.ErrNoLocation), errors.Is(err, geo.ErrNoRoute):
		m.notifier.Notify("Distance could not be computed.", notify.Warning)
		return nil
	case err != nil:
		return fmt.Errorf("distance lookup: %w", err)
	}
	s.event.Distance = route.DistanceKm
	s.details.Set(FieldDistance, route.DistanceKm)
	s.restructured(models.PriceTransport)
	return nil
}

// Save validates the details and writes the event. A new event gets its id.
func (m *Manager) Save(ctx context.Context, id string) (View, error) {
	s, err := m.session(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	mode := validation.ModeModify
	if s.event.ID == "" {
		mode = validation.ModeAdd
	}
	if !s.details.Validate(validation.Params{Mode: mode, ID: s.event.ID}) {
		m.notifier.Notify("Inputs validation failed.", notify.Error)
		return s.view(), ErrInvalid
	}
	s.reprice()

	keys, err := m.store.Update(ctx, data.Partial{Events: []models.Event{s.event}})
	if err != nil {
		m.notifier.Notify("Event could not be saved.", notify.Error)
		return s.view(), fmt.Errorf("save event: %w", err)
	}
	if ids := keys[models.CollectionEvents]; s.event.ID == "" && len(ids) > 0 {
		s.event.ID = ids[0]
	}
	verb := "saved"
	if mode == validation.ModeModify {
		verb = "updated"
	}
	m.notifier.Notify(fmt.Sprintf("Event %s.", verb), notify.Success)
	m.log.Info("event saved", zap.String("event", s.event.ID), zap.Float64("total", s.event.Price.Total()))
	return s.view(), nil
}
