package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/diewo77/traiteur/internal/models"
)

// Publisher tells other processes which collections changed.
type Publisher interface {
	Publish(ctx context.Context, collections []string) error
}

// Store is safe for concurrent use.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
	hub *hub

	// publishMu orders snapshot loads with their delivery so a subscriber
	// never receives an older snapshot after a newer one.
	publishMu sync.Mutex

	pubMu     sync.RWMutex
	publisher Publisher
}

// New returns a store on db. The documents table must exist (see db.Migrate).
func New(db *gorm.DB, log *zap.Logger) *Store {
	log = log.Named("docstore")
	return &Store{db: db, log: log, hub: newHub(log)}
}

// SetPublisher wires the cross-process notifier; nil disables it.
func (s *Store) SetPublisher(p Publisher) {
	s.pubMu.Lock()
	s.publisher = p
	s.pubMu.Unlock()
}

// Snapshot loads a whole collection.
func (s *Store) Snapshot(ctx context.Context, collection string) (Snapshot, error) {
	if !models.IsCollection(collection) {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	var docs []Document
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Order("key").Find(&docs).Error; err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", collection, err)
	}
	snap := Snapshot{Collection: collection}
	if len(docs) > 0 {
		snap.Docs = make(map[string]json.RawMessage, len(docs))
		for _, d := range docs {
			snap.Docs[d.Key] = json.RawMessage(d.Body)
		}
	}
	return snap, nil
}

// Subscribe delivers the current snapshot of collection, then one after
// each change, until ctx ends or cancel is called. A slow reader only ever
// misses intermediate snapshots, never the latest.
func (s *Store) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, func(), error) {
	if !models.IsCollection(collection) {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	s.publishMu.Lock()
	sub := s.hub.register(collection)
	snap, err := s.Snapshot(ctx, collection)
	if err != nil {
		s.publishMu.Unlock()
		s.hub.unregister(collection, sub.id)
		return nil, nil, err
	}
	s.hub.broadcastTo(sub, snap)
	s.publishMu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			s.hub.unregister(collection, sub.id)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return sub.events, cancel, nil
}

// Subscribers counts the live subscriptions of collection.
func (s *Store) Subscribers(collection string) int { return s.hub.count(collection) }

// Update applies every path of patch in one transaction. Nothing is written
// when a path is invalid.
func (s *Store) Update(ctx context.Context, patch Patch) error {
	paths := make([]string, 0, len(patch))
	parsed := make(map[string]path, len(patch))
	for raw := range patch {
		p, err := parsePath(raw)
		if err != nil {
			return err
		}
		paths = append(paths, raw)
		parsed[raw] = p
	}
	if len(paths) == 0 {
		return nil
	}
	// whole documents before their fields so config/x applies on top of config
	slices.Sort(paths)

	touched := []string{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range paths {
			p := parsed[raw]
			var err error
			if p.field == "" {
				err = writeDocument(tx, p.collection, p.id, patch[raw])
			} else {
				err = writeConfigField(tx, p.field, p.key, patch[raw])
			}
			if err != nil {
				return fmt.Errorf("write %s: %w", raw, err)
			}
			if !slices.Contains(touched, p.collection) {
				touched = append(touched, p.collection)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debug("update committed", zap.Int("paths", len(paths)), zap.Strings("collections", touched))
	s.changed(ctx, touched)
	return nil
}

// Reset deletes every document of collection. The config is refused.
func (s *Store) Reset(ctx context.Context, collection string) error {
	if collection == models.CollectionConfig {
		return ErrConfigReset
	}
	if !models.IsCollection(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, collection)
	}
	res := s.db.WithContext(ctx).Where("collection = ?", collection).Delete(&Document{})
	if res.Error != nil {
		return fmt.Errorf("reset %s: %w", collection, res.Error)
	}
	s.log.Info("collection reset", zap.String("collection", collection), zap.Int64("deleted", res.RowsAffected))
	s.changed(ctx, []string{collection})
	return nil
}

// Refresh republishes the current snapshots of collections to local
// subscribers; none means every collection.
func (s *Store) Refresh(ctx context.Context, collections ...string) error {
	if len(collections) == 0 {
		collections = models.Collections
	}
	var errs []error
	for _, c := range collections {
		if err := s.publish(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) changed(ctx context.Context, collections []string) {
	if err := s.Refresh(ctx, collections...); err != nil {
		s.log.Error("refresh after write", zap.Error(err))
	}
	s.pubMu.RLock()
	p := s.publisher
	s.pubMu.RUnlock()
	if p == nil {
		return
	}
	if err := p.Publish(ctx, collections); err != nil {
		s.log.Warn("publish change", zap.Strings("collections", collections), zap.Error(err))
	}
}

func (s *Store) publish(ctx context.Context, collection string) error {
	if s.hub.count(collection) == 0 {
		return nil
	}
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	snap, err := s.Snapshot(ctx, collection)
	if err != nil {
		return err
	}
	s.hub.broadcast(snap)
	return nil
}

func writeDocument(tx *gorm.DB, collection, id string, value any) error {
	if value == nil {
		return tx.Where("collection = ? AND key = ?", collection, id).Delete(&Document{}).Error
	}
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if string(body) == "null" {
		return tx.Where("collection = ? AND key = ?", collection, id).Delete(&Document{}).Error
	}
	doc := Document{Collection: collection, Key: id, Body: body}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
}

// writeConfigField reads the config document, changes one field (or one
// entry of a keyed field) and writes it back.
func writeConfigField(tx *gorm.DB, field, key string, value any) error {
	var doc Document
	fields := map[string]any{}
	err := tx.Where("collection = ? AND key = ?", models.CollectionConfig, ConfigKey).Take(&doc).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return err
	default:
		if err := json.Unmarshal(doc.Body, &fields); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
	}

	if key == "" {
		if value == nil {
			delete(fields, field)
		} else {
			fields[field] = value
		}
	} else {
		entries, _ := fields[field].(map[string]any)
		if entries == nil {
			entries = map[string]any{}
		}
		if value == nil {
			delete(entries, key)
		} else {
			entries[key] = value
		}
		fields[field] = entries
	}
	return writeDocument(tx, models.CollectionConfig, ConfigKey, fields)
}
