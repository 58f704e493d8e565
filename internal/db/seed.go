package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/models"
)

// Seed writes the default config document when the store has none. It
// reports whether it wrote anything.
func Seed(ctx context.Context, store *docstore.Store, title string, log *zap.Logger) (bool, error) {
	snap, err := store.Snapshot(ctx, models.CollectionConfig)
	if err != nil {
		return false, err
	}
	if _, ok := snap.Docs[docstore.ConfigKey]; ok {
		return false, nil
	}
	raw := data.CompressConfig(models.DefaultConfig(title))
	if err := store.Update(ctx, docstore.Patch{models.CollectionConfig: raw}); err != nil {
		return false, fmt.Errorf("seed config: %w", err)
	}
	log.Named("db").Info("default config seeded", zap.String("title", title))
	return true, nil
}
