package subeditor

import (
	"fmt"

	"github.com/diewo77/traiteur/internal/models"
	"github.com/diewo77/traiteur/internal/pool"
)

// StepUp raises a material to the next batch multiple.
func StepUp(items []models.Quantified[models.Material], index int) ([]models.Quantified[models.Material], error) {
	return step(items, index, true)
}

// StepDown lowers a material by one batch below its batch-aligned floor.
// A line reaching zero is removed.
func StepDown(items []models.Quantified[models.Material], index int) ([]models.Quantified[models.Material], error) {
	return step(items, index, false)
}

func step(items []models.Quantified[models.Material], index int, up bool) ([]models.Quantified[models.Material], error) {
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	batch := items[index].Item.Batch
	if batch < 1 {
		batch = 1
	}
	q := items[index].Quantity
	remainder := q % batch
	if up {
		q += batch - remainder
	} else {
		q -= batch + remainder
	}
	if q <= 0 {
		return Remove(items, index)
	}
	out := pool.Clone(items)
	out[index] = models.Quantified[models.Material]{Item: out[index].Item, Quantity: q}
	return out, nil
}
