// Package pool accumulates quantified items keyed by entity id.
package pool

import "github.com/diewo77/traiteur/internal/models"

// Add returns a new pool with item added. When an entry with the same id
// exists its quantity grows by quantity, otherwise the item is appended.
// Quantities below 1 count as 1. Neither pool nor its elements are modified.
func Add[T models.Identifiable](pool []models.Quantified[T], item T, quantity int) []models.Quantified[T] {
	if quantity < 1 {
		quantity = 1
	}
	out := make([]models.Quantified[T], 0, len(pool)+1)
	found := false
	for _, q := range pool {
		if !found && q.Item.GetID() == item.GetID() {
			out = append(out, models.Quantified[T]{Item: q.Item, Quantity: q.Quantity + quantity})
			found = true
			continue
		}
		out = append(out, q)
	}
	if !found {
		out = append(out, models.Quantified[T]{Item: item, Quantity: quantity})
	}
	return out
}

// AddAll folds every entry of items into pool.
func AddAll[T models.Identifiable](pool []models.Quantified[T], items ...models.Quantified[T]) []models.Quantified[T] {
	for _, it := range items {
		pool = Add(pool, it.Item, it.Quantity)
	}
	return pool
}

// Index returns the position of id in pool or -1.
func Index[T models.Identifiable](pool []models.Quantified[T], id string) int {
	for i, q := range pool {
		if q.Item.GetID() == id {
			return i
		}
	}
	return -1
}

// IDs lists the ids in pool order.
func IDs[T models.Identifiable](pool []models.Quantified[T]) []string {
	ids := make([]string, len(pool))
	for i, q := range pool {
		ids[i] = q.Item.GetID()
	}
	return ids
}

// Clone copies the slice header and elements.
func Clone[T models.Identifiable](pool []models.Quantified[T]) []models.Quantified[T] {
	if pool == nil {
		return nil
	}
	out := make([]models.Quantified[T], len(pool))
	copy(out, pool)
	return out
}
