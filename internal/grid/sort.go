package grid

import (
	"slices"
	"strings"

	"github.com/diewo77/traiteur/internal/headcell"
	"github.com/diewo77/traiteur/internal/record"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort returns rows ordered by field. Rows comparing equal keep their
// original relative order in both directions.
func Sort(headers []headcell.HeadCell, rows []record.Row, field string, order Order) []record.Row {
	key := func(r record.Row) any { return r.Get(field) }
	for _, h := range headers {
		if h.Field == field && h.ComputeValue != nil && !h.CompareUsingRaw {
			compute := h.ComputeValue
			key = func(r record.Row) any { return compute(r) }
			break
		}
	}

	type decorated struct {
		row   record.Row
		key   any
		index int
	}
	dec := make([]decorated, len(rows))
	for i, r := range rows {
		dec[i] = decorated{row: r, key: key(r), index: i}
	}
	slices.SortFunc(dec, func(a, b decorated) int {
		c := compare(a.key, b.key)
		if order == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return a.index - b.index
	})

	out := make([]record.Row, len(dec))
	for i, d := range dec {
		out[i] = d.row
	}
	return out
}

// compare orders values of the same JSON kind; anything else is equal.
func compare(a, b any) int {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok && x != y {
			if !x {
				return -1
			}
			return 1
		}
	}
	return 0
}
