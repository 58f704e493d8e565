package grid

import (
	"slices"

	"github.com/diewo77/traiteur/internal/record"
)

// Selection is a set of row ids in selection order.
type Selection struct {
	ids []string
}

// IDs returns the selected ids.
func (s *Selection) IDs() []string { return append([]string(nil), s.ids...) }

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool { return slices.Contains(s.ids, id) }

// Len is the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Toggle adds or removes id.
func (s *Selection) Toggle(id string) {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(slices.Clone(s.ids), i, i+1)
		return
	}
	s.ids = append(slices.Clone(s.ids), id)
}

// Set replaces the selection, used when the selection is controlled from
// outside the grid.
func (s *Selection) Set(ids []string) { s.ids = append([]string(nil), ids...) }

// Clear empties the selection.
func (s *Selection) Clear() { s.ids = nil }

// Rows returns the rows of data whose id is selected, in data order.
func (s *Selection) Rows(data []record.Row) []record.Row {
	var out []record.Row
	for _, r := range data {
		if s.Has(r.ID()) {
			out = append(out, r)
		}
	}
	return out
}
