// Package headcell describes the columns of an entity type: how a field is
// labelled, edited, validated, grouped and filtered. The descriptors are the
// schema both the grid and the quick form are driven by.
package headcell

import (
	"strings"

	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

// InputType selects the editor of a field.
type InputType string

const (
	Text            InputType = "text"
	Number          InputType = "number"
	Select          InputType = "select"
	Hierarchization InputType = "hierarchization"
	Date            InputType = "date"
)

// InputProps configures the input of a field. A nil *InputProps means the
// field is display-only.
type InputProps struct {
	Type     InputType             `json:"type,omitempty"`
	Required bool                  `json:"required,omitempty"`
	Min      *float64              `json:"min,omitempty"`
	Max      *float64              `json:"max,omitempty"`
	Custom   []validation.Criterion `json:"-"`
}

// HeadCell is the descriptor of one column.
type HeadCell struct {
	Field string `json:"field"`
	Label string `json:"label"`
	// Cols is the width (1-12) in the quick form.
	Cols  int         `json:"cols,omitempty"`
	Input *InputProps `json:"input,omitempty"`
	// Currency formats the value with 2 decimals.
	Currency bool `json:"currency,omitempty"`
	// ComputeValue derives the displayed text of a cell.
	ComputeValue func(record.Row) string `json:"-"`
	// CompareUsingRaw sorts by the raw field even when ComputeValue is set.
	CompareUsingRaw bool `json:"compareUsingRaw,omitempty"`
	// ArrayFormatter marks a nested entity collection and renders its summary.
	ArrayFormatter func(items []any) string `json:"-"`
	SelectLabel    string                   `json:"selectLabel,omitempty"`
	DialogTitle    string                   `json:"dialogTitle,omitempty"`
	// SkimmedBy lists the fields whose current values narrow the options.
	SkimmedBy []string `json:"skimmedBy,omitempty"`
	// GroupsConfig names the config list that orders the sub-items.
	GroupsConfig string `json:"groupsConfig,omitempty"`
	// ReportPrice pushes the sub-items total into the record price.
	ReportPrice bool `json:"reportPrice,omitempty"`
	IsLabelDot  bool `json:"isLabelDot,omitempty"`

	Options []string   `json:"options,omitempty"`
	Paths   [][]string `json:"paths,omitempty"`
}

// Type returns the input type, empty for display-only fields.
func (h HeadCell) Type() InputType {
	if h.Input == nil {
		return ""
	}
	return h.Input.Type
}

// IsArray reports whether the column holds a nested entity collection.
func (h HeadCell) IsArray() bool { return h.ArrayFormatter != nil }

// Display renders the cell of row.
func (h HeadCell) Display(row record.Row) string {
	if h.ComputeValue != nil {
		return h.ComputeValue(row)
	}
	v := row.Get(h.Field)
	if h.ArrayFormatter != nil {
		list, _ := record.AsList(v)
		return h.ArrayFormatter(list)
	}
	if h.Currency {
		if n, ok := validation.ParseNumber(v); ok {
			return formatCurrency(n)
		}
	}
	return record.Stringify(v)
}

// Criterias derives the form criteria of headers: custom criteria first,
// then required, number and bounds from the input props.
func Criterias(headers []HeadCell) map[string][]validation.Criterion {
	out := map[string][]validation.Criterion{}
	for _, h := range headers {
		if h.Input == nil {
			continue
		}
		var list []validation.Criterion
		list = append(list, h.Input.Custom...)
		if h.Input.Required {
			list = append(list, validation.Required())
		}
		if h.Input.Type == Number {
			list = append(list, validation.Number())
		}
		if h.Input.Min != nil {
			list = append(list, validation.Min(*h.Input.Min))
		}
		if h.Input.Max != nil {
			list = append(list, validation.Max(*h.Input.Max))
		}
		if len(list) > 0 {
			out[h.Field] = list
		}
	}
	return out
}

// Find returns the header of field.
func Find(headers []HeadCell, field string) (HeadCell, bool) {
	for _, h := range headers {
		if h.Field == field {
			return h, true
		}
	}
	return HeadCell{}, false
}

// BuildHeadersOptions returns a copy of headers where select and
// hierarchization columns carry their candidate options, gathered from the
// distinct values of data. A SkimmedBy dependency with a non-empty current
// value keeps only the rows holding that same value; an empty current value
// keeps every row.
func BuildHeadersOptions(headers []HeadCell, data []record.Row, current record.Row) []HeadCell {
	out := make([]HeadCell, len(headers))
	for i, h := range headers {
		out[i] = h
		t := h.Type()
		if t != Select && t != Hierarchization {
			continue
		}
		var options []string
		var paths [][]string
		seen := map[string]bool{}
		for _, row := range data {
			if !matchesSkim(h.SkimmedBy, row, current) {
				continue
			}
			switch v := row.Get(h.Field).(type) {
			case string:
				if v != "" && !seen[v] {
					seen[v] = true
					options = append(options, v)
				}
			default:
				list, ok := record.AsList(v)
				if !ok || len(list) == 0 {
					continue
				}
				path := make([]string, len(list))
				for j, e := range list {
					path[j] = record.Stringify(e)
				}
				key := "\x00" + strings.Join(path, "\x00")
				if !seen[key] {
					seen[key] = true
					paths = append(paths, path)
				}
			}
		}
		out[i].Options = options
		out[i].Paths = paths
	}
	return out
}

func matchesSkim(skimmedBy []string, row, current record.Row) bool {
	for _, dep := range skimmedBy {
		cur := current.Get(dep)
		if record.IsEmpty(cur) {
			continue
		}
		if record.Stringify(row.Get(dep)) != record.Stringify(cur) {
			return false
		}
	}
	return true
}

// BuildHierarchyOptions returns the distinct segments available right after
// current among paths that are strictly longer than current and start with
// it, in first-seen order.
func BuildHierarchyOptions(paths [][]string, current []string) []string {
	depth := len(current)
	var out []string
	seen := map[string]bool{}
	for _, p := range paths {
		if len(p) <= depth {
			continue
		}
		match := true
		for i, seg := range current {
			if p[i] != seg {
				match = false
				break
			}
		}
		if !match || seen[p[depth]] {
			continue
		}
		seen[p[depth]] = true
		out = append(out, p[depth])
	}
	return out
}
