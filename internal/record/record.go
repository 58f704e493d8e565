// Package record gives the grid and the forms a schema-free view of any
// entity: the JSON shape of the value, addressed by field name.
package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is the JSON-decoded form of an entity. Numbers are float64.
type Row map[string]any

// FromValue encodes v to JSON and decodes it back as a Row.
func FromValue(v any) (Row, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var row Row
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return row, nil
}

// FromSlice converts every element of items.
func FromSlice[T any](items []T) ([]Row, error) {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		r, err := FromValue(it)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// ToValue decodes row into out (a pointer).
func ToValue(row Row, out any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

// ID returns the "id" field, empty when absent.
func (r Row) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Name returns the "name" field.
func (r Row) Name() string {
	n, _ := r["name"].(string)
	return n
}

// Get resolves a field; dots walk into nested objects ("address.town").
func (r Row) Get(field string) any {
	if v, ok := r[field]; ok {
		return v
	}
	parts := strings.Split(field, ".")
	var cur any = map[string]any(r)
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil
		}
		cur = m[p]
	}
	return cur
}

// String renders a field with Stringify.
func (r Row) String(field string) string {
	return Stringify(r.Get(field))
}

// Clone deep copies the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return DeepCopy(map[string]any(r)).(map[string]any)
}

// Stringify renders JSON values the way they are displayed: integers without
// decimals, arrays comma-joined, nil as "".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Stringify(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	}
	return fmt.Sprint(v)
}

// IsEmpty reports the values a filter or a cell treats as absent.
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case float64:
		return x == 0
	case int:
		return x == 0
	case bool:
		return !x
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

// DeepCopy copies maps and slices produced by JSON decoding. Other values
// are returned as is.
func DeepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = DeepCopy(e)
		}
		return out
	case Row:
		return Row(DeepCopy(map[string]any(x)).(map[string]any))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = DeepCopy(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []Row:
		out := make([]Row, len(x))
		for i, e := range x {
			out[i] = e.Clone()
		}
		return out
	}
	return v
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Row:
		return m, true
	}
	return nil, false
}

// AsList returns v as a slice of elements when it is a JSON array.
func AsList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []Row:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = map[string]any(r)
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out, true
	}
	return nil, false
}

// ElementID returns the "id" of a list element that is an object.
func ElementID(v any) string {
	if m, ok := asMap(v); ok {
		id, _ := m["id"].(string)
		return id
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ElementName returns the "name" of a list element that is an object.
func ElementName(v any) (string, bool) {
	if m, ok := asMap(v); ok {
		n, ok := m["name"].(string)
		return n, ok
	}
	return "", false
}
