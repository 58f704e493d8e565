// Package validation holds the field criteria shared by forms, grids and
// the HTTP layer. Messages are the fixed French strings shown to users.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/diewo77/traiteur/internal/models"
)

// Result is the outcome of one criterion. Info holds the helper text; a
// blank " " keeps the layout stable when there is nothing to say.
type Result struct {
	Error bool   `json:"error"`
	Info  string `json:"info"`
}

// Valid is the default, non-error result.
var Valid = Result{Error: false, Info: " "}

func fail(format string, args ...any) Result {
	return Result{Error: true, Info: fmt.Sprintf(format, args...)}
}

// Mode tells whether a record is being created or modified.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeModify Mode = "modify"
)

// Entry is the minimal view of an existing record used by UniqueName.
type Entry struct {
	ID   string
	Name string
}

// Params are passed to every criterion on validate.
type Params struct {
	Mode Mode
	ID   string
	Data []Entry
}

// EntriesOf builds unique-name entries from named records.
func EntriesOf[T interface {
	models.Identifiable
	models.Named
}](items []T) []Entry {
	out := make([]Entry, len(items))
	for i, it := range items {
		out[i] = Entry{ID: it.GetID(), Name: it.GetName()}
	}
	return out
}

// Criterion checks one value of field.
type Criterion func(field string, value any, params Params) Result

// Violations maps field names to messages; used for HTTP error details.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Required fails on nil and empty strings.
func Required() Criterion {
	return func(field string, value any, _ Params) Result {
		if value == nil {
			return fail("%s est requis.", field)
		}
		if s, ok := value.(string); ok && s == "" {
			return fail("%s est requis.", field)
		}
		return Valid
	}
}

// Number fails when value cannot be read as a number.
func Number() Criterion {
	return func(field string, value any, _ Params) Result {
		if !IsNumber(value) {
			return fail("%s doit être un nombre.", field)
		}
		return Valid
	}
}

// Min fails when value is not a number or is below min.
func Min(min float64) Criterion {
	return func(field string, value any, _ Params) Result {
		n, ok := ParseNumber(value)
		if !ok {
			return fail("%s doit être un nombre.", field)
		}
		if n < min {
			return fail("%s doit être plus grand(e) que %s.", field, formatBound(min))
		}
		return Valid
	}
}

// Max fails when value is not a number or is above max.
func Max(max float64) Criterion {
	return func(field string, value any, _ Params) Result {
		n, ok := ParseNumber(value)
		if !ok {
			return fail("%s doit être un nombre.", field)
		}
		if n > max {
			return fail("%s doit être plus petit(e) que %s.", field, formatBound(max))
		}
		return Valid
	}
}

// UniqueName fails when another record in params.Data already carries the
// name. In modify mode the record itself (params.ID) is ignored. The
// reserved models.NoName placeholder is always accepted.
func UniqueName() Criterion {
	return func(field string, value any, params Params) Result {
		if params.Mode != ModeAdd && params.Mode != ModeModify {
			return fail("validate: field: %s value: %v - invalid params", field, value)
		}
		name, _ := value.(string)
		if name == models.NoName {
			return Valid
		}
		res := Valid
		for _, e := range params.Data {
			if e.Name != name {
				continue
			}
			if params.Mode == ModeAdd || e.ID != params.ID {
				res = fail("Le nom \"%s\" est déjà pris.", name)
			}
			break
		}
		if name == "" {
			res = fail("Un nom est requis.")
		}
		return res
	}
}

// IsNumber accepts numeric kinds and strings that parse as a number, with a
// comma allowed as decimal separator.
func IsNumber(value any) bool {
	_, ok := ParseNumber(value)
	return ok
}

// ParseNumber converts value to float64.
func ParseNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f, !math.IsNaN(f)
	}
	return 0, false
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
