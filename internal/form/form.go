// Package form keeps the values of an edited record together with the
// criteria that validate them and the last validation results.
package form

import (
	"fmt"
	"sort"

	"github.com/diewo77/traiteur/internal/record"
	"github.com/diewo77/traiteur/validation"
)

// Values is the edited record keyed by field.
type Values = record.Row

// FieldValidation holds the result of a scalar field, or one result per
// element for array fields.
type FieldValidation struct {
	validation.Result
	Items []validation.Result `json:"items,omitempty"`
}

// Validations maps every field to its current state.
type Validations map[string]FieldValidation

// Controller is not safe for concurrent use; each editor owns one.
type Controller struct {
	defaults    Values
	values      Values
	validations Validations
	criterias   map[string][]validation.Criterion
}

// New builds a controller whose reset target is a deep copy of defaults.
func New(defaults Values) *Controller {
	if defaults == nil {
		defaults = Values{}
	}
	c := &Controller{
		defaults:  defaults.Clone(),
		values:    defaults.Clone(),
		criterias: map[string][]validation.Criterion{},
	}
	c.validations = defaultValidations(c.values)
	return c
}

// Values returns a copy of the current record.
func (c *Controller) Values() Values { return c.values.Clone() }

// Value returns one field.
func (c *Controller) Value(field string) any { return c.values[field] }

// Defaults returns a copy of the default record.
func (c *Controller) Defaults() Values { return c.defaults.Clone() }

// Set changes one field and keeps the other validations untouched unless an
// array length changed.
func (c *Controller) Set(field string, v any) {
	next := c.values.Clone()
	next[field] = v
	c.SetValues(next, false)
}

// SetValues replaces the record. Validations are reset when asked to, and
// always when an array field changed length.
func (c *Controller) SetValues(v Values, resetValidations bool) {
	if v == nil {
		v = Values{}
	}
	for key, old := range c.values {
		ol, okOld := record.AsList(old)
		nl, okNew := record.AsList(v[key])
		if okOld && okNew && len(ol) != len(nl) {
			resetValidations = true
		}
	}
	c.values = v.Clone()
	if resetValidations {
		c.validations = defaultValidations(c.values)
	}
}

// SetCriterias merges criteria per field; a field given here replaces its
// previous list.
func (c *Controller) SetCriterias(criterias map[string][]validation.Criterion) {
	for field, list := range criterias {
		c.criterias[field] = append([]validation.Criterion(nil), list...)
	}
}

// Criterias returns the registered criteria.
func (c *Controller) Criterias() map[string][]validation.Criterion {
	out := make(map[string][]validation.Criterion, len(c.criterias))
	for k, v := range c.criterias {
		out[k] = append([]validation.Criterion(nil), v...)
	}
	return out
}

// Validations returns the last validation state.
func (c *Controller) Validations() Validations {
	out := make(Validations, len(c.validations))
	for k, v := range c.validations {
		v.Items = append([]validation.Result(nil), v.Items...)
		out[k] = v
	}
	return out
}

// SetValidations overrides the validation state, used when a collaborator
// validated on its own.
func (c *Controller) SetValidations(v Validations) {
	c.validations = v
}

// Validate runs every criterion of every field and stores the outcome. Array
// fields are checked element by element. Returns true when nothing failed.
func (c *Controller) Validate(params validation.Params) bool {
	next := defaultValidations(c.values)
	ok := true
	for field, value := range c.values {
		fv := next[field]
		if list, isList := record.AsList(value); isList {
			for i, el := range list {
				if r := c.check(field, el, params); r.Error {
					fv.Items[i] = r
					ok = false
				}
			}
		} else if r := c.check(field, value, params); r.Error {
			fv.Result = r
			ok = false
		}
		next[field] = fv
	}
	c.validations = next
	return ok
}

// check returns the first failing result of field; one error is enough.
func (c *Controller) check(field string, value any, params validation.Params) validation.Result {
	for _, crit := range c.criterias[field] {
		if r := crit(field, value, params); r.Error {
			return r
		}
	}
	return validation.Valid
}

// Reset restores the defaults and clears validations.
func (c *Controller) Reset() {
	c.values = c.defaults.Clone()
	c.validations = defaultValidations(c.values)
}

// Violations flattens failing results; array elements are keyed field[i].
func (c *Controller) Violations() validation.Violations {
	v := validation.Violations{}
	fields := make([]string, 0, len(c.validations))
	for f := range c.validations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fv := c.validations[f]
		if fv.Error {
			v[f] = fv.Info
		}
		for i, it := range fv.Items {
			if it.Error {
				v[fmt.Sprintf("%s[%d]", f, i)] = it.Info
			}
		}
	}
	return v
}

func defaultValidations(values Values) Validations {
	out := make(Validations, len(values))
	for field, v := range values {
		fv := FieldValidation{Result: validation.Valid}
		if list, ok := record.AsList(v); ok {
			fv.Items = make([]validation.Result, len(list))
			for i := range fv.Items {
				fv.Items[i] = validation.Valid
			}
		}
		out[field] = fv
	}
	return out
}
