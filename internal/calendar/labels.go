package calendar

import (
	"errors"
	"slices"

	"github.com/diewo77/traiteur/internal/models"
)

var (
	ErrLabelAttached = errors.New("calendar: label already attached")
	ErrLabelUnknown  = errors.New("calendar: unknown label")
	ErrStatusLabel   = errors.New("calendar: status labels cannot be removed")
)

// SetLabel attaches label to e. A status label replaces the event status
// instead of being attached; free labels are attached once.
func SetLabel(e models.Event, label models.Label) (models.Event, error) {
	if label.IsStatus() {
		if !label.Status.Valid() {
			return e, ErrLabelUnknown
		}
		e.Status = *label.Status
		e.Labels = slices.DeleteFunc(slices.Clone(e.Labels), models.Label.IsStatus)
		return e, nil
	}
	if e.HasLabel(label.ID) {
		return e, ErrLabelAttached
	}
	e.Labels = append(slices.Clone(e.Labels), label)
	return e, nil
}

// RemoveLabel detaches the free label id.
func RemoveLabel(e models.Event, cfg models.Config, id string) (models.Event, error) {
	if l, ok := cfg.Label(id); ok && l.IsStatus() {
		return e, ErrStatusLabel
	}
	if !e.HasLabel(id) {
		return e, ErrLabelUnknown
	}
	e.Labels = slices.DeleteFunc(slices.Clone(e.Labels), func(l models.Label) bool { return l.ID == id })
	return e, nil
}

// ApplyLabel resolves id against cfg and sets it on e.
func ApplyLabel(e models.Event, cfg models.Config, id string) (models.Event, error) {
	l, ok := cfg.Label(id)
	if !ok {
		return e, ErrLabelUnknown
	}
	return SetLabel(e, l)
}

// LabelOptions lists the free labels not yet attached to e.
func LabelOptions(e models.Event, cfg models.Config) []models.Label {
	out := []models.Label{}
	for _, l := range cfg.Labels {
		if !e.HasLabel(l.ID) {
			out = append(out, l)
		}
	}
	return out
}

// StatusOptions lists the status labels e can switch to.
func StatusOptions(e models.Event, cfg models.Config) []models.Label {
	out := []models.Label{}
	for _, l := range cfg.LabelsStatus {
		if l.Status != nil && *l.Status != e.Status {
			out = append(out, l)
		}
	}
	return out
}
