package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/traiteur/httpx"
	"github.com/diewo77/traiteur/internal/calendar"
	"github.com/diewo77/traiteur/internal/data"
	"github.com/diewo77/traiteur/internal/docstore"
	"github.com/diewo77/traiteur/internal/editor"
	"github.com/diewo77/traiteur/internal/grid"
	"github.com/diewo77/traiteur/internal/notify"
	"github.com/diewo77/traiteur/internal/selector"
	"github.com/diewo77/traiteur/internal/subeditor"
)

var errNotFound = errors.New("not found")

// statusOf maps domain errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, data.ErrConfigMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, grid.ErrInvalid), errors.Is(err, selector.ErrInvalid), errors.Is(err, editor.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, grid.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, calendar.ErrLabelAttached):
		return http.StatusConflict
	case errors.Is(err, errNotFound),
		errors.Is(err, grid.ErrNotFound),
		errors.Is(err, selector.ErrNotFound),
		errors.Is(err, editor.ErrSessionNotFound),
		errors.Is(err, editor.ErrEventNotFound),
		errors.Is(err, calendar.ErrLabelUnknown):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, httpx.ErrBadJSON),
		errors.Is(err, grid.ErrInvalidPageSize),
		errors.Is(err, grid.ErrNotConfirmed),
		errors.Is(err, grid.ErrNoForm),
		errors.Is(err, editor.ErrUnknownAction),
		errors.Is(err, editor.ErrUnknownCollection),
		errors.Is(err, editor.ErrUnknownItem),
		errors.Is(err, editor.ErrUnknownComponent),
		errors.Is(err, docstore.ErrInvalidPath),
		errors.Is(err, docstore.ErrConfigReset),
		errors.Is(err, subeditor.ErrOutOfRange),
		errors.Is(err, subeditor.ErrReadOnly),
		errors.Is(err, subeditor.ErrNoCategories),
		errors.Is(err, calendar.ErrStatusLabel),
		errors.Is(err, selector.ErrNoCreator):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// fail writes err with its status and the toasts recorded so far. Internal
// errors are logged and hidden.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, details any, rec *notify.Recorder) {
	status := statusOf(err)
	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		msg = data.CriticalMessage
	case http.StatusInternalServerError:
		a.log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		msg = "internal error"
	}
	var toasts []notify.Toast
	if rec != nil {
		toasts = rec.Toasts()
	}
	httpx.JSONError(w, status, msg, details, toasts...)
}
