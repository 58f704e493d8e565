// Package httpx writes JSON responses and reads JSON requests.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/diewo77/traiteur/internal/notify"
)

// MaxBodyBytes caps decoded request bodies.
const MaxBodyBytes = 1 << 20

var ErrBadJSON = errors.New("httpx: invalid json body")

// ErrorResponse is the body of every failed request. Error and Severity
// read as a toast; Toasts carries the notifications raised before the
// failure.
type ErrorResponse struct {
	Error    string          `json:"error"`
	Severity notify.Severity `json:"severity"`
	Details  any             `json:"details,omitempty"`
	Toasts   []notify.Toast  `json:"toasts,omitempty"`
}

// Toast returns the failure as a notification.
func (e ErrorResponse) Toast() notify.Toast {
	return notify.Toast{Message: e.Error, Severity: e.Severity}
}

// SeverityOf is a warning for client errors and an error otherwise.
func SeverityOf(status int) notify.Severity {
	if status >= 400 && status < 500 {
		return notify.Warning
	}
	return notify.Error
}

func JSON(w http.ResponseWriter, status int, payload any) {
	body := []byte("null")
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error","severity":"error"}`, http.StatusInternalServerError)
			return
		}
		body = b
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes msg with the severity of status, followed by toasts.
func JSONError(w http.ResponseWriter, status int, msg string, details any, toasts ...notify.Toast) {
	JSON(w, status, ErrorResponse{Error: msg, Severity: SeverityOf(status), Details: details, Toasts: toasts})
}

// Decode reads one JSON value from the request body into v. An empty body
// leaves v untouched.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return nil
}
