// Package notify delivers user-facing toasts.
package notify

import (
	"sync"

	"go.uber.org/zap"
)

// Severity of a toast.
type Severity string

const (
	Success Severity = "success"
	Info    Severity = "info"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Toast is one notification.
type Toast struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Notifier is fire-and-forget.
type Notifier interface {
	Notify(message string, severity Severity)
}

// Broadcaster receives toasts for realtime clients.
type Broadcaster interface {
	BroadcastToast(Toast)
}

// Logger logs toasts and forwards them to an optional broadcaster.
type Logger struct {
	log *zap.Logger
	out Broadcaster
}

// NewLogger returns a notifier writing to log; out may be nil.
func NewLogger(log *zap.Logger, out Broadcaster) *Logger {
	return &Logger{log: log.Named("notify"), out: out}
}

func (l *Logger) Notify(message string, severity Severity) {
	fields := []zap.Field{zap.String("severity", string(severity))}
	switch severity {
	case Error:
		l.log.Warn(message, fields...)
	default:
		l.log.Info(message, fields...)
	}
	if l.out != nil {
		l.out.BroadcastToast(Toast{Message: message, Severity: severity})
	}
}

// Recorder keeps toasts in memory. Handlers use it to return the toasts of
// a request, tests use it to assert on them.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
	next   Notifier
}

// NewRecorder returns a recorder forwarding to next (may be nil).
func NewRecorder(next Notifier) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Notify(message string, severity Severity) {
	r.mu.Lock()
	r.toasts = append(r.toasts, Toast{Message: message, Severity: severity})
	r.mu.Unlock()
	if r.next != nil {
		r.next.Notify(message, severity)
	}
}

// Toasts returns a copy of what was recorded.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

// Last returns the latest toast.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}

// Discard drops every toast.
type Discard struct{}

func (Discard) Notify(string, Severity) {}
