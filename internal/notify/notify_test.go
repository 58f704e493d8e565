package notify

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type collect struct{ got []Toast }

func (c *collect) BroadcastToast(t Toast) { c.got = append(c.got, t) }

func TestLogger_NotifyLogsAndBroadcasts(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	out := &collect{}
	n := NewLogger(zap.New(core), out)

	n.Notify("Menu saved.", Success)
	n.Notify("Inputs validation failed.", Error)

	if logs.Len() != 2 {
		t.Fatalf("logged %d entries, want 2", logs.Len())
	}
	if got := logs.All()[1].Level; got != zap.WarnLevel {
		t.Errorf("error toast logged at %v, want warn", got)
	}
	if len(out.got) != 2 || out.got[0].Severity != Success {
		t.Errorf("broadcast = %+v", out.got)
	}
}

func TestRecorder(t *testing.T) {
	inner := NewRecorder(nil)
	r := NewRecorder(inner)
	if _, ok := r.Last(); ok {
		t.Fatalf("empty recorder has no last toast")
	}
	r.Notify("a", Info)
	r.Notify("b", Error)
	last, _ := r.Last()
	if last.Message != "b" || len(r.Toasts()) != 2 || len(inner.Toasts()) != 2 {
		t.Errorf("recorder state: %+v / %+v", r.Toasts(), inner.Toasts())
	}
	Discard{}.Notify("ignored", Info)
}
