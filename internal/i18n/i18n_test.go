package i18n

import (
	"testing"
	"time"
)

func TestT(t *testing.T) {
	if T("devis.menu") != "MENU" {
		t.Fatalf("expected MENU")
	}
	if T("__nope__") != "__nope__" {
		t.Fatalf("expected fallback to code")
	}
	if got := Tf("devis.cooks", "4.5"); got != "Cuisiniers (4.5h)" {
		t.Fatalf("Tf = %q", got)
	}
}

func TestDates(t *testing.T) {
	d := time.Date(2026, 6, 6, 18, 5, 0, 0, time.UTC)
	if got := LongDate(d); got != "samedi 6 juin 2026" {
		t.Errorf("LongDate = %q", got)
	}
	if got := Clock(d); got != "18h05" {
		t.Errorf("Clock = %q", got)
	}
}
