package record

import (
	"testing"

	"github.com/diewo77/traiteur/internal/models"
)

func TestFromValueAndGet(t *testing.T) {
	ev := models.Event{
		ID:      "e1",
		Client:  models.Client{ID: "c1", Name: "Dupont"},
		Address: models.NewAddress("p", "Rue 1", 1000, "Lausanne", "VD"),
		People:  40,
	}
	row, err := FromValue(ev)
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if row.ID() != "e1" {
		t.Errorf("ID() = %q", row.ID())
	}
	if got := row.String("address.town"); got != "Lausanne" {
		t.Errorf("address.town = %q", got)
	}
	if got := row.Get("people"); got != float64(40) {
		t.Errorf("people = %v (%T)", got, got)
	}
	if row.Get("missing.path") != nil {
		t.Errorf("missing path should be nil")
	}

	var back models.Event
	if err := ToValue(row, &back); err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	if back.Client.Name != "Dupont" || back.Address.Town != "Lausanne" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{float64(12), "12"},
		{12.5, "12.5"},
		{[]any{"A", "A1"}, "A,A1"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	orig := Row{"tags": []any{"a"}, "nested": map[string]any{"k": "v"}}
	cp := orig.Clone()
	cp["tags"].([]any)[0] = "changed"
	cp["nested"].(map[string]any)["k"] = "changed"
	if orig["tags"].([]any)[0] != "a" || orig["nested"].(map[string]any)["k"] != "v" {
		t.Errorf("clone shares memory with original: %v", orig)
	}
}
