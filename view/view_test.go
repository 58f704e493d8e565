package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/traiteur/internal/quote"
)

func TestRender_Quote(t *testing.T) {
	q := quote.Quote{
		Company:     "Traiteur",
		Title:       "Offre pour votre évènement",
		Information: []quote.KeyValue{{Key: "Qui :", Value: "Dupont"}},
		Menus:       []quote.MenuBlock{{Title: "Mariage", Groups: [][]string{{"Velouté"}, {"Filet"}}}},
		Estimate: []quote.Section{{
			Line:  quote.Line{Title: "MENU", Total: 120},
			Items: []quote.Line{{Title: "Mariage", Quantity: 4, Price: 30, Total: 120}},
		}},
		Total: 120,
		Notes: []string{"Décoration non comprise"},
	}
	rec := httptest.NewRecorder()
	if err := Render(rec, "quote.html", map[string]any{"Title": q.Title, "Company": q.Company, "Quote": q}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"<title>Offre pour votre évènement</title>", "Dupont", "Velouté", "***", "4 x 30.00", "CHF 120.00", "Décoration non comprise"} {
		if !strings.Contains(body, want) {
			t.Errorf("body misses %q", want)
		}
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := Render(rec, "missing.html", nil); err == nil {
		t.Fatal("expected an error")
	}
	if rec.Body.Len() != 0 {
		t.Errorf("wrote %d bytes on failure", rec.Body.Len())
	}
}

func TestFuncs_Dict(t *testing.T) {
	dict := Funcs()["dict"].(func(...any) map[string]any)
	if got := dict("a", 1, "b"); got != nil {
		t.Errorf("odd arguments should give nil, got %v", got)
	}
	if got := dict("a", 1); got["a"] != 1 {
		t.Errorf("dict(a, 1) = %v", got)
	}
}
