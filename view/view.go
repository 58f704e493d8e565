// Package view renders the HTML pages of the back office from embedded
// templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/diewo77/traiteur/internal/i18n"
	"github.com/diewo77/traiteur/internal/quote"
)

//go:embed templates/*.html
var files embed.FS

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Funcs returns the helpers every template may call.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"t":      i18n.T,
		"amount": quote.Amount,
		"mul":    func(a, b float64) float64 { return a * b },
		"add":    func(a, b float64) float64 { return a + b },
		"year":   func() int { return time.Now().Year() },
		// dict builds the argument of a sub-template:
		// {{ template "line" (dict "Line" . "Strong" true) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// lookup parses name together with the layout once.
func lookup(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New("layout.html").Funcs(Funcs()).ParseFS(files, "templates/layout.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the page name inside the layout. Nothing is written when
// execution fails.
func Render(w http.ResponseWriter, name string, data map[string]any) error {
	t, err := lookup(name)
	if err != nil {
		return err
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}
