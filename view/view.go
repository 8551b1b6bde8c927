// Package view renders the HTML print views of documents.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-faktury/i18n"
	"github.com/diewo77/go-faktury/internal/billing"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	langResolver = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
)

// SetLangResolver lets the host app decide the language of a request.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// Funcs returns the template helpers for the language of r.
func Funcs(r *http.Request) template.FuncMap {
	return funcsFor(langResolver(r))
}

func funcsFor(lang string) template.FuncMap {
	return template.FuncMap{
		"t":      func(code string) string { return i18n.T(lang, code) },
		"lang":   func() string { return lang },
		"money":  billing.FormatMoney,
		"amount": billing.FormatAmount,
		"rate":   formatRate,
		"qty":    formatQuantity,
		"date":   formatDate,
		"year":   func() int { return time.Now().Year() },
		// derefRate reads an optional per-row rate
		"derefRate": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p
		},
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

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2. 1. 2006")
}

func formatQuantity(q float64) string {
	return strings.Replace(strconv.FormatFloat(q, 'f', -1, 64), ".", ",", 1)
}

func formatRate(r float64) string {
	return formatQuantity(r) + " %"
}

// parse returns the layout combined with name. Parsed sets are cached and
// cloned per request so every request binds its own language.
func parse(name string) (*template.Template, error) {
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok {
		return t, nil
	}
	if _, err := fs.Stat(templateFS, "templates/"+name); err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	t, err := template.New("layout.html").
		Funcs(funcsFor(i18n.Default)).
		ParseFS(templateFS, "templates/layout.html", "templates/parties.html", "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	tplCache.Lock()
	tplCache.m[name] = t
	tplCache.Unlock()
	return t, nil
}

// Render executes the print template name (e.g. "invoice.html") wrapped in
// the shared layout. Output is buffered so a failing template never sends
// a half-written page.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	base, err := parse(name)
	if err != nil {
		return err
	}
	t, err := base.Clone()
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
	if err := t.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}
