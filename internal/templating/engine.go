package templating

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Pages are the views rendered by the server. Each page file defines a
// "content" block that layout.html places inside the shared chrome.
var Pages = []string{
	"index.html",
	"search.html",
	"category.html",
	"play.html",
	"loading.html",
	"error.html",
}

var functions = template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("Jan 2, 2006") },
	"year": func() int { return time.Now().Year() },
}

// Engine holds the parsed page templates.
type Engine struct {
	cache map[string]*template.Template
}

// NewEngine parses layout.html together with every page in dir.
func NewEngine(dir string, pages ...string) (*Engine, error) {
	if len(pages) == 0 {
		pages = Pages
	}
	cache := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		// Parse the base layout template first, then the page on top of it.
		ts, err := template.New("layout.html").Funcs(functions).ParseFiles(filepath.Join(dir, "layout.html"))
		if err != nil {
			return nil, fmt.Errorf("error parsing layout template: %w", err)
		}
		ts, err = ts.ParseFiles(filepath.Join(dir, page))
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		cache[page] = ts
	}
	return &Engine{cache: cache}, nil
}

// Render executes page into a buffer first so a template error never leaves
// a half-written response behind.
func (e *Engine) Render(w http.ResponseWriter, status int, page string, data any) error {
	ts, ok := e.cache[page]
	if !ok {
		return fmt.Errorf("template %s not found in cache", page)
	}

	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
