// Package http provides the HTML handlers and routing for the banking
// administration application.
package http

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/csrf"

	"github.com/avoronov/bankadmin/internal/middleware"
	"github.com/avoronov/bankadmin/internal/session"
)

// Renderer executes the page templates against the shared "base" layout.
type Renderer struct {
	dir      string
	sessions *session.Manager
}

// NewRenderer creates a Renderer reading templates from dir.
func NewRenderer(dir string, sessions *session.Manager) *Renderer {
	return &Renderer{dir: dir, sessions: sessions}
}

var templateFuncs = template.FuncMap{
	// money renders integer cents as a decimal amount.
	"money": func(cents int64) string {
		sign := ""
		if cents < 0 {
			sign, cents = "-", -cents
		}
		return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	},
}

// Render writes the given page with the base layout. Flash messages, the
// authenticated principal and the CSRF form field are injected into every
// page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, code int, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["Flashes"] = rd.sessions.Flashes(w, r)
	data["Principal"] = middleware.PrincipalFromContext(r.Context())
	data["CSRFField"] = csrf.TemplateField(r)
	data["Year"] = time.Now().Year()

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFiles(
		filepath.Join(rd.dir, "base.html"),
		filepath.Join(rd.dir, page),
	)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = tmpl.ExecuteTemplate(w, "base", data)
}

// NotFound renders the dedicated not-found page with status 404.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, filepath.Join("errors", "404.html"), http.StatusNotFound, map[string]any{
		"Title": "Page not found",
	})
}

// ServerError renders the dedicated error page with status 500.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, r, filepath.Join("errors", "500.html"), http.StatusInternalServerError, map[string]any{
		"Title": "Something went wrong",
	})
}
