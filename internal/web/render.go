// AngelaMos | 2026
// render.go

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/carterperez-dev/templates/member-portal/internal/core"
	"github.com/carterperez-dev/templates/member-portal/internal/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin    = "login"
	PageRegister = "register"
	PageMembers  = "members"
	PageError    = "error"
)

var pages = []string{PageLogin, PageRegister, PageMembers, PageError}

// View is the data every page template receives.
type View struct {
	Title   string
	Me      *middleware.Identity
	Flashes []Flash
	Data    any
}

type Renderer struct {
	pages   map[string]*template.Template
	flasher *Flasher
}

func NewRenderer(flasher *Flasher) (*Renderer, error) {
	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04")
		},
	}

	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("layout.html").
			Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}

	return &Renderer{pages: parsed, flasher: flasher}, nil
}

// Render writes page with status. Pending flashes are consumed and shown
// ahead of any passed in view.Flashes. The "me" identity is filled from the
// request when the caller left it empty.
func (rd *Renderer) Render(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	view View,
) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.ServerError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	if view.Me == nil {
		view.Me = middleware.GetIdentity(r.Context())
	}
	if rd.flasher != nil {
		view.Flashes = append(rd.flasher.Pop(w, r), view.Flashes...)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		slog.ErrorContext(r.Context(), "render template",
			"page", page,
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response
	_, _ = buf.WriteTo(w)
}

// ServerError logs err with the request id and renders a generic 500 page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	core.SetSpanError(r.Context(), err)
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	tmpl, ok := rd.pages[PageError]
	if !ok {
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}

	var buf bytes.Buffer
	view := View{
		Title: "Something went wrong",
		Me:    middleware.GetIdentity(r.Context()),
		Data:  middleware.GetRequestID(r.Context()),
	}
	if execErr := tmpl.Execute(&buf, view); execErr != nil {
		http.Error(
			w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
		)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	//nolint:errcheck // best-effort response
	_, _ = buf.WriteTo(w)
}
