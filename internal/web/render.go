package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/microcosm-cc/bluemonday"

	"github.com/rewired-gh/deadredux/internal/format"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/shows"
)

const siteName = "Dead Redux"

//go:embed templates
var templateFS embed.FS

var pageTemplates = []string{"show", "archive", "notfound", "error"}

// viewData is shared by every HTML template.
type viewData struct {
	Title       string
	Description string
	Page        *shows.Page
	Picks       []models.DailyPick
	Message     string
}

type renderer struct {
	pages  map[string]*template.Template
	policy *bluemonday.Policy
}

func newRenderer() (*renderer, error) {
	r := &renderer{
		pages:  make(map[string]*template.Template, len(pageTemplates)),
		policy: bluemonday.UGCPolicy(),
	}

	funcs := template.FuncMap{
		"formatDate":     format.Date,
		"formatDuration": format.Duration,
		"formatRating":   format.Rating,
		"sanitize":       r.sanitize,
	}

	for _, name := range pageTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// sanitize keeps the markup Relisten descriptions use (links, line breaks) and
// strips everything else.
func (r *renderer) sanitize(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

func (r *renderer) render(w http.ResponseWriter, status int, name string, data viewData) {
	tmpl, ok := r.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("Failed to render %s: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func showTitle(show models.ShowSummary) string {
	return fmt.Sprintf("%s — %s | %s", show.Venue, show.Date, siteName)
}

func showDescription(show models.ShowSummary) string {
	return fmt.Sprintf("Today's Grateful Dead show: %s, %s on %s", show.Venue, show.Location, show.Date)
}
