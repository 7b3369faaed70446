// Package web serves the show pages, the archive, and a small JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rewired-gh/deadredux/internal/daily"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/shows"
)

// Pages is what the web layer needs from the page service.
type Pages interface {
	Today() string
	LaunchDate() string
	Page(ctx context.Context, featuredDate string) (*shows.Page, error)
	Archive(start, end string) ([]models.DailyPick, error)
	ArchiveSinceLaunch() ([]models.DailyPick, error)
}

// Server routes HTTP requests to the page service.
type Server struct {
	pages    Pages
	renderer *renderer
	router   chi.Router
}

// NewServer builds the router and parses the templates.
func NewServer(pages Pages) (*Server, error) {
	rend, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{pages: pages, renderer: rend}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/today", s.handleAPIToday)
		r.Get("/shows/{date}", s.handleAPIShow)
		r.Get("/archive", s.handleAPIArchive)
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		})
	})

	r.Get("/", s.handleToday)
	r.Get("/archive", s.handleArchive)
	r.Get("/{date}", s.handleShow)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.renderNotFound(w, "That page doesn't exist.")
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "today": s.pages.Today()})
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, s.pages.Today())
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, chi.URLParam(r, "date"))
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, date string) {
	page, err := s.pages.Page(r.Context(), date)
	switch {
	case errors.Is(err, daily.ErrInvalidDate):
		s.renderNotFound(w, "There's no show page for that date.")
		return
	case err != nil:
		logger.Error("Failed to build page for %s: %v", date, err)
		s.renderer.render(w, http.StatusInternalServerError, "error", viewData{
			Title:   siteName,
			Message: "We couldn't reach the show archive.",
		})
		return
	}

	s.renderer.render(w, http.StatusOK, "show", viewData{
		Title:       showTitle(page.Show),
		Description: showDescription(page.Show),
		Page:        page,
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, _ *http.Request) {
	picks, err := s.pages.ArchiveSinceLaunch()
	if err != nil {
		logger.Error("Failed to build archive: %v", err)
		s.renderer.render(w, http.StatusInternalServerError, "error", viewData{
			Title:   siteName,
			Message: "The archive is unavailable.",
		})
		return
	}

	s.renderer.render(w, http.StatusOK, "archive", viewData{
		Title:       "Archive | " + siteName,
		Description: "Every Grateful Dead show featured so far.",
		Picks:       picks,
	})
}

func (s *Server) renderNotFound(w http.ResponseWriter, message string) {
	s.renderer.render(w, http.StatusNotFound, "notfound", viewData{
		Title:   "Not found | " + siteName,
		Message: message,
	})
}

func (s *Server) handleAPIToday(w http.ResponseWriter, r *http.Request) {
	s.serveAPIPage(w, r, s.pages.Today())
}

func (s *Server) handleAPIShow(w http.ResponseWriter, r *http.Request) {
	s.serveAPIPage(w, r, chi.URLParam(r, "date"))
}

func (s *Server) serveAPIPage(w http.ResponseWriter, r *http.Request, date string) {
	page, err := s.pages.Page(r.Context(), date)
	switch {
	case errors.Is(err, daily.ErrInvalidDate):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		logger.Error("Failed to build page for %s: %v", date, err)
		writeError(w, http.StatusInternalServerError, errors.New("show details unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleAPIArchive(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	if start == "" {
		start = s.pages.LaunchDate()
	}
	end := r.URL.Query().Get("end")
	if end == "" {
		end = s.pages.Today()
	}

	picks, err := s.pages.Archive(start, end)
	switch {
	case errors.Is(err, daily.ErrInvalidDate), errors.Is(err, shows.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		logger.Error("Failed to build archive %s..%s: %v", start, end, err)
		writeError(w, http.StatusInternalServerError, errors.New("archive unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
