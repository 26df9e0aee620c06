package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"MetalPulse/internal/chart"
	"MetalPulse/internal/model"
	"MetalPulse/internal/series"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the persisted series and derived chart traces as JSON. It
// re-reads the store per request: the pipeline overwrites the whole file on
// every mutation, so a fresh read always sees a consistent document.
type Server struct {
	SeriesPath string
	MetaPath   string
	Names      map[string]string // symbol code -> display name
	Now        func() time.Time  // defaults to time.Now
}

// NewRouter builds the chi router for the chart API.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/meta", s.handleMeta)
	r.Get("/api/series", s.handleSeries)
	r.Get("/api/traces", s.handleTraces)
	return r
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := series.LoadMeta(s.MetaPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	st, err := series.Load(s.SeriesPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type tracesResponse struct {
	Traces []model.Trace `json:"traces"`
	Layout model.Layout  `json:"layout"`
}

// handleTraces renders the selected symbols over the requested range.
// Query parameters: symbols (comma-separated, default all), range (default
// 5y; unknown codes fall back to 5y), normalize, log. Unknown symbols are
// ignored rather than rejected.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	st, err := series.Load(s.SeriesPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	q := r.URL.Query()
	sel := model.Selection{
		Selected:  make(map[string]bool, len(st.Symbols)),
		Range:     q.Get("range"),
		LogScale:  q.Get("log") == "true",
		Normalize: q.Get("normalize") == "true",
	}
	if sel.Range == "" {
		sel.Range = "5y"
	}
	if raw := q.Get("symbols"); raw != "" {
		for _, sym := range strings.Split(raw, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				sel.Selected[sym] = true
			}
		}
	} else {
		for _, sym := range st.Symbols {
			sel.Selected[sym] = true
		}
	}

	writeJSON(w, http.StatusOK, tracesResponse{
		Traces: chart.BuildTraces(st, sel, s.Names, s.now()),
		Layout: chart.BuildLayout(sel, st.Base),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Printf("[ERROR] api: %v", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
