// Package http exposes stored records and document validation over a
// small REST surface.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/universal-automation-wiki/iterate/api"
	"github.com/universal-automation-wiki/iterate/internal/metrics"
	"github.com/universal-automation-wiki/iterate/internal/validator"
	"github.com/universal-automation-wiki/iterate/pkg/domain"
	"github.com/universal-automation-wiki/iterate/pkg/ports"
)

// Server serves stored records over HTTP.
type Server struct {
	store  ports.RecordStore
	logger *slog.Logger
}

// NewHandler builds the HTTP handler over a record store. Metrics may
// be nil when no collector registry is wired.
func NewHandler(store ports.RecordStore, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Get("/records/{stage}", s.listRecords)
	r.Get("/records/{stage}/{id}", s.getRecord)
	r.Post("/validate", s.validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	stage := chi.URLParam(r, "stage")

	ids, err := s.store.List(r.Context(), stage)
	if err != nil {
		s.logger.Error("list records failed", "stage", stage, "error", err)
		writeError(w, http.StatusInternalServerError, "listing records failed")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"stage": stage, "ids": ids})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	stage := chi.URLParam(r, "stage")
	id := chi.URLParam(r, "id")

	data, err := s.store.Load(r.Context(), stage, id)
	if errors.Is(err, domain.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "no such record")
		return
	}
	if err != nil {
		s.logger.Error("load record failed", "stage", stage, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "loading record failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	verdict := map[string]any{"valid": true, "errors": []string{}}
	if err := validator.ValidateRaw(body); err != nil {
		if errs := validator.ValidationErrors(err); len(errs) > 0 {
			messages := make([]string, len(errs))
			for i, e := range errs {
				messages[i] = e.Error()
			}
			verdict["valid"] = false
			verdict["errors"] = messages
		} else {
			// not even a JSON object
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, verdict)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
