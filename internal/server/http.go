package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/zeusync/motiontrack/internal/core/motion"
	"github.com/zeusync/motiontrack/internal/core/observability/log"
)

// Router builds the HTTP routes. It is exported so tests can serve it directly.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/entities", s.handleEntities).Methods(http.MethodGet)
	r.HandleFunc("/entities/{id}", s.handleEntity).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleStream).Methods(http.MethodGet)
	if s.collector != nil {
		metricsHandler := s.collector.Handler()
		r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s.collector.SetTracked(s.registry.Len())
			metricsHandler.ServeHTTP(w, req)
		})).Methods(http.MethodGet)
	}
	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"entities": s.registry.Len(),
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.registry.Snapshots())
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entity id"})
		return
	}

	snap, err := s.registry.Snapshot(id)
	if errors.Is(err, motion.ErrUnknownEntity) {
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: "entity not tracked"})
		return
	}
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", log.Error(err))
	}
}
