// pkg/api/server.go

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/cloudpulse/cloudpulse/pkg/db"
	httpx "github.com/cloudpulse/cloudpulse/pkg/http"
	"github.com/cloudpulse/cloudpulse/pkg/metrics"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/scoring"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// EndpointDetail is the response shape for a single endpoint: identity,
// current health classification, and a fresh score snapshot when probe
// data exists.
type EndpointDetail struct {
	Endpoint models.Endpoint                   `json:"endpoint"`
	Health   metrics.HealthStatus              `json:"health"`
	Score    *scoring.ComprehensiveScoreResult `json:"score,omitempty"`
}

// APIServer exposes monitor state and alert history over HTTP plus a
// websocket event stream.
type APIServer struct {
	monitor MonitorService
	store   AlertStore
	router  *mux.Router
	srv     *http.Server
}

func NewAPIServer(monitor MonitorService, store AlertStore) *APIServer {
	s := &APIServer{
		monitor: monitor,
		store:   store,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()

	return s
}

func (s *APIServer) setupRoutes() {
	s.router.Use(httpx.CommonMiddleware)

	s.router.HandleFunc("/api/endpoints", s.getEndpoints).Methods("GET")
	s.router.HandleFunc("/api/endpoints/{id}", s.getEndpoint).Methods("GET")
	s.router.HandleFunc("/api/endpoints/{id}/score", s.getEndpointScore).Methods("GET")
	s.router.HandleFunc("/api/scores", s.getScores).Methods("GET")
	s.router.HandleFunc("/api/status", s.getStatus).Methods("GET")

	s.router.HandleFunc("/api/alerts", s.getAlerts).Methods("GET")
	s.router.HandleFunc("/api/alerts/{id}/acknowledge", s.acknowledgeAlert).Methods("POST")

	s.router.HandleFunc("/ws/events", s.serveEvents).Methods("GET")
}

// Router exposes the handler for tests and embedding.
func (s *APIServer) Router() http.Handler {
	return s.router
}

// Start serves HTTP on addr until Shutdown is called.
func (s *APIServer) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.Printf("Starting API server on %s", addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown drains the server gracefully.
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (s *APIServer) getEndpoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.monitor.Endpoints())
}

func (s *APIServer) getEndpoint(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	endpointID := vars["id"]

	endpoint, exists := s.monitor.GetEndpoint(endpointID)
	if !exists {
		http.Error(w, "Endpoint not found", http.StatusNotFound)
		return
	}

	detail := EndpointDetail{
		Endpoint: endpoint,
		Health:   metrics.HealthUnknown,
	}

	if state, ok := s.monitor.EndpointState(endpointID); ok {
		detail.Health = state.Health()
	}

	if result, ok := s.monitor.EndpointScore(endpointID); ok {
		detail.Score = &result
	}

	writeJSON(w, detail)
}

func (s *APIServer) getEndpointScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	endpointID := vars["id"]

	result, ok := s.monitor.EndpointScore(endpointID)
	if !ok {
		http.Error(w, "No probe data for endpoint", http.StatusNotFound)
		return
	}

	writeJSON(w, result)
}

func (s *APIServer) getScores(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.monitor.Scores())
}

func (s *APIServer) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.monitor.Summary())
}

func (s *APIServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	var (
		alerts []models.Alert
		err    error
	)

	if endpointID := r.URL.Query().Get("endpoint"); endpointID != "" {
		alerts, err = s.store.GetEndpointAlerts(endpointID, limit)
	} else {
		alerts, err = s.store.GetRecentAlerts(limit)
	}

	if err != nil {
		log.Printf("Error querying alerts: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	writeJSON(w, alerts)
}

func (s *APIServer) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	alertID := vars["id"]

	if err := s.store.AcknowledgeAlert(alertID); err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			http.Error(w, "Alert not found", http.StatusNotFound)
			return
		}

		log.Printf("Error acknowledging alert %s: %v", alertID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
