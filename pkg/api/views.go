package api

import (
	"encoding/json"
	"net/http"

	"github.com/cuemby/starhunt/pkg/types"
)

// registerViews mounts the read-only JSON views of relay state
func (s *Server) registerViews() {
	s.mux.HandleFunc("/stars", s.starsHandler)
	s.mux.HandleFunc("/spawn-times", s.spawnTimesHandler)
	s.mux.HandleFunc("/dashboard", s.dashboardHandler)
}

// starsHandler returns the current snapshot, the same list STAR_SYNC
// carries
func (s *Server) starsHandler(w http.ResponseWriter, r *http.Request) {
	stars := s.relay.Snapshot()
	if stars == nil {
		stars = []types.Star{}
	}
	writeJSON(w, http.StatusOK, stars)
}

// spawnTimesHandler returns the cached spawn-time table, or 503 before the
// first successful refresh
func (s *Server) spawnTimesHandler(w http.ResponseWriter, r *http.Request) {
	spawnTimes, ok := s.relay.SpawnTimes()
	if !ok {
		http.Error(w, "spawn times not loaded yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, spawnTimes)
}

// dashboardHandler returns the cached dashboard, falling back to the
// defaults before the first successful refresh
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, ok := s.relay.Dashboard()
	if !ok {
		dashboard = types.DefaultDashboard()
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
