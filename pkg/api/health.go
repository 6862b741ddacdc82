package api

import (
	"github.com/cuemby/starhunt/pkg/metrics"
)

// registerHealth mounts the health, readiness, liveness and metrics
// endpoints
func (s *Server) registerHealth() {
	metrics.SetVersion(s.cfg.Version)

	s.mux.Handle("/health", metrics.HealthHandler())
	s.mux.Handle("/ready", metrics.ReadyHandler())
	s.mux.Handle("/live", metrics.LivenessHandler())
	s.mux.Handle("/metrics", metrics.Handler())
}
