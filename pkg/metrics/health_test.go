package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type componentState struct {
	name    string
	healthy bool
	message string
}

// resetHealth replaces the process registry with one holding components
func resetHealth(t *testing.T, components ...componentState) {
	t.Helper()
	previous := healthChecker
	healthChecker = newHealthChecker()
	t.Cleanup(func() { healthChecker = previous })

	for _, c := range components {
		RegisterComponent(c.name, c.healthy, c.message)
	}
}

func relayUp() []componentState {
	return []componentState{
		{name: "hub", healthy: true},
		{name: "reconciler", healthy: true},
		{name: "api", healthy: true},
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name        string
		components  []componentState
		wantStatus  string
		wantMessage string
	}{
		{
			name:       "all healthy",
			components: relayUp(),
			wantStatus: StatusHealthy,
		},
		{
			name:       "nothing registered",
			wantStatus: StatusHealthy,
		},
		{
			name: "critical component down",
			components: append(relayUp(),
				componentState{name: "hub", healthy: false, message: "closed"}),
			wantStatus:  StatusUnhealthy,
			wantMessage: "failing: hub",
		},
		{
			name: "metadata source down",
			components: append(relayUp(),
				componentState{name: "metadata/spawn-times", healthy: false, message: "sheet unreachable"}),
			wantStatus:  StatusDegraded,
			wantMessage: "failing: metadata/spawn-times",
		},
		{
			name: "critical wins over degraded",
			components: append(relayUp(),
				componentState{name: "metadata/dashboard", healthy: false, message: "timeout"},
				componentState{name: "api", healthy: false, message: "shutting down"}),
			wantStatus:  StatusUnhealthy,
			wantMessage: "failing: api, metadata/dashboard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth(t, tt.components...)

			health := GetHealth()
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, tt.wantMessage, health.Message)
		})
	}
}

func TestGetHealthComponentDetail(t *testing.T) {
	resetHealth(t, componentState{name: "hub", healthy: false, message: "closed"})
	SetVersion("1.2.3")

	health := GetHealth()
	assert.Equal(t, "unhealthy: closed", health.Components["hub"])
	assert.Equal(t, "1.2.3", health.Version)
	assert.NotEmpty(t, health.Uptime)
}

func TestGetReadiness(t *testing.T) {
	tests := []struct {
		name       string
		components []componentState
		wantStatus string
		wantDetail map[string]string
	}{
		{
			name:       "all critical up",
			components: relayUp(),
			wantStatus: StatusReady,
			wantDetail: map[string]string{"hub": "ready", "reconciler": "ready", "api": "ready"},
		},
		{
			name:       "hub not registered",
			components: []componentState{{name: "api", healthy: true}, {name: "reconciler", healthy: true}},
			wantStatus: StatusNotReady,
			wantDetail: map[string]string{"hub": "not registered"},
		},
		{
			name: "reconciler stopped",
			components: append(relayUp(),
				componentState{name: "reconciler", healthy: false, message: "stopped"}),
			wantStatus: StatusNotReady,
			wantDetail: map[string]string{"reconciler": "not ready: stopped"},
		},
		{
			name: "metadata does not affect readiness",
			components: append(relayUp(),
				componentState{name: "metadata/dashboard", healthy: false, message: "timeout"}),
			wantStatus: StatusReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth(t, tt.components...)

			readiness := GetReadiness()
			assert.Equal(t, tt.wantStatus, readiness.Status)
			if tt.wantStatus == StatusNotReady {
				assert.NotEmpty(t, readiness.Message)
			}
			for name, detail := range tt.wantDetail {
				assert.Equal(t, detail, readiness.Components[name])
			}
		})
	}
}

func TestUpdateComponent(t *testing.T) {
	resetHealth(t, componentState{name: "hub", healthy: true, message: "ok"})

	UpdateComponent("hub", false, "closed")

	comp := healthChecker.components["hub"]
	assert.False(t, comp.Healthy)
	assert.Equal(t, "closed", comp.Message)
	assert.False(t, comp.Updated.IsZero())
}

func TestHealthHandlers(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		components []componentState
		wantCode   int
		wantStatus string
	}{
		{name: "health ok", handler: HealthHandler(), components: relayUp(), wantCode: http.StatusOK, wantStatus: StatusHealthy},
		{
			name:       "health degraded is still 200",
			handler:    HealthHandler(),
			components: append(relayUp(), componentState{name: "metadata/dashboard", healthy: false}),
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name:       "health unhealthy",
			handler:    HealthHandler(),
			components: []componentState{{name: "hub", healthy: false, message: "broken"}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
		{name: "ready", handler: ReadyHandler(), components: relayUp(), wantCode: http.StatusOK, wantStatus: StatusReady},
		{
			name:       "not ready",
			handler:    ReadyHandler(),
			components: []componentState{{name: "api", healthy: true}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusNotReady,
		},
		{name: "live", handler: LivenessHandler(), wantCode: http.StatusOK, wantStatus: "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetHealth(t, tt.components...)

			w := httptest.NewRecorder()
			tt.handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body["status"])
		})
	}
}
