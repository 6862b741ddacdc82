package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/starhunt/pkg/client"
	"github.com/cuemby/starhunt/pkg/hub"
	"github.com/cuemby/starhunt/pkg/protocol"
	"github.com/cuemby/starhunt/pkg/storage"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T, connCfg ConnConfig) (*hub.Hub, *httptest.Server) {
	t.Helper()
	h := hub.New(hub.DefaultConfig(), storage.NewMemoryStore(), nil)
	s := NewServer(h, Config{Conn: connCfg, Version: "test"})

	server := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		h.Close()
		server.Close()
	})
	return h, server
}

func dial(t *testing.T, server *httptest.Server) *client.Client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	c, err := client.Dial(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	msg, err := c.Receive(2 * time.Second)
	require.NoError(t, err)
	require.Equal(t, protocol.StarSync, msg.Type, "first frame is the snapshot")
	return c
}

func testReport(world int) types.Report {
	return types.Report{
		World:     world,
		Location:  types.Location{X: 10, Y: 20},
		Tier:      3,
		Health:    types.Known(100),
		Timestamp: types.At(time.Now()),
	}
}

func TestObserverRoundTrip(t *testing.T) {
	h, server := newTestServer(t, DefaultConnConfig())
	reporter := dial(t, server)
	watcher := dial(t, server)

	require.NoError(t, reporter.SendReports(testReport(5)))

	for _, c := range []*client.Client{reporter, watcher} {
		msg, err := c.ReceiveType(protocol.StarUpdate, 2*time.Second)
		require.NoError(t, err)
		require.Len(t, msg.Stars, 1)
		assert.Equal(t, 5, msg.Stars[0].World)
		assert.Equal(t, types.Known(100), msg.Stars[0].Health)
	}
	assert.Equal(t, 2, h.ConnCount())
}

func TestObserverRemoveSyncs(t *testing.T) {
	_, server := newTestServer(t, DefaultConnConfig())
	c := dial(t, server)

	require.NoError(t, c.SendReports(testReport(5), testReport(6)))
	_, err := c.ReceiveType(protocol.StarUpdate, 2*time.Second)
	require.NoError(t, err)

	require.NoError(t, c.Remove(types.Identity{World: 5, Location: types.Location{X: 10, Y: 20}}))

	msg, err := c.ReceiveType(protocol.StarSync, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, msg.Stars, 1)
	assert.Equal(t, 6, msg.Stars[0].World)
}

func TestMalformedMessageKeepsConnection(t *testing.T) {
	_, server := newTestServer(t, DefaultConnConfig())
	c := dial(t, server)

	require.NoError(t, c.SendRaw([]byte(`not json`)))
	require.NoError(t, c.SendRaw([]byte(`{"type":"STAR_UPDATE"}`)))
	require.NoError(t, c.SendRaw([]byte(`{"type":"HELLO","data":{}}`)))
	require.NoError(t, c.SendReports(testReport(7)))

	msg, err := c.Receive(2 * time.Second)
	require.NoError(t, err, "no reply to malformed input, connection still open")
	assert.Equal(t, protocol.StarUpdate, msg.Type)
	assert.Equal(t, 7, msg.Stars[0].World)
}

func TestRateLimitedMessagesDropped(t *testing.T) {
	cfg := DefaultConnConfig()
	cfg.RateLimit = rate.Every(time.Hour)
	cfg.RateBurst = 1
	h, server := newTestServer(t, cfg)

	flooder := dial(t, server)
	other := dial(t, server)

	require.NoError(t, flooder.SendReports(testReport(1)))
	require.NoError(t, flooder.SendReports(testReport(2)))
	require.NoError(t, flooder.SendReports(testReport(3)))

	msg, err := flooder.ReceiveType(protocol.StarUpdate, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Stars[0].World)

	// The flooder stays connected and still receives broadcasts
	require.NoError(t, other.SendReports(testReport(4)))
	msg, err = flooder.ReceiveType(protocol.StarUpdate, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 4, msg.Stars[0].World)
	assert.Equal(t, 2, h.StarCount())
}

func TestReceivesMetadataOnConnect(t *testing.T) {
	h, server := newTestServer(t, DefaultConnConfig())
	h.SetSpawnTimes([]types.SpawnTime{{World: "302", AverageSpawnInterval: "1:41"}})
	h.SetDashboard(types.DefaultDashboard())

	c := dial(t, server)

	msg, err := c.Receive(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.SpawnTimes, msg.Type)
	assert.Equal(t, "1:41", msg.SpawnTimes[0].AverageSpawnInterval)

	msg, err = c.Receive(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, protocol.Dashboard, msg.Type)
	assert.Equal(t, types.DashboardScoutNow, msg.Dashboard.StartScoutingIn)
}

func TestDisconnectUnregisters(t *testing.T) {
	h, server := newTestServer(t, DefaultConnConfig())
	c := dial(t, server)
	assert.Equal(t, 1, h.ConnCount())

	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return h.ConnCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubCloseDisconnectsObservers(t *testing.T) {
	h, server := newTestServer(t, DefaultConnConfig())
	c := dial(t, server)

	h.Close()

	_, err := c.Receive(2 * time.Second)
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	h := hub.New(hub.DefaultConfig(), storage.NewMemoryStore(), nil)
	s := NewServer(h, Config{Conn: DefaultConnConfig()})
	handler := s.Handler()

	t.Run("stars empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stars", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("stars", func(t *testing.T) {
		h.ApplyReports([]types.Report{testReport(5)})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stars", nil))

		var stars []types.Star
		require.NoError(t, json.NewDecoder(w.Body).Decode(&stars))
		require.Len(t, stars, 1)
		assert.Equal(t, 5, stars[0].World)
	})

	t.Run("spawn times before first refresh", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/spawn-times", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("dashboard defaults", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		var dashboard types.Dashboard
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
		assert.Equal(t, types.DefaultDashboard(), dashboard)
	})
}

func TestReadOnlyEndpoints(t *testing.T) {
	h := hub.New(hub.DefaultConfig(), storage.NewMemoryStore(), nil)
	handler := NewServer(h, Config{Conn: DefaultConnConfig()}).Handler()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "GET stars", method: http.MethodGet, path: "/stars", expectedStatus: http.StatusOK},
		{name: "POST stars", method: http.MethodPost, path: "/stars", expectedStatus: http.StatusMethodNotAllowed},
		{name: "DELETE stars", method: http.MethodDelete, path: "/stars", expectedStatus: http.StatusMethodNotAllowed},
		{name: "PUT dashboard", method: http.MethodPut, path: "/dashboard", expectedStatus: http.StatusMethodNotAllowed},
		{name: "GET live", method: http.MethodGet, path: "/live", expectedStatus: http.StatusOK},
		{name: "GET metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "GET unknown", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
