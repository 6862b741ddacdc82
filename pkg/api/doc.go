/*
Package api serves observer WebSocket connections and the relay's read-only
HTTP endpoints on a single port.

# Architecture

	┌──────────────── OBSERVERS (game-client plugins) ───────────┐
	│   ws://relay:8080  (JSON envelopes {"type", "data"})         │
	└─────────────────────┬────────────────────────────────────────┘
	                      │ upgrade on any path
	┌─────────────────────▼──── STARHUNT RELAY ──────────────────┐
	│                                                              │
	│  ┌──────────────────────────────────────────────┐          │
	│  │                Server (pkg/api)               │          │
	│  │  - WebSocket upgrade → Conn                   │          │
	│  │  - GET /stars /spawn-times /dashboard         │          │
	│  │  - GET /health /ready /live /metrics          │          │
	│  └──────────────────┬───────────────────────────┘          │
	│                     │                                        │
	│  ┌──────────────────▼───────────────────────────┐          │
	│  │              Conn (one per observer)          │          │
	│  │  read pump:  size limit, pong deadline,       │          │
	│  │              token-bucket rate limit           │          │
	│  │  write pump: bounded queue, pings, close      │          │
	│  └──────────────────┬───────────────────────────┘          │
	│                     │ Register / HandleMessage / Unregister  │
	│  ┌──────────────────▼───────────────────────────┐          │
	│  │                  pkg/hub                      │          │
	│  └──────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────────┘

# Connection Lifecycle

serveWS upgrades the request, starts the write pump, registers the
connection with the hub (which queues the STAR_SYNC snapshot and any cached
metadata) and then runs the read pump on the request goroutine. When the
read pump exits the connection is unregistered and closed.

Send never blocks the hub. Each connection owns a bounded queue; an
observer that falls behind far enough to fill it is disconnected with
ErrSendQueueFull and can reconnect for a fresh snapshot.

Malformed frames and frames over the rate limit are dropped and counted in
starhunt_messages_rejected_total. Neither closes the connection.

# HTTP Endpoints

	GET /stars        current snapshot, same order as STAR_SYNC
	GET /spawn-times  cached spawn-time table (503 before the first load)
	GET /dashboard    cached dashboard, or the fallback texts
	GET /health       component health (200 healthy/degraded, 503 unhealthy)
	GET /ready        readiness of hub, reconciler and api
	GET /live         liveness and uptime
	GET /metrics      Prometheus exposition

Every non-WebSocket route is read-only; other methods get 405. There is no
authentication.

# Usage

	server := api.NewServer(hub, api.Config{
		Addr:    ":8080",
		Conn:    api.DefaultConnConfig(),
		Version: version,
	})
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("API server failed")
		}
	}()
	defer server.Shutdown(ctx)
*/
package api
