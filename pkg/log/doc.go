/*
Package log provides structured logging for starhunt using zerolog.

A single global Logger is configured once by the serve command and shared by
every component through child loggers that carry context fields. Until Init
runs the logger discards everything.

# Architecture

	┌──────────────────── LOGGING SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                    │          │
	│  │  - zerolog.Nop() until Init                 │          │
	│  │  - Level: debug/info/warn/error             │          │
	│  │  - Format: console (RFC3339) or JSON        │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Child Loggers                       │          │
	│  │  - WithComponent("hub")                     │          │
	│  │  - WithConnID("6f1c...")                    │          │
	│  │  - WithStar(identity) → world, x, y         │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Usage

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})

	logger := log.WithComponent("reconciler")
	logger.Info().Int("evicted", n).Msg("Sweep completed")

	connLog := log.WithConnID(conn.ID())
	connLog.Warn().Err(err).Msg("Dropping malformed message")

Console output:

	10:30:01 INF Observer connected component=api conn_id=6f1c...

JSON output:

	{"level":"info","component":"api","conn_id":"6f1c...","time":"2026-10-16T10:30:01Z","message":"Observer connected"}

# Levels

  - debug: skipped sends, per-message tracing
  - info: connections, sweeps that evicted something, metadata refreshes
  - warn: malformed or rate-limited input, failed metadata refresh
  - error: listener failures, persistence failures
*/
package log
