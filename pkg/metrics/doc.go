/*
Package metrics provides Prometheus metrics, health checks and the stats
collector for the starhunt relay.

Collectors are package-level variables registered in init, so any package
can record a measurement without wiring. The HTTP server exposes them on
/metrics next to the health endpoints defined here.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │        Prometheus Collectors                │          │
	│  │  - Observers: connected, accepted, peak     │          │
	│  │  - Messages: received, rejected, rate       │          │
	│  │  - Fan-out: broadcasts, skipped sends       │          │
	│  │  - Stars: active, evicted, sweep duration   │          │
	│  │  - Metadata: refreshes by source/result     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Stats Collector                   │          │
	│  │  - Samples the hub's counters               │          │
	│  │  - Every 60s: accepted, peak, rate, stars   │          │
	│  │  - Sets gauges and logs one summary line    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Health Registry                   │          │
	│  │  - Critical: hub, reconciler, api           │          │
	│  │  - Others (metadata) only degrade health    │          │
	│  │  - /health, /ready, /live                   │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

	starhunt_observers_connected            gauge
	starhunt_observers_accepted_total       counter
	starhunt_observers_peak                 gauge
	starhunt_messages_received_total        counter  {type}
	starhunt_messages_rejected_total        counter  {reason}
	starhunt_message_rate                   gauge
	starhunt_broadcasts_total               counter  {type}
	starhunt_sends_skipped_total            counter
	starhunt_stars_active                   gauge
	starhunt_stars_evicted_total            counter  {reason}
	starhunt_sweep_duration_seconds         histogram
	starhunt_metadata_refresh_total         counter  {source, result}

# Usage

Timing an operation:

	timer := metrics.NewTimer()
	evicted := hub.Sweep()
	timer.ObserveDuration(metrics.SweepDuration)

Reporting component health:

	metrics.RegisterComponent("hub", true, "")
	metrics.UpdateComponent("metadata", false, err.Error())

# Health Semantics

GetHealth reports "unhealthy" (503) when a critical component is unhealthy
and "degraded" (200) when only a non-critical one is. GetReadiness only
looks at critical components and reports "not_ready" until each of them
has registered as healthy.
*/
package metrics
