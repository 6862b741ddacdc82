/*
Package reconciler provides the relay's timer-driven maintenance loops.

Two independent loops run for the lifetime of the process:

	┌────────────────────────────┐   ┌────────────────────────────┐
	│        Expiry Sweep        │   │       Periodic Sync        │
	│     (every 5 minutes)      │   │     (every 5 seconds)      │
	└─────────────┬──────────────┘   └─────────────┬──────────────┘
	              │                                │
	              ▼                                ▼
	   hub.Sweep(now, 93m, 2h)          any observers and stars?
	              │                                │
	      evicted anything?                        ▼ yes
	              │ yes                   STAR_SYNC to everyone
	              ▼
	     STAR_SYNC to everyone

# Expiry Sweep

A star is evicted when it was first found more than 93 minutes ago, even if
observers are still updating it, or when no accepted update arrived for 2
hours. One snapshot covers the whole eviction set; there are no per-star
removal messages. Each pass is timed into starhunt_sweep_duration_seconds.

# Periodic Sync

Deltas are best effort: a frame dropped by a closing connection or missed
during a reconnect is never replayed. The periodic full snapshot bounds how
long an observer can stay out of date.

# Usage

	r := reconciler.NewReconciler(hub, reconciler.DefaultConfig())
	r.Start()
	defer r.Stop()

Stop waits for both loops to exit, so no sweep or sync runs after it
returns.
*/
package reconciler
