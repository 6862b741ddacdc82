/*
Package hub is the relay's single owned state container.

A Hub holds the star store, the observer registry and the cached reference
metadata behind one mutex. Every operation that touches them runs to
completion under that lock, which is what makes reports for the same star
apply in receipt order and lets a new observer see a consistent snapshot.

# Architecture

	            observers (api.Conn)
	     ┌───────────┬───────────┬───────────┐
	     │ read loop │ read loop │ read loop │
	     └─────┬─────┴─────┬─────┴─────┬─────┘
	           │ HandleMessage          │
	           ▼                        ▼
	┌──────────────────── HUB ─────────────────────────────────┐
	│  mu ─┬─ store (StarStore, resolver on every Upsert)       │
	│      ├─ conns (registry)                                  │
	│      └─ spawnTimes / dashboard                            │
	│                                                            │
	│  commit: take sendMu, release mu, deliver                  │
	└──────────────────────────┬───────────────────────────────┘
	                           │ Conn.Send (non-blocking enqueue)
	                           ▼
	     ┌───────────┬───────────┬───────────┐
	     │write pump │write pump │write pump │
	     └───────────┴───────────┴───────────┘

# Fan-out

Each mutation encodes its frame and copies the target list while holding
mu. It then acquires sendMu before releasing mu, so frames are delivered in
the order their mutations committed, without holding the state lock during
delivery. Connections that are no longer open are skipped. Conn.Send only
queues the frame; a connection whose queue is full closes itself, which is
the only remedy for a slow observer.

	┌───────────────────────┬───────────────────────────────────┐
	│ trigger               │ frame                             │
	├───────────────────────┼───────────────────────────────────┤
	│ Register              │ STAR_SYNC (+ SPAWN_TIMES,         │
	│                       │ DASHBOARD when cached) to the new │
	│                       │ observer only                     │
	│ report changed stars  │ one STAR_UPDATE list to all       │
	│ removal of a record   │ STAR_SYNC to all                  │
	│ sweep evicted records │ STAR_SYNC to all                  │
	│ periodic sync         │ STAR_SYNC to all                  │
	│ metadata refresh      │ SPAWN_TIMES or DASHBOARD to all   │
	└───────────────────────┴───────────────────────────────────┘

The reporter is a regular target and receives its own update back.

# Clock Policy

With TrustClientClock set, a report is judged by its own timestamp and a
missing timestamp falls back to receipt time. Without it, every report is
stamped with receipt time and any client firstFound is discarded.
*/
package hub
