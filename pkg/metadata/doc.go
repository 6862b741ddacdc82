/*
Package metadata keeps the relay's reference data in step with a published
spreadsheet.

Two tabs are read: the spawn-time table (average spawn interval per world)
and the dashboard (wave countdown texts). Observers never write either; the
relay pulls them on a timer and pushes every successful result.

	 Refresher (every 60s)
	       │
	       ▼
	 Fetcher ── GET ?cachebust=<ms> ──► sheet CSV export
	       │      no-cache headers
	       ▼
	 csv rows ── NFKC ──► ParseSpawnTimes / ParseDashboard
	       │
	  ok?  ├── no ──► log, keep previous value, wait for next tick
	       │
	       ▼ yes
	 Cache.Set ──► Persister.SaveMetadata (optional)
	       │
	       ▼
	 onUpdate ──► hub.SetSpawnTimes / hub.SetDashboard ──► observers

# Parsing

The spawn-time tab starts with three title and header rows; after them the
first column is the world and the second the average interval. The
dashboard tab has no fixed layout, so every cell is checked for a known
label and the value is taken from the cell to its right:

	"minutes until end of wave", "wave ends"       → WaveEndsIn
	"time since wave began", "wave began"          → TimeSinceWaveBegan
	"when to start scouting", "start scouting"     → StartScoutingIn
	"time until spawn phase ends", "spawn phase"   → SpawnPhaseStatus

Fields that are never found keep their defaults, and a spawn phase value
mentioning "fully" becomes "Fully spawned".

# Failure Handling

A fetch or parse failure never clears the cache and is not retried early.
With a Persister configured, Seed restores the last good values on start so
a restart during a sheet outage still serves data.
*/
package metadata
