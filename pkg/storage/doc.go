/*
Package storage holds star state and reference metadata snapshots.

Two stores live here, with very different lifetimes:

	┌──────────────────── STORAGE ─────────────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            MemoryStore (StarStore)          │          │
	│  │  - map[Identity]Star                        │          │
	│  │  - Upsert runs resolver.Resolve             │          │
	│  │  - Sweep evicts by age or inactivity        │          │
	│  │  - lost on restart, rebuilt from reports    │          │
	│  └────────────────────────────────────────────┘          │
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            BoltStore (MetadataStore)        │          │
	│  │  - File: <dataDir>/starhunt.db              │          │
	│  │  - Bucket: metadata (key → JSON snapshot)   │          │
	│  │  - last good spawn times and dashboard      │          │
	│  └────────────────────────────────────────────┘          │
	└────────────────────────────────────────────────────────┘

# Star state

MemoryStore is deliberately unsynchronized. The hub owns it and calls it
under the same lock that guards the connection registry, so every report,
removal and sweep runs to completion before the next one starts.

Sweep applies two bounds at once:

	now - firstFound > maxAge         → EvictionExpired
	now - lastUpdate > maxInactivity  → EvictionInactive

The absolute bound applies even to a star that is still being reported.
A bound of zero disables it.

# Metadata snapshots

BoltStore is optional. When the relay runs with a data directory, each
successful spreadsheet refresh is saved, and the metadata cache is seeded
from it on start. Values are stored as JSON with the time they were saved:

	store, err := storage.NewBoltStore("/var/lib/starhunt")
	if err != nil {
		return err
	}
	defer store.Close()

	_ = store.SaveMetadata("spawn-times", spawnTimes)

	var cached []types.SpawnTime
	found, err := store.LoadMetadata("spawn-times", &cached)
*/
package storage
