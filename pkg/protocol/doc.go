/*
Package protocol defines the JSON frames exchanged with observers.

Every frame is an envelope:

	{"type": "STAR_UPDATE", "data": ...}

	┌──────────────┬──────────────────┬─────────────────────────────────┐
	│ type         │ direction        │ data                            │
	├──────────────┼──────────────────┼─────────────────────────────────┤
	│ STAR_UPDATE  │ both             │ one report/record or a list     │
	│ STAR_REMOVE  │ observer→server  │ {world, location}               │
	│ STAR_SYNC    │ server→observer  │ every live record               │
	│ SPAWN_TIMES  │ server→observer  │ [{world, averageSpawnInterval}] │
	│ DASHBOARD    │ server→observer  │ wave countdown texts            │
	└──────────────┴──────────────────┴─────────────────────────────────┘

A frame without a type or without data fails Decode. Unknown types decode
fine; the hub decides to ignore them. Report lists are validated item by
item so one bad sighting does not discard its neighbours.
*/
package protocol
