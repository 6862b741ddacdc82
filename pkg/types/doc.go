/*
Package types defines the data shared by every starhunt component.

A Star is the canonical record the relay keeps for one spawn. A Report is
what an observer sends about a star; the resolver folds reports into stars.
Both are keyed by Identity, the pair of world number and Location, because
a world can host several stars at different coordinates at the same time.

# Readings

Health and miner counts are Values: a known integer or unknown. Observers
historically encoded "unknown" as the string "?" for miners and as a
negative number for health; both forms, along with null and the empty
string, decode into the unknown Value. Unknown Values encode as null.

	{"health": 80}    -> Known(80)
	{"health": -1}    -> Unknown
	{"miners": "?"}   -> Unknown
	{"miners": "4"}   -> Known(4)
	(field omitted)   -> Unknown

Health above MaxHealth is clamped by Report.Normalize.

# Timestamps

Report times decode from either RFC 3339 text or unix milliseconds:

	{"timestamp": "2026-10-16T12:00:00Z"}
	{"timestamp": 1792152000000}

Stored stars always carry UTC RFC 3339 times in firstFound and lastUpdate.

# Reference metadata

SpawnTime and Dashboard carry the text scraped from the reference
spreadsheets. Observers can read them but never change them.
*/
package types
