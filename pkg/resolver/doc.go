/*
Package resolver holds the conflict policy for star reports.

Observers report the same star many times, out of order and sometimes in
contradiction with each other. Resolve is the one place that decides what
the canonical record becomes. It is a pure function: no clock, no locks, no
I/O, so every rule can be exercised in a table test.

	existing (or nil) + report  ──►  Resolve  ──►  record, changed

	tier       only rises; a rise resets health to 100
	health     known readings replace unknown or strictly older ones
	miners     same as health
	active     true → false, never back
	backup     true → false, never back
	firstFound fixed when the record is created
	lastUpdate moves forward when a change is accepted

Re-applying a report that has already been applied returns changed=false.
Timestamps that tie with lastUpdate keep the existing reading.
*/
package resolver
