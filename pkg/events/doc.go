/*
Package events provides an in-memory event feed for the relay.

The hub publishes an event for every observable state change, and
observational components (the stats collector, debug logging) subscribe to
it. Nothing that affects star state ever depends on an event being
delivered.

# Architecture

	┌──────────────────── EVENT BROKER ────────────────────────┐
	│                                                            │
	│  Hub (under its lock)                                      │
	│       │ Publish (never blocks)                             │
	│       ▼                                                    │
	│  Event Channel (buffer: 256) ── full? → dropped counter    │
	│       │                                                    │
	│       ▼                                                    │
	│  Broadcast Loop                                            │
	│       │                                                    │
	│       ▼                                                    │
	│  Subscriber Channels (buffer: 64 each) ── full? → skip     │
	│       │                                                    │
	│       ▼                                                    │
	│  metrics.Collector, ...                                    │
	└────────────────────────────────────────────────────────┘

# Event Types

Star events:
  - star.created: first accepted report for an identity
  - star.updated: a report changed an existing record
  - star.removed: an observer reported a despawn
  - star.expired: the sweeper evicted a record

Observer events:
  - observer.joined, observer.left
  - message.received: one inbound frame, with its type in Metadata["type"]

Metadata events:
  - metadata.refreshed: a spreadsheet refresh replaced the cache

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("%s %s\n", event.Type, event.Message)
		}
	}()

	broker.Publish(&events.Event{
		Type:     events.EventObserverJoined,
		Metadata: map[string]string{"conn_id": id},
	})

# Delivery

Publish differs from a classic bus in one way: it drops instead of waiting
when the queue is full. The hub calls it while holding the state lock, and a
stalled subscriber must never stall report handling. Dropped events are
counted and exposed through Dropped.
*/
package events
