package main

import (
	"github.com/cuemby/starhunt/pkg/events"
	"github.com/cuemby/starhunt/pkg/log"
)

// startEventLog writes star lifecycle and metadata events to the debug log.
// The returned func unsubscribes and waits for the loop to drain.
func startEventLog(broker *events.Broker) func() {
	logger := log.WithComponent("events")
	sub := broker.SubscribeTypes(
		events.EventStarCreated,
		events.EventStarRemoved,
		events.EventStarExpired,
		events.EventMetadataRefreshed,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range sub {
			entry := logger.Debug().
				Str("event_id", event.ID).
				Str("type", string(event.Type)).
				Time("at", event.Timestamp)
			for k, v := range event.Metadata {
				entry = entry.Str(k, v)
			}
			entry.Msg(event.Message)
		}
	}()

	return func() {
		broker.Unsubscribe(sub)
		<-done
	}
}
