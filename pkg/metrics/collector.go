package metrics

import (
	"sync"
	"time"

	"github.com/cuemby/starhunt/pkg/events"
	"github.com/cuemby/starhunt/pkg/log"
	"github.com/rs/zerolog"
)

// Counters are the relay's running totals, kept by the state owner
type Counters struct {
	Accepted uint64
	Current  int
	Peak     int
	Messages uint64
	Stars    int
}

// Source reports the relay's live counters
type Source interface {
	Counters() Counters
}

// Stats is one snapshot of the relay's traffic counters
type Stats struct {
	Accepted      uint64  `json:"accepted"`
	Current       int     `json:"current"`
	Peak          int     `json:"peak"`
	MessageRate   float64 `json:"messageRate"`
	Stars         int     `json:"stars"`
	EventsDropped uint64  `json:"eventsDropped"`
}

// Collector is the stats collector. Every interval it samples the relay's
// counters, derives the message rate over the window and publishes a
// summary. It never touches relay state.
type Collector struct {
	source   Source
	broker   *events.Broker
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	now      func() time.Time

	mu           sync.Mutex
	windowStart  time.Time
	lastMessages uint64
	last         Stats
}

// NewCollector creates a new stats collector. broker may be nil; when set,
// its dropped event count is reported alongside the stats.
func NewCollector(source Source, broker *events.Broker, interval time.Duration) *Collector {
	return &Collector{
		source:      source,
		broker:      broker,
		interval:    interval,
		logger:      log.WithComponent("stats"),
		stopCh:      make(chan struct{}),
		now:         time.Now,
		windowStart: time.Now(),
	}
}

// Start begins collecting stats
func (c *Collector) Start() {
	c.mu.Lock()
	c.windowStart = c.now()
	c.lastMessages = c.source.Counters().Messages
	c.mu.Unlock()

	ticker := time.NewTicker(c.interval)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop stops the collector and waits for the loop to exit
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}

// Stats returns the summary computed by the last collection
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *Collector) collect() Stats {
	counters := c.source.Counters()

	c.mu.Lock()
	now := c.now()
	elapsed := now.Sub(c.windowStart).Seconds()
	var rate float64
	if elapsed > 0 && counters.Messages >= c.lastMessages {
		rate = float64(counters.Messages-c.lastMessages) / elapsed
	}
	stats := Stats{
		Accepted:    counters.Accepted,
		Current:     counters.Current,
		Peak:        counters.Peak,
		MessageRate: rate,
		Stars:       counters.Stars,
	}
	if c.broker != nil {
		stats.EventsDropped = c.broker.Dropped()
	}
	c.lastMessages = counters.Messages
	c.windowStart = now
	c.last = stats
	c.mu.Unlock()

	ObserversPeak.Set(float64(stats.Peak))
	MessageRate.Set(stats.MessageRate)
	StarsActive.Set(float64(stats.Stars))

	c.logger.Info().
		Uint64("accepted", stats.Accepted).
		Int("current", stats.Current).
		Int("peak", stats.Peak).
		Float64("message_rate", stats.MessageRate).
		Int("stars", stats.Stars).
		Uint64("events_dropped", stats.EventsDropped).
		Msg("Relay stats")

	return stats
}
