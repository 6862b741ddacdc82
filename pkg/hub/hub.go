package hub

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/starhunt/pkg/events"
	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/cuemby/starhunt/pkg/protocol"
	"github.com/cuemby/starhunt/pkg/storage"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/rs/zerolog"
)

var (
	// ErrClosed is returned when registering with a hub that has shut down
	ErrClosed = errors.New("hub is closed")

	// ErrUnknownType is returned for well-formed messages of a type the
	// relay does not accept from observers
	ErrUnknownType = errors.New("unknown message type")
)

// Conn is one observer connection as seen by the hub. Send must not block:
// it enqueues the frame and leaves the transport write to the connection.
type Conn interface {
	ID() string
	Open() bool
	Send(msg []byte) error
	Close() error
}

// Config holds the eviction bounds and clock policy
type Config struct {
	MaxAge           time.Duration
	MaxInactivity    time.Duration
	TrustClientClock bool
}

// DefaultConfig returns the production bounds: 93 minutes from first
// sighting, 2 hours without an accepted update.
func DefaultConfig() Config {
	return Config{
		MaxAge:           93 * time.Minute,
		MaxInactivity:    2 * time.Hour,
		TrustClientClock: true,
	}
}

// outbound is one encoded frame and the connections it goes to
type outbound struct {
	kind    protocol.MessageType
	msg     []byte
	targets []Conn
}

// Hub owns the star store and the connection registry. Every mutation runs
// to completion under mu. Frames computed under mu are handed to sendMu
// before mu is released, so observers receive them in commit order while
// the state lock is never held during delivery.
type Hub struct {
	cfg    Config
	store  storage.StarStore
	broker *events.Broker
	now    func() time.Time
	logger zerolog.Logger

	mu         sync.Mutex
	sendMu     sync.Mutex
	conns      map[string]Conn
	spawnTimes []types.SpawnTime
	dashboard  *types.Dashboard
	closed     bool
	accepted   uint64
	peak       int

	messages atomic.Uint64
}

// New creates a hub around store. broker may be nil.
func New(cfg Config, store storage.StarStore, broker *events.Broker) *Hub {
	return &Hub{
		cfg:    cfg,
		store:  store,
		broker: broker,
		now:    time.Now,
		logger: log.WithComponent("hub"),
		conns:  make(map[string]Conn),
	}
}

// Register adds conn and sends it the full snapshot followed by any cached
// metadata. The snapshot is queued before any later delta can reach conn.
func (h *Hub) Register(conn Conn) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}

	out := []outbound{h.snapshotLocked([]Conn{conn})}
	if h.spawnTimes != nil {
		out = append(out, h.encodeLocked(protocol.SpawnTimes, h.spawnTimes, []Conn{conn}))
	}
	if h.dashboard != nil {
		out = append(out, h.encodeLocked(protocol.Dashboard, *h.dashboard, []Conn{conn}))
	}

	h.conns[conn.ID()] = conn
	count := len(h.conns)
	h.accepted++
	h.peak = max(h.peak, count)
	h.publish(events.EventObserverJoined, "observer connected", map[string]string{"conn_id": conn.ID()})

	metrics.ObserversAccepted.Inc()
	metrics.ObserversConnected.Set(float64(count))
	h.logger.Info().Str("conn_id", conn.ID()).Int("observers", count).Msg("Observer registered")

	h.commit(out)
	return nil
}

// Unregister removes conn from the registry. It reports whether conn was
// registered.
func (h *Hub) Unregister(conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn.ID()]; !ok {
		return false
	}
	delete(h.conns, conn.ID())
	count := len(h.conns)
	h.publish(events.EventObserverLeft, "observer disconnected", map[string]string{"conn_id": conn.ID()})

	metrics.ObserversConnected.Set(float64(count))
	h.logger.Info().Str("conn_id", conn.ID()).Int("observers", count).Msg("Observer unregistered")
	return true
}

// HandleMessage decodes one inbound frame from conn and applies it.
// Malformed input is logged and dropped; the returned error only describes
// what was dropped and never means the connection should close.
func (h *Hub) HandleMessage(conn Conn, raw []byte) error {
	h.messages.Add(1)
	connLog := h.logger.With().Str("conn_id", conn.ID()).Logger()

	env, err := protocol.Decode(raw)
	if err != nil {
		metrics.MessagesRejected.WithLabelValues("malformed").Inc()
		connLog.Warn().Err(err).Msg("Dropping malformed message")
		return err
	}

	metrics.MessagesReceived.WithLabelValues(string(env.Type)).Inc()
	h.publish(events.EventMessageReceived, "", map[string]string{
		"conn_id": conn.ID(),
		"type":    string(env.Type),
	})

	switch env.Type {
	case protocol.StarUpdate:
		reports, rejected, err := protocol.DecodeReports(env.Data)
		if err != nil {
			metrics.MessagesRejected.WithLabelValues("malformed").Inc()
			connLog.Warn().Err(err).Msg("Dropping malformed star update")
			return err
		}
		for _, reason := range rejected {
			metrics.MessagesRejected.WithLabelValues("invalid").Inc()
			connLog.Warn().Err(reason).Msg("Dropping invalid report")
		}
		h.ApplyReports(reports)
		if len(rejected) > 0 {
			return errors.Join(rejected...)
		}
		return nil

	case protocol.StarRemove:
		id, err := protocol.DecodeRemoval(env.Data)
		if err != nil {
			metrics.MessagesRejected.WithLabelValues("invalid").Inc()
			connLog.Warn().Err(err).Msg("Dropping invalid removal")
			return err
		}
		h.Remove(id)
		return nil

	default:
		metrics.MessagesRejected.WithLabelValues("unknown_type").Inc()
		connLog.Warn().Str("type", string(env.Type)).Msg("Ignoring unhandled message type")
		return fmt.Errorf("%w: %s", ErrUnknownType, env.Type)
	}
}

// ApplyReports resolves each report against the store in order. Records
// that changed go to every observer, the reporter included, as a single
// STAR_UPDATE carrying the final record per identity in first-seen order.
// It returns the changed records.
func (h *Hub) ApplyReports(reports []types.Report) []types.Star {
	h.mu.Lock()
	now := h.now()

	var changed []types.Star
	index := make(map[types.Identity]int)
	for _, report := range reports {
		if err := report.Validate(); err != nil {
			h.logger.Warn().Err(err).Msg("Skipping invalid report")
			continue
		}
		report = h.stamp(report, now)
		id := report.Identity()
		_, existed := h.store.Get(id)

		star, ok := h.store.Upsert(id, report)
		if !ok {
			continue
		}
		if i, seen := index[id]; seen {
			changed[i] = star
		} else {
			index[id] = len(changed)
			changed = append(changed, star)
		}

		eventType := events.EventStarUpdated
		if !existed {
			eventType = events.EventStarCreated
		}
		h.publish(eventType, id.String(), starMetadata(star))
	}

	if len(changed) == 0 {
		h.mu.Unlock()
		return nil
	}

	metrics.StarsActive.Set(float64(h.store.Len()))
	h.commit([]outbound{h.encodeLocked(protocol.StarUpdate, changed, nil)})
	return changed
}

// Remove deletes the record under id and, if one existed, sends the new
// full snapshot to every observer. Removing an unknown identity does
// nothing.
func (h *Hub) Remove(id types.Identity) bool {
	h.mu.Lock()
	star, ok := h.store.Get(id)
	if !ok || !h.store.Remove(id) {
		h.mu.Unlock()
		return false
	}
	h.publish(events.EventStarRemoved, id.String(), starMetadata(star))

	metrics.StarsActive.Set(float64(h.store.Len()))
	starLog := log.WithStar(id)
	starLog.Info().Msg("Star removed by observer")
	h.commit([]outbound{h.snapshotLocked(nil)})
	return true
}

// Sweep evicts records past the age or inactivity bound. A non-empty
// eviction set produces one full snapshot for every observer.
func (h *Hub) Sweep() []storage.Eviction {
	h.mu.Lock()
	evicted := h.store.Sweep(h.now(), h.cfg.MaxAge, h.cfg.MaxInactivity)
	if len(evicted) == 0 {
		h.mu.Unlock()
		return nil
	}

	for _, ev := range evicted {
		metrics.StarsEvicted.WithLabelValues(string(ev.Reason)).Inc()
		md := starMetadata(ev.Star)
		md["reason"] = string(ev.Reason)
		h.publish(events.EventStarExpired, ev.Identity.String(), md)
	}
	metrics.StarsActive.Set(float64(h.store.Len()))
	h.logger.Info().Int("evicted", len(evicted)).Int("remaining", h.store.Len()).Msg("Evicted stale stars")

	h.commit([]outbound{h.snapshotLocked(nil)})
	return evicted
}

// SyncAll sends the full snapshot to every observer. It does nothing when
// there are no observers or no records, and reports whether it sent.
func (h *Hub) SyncAll() bool {
	h.mu.Lock()
	if len(h.conns) == 0 || h.store.Len() == 0 {
		h.mu.Unlock()
		return false
	}
	h.commit([]outbound{h.snapshotLocked(nil)})
	return true
}

// BroadcastSnapshot sends the full snapshot to targets, or to every
// registered observer when none are given.
func (h *Hub) BroadcastSnapshot(targets ...Conn) {
	h.mu.Lock()
	h.commit([]outbound{h.snapshotLocked(targets)})
}

// BroadcastDelta sends a single record to targets, or to every registered
// observer when none are given.
func (h *Hub) BroadcastDelta(star types.Star, targets ...Conn) {
	h.mu.Lock()
	h.commit([]outbound{h.encodeLocked(protocol.StarUpdate, []types.Star{star}, targets)})
}

// SetSpawnTimes replaces the cached spawn-time table wholesale and pushes it
// to every observer.
func (h *Hub) SetSpawnTimes(spawnTimes []types.SpawnTime) {
	h.mu.Lock()
	h.spawnTimes = append(make([]types.SpawnTime, 0, len(spawnTimes)), spawnTimes...)
	h.publish(events.EventMetadataRefreshed, "spawn times refreshed", map[string]string{
		"source": "spawn-times",
		"rows":   fmt.Sprint(len(spawnTimes)),
	})
	h.commit([]outbound{h.encodeLocked(protocol.SpawnTimes, h.spawnTimes, nil)})
}

// SetDashboard replaces the cached dashboard and pushes it to every
// observer.
func (h *Hub) SetDashboard(dashboard types.Dashboard) {
	h.mu.Lock()
	h.dashboard = &dashboard
	h.publish(events.EventMetadataRefreshed, "dashboard refreshed", map[string]string{
		"source": "dashboard",
	})
	h.commit([]outbound{h.encodeLocked(protocol.Dashboard, dashboard, nil)})
}

// Snapshot returns every live record
func (h *Hub) Snapshot() []types.Star {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Snapshot()
}

// SpawnTimes returns the cached spawn-time table and whether one was loaded
func (h *Hub) SpawnTimes() ([]types.SpawnTime, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.spawnTimes == nil {
		return nil, false
	}
	return append([]types.SpawnTime(nil), h.spawnTimes...), true
}

// Dashboard returns the cached dashboard and whether one was loaded
func (h *Hub) Dashboard() (types.Dashboard, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dashboard == nil {
		return types.Dashboard{}, false
	}
	return *h.dashboard, true
}

// StarCount returns the number of live records
func (h *Hub) StarCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Len()
}

// Counters returns the relay's running totals. Accepted, current and peak
// are read together under the state lock so they always agree.
func (h *Hub) Counters() metrics.Counters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return metrics.Counters{
		Accepted: h.accepted,
		Current:  len(h.conns),
		Peak:     h.peak,
		Messages: h.messages.Load(),
		Stars:    h.store.Len(),
	}
}

// ConnCount returns the number of registered observers
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Close unregisters and closes every observer. Later registrations fail
// with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conns := h.targetsLocked()
	h.conns = make(map[string]Conn)
	h.mu.Unlock()

	metrics.ObserversConnected.Set(0)
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			h.logger.Debug().Err(err).Str("conn_id", conn.ID()).Msg("Failed to close observer")
		}
	}
	h.logger.Info().Int("observers", len(conns)).Msg("Hub closed")
}

// stamp applies the clock policy to a report before it is resolved
func (h *Hub) stamp(report types.Report, now time.Time) types.Report {
	if !h.cfg.TrustClientClock {
		report.Timestamp = types.At(now)
		report.FirstFound = types.Timestamp{}
		return report
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = types.At(now)
	}
	return report
}

func (h *Hub) snapshotLocked(targets []Conn) outbound {
	return h.encodeLocked(protocol.StarSync, h.store.Snapshot(), targets)
}

func (h *Hub) encodeLocked(kind protocol.MessageType, data any, targets []Conn) outbound {
	msg, err := protocol.Encode(kind, data)
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(kind)).Msg("Failed to encode broadcast")
		return outbound{kind: kind}
	}
	if len(targets) == 0 {
		targets = h.targetsLocked()
	}
	return outbound{kind: kind, msg: msg, targets: targets}
}

func (h *Hub) targetsLocked() []Conn {
	targets := make([]Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		targets = append(targets, conn)
	}
	return targets
}

// commit must be called with mu held. It takes the delivery lock, releases
// mu and delivers out.
func (h *Hub) commit(out []outbound) {
	h.sendMu.Lock()
	h.mu.Unlock()
	defer h.sendMu.Unlock()

	for _, o := range out {
		if o.msg == nil {
			continue
		}
		metrics.BroadcastsTotal.WithLabelValues(string(o.kind)).Inc()
		for _, conn := range o.targets {
			if !conn.Open() {
				metrics.SendsSkipped.Inc()
				continue
			}
			if err := conn.Send(o.msg); err != nil {
				metrics.SendsSkipped.Inc()
				h.logger.Debug().Err(err).Str("conn_id", conn.ID()).Str("type", string(o.kind)).Msg("Skipped send")
			}
		}
	}
}

func (h *Hub) publish(eventType events.EventType, message string, metadata map[string]string) {
	if h.broker == nil {
		return
	}
	h.broker.Publish(&events.Event{
		Type:     eventType,
		Message:  message,
		Metadata: metadata,
	})
}

func starMetadata(star types.Star) map[string]string {
	return map[string]string{
		"world": fmt.Sprint(star.World),
		"x":     fmt.Sprint(star.Location.X),
		"y":     fmt.Sprint(star.Location.Y),
		"tier":  fmt.Sprint(star.Tier),
	}
}
