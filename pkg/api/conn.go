package api

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	// ErrConnClosed is returned when sending to a closed connection
	ErrConnClosed = errors.New("connection closed")

	// ErrSendQueueFull is returned when an observer falls too far behind.
	// The connection is closed before it is returned.
	ErrSendQueueFull = errors.New("send queue full")
)

// ConnConfig holds per-connection transport limits
type ConnConfig struct {
	// SendQueue is the number of frames buffered per observer
	SendQueue int

	// MaxMessageSize is the largest inbound frame accepted, in bytes
	MaxMessageSize int64

	// WriteWait bounds each frame write
	WriteWait time.Duration

	// PongWait is how long to wait for any inbound frame or pong
	PongWait time.Duration

	// RateLimit and RateBurst bound inbound messages per connection
	RateLimit rate.Limit
	RateBurst int
}

// DefaultConnConfig returns the limits used in production
func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		SendQueue:      256,
		MaxMessageSize: 64 << 10,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		RateLimit:      rate.Limit(20),
		RateBurst:      40,
	}
}

func (c ConnConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Conn is one observer's WebSocket connection. Frames queued with Send are
// written by a dedicated write pump, so the hub never waits on the network.
type Conn struct {
	id      string
	ws      *websocket.Conn
	cfg     ConnConfig
	send    chan []byte
	done    chan struct{}
	open    atomic.Bool
	once    sync.Once
	limiter *rate.Limiter
	logger  zerolog.Logger
}

func newConn(ws *websocket.Conn, cfg ConnConfig) *Conn {
	id := uuid.New().String()
	c := &Conn{
		id:      id,
		ws:      ws,
		cfg:     cfg,
		send:    make(chan []byte, cfg.SendQueue),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		logger:  log.WithConnID(id),
	}
	c.open.Store(true)
	return c
}

// ID returns the connection id
func (c *Conn) ID() string {
	return c.id
}

// Open reports whether the connection still accepts frames
func (c *Conn) Open() bool {
	return c.open.Load()
}

// Send queues msg for the write pump without blocking. An observer whose
// queue is full is disconnected.
func (c *Conn) Send(msg []byte) error {
	if !c.Open() {
		return ErrConnClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn().Int("queued", len(c.send)).Msg("Send queue full, closing slow observer")
		_ = c.Close()
		return ErrSendQueueFull
	}
}

// Close marks the connection closed and tells the write pump to send a
// close frame and release the socket. It never blocks and is safe to call
// more than once.
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.open.Store(false)
		close(c.done)
	})
	return nil
}

// readPump feeds inbound frames to the relay until the connection fails.
// Frames over the rate limit are dropped; the connection stays open.
func (c *Conn) readPump(relay Relay) {
	defer func() {
		relay.Unregister(c)
		_ = c.Close()
	}()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("Observer connection lost")
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))

		if !c.limiter.Allow() {
			metrics.MessagesRejected.WithLabelValues("rate_limited").Inc()
			c.logger.Warn().Msg("Dropping message over rate limit")
			continue
		}

		// Errors are logged by the relay and never close the connection
		_ = relay.HandleMessage(c, msg)
	}
}

// writePump writes queued frames and keepalive pings
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug().Err(err).Msg("Write failed")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(c.cfg.WriteWait),
			)
			return
		}
	}
}
