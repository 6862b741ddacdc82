package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/starhunt/pkg/protocol"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/gorilla/websocket"
)

// Message is one decoded server frame
type Message struct {
	Type       protocol.MessageType
	Stars      []types.Star
	SpawnTimes []types.SpawnTime
	Dashboard  *types.Dashboard
}

// Client is an observer connection to a starhunt relay
type Client struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Dial connects to the relay at url (ws:// or wss://)
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{ws: ws}, nil
}

// Close sends a close frame and closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.mu.Unlock()
	return c.ws.Close()
}

// SendReports submits star sightings. A single report is sent as an object,
// several as a list.
func (c *Client) SendReports(reports ...types.Report) error {
	if len(reports) == 1 {
		return c.Send(protocol.StarUpdate, reports[0])
	}
	return c.Send(protocol.StarUpdate, reports)
}

// Remove reports that the star at id has despawned
func (c *Client) Remove(id types.Identity) error {
	return c.Send(protocol.StarRemove, map[string]any{
		"world":    id.World,
		"location": id.Location,
	})
}

// Send encodes data in an envelope of type t and writes it
func (c *Client) Send(t protocol.MessageType, data any) error {
	msg, err := protocol.Encode(t, data)
	if err != nil {
		return err
	}
	return c.SendRaw(msg)
}

// SendRaw writes msg unchanged
func (c *Client) SendRaw(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Receive waits up to timeout for the next server frame. A zero timeout
// waits forever.
func (c *Client) Receive(timeout time.Duration) (*Message, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.ws.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	_, raw, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to receive message: %w", err)
	}

	env, err := protocol.Decode(raw)
	if err != nil {
		return nil, err
	}
	return decodeMessage(env)
}

// ReceiveType reads frames until one of type t arrives or timeout passes
func (c *Client) ReceiveType(t protocol.MessageType, timeout time.Duration) (*Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timed out waiting for %s", t)
		}
		msg, err := c.Receive(remaining)
		if err != nil {
			return nil, err
		}
		if msg.Type == t {
			return msg, nil
		}
	}
}

func decodeMessage(env protocol.Envelope) (*Message, error) {
	msg := &Message{Type: env.Type}

	switch env.Type {
	case protocol.StarSync, protocol.StarUpdate:
		stars, err := protocol.DecodeStars(env.Data)
		if err != nil {
			return nil, err
		}
		msg.Stars = stars
	case protocol.SpawnTimes:
		if err := json.Unmarshal(env.Data, &msg.SpawnTimes); err != nil {
			return nil, fmt.Errorf("failed to decode spawn times: %w", err)
		}
	case protocol.Dashboard:
		var dashboard types.Dashboard
		if err := json.Unmarshal(env.Data, &dashboard); err != nil {
			return nil, fmt.Errorf("failed to decode dashboard: %w", err)
		}
		msg.Dashboard = &dashboard
	}
	return msg, nil
}
