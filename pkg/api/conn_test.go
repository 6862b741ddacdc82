package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnPair upgrades one test connection without starting its pumps
func newConnPair(t *testing.T, cfg ConnConfig) (*Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverSide := make(chan *Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- newConn(ws, cfg)
	}))
	t.Cleanup(server.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = peer.Close() })

	select {
	case conn := <-serverSide:
		return conn, peer
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade did not complete")
		return nil, nil
	}
}

func TestConnSendQueueFullCloses(t *testing.T) {
	cfg := DefaultConnConfig()
	cfg.SendQueue = 1
	conn, _ := newConnPair(t, cfg)

	require.NoError(t, conn.Send([]byte(`{"type":"STAR_SYNC","data":[]}`)))
	err := conn.Send([]byte(`{"type":"STAR_SYNC","data":[]}`))

	assert.ErrorIs(t, err, ErrSendQueueFull)
	assert.False(t, conn.Open())
	assert.ErrorIs(t, conn.Send([]byte(`{}`)), ErrConnClosed)
}

func TestConnWritePumpDelivers(t *testing.T) {
	conn, peer := newConnPair(t, DefaultConnConfig())
	go conn.writePump()

	require.NoError(t, conn.Send([]byte(`{"type":"STAR_SYNC","data":[]}`)))

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"STAR_SYNC","data":[]}`, string(msg))

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	_, _, err = peer.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "peer sees a going-away close: %v", err)
}

func TestConnPings(t *testing.T) {
	cfg := DefaultConnConfig()
	cfg.PongWait = 50 * time.Millisecond
	conn, peer := newConnPair(t, cfg)
	go conn.writePump()
	defer conn.Close()

	pinged := make(chan struct{}, 1)
	peer.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := peer.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}
