package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/core"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong before the peer counts as gone.
	pongWait = 60 * time.Second
)

// conn wraps one subscriber socket. Snapshots go through the send
// channel so the write pump is the only goroutine touching the wire.
type conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
	failure   error
}

func newConn(ws *websocket.Conn, buffer int) *conn {
	return &conn{
		ws:   ws,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Send queues one room-list snapshot for delivery. It blocks while the
// peer drains earlier writes; dropping a frame instead would let a
// subscriber miss the latest state. The write deadline in the pump is
// what breaks a stalled peer.
func (c *conn) Send(rooms []core.RoomSummary) error {
	payload, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return c.exitErr()
	}
}

// fail tears the connection down once, remembering why. A nil reason
// means the peer left normally.
func (c *conn) fail(reason error) {
	c.closeOnce.Do(func() {
		c.failure = reason
		close(c.done)
		_ = c.ws.Close()
	})
}

// Close releases the socket; safe to call more than once.
func (c *conn) Close() {
	c.fail(nil)
}

// exitErr translates the teardown reason for the push loop: a peer
// initiated exit surfaces as app.ErrSubscriberClosed, anything else as
// the transport error itself.
func (c *conn) exitErr() error {
	if c.failure != nil {
		return c.failure
	}
	return app.ErrSubscriberClosed
}

func (c *conn) writePump(sid string, ping time.Duration) {
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Error().Err(err).Str("module", "ws").Str("sid", sid).Msg("writePump write error")
				c.fail(err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "ws").Str("sid", sid).Msg("writePump ping error")
				c.fail(err)
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump services control frames and notices the peer going away.
// Subscribers never send data frames; anything readable is drained and
// ignored.
func (c *conn) readPump(sid string, limit int64) {
	c.ws.SetReadLimit(limit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if isPeerClose(err) {
				log.Info().Str("module", "ws").Str("sid", sid).Msg("readPump peer closed")
				c.fail(nil)
			} else {
				c.fail(err)
			}
			return
		}
	}
}

func isPeerClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}
