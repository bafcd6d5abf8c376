package http

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/core"
)

// sseSender adapts one event-stream response into the push loop's
// Sender port. A write error means the client is gone; http gives no
// finer signal, so it maps to a closed subscriber.
type sseSender struct {
	c *gin.Context
}

func (s sseSender) Send(rooms []core.RoomSummary) error {
	if err := sse.Encode(s.c.Writer, sse.Event{Event: "rooms", Data: rooms}); err != nil {
		return fmt.Errorf("%w: %v", app.ErrSubscriberClosed, err)
	}
	s.c.Writer.Flush()
	return nil
}

// handlerStreamRooms pushes room-list snapshots as server-sent events,
// one "rooms" event per change, the first one immediately.
func (h *Handlers) handlerStreamRooms(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	log.Info().Str("module", "adapters.http").Str("sid", sid).Msg("sse subscriber attached")

	// The request context ends when the client disconnects, the server
	// context when shutdown begins; the loop must stop on whichever
	// comes first.
	watchCtx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := h.Lobby.Watch(watchCtx, sseSender{c: c}); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("sid", sid).Msg("sse push failed")
		return
	}
	log.Info().Str("module", "adapters.http").Str("sid", sid).Msg("sse subscriber detached")
}
