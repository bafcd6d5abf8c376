// Package ws serves the room-list subscription over a websocket and
// adapts one socket into the push loop's Sender port.
package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades room-list subscriptions and runs one push loop
// per socket.
type Controller struct {
	Lobby *app.Lobby
	Cfg   *config.Config
}

func NewController(lobby *app.Lobby, cfg *config.Config) *Controller {
	return &Controller{Lobby: lobby, Cfg: cfg}
}

// HandleRoomList upgrades the connection and blocks pushing room-list
// snapshots until the peer hangs up, the transport fails, or ctx ends.
func (ctl *Controller) HandleRoomList(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", sid).Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "ws").Str("sid", sid).Msg("room list subscriber attached")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn := newConn(ws, ctl.Cfg.SendBuffer)
	go conn.writePump(sid, ctl.Cfg.PingPeriod)
	go conn.readPump(sid, ctl.Cfg.ReadLimit)

	// The push loop waits on the change signal between snapshots; a
	// peer that vanishes while the lobby is idle is only noticed here.
	go func() {
		<-conn.done
		cancel()
	}()

	err = ctl.Lobby.Watch(ctx, conn)
	conn.Close()
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Str("sid", sid).Msg("room list push failed")
		return
	}
	log.Info().Str("module", "ws").Str("sid", sid).Msg("room list subscriber detached")
}
