package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/adapters/ws"
	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/config"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, lobby *app.Lobby) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LobbySessions", store))
	r.Use(ClientTokenMiddleware())

	h := NewHandlers(lobby)
	wsCtl := ws.NewController(lobby, cfg)

	r.GET("/healthz", h.handlerHealth)

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	api.GET("/user/me", h.handlerUserMe)
	api.POST("/room", h.handlerCreateRoom)
	api.GET("/room/:id", h.handlerGetRoom)
	api.POST("/room/:id/enter", h.handlerEnterRoom)
	api.POST("/room/:id/start", h.handlerStartRoom)
	api.GET("/room/list", h.handlerListRooms)
	api.GET("/stats", h.handlerStats)
	api.GET("/sse/room/list", func(c *gin.Context) {
		h.handlerStreamRooms(ctx, c)
	})

	api.GET("/ws/room/list", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws room list endpoint hit")
		wsCtl.HandleRoomList(ctx, c)
	})

	return r
}
