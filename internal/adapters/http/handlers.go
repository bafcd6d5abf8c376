package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/domain"
)

const (
	createLimit  = 10
	createWindow = time.Minute
)

type CreateRoomRequest struct {
	Name   string `json:"name"`
	UserID *int   `json:"user_id"`
}

type CreateRoomResponse struct {
	RoomID int `json:"room_id"`
}

type EnterRoomRequest struct {
	UserID *int `json:"user_id"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Handlers owns the REST surface of the lobby.
type Handlers struct {
	Lobby   *app.Lobby
	creates *createLimiter
}

func NewHandlers(lobby *app.Lobby) *Handlers {
	return &Handlers{
		Lobby:   lobby,
		creates: newCreateLimiter(createLimit, createWindow),
	}
}

func (h *Handlers) handlerHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlerUserMe registers a user when a name is given, and otherwise
// answers with the user already bound to the session cookie.
func (h *Handlers) handlerUserMe(c *gin.Context) {
	session := sessions.Default(c)
	name := c.Query("name")

	if name == "" {
		uid, ok := session.Get("user_id").(int)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no user bound to session"})
			return
		}
		user, err := h.Lobby.User(domain.UserID(uid))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": int(user.ID), "name": user.Name})
		return
	}

	if err := domain.CheckUserName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := h.Lobby.CreateUser(name)
	session.Set("user_id", int(id))
	if err := session.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
	}
	c.JSON(http.StatusOK, gin.H{"user_id": int(id)})
}

// handlerCreateRoom opens a room. An unknown owner is reported inside a
// 200 response as room_id -1, the contract game clients rely on;
// registry rejections never surface as HTTP errors.
func (h *Handlers) handlerCreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name or user_id"})
		return
	}
	if err := domain.CheckRoomName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.creates.Allow(c.GetString("client_token")) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many rooms created"})
		return
	}

	id := h.Lobby.CreateRoom(req.Name, domain.UserID(*req.UserID))
	c.JSON(http.StatusOK, CreateRoomResponse{RoomID: int(id)})
}

func (h *Handlers) handlerEnterRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad room id"})
		return
	}
	var req EnterRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user_id"})
		return
	}

	ok := h.Lobby.EnterRoom(domain.RoomID(roomID), domain.UserID(*req.UserID))
	c.JSON(http.StatusOK, OKResponse{OK: ok})
}

func (h *Handlers) handlerStartRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad room id"})
		return
	}

	ok := h.Lobby.StartRoom(domain.RoomID(roomID))
	c.JSON(http.StatusOK, OKResponse{OK: ok})
}

// handlerListRooms is the polling fallback: one snapshot, same payload
// the subscriptions push.
func (h *Handlers) handlerListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Lobby.Rooms())
}

// handlerGetRoom returns one room's full state, member ids included.
func (h *Handlers) handlerGetRoom(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad room id"})
		return
	}
	room, err := h.Lobby.Room(domain.RoomID(roomID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) handlerStats(c *gin.Context) {
	users, rooms, watchers := h.Lobby.Stats()
	c.JSON(http.StatusOK, gin.H{
		"users":    users,
		"rooms":    rooms,
		"watchers": watchers,
	})
}
