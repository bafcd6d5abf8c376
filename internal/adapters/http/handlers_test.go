package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/22Titanium/Backend/internal/app"
	"github.com/22Titanium/Backend/internal/config"
	"github.com/22Titanium/Backend/internal/core"
)

func testRouter() (*gin.Engine, *app.Lobby) {
	return testRouterCtx(context.Background())
}

func testRouterCtx(ctx context.Context) (*gin.Engine, *app.Lobby) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:       "test",
		Port:       8080,
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
		SendBuffer: 8,
		Secret:     "test-secret",
	}
	lobby := &app.Lobby{Registry: core.NewRegistry(), Signal: core.NewSignal()}
	return SetupRouter(ctx, cfg, lobby), lobby
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestUserMe_AssignsSequentialIDs(t *testing.T) {
	r, _ := testRouter()

	for i := 0; i < 3; i++ {
		w := doJSON(r, http.MethodGet, "/api/user/me?name=player", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]int
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, i, resp["user_id"])
	}
}

func TestUserMe_SessionWhoami(t *testing.T) {
	r, _ := testRouter()

	w := doJSON(r, http.MethodGet, "/api/user/me?name=Alice", "")
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)

	require.Equal(t, http.StatusOK, w2.Code)
	var resp struct {
		UserID int    `json:"user_id"`
		Name   string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.UserID)
	assert.Equal(t, "Alice", resp.Name)
}

func TestUserMe_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{
			name:     "no name and no session",
			path:     "/api/user/me",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "name too long",
			path:     "/api/user/me?name=" + strings.Repeat("x", 37),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, lobby := testRouter()

			w := doJSON(r, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.wantCode, w.Code)
			users, _, _ := lobby.Stats()
			assert.Equal(t, 0, users, "rejected request must not register anyone")
		})
	}
}

func TestCreateRoom(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantRoomID int
	}{
		{
			name:       "registered owner",
			body:       `{"name":"Lobby","user_id":0}`,
			wantCode:   http.StatusOK,
			wantRoomID: 0,
		},
		{
			name:       "unknown owner reports -1",
			body:       `{"name":"Lobby","user_id":42}`,
			wantCode:   http.StatusOK,
			wantRoomID: -1,
		},
		{
			name:     "missing user_id",
			body:     `{"name":"Lobby"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "empty name",
			body:     `{"name":"","user_id":0}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, lobby := testRouter()
			lobby.CreateUser("Alice")

			w := doJSON(r, http.MethodPost, "/api/room", tt.body)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				assert.Empty(t, lobby.Rooms())
				return
			}
			var resp CreateRoomResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantRoomID, resp.RoomID)
		})
	}
}

func TestCreateRoom_RateLimited(t *testing.T) {
	r, _ := testRouter()

	seed := doJSON(r, http.MethodGet, "/api/user/me?name=Alice", "")
	require.Equal(t, http.StatusOK, seed.Code)
	cookies := seed.Result().Cookies()

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/room", strings.NewReader(`{"name":"Lobby","user_id":0}`))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < createLimit; i++ {
		require.Equal(t, http.StatusOK, post().Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post().Code)
}

func TestEnterRoom(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(l *app.Lobby)
		path     string
		body     string
		wantCode int
		wantOK   bool
	}{
		{
			name:     "joins waiting room",
			path:     "/api/room/0/enter",
			body:     `{"user_id":1}`,
			wantCode: http.StatusOK,
			wantOK:   true,
		},
		{
			name:     "unknown room",
			path:     "/api/room/9/enter",
			body:     `{"user_id":1}`,
			wantCode: http.StatusOK,
			wantOK:   false,
		},
		{
			name:     "already a member",
			path:     "/api/room/0/enter",
			body:     `{"user_id":0}`,
			wantCode: http.StatusOK,
			wantOK:   false,
		},
		{
			name:     "running room",
			setup:    func(l *app.Lobby) { l.StartRoom(0) },
			path:     "/api/room/0/enter",
			body:     `{"user_id":1}`,
			wantCode: http.StatusOK,
			wantOK:   false,
		},
		{
			name:     "bad room id",
			path:     "/api/room/abc/enter",
			body:     `{"user_id":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing user_id",
			path:     "/api/room/0/enter",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, lobby := testRouter()
			alice := lobby.CreateUser("Alice")
			lobby.CreateUser("Bob")
			lobby.CreateRoom("Lobby", alice)
			if tt.setup != nil {
				tt.setup(lobby)
			}

			w := doJSON(r, http.MethodPost, tt.path, tt.body)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp OKResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOK, resp.OK)
		})
	}
}

func TestGetRoom(t *testing.T) {
	r, lobby := testRouter()
	alice := lobby.CreateUser("Alice")
	bob := lobby.CreateUser("Bob")
	lobby.CreateRoom("Lobby", alice)
	require.True(t, lobby.EnterRoom(0, bob))

	w := doJSON(r, http.MethodGet, "/api/room/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":0,"name":"Lobby","owner_id":0,"members":[0,1],"status":0}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/room/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/room/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartRoom(t *testing.T) {
	r, lobby := testRouter()
	alice := lobby.CreateUser("Alice")
	lobby.CreateRoom("Lobby", alice)

	w := doJSON(r, http.MethodPost, "/api/room/0/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/room/0/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":false}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/room/abc/start", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRooms(t *testing.T) {
	r, lobby := testRouter()

	w := doJSON(r, http.MethodGet, "/api/room/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	alice := lobby.CreateUser("Alice")
	lobby.CreateRoom("Lobby", alice)

	w = doJSON(r, http.MethodGet, "/api/room/list", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"Lobby","owner":"Alice","num_players":1,"status":0}]`, w.Body.String())
}

func TestStats(t *testing.T) {
	r, lobby := testRouter()
	alice := lobby.CreateUser("Alice")
	lobby.CreateRoom("Lobby", alice)

	w := doJSON(r, http.MethodGet, "/api/stats", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":1,"rooms":1,"watchers":0}`, w.Body.String())
}
