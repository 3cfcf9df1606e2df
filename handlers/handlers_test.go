package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong-realm/game"
	"mahjong-realm/handlers"
	"mahjong-realm/messages"
	"mahjong-realm/metrics"
	"mahjong-realm/models"
	"mahjong-realm/persistence"
	"mahjong-realm/services"
	"mahjong-realm/templates"
)

type env struct {
	router  *gin.Engine
	server  *httptest.Server
	games   *services.GameService
	clients *handlers.ClientManager
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := persistence.NewMemoryStore()
	registry := templates.NewRegistry()
	players := services.NewPlayerService(store)
	reg := prometheus.NewRegistry()
	gameMetrics := metrics.NewGameMetrics("mahjong", reg)
	games := services.NewGameService(services.GameServiceConfig{
		Registry: registry,
		Players:  players,
		Storage:  store,
		Metrics:  gameMetrics,
		Board:    game.DefaultOptions(),
	})
	clients := handlers.NewClientManager(nil)
	games.SetNotifier(clients.SendToSession)

	router := handlers.NewRouter(handlers.RouterConfig{
		Deps: handlers.Deps{
			Games:     games,
			Players:   players,
			Templates: registry,
			Clients:   clients,
			Metrics:   gameMetrics,
		},
		Layouts:     services.NewLayoutCache(registry, models.DefaultTileSize),
		Storage:     store,
		HTTPMetrics: metrics.NewHTTPMetrics("mahjong", reg),
		Gatherer:    reg,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &env{router: router, server: server, games: games, clients: clients}
}

func (e *env) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type envelope struct {
	Type    messages.MessageType `json:"type"`
	Payload json.RawMessage      `json:"payload"`
}

func send(t *testing.T, conn *websocket.Conn, typ messages.MessageType, payload interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(messages.New(typ, payload)))
}

func read(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg envelope
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of type want arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want messages.MessageType) (envelope, []messages.MessageType) {
	t.Helper()
	var seen []messages.MessageType
	for i := 0; i < 100; i++ {
		msg := read(t, conn)
		seen = append(seen, msg.Type)
		if msg.Type == want {
			return msg, seen
		}
	}
	t.Fatalf("no %s message, saw %v", want, seen)
	return envelope{}, nil
}

func expectError(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	msg := read(t, conn)
	require.Equal(t, messages.MessageTypeError, msg.Type)
	var e messages.ErrorMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	assert.Equal(t, code, e.Code)
}

func TestWebsocketGame(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t)

	send(t, conn, messages.MessageTypeTapDown, messages.TapMessage{})
	expectError(t, conn, messages.CodeNoSession)

	send(t, conn, messages.MessageTypeNewGame, messages.NewGameMessage{Template: "pair"})
	expectError(t, conn, messages.CodeNotJoined)

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: "mei"})
	joined := read(t, conn)
	require.Equal(t, messages.MessageTypeJoined, joined.Type)
	var j messages.JoinedMessage
	require.NoError(t, json.Unmarshal(joined.Payload, &j))
	assert.Equal(t, "mei", j.Username)
	assert.Contains(t, j.Templates, "turtle")

	send(t, conn, messages.MessageTypeNewGame, messages.NewGameMessage{Template: "castle"})
	expectError(t, conn, messages.CodeUnknownTemplate)

	send(t, conn, messages.MessageTypeViewport, messages.ViewportMessage{Width: 1080, Height: 1920})
	send(t, conn, messages.MessageTypeNewGame, messages.NewGameMessage{Template: "pair", Seed: 5})
	boardMsg := read(t, conn)
	require.Equal(t, messages.MessageTypeBoard, boardMsg.Type)
	var board messages.BoardMessage
	require.NoError(t, json.Unmarshal(boardMsg.Payload, &board))
	require.Len(t, board.Tiles, 2)
	assert.Equal(t, messages.MessageTypeCamera, read(t, conn).Type)

	// Packed ids on the wire: (0,0,0) is 0 and (1,0,0) is 1<<16.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"tap_down","payload":{"id":0}}`)))
	assert.Equal(t, messages.MessageTypeSelect, read(t, conn).Type)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"tap_down","payload":{"id":65536}}`)))
	match, seen := readUntil(t, conn, messages.MessageTypeMatch)
	assert.Equal(t, []messages.MessageType{
		messages.MessageTypeSelect,
		messages.MessageTypeDeselect,
		messages.MessageTypeDeselect,
		messages.MessageTypeMatch,
	}, seen)
	var m messages.MatchMessage
	require.NoError(t, json.Unmarshal(match.Payload, &m))
	assert.Equal(t, [2]models.TileID{{Col: 0}, {Col: 1}}, m.IDs)

	e.games.Tick(2 * time.Second)
	solved, _ := readUntil(t, conn, messages.MessageTypeSolved)
	var s messages.SolvedMessage
	require.NoError(t, json.Unmarshal(solved.Payload, &s))
	assert.Equal(t, board.SessionID, s.SessionID)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/"+board.SessionID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var snap services.SessionSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.True(t, snap.Game.Solved)
	assert.Zero(t, snap.Remaining)

	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/players/mei", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"games_solved":1`)

	conn.Close()
	assert.Eventually(t, func() bool {
		return e.games.ActiveSessions() == 0 && e.clients.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketBadInput(t *testing.T) {
	e := newEnv(t)
	conn := e.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	expectError(t, conn, messages.CodeBadPayload)

	send(t, conn, "dance", nil)
	expectError(t, conn, messages.CodeUnknownMessageType)

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: " "})
	expectError(t, conn, messages.CodeBadPayload)

	send(t, conn, messages.MessageTypeViewport, messages.ViewportMessage{Width: 0, Height: 10})
	expectError(t, conn, messages.CodeBadPayload)

	send(t, conn, messages.MessageTypeJoin, messages.JoinMessage{Username: "ana"})
	assert.Equal(t, messages.MessageTypeJoined, read(t, conn).Type)
	send(t, conn, messages.MessageTypeNewGame, messages.NewGameMessage{Template: "pair"})
	readUntil(t, conn, messages.MessageTypeCamera)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"tap_down","payload":{"id":-1}}`)))
	expectError(t, conn, messages.CodeBadPayload)
}

func TestRESTEndpoints(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/api/templates", http.StatusOK, `"name":"wizard_hat"`},
		{"/api/sessions/unknown", http.StatusNotFound, "session not found"},
		{"/api/players/nobody", http.StatusNotFound, "player not found"},
		{"/metrics", http.StatusOK, "mahjong_http_requests_inflight"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	var infos []services.TemplateInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	assert.Len(t, infos, len(templates.Builtin()))
}
