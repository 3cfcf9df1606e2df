package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"mahjong-realm/messages"
	"mahjong-realm/metrics"
	"mahjong-realm/models"
	"mahjong-realm/network"
	"mahjong-realm/services"
	"mahjong-realm/templates"
)

// Deps are the services a client connection talks to
type Deps struct {
	Games     *services.GameService
	Players   *services.PlayerService
	Templates *templates.Registry
	Clients   *ClientManager
	Metrics   *metrics.GameMetrics
	Logger    *slog.Logger
}

// ClientHandler manages a single client connection
type ClientHandler struct {
	conn   *network.Connection
	deps   Deps
	logger *slog.Logger

	player    *models.Player
	sessionID string
	viewport  models.Vec2
}

// HandleClientConnection serves a websocket until it closes
func HandleClientConnection(wsConn *websocket.Conn, deps Deps) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conn := network.NewConnection(wsConn, logger)
	handler := &ClientHandler{
		conn:   conn,
		deps:   deps,
		logger: logger.With("remote", wsConn.RemoteAddr().String()),
	}
	handler.logger.Info("client connected")
	deps.Metrics.ClientConnected()

	go conn.WritePump()
	conn.ReadPump(handler)

	if handler.sessionID != "" {
		deps.Clients.RemoveClient(handler.sessionID)
		if err := deps.Games.EndSession(handler.sessionID); err != nil {
			handler.logger.Warn("end session", "session", handler.sessionID, "error", err)
		}
	}
	deps.Metrics.ClientDisconnected()
	handler.logger.Info("client disconnected", "session", handler.sessionID)
}

// HandleMessage handles incoming messages from the client
func (h *ClientHandler) HandleMessage(conn *network.Connection, message []byte) {
	var msg messages.InboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.sendError(messages.CodeBadPayload, "malformed message")
		return
	}
	h.logger.Debug("received", "type", msg.Type)

	switch msg.Type {
	case messages.MessageTypeJoin:
		h.handleJoin(msg.Payload)
	case messages.MessageTypeNewGame:
		h.handleNewGame(msg.Payload)
	case messages.MessageTypeViewport:
		h.handleViewport(msg.Payload)
	case messages.MessageTypeTapDown:
		h.handleTap(msg.Payload, true)
	case messages.MessageTypeTapUp:
		h.handleTap(msg.Payload, false)
	default:
		h.logger.Warn("unknown message type", "type", msg.Type)
		h.sendError(messages.CodeUnknownMessageType, "Unknown message type received")
	}
}

func (h *ClientHandler) decode(payload json.RawMessage, v interface{}) bool {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		h.sendError(messages.CodeBadPayload, err.Error())
		return false
	}
	return true
}

func (h *ClientHandler) handleJoin(payload json.RawMessage) {
	var join messages.JoinMessage
	if !h.decode(payload, &join) {
		return
	}
	player, err := h.deps.Players.GetOrCreatePlayer(join.Username)
	if err != nil {
		if errors.Is(err, services.ErrInvalidUsername) {
			h.sendError(messages.CodeBadPayload, err.Error())
			return
		}
		h.logger.Error("join failed", "username", join.Username, "error", err)
		h.sendError(messages.CodeInternal, "could not load player")
		return
	}
	h.player = player
	h.logger = h.logger.With("player", player.Username)
	h.send(messages.New(messages.MessageTypeJoined, messages.JoinedMessage{
		PlayerID:  player.ID,
		Username:  player.Username,
		Templates: h.deps.Templates.Names(),
	}))
}

func (h *ClientHandler) handleNewGame(payload json.RawMessage) {
	if h.player == nil {
		h.sendError(messages.CodeNotJoined, "join before starting a game")
		return
	}
	var req messages.NewGameMessage
	if !h.decode(payload, &req) {
		return
	}

	_, _, err := h.deps.Games.NewGame(services.NewGameRequest{
		SessionID: h.sessionID,
		PlayerID:  h.player.ID,
		Template:  req.Template,
		Seed:      req.Seed,
		Viewport:  h.viewport,
		Deliver:   h.deliverBoard,
	})
	if err != nil {
		if errors.Is(err, templates.ErrUnknownTemplate) {
			h.sendError(messages.CodeUnknownTemplate, err.Error())
			return
		}
		h.logger.Error("new game failed", "error", err)
		h.sendError(messages.CodeInternal, "could not start game")
		return
	}
}

// deliverBoard runs under the session lock: the client is registered for
// tick output and gets the board before any of it.
func (h *ClientHandler) deliverBoard(sessionID string, out []messages.BaseMessage) {
	if h.sessionID == "" {
		h.sessionID = sessionID
		h.deps.Clients.AddClient(sessionID, h)
	}
	h.send(out...)
}

func (h *ClientHandler) handleViewport(payload json.RawMessage) {
	var vp messages.ViewportMessage
	if !h.decode(payload, &vp) {
		return
	}
	if vp.Width <= 0 || vp.Height <= 0 {
		h.sendError(messages.CodeBadPayload, "viewport must be positive")
		return
	}
	h.viewport = models.Vec2{X: vp.Width, Y: vp.Height}
	if h.sessionID == "" {
		return
	}
	out, err := h.deps.Games.SetViewport(h.sessionID, h.viewport)
	if err != nil {
		h.sessionError(err)
		return
	}
	h.send(out...)
}

func (h *ClientHandler) handleTap(payload json.RawMessage, down bool) {
	if h.sessionID == "" {
		h.sendError(messages.CodeNoSession, "no game in progress")
		return
	}
	var tap messages.TapMessage
	if !h.decode(payload, &tap) {
		return
	}
	if !down {
		if err := h.deps.Games.TapUp(h.sessionID, tap.ID); err != nil {
			h.sessionError(err)
		}
		return
	}
	out, err := h.deps.Games.TapDown(h.sessionID, tap.ID)
	if err != nil {
		h.sessionError(err)
		return
	}
	h.send(out...)
}

func (h *ClientHandler) sessionError(err error) {
	if errors.Is(err, services.ErrSessionNotFound) {
		h.sendError(messages.CodeNoSession, err.Error())
		return
	}
	h.logger.Error("session call failed", "session", h.sessionID, "error", err)
	h.sendError(messages.CodeInternal, "internal error")
}

func (h *ClientHandler) send(msgs ...messages.BaseMessage) {
	for _, msg := range msgs {
		if err := h.conn.SendMessage(msg); err != nil {
			h.logger.Debug("send failed", "error", err)
			return
		}
	}
}

func (h *ClientHandler) sendError(code, message string) {
	h.send(messages.Error(code, message))
}
