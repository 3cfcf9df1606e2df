package messages

import (
	"encoding/json"

	"mahjong-realm/models"
)

// MessageType defines the type of message being sent
type MessageType string

// Client to server.
const (
	MessageTypeJoin     MessageType = "join"
	MessageTypeNewGame  MessageType = "new_game"
	MessageTypeViewport MessageType = "viewport"
	MessageTypeTapDown  MessageType = "tap_down"
	MessageTypeTapUp    MessageType = "tap_up"
)

// Server to client.
const (
	MessageTypeJoined      MessageType = "joined"
	MessageTypeBoard       MessageType = "board"
	MessageTypeSelect      MessageType = "select"
	MessageTypeDeselect    MessageType = "deselect"
	MessageTypeMatch       MessageType = "match"
	MessageTypeCue         MessageType = "cue"
	MessageTypeCamera      MessageType = "camera"
	MessageTypeCameraState MessageType = "camera_state"
	MessageTypeSolved      MessageType = "solved"
	MessageTypeError       MessageType = "error"
)

// Error codes carried by ErrorMessage.
const (
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
	CodeBadPayload         = "BAD_PAYLOAD"
	CodeUnknownTemplate    = "UNKNOWN_TEMPLATE"
	CodeNoSession          = "NO_SESSION"
	CodeNotJoined          = "NOT_JOINED"
	CodeInternal           = "INTERNAL"
)

// BaseMessage is the base structure for all outgoing messages
type BaseMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// InboundMessage is a client message whose payload is decoded once the
// type is known.
type InboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// New wraps payload in a BaseMessage.
func New(t MessageType, payload interface{}) BaseMessage {
	return BaseMessage{Type: t, Payload: payload}
}

// Error builds an error message.
func Error(code, message string) BaseMessage {
	return New(MessageTypeError, ErrorMessage{Code: code, Message: message})
}

// JoinMessage identifies the player for this connection
type JoinMessage struct {
	Username string `json:"username"`
}

// JoinedMessage confirms a join
type JoinedMessage struct {
	PlayerID  string   `json:"player_id"`
	Username  string   `json:"username"`
	Templates []string `json:"templates"`
}

// NewGameMessage requests a fresh board. An empty template selects the
// server default; a zero seed lets the server pick one.
type NewGameMessage struct {
	Template string `json:"template"`
	Seed     int64  `json:"seed"`
}

// ViewportMessage reports the client's visible area in pixels
type ViewportMessage struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TapMessage is a tap on a tile, addressed by its packed id
type TapMessage struct {
	ID models.TileID `json:"id"`
}

// PlacedTile is a tile plus where the client should tween it to
type PlacedTile struct {
	models.Tile
	Position models.Vec2 `json:"position"`
}

// BoardMessage describes a freshly generated board
type BoardMessage struct {
	SessionID string       `json:"session_id"`
	Template  string       `json:"template"`
	Seed      int64        `json:"seed"`
	Tiles     []PlacedTile `json:"tiles"`
}

// TileMessage addresses a single tile (select / deselect)
type TileMessage struct {
	ID models.TileID `json:"id"`
}

// MatchMessage reports a wasted pair
type MatchMessage struct {
	IDs       [2]models.TileID `json:"ids"`
	Remaining int              `json:"remaining"`
}

// CueMessage asks the client to play a named effect on a pair
type CueMessage struct {
	Name string           `json:"name"`
	IDs  [2]models.TileID `json:"ids"`
}

// CameraMessage is a new camera target
type CameraMessage struct {
	Bounds models.Rect `json:"bounds"`
	Zoom   float64     `json:"zoom"`
	Center models.Vec2 `json:"center"`
}

// CameraStateMessage is the interpolated camera for one tick
type CameraStateMessage struct {
	Center models.Vec2 `json:"center"`
	Zoom   float64     `json:"zoom"`
}

// SolvedMessage reports a cleared board
type SolvedMessage struct {
	SessionID  string `json:"session_id"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
