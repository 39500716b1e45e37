package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client to server
	MessageTypeMove   MessageType = "move"
	MessageTypeUndo   MessageType = "undo"
	MessageTypeRedo   MessageType = "redo"
	MessageTypeAI     MessageType = "ai"
	MessageTypeResign MessageType = "resign"
	MessageTypeDraw   MessageType = "draw"

	// server to client
	MessageTypeGameState MessageType = "gameState"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload carries a move token such as "e2-e4" or "e7-e8=Q".
type MovePayload struct {
	Move string `json:"move"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: data}, nil
}
