package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/middleware"
	"github.com/benbeisheim/chessai-backend/internal/service"
	"github.com/benbeisheim/chessai-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log,
	}
}

// connection serializes writes, which come from the read loop and from
// state pushes.
type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *connection) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()
	conn := &connection{conn: c}

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		wsc.sendError(conn, err)
		c.Close()
		return
	}
	// Clean up when connection closes
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Msg("connection closed")
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			wsc.sendError(conn, err)
		}
	}
}

// handleMessage applies one client request. The resulting state reaches
// every subscriber, this one included, through the session broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		_, err = wsc.gameService.HandleMove(gameID, playerID, move.Move)
	case ws.MessageTypeUndo:
		_, err = wsc.gameService.Undo(gameID, playerID)
	case ws.MessageTypeRedo:
		_, err = wsc.gameService.Redo(gameID, playerID)
	case ws.MessageTypeAI:
		_, err = wsc.gameService.RequestAIMove(gameID, playerID)
	case ws.MessageTypeResign:
		_, err = wsc.gameService.Resign(gameID, playerID)
	case ws.MessageTypeDraw:
		_, err = wsc.gameService.ClaimDraw(gameID, playerID)
	default:
		err = fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return err
}

func (wsc *WebSocketController) sendError(conn service.Subscriber, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	if werr := conn.WriteJSON(msg); werr != nil {
		wsc.log.Debug().Err(werr).Msg("failed to send error")
	}
}
