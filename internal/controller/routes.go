package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chessai-backend/internal/middleware"
)

// SetupRoutes mounts the REST API under /api and the game socket under /ws.
func SetupRoutes(app *fiber.App, gc *GameController, wsc *WebSocketController, wsConfig websocket.Config) {
	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsc.HandleConnection, wsConfig))

	// Set up REST routes
	api := app.Group("/api")
	api.Get("/player", middleware.NewPlayerID)

	// Game routes
	gameRoutes := api.Group("/game", middleware.EnsurePlayerID())
	gameRoutes.Post("/create", gc.CreateGame)
	gameRoutes.Post("/import", gc.ImportGame)
	gameRoutes.Get("/:gameId", gc.GetGameState)
	gameRoutes.Delete("/:gameId", gc.DeleteGame)
	gameRoutes.Post("/:gameId/move", gc.MakeMove)
	gameRoutes.Post("/:gameId/undo", gc.Undo)
	gameRoutes.Post("/:gameId/redo", gc.Redo)
	gameRoutes.Post("/:gameId/ai", gc.RequestAIMove)
	gameRoutes.Get("/:gameId/hint", gc.Hint)
	gameRoutes.Get("/:gameId/analysis", gc.Analysis)
	gameRoutes.Post("/:gameId/draw", gc.ClaimDraw)
	gameRoutes.Post("/:gameId/resign", gc.Resign)
	gameRoutes.Get("/:gameId/pgn", gc.ExportPGN)
	gameRoutes.Get("/:gameId/board.svg", gc.BoardSVG)
}
