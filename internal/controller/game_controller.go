package controller

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/chessai-backend/internal/middleware"
	"github.com/benbeisheim/chessai-backend/internal/service"
	"github.com/benbeisheim/chessai-backend/internal/ws"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

type importRequest struct {
	service.CreateOptions
	PGN string `json:"pgn"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var opts service.CreateOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return badRequest(c, err)
		}
	}

	state, err := gc.gameService.CreateGame(middleware.PlayerID(c), opts)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (gc *GameController) ImportGame(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	state, err := gc.gameService.ImportPGN(middleware.PlayerID(c), bytes.NewBufferString(req.PGN), req.CreateOptions)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId"), middleware.PlayerID(c)); err != nil {
		return gc.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req ws.MovePayload
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	state, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), req.Move)
	return gc.respond(c, state, err)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	state, err := gc.gameService.Undo(c.Params("gameId"), middleware.PlayerID(c))
	return gc.respond(c, state, err)
}

func (gc *GameController) Redo(c *fiber.Ctx) error {
	state, err := gc.gameService.Redo(c.Params("gameId"), middleware.PlayerID(c))
	return gc.respond(c, state, err)
}

func (gc *GameController) RequestAIMove(c *fiber.Ctx) error {
	state, err := gc.gameService.RequestAIMove(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(state)
}

func (gc *GameController) ClaimDraw(c *fiber.Ctx) error {
	state, err := gc.gameService.ClaimDraw(c.Params("gameId"), middleware.PlayerID(c))
	return gc.respond(c, state, err)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	state, err := gc.gameService.Resign(c.Params("gameId"), middleware.PlayerID(c))
	return gc.respond(c, state, err)
}

func (gc *GameController) Hint(c *fiber.Ctx) error {
	res, err := gc.gameService.Hint(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(res)
}

func (gc *GameController) Analysis(c *fiber.Ctx) error {
	scores, err := gc.gameService.Analyze(c.Params("gameId"), c.QueryInt("depth", 0))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": scores,
	})
}

func (gc *GameController) ExportPGN(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := gc.gameService.ExportPGN(c.Params("gameId"), &buf); err != nil {
		return gc.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/x-chess-pgn")
	return c.Send(buf.Bytes())
}

func (gc *GameController) BoardSVG(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := gc.gameService.BoardSVG(c.Params("gameId"), &buf); err != nil {
		return gc.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.Send(buf.Bytes())
}

func (gc *GameController) respond(c *fiber.Ctx, state service.GameState, err error) error {
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

// fail maps service errors to HTTP statuses. Anything unexpected is logged
// and reported without detail.
func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{
			"error": "internal error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotPlayer):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrTooManyGames):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, service.ErrIllegalMove),
		errors.Is(err, service.ErrInvalidOptions),
		errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, service.ErrInvalidDepth):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrGameOver),
		errors.Is(err, service.ErrAIThinking),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, service.ErrNothingToRedo),
		errors.Is(err, service.ErrDrawRefused),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}
