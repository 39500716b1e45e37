package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PlayerIDKey is the Locals key holding the caller's player id.
const PlayerIDKey = "playerID"

// EnsurePlayerID reads the player id from the X-Player-ID header or the
// playerId query parameter. It must be a UUID.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Check if playerID is already set
		if c.Locals(PlayerIDKey) != nil {
			return c.Next()
		}

		// Check header first
		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}
		id, err := uuid.Parse(playerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Player ID must be a UUID",
			})
		}

		// Store in context for this request
		c.Locals(PlayerIDKey, id.String())
		return c.Next()
	}
}

// PlayerID returns the id stored by EnsurePlayerID.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}

// NewPlayerID hands out a fresh id for clients that have none yet.
func NewPlayerID(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"playerId": uuid.New().String(),
	})
}
