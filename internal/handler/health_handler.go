package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is implemented by the store client behind the service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	store  Pinger
	driver string
}

// NewHealthHandler creates a new HealthHandler for the store selected by driver.
func NewHealthHandler(store Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

// Check pings the store.
// Returns 200 with {"status":"healthy","store":driver} when it answers, 503 otherwise.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.store.Ping(c.Context()); err != nil {
		log.Error().Err(err).Str("store", h.driver).Msg("health check failed: store unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"store":  h.driver,
			"error":  "store connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"status": "healthy",
		"store":  h.driver,
	})
}
