package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// PrizeServiceInterface defines the interface for prize catalog management.
type PrizeServiceInterface interface {
	AddPrize(ctx context.Context, req *model.CreatePrizeRequest) (*model.Prize, error)
	UpdatePrize(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error)
	DeletePrize(ctx context.Context, id string) error
	GetPrize(ctx context.Context, id string) (*model.Prize, error)
	ListPrizes(ctx context.Context) ([]model.Prize, error)
}

// PrizeHandler handles HTTP requests for the prize catalog.
type PrizeHandler struct {
	service   PrizeServiceInterface
	validator *validator.Validate
}

// NewPrizeHandler creates a new PrizeHandler with the given service and validator.
func NewPrizeHandler(svc PrizeServiceInterface, v *validator.Validate) *PrizeHandler {
	return &PrizeHandler{service: svc, validator: v}
}

// ListPrizes handles GET /api/admin/prizes.
func (h *PrizeHandler) ListPrizes(c *fiber.Ctx) error {
	prizes, err := h.service.ListPrizes(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to list prizes")
	}
	return c.JSON(prizes)
}

// GetPrize handles GET /api/admin/prizes/:id.
func (h *PrizeHandler) GetPrize(c *fiber.Ctx) error {
	id := c.Params("id")
	prize, err := h.service.GetPrize(c.Context(), id)
	if err != nil {
		return serviceError(c, err, logError(c).Str("prize_id", id), "failed to get prize")
	}
	return c.JSON(prize)
}

// CreatePrize handles POST /api/admin/prizes.
func (h *PrizeHandler) CreatePrize(c *fiber.Ctx) error {
	var req model.CreatePrizeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	prize, err := h.service.AddPrize(c.Context(), &req)
	if err != nil {
		return serviceError(c, err, logError(c).Str("prize_name", req.Name), "failed to create prize")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("prize_id", prize.ID).
		Str("prize_name", prize.Name).
		Msg("prize created")

	return c.Status(fiber.StatusCreated).JSON(prize)
}

// UpdatePrize handles PATCH /api/admin/prizes/:id. Omitted fields are left unchanged.
func (h *PrizeHandler) UpdatePrize(c *fiber.Ctx) error {
	id := c.Params("id")

	var upd model.PrizeUpdate
	if err := c.BodyParser(&upd); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(upd); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	prize, err := h.service.UpdatePrize(c.Context(), id, upd)
	if err != nil {
		return serviceError(c, err, logError(c).Str("prize_id", id), "failed to update prize")
	}
	return c.JSON(prize)
}

// DeletePrize handles DELETE /api/admin/prizes/:id.
func (h *PrizeHandler) DeletePrize(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeletePrize(c.Context(), id); err != nil {
		return serviceError(c, err, logError(c).Str("prize_id", id), "failed to delete prize")
	}

	log.Info().Str("request_id", requestID(c)).Str("prize_id", id).Msg("prize deleted")
	return c.SendStatus(fiber.StatusNoContent)
}
