package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// SettingsServiceInterface defines access to the store info and promo singletons.
type SettingsServiceInterface interface {
	GetStoreInfo(ctx context.Context) (*model.StoreInfo, error)
	UpdateStoreInfo(ctx context.Context, info *model.StoreInfo) (*model.StoreInfo, error)
	GetPromoSettings(ctx context.Context) (*model.PromoSettings, error)
	UpdatePromoSettings(ctx context.Context, promo *model.PromoSettings) (*model.PromoSettings, error)
}

// SettingsHandler handles HTTP requests for store info and promo settings.
type SettingsHandler struct {
	service   SettingsServiceInterface
	validator *validator.Validate
	now       func() time.Time
}

// NewSettingsHandler creates a new SettingsHandler with the given service and validator.
func NewSettingsHandler(svc SettingsServiceInterface, v *validator.Validate) *SettingsHandler {
	return &SettingsHandler{service: svc, validator: v, now: time.Now}
}

// GetStoreInfo handles GET /api/store-info.
func (h *SettingsHandler) GetStoreInfo(c *fiber.Ctx) error {
	info, err := h.service.GetStoreInfo(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to get store info")
	}
	return c.JSON(info)
}

// UpdateStoreInfo handles PUT /api/admin/store-info.
func (h *SettingsHandler) UpdateStoreInfo(c *fiber.Ctx) error {
	var info model.StoreInfo
	if err := c.BodyParser(&info); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(info); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	saved, err := h.service.UpdateStoreInfo(c.Context(), &info)
	if err != nil {
		return serviceError(c, err, logError(c), "failed to update store info")
	}
	return c.JSON(saved)
}

// GetPromo handles GET /api/promo. The response carries a running flag so
// the landing page does not have to compare the window against its own clock.
func (h *SettingsHandler) GetPromo(c *fiber.Ctx) error {
	promo, err := h.service.GetPromoSettings(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to get promo settings")
	}
	return c.JSON(model.PromoStatus{
		PromoSettings: *promo,
		Running:       promo.Running(h.now().UTC()),
	})
}

// UpdatePromo handles PUT /api/admin/promo.
func (h *SettingsHandler) UpdatePromo(c *fiber.Ctx) error {
	var promo model.PromoSettings
	if err := c.BodyParser(&promo); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(promo); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	saved, err := h.service.UpdatePromoSettings(c.Context(), &promo)
	if err != nil {
		return serviceError(c, err, logError(c), "failed to update promo settings")
	}
	return c.JSON(saved)
}
