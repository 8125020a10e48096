package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthServiceInterface issues admin session tokens.
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
}

// LoginRequest is the DTO for POST /api/admin/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// AuthHandler handles admin login.
type AuthHandler struct {
	service   AuthServiceInterface
	validator *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given service and validator.
func NewAuthHandler(svc AuthServiceInterface, v *validator.Validate) *AuthHandler {
	return &AuthHandler{service: svc, validator: v}
}

// Login handles POST /api/admin/login and returns a bearer token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	token, expiresAt, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn().Str("request_id", requestID(c)).Str("ip", c.IP()).Msg("admin login failed")
		return serviceError(c, err, logError(c), "failed to issue token")
	}

	return c.JSON(fiber.Map{
		"token":      token,
		"expires_at": expiresAt,
	})
}
