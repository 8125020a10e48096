package handler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/fairyhunter13/prize-redemption-service/internal/middleware"
	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// qrSize is the edge length of generated QR images in pixels.
const qrSize = 256

// CouponServiceInterface defines the interface for coupon business logic.
type CouponServiceInterface interface {
	CheckCoupon(ctx context.Context, code string) (*model.CouponCheckResult, error)
	RedeemCoupon(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error)
	RedeemByCode(ctx context.Context, code string, winner model.Winner) (*model.Coupon, error)
	GenerateCoupons(ctx context.Context, prizeName string, count int, prefix string) ([]model.Coupon, error)
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	ListWinners(ctx context.Context) ([]model.Coupon, error)
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Stats(ctx context.Context) (*model.Stats, error)
}

// CouponHandler handles HTTP requests for coupon operations.
type CouponHandler struct {
	service       CouponServiceInterface
	validator     *validator.Validate
	publicBaseURL string
}

// NewCouponHandler creates a new CouponHandler. publicBaseURL is the landing page origin
// encoded into coupon QR codes.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate, publicBaseURL string) *CouponHandler {
	return &CouponHandler{
		service:       svc,
		validator:     v,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// normalizeCode trims and upper-cases a user-entered coupon code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckCoupon handles POST /api/coupons/check.
// An unknown or redeemed code is still a 200 with success=false.
func (h *CouponHandler) CheckCoupon(c *fiber.Ctx) error {
	var req model.CheckCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Code = normalizeCode(req.Code)
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	result, err := h.service.CheckCoupon(c.Context(), req.Code)
	if err != nil {
		return serviceError(c, err, logError(c).Str("coupon_code", req.Code), "failed to check coupon")
	}
	return c.JSON(result)
}

// RedeemCoupon handles POST /api/admin/coupons/:id/redeem for a coupon the admin has just checked.
func (h *CouponHandler) RedeemCoupon(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: id is required")
	}

	var req model.RedeemCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	coupon, err := h.service.RedeemCoupon(c.Context(), id, model.Winner{
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
	})
	if err != nil {
		return serviceError(c, err, logError(c).Str("coupon_id", id), "failed to redeem coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("coupon_id", coupon.ID).
		Str("coupon_code", coupon.Code).
		Interface("admin", c.Locals(middleware.LocalsAdmin)).
		Msg("coupon redeemed")

	return c.JSON(fiber.Map{"success": true, "coupon": coupon})
}

// ManualRedeem handles POST /api/admin/coupons/redeem, redeeming by code on a winner's behalf.
func (h *CouponHandler) ManualRedeem(c *fiber.Ctx) error {
	var req model.ManualRedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.Code = normalizeCode(req.Code)
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	coupon, err := h.service.RedeemByCode(c.Context(), req.Code, model.Winner{
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
	})
	if err != nil {
		return serviceError(c, err, logError(c).Str("coupon_code", req.Code), "failed to redeem coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("coupon_id", coupon.ID).
		Str("coupon_code", coupon.Code).
		Interface("admin", c.Locals(middleware.LocalsAdmin)).
		Msg("coupon redeemed manually")

	return c.JSON(fiber.Map{"success": true, "coupon": coupon})
}

// GenerateCoupons handles POST /api/admin/coupons/generate.
func (h *CouponHandler) GenerateCoupons(c *fiber.Ctx) error {
	var req model.GenerateCouponsRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, formatValidationError(err))
	}

	coupons, err := h.service.GenerateCoupons(c.Context(), req.PrizeName, *req.Count, req.Prefix)
	if err != nil {
		return serviceError(c, err, logError(c).Str("prize_name", req.PrizeName), "failed to generate coupons")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("prize_name", req.PrizeName).
		Int("count", len(coupons)).
		Msg("coupons generated")

	return c.Status(fiber.StatusCreated).JSON(model.GenerateCouponsResponse{
		Count:   len(coupons),
		Coupons: coupons,
	})
}

// ListCoupons handles GET /api/admin/coupons.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	coupons, err := h.service.ListCoupons(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to list coupons")
	}
	return c.JSON(coupons)
}

// ListWinners handles GET /api/admin/winners.
func (h *CouponHandler) ListWinners(c *fiber.Ctx) error {
	winners, err := h.service.ListWinners(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to list winners")
	}
	return c.JSON(winners)
}

// Stats handles GET /api/admin/stats.
func (h *CouponHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return serviceError(c, err, logError(c), "failed to load stats")
	}
	return c.JSON(stats)
}

// QRCode handles GET /api/admin/coupons/:code/qr and returns a PNG pointing at the
// public redemption page for the coupon.
func (h *CouponHandler) QRCode(c *fiber.Ctx) error {
	code := normalizeCode(c.Params("code"))
	if code == "" {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request: code is required")
	}

	coupon, err := h.service.GetByCode(c.Context(), code)
	if err != nil {
		return serviceError(c, err, logError(c).Str("coupon_code", code), "failed to load coupon")
	}

	png, err := qrcode.Encode(h.redeemURL(coupon.Code), qrcode.Medium, qrSize)
	if err != nil {
		logError(c).Err(err).Str("coupon_code", code).Msg("failed to encode qr code")
		return errorJSON(c, fiber.StatusInternalServerError, msgInternalError)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

func (h *CouponHandler) redeemURL(code string) string {
	return h.publicBaseURL + "/redeem/" + code
}
