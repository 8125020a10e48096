package main

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/prize-redemption-service/internal/handler"
	"github.com/fairyhunter13/prize-redemption-service/internal/middleware"
)

type routeHandlers struct {
	health   *handler.HealthHandler
	coupons  *handler.CouponHandler
	prizes   *handler.PrizeHandler
	settings *handler.SettingsHandler
	auth     *handler.AuthHandler
}

// setupRoutes registers the public landing page API and the admin API.
// The public API is read-only. Every /api/admin route except login requires a valid admin token.
func setupRoutes(app *fiber.App, h routeHandlers, tokens middleware.TokenParser) {
	app.Get("/health", h.health.Check)

	api := app.Group("/api")
	api.Post("/coupons/check", h.coupons.CheckCoupon)
	api.Get("/store-info", h.settings.GetStoreInfo)
	api.Get("/promo", h.settings.GetPromo)

	// Registered ahead of the admin group so the token check never runs for login.
	api.Post("/admin/login", h.auth.Login)

	admin := api.Group("/admin", middleware.RequireAdmin(tokens))
	admin.Get("/stats", h.coupons.Stats)
	admin.Get("/winners", h.coupons.ListWinners)
	admin.Get("/coupons", h.coupons.ListCoupons)
	admin.Post("/coupons/generate", h.coupons.GenerateCoupons)
	admin.Post("/coupons/redeem", h.coupons.ManualRedeem)
	admin.Post("/coupons/:id/redeem", h.coupons.RedeemCoupon)
	admin.Get("/coupons/:code/qr", h.coupons.QRCode)

	admin.Get("/prizes", h.prizes.ListPrizes)
	admin.Post("/prizes", h.prizes.CreatePrize)
	admin.Get("/prizes/:id", h.prizes.GetPrize)
	admin.Patch("/prizes/:id", h.prizes.UpdatePrize)
	admin.Delete("/prizes/:id", h.prizes.DeletePrize)

	admin.Put("/store-info", h.settings.UpdateStoreInfo)
	admin.Put("/promo", h.settings.UpdatePromo)
}
