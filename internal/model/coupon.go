package model

import "time"

// Coupon represents a redemption code bound to a prize.
type Coupon struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	PrizeID       string     `json:"prize_id,omitempty"`
	PrizeName     string     `json:"prize_name"`
	Redeemed      bool       `json:"redeemed"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	WinnerName    string     `json:"winner_name,omitempty"`
	WinnerContact string     `json:"winner_contact,omitempty"`
	WinnerAddress string     `json:"winner_address,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Winner holds the identity captured when a coupon is redeemed.
type Winner struct {
	Name    string
	Contact string
	Address string
}

// CouponCheckResult is the outcome of looking up a coupon code.
// Coupon is nil when the code does not exist.
type CouponCheckResult struct {
	Success bool    `json:"success"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Message string  `json:"message"`
}

// Stats summarizes the catalog for the admin dashboard.
type Stats struct {
	TotalPrizes      int `json:"total_prizes"`
	ActivePrizes     int `json:"active_prizes"`
	TotalCoupons     int `json:"total_coupons"`
	RedeemedCoupons  int `json:"redeemed_coupons"`
	AvailableCoupons int `json:"available_coupons"`
}

// CheckCouponRequest is the DTO for POST /api/coupons/check
type CheckCouponRequest struct {
	Code string `json:"code" validate:"required,max=64,couponcode"`
}

// RedeemCouponRequest is the DTO for redeeming a previously checked coupon.
type RedeemCouponRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=255"`
	Contact string `json:"contact" validate:"required,notblank,max=64"`
	Address string `json:"address" validate:"max=1024"`
}

// ManualRedeemRequest is the DTO for admin redemption by coupon code.
type ManualRedeemRequest struct {
	Code    string `json:"code" validate:"required,max=64,couponcode"`
	Name    string `json:"name" validate:"required,notblank,max=255"`
	Contact string `json:"contact" validate:"required,notblank,max=64"`
	Address string `json:"address" validate:"max=1024"`
}

// GenerateCouponsRequest is the DTO for batch coupon generation.
// The lte bound on Count must equal service.MaxGenerateCount.
type GenerateCouponsRequest struct {
	PrizeName string `json:"prize_name" validate:"required,notblank,max=255"`
	Count     *int   `json:"count" validate:"required,gte=1,lte=1000"`
	Prefix    string `json:"prefix" validate:"omitempty,alphanum,max=10"`
}

// GenerateCouponsResponse is returned after a successful batch generation.
type GenerateCouponsResponse struct {
	Count   int      `json:"count"`
	Coupons []Coupon `json:"coupons"`
}
