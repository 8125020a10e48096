package service

import "errors"

var (
	// ErrCouponNotFound is returned when no coupon matches a code or identifier
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrPrizeNotFound is returned when no prize matches a name or identifier
	ErrPrizeNotFound = errors.New("prize not found")

	// ErrPrizeExists is returned when creating or renaming a prize to a name already in use
	ErrPrizeExists = errors.New("prize already exists")

	// ErrSettingsNotFound is returned when a singleton record has never been written
	ErrSettingsNotFound = errors.New("settings not found")

	// ErrAlreadyRedeemed is returned when the conditional redemption write finds redeemed=true
	ErrAlreadyRedeemed = errors.New("coupon already redeemed")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateCode is returned when a coupon code is not unique
	ErrDuplicateCode = errors.New("duplicate coupon code")

	// ErrPrizeInactive is returned when generating coupons for an inactive prize
	ErrPrizeInactive = errors.New("prize is not active")

	// ErrStoreUnavailable wraps failures of the underlying store
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidCredentials is returned when admin login fails
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrPrizeInactive)
}

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrPrizeNotFound) ||
		errors.Is(err, ErrSettingsNotFound)
}
