package model

import "time"

// Prize represents a catalog entry that coupons can award.
type Prize struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Quantity    int       `json:"quantity"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrizeUpdate carries the fields of a partial prize edit. Nil fields are left untouched.
type PrizeUpdate struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
}

// Empty reports whether the update carries no fields.
func (u PrizeUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.ImageURL == nil && u.Quantity == nil && u.Active == nil
}

// CreatePrizeRequest is the DTO for creating a prize.
type CreatePrizeRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=2048"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=2048"`
	Quantity    *int   `json:"quantity" validate:"required,gte=0"`
	Active      *bool  `json:"active"`
}
