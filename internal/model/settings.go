package model

import "time"

// StoreInfo is the singleton record describing the organizing store.
type StoreInfo struct {
	Name      string    `json:"name" validate:"required,notblank,max=255"`
	Address   string    `json:"address" validate:"max=1024"`
	Phone     string    `json:"phone" validate:"max=64"`
	WhatsApp  string    `json:"whatsapp" validate:"max=64"`
	Email     string    `json:"email" validate:"omitempty,email,max=255"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PromoSettings is the singleton record holding the promotion window.
type PromoSettings struct {
	Title       string    `json:"title" validate:"required,notblank,max=255"`
	Description string    `json:"description" validate:"max=2048"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Running reports whether the promotion is active and t falls inside its window.
func (p PromoSettings) Running(t time.Time) bool {
	return p.Active && !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// PromoStatus is the public view of the promotion, with Running evaluated at read time.
type PromoStatus struct {
	PromoSettings
	Running bool `json:"running"`
}
