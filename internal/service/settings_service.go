package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// SettingsRepositoryInterface defines access to the singleton configuration records.
// Getters return nil, nil when the record has never been written.
type SettingsRepositoryInterface interface {
	GetStoreInfo(ctx context.Context) (*model.StoreInfo, error)
	UpsertStoreInfo(ctx context.Context, info *model.StoreInfo) error
	GetPromoSettings(ctx context.Context) (*model.PromoSettings, error)
	UpsertPromoSettings(ctx context.Context, promo *model.PromoSettings) error
	// DeactivateExpiredPromo flips active to false when end_date < now. Reports whether it did.
	DeactivateExpiredPromo(ctx context.Context, now time.Time) (bool, error)
}

// SettingsService manages store info and promo settings.
type SettingsService struct {
	repo SettingsRepositoryInterface
}

// NewSettingsService creates a new SettingsService with the given repository.
func NewSettingsService(repo SettingsRepositoryInterface) *SettingsService {
	return &SettingsService{repo: repo}
}

// GetStoreInfo returns the store info singleton.
func (s *SettingsService) GetStoreInfo(ctx context.Context) (*model.StoreInfo, error) {
	info, err := s.repo.GetStoreInfo(ctx)
	if err != nil {
		return nil, storeError("get store info", err)
	}
	if info == nil {
		return nil, ErrSettingsNotFound
	}
	return info, nil
}

// UpdateStoreInfo creates or replaces the store info singleton.
func (s *SettingsService) UpdateStoreInfo(ctx context.Context, info *model.StoreInfo) (*model.StoreInfo, error) {
	if info == nil || strings.TrimSpace(info.Name) == "" {
		return nil, fmt.Errorf("%w: store name is required", ErrInvalidRequest)
	}
	if err := s.repo.UpsertStoreInfo(ctx, info); err != nil {
		return nil, storeError("upsert store info", err)
	}
	return info, nil
}

// GetPromoSettings returns the promo settings singleton.
func (s *SettingsService) GetPromoSettings(ctx context.Context) (*model.PromoSettings, error) {
	promo, err := s.repo.GetPromoSettings(ctx)
	if err != nil {
		return nil, storeError("get promo settings", err)
	}
	if promo == nil {
		return nil, ErrSettingsNotFound
	}
	return promo, nil
}

// UpdatePromoSettings creates or replaces the promo settings singleton.
func (s *SettingsService) UpdatePromoSettings(ctx context.Context, promo *model.PromoSettings) (*model.PromoSettings, error) {
	if promo == nil || strings.TrimSpace(promo.Title) == "" {
		return nil, fmt.Errorf("%w: promo title is required", ErrInvalidRequest)
	}
	if promo.EndDate.Before(promo.StartDate) {
		return nil, fmt.Errorf("%w: end date is before start date", ErrInvalidRequest)
	}
	if err := s.repo.UpsertPromoSettings(ctx, promo); err != nil {
		return nil, storeError("upsert promo settings", err)
	}
	return promo, nil
}

// ExpirePromo deactivates the promotion once its end date has passed.
func (s *SettingsService) ExpirePromo(ctx context.Context, now time.Time) (bool, error) {
	expired, err := s.repo.DeactivateExpiredPromo(ctx, now)
	if err != nil {
		return false, storeError("expire promo", err)
	}
	return expired, nil
}
