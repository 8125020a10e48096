package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
	"github.com/fairyhunter13/prize-redemption-service/pkg/database"
)

// singletonID is the fixed primary key of the store_info and promo_settings rows.
const singletonID = 1

// SettingsRepository provides data access for the singleton configuration records.
type SettingsRepository struct {
	pool database.TxQuerier
}

// NewSettingsRepository creates a new SettingsRepository with the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// NewSettingsRepositoryWithPool creates a new SettingsRepository with a custom pool interface.
// This is primarily used for testing.
func NewSettingsRepositoryWithPool(pool database.TxQuerier) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetStoreInfo returns nil, nil when store info has never been saved.
func (r *SettingsRepository) GetStoreInfo(ctx context.Context) (*model.StoreInfo, error) {
	var info model.StoreInfo
	err := r.pool.QueryRow(ctx,
		`SELECT name, address, phone, whatsapp, email, updated_at FROM store_info WHERE id = $1`,
		singletonID,
	).Scan(&info.Name, &info.Address, &info.Phone, &info.WhatsApp, &info.Email, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store info: %w", err)
	}
	return &info, nil
}

// UpsertStoreInfo creates or replaces the store info row and sets info.UpdatedAt.
func (r *SettingsRepository) UpsertStoreInfo(ctx context.Context, info *model.StoreInfo) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO store_info (id, name, address, phone, whatsapp, email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			whatsapp = EXCLUDED.whatsapp,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING updated_at`,
		singletonID, info.Name, info.Address, info.Phone, info.WhatsApp, info.Email,
	).Scan(&info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert store info: %w", err)
	}
	return nil
}

// GetPromoSettings returns nil, nil when promo settings have never been saved.
func (r *SettingsRepository) GetPromoSettings(ctx context.Context) (*model.PromoSettings, error) {
	var p model.PromoSettings
	err := r.pool.QueryRow(ctx,
		`SELECT title, description, start_date, end_date, active, updated_at FROM promo_settings WHERE id = $1`,
		singletonID,
	).Scan(&p.Title, &p.Description, &p.StartDate, &p.EndDate, &p.Active, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promo settings: %w", err)
	}
	return &p, nil
}

// UpsertPromoSettings creates or replaces the promo settings row and sets promo.UpdatedAt.
func (r *SettingsRepository) UpsertPromoSettings(ctx context.Context, promo *model.PromoSettings) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO promo_settings (id, title, description, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING updated_at`,
		singletonID, promo.Title, promo.Description, promo.StartDate, promo.EndDate, promo.Active,
	).Scan(&promo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert promo settings: %w", err)
	}
	return nil
}

// DeactivateExpiredPromo turns the promotion off once end_date has passed.
func (r *SettingsRepository) DeactivateExpiredPromo(ctx context.Context, now time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE promo_settings SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND active AND end_date < $2`,
		singletonID, now)
	if err != nil {
		return false, fmt.Errorf("deactivate expired promo: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
