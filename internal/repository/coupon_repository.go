package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
	"github.com/fairyhunter13/prize-redemption-service/internal/service"
	"github.com/fairyhunter13/prize-redemption-service/pkg/database"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgUniqueViolation           = "23505"
	pgCheckViolation            = "23514"
	pgInvalidTextRepresentation = "22P02" // malformed uuid
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	database.TxQuerier
	Begin(ctx context.Context) (pgx.Tx, error)
}

const couponColumns = `id::text, code, COALESCE(prize_id::text, ''), prize_name, redeemed, redeemed_at,
	winner_name, winner_contact, winner_address, created_at, updated_at`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.PrizeID,
		&c.PrizeName,
		&c.Redeemed,
		&c.RedeemedAt,
		&c.WinnerName,
		&c.WinnerContact,
		&c.WinnerAddress,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func collectCoupons(rows pgx.Rows) ([]model.Coupon, error) {
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// InsertBatch inserts all coupons in one transaction.
// Returns service.ErrDuplicateCode if any code already exists; nothing is inserted then.
func (r *CouponRepository) InsertBatch(ctx context.Context, coupons []model.Coupon) ([]model.Coupon, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	query := `INSERT INTO coupons (code, prize_id, prize_name)
		VALUES ($1, NULLIF($2::text, '')::uuid, $3)
		RETURNING ` + couponColumns

	created := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		stored, err := scanCoupon(tx.QueryRow(ctx, query, c.Code, c.PrizeID, c.PrizeName))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return nil, fmt.Errorf("%w: %s", service.ErrDuplicateCode, c.Code)
			}
			return nil, fmt.Errorf("insert coupon %s: %w", c.Code, err)
		}
		created = append(created, stored)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit coupons: %w", err)
	}
	return created, nil
}

// FindByCode returns coupons whose code matches exactly. At most two rows are read,
// which is enough for the caller to detect a duplicate.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1 LIMIT 2`, code)
	if err != nil {
		return nil, fmt.Errorf("find coupon by code %s: %w", code, err)
	}
	return collectCoupons(rows)
}

// Redeem sets the winner fields only while redeemed is false, in one statement.
// Concurrent callers serialize on the row lock; the loser sees redeemed=true and updates nothing.
func (r *CouponRepository) Redeem(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error) {
	query := `UPDATE coupons
		SET redeemed = TRUE,
			redeemed_at = NOW(),
			winner_name = $2,
			winner_contact = $3,
			winner_address = $4,
			updated_at = NOW()
		WHERE id = $1::text::uuid AND redeemed = FALSE
		RETURNING ` + couponColumns

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id, winner.Name, winner.Contact, winner.Address))
	if err == nil {
		return &coupon, nil
	}
	if isInvalidUUID(err) {
		return nil, service.ErrCouponNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("redeem coupon %s: %w", id, err)
	}

	// Nothing updated: either the coupon is missing or it was already redeemed.
	var exists bool
	err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupons WHERE id = $1::text::uuid)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check coupon %s: %w", id, err)
	}
	if !exists {
		return nil, service.ErrCouponNotFound
	}
	return nil, service.ErrAlreadyRedeemed
}

// List returns all coupons, newest first.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC, code DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return collectCoupons(rows)
}

// ListRedeemed returns redeemed coupons, latest redemption first.
func (r *CouponRepository) ListRedeemed(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+couponColumns+` FROM coupons WHERE redeemed ORDER BY redeemed_at DESC, code DESC`)
	if err != nil {
		return nil, fmt.Errorf("list redeemed coupons: %w", err)
	}
	return collectCoupons(rows)
}

// Count returns the number of coupons and how many of them are redeemed.
func (r *CouponRepository) Count(ctx context.Context) (total, redeemed int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE redeemed) FROM coupons`).Scan(&total, &redeemed)
	if err != nil {
		return 0, 0, fmt.Errorf("count coupons: %w", err)
	}
	return total, redeemed, nil
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}
