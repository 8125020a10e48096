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

const prizeColumns = `id::text, name, description, image_url, quantity, active, created_at, updated_at`

// PrizeRepository provides data access for prizes using pgx.
type PrizeRepository struct {
	pool database.TxQuerier
}

// NewPrizeRepository creates a new PrizeRepository with the given pool.
func NewPrizeRepository(pool *pgxpool.Pool) *PrizeRepository {
	return &PrizeRepository{pool: pool}
}

// NewPrizeRepositoryWithPool creates a new PrizeRepository with a custom pool interface.
// This is primarily used for testing.
func NewPrizeRepositoryWithPool(pool database.TxQuerier) *PrizeRepository {
	return &PrizeRepository{pool: pool}
}

func scanPrize(row pgx.Row) (model.Prize, error) {
	var p model.Prize
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Quantity, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// prizeWriteError maps constraint violations on the prizes table.
func prizeWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return service.ErrPrizeExists
		case pgCheckViolation:
			return fmt.Errorf("%w: quantity must not be negative", service.ErrInvalidRequest)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Insert inserts a prize and fills in its store-assigned fields.
// Returns service.ErrPrizeExists if the name is already taken.
func (r *PrizeRepository) Insert(ctx context.Context, prize *model.Prize) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO prizes (name, description, image_url, quantity, active) VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at`,
		prize.Name, prize.Description, prize.ImageURL, prize.Quantity, prize.Active,
	).Scan(&prize.ID, &prize.CreatedAt, &prize.UpdatedAt)
	if err != nil {
		return prizeWriteError("insert prize", err)
	}
	return nil
}

// GetByID retrieves a prize by id.
// Returns nil, nil if the prize is not found (service layer handles this).
func (r *PrizeRepository) GetByID(ctx context.Context, id string) (*model.Prize, error) {
	prize, err := scanPrize(r.pool.QueryRow(ctx,
		`SELECT `+prizeColumns+` FROM prizes WHERE id = $1::text::uuid`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prize by id %s: %w", id, err)
	}
	return &prize, nil
}

// GetByName retrieves a prize by its exact name.
// Returns nil, nil if the prize is not found.
func (r *PrizeRepository) GetByName(ctx context.Context, name string) (*model.Prize, error) {
	prize, err := scanPrize(r.pool.QueryRow(ctx,
		`SELECT `+prizeColumns+` FROM prizes WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prize by name %s: %w", name, err)
	}
	return &prize, nil
}

// Update applies the non-nil fields of upd. NULL parameters keep the current column value.
func (r *PrizeRepository) Update(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error) {
	query := `UPDATE prizes
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			image_url = COALESCE($4, image_url),
			quantity = COALESCE($5, quantity),
			active = COALESCE($6, active),
			updated_at = NOW()
		WHERE id = $1::text::uuid
		RETURNING ` + prizeColumns

	prize, err := scanPrize(r.pool.QueryRow(ctx, query, id, upd.Name, upd.Description, upd.ImageURL, upd.Quantity, upd.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, service.ErrPrizeNotFound
		}
		return nil, prizeWriteError("update prize "+id, err)
	}
	return &prize, nil
}

// Delete removes a prize. Coupons referencing it keep their prize_name; prize_id becomes NULL.
func (r *PrizeRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prizes WHERE id = $1::text::uuid`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return service.ErrPrizeNotFound
		}
		return fmt.Errorf("delete prize %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrPrizeNotFound
	}
	return nil
}

// List returns every prize, newest first.
func (r *PrizeRepository) List(ctx context.Context) ([]model.Prize, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+prizeColumns+` FROM prizes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	defer rows.Close()

	prizes := []model.Prize{}
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prize: %w", err)
		}
		prizes = append(prizes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prize rows: %w", err)
	}
	return prizes, nil
}

// Count returns the number of prizes and how many are active.
func (r *PrizeRepository) Count(ctx context.Context) (total, active int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE active) FROM prizes`).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("count prizes: %w", err)
	}
	return total, active, nil
}
