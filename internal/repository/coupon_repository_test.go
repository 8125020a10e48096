package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
	"github.com/fairyhunter13/prize-redemption-service/internal/service"
)

const testCouponID = "6f1c2a4e-8d0b-4c55-9a3e-2b7d1f0e9c11"

func TestCouponRepository_InsertBatch_Success(t *testing.T) {
	now := time.Now()
	var capturedSQL string
	var capturedArgs [][]any

	tx := &mockTx{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = append(capturedArgs, args)
			return &mockRow{scanFn: fillCoupon(model.Coupon{
				ID:        "id-" + args[0].(string),
				Code:      args[0].(string),
				PrizeID:   args[1].(string),
				PrizeName: args[2].(string),
				CreatedAt: now,
				UpdatedAt: now,
			})}
		},
	}
	repo := NewCouponRepositoryWithPool(&mockPool{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	created, err := repo.InsertBatch(context.Background(), []model.Coupon{
		{Code: "CP1700000000000001", PrizeID: "p1", PrizeName: "Voucher"},
		{Code: "CP1700000000000002", PrizeID: "p1", PrizeName: "Voucher"},
	})

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "id-CP1700000000000001", created[0].ID)
	assert.Equal(t, "CP1700000000000002", created[1].Code)
	assert.False(t, created[1].Redeemed)
	assert.True(t, tx.committed)
	assert.Contains(t, capturedSQL, "INSERT INTO coupons")
	assert.Contains(t, capturedSQL, "RETURNING")
	assert.Len(t, capturedArgs, 2)
}

func TestCouponRepository_InsertBatch_DuplicateCode(t *testing.T) {
	calls := 0
	tx := &mockTx{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			calls++
			if calls == 2 {
				return errRow(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
			}
			return &mockRow{scanFn: fillCoupon(model.Coupon{Code: args[0].(string)})}
		},
	}
	repo := NewCouponRepositoryWithPool(&mockPool{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	created, err := repo.InsertBatch(context.Background(), []model.Coupon{
		{Code: "A1"}, {Code: "A2"}, {Code: "A3"},
	})

	require.Error(t, err)
	assert.Nil(t, created)
	assert.True(t, errors.Is(err, service.ErrDuplicateCode))
	assert.Equal(t, 2, calls, "should stop at the first failing insert")
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestCouponRepository_InsertBatch_OtherError(t *testing.T) {
	dbErr := errors.New("connection reset")
	tx := &mockTx{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(dbErr) },
	}
	repo := NewCouponRepositoryWithPool(&mockPool{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	_, err := repo.InsertBatch(context.Background(), []model.Coupon{{Code: "A1"}})

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrDuplicateCode))
	assert.True(t, errors.Is(err, dbErr), "should wrap original error")
	assert.True(t, tx.rolledBack)
}

func TestCouponRepository_InsertBatch_BeginError(t *testing.T) {
	repo := NewCouponRepositoryWithPool(&mockPool{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return nil, errors.New("pool closed") },
	})

	_, err := repo.InsertBatch(context.Background(), []model.Coupon{{Code: "A1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
}

func TestCouponRepository_InsertBatch_CommitError(t *testing.T) {
	tx := &mockTx{commitErr: errors.New("serialization failure")}
	repo := NewCouponRepositoryWithPool(&mockPool{
		beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil },
	})

	created, err := repo.InsertBatch(context.Background(), []model.Coupon{{Code: "A1"}})

	require.Error(t, err)
	assert.Nil(t, created)
	assert.Contains(t, err.Error(), "commit coupons")
}

func TestCouponRepository_FindByCode(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	rows := &mockRows{scans: []func(dest ...any) error{
		fillCoupon(model.Coupon{ID: testCouponID, Code: "CP123"}),
	}}
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			capturedArgs = args
			return rows, nil
		},
	})

	coupons, err := repo.FindByCode(context.Background(), "CP123")

	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, testCouponID, coupons[0].ID)
	assert.Contains(t, capturedSQL, "WHERE code = $1")
	assert.Contains(t, capturedSQL, "LIMIT 2")
	assert.Equal(t, []any{"CP123"}, capturedArgs)
	assert.True(t, rows.closed)
}

func TestCouponRepository_FindByCode_NoMatch(t *testing.T) {
	repo := NewCouponRepositoryWithPool(&mockPool{})

	coupons, err := repo.FindByCode(context.Background(), "MISSING")

	require.NoError(t, err)
	assert.Empty(t, coupons)
}

func TestCouponRepository_FindByCode_RowsError(t *testing.T) {
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &mockRows{err: errors.New("network")}, nil
		},
	})

	_, err := repo.FindByCode(context.Background(), "CP1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterate coupon rows")
}

func TestCouponRepository_Redeem_Success(t *testing.T) {
	redeemedAt := time.Now()
	var capturedSQL string
	var capturedArgs []any
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: fillCoupon(model.Coupon{
				ID:            testCouponID,
				Code:          "CP123",
				Redeemed:      true,
				RedeemedAt:    &redeemedAt,
				WinnerName:    "Alice",
				WinnerContact: "0812",
			})}
		},
	})

	coupon, err := repo.Redeem(context.Background(), testCouponID, model.Winner{Name: "Alice", Contact: "0812"})

	require.NoError(t, err)
	require.NotNil(t, coupon)
	assert.True(t, coupon.Redeemed)
	assert.Equal(t, "Alice", coupon.WinnerName)
	require.NotNil(t, coupon.RedeemedAt)
	assert.Contains(t, capturedSQL, "redeemed = FALSE", "update must be conditional on the unredeemed state")
	assert.Equal(t, []any{testCouponID, "Alice", "0812", ""}, capturedArgs)
}

func TestCouponRepository_Redeem_AlreadyRedeemed(t *testing.T) {
	calls := 0
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			calls++
			if calls == 1 {
				return errRow(pgx.ErrNoRows)
			}
			assert.Contains(t, sql, "EXISTS")
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*bool)) = true
				return nil
			}}
		},
	})

	coupon, err := repo.Redeem(context.Background(), testCouponID, model.Winner{Name: "Bob", Contact: "1"})

	assert.Nil(t, coupon)
	assert.ErrorIs(t, err, service.ErrAlreadyRedeemed)
	assert.Equal(t, 2, calls)
}

func TestCouponRepository_Redeem_NotFound(t *testing.T) {
	calls := 0
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			calls++
			if calls == 1 {
				return errRow(pgx.ErrNoRows)
			}
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*bool)) = false
				return nil
			}}
		},
	})

	_, err := repo.Redeem(context.Background(), testCouponID, model.Winner{Name: "Bob", Contact: "1"})

	assert.ErrorIs(t, err, service.ErrCouponNotFound)
}

func TestCouponRepository_Redeem_MalformedID(t *testing.T) {
	calls := 0
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			calls++
			return errRow(&pgconn.PgError{Code: pgInvalidTextRepresentation, Message: "invalid input syntax for type uuid"})
		},
	})

	_, err := repo.Redeem(context.Background(), "not-a-uuid", model.Winner{Name: "Bob", Contact: "1"})

	assert.ErrorIs(t, err, service.ErrCouponNotFound)
	assert.Equal(t, 1, calls, "malformed id should not trigger the existence check")
}

func TestCouponRepository_Redeem_DatabaseError(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(dbErr) },
	})

	_, err := repo.Redeem(context.Background(), testCouponID, model.Winner{Name: "Bob", Contact: "1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.False(t, errors.Is(err, service.ErrAlreadyRedeemed))
}

func TestCouponRepository_List(t *testing.T) {
	var capturedSQL string
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return &mockRows{scans: []func(dest ...any) error{
				fillCoupon(model.Coupon{Code: "B"}),
				fillCoupon(model.Coupon{Code: "A"}),
			}}, nil
		},
	})

	coupons, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, coupons, 2)
	assert.Equal(t, "B", coupons[0].Code)
	assert.Contains(t, capturedSQL, "ORDER BY created_at DESC")
}

func TestCouponRepository_ListRedeemed(t *testing.T) {
	var capturedSQL string
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedSQL = sql
			return &mockRows{}, nil
		},
	})

	coupons, err := repo.ListRedeemed(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, coupons)
	assert.Empty(t, coupons)
	assert.Contains(t, capturedSQL, "WHERE redeemed")
}

func TestCouponRepository_List_QueryError(t *testing.T) {
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("timeout")
		},
	})

	_, err := repo.List(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list coupons")
}

func TestCouponRepository_Count(t *testing.T) {
	repo := NewCouponRepositoryWithPool(&mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*int)) = 10
				*(dest[1].(*int)) = 3
				return nil
			}}
		},
	})

	total, redeemed, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 3, redeemed)
}
