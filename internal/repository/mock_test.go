package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

func errRow(err error) *mockRow {
	return &mockRow{scanFn: func(dest ...any) error { return err }}
}

// mockRows implements pgx.Rows over a fixed list of scan functions.
// Methods the repositories never call are left to the embedded nil interface.
type mockRows struct {
	pgx.Rows
	scans  []func(dest ...any) error
	pos    int
	err    error
	closed bool
}

func (m *mockRows) Next() bool {
	if m.pos >= len(m.scans) {
		return false
	}
	m.pos++
	return true
}

func (m *mockRows) Scan(dest ...any) error {
	return m.scans[m.pos-1](dest...)
}

func (m *mockRows) Err() error { return m.err }

func (m *mockRows) Close() { m.closed = true }

// mockTx implements pgx.Tx for testing InsertBatch.
type mockTx struct {
	pgx.Tx
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

// mockPool implements PoolInterface for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	beginFn    func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// fillCoupon writes c into the destinations used by scanCoupon.
func fillCoupon(c model.Coupon) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = c.ID
		*(dest[1].(*string)) = c.Code
		*(dest[2].(*string)) = c.PrizeID
		*(dest[3].(*string)) = c.PrizeName
		*(dest[4].(*bool)) = c.Redeemed
		*(dest[5].(**time.Time)) = c.RedeemedAt
		*(dest[6].(*string)) = c.WinnerName
		*(dest[7].(*string)) = c.WinnerContact
		*(dest[8].(*string)) = c.WinnerAddress
		*(dest[9].(*time.Time)) = c.CreatedAt
		*(dest[10].(*time.Time)) = c.UpdatedAt
		return nil
	}
}

// fillPrize writes p into the destinations used by scanPrize.
func fillPrize(p model.Prize) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = p.ID
		*(dest[1].(*string)) = p.Name
		*(dest[2].(*string)) = p.Description
		*(dest[3].(*string)) = p.ImageURL
		*(dest[4].(*int)) = p.Quantity
		*(dest[5].(*bool)) = p.Active
		*(dest[6].(*time.Time)) = p.CreatedAt
		*(dest[7].(*time.Time)) = p.UpdatedAt
		return nil
	}
}
