//go:build integration

// Integration tests run the repositories against a disposable PostgreSQL container.
//
// Usage:
//
//	go test -v -race -tags integration ./internal/repository/...
package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
	"github.com/fairyhunter13/prize-redemption-service/internal/service"
	"github.com/fairyhunter13/prize-redemption-service/pkg/database"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err = pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	databaseURL := fmt.Sprintf("postgres://testuser:testpass@%s/testdb?sslmode=disable", resource.GetHostPort("5432/tcp"))
	_ = resource.Expire(120)

	pool.MaxWait = 120 * time.Second
	if err = pool.Retry(func() error {
		var err error
		testPool, err = pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		return testPool.Ping(context.Background())
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	if err := database.EnsureSchema(context.Background(), testPool); err != nil {
		log.Fatalf("Could not apply schema: %s", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}
	os.Exit(code)
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), "TRUNCATE TABLE coupons, prizes, store_info, promo_settings CASCADE")
	require.NoError(t, err)
}

func seedCoupon(t *testing.T, ctx context.Context, code string) model.Coupon {
	t.Helper()
	prizeRepo := NewPrizeRepository(testPool)
	prize := &model.Prize{Name: "Prize " + code, Quantity: 1, Active: true}
	require.NoError(t, prizeRepo.Insert(ctx, prize))

	created, err := NewCouponRepository(testPool).InsertBatch(ctx, []model.Coupon{
		{Code: code, PrizeID: prize.ID, PrizeName: prize.Name},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func TestIntegration_ConcurrentRedeem_ExactlyOneWins(t *testing.T) {
	cleanupTables(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coupon := seedCoupon(t, ctx, "RACE001")
	repo := NewCouponRepository(testPool)

	const attempts = 50
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Redeem(ctx, coupon.ID, model.Winner{Name: fmt.Sprintf("user_%d", i), Contact: "08"})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, already, other int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrAlreadyRedeemed):
			already++
		default:
			other++
			t.Logf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one redemption should succeed")
	assert.Equal(t, attempts-1, already)
	assert.Zero(t, other)

	total, redeemed, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, redeemed)
}

func TestIntegration_Redeem_UnknownAndMalformedID(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	repo := NewCouponRepository(testPool)

	_, err := repo.Redeem(ctx, "00000000-0000-0000-0000-000000000000", model.Winner{Name: "A", Contact: "1"})
	assert.ErrorIs(t, err, service.ErrCouponNotFound)

	_, err = repo.Redeem(ctx, "not-a-uuid", model.Winner{Name: "A", Contact: "1"})
	assert.ErrorIs(t, err, service.ErrCouponNotFound)
}

func TestIntegration_InsertBatch_DuplicateRollsBack(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	seedCoupon(t, ctx, "DUP001")
	repo := NewCouponRepository(testPool)

	_, err := repo.InsertBatch(ctx, []model.Coupon{
		{Code: "NEW001", PrizeName: "X"},
		{Code: "DUP001", PrizeName: "X"},
	})
	assert.ErrorIs(t, err, service.ErrDuplicateCode)

	found, err := repo.FindByCode(ctx, "NEW001")
	require.NoError(t, err)
	assert.Empty(t, found, "a failed batch must not leave partial rows")
}

func TestIntegration_DeletePrize_KeepsCouponPrizeName(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	coupon := seedCoupon(t, ctx, "KEEP001")

	require.NoError(t, NewPrizeRepository(testPool).Delete(ctx, coupon.PrizeID))

	found, err := NewCouponRepository(testPool).FindByCode(ctx, "KEEP001")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Empty(t, found[0].PrizeID)
	assert.Equal(t, "Prize KEEP001", found[0].PrizeName)
}

func TestIntegration_Settings_SingletonUpsert(t *testing.T) {
	cleanupTables(t)
	ctx := context.Background()
	repo := NewSettingsRepository(testPool)

	info, err := repo.GetStoreInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, info)

	require.NoError(t, repo.UpsertStoreInfo(ctx, &model.StoreInfo{Name: "First"}))
	require.NoError(t, repo.UpsertStoreInfo(ctx, &model.StoreInfo{Name: "Second"}))

	info, err = repo.GetStoreInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Second", info.Name)

	var rows int
	require.NoError(t, testPool.QueryRow(ctx, "SELECT COUNT(*) FROM store_info").Scan(&rows))
	assert.Equal(t, 1, rows)

	now := time.Now().UTC()
	require.NoError(t, repo.UpsertPromoSettings(ctx, &model.PromoSettings{
		Title:     "Ended",
		StartDate: now.Add(-48 * time.Hour),
		EndDate:   now.Add(-time.Hour),
		Active:    true,
	}))
	changed, err := repo.DeactivateExpiredPromo(ctx, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.DeactivateExpiredPromo(ctx, now)
	require.NoError(t, err)
	assert.False(t, changed, "already inactive promo is left alone")
}
