package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// mockCouponRepo implements CouponRepositoryInterface with overridable functions.
type mockCouponRepo struct {
	insertBatchFn  func(ctx context.Context, coupons []model.Coupon) ([]model.Coupon, error)
	findByCodeFn   func(ctx context.Context, code string) ([]model.Coupon, error)
	redeemFn       func(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error)
	listFn         func(ctx context.Context) ([]model.Coupon, error)
	listRedeemedFn func(ctx context.Context) ([]model.Coupon, error)
	countFn        func(ctx context.Context) (int, int, error)
}

func (m *mockCouponRepo) InsertBatch(ctx context.Context, coupons []model.Coupon) ([]model.Coupon, error) {
	if m.insertBatchFn != nil {
		return m.insertBatchFn(ctx, coupons)
	}
	return coupons, nil
}

func (m *mockCouponRepo) FindByCode(ctx context.Context, code string) ([]model.Coupon, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, nil
}

func (m *mockCouponRepo) Redeem(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, id, winner)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepo) ListRedeemed(ctx context.Context) ([]model.Coupon, error) {
	if m.listRedeemedFn != nil {
		return m.listRedeemedFn(ctx)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepo) Count(ctx context.Context) (int, int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, 0, nil
}

// mockPrizeRepo implements PrizeRepositoryInterface with overridable functions.
type mockPrizeRepo struct {
	insertFn    func(ctx context.Context, prize *model.Prize) error
	getByIDFn   func(ctx context.Context, id string) (*model.Prize, error)
	getByNameFn func(ctx context.Context, name string) (*model.Prize, error)
	updateFn    func(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error)
	deleteFn    func(ctx context.Context, id string) error
	listFn      func(ctx context.Context) ([]model.Prize, error)
	countFn     func(ctx context.Context) (int, int, error)
}

func (m *mockPrizeRepo) Insert(ctx context.Context, prize *model.Prize) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, prize)
	}
	return nil
}

func (m *mockPrizeRepo) GetByID(ctx context.Context, id string) (*model.Prize, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPrizeRepo) GetByName(ctx context.Context, name string) (*model.Prize, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	return nil, nil
}

func (m *mockPrizeRepo) Update(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return &model.Prize{ID: id}, nil
}

func (m *mockPrizeRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPrizeRepo) List(ctx context.Context) ([]model.Prize, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Prize{}, nil
}

func (m *mockPrizeRepo) Count(ctx context.Context) (int, int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, 0, nil
}

// memoryCouponRepo is an in-memory CouponRepositoryInterface whose Redeem is a
// compare-and-set under a mutex, mirroring the store's conditional update.
type memoryCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
	nextID  int
}

func newMemoryCouponRepo() *memoryCouponRepo {
	return &memoryCouponRepo{coupons: map[string]*model.Coupon{}}
}

func (r *memoryCouponRepo) InsertBatch(_ context.Context, coupons []model.Coupon) ([]model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range coupons {
		for _, existing := range r.coupons {
			if existing.Code == c.Code {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, c.Code)
			}
		}
	}
	now := time.Now()
	created := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		r.nextID++
		c.ID = fmt.Sprintf("id-%d", r.nextID)
		c.CreatedAt, c.UpdatedAt = now, now
		stored := c
		r.coupons[c.ID] = &stored
		created = append(created, c)
	}
	return created, nil
}

func (r *memoryCouponRepo) FindByCode(_ context.Context, code string) ([]model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Coupon
	for _, c := range r.coupons {
		if c.Code == code {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memoryCouponRepo) Redeem(_ context.Context, id string, winner model.Winner) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.coupons[id]
	if !ok {
		return nil, ErrCouponNotFound
	}
	if c.Redeemed {
		return nil, ErrAlreadyRedeemed
	}
	now := time.Now()
	c.Redeemed = true
	c.RedeemedAt = &now
	c.WinnerName, c.WinnerContact, c.WinnerAddress = winner.Name, winner.Contact, winner.Address
	c.UpdatedAt = now
	out := *c
	return &out, nil
}

func (r *memoryCouponRepo) List(_ context.Context) ([]model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryCouponRepo) ListRedeemed(ctx context.Context) ([]model.Coupon, error) {
	all, _ := r.List(ctx)
	out := []model.Coupon{}
	for _, c := range all {
		if c.Redeemed {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCouponRepo) Count(ctx context.Context) (int, int, error) {
	all, _ := r.List(ctx)
	redeemed := 0
	for _, c := range all {
		if c.Redeemed {
			redeemed++
		}
	}
	return len(all), redeemed, nil
}

func activePrize(name string) *mockPrizeRepo {
	return &mockPrizeRepo{
		getByNameFn: func(ctx context.Context, n string) (*model.Prize, error) {
			if n != name {
				return nil, nil
			}
			return &model.Prize{ID: "prize-1", Name: name, Quantity: 10, Active: true}, nil
		},
	}
}
