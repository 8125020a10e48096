package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// DefaultCodePrefix is used when a generate request carries no prefix.
const DefaultCodePrefix = "CP"

// MaxGenerateCount bounds a single generate batch.
const MaxGenerateCount = 1000

// Check result messages.
const (
	MsgCouponNotFound  = "coupon not found"
	MsgAlreadyRedeemed = "coupon has already been redeemed"
	msgWinnerFormat    = "congratulations, you won %s"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	// InsertBatch stores all coupons or none. Returns ErrDuplicateCode when a code is taken.
	InsertBatch(ctx context.Context, coupons []model.Coupon) ([]model.Coupon, error)
	// FindByCode returns every coupon whose code equals code exactly (at most two are read).
	FindByCode(ctx context.Context, code string) ([]model.Coupon, error)
	// Redeem marks the coupon redeemed only if it is not redeemed yet.
	// Returns ErrCouponNotFound or ErrAlreadyRedeemed when nothing was written.
	Redeem(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	ListRedeemed(ctx context.Context) ([]model.Coupon, error)
	Count(ctx context.Context) (total, redeemed int, err error)
}

// CouponService implements the coupon lifecycle: check, generate, redeem, audit.
type CouponService struct {
	couponRepo CouponRepositoryInterface
	prizeRepo  PrizeRepositoryInterface
	now        func() time.Time
}

// NewCouponService creates a new CouponService with the given repositories.
func NewCouponService(couponRepo CouponRepositoryInterface, prizeRepo PrizeRepositoryInterface) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		prizeRepo:  prizeRepo,
		now:        time.Now,
	}
}

// CheckCoupon looks up code exactly as given; callers normalize case beforehand.
// An unknown or redeemed code is a normal result with Success=false.
func (s *CouponService) CheckCoupon(ctx context.Context, code string) (*model.CouponCheckResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: coupon code is required", ErrInvalidRequest)
	}

	coupon, err := s.findOne(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return &model.CouponCheckResult{Success: false, Message: MsgCouponNotFound}, nil
		}
		return nil, err
	}

	if coupon.Redeemed {
		return &model.CouponCheckResult{Success: false, Coupon: coupon, Message: MsgAlreadyRedeemed}, nil
	}
	return &model.CouponCheckResult{
		Success: true,
		Coupon:  coupon,
		Message: fmt.Sprintf(msgWinnerFormat, coupon.PrizeName),
	}, nil
}

// RedeemCoupon records winner as the claimant of the coupon identified by id.
// The transition is a single conditional write; a coupon is redeemed at most once.
func (s *CouponService) RedeemCoupon(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: coupon id is required", ErrInvalidRequest)
	}
	winner, err := normalizeWinner(winner)
	if err != nil {
		return nil, err
	}

	coupon, err := s.couponRepo.Redeem(ctx, id, winner)
	if err != nil {
		return nil, storeError("redeem coupon", err)
	}
	return coupon, nil
}

// RedeemByCode resolves code to a coupon and redeems it. Used for manual admin redemption.
func (s *CouponService) RedeemByCode(ctx context.Context, code string, winner model.Winner) (*model.Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: coupon code is required", ErrInvalidRequest)
	}
	if _, err := normalizeWinner(winner); err != nil {
		return nil, err
	}

	coupon, err := s.findOne(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.RedeemCoupon(ctx, coupon.ID, winner)
}

// GenerateCoupons creates count unredeemed coupons for the named prize.
// Codes are prefix + unix millis + 1-based index padded to three digits.
func (s *CouponService) GenerateCoupons(ctx context.Context, prizeName string, count int, prefix string) ([]model.Coupon, error) {
	prizeName = strings.TrimSpace(prizeName)
	if prizeName == "" {
		return nil, fmt.Errorf("%w: prize name is required", ErrInvalidRequest)
	}
	if count < 1 || count > MaxGenerateCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidRequest, MaxGenerateCount)
	}
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultCodePrefix
	}

	prize, err := s.prizeRepo.GetByName(ctx, prizeName)
	if err != nil {
		return nil, storeError("get prize", err)
	}
	if prize == nil {
		return nil, ErrPrizeNotFound
	}
	if !prize.Active {
		return nil, ErrPrizeInactive
	}

	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	seen := make(map[string]struct{}, count)
	coupons := make([]model.Coupon, 0, count)
	for i := 1; i <= count; i++ {
		code := fmt.Sprintf("%s%s%03d", prefix, stamp, i)
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("%w: %s generated twice", ErrDuplicateCode, code)
		}
		seen[code] = struct{}{}
		coupons = append(coupons, model.Coupon{
			Code:      code,
			PrizeID:   prize.ID,
			PrizeName: prize.Name,
		})
	}

	created, err := s.couponRepo.InsertBatch(ctx, coupons)
	if err != nil {
		return nil, storeError("insert coupons", err)
	}
	return created, nil
}

// ListCoupons returns every coupon, newest first.
func (s *CouponService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, storeError("list coupons", err)
	}
	return coupons, nil
}

// ListWinners returns redeemed coupons, most recent redemption first.
func (s *CouponService) ListWinners(ctx context.Context) ([]model.Coupon, error) {
	winners, err := s.couponRepo.ListRedeemed(ctx)
	if err != nil {
		return nil, storeError("list winners", err)
	}
	return winners, nil
}

// GetByCode returns the single coupon with the given code.
func (s *CouponService) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	return s.findOne(ctx, code)
}

// Stats aggregates prize and coupon counters for the dashboard.
func (s *CouponService) Stats(ctx context.Context) (*model.Stats, error) {
	totalPrizes, activePrizes, err := s.prizeRepo.Count(ctx)
	if err != nil {
		return nil, storeError("count prizes", err)
	}
	totalCoupons, redeemed, err := s.couponRepo.Count(ctx)
	if err != nil {
		return nil, storeError("count coupons", err)
	}
	return &model.Stats{
		TotalPrizes:      totalPrizes,
		ActivePrizes:     activePrizes,
		TotalCoupons:     totalCoupons,
		RedeemedCoupons:  redeemed,
		AvailableCoupons: totalCoupons - redeemed,
	}, nil
}

// findOne resolves code to exactly one coupon. A second match is a hard error.
func (s *CouponService) findOne(ctx context.Context, code string) (*model.Coupon, error) {
	matches, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, storeError("find coupon", err)
	}
	switch len(matches) {
	case 0:
		return nil, ErrCouponNotFound
	case 1:
		return &matches[0], nil
	default:
		log.Error().Str("coupon_code", code).Int("matches", len(matches)).Msg("coupon code is not unique")
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, code)
	}
}

func normalizeWinner(w model.Winner) (model.Winner, error) {
	w.Name = strings.TrimSpace(w.Name)
	w.Contact = strings.TrimSpace(w.Contact)
	w.Address = strings.TrimSpace(w.Address)
	if w.Name == "" {
		return w, fmt.Errorf("%w: winner name is required", ErrInvalidRequest)
	}
	if w.Contact == "" {
		return w, fmt.Errorf("%w: winner contact is required", ErrInvalidRequest)
	}
	return w, nil
}

// storeError keeps domain sentinels as they are and marks anything else as a store fault.
func storeError(op string, err error) error {
	if IsNotFound(err) || IsValidation(err) ||
		errors.Is(err, ErrAlreadyRedeemed) || errors.Is(err, ErrPrizeExists) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
