package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// PrizeRepositoryInterface defines the interface for prize data access.
type PrizeRepositoryInterface interface {
	// Insert stores prize and fills in its ID and timestamps.
	Insert(ctx context.Context, prize *model.Prize) error
	GetByID(ctx context.Context, id string) (*model.Prize, error)
	GetByName(ctx context.Context, name string) (*model.Prize, error)
	Update(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Prize, error)
	Count(ctx context.Context) (total, active int, err error)
}

// PrizeService provides catalog management for prizes.
type PrizeService struct {
	prizeRepo PrizeRepositoryInterface
}

// NewPrizeService creates a new PrizeService with the given repository.
func NewPrizeService(prizeRepo PrizeRepositoryInterface) *PrizeService {
	return &PrizeService{prizeRepo: prizeRepo}
}

// AddPrize creates a prize. Active defaults to true when not given.
func (s *PrizeService) AddPrize(ctx context.Context, req *model.CreatePrizeRequest) (*model.Prize, error) {
	if req == nil || req.Quantity == nil {
		return nil, ErrInvalidRequest
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: prize name is required", ErrInvalidRequest)
	}
	if *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidRequest)
	}

	prize := &model.Prize{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Quantity:    *req.Quantity,
		Active:      true,
	}
	if req.Active != nil {
		prize.Active = *req.Active
	}

	if err := s.prizeRepo.Insert(ctx, prize); err != nil {
		return nil, storeError("insert prize", err)
	}
	return prize, nil
}

// UpdatePrize applies a partial edit and returns the stored prize.
func (s *PrizeService) UpdatePrize(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: prize name is required", ErrInvalidRequest)
		}
		upd.Name = &name
	}
	if upd.ImageURL != nil {
		// An empty string clears the image.
		url := strings.TrimSpace(*upd.ImageURL)
		upd.ImageURL = &url
	}
	if upd.Quantity != nil && *upd.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidRequest)
	}

	prize, err := s.prizeRepo.Update(ctx, id, upd)
	if err != nil {
		return nil, storeError("update prize", err)
	}
	return prize, nil
}

// DeletePrize removes a prize. Coupons already generated keep their prize name.
func (s *PrizeService) DeletePrize(ctx context.Context, id string) error {
	if err := s.prizeRepo.Delete(ctx, id); err != nil {
		return storeError("delete prize", err)
	}
	return nil
}

// GetPrize returns a prize by id.
func (s *PrizeService) GetPrize(ctx context.Context, id string) (*model.Prize, error) {
	prize, err := s.prizeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get prize", err)
	}
	if prize == nil {
		return nil, ErrPrizeNotFound
	}
	return prize, nil
}

// ListPrizes returns the catalog, newest first.
func (s *PrizeService) ListPrizes(ctx context.Context) ([]model.Prize, error) {
	prizes, err := s.prizeRepo.List(ctx)
	if err != nil {
		return nil, storeError("list prizes", err)
	}
	return prizes, nil
}
