package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

// SettingsStore implements service.SettingsRepositoryInterface.
type SettingsStore struct {
	storeInfo *mongo.Collection
	promo     *mongo.Collection
}

// NewSettingsStore creates a SettingsStore for db.
func NewSettingsStore(db *mongo.Database) *SettingsStore {
	return &SettingsStore{
		storeInfo: db.Collection(collStoreInfo),
		promo:     db.Collection(collPromoSettings),
	}
}

// GetStoreInfo returns nil, nil when store info has never been saved.
func (s *SettingsStore) GetStoreInfo(ctx context.Context) (*model.StoreInfo, error) {
	var doc storeInfoDocument
	err := s.storeInfo.FindOne(ctx, bson.M{"_id": singletonKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store info: %w", err)
	}
	return &model.StoreInfo{
		Name:      doc.Name,
		Address:   doc.Address,
		Phone:     doc.Phone,
		WhatsApp:  doc.WhatsApp,
		Email:     doc.Email,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// UpsertStoreInfo replaces the singleton document, creating it on first write.
func (s *SettingsStore) UpsertStoreInfo(ctx context.Context, info *model.StoreInfo) error {
	info.UpdatedAt = utcNow()
	doc := storeInfoDocument{
		ID:        singletonKey,
		Name:      info.Name,
		Address:   info.Address,
		Phone:     info.Phone,
		WhatsApp:  info.WhatsApp,
		Email:     info.Email,
		UpdatedAt: info.UpdatedAt,
	}
	_, err := s.storeInfo.ReplaceOne(ctx, bson.M{"_id": singletonKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert store info: %w", err)
	}
	return nil
}

// GetPromoSettings returns nil, nil when promo settings have never been saved.
func (s *SettingsStore) GetPromoSettings(ctx context.Context) (*model.PromoSettings, error) {
	var doc promoSettingsDocument
	err := s.promo.FindOne(ctx, bson.M{"_id": singletonKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promo settings: %w", err)
	}
	return &model.PromoSettings{
		Title:       doc.Title,
		Description: doc.Description,
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
		Active:      doc.Active,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// UpsertPromoSettings replaces the singleton document, creating it on first write.
func (s *SettingsStore) UpsertPromoSettings(ctx context.Context, promo *model.PromoSettings) error {
	promo.UpdatedAt = utcNow()
	doc := promoSettingsDocument{
		ID:          singletonKey,
		Title:       promo.Title,
		Description: promo.Description,
		StartDate:   promo.StartDate,
		EndDate:     promo.EndDate,
		Active:      promo.Active,
		UpdatedAt:   promo.UpdatedAt,
	}
	_, err := s.promo.ReplaceOne(ctx, bson.M{"_id": singletonKey}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert promo settings: %w", err)
	}
	return nil
}

// DeactivateExpiredPromo turns the promotion off once endDate has passed.
func (s *SettingsStore) DeactivateExpiredPromo(ctx context.Context, now time.Time) (bool, error) {
	filter := bson.M{"_id": singletonKey, "active": true, "endDate": bson.M{"$lt": now}}
	update := bson.M{"$set": bson.M{"active": false, "updatedAt": utcNow()}}
	res, err := s.promo.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("deactivate expired promo: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
