package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
	"github.com/fairyhunter13/prize-redemption-service/internal/service"
)

// CouponStore implements service.CouponRepositoryInterface on the coupons collection.
type CouponStore struct {
	collection *mongo.Collection
}

// NewCouponStore creates a CouponStore for db.
func NewCouponStore(db *mongo.Database) *CouponStore {
	return &CouponStore{collection: db.Collection(collCoupons)}
}

func decodeCoupons(ctx context.Context, cursor *mongo.Cursor) ([]model.Coupon, error) {
	defer cursor.Close(ctx)

	var docs []couponDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode coupons: %w", err)
	}
	coupons := make([]model.Coupon, 0, len(docs))
	for _, d := range docs {
		coupons = append(coupons, d.toModel())
	}
	return coupons, nil
}

// InsertBatch inserts all coupons or none. Without multi-document transactions, a failed
// batch is compensated by deleting the documents it already inserted, by _id.
func (s *CouponStore) InsertBatch(ctx context.Context, coupons []model.Coupon) ([]model.Coupon, error) {
	now := utcNow()
	docs := make([]interface{}, 0, len(coupons))
	ids := make([]primitive.ObjectID, 0, len(coupons))
	created := make([]model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		d := couponDocument{
			ID:        primitive.NewObjectID(),
			Code:      c.Code,
			PrizeID:   c.PrizeID,
			PrizeName: c.PrizeName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		docs = append(docs, d)
		ids = append(ids, d.ID)
		created = append(created, d.toModel())
	}

	_, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return created, nil
	}

	if _, delErr := s.collection.DeleteMany(context.WithoutCancel(ctx), bson.M{"_id": bson.M{"$in": ids}}); delErr != nil {
		log.Error().Err(delErr).Int("batch_size", len(ids)).Msg("failed to roll back partial coupon batch")
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: %v", service.ErrDuplicateCode, err)
	}
	return nil, fmt.Errorf("insert coupons: %w", err)
}

// FindByCode returns at most two coupons whose code equals code.
func (s *CouponStore) FindByCode(ctx context.Context, code string) ([]model.Coupon, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"code": code}, options.Find().SetLimit(2))
	if err != nil {
		return nil, fmt.Errorf("find coupon by code %s: %w", code, err)
	}
	return decodeCoupons(ctx, cursor)
}

// Redeem performs the redeemed:false -> true transition with FindOneAndUpdate.
// The filter on redeemed=false makes the write conditional at the document level.
func (s *CouponStore) Redeem(ctx context.Context, id string, winner model.Winner) (*model.Coupon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, service.ErrCouponNotFound
	}

	now := utcNow()
	update := bson.M{"$set": bson.M{
		"redeemed":      true,
		"redeemedAt":    now,
		"winnerName":    winner.Name,
		"winnerContact": winner.Contact,
		"winnerAddress": winner.Address,
		"updatedAt":     now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc couponDocument
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid, "redeemed": false}, update, opts).Decode(&doc)
	if err == nil {
		c := doc.toModel()
		return &c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("redeem coupon %s: %w", id, err)
	}

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("check coupon %s: %w", id, err)
	}
	if n == 0 {
		return nil, service.ErrCouponNotFound
	}
	return nil, service.ErrAlreadyRedeemed
}

// List returns all coupons, newest first.
func (s *CouponStore) List(ctx context.Context) ([]model.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "code", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return decodeCoupons(ctx, cursor)
}

// ListRedeemed returns redeemed coupons, latest redemption first.
func (s *CouponStore) ListRedeemed(ctx context.Context) ([]model.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "redeemedAt", Value: -1}, {Key: "code", Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{"redeemed": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list redeemed coupons: %w", err)
	}
	return decodeCoupons(ctx, cursor)
}

// Count returns the number of coupons and how many are redeemed.
func (s *CouponStore) Count(ctx context.Context) (total, redeemed int, err error) {
	all, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("count coupons: %w", err)
	}
	done, err := s.collection.CountDocuments(ctx, bson.M{"redeemed": true})
	if err != nil {
		return 0, 0, fmt.Errorf("count redeemed coupons: %w", err)
	}
	return int(all), int(done), nil
}
