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

// PrizeStore implements service.PrizeRepositoryInterface on the prizes collection.
type PrizeStore struct {
	collection *mongo.Collection
	coupons    *mongo.Collection
}

// NewPrizeStore creates a PrizeStore for db.
func NewPrizeStore(db *mongo.Database) *PrizeStore {
	return &PrizeStore{
		collection: db.Collection(collPrizes),
		coupons:    db.Collection(collCoupons),
	}
}

func (s *PrizeStore) findOne(ctx context.Context, filter bson.M) (*model.Prize, error) {
	var doc prizeDocument
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	p := doc.toModel()
	return &p, nil
}

// Insert stores prize and fills in its ID and timestamps.
func (s *PrizeStore) Insert(ctx context.Context, prize *model.Prize) error {
	now := utcNow()
	doc := prizeDocument{
		ID:          primitive.NewObjectID(),
		Name:        prize.Name,
		Description: prize.Description,
		ImageURL:    prize.ImageURL,
		Quantity:    prize.Quantity,
		Active:      prize.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return service.ErrPrizeExists
		}
		return fmt.Errorf("insert prize: %w", err)
	}
	*prize = doc.toModel()
	return nil
}

// GetByID returns nil, nil if the prize does not exist.
func (s *PrizeStore) GetByID(ctx context.Context, id string) (*model.Prize, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	p, err := s.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("get prize by id %s: %w", id, err)
	}
	return p, nil
}

// GetByName returns nil, nil if no prize has that exact name.
func (s *PrizeStore) GetByName(ctx context.Context, name string) (*model.Prize, error) {
	p, err := s.findOne(ctx, bson.M{"name": name})
	if err != nil {
		return nil, fmt.Errorf("get prize by name %s: %w", name, err)
	}
	return p, nil
}

// Update sets the non-nil fields of upd and returns the stored prize.
func (s *PrizeStore) Update(ctx context.Context, id string, upd model.PrizeUpdate) (*model.Prize, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, service.ErrPrizeNotFound
	}

	set := bson.M{"updatedAt": utcNow()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.ImageURL != nil {
		set["imageUrl"] = *upd.ImageURL
	}
	if upd.Quantity != nil {
		set["quantity"] = *upd.Quantity
	}
	if upd.Active != nil {
		set["active"] = *upd.Active
	}

	var doc prizeDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, service.ErrPrizeNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, service.ErrPrizeExists
		}
		return nil, fmt.Errorf("update prize %s: %w", id, err)
	}
	p := doc.toModel()
	return &p, nil
}

// Delete removes a prize and detaches coupons that referenced it; their prize name stays.
// The two writes are not atomic. Once the prize is gone a failed detach is logged
// and Delete still succeeds. Coupons then keep a dangling prizeId; readers only
// use their stored prize name.
func (s *PrizeStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrPrizeNotFound
	}
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete prize %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return service.ErrPrizeNotFound
	}

	_, err = s.coupons.UpdateMany(ctx, bson.M{"prizeId": id}, bson.M{"$unset": bson.M{"prizeId": ""}})
	if err != nil {
		log.Error().Err(err).Str("prize_id", id).Msg("prize deleted but detaching its coupons failed")
	}
	return nil
}

// List returns every prize, newest first.
func (s *PrizeStore) List(ctx context.Context) ([]model.Prize, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list prizes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []prizeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode prizes: %w", err)
	}
	prizes := make([]model.Prize, 0, len(docs))
	for _, d := range docs {
		prizes = append(prizes, d.toModel())
	}
	return prizes, nil
}

// Count returns the number of prizes and how many are active.
func (s *PrizeStore) Count(ctx context.Context) (total, active int, err error) {
	all, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, fmt.Errorf("count prizes: %w", err)
	}
	on, err := s.collection.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return 0, 0, fmt.Errorf("count active prizes: %w", err)
	}
	return int(all), int(on), nil
}
