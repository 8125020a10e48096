// Package mongostore implements the coupon, prize and settings stores on MongoDB.
//
// Collections: prizes, coupons, storeInfo, promoSettings. The two settings collections
// hold a single document each, addressed by the fixed key singletonKey.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/prize-redemption-service/internal/model"
)

const (
	collPrizes        = "prizes"
	collCoupons       = "coupons"
	collStoreInfo     = "storeInfo"
	collPromoSettings = "promoSettings"

	singletonKey = "singleton"
)

type couponDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Code          string             `bson:"code"`
	PrizeID       string             `bson:"prizeId,omitempty"`
	PrizeName     string             `bson:"prizeName"`
	Redeemed      bool               `bson:"redeemed"`
	RedeemedAt    *time.Time         `bson:"redeemedAt,omitempty"`
	WinnerName    string             `bson:"winnerName,omitempty"`
	WinnerContact string             `bson:"winnerContact,omitempty"`
	WinnerAddress string             `bson:"winnerAddress,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d couponDocument) toModel() model.Coupon {
	return model.Coupon{
		ID:            d.ID.Hex(),
		Code:          d.Code,
		PrizeID:       d.PrizeID,
		PrizeName:     d.PrizeName,
		Redeemed:      d.Redeemed,
		RedeemedAt:    d.RedeemedAt,
		WinnerName:    d.WinnerName,
		WinnerContact: d.WinnerContact,
		WinnerAddress: d.WinnerAddress,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

type prizeDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	ImageURL    string             `bson:"imageUrl,omitempty"`
	Quantity    int                `bson:"quantity"`
	Active      bool               `bson:"active"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d prizeDocument) toModel() model.Prize {
	return model.Prize{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		Quantity:    d.Quantity,
		Active:      d.Active,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type storeInfoDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Address   string    `bson:"address"`
	Phone     string    `bson:"phone"`
	WhatsApp  string    `bson:"whatsapp"`
	Email     string    `bson:"email"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type promoSettingsDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	StartDate   time.Time `bson:"startDate"`
	EndDate     time.Time `bson:"endDate"`
	Active      bool      `bson:"active"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// EnsureIndexes creates the unique and ordering indexes the stores rely on.
// The unique index on coupons.code is what makes duplicate codes impossible.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collCoupons).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("code_unique")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "redeemed", Value: 1}, {Key: "redeemedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create coupon indexes: %w", err)
	}

	_, err = db.Collection(collPrizes).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create prize indexes: %w", err)
	}
	return nil
}

// utcNow truncates to milliseconds, the resolution BSON dates keep.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
