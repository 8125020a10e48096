package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoClient connects to MongoDB with the same retry policy as NewPool.
func NewMongoClient(ctx context.Context, uri string, maxRetries int) (*mongo.Client, error) {
	var client *mongo.Client
	err := withRetry(ctx, "mongo", maxRetries, func(ctx context.Context) error {
		c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return fmt.Errorf("ping failed: %w", err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// MongoPinger adapts a mongo.Client to the Ping(ctx) shape used by health checks.
type MongoPinger struct {
	Client *mongo.Client
}

// Ping checks that the primary is reachable.
func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}
