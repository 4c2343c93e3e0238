package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	appconfig "github.com/atelierhq/storefront_api/internal/config"
)

// ConnectMongo opens the product catalog store with the same retry policy as
// Connect and returns the client plus the configured database handle.
func ConnectMongo(cfg *appconfig.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	if cfg == nil {
		return nil, nil, errors.New("nil mongo config")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(50).
		SetServerSelectionTimeout(pingTimeout)

	var client *mongo.Client
	err := withRetry("mongo", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		c, err := mongo.Connect(ctx, opts)
		if err != nil {
			return err
		}
		if err := c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			return err
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client.Database(cfg.Database), nil
}

// EnsureProductIndexes creates the catalog indexes used by listing and slug
// lookups. It is idempotent.
func EnsureProductIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})
	return err
}
