package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	UsersCollection    = "users"
	ServicesCollection = "services"
	PurchaseCollection = "purchases"
	BusinessCollection = "business_info"
	CardsCollection    = "cards"
)

// Connect opens a client for uri and pings the primary before returning it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	zap.L().Info("connected to MongoDB")
	return client, nil
}

// Disconnect closes the connection (call in main defer).
func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		zap.L().Warn("error disconnecting from MongoDB", zap.Error(err))
	}
}

// EnsureIndexes creates the indexes the repositories rely on. The unique
// username index is what enforces username uniqueness.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		PurchaseCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date_purchased", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date_purchased", Value: -1}}},
		},
		CardsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}
