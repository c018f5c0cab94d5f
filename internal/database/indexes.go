package database

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

// EnsureIndexes creates the indexes the repositories rely on. The unique
// email index is what turns a concurrent duplicate signup into a
// duplicate-key error instead of a second document.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	if db == nil || db.Database == nil {
		return fmt.Errorf("database is not initialized")
	}

	name, err := db.Database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	slog.Info("database indexes ensured", "index", name)
	return nil
}
