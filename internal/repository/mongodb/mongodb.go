package mongodb

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, db *database.MongoDB) error {
	indexes := map[string][]mongo.IndexModel{
		database.UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "hrEmail", Value: 1}}},
		},
		database.AssetsCollection: {
			{Keys: bson.D{{Key: "hrEmail", Value: 1}, {Key: "productQuantity", Value: -1}}},
		},
		database.RequestsCollection: {
			{Keys: bson.D{{Key: "hrEmail", Value: 1}, {Key: "requestDate", Value: -1}}},
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "requestDate", Value: -1}}},
			{Keys: bson.D{{Key: "assetId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "pendingAdjustment", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return database.Unavailable("create indexes on "+collection, err)
		}
	}
	slog.Info("MongoDB indexes ensured")
	return nil
}

// objectID parses a hex id; ok is false for ids that cannot exist.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

// containsRegex matches s literally anywhere, ignoring case.
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
