// Package indexes creates the MongoDB indexes the portal's queries rely
// on. Ensure is idempotent and runs once at startup.
package indexes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Ensure creates all indexes. Index creation on an existing identical
// index is a no-op server-side.
func Ensure(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	specs := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "schoolKey", Value: 1}}},
			{Keys: bson.D{{Key: "unit", Value: 1}}},
			{Keys: bson.D{{Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		"announcements": {
			{Keys: bson.D{{Key: "audTokens", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "pinned", Value: -1}, {Key: "createdAt", Value: -1}}},
		},
		"announcement_reads": {
			{Keys: bson.D{{Key: "announcement_id", Value: 1}, {Key: "uid", Value: 1}},
				Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "uid", Value: 1}}},
		},
		"internalRequests": {
			{Keys: bson.D{{Key: "createdByUid", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "currentAssignee.role", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "currentAssignee.uid", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "read", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			logger.Error("index creation failed",
				zap.String("collection", coll),
				zap.Error(err))
			return err
		}
	}

	logger.Info("indexes ensured", zap.Int("collections", len(specs)))
	return nil
}
