package bookingRepo

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repository queries rely on.
func (repo *MongoBookingRepo) EnsureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Overlap queries filter on the active window.
			Keys: bson.D{{Key: "dateTime", Value: 1}, {Key: "end", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	if _, err := repo.coll.Indexes().CreateMany(ctx, models); err != nil {
		log.Printf("warning: failed to create booking indexes: %v", err)
	}
}
