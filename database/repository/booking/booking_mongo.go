package bookingRepo

import (
	"bookline/database"
	"bookline/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements repository.BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	clock utils.Clock
}

// NewMongoBookingRepo returns a repository bound to the bookings collection.
func NewMongoBookingRepo(clock utils.Clock) *MongoBookingRepo {
	coll := database.MongoClient.Database(database.DatabaseName).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll, clock: clock}
	repo.EnsureIndexes()
	return repo
}
