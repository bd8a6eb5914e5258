package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"bookline/database/repository"
	"bookline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// activeStatuses are the statuses that hold a slot.
var activeStatuses = bson.A{models.StatusPending, models.StatusConfirmed}

// Create inserts a new booking document after checking that no active booking
// overlaps the requested window. The overlap check and insert are the
// repository's tie-break: of two concurrent requests for the same slot, at
// most one insert lands first and the loser is reported as a conflict.
func (repo *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	overlap := bson.M{
		"status":   bson.M{"$in": activeStatuses},
		"dateTime": bson.M{"$lt": booking.End},
		"end":      bson.M{"$gt": booking.DateTime},
	}
	count, err := repo.coll.CountDocuments(ctxWithTimeout, overlap)
	if err != nil {
		return fmt.Errorf("error checking slot availability: %w", err)
	}
	if count > 0 {
		return repository.NewConflictError("the requested time slot is no longer available")
	}

	if _, err := repo.coll.InsertOne(ctxWithTimeout, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.NewConflictError("a booking with this id already exists")
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.coll.FindOne(ctxWithTimeout, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, &repository.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// SetStatus applies a status transition. Cancellation is terminal: once a
// booking is cancelled no further transition is accepted.
func (repo *MongoBookingRepo) SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	booking, err := repo.GetByID(ctxWithTimeout, id)
	if err != nil {
		return nil, err
	}
	if !booking.CanTransition(status) {
		return nil, &repository.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot change status from %s to %s", booking.Status, status),
		}
	}

	now := repo.clock.Now()
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// The filter repeats the current status so a concurrent transition loses
	// cleanly instead of overwriting.
	filter := bson.M{"id": id, "status": booking.Status}
	var updated models.Booking
	err = repo.coll.FindOneAndUpdate(ctxWithTimeout, filter, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, repository.NewConflictError("booking status changed concurrently, retry")
	}
	if err != nil {
		return nil, fmt.Errorf("error updating booking %s: %w", id, err)
	}
	return &updated, nil
}

// ListBetween returns active bookings whose window intersects [from, to).
func (repo *MongoBookingRepo) ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":   bson.M{"$in": activeStatuses},
		"dateTime": bson.M{"$lt": to},
		"end":      bson.M{"$gt": from},
	}
	opts := options.Find().SetSort(bson.D{{Key: "dateTime", Value: 1}})
	cursor, err := repo.coll.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
