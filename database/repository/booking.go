// database/repository/booking.go
package repository

import (
	"context"
	"time"

	"bookline/models"
)

// BookingRepository defines the interface for booking data access.
// It is the single source of truth for slot conflicts: Create must accept at
// most one of two overlapping bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)
}
