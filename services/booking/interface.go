package booking

import (
	"context"

	"bookline/models"
)

// Service exposes the direct booking entry points: creation bypassing chat,
// retrieval, and status transitions.
type Service interface {
	Create(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
}
