package availability

import (
	"context"
	"time"

	"bookline/models"
)

// Service computes bookable time slots from business hours and existing
// bookings. Consumers never compute calendar overlaps themselves.
type Service interface {
	// GetSlots returns the open slots of the given duration (minutes) on the
	// day containing `day`, ordered by start time. Empty on non-business days.
	GetSlots(ctx context.Context, day time.Time, duration int) ([]models.Slot, error)
	// IsOpen reports whether a booking of `duration` minutes starting at
	// `start` would fall inside business hours on a free stretch of calendar.
	IsOpen(ctx context.Context, start time.Time, duration int) (bool, error)
}
