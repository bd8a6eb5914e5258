package models

import "time"

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking represents a persisted appointment request.
type Booking struct {
	ID        string        `bson:"id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Email     string        `bson:"email" json:"email"`
	Company   string        `bson:"company" json:"company"`
	Inquiry   string        `bson:"inquiry" json:"inquiry"`
	Phone     string        `bson:"phone,omitempty" json:"phone,omitempty"`
	DateTime  time.Time     `bson:"dateTime" json:"dateTime"`
	End       time.Time     `bson:"end" json:"end"` // DateTime + Duration, denormalized for overlap queries
	Duration  int           `bson:"duration" json:"duration"` // minutes
	Status    BookingStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CanTransition reports whether a status change is allowed.
// Cancellation is terminal; a cancelled booking is never reopened.
func (b *Booking) CanTransition(to BookingStatus) bool {
	if b.Status == StatusCancelled {
		return false
	}
	switch to {
	case StatusConfirmed:
		return b.Status == StatusPending || b.Status == StatusConfirmed
	case StatusCancelled:
		return true
	default:
		return false
	}
}

// BookingInput is the payload for the direct booking creation entry point.
type BookingInput struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required"`
	Company  string    `json:"company" binding:"required"`
	Inquiry  string    `json:"inquiry" binding:"required"`
	DateTime time.Time `json:"dateTime" binding:"required"`
	Duration int       `json:"duration"`
	Phone    string    `json:"phone,omitempty"`
}
