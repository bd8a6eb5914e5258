package models

import "time"

// Slot is a bookable start time of fixed duration within business hours.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"` // e.g. "14:00 - 14:30"
}
