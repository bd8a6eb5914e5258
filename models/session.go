package models

import "time"

// Step is a session's position within the fixed booking-collection sequence.
type Step string

const (
	StepStart             Step = "START"
	StepAwaitName         Step = "AWAIT_NAME"
	StepAwaitEmail        Step = "AWAIT_EMAIL"
	StepAwaitCompany      Step = "AWAIT_COMPANY"
	StepAwaitInquiry      Step = "AWAIT_INQUIRY"
	StepAwaitDateTime     Step = "AWAIT_DATETIME"
	StepAwaitDuration     Step = "AWAIT_DURATION"
	StepAwaitConfirmation Step = "AWAIT_CONFIRMATION"
	StepComplete          Step = "COMPLETE"
)

var stepOrder = []Step{
	StepStart,
	StepAwaitName,
	StepAwaitEmail,
	StepAwaitCompany,
	StepAwaitInquiry,
	StepAwaitDateTime,
	StepAwaitDuration,
	StepAwaitConfirmation,
	StepComplete,
}

// Next returns the step that follows s in the collection order.
// COMPLETE is its own successor.
func (s Step) Next() Step {
	for i, st := range stepOrder {
		if st == s && i+1 < len(stepOrder) {
			return stepOrder[i+1]
		}
	}
	return StepComplete
}

// BookingFields is the partial record collected turn by turn.
// A field is only set once its step has been passed.
type BookingFields struct {
	Name     string     `json:"name,omitempty"`
	Email    string     `json:"email,omitempty"`
	Company  string     `json:"company,omitempty"`
	Inquiry  string     `json:"inquiry,omitempty"`
	DateTime *time.Time `json:"dateTime,omitempty"`
	Duration int        `json:"duration,omitempty"`
	Phone    string     `json:"phone,omitempty"`
}

// Session holds the state of one multi-turn booking conversation.
type Session struct {
	SessionID string        `json:"sessionId"`
	Step      Step          `json:"step"`
	Fields    BookingFields `json:"fields"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
