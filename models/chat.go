package models

// ChatRequest is the payload coming from the widget into /api/chat.
type ChatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// Response types returned to the widget.
const (
	ResponseTypeFlow      = "booking_flow"
	ResponseTypeConfirmed = "booking_confirmed"
	ResponseTypeChat      = "chat"
)

// ChatResponse is what the chat endpoint returns to the widget.
type ChatResponse struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Step       Step   `json:"step,omitempty"`
	IsComplete bool   `json:"isComplete,omitempty"`
	BookingID  string `json:"bookingId,omitempty"`
}
