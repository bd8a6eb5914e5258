package conversation

import (
	"context"

	"bookline/models"
	"bookline/services/availability"
	"bookline/services/booking"
	"bookline/services/intelligence"
)

// ConversationService drives the multi-step booking conversation.
type ConversationService interface {
	HandleMessage(ctx context.Context, sessionID, message string) (*models.ChatResponse, error)
}

// DefaultConversationService implements ConversationService.
type DefaultConversationService struct {
	Store        SessionStore
	Extractor    FieldExtractor
	Availability availability.Service
	Bookings     booking.Service
	Chat         intelligence.ChatService
}
