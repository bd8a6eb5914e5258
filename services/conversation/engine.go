package conversation

import (
	"context"
	"errors"
	"time"

	"bookline/config"
	"bookline/database/repository"
	"bookline/models"
	"bookline/utils"

	"go.uber.org/zap"
)

// HandleMessage applies one user turn to the session's booking flow. Turns
// for the same session are serialized by the store lock, and a turn is
// atomic: state is saved only once the transition has fully applied.
func (s *DefaultConversationService) HandleMessage(ctx context.Context, sessionID, message string) (*models.ChatResponse, error) {
	s.Store.Lock(sessionID)
	defer s.Store.Unlock(sessionID)

	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Step {
	case models.StepComplete:
		// Completed sessions are immutable for the booking flow; anything
		// further is treated as a fresh, unrelated inquiry.
		return s.chatReply(ctx, message)
	case models.StepStart:
		return s.handleStart(ctx, session, message)
	case models.StepAwaitConfirmation:
		return s.handleConfirmation(ctx, session, message)
	default:
		return s.handleCollection(ctx, session, message)
	}
}

func flowResponse(step models.Step, message string) *models.ChatResponse {
	return &models.ChatResponse{
		Type:    models.ResponseTypeFlow,
		Message: message,
		Step:    step,
	}
}

func (s *DefaultConversationService) handleStart(ctx context.Context, session *models.Session, message string) (*models.ChatResponse, error) {
	if !hasBookingIntent(message) {
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return s.chatReply(ctx, message)
	}

	session.Step = models.StepAwaitName
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return flowResponse(session.Step, promptFor(session)), nil
}

// handleCollection runs the extractor for the current step's target field and
// either advances or re-prompts. The step never skips and never regresses.
func (s *DefaultConversationService) handleCollection(ctx context.Context, session *models.Session, message string) (*models.ChatResponse, error) {
	res := s.Extractor.Extract(session.Step, message)
	if !res.Valid {
		return flowResponse(session.Step, res.Reason), nil
	}

	switch session.Step {
	case models.StepAwaitName:
		session.Fields.Name = res.Text
	case models.StepAwaitEmail:
		session.Fields.Email = res.Text
	case models.StepAwaitCompany:
		session.Fields.Company = res.Text
	case models.StepAwaitInquiry:
		session.Fields.Inquiry = res.Text
	case models.StepAwaitDateTime:
		dt := res.DateTime
		session.Fields.DateTime = &dt
	case models.StepAwaitDuration:
		session.Fields.Duration = res.Duration
	}

	next := session.Step.Next()
	if next == models.StepAwaitConfirmation {
		// Re-check the slot before presenting the summary; another booking
		// may have raced us since the time was given.
		open, err := s.Availability.IsOpen(ctx, *session.Fields.DateTime, session.Fields.Duration)
		if err != nil {
			return nil, asUpstream("availability check", err)
		}
		if !open {
			return s.revertToDateTime(ctx, session, *session.Fields.DateTime)
		}
	}

	session.Step = next
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return flowResponse(session.Step, promptFor(session)), nil
}

func (s *DefaultConversationService) handleConfirmation(ctx context.Context, session *models.Session, message string) (*models.ChatResponse, error) {
	res := s.Extractor.Extract(models.StepAwaitConfirmation, message)
	if !res.Valid {
		return flowResponse(session.Step, res.Reason), nil
	}

	if res.Answer == AnswerNo {
		// Declining only clears the time; name, email, company and inquiry
		// survive.
		session.Fields.DateTime = nil
		session.Fields.Duration = 0
		session.Step = models.StepAwaitDateTime
		if err := s.Store.Save(ctx, session); err != nil {
			return nil, err
		}
		return flowResponse(session.Step, "No problem — what date and time would suit you better?"), nil
	}

	input := models.BookingInput{
		Name:     session.Fields.Name,
		Email:    session.Fields.Email,
		Company:  session.Fields.Company,
		Inquiry:  session.Fields.Inquiry,
		DateTime: *session.Fields.DateTime,
		Duration: session.Fields.Duration,
		Phone:    session.Fields.Phone,
	}
	booking, err := s.Bookings.Create(ctx, input)
	if err != nil {
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			// Lost the race: the repository accepted someone else's booking.
			return s.revertToDateTime(ctx, session, input.DateTime)
		}
		var fieldErrs repository.ValidationErrors
		var fieldErr *repository.ValidationError
		if errors.As(err, &fieldErrs) || errors.As(err, &fieldErr) {
			// The collected time can age into the past while the user sits at
			// the summary; re-prompt instead of failing the turn.
			return s.revertToDateTime(ctx, session, input.DateTime)
		}
		return nil, asUpstream("booking creation", err)
	}

	session.Step = models.StepComplete
	if err := s.Store.Save(ctx, session); err != nil {
		// The booking is already persisted; don't fail the turn over a
		// session write.
		utils.GetLogger().Warn("failed to save completed session",
			zap.String("sessionId", session.SessionID), zap.Error(err))
	}

	return &models.ChatResponse{
		Type:       models.ResponseTypeConfirmed,
		Message:    confirmedMessage(booking),
		Step:       models.StepComplete,
		IsComplete: true,
		BookingID:  booking.ID,
	}, nil
}

// revertToDateTime sends the session back to AWAIT_DATETIME after a slot
// conflict, keeping all previously collected fields except the time.
func (s *DefaultConversationService) revertToDateTime(ctx context.Context, session *models.Session, requested time.Time) (*models.ChatResponse, error) {
	duration := session.Fields.Duration
	if duration == 0 {
		duration = config.AppConfig.DefaultDurationMin
	}
	alternatives, err := s.Availability.GetSlots(ctx, requested, duration)
	if err != nil {
		// Alternatives are a courtesy; the re-prompt works without them.
		utils.GetLogger().Debug("failed to fetch alternative slots", zap.Error(err))
		alternatives = nil
	}

	session.Fields.DateTime = nil
	session.Fields.Duration = 0
	session.Step = models.StepAwaitDateTime
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return flowResponse(session.Step, slotUnavailableMessage(alternatives)), nil
}

func (s *DefaultConversationService) chatReply(ctx context.Context, message string) (*models.ChatResponse, error) {
	reply, err := s.Chat.Reply(ctx, message)
	if err != nil {
		utils.GetLogger().Warn("chat fallback failed", zap.Error(err))
		reply = "Happy to help! If you'd like to set up a meeting, just say so."
	}
	return &models.ChatResponse{
		Type:    models.ResponseTypeChat,
		Message: reply,
	}, nil
}
