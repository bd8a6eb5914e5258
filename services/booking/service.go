package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookline/config"
	"bookline/database/repository"
	"bookline/models"
	"bookline/services/availability"
	"bookline/services/tasks"
	"bookline/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxNameLength = 120

// DefaultService implements Service on top of the booking repository and the
// availability service.
type DefaultService struct {
	Repo         repository.BookingRepository
	Availability availability.Service
	Clock        utils.Clock
	Reminders    tasks.ReminderScheduler // optional; nil disables reminders

	validate *validator.Validate
}

// NewDefaultService wires the default booking service.
func NewDefaultService(repo repository.BookingRepository, avail availability.Service, clock utils.Clock, reminders tasks.ReminderScheduler) *DefaultService {
	return &DefaultService{
		Repo:         repo,
		Availability: avail,
		Clock:        clock,
		Reminders:    reminders,
		validate:     validator.New(),
	}
}

func (s *DefaultService) validateInput(input *models.BookingInput) repository.ValidationErrors {
	var errs repository.ValidationErrors

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Company = strings.TrimSpace(input.Company)
	input.Inquiry = strings.TrimSpace(input.Inquiry)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Name == "" {
		errs = append(errs, &repository.ValidationError{Field: "name", Message: "name is required"})
	} else if len(input.Name) > maxNameLength {
		errs = append(errs, &repository.ValidationError{Field: "name", Message: "name is too long"})
	}
	if err := s.validate.Var(input.Email, "required,email"); err != nil {
		errs = append(errs, &repository.ValidationError{Field: "email", Message: "a valid email address is required"})
	}
	if input.Company == "" {
		errs = append(errs, &repository.ValidationError{Field: "company", Message: "company is required"})
	}
	if input.Inquiry == "" {
		errs = append(errs, &repository.ValidationError{Field: "inquiry", Message: "inquiry is required"})
	}

	if input.Duration == 0 {
		input.Duration = config.AppConfig.DefaultDurationMin
	}
	if input.Duration <= 0 {
		errs = append(errs, &repository.ValidationError{Field: "duration", Message: "duration must be a positive number of minutes"})
	} else if input.Duration > config.AppConfig.MaxDurationMin {
		errs = append(errs, &repository.ValidationError{
			Field:   "duration",
			Message: fmt.Sprintf("duration may not exceed %d minutes", config.AppConfig.MaxDurationMin),
		})
	}

	if !input.DateTime.After(s.Clock.Now()) {
		errs = append(errs, &repository.ValidationError{Field: "dateTime", Message: "dateTime must be in the future"})
	}

	return errs
}

// Create validates the input, confirms the slot is open, and persists the
// booking with status pending. The repository has the final word on
// conflicts; two concurrent calls for overlapping slots yield one booking.
func (s *DefaultService) Create(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	if errs := s.validateInput(&input); len(errs) > 0 {
		return nil, errs
	}

	open, err := s.Availability.IsOpen(ctx, input.DateTime, input.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if !open {
		return nil, repository.NewConflictError("the requested time is outside business hours or already taken")
	}

	now := s.Clock.Now()
	booking := &models.Booking{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		Company:   input.Company,
		Inquiry:   input.Inquiry,
		Phone:     input.Phone,
		DateTime:  input.DateTime,
		End:       input.DateTime.Add(time.Duration(input.Duration) * time.Minute),
		Duration:  input.Duration,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.Reminders != nil {
		if err := s.Reminders.Schedule(booking); err != nil {
			utils.GetLogger().Warn("failed to schedule booking reminder",
				zap.String("bookingId", booking.ID), zap.Error(err))
		}
	}

	return booking, nil
}

// Get returns the booking with the given id.
func (s *DefaultService) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, id)
}

// SetStatus applies a status transition; the repository enforces that
// cancellation is terminal.
func (s *DefaultService) SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	if status != models.StatusConfirmed && status != models.StatusCancelled {
		return nil, &repository.ValidationError{Field: "status", Message: "status must be confirmed or cancelled"}
	}
	return s.Repo.SetStatus(ctx, id, status)
}
