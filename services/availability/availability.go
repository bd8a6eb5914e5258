package availability

import (
	"context"
	"fmt"
	"time"

	"bookline/config"
	"bookline/database/repository"
	"bookline/models"
	"bookline/utils"
)

// DefaultService is the concrete availability implementation backed by the
// booking repository.
type DefaultService struct {
	Repo         repository.BookingRepository
	Clock        utils.Clock
	Location     *time.Location
	OpenHour     int
	CloseHour    int
	SlotInterval int // minutes between candidate starts
}

// NewDefaultService builds a service from AppConfig. The configured timezone
// must be a valid IANA name.
func NewDefaultService(repo repository.BookingRepository, clock utils.Clock) (*DefaultService, error) {
	loc, err := time.LoadLocation(config.AppConfig.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", config.AppConfig.DefaultTimezone, err)
	}
	return &DefaultService{
		Repo:         repo,
		Clock:        clock,
		Location:     loc,
		OpenHour:     config.AppConfig.BusinessOpenHour,
		CloseHour:    config.AppConfig.BusinessCloseHour,
		SlotInterval: config.AppConfig.SlotIntervalMin,
	}, nil
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// businessWindow returns the open/close instants for the day containing t,
// in the configured timezone.
func (s *DefaultService) businessWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(s.Location)
	open := time.Date(local.Year(), local.Month(), local.Day(), s.OpenHour, 0, 0, 0, s.Location)
	close := time.Date(local.Year(), local.Month(), local.Day(), s.CloseHour, 0, 0, 0, s.Location)
	return open, close
}

func overlapsAny(start, end time.Time, bookings []models.Booking) bool {
	for _, b := range bookings {
		if start.Before(b.End) && b.DateTime.Before(end) {
			return true
		}
	}
	return false
}

// GetSlots walks the business window on a fixed grid and drops candidates
// that are past, partly outside the window, or taken by an active booking.
func (s *DefaultService) GetSlots(ctx context.Context, day time.Time, duration int) ([]models.Slot, error) {
	if isWeekend(day.In(s.Location)) {
		return nil, nil
	}

	open, close := s.businessWindow(day)
	bookings, err := s.Repo.ListBetween(ctx, open, close)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	now := s.Clock.Now()
	step := time.Duration(s.SlotInterval) * time.Minute
	length := time.Duration(duration) * time.Minute

	var slots []models.Slot
	for start := open; !start.Add(length).After(close); start = start.Add(step) {
		end := start.Add(length)
		if !start.After(now) {
			continue
		}
		if overlapsAny(start, end, bookings) {
			continue
		}
		slots = append(slots, models.Slot{
			Start: start,
			End:   end,
			Label: fmt.Sprintf("%s - %s", start.Format("15:04"), end.Format("15:04")),
		})
	}
	return slots, nil
}

// IsOpen checks a single candidate window against business hours and the
// active bookings on its day.
func (s *DefaultService) IsOpen(ctx context.Context, start time.Time, duration int) (bool, error) {
	local := start.In(s.Location)
	if isWeekend(local) {
		return false, nil
	}
	if !start.After(s.Clock.Now()) {
		return false, nil
	}

	open, close := s.businessWindow(start)
	end := start.Add(time.Duration(duration) * time.Minute)
	if start.Before(open) || end.After(close) {
		return false, nil
	}

	bookings, err := s.Repo.ListBetween(ctx, start, end)
	if err != nil {
		return false, fmt.Errorf("failed to list bookings: %w", err)
	}
	return !overlapsAny(start, end, bookings), nil
}
