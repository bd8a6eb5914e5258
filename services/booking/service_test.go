package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookline/config"
	"bookline/database/repository"
	"bookline/models"
	"bookline/utils"
)

// Tuesday 10:00 UTC.
var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

// memRepo is an in-memory BookingRepository mirroring the Mongo repo's
// conflict and transition rules.
type memRepo struct {
	bookings map[string]*models.Booking
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memRepo) Create(_ context.Context, booking *models.Booking) error {
	for _, b := range r.bookings {
		if b.Status == models.StatusCancelled {
			continue
		}
		if booking.DateTime.Before(b.End) && b.DateTime.Before(booking.End) {
			return repository.NewConflictError("the requested time slot is no longer available")
		}
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, &repository.NotFoundError{ID: id}
	}
	copied := *b
	return &copied, nil
}

func (r *memRepo) SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, &repository.NotFoundError{ID: id}
	}
	if !b.CanTransition(status) {
		return nil, &repository.ValidationError{Field: "status", Message: "transition not allowed"}
	}
	b.Status = status
	copied := *b
	return &copied, nil
}

func (r *memRepo) ListBetween(_ context.Context, from, to time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status == models.StatusCancelled {
			continue
		}
		if b.DateTime.Before(to) && from.Before(b.End) {
			out = append(out, *b)
		}
	}
	return out, nil
}

type openAvailability struct{ open bool }

func (a openAvailability) GetSlots(context.Context, time.Time, int) ([]models.Slot, error) {
	return nil, nil
}
func (a openAvailability) IsOpen(context.Context, time.Time, int) (bool, error) {
	return a.open, nil
}

func newTestService(repo repository.BookingRepository, open bool) *DefaultService {
	config.AppConfig.DefaultDurationMin = 30
	config.AppConfig.MaxDurationMin = 240
	return NewDefaultService(repo, openAvailability{open: open}, utils.FixedClock{T: testNow}, nil)
}

func validInput() models.BookingInput {
	return models.BookingInput{
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Company:  "Acme Corp",
		Inquiry:  "product demo",
		DateTime: time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC),
		Duration: 30,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, models.StatusPending, created.Status)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, fetched.DateTime.Equal(created.DateTime))
	require.Equal(t, created.Duration, fetched.Duration)
	require.Equal(t, models.StatusPending, fetched.Status)
}

func TestCreateCollectsValidationErrors(t *testing.T) {
	svc := newTestService(newMemRepo(), true)

	input := models.BookingInput{
		Email:    "not-an-email",
		DateTime: testNow.Add(-time.Hour),
		Duration: -5,
	}
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)

	var errs repository.ValidationErrors
	require.ErrorAs(t, err, &errs)

	fields := make(map[string]bool)
	for _, ve := range errs {
		fields[ve.Field] = true
	}
	for _, f := range []string{"name", "email", "company", "inquiry", "duration", "dateTime"} {
		require.True(t, fields[f], "expected a validation error for %s", f)
	}
}

func TestCreateAppliesDefaultDuration(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)

	input := validInput()
	input.Duration = 0
	created, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, 30, created.Duration)
	require.True(t, created.End.Equal(created.DateTime.Add(30*time.Minute)))
}

func TestCreateRejectsClosedSlot(t *testing.T) {
	svc := newTestService(newMemRepo(), false)

	_, err := svc.Create(context.Background(), validInput())
	var conflict *repository.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	ctx := context.Background()

	_, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// Same window again: the repository is the tie-break and accepts one.
	_, err = svc.Create(ctx, validInput())
	var conflict *repository.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestSetStatusTransitions(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, true)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	confirmed, err := svc.SetStatus(ctx, created.ID, models.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, confirmed.Status)

	cancelled, err := svc.SetStatus(ctx, created.ID, models.StatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.StatusCancelled, cancelled.Status)

	// Cancellation is terminal.
	_, err = svc.SetStatus(ctx, created.ID, models.StatusConfirmed)
	var validationErr *repository.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSetStatusRejectsUnknownValues(t *testing.T) {
	svc := newTestService(newMemRepo(), true)

	_, err := svc.SetStatus(context.Background(), "whatever", models.StatusPending)
	var validationErr *repository.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSetStatusUnknownID(t *testing.T) {
	svc := newTestService(newMemRepo(), true)

	_, err := svc.SetStatus(context.Background(), "missing", models.StatusConfirmed)
	var notFound *repository.NotFoundError
	require.ErrorAs(t, err, &notFound)
}
