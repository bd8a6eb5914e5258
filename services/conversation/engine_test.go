package conversation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bookline/database/repository"
	"bookline/models"
)

// memStore is an in-memory SessionStore for tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	saves    int
	getErr   error
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]models.Session)}
}

func (s *memStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		copied := sess
		return &copied, nil
	}
	return &models.Session{SessionID: sessionID, Step: models.StepStart, CreatedAt: testNow, UpdatedAt: testNow}, nil
}

func (s *memStore) Save(_ context.Context, session *models.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = *session
	s.saves++
	return nil
}

func (s *memStore) Lock(string)   {}
func (s *memStore) Unlock(string) {}

func (s *memStore) session(t *testing.T, id string) models.Session {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	require.True(t, ok, "session %s not saved", id)
	return sess
}

type fakeAvailability struct {
	open    bool
	openErr error
	slots   []models.Slot
}

func (f *fakeAvailability) GetSlots(context.Context, time.Time, int) ([]models.Slot, error) {
	return f.slots, nil
}

func (f *fakeAvailability) IsOpen(context.Context, time.Time, int) (bool, error) {
	return f.open, f.openErr
}

type fakeBookingService struct {
	created   *models.Booking
	createErr error
	lastInput models.BookingInput
}

func (f *fakeBookingService) Create(_ context.Context, input models.BookingInput) (*models.Booking, error) {
	f.lastInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	b := &models.Booking{
		ID:       "bk-123",
		Name:     input.Name,
		DateTime: input.DateTime,
		Duration: input.Duration,
		Status:   models.StatusPending,
	}
	f.created = b
	return b, nil
}

func (f *fakeBookingService) Get(context.Context, string) (*models.Booking, error) {
	return f.created, nil
}

func (f *fakeBookingService) SetStatus(context.Context, string, models.BookingStatus) (*models.Booking, error) {
	return f.created, nil
}

type fakeChat struct{}

func (fakeChat) Reply(context.Context, string) (string, error) {
	return "Hi there! I can book meetings too.", nil
}

func newTestService(t *testing.T, store *memStore, avail *fakeAvailability, bookings *fakeBookingService) *DefaultConversationService {
	t.Helper()
	return &DefaultConversationService{
		Store:        store,
		Extractor:    newTestExtractor(t),
		Availability: avail,
		Bookings:     bookings,
		Chat:         fakeChat{},
	}
}

func TestFreshBookingIntentAsksForName(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})

	resp, err := svc.HandleMessage(context.Background(), "s1", "I want to book a meeting")
	require.NoError(t, err)
	require.Equal(t, models.ResponseTypeFlow, resp.Type)
	require.Equal(t, models.StepAwaitName, resp.Step)
	require.Equal(t, models.StepAwaitName, store.session(t, "s1").Step)
}

func TestFreshChatMessageStaysChat(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})

	resp, err := svc.HandleMessage(context.Background(), "s1", "hello, what do you sell?")
	require.NoError(t, err)
	require.Equal(t, models.ResponseTypeChat, resp.Type)
	require.Equal(t, models.StepStart, store.session(t, "s1").Step)
}

func TestInvalidEmailKeepsStep(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})
	ctx := context.Background()

	mustTurn(t, svc, ctx, "s1", "book a meeting")
	mustTurn(t, svc, ctx, "s1", "Jane Doe")

	resp, err := svc.HandleMessage(ctx, "s1", "not-an-email")
	require.NoError(t, err)
	require.Equal(t, models.ResponseTypeFlow, resp.Type)
	require.Equal(t, models.StepAwaitEmail, resp.Step)
	require.NotEmpty(t, resp.Message)
	require.Equal(t, models.StepAwaitEmail, store.session(t, "s1").Step)
	require.Empty(t, store.session(t, "s1").Fields.Email)
}

func mustTurn(t *testing.T, svc *DefaultConversationService, ctx context.Context, sessionID, message string) *models.ChatResponse {
	t.Helper()
	resp, err := svc.HandleMessage(ctx, sessionID, message)
	require.NoError(t, err)
	return resp
}

// driveToConfirmation walks a session through the whole collection sequence.
func driveToConfirmation(t *testing.T, svc *DefaultConversationService) {
	t.Helper()
	ctx := context.Background()
	mustTurn(t, svc, ctx, "s1", "book a meeting")
	mustTurn(t, svc, ctx, "s1", "Jane Doe")
	mustTurn(t, svc, ctx, "s1", "jane@example.com")
	mustTurn(t, svc, ctx, "s1", "Acme Corp")
	mustTurn(t, svc, ctx, "s1", "product demo")
	mustTurn(t, svc, ctx, "s1", "2026-09-03 14:00")
	resp := mustTurn(t, svc, ctx, "s1", "30")
	require.Equal(t, models.StepAwaitConfirmation, resp.Step)
}

func TestFullFlowConfirmsBooking(t *testing.T) {
	store := newMemStore()
	bookings := &fakeBookingService{}
	svc := newTestService(t, store, &fakeAvailability{open: true}, bookings)

	driveToConfirmation(t, svc)

	resp := mustTurn(t, svc, context.Background(), "s1", "yes")
	require.Equal(t, models.ResponseTypeConfirmed, resp.Type)
	require.Equal(t, "bk-123", resp.BookingID)
	require.True(t, resp.IsComplete)
	require.Equal(t, models.StepComplete, store.session(t, "s1").Step)

	require.Equal(t, "Jane Doe", bookings.lastInput.Name)
	require.Equal(t, "jane@example.com", bookings.lastInput.Email)
	require.Equal(t, 30, bookings.lastInput.Duration)
	require.Equal(t, time.Date(2026, 9, 3, 14, 0, 0, 0, time.UTC), bookings.lastInput.DateTime)
}

func TestDeclineReturnsToDateTimeKeepingFields(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})

	driveToConfirmation(t, svc)

	resp := mustTurn(t, svc, context.Background(), "s1", "no")
	require.Equal(t, models.StepAwaitDateTime, resp.Step)

	sess := store.session(t, "s1")
	require.Equal(t, models.StepAwaitDateTime, sess.Step)
	require.Nil(t, sess.Fields.DateTime)
	require.Zero(t, sess.Fields.Duration)
	require.Equal(t, "Jane Doe", sess.Fields.Name)
	require.Equal(t, "jane@example.com", sess.Fields.Email)
	require.Equal(t, "Acme Corp", sess.Fields.Company)
	require.Equal(t, "product demo", sess.Fields.Inquiry)
}

func TestSlotConflictAtCreationRevertsToDateTime(t *testing.T) {
	store := newMemStore()
	bookings := &fakeBookingService{createErr: repository.NewConflictError("slot taken")}
	svc := newTestService(t, store, &fakeAvailability{open: true}, bookings)

	driveToConfirmation(t, svc)

	resp := mustTurn(t, svc, context.Background(), "s1", "yes")
	require.Equal(t, models.ResponseTypeFlow, resp.Type)
	require.Equal(t, models.StepAwaitDateTime, resp.Step)

	sess := store.session(t, "s1")
	require.Equal(t, models.StepAwaitDateTime, sess.Step)
	require.Nil(t, sess.Fields.DateTime)
	require.Equal(t, "Jane Doe", sess.Fields.Name)
}

// A dateTime accepted earlier can become invalid while the user sits at the
// summary; the engine must re-prompt for a new time, not fail the turn.
func TestStaleDateTimeAtCreationRevertsToDateTime(t *testing.T) {
	store := newMemStore()
	bookings := &fakeBookingService{createErr: repository.ValidationErrors{
		{Field: "dateTime", Message: "dateTime must be in the future"},
	}}
	svc := newTestService(t, store, &fakeAvailability{open: true}, bookings)

	driveToConfirmation(t, svc)

	resp := mustTurn(t, svc, context.Background(), "s1", "yes")
	require.Equal(t, models.ResponseTypeFlow, resp.Type)
	require.Equal(t, models.StepAwaitDateTime, resp.Step)

	sess := store.session(t, "s1")
	require.Equal(t, models.StepAwaitDateTime, sess.Step)
	require.Nil(t, sess.Fields.DateTime)
	require.Equal(t, "Jane Doe", sess.Fields.Name)
	require.Equal(t, "jane@example.com", sess.Fields.Email)
}

func TestClosedSlotAtConfirmationEntryReverts(t *testing.T) {
	store := newMemStore()
	avail := &fakeAvailability{open: false}
	svc := newTestService(t, store, avail, &fakeBookingService{})
	ctx := context.Background()

	mustTurn(t, svc, ctx, "s1", "book a meeting")
	mustTurn(t, svc, ctx, "s1", "Jane Doe")
	mustTurn(t, svc, ctx, "s1", "jane@example.com")
	mustTurn(t, svc, ctx, "s1", "Acme Corp")
	mustTurn(t, svc, ctx, "s1", "product demo")
	mustTurn(t, svc, ctx, "s1", "2026-09-03 14:00")

	resp := mustTurn(t, svc, ctx, "s1", "30")
	require.Equal(t, models.StepAwaitDateTime, resp.Step)
	require.Nil(t, store.session(t, "s1").Fields.DateTime)
	require.Equal(t, "Jane Doe", store.session(t, "s1").Fields.Name)
}

func TestAvailabilityTimeoutLeavesStateUnchanged(t *testing.T) {
	store := newMemStore()
	avail := &fakeAvailability{openErr: fmt.Errorf("check slots: %w", context.DeadlineExceeded)}
	svc := newTestService(t, store, avail, &fakeBookingService{})
	ctx := context.Background()

	mustTurn(t, svc, ctx, "s1", "book a meeting")
	mustTurn(t, svc, ctx, "s1", "Jane Doe")
	mustTurn(t, svc, ctx, "s1", "jane@example.com")
	mustTurn(t, svc, ctx, "s1", "Acme Corp")
	mustTurn(t, svc, ctx, "s1", "product demo")
	mustTurn(t, svc, ctx, "s1", "2026-09-03 14:00")
	savesBefore := store.saves

	_, err := svc.HandleMessage(ctx, "s1", "30")
	require.Error(t, err)
	var timeoutErr *UpstreamTimeoutError
	require.ErrorAs(t, err, &timeoutErr)

	// The failed turn wrote nothing; the same turn can be retried.
	require.Equal(t, savesBefore, store.saves)
	require.Equal(t, models.StepAwaitDuration, store.session(t, "s1").Step)
}

func TestCompletedSessionTreatsMessagesAsChat(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})

	driveToConfirmation(t, svc)
	mustTurn(t, svc, context.Background(), "s1", "yes")

	resp := mustTurn(t, svc, context.Background(), "s1", "book another meeting")
	require.Equal(t, models.ResponseTypeChat, resp.Type)
	require.Equal(t, models.StepComplete, store.session(t, "s1").Step)
}

func TestStepsNeverSkip(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})
	ctx := context.Background()

	expected := []models.Step{
		models.StepAwaitName,
		models.StepAwaitEmail,
		models.StepAwaitCompany,
		models.StepAwaitInquiry,
		models.StepAwaitDateTime,
		models.StepAwaitDuration,
		models.StepAwaitConfirmation,
	}
	inputs := []string{
		"book a meeting",
		"Jane Doe",
		"jane@example.com",
		"Acme Corp",
		"product demo",
		"2026-09-03 14:00",
		"30",
	}

	for i, input := range inputs {
		resp := mustTurn(t, svc, ctx, "s1", input)
		require.Equal(t, expected[i], resp.Step, "after input %q", input)
	}
}

func TestStoreUnavailableIsFatalForTurn(t *testing.T) {
	store := newMemStore()
	store.getErr = &StoreUnavailableError{Err: fmt.Errorf("connection refused")}
	svc := newTestService(t, store, &fakeAvailability{open: true}, &fakeBookingService{})

	_, err := svc.HandleMessage(context.Background(), "s1", "book a meeting")
	var storeErr *StoreUnavailableError
	require.ErrorAs(t, err, &storeErr)
}
