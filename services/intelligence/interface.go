package intelligence

import "context"

// ChatService produces a free-form reply for messages outside the booking
// flow (unrelated questions, or turns after a session completed).
type ChatService interface {
	Reply(ctx context.Context, text string) (string, error)
}
