package conversation

import (
	"context"
	"errors"
	"fmt"
)

// StoreUnavailableError is fatal for the current turn: the session store
// could not be reached and no state was written.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("session store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// UpstreamTimeoutError marks a collaborator timeout. Session state is
// unchanged, so the caller may retry the same turn.
type UpstreamTimeoutError struct {
	Op  string
	Err error
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %v", e.Op, e.Err)
}

func (e *UpstreamTimeoutError) Unwrap() error { return e.Err }

// asUpstream converts a collaborator deadline error into an
// UpstreamTimeoutError and passes everything else through.
func asUpstream(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamTimeoutError{Op: op, Err: err}
	}
	return err
}
