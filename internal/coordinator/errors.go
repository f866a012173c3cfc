package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrRefreshSkipped is returned when a refresh was not applied because an
	// optimistic roster write was in flight.
	ErrRefreshSkipped = errors.New("refresh skipped: roster write in flight")
	// ErrWriteInFlight rejects a roster mutation while another is pending.
	ErrWriteInFlight = errors.New("another roster change is still being saved")
	// ErrNotReady is returned before the first successful load.
	ErrNotReady = errors.New("attendance log not loaded yet")

	ErrInvalidName     = errors.New("invalid employee name")
	ErrAlreadyOnRoster = errors.New("employee already on roster")
	ErrNotOnRoster     = errors.New("employee not on roster")
	ErrInvalidAction   = errors.New("action is not check-in or check-out")
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")
)

// ProcessingError wraps an unexpected failure while building the projection.
// The previous projection stays in place when it happens.
type ProcessingError struct {
	Cause error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing attendance log: %v", e.Cause)
}

func (e *ProcessingError) Unwrap() error { return e.Cause }
