package sheet

import "fmt"

// TransportError covers network failures and non-success HTTP statuses.
type TransportError struct {
	Op     string // "fetch" or "append"
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("sheet %s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("sheet %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LogicalError is a well-formed response that reports failure, or a body
// that cannot be read as the expected acknowledgement.
type LogicalError struct {
	Message string
}

func (e *LogicalError) Error() string { return "sheet append rejected: " + e.Message }
