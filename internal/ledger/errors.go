package ledger

import (
	"errors"
	"fmt"
)

// ErrNoAction marks rows whose action cell is empty.  They are skipped
// silently and do not count as dropped.
var ErrNoAction = errors.New("row has no action")

// ParseError describes a row that could not be turned into an event.  It
// never escapes Normalize: the row is dropped and the error logged.
type ParseError struct {
	Index  int    // zero-based position in the fetched batch, -1 when unknown
	Reason string // short human description
	Err    error  // underlying parse failure, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("row %d: %s", e.Index, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
