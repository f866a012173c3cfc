// Package repository persists local state: sessions, hourly wages and
// settings in a key-value store, and optionally the event log itself in
// MySQL.  Sentinel errors let handlers map failures to HTTP status codes.
package repository

import "errors"

// ErrNotFound is returned when a key or record does not exist.  Corrupt
// records are reported the same way after being discarded.
var ErrNotFound = errors.New("not found")

// ErrInvalidWage rejects negative or non-finite hourly wages.
var ErrInvalidWage = errors.New("hourly wage must be a non-negative number")
