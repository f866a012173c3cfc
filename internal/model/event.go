package model

import (
	"strings"
	"time"
)

// Action identifies the kind of an event row.  Values are compared
// case-insensitively when parsed from the remote log; unknown values are
// kept verbatim so newer clients can add event kinds without breaking
// older readers.
type Action string

const (
	ActionCheckIn              Action = "checkin"
	ActionCheckOut             Action = "checkout"
	ActionEmployeeAdded        Action = "add_employee"
	ActionEmployeeRemoved      Action = "remove_employee"
	ActionAdminPasswordChanged Action = "change_admin_password"
)

// ReservedActor is the sentinel name used by administrative rows.  It is
// never part of the roster.
const ReservedActor = "SYSTEM"

// DefaultAdminPassphrase applies until the first change_admin_password row.
const DefaultAdminPassphrase = "admin"

// Column positions of a raw log row.
const (
	ColActor = iota
	ColAction
	ColTimestamp
	ColDate
	ColTime
	ColSource
	RowWidth
)

// ParseAction normalizes a raw action cell.  Empty input yields "".
func ParseAction(raw string) Action {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "check_in", "check-in":
		return ActionCheckIn
	case "check_out", "check-out":
		return ActionCheckOut
	}
	return Action(s)
}

// IsAttendance reports whether the action produces a daily log entry.
func (a Action) IsAttendance() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// Known reports whether the action is one of the defined kinds.
func (a Action) Known() bool {
	switch a {
	case ActionCheckIn, ActionCheckOut, ActionEmployeeAdded, ActionEmployeeRemoved, ActionAdminPasswordChanged:
		return true
	}
	return false
}

// Event is one immutable entry of the append-only attendance log.
//
// Fields:
//  Actor     – employee name, or the new passphrase for change_admin_password.
//  Action    – event kind.
//  Timestamp – instant of a check-in/check-out (zero for other kinds).
//  Date      – calendar date the entry belongs to, normalized to YYYY-MM-DD.
//  Time      – wall clock HH:MM:SS as written by the client.
//  Source    – free-form origin tag (web, api, admin, ...).
type Event struct {
	Actor     string
	Action    Action
	Timestamp time.Time
	Date      string
	Time      string
	Source    string
}

// DailyLog is a single check-in or check-out inside an (employee, date) group.
type DailyLog struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}
