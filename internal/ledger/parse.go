package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// timestampLayouts are tried in order.  Layouts without a zone are read in
// the caller's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp reads an ISO-8601 instant.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// cell returns the trimmed value at i, or "" for short rows.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ParseRow converts one raw row into an event.  Check-in and check-out rows
// must carry an actor, a parseable timestamp and a date; other kinds only
// need an action.  index is used for diagnostics only.
func ParseRow(index int, row []string, loc *time.Location) (model.Event, error) {
	if row == nil {
		return model.Event{}, &ParseError{Index: index, Reason: "malformed row"}
	}
	action := model.ParseAction(cell(row, model.ColAction))
	if action == "" {
		return model.Event{}, ErrNoAction
	}
	ev := model.Event{
		Actor:  cell(row, model.ColActor),
		Action: action,
		Time:   cell(row, model.ColTime),
		Source: cell(row, model.ColSource),
	}
	if !action.IsAttendance() {
		if d, _, err := model.ParseDate(cell(row, model.ColDate), loc); err == nil {
			ev.Date = d
		}
		return ev, nil
	}

	rawTS, rawDate := cell(row, model.ColTimestamp), cell(row, model.ColDate)
	if ev.Actor == "" || rawTS == "" || rawDate == "" {
		return model.Event{}, &ParseError{Index: index, Reason: "attendance row missing actor, timestamp or date"}
	}
	ts, err := ParseTimestamp(rawTS, loc)
	if err != nil {
		return model.Event{}, &ParseError{Index: index, Reason: "bad timestamp", Err: err}
	}
	date, _, err := model.ParseDate(rawDate, loc)
	if err != nil {
		return model.Event{}, &ParseError{Index: index, Reason: "bad date", Err: err}
	}
	ev.Timestamp = ts
	ev.Date = date
	return ev, nil
}
