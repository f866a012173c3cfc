package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format used for grouping keys.
const DateLayout = "2006-01-02"

// ShiftPair is one matched check-in/check-out interval.  CheckOut is always
// strictly after CheckIn.
type ShiftPair struct {
	CheckIn       time.Time `json:"checkin_time"`
	CheckOut      time.Time `json:"checkout_time"`
	DurationHours float64   `json:"duration_hours"`
}

// DailySummary aggregates one employee's logs for one calendar date.
//
// Fields:
//  Date       – YYYY-MM-DD.
//  FirstIn    – earliest check-in of the day (nil if none).
//  LastOut    – latest check-out of the day (nil if none).
//  TotalHours – hours under the active Policy.
//  ShiftPairs – matched intervals in chronological order.
//  RawLogs    – sorted source logs the summary was built from.
type DailySummary struct {
	Date       string      `json:"date"`
	FirstIn    *time.Time  `json:"first_in"`
	LastOut    *time.Time  `json:"last_out"`
	TotalHours float64     `json:"total_hours"`
	ShiftPairs []ShiftPair `json:"shift_pairs"`
	RawLogs    []DailyLog  `json:"raw_logs"`
}

// Policy selects how TotalHours is computed.
type Policy string

const (
	// PolicyFirstLast spans first check-in to last check-out, breaks included.
	PolicyFirstLast Policy = "first-last"
	// PolicyPairs sums matched shift pairs only.
	PolicyPairs Policy = "pairs"
)

// ParsePolicy accepts the canonical names plus a few spellings seen in
// configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first-last", "first_last", "firstlast", "span":
		return PolicyFirstLast, nil
	case "pairs", "pair", "shifts":
		return PolicyPairs, nil
	}
	return "", fmt.Errorf("unknown hour policy %q", s)
}

// Granularity is the calendar size of a report window.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// ParseDate accepts YYYY-MM-DD and YYYYMMDD and returns the canonical key
// together with midnight of that date in loc.
func ParseDate(raw string, loc *time.Location) (string, time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{DateLayout, "20060102", "2006/01/02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(DateLayout), t, nil
		}
	}
	return "", time.Time{}, fmt.Errorf("invalid date %q", raw)
}
