// Package summary builds per-day attendance summaries under one of the two
// hour policies.  Summaries are always derived from the logs on demand, so
// switching the policy simply re-derives them.
package summary

import (
	"math"
	"sort"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/shift"
)

// Build summarizes one (employee, date) group.  logs must be sorted
// ascending by timestamp.
func Build(date string, logs []model.DailyLog, policy model.Policy) model.DailySummary {
	var firstIn, lastOut *time.Time
	for i := range logs {
		ts := logs[i].Timestamp
		switch logs[i].Action {
		case model.ActionCheckIn:
			if firstIn == nil || ts.Before(*firstIn) {
				t := ts
				firstIn = &t
			}
		case model.ActionCheckOut:
			if lastOut == nil || ts.After(*lastOut) {
				t := ts
				lastOut = &t
			}
		}
	}

	paired := shift.Pair(logs)
	s := model.DailySummary{
		Date:       date,
		FirstIn:    firstIn,
		LastOut:    lastOut,
		ShiftPairs: paired.Pairs,
		RawLogs:    logs,
	}
	switch policy {
	case model.PolicyPairs:
		s.TotalHours = paired.TotalHours
	default:
		s.TotalHours = FirstLastHours(firstIn, lastOut)
	}
	return s
}

// FirstLastHours is max(0, lastOut-firstIn) in hours, zero when an endpoint
// is missing.
func FirstLastHours(firstIn, lastOut *time.Time) float64 {
	if firstIn == nil || lastOut == nil {
		return 0
	}
	return math.Max(0, lastOut.Sub(*firstIn).Hours())
}

// BuildAll summarizes every date of one employee.
func BuildAll(byDate map[string][]model.DailyLog, policy model.Policy) map[string]model.DailySummary {
	out := make(map[string]model.DailySummary, len(byDate))
	for date, logs := range byDate {
		if len(logs) == 0 {
			continue
		}
		out[date] = Build(date, logs, policy)
	}
	return out
}

// Totals sums hours over summaries and counts the days with any hours.
func Totals(summaries []model.DailySummary) (hours float64, days int) {
	for _, s := range summaries {
		hours += s.TotalHours
		if s.TotalHours > 0 {
			days++
		}
	}
	return hours, days
}

// EstimatedPay rounds hours*wage to two decimals.
func EstimatedPay(hours, hourlyWage float64) float64 {
	if hourlyWage <= 0 || hours <= 0 {
		return 0
	}
	return math.Round(hours*hourlyWage*100) / 100
}

// SortedDates returns the keys of m ascending.
func SortedDates(m map[string]model.DailySummary) []string {
	dates := make([]string, 0, len(m))
	for d := range m {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
