// Package report selects calendar-aligned windows (day, week, month) of an
// employee's daily summaries.
package report

import (
	"sort"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/summary"
)

// Bounds returns the first and last calendar day (midnight, in ref's
// location) of the window containing ref.  Both ends are inclusive.
func Bounds(ref time.Time, g model.Granularity, weekStart time.Weekday) (start, end time.Time) {
	y, m, d := ref.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	switch g {
	case model.GranularityWeek:
		offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	case model.GranularityMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
		return start, start.AddDate(0, 1, -1)
	default:
		return day, day
	}
}

// Select returns the summaries whose date lies inside the window anchored
// at ref, ascending by date.  Dates outside by a single day are excluded.
func Select(byDate map[string]model.DailySummary, ref time.Time, g model.Granularity, weekStart time.Weekday) []model.DailySummary {
	start, end := Bounds(ref, g, weekStart)
	lo, hi := start.Format(model.DateLayout), end.Format(model.DateLayout)

	out := make([]model.DailySummary, 0)
	for date, s := range byDate {
		if date >= lo && date <= hi {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Shift moves ref by n whole windows.  Months are moved from the first of
// the month so Jan 31 + 1 month lands in February.
func Shift(ref time.Time, g model.Granularity, n int) time.Time {
	switch g {
	case model.GranularityWeek:
		return ref.AddDate(0, 0, 7*n)
	case model.GranularityMonth:
		y, m, _ := ref.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, n, 0)
	default:
		return ref.AddDate(0, 0, n)
	}
}

// CanAdvance reports whether the next window starts no later than now.
func CanAdvance(ref time.Time, g model.Granularity, weekStart time.Weekday, now time.Time) bool {
	next, _ := Bounds(Shift(ref, g, 1), g, weekStart)
	return !next.After(now)
}

// Window is a fully assembled report for one employee.
type Window struct {
	Employee     string               `json:"employee"`
	Granularity  model.Granularity    `json:"granularity"`
	Policy       model.Policy         `json:"policy"`
	Start        string               `json:"start"`
	End          string               `json:"end"`
	Summaries    []model.DailySummary `json:"summaries"`
	TotalHours   float64              `json:"total_hours"`
	Days         int                  `json:"days"`
	HourlyWage   float64              `json:"hourly_wage"`
	EstimatedPay float64              `json:"estimated_pay"`
	Prev         string               `json:"prev"`
	Next         string               `json:"next,omitempty"`
	CanAdvance   bool                 `json:"can_advance"`
}

// Query groups the inputs of Assemble.
type Query struct {
	Employee    string
	Ref         time.Time
	Granularity model.Granularity
	Policy      model.Policy
	WeekStart   time.Weekday
	HourlyWage  float64
	Now         time.Time
}

// Assemble derives the summaries of one employee from logs under the
// query's policy and cuts the requested window.
func Assemble(logs map[string][]model.DailyLog, q Query) Window {
	byDate := summary.BuildAll(logs, q.Policy)
	rows := Select(byDate, q.Ref, q.Granularity, q.WeekStart)
	start, end := Bounds(q.Ref, q.Granularity, q.WeekStart)
	hours, days := summary.Totals(rows)

	w := Window{
		Employee:     q.Employee,
		Granularity:  q.Granularity,
		Policy:       q.Policy,
		Start:        start.Format(model.DateLayout),
		End:          end.Format(model.DateLayout),
		Summaries:    rows,
		TotalHours:   hours,
		Days:         days,
		HourlyWage:   q.HourlyWage,
		EstimatedPay: summary.EstimatedPay(hours, q.HourlyWage),
		Prev:         Shift(q.Ref, q.Granularity, -1).Format(model.DateLayout),
		CanAdvance:   CanAdvance(q.Ref, q.Granularity, q.WeekStart, q.Now),
	}
	if w.CanAdvance {
		w.Next = Shift(q.Ref, q.Granularity, 1).Format(model.DateLayout)
	}
	return w
}

// Period renders the window range for headers, e.g. "2024-03-03 to 2024-03-09".
func (w Window) Period() string {
	if w.Start == w.End {
		return w.Start
	}
	return w.Start + " to " + w.End
}
