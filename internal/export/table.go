// Package export renders report windows as downloadable files.  Every
// format shares the same header block and table so a CSV and an XLSX of the
// same window carry identical content.
package export

import (
	"strconv"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/report"
)

const clockLayout = "15:04:05"

func hours(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(clockLayout)
}

// header returns the key/value block printed above the table.
func header(w report.Window) [][]string {
	return [][]string{
		{"Employee", w.Employee},
		{"Period", w.Period()},
		{"Granularity", string(w.Granularity)},
		{"Policy", string(w.Policy)},
		{"Total hours", hours(w.TotalHours)},
		{"Days worked", strconv.Itoa(w.Days)},
		{"Hourly wage", hours(w.HourlyWage)},
		{"Estimated pay", hours(w.EstimatedPay)},
	}
}

// table returns column titles and rows.  Under first-last there is one row
// per day; under pairs each day row is followed by one row per shift pair.
func table(w report.Window, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.UTC
	}
	if w.Policy == model.PolicyPairs {
		out := [][]string{{"Date", "Entry", "Check-in", "Check-out", "Hours"}}
		for _, s := range w.Summaries {
			out = append(out, []string{s.Date, "day", clock(s.FirstIn, loc), clock(s.LastOut, loc), hours(s.TotalHours)})
			for i := range s.ShiftPairs {
				p := s.ShiftPairs[i]
				out = append(out, []string{s.Date, "shift", clock(&p.CheckIn, loc), clock(&p.CheckOut, loc), hours(p.DurationHours)})
			}
		}
		return out
	}
	out := [][]string{{"Date", "First check-in", "Last check-out", "Hours"}}
	for _, s := range w.Summaries {
		out = append(out, []string{s.Date, clock(s.FirstIn, loc), clock(s.LastOut, loc), hours(s.TotalHours)})
	}
	return out
}
