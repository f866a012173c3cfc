// Package shift pairs the check-ins and check-outs of one employee on one
// date into shifts.
package shift

import "github.com/iliyamo/attendance-ledger/internal/model"

// Result is the outcome of pairing one day of logs.
type Result struct {
	TotalHours float64
	Pairs      []model.ShiftPair
}

// Pair scans logs (sorted ascending) once, holding at most one pending
// check-in.  A second check-in while one is pending is ignored.  A check-out
// closes the pending check-in; the interval is kept only when its duration
// is positive, and the pending slot is cleared either way.  A check-out with
// nothing pending does nothing.
func Pair(logs []model.DailyLog) Result {
	var (
		res     Result
		pending *model.DailyLog
	)
	for i := range logs {
		l := &logs[i]
		switch l.Action {
		case model.ActionCheckIn:
			if pending == nil {
				pending = l
			}
		case model.ActionCheckOut:
			if pending == nil {
				continue
			}
			d := l.Timestamp.Sub(pending.Timestamp)
			if d > 0 {
				h := d.Hours()
				res.Pairs = append(res.Pairs, model.ShiftPair{
					CheckIn:       pending.Timestamp,
					CheckOut:      l.Timestamp,
					DurationHours: h,
				})
				res.TotalHours += h
			}
			pending = nil
		}
	}
	return res
}
