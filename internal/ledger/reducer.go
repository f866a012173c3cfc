package ledger

import (
	"sort"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// State is the fold accumulator over the event sequence.
//
// Fields:
//  Candidates – every actor seen doing attendance, add_employee or an unknown action.
//  Removed    – true when the actor's last roster event was remove_employee.
//  Passphrase – last admin passphrase seen.
//  Logs       – employee → date → daily logs in arrival order.
type State struct {
	Candidates map[string]struct{}
	Removed    map[string]bool
	Passphrase string
	Logs       map[string]map[string][]model.DailyLog
}

// Initial returns the empty state with the given default passphrase.
func Initial(defaultPassphrase string) State {
	return State{
		Candidates: map[string]struct{}{},
		Removed:    map[string]bool{},
		Passphrase: defaultPassphrase,
		Logs:       map[string]map[string][]model.DailyLog{},
	}
}

// Reduce applies one event and returns the next state.  The prior state is
// consumed: its maps are reused, so callers must only keep the returned value.
func Reduce(s State, ev model.Event) State {
	if s.Candidates == nil {
		s.Candidates = map[string]struct{}{}
	}
	if s.Removed == nil {
		s.Removed = map[string]bool{}
	}
	if s.Logs == nil {
		s.Logs = map[string]map[string][]model.DailyLog{}
	}

	switch ev.Action {
	case model.ActionEmployeeAdded:
		if ev.Actor != "" {
			s.Candidates[ev.Actor] = struct{}{}
			delete(s.Removed, ev.Actor)
		}
	case model.ActionEmployeeRemoved:
		if ev.Actor != "" {
			s.Removed[ev.Actor] = true
		}
	case model.ActionAdminPasswordChanged:
		if ev.Actor != "" {
			s.Passphrase = ev.Actor
		}
	case model.ActionCheckIn, model.ActionCheckOut:
		if ev.Actor == "" || ev.Date == "" {
			return s
		}
		s.Candidates[ev.Actor] = struct{}{}
		byDate, ok := s.Logs[ev.Actor]
		if !ok {
			byDate = map[string][]model.DailyLog{}
			s.Logs[ev.Actor] = byDate
		}
		byDate[ev.Date] = append(byDate[ev.Date], model.DailyLog{Action: ev.Action, Timestamp: ev.Timestamp})
	default:
		if ev.Actor != "" {
			s.Candidates[ev.Actor] = struct{}{}
		}
	}
	return s
}

// Fold reduces a whole event sequence from the initial state.
func Fold(defaultPassphrase string, events []model.Event) State {
	s := Initial(defaultPassphrase)
	for _, ev := range events {
		s = Reduce(s, ev)
	}
	return s
}

// activeNames returns candidates that are neither removed nor the sentinel,
// in byte order.  Callers apply the locale collation on top.
func (s State) activeNames() []string {
	out := make([]string, 0, len(s.Candidates))
	for name := range s.Candidates {
		if name == model.ReservedActor || s.Removed[name] {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// sortLogs orders every group ascending by timestamp.  The sort is stable so
// equal instants keep their log order.
func (s State) sortLogs() {
	for _, byDate := range s.Logs {
		for _, logs := range byDate {
			sort.SliceStable(logs, func(i, j int) bool {
				return logs[i].Timestamp.Before(logs[j].Timestamp)
			})
		}
	}
}
