// Package ledger turns raw rows of the remote attendance log into a typed
// projection: per-employee/per-date daily logs, the active roster and the
// current admin passphrase.  The projection is always a full fold over the
// rows; nothing is patched incrementally.
package ledger

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// Options controls a Normalize run.  Zero values fall back to UTC, the
// built-in default passphrase, the root collation and a no-op logger.
type Options struct {
	Location          *time.Location
	DefaultPassphrase string
	Language          language.Tag
	Logger            *zap.Logger
}

// Projection is the read-only cached view built from the event log.
type Projection struct {
	Logs            map[string]map[string][]model.DailyLog `json:"-"`
	Roster          []string                               `json:"roster"`
	AdminPassphrase string                                 `json:"-"`
	Rows            int                                    `json:"rows"`
	Dropped         int                                    `json:"dropped"`
}

// Normalize folds rows into a projection.  It is total: malformed rows,
// unparseable timestamps and even panics while reading a row are logged and
// skipped without aborting the batch.
func Normalize(rows [][]string, opts Options) *Projection {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	pass := opts.DefaultPassphrase
	if pass == "" {
		pass = model.DefaultAdminPassphrase
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	state := Initial(pass)
	dropped := 0
	for i, row := range rows {
		ev, err := safeParse(i, row, loc)
		if err != nil {
			if errors.Is(err, ErrNoAction) {
				continue
			}
			dropped++
			log.Warn("dropping log row", zap.Int("index", i), zap.Error(err))
			continue
		}
		state = Reduce(state, ev)
	}
	state.sortLogs()

	return &Projection{
		Logs:            state.Logs,
		Roster:          SortRoster(state.activeNames(), opts.Language),
		AdminPassphrase: state.Passphrase,
		Rows:            len(rows),
		Dropped:         dropped,
	}
}

func safeParse(i int, row []string, loc *time.Location) (ev model.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{Index: i, Reason: "malformed row", Err: fmt.Errorf("%v", r)}
		}
	}()
	return ParseRow(i, row, loc)
}

// SortRoster orders names with the collation of tag (root collation when
// tag is the zero value).  The input slice is sorted in place and returned.
func SortRoster(names []string, tag language.Tag) []string {
	if tag == (language.Tag{}) {
		tag = language.Und
	}
	collate.New(tag).SortStrings(names)
	return names
}

// EmployeeLogs returns the date-keyed logs of one employee, or nil.
func (p *Projection) EmployeeLogs(name string) map[string][]model.DailyLog {
	if p == nil {
		return nil
	}
	return p.Logs[name]
}

// HasEmployee reports roster membership.
func (p *Projection) HasEmployee(name string) bool {
	if p == nil {
		return false
	}
	for _, n := range p.Roster {
		if n == name {
			return true
		}
	}
	return false
}

// VerifyPassphrase compares candidate with the current passphrase in
// constant time.
func (p *Projection) VerifyPassphrase(candidate string) bool {
	if p == nil || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(p.AdminPassphrase), []byte(candidate)) == 1
}

// RosterCopy returns a defensive copy of the roster.
func (p *Projection) RosterCopy() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.Roster...)
}

// WithRoster returns a shallow copy of p carrying roster.  Logs are shared;
// they are never mutated after Normalize returns.
func (p *Projection) WithRoster(roster []string) *Projection {
	cp := *p
	cp.Roster = append([]string(nil), roster...)
	return &cp
}

// WithPassphrase returns a shallow copy of p with a new admin passphrase.
func (p *Projection) WithPassphrase(pass string) *Projection {
	cp := *p
	cp.AdminPassphrase = pass
	return &cp
}
