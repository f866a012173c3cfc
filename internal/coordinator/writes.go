package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/ledger"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/queue"
)

// Mutation is an optimistic roster change.  Roster is what readers see
// immediately; Wait blocks until the remote append settles.
type Mutation struct {
	Action   model.Action
	Name     string
	Roster   []string
	Previous []string

	done chan struct{}
	err  error
}

// Wait returns the outcome of the remote append, or ctx's error if it ends
// first.  A non-nil result means the change was rolled back.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the remote append has settled.
func (m *Mutation) Done() <-chan struct{} { return m.done }

// AddEmployee puts name on the roster right away and appends an
// add_employee event in the background.  If the append fails the roster is
// restored exactly and an error notice is posted.
func (c *Coordinator) AddEmployee(ctx context.Context, name string) (*Mutation, error) {
	return c.mutateRoster(ctx, model.ActionEmployeeAdded, name)
}

// RemoveEmployee is the inverse of AddEmployee.  The employee's history is
// kept; only roster membership changes.
func (c *Coordinator) RemoveEmployee(ctx context.Context, name string) (*Mutation, error) {
	return c.mutateRoster(ctx, model.ActionEmployeeRemoved, name)
}

func (c *Coordinator) mutateRoster(_ context.Context, action model.Action, name string) (*Mutation, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, model.ReservedActor) {
		return nil, ErrInvalidName
	}
	if !c.writing.CompareAndSwap(false, true) {
		return nil, ErrWriteInFlight
	}

	c.mu.Lock()
	cur := c.proj.Load()
	if cur == nil {
		c.mu.Unlock()
		c.writing.Store(false)
		return nil, ErrNotReady
	}
	on := cur.HasEmployee(name)
	if action == model.ActionEmployeeAdded && on {
		c.mu.Unlock()
		c.writing.Store(false)
		return nil, ErrAlreadyOnRoster
	}
	if action == model.ActionEmployeeRemoved && !on {
		c.mu.Unlock()
		c.writing.Store(false)
		return nil, ErrNotOnRoster
	}

	prev := cur.RosterCopy()
	var next []string
	if action == model.ActionEmployeeAdded {
		next = ledger.SortRoster(append(cur.RosterCopy(), name), c.opts.Language)
	} else {
		next = make([]string, 0, len(prev))
		for _, n := range prev {
			if n != name {
				next = append(next, n)
			}
		}
	}
	c.writeGen.Add(1)
	c.commit(cur.WithRoster(next))
	c.mu.Unlock()

	c.setStatus(StatusSyncing)
	m := &Mutation{
		Action:   action,
		Name:     name,
		Roster:   append([]string(nil), next...),
		Previous: prev,
		done:     make(chan struct{}),
	}
	row := c.row(name, action, c.opts.Source)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		// Detached from the request; only the write timeout bounds it.
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.WriteTimeout)
		defer cancel()
		c.settle(m, c.store.Append(ctx, row))
	}()
	return m, nil
}

func (c *Coordinator) settle(m *Mutation, err error) {
	if err != nil {
		c.mu.Lock()
		if cur := c.proj.Load(); cur != nil {
			c.commit(cur.WithRoster(m.Previous))
		}
		c.mu.Unlock()
		rollbackTotal.Inc()
		writeTotal.WithLabelValues(string(m.Action), "error").Inc()
		verb := "add"
		if m.Action == model.ActionEmployeeRemoved {
			verb = "remove"
		}
		c.fail(fmt.Sprintf("could not %s %s, change reverted", verb, m.Name), err)
	} else {
		writeTotal.WithLabelValues(string(m.Action), "ok").Inc()
		c.setStatus(StatusConnected)
		c.logger.Info("roster updated", zap.String("action", string(m.Action)), zap.String("employee", m.Name))
	}
	c.writing.Store(false)
	m.err = err
	close(m.done)
}

// Receipt describes an appended attendance event.
type Receipt struct {
	Employee string       `json:"employee"`
	Action   model.Action `json:"action"`
	At       time.Time    `json:"at"`
	Date     string       `json:"date"`
	Time     string       `json:"time"`
}

// RecordAttendance appends a check-in or check-out for name.  Once a
// projection is loaded only roster members may record attendance.
func (c *Coordinator) RecordAttendance(ctx context.Context, name string, action model.Action) (Receipt, error) {
	name = strings.TrimSpace(name)
	if !action.IsAttendance() {
		return Receipt{}, ErrInvalidAction
	}
	if name == "" || strings.EqualFold(name, model.ReservedActor) {
		return Receipt{}, ErrInvalidName
	}
	if p := c.proj.Load(); p != nil && !p.HasEmployee(name) {
		return Receipt{}, ErrNotOnRoster
	}

	at := c.now()
	row := c.row(name, action, c.opts.Source)
	c.setStatus(StatusSyncing)
	if err := c.store.Append(ctx, row); err != nil {
		writeTotal.WithLabelValues(string(action), "error").Inc()
		c.fail(fmt.Sprintf("could not record %s for %s", action, name), err)
		return Receipt{}, err
	}
	writeTotal.WithLabelValues(string(action), "ok").Inc()
	c.setStatus(StatusConnected)

	rec := Receipt{
		Employee: name,
		Action:   action,
		At:       at,
		Date:     row[model.ColDate],
		Time:     row[model.ColTime],
	}
	if c.opts.Publisher != nil {
		ev := queue.AttendanceRecordedEvent{
			Employee:  name,
			Action:    string(action),
			Timestamp: row[model.ColTimestamp],
			Date:      row[model.ColDate],
			Time:      row[model.ColTime],
			Source:    row[model.ColSource],
		}
		if err := c.opts.Publisher.PublishAttendanceRecorded(ctx, ev); err != nil {
			c.logger.Warn("publish attendance event", zap.Error(err))
		}
	}
	c.afterWrite(ctx)
	return rec, nil
}

// ChangePassphrase appends a change_admin_password event.  The new
// passphrase is effective locally as soon as the append succeeds.
func (c *Coordinator) ChangePassphrase(ctx context.Context, pass string) error {
	pass = strings.TrimSpace(pass)
	if pass == "" {
		return ErrEmptyPassphrase
	}
	c.setStatus(StatusSyncing)
	if err := c.store.Append(ctx, c.row(pass, model.ActionAdminPasswordChanged, "admin")); err != nil {
		writeTotal.WithLabelValues(string(model.ActionAdminPasswordChanged), "error").Inc()
		c.fail("could not change admin passphrase", err)
		return err
	}
	writeTotal.WithLabelValues(string(model.ActionAdminPasswordChanged), "ok").Inc()
	c.mu.Lock()
	if cur := c.proj.Load(); cur != nil {
		c.writeGen.Add(1)
		c.commit(cur.WithPassphrase(pass))
	}
	c.mu.Unlock()
	c.setStatus(StatusConnected)
	c.notices.Post(model.NoticeInfo, "admin passphrase changed")
	c.afterWrite(ctx)
	return nil
}

func (c *Coordinator) afterWrite(ctx context.Context) {
	if !c.opts.RefreshAfterWrite {
		return
	}
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshSkipped) {
		c.logger.Warn("refresh after write failed", zap.Error(err))
	}
}
