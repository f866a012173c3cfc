// Package coordinator owns the cached attendance projection and every
// interaction with the remote log: full refreshes, attendance appends and
// optimistic roster changes with rollback.
//
// Readers never block on the network.  Snapshot returns whatever projection
// was last committed; a refresh replaces it wholesale, and an optimistic
// roster change swaps in a copy with the new roster until the remote append
// settles.  A refresh never commits while a roster write is pending, so a
// stale fetch cannot clobber an optimistic change.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"github.com/iliyamo/attendance-ledger/internal/ledger"
	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/queue"
	"github.com/iliyamo/attendance-ledger/internal/sheet"
)

// LogStore is the remote, append-only event log.
type LogStore interface {
	// Fetch returns every data row, oldest first.
	Fetch(ctx context.Context) ([][]string, error)
	// Append writes one row at the end of the log.
	Append(ctx context.Context, row []string) error
}

// Publisher receives attendance events after they were stored.  Publishing is
// best effort; failures are logged only.
type Publisher interface {
	PublishAttendanceRecorded(ctx context.Context, ev queue.AttendanceRecordedEvent) error
}

// Options tunes a Coordinator.  Zero values are usable.
type Options struct {
	Location          *time.Location
	Language          language.Tag
	DefaultPassphrase string
	Policy            model.Policy
	// WriteTimeout bounds the detached remote append of a roster change.
	WriteTimeout time.Duration
	// FetchTimeout bounds a shared refresh.  The fetch does not inherit the
	// cancellation of the caller that happened to start it.
	FetchTimeout time.Duration
	// RefreshAfterWrite triggers a full refresh after each successful
	// attendance or passphrase append.
	RefreshAfterWrite bool
	// Source is stored in the source column of rows written by this process.
	Source         string
	NoticeCapacity int
	Publisher      Publisher
	Logger         *zap.Logger
	Now            func() time.Time
}

// Coordinator serializes access to the remote log and publishes the
// projection to readers.
type Coordinator struct {
	store  LogStore
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	normalize func(rows [][]string) *ledger.Projection

	// mu guards read-modify-write updates of proj.  Reads go through the
	// atomic pointer and never take it.
	mu          sync.Mutex
	proj        atomic.Pointer[ledger.Projection]
	version     atomic.Uint64
	lastRefresh atomic.Int64
	status      atomic.Int32
	policy      atomic.Value

	// writing is set for the whole lifetime of an optimistic roster write.
	writing  atomic.Bool
	writeGen atomic.Uint64
	flight   singleflight.Group
	pending  sync.WaitGroup

	notices *NoticeBoard
}

// New returns a coordinator in the Offline state with no projection.
func New(store LogStore, opts Options) *Coordinator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 15 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Source == "" {
		opts.Source = "api"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == "" {
		opts.Policy = model.PolicyFirstLast
	}
	c := &Coordinator{
		store:   store,
		opts:    opts,
		logger:  opts.Logger.Named("coordinator"),
		now:     opts.Now,
		notices: NewNoticeBoard(opts.NoticeCapacity, opts.Now),
	}
	c.normalize = func(rows [][]string) *ledger.Projection {
		return ledger.Normalize(rows, ledger.Options{
			Location:          opts.Location,
			DefaultPassphrase: opts.DefaultPassphrase,
			Language:          opts.Language,
			Logger:            opts.Logger,
		})
	}
	c.policy.Store(opts.Policy)
	statusGauge.Set(float64(StatusOffline))
	return c
}

// Start performs the initial load.  The coordinator moves through Connecting
// and ends in Connected or Error.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.shared(ctx, StatusConnecting)
}

// Refresh re-reads the whole log and replaces the projection.  Concurrent
// callers share a single fetch; a caller whose ctx ends stops waiting but
// the fetch carries on for the others.  It returns ErrRefreshSkipped
// without touching the network while a roster write is in flight.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if c.writing.Load() {
		refreshTotal.WithLabelValues("skipped").Inc()
		return ErrRefreshSkipped
	}
	return c.shared(ctx, StatusSyncing)
}

func (c *Coordinator) shared(ctx context.Context, during Status) error {
	ch := c.flight.DoChan("refresh", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.FetchTimeout)
		defer cancel()
		return nil, c.refresh(fctx, during)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) refresh(ctx context.Context, during Status) error {
	gen := c.writeGen.Load()
	c.setStatus(during)
	start := time.Now()

	rows, err := c.store.Fetch(ctx)
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		c.fail("refresh failed", err)
		return err
	}

	proj, err := c.safeNormalize(rows)
	refreshDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		refreshTotal.WithLabelValues("error").Inc()
		c.fail("could not process attendance log", err)
		return err
	}

	c.mu.Lock()
	if c.writing.Load() || c.writeGen.Load() != gen {
		c.mu.Unlock()
		refreshTotal.WithLabelValues("discarded").Inc()
		c.logger.Info("discarding refresh overlapped by roster write")
		return ErrRefreshSkipped
	}
	c.commit(proj)
	c.mu.Unlock()

	c.lastRefresh.Store(c.now().UnixNano())
	droppedRows.Set(float64(proj.Dropped))
	refreshTotal.WithLabelValues("ok").Inc()
	c.setStatus(StatusConnected)
	c.logger.Debug("refreshed",
		zap.Int("rows", proj.Rows),
		zap.Int("dropped", proj.Dropped),
		zap.Int("roster", len(proj.Roster)),
	)
	return nil
}

func (c *Coordinator) safeNormalize(rows [][]string) (p *ledger.Projection, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, &ProcessingError{Cause: fmt.Errorf("%v", r)}
		}
	}()
	return c.normalize(rows), nil
}

// commit publishes p.  Callers hold mu.
func (c *Coordinator) commit(p *ledger.Projection) {
	c.proj.Store(p)
	c.version.Add(1)
}

// BackgroundRefresh is the timer-driven refresh.  While a roster write is
// pending the cycle is dropped and ErrRefreshSkipped returned; it is not
// queued or retried early.
func (c *Coordinator) BackgroundRefresh(ctx context.Context) error {
	err := c.Refresh(ctx)
	if errors.Is(err, ErrRefreshSkipped) {
		c.logger.Debug("background refresh skipped")
	}
	return err
}

// Run refreshes every interval until ctx is done.  Ticks that land while a
// roster write is pending are skipped, not queued.
func (c *Coordinator) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := c.BackgroundRefresh(ctx); err != nil && !errors.Is(err, ErrRefreshSkipped) && ctx.Err() == nil {
				c.logger.Warn("background refresh failed", zap.Error(err))
			}
		}
	}
}

// Close waits for detached roster writes to settle or ctx to end.
func (c *Coordinator) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the committed projection, or nil before the first load.
// Callers must treat it as read-only.
func (c *Coordinator) Snapshot() *ledger.Projection { return c.proj.Load() }

// Version increases every time a projection is committed.
func (c *Coordinator) Version() uint64 { return c.version.Load() }

// Status returns the current sync status.
func (c *Coordinator) Status() Status { return Status(c.status.Load()) }

// LastRefresh returns the time of the last successful full refresh.
func (c *Coordinator) LastRefresh() time.Time {
	n := c.lastRefresh.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Writing reports whether an optimistic roster write is pending.
func (c *Coordinator) Writing() bool { return c.writing.Load() }

// Notices returns recent user-visible notices, oldest first.
func (c *Coordinator) Notices() []model.Notice { return c.notices.List() }

// Policy returns the hour-calculation policy used for summaries.
func (c *Coordinator) Policy() model.Policy { return c.policy.Load().(model.Policy) }

// SetPolicy changes the hour-calculation policy.
func (c *Coordinator) SetPolicy(p model.Policy) { c.policy.Store(p) }

// Location returns the configured local time zone.
func (c *Coordinator) Location() *time.Location { return c.opts.Location }

func (c *Coordinator) setStatus(s Status) {
	old := Status(c.status.Swap(int32(s)))
	statusGauge.Set(float64(s))
	if old != s {
		c.logger.Debug("status changed", zap.Stringer("from", old), zap.Stringer("to", s))
	}
}

func (c *Coordinator) fail(msg string, err error) {
	c.setStatus(StatusError)
	c.logger.Error(msg, zap.Error(err))
	c.notices.Post(model.NoticeError, fmt.Sprintf("%s: %v", msg, err))
}

func (c *Coordinator) row(actor string, action model.Action, source string) []string {
	return sheet.EncodeRow(actor, action, c.now(), c.opts.Location, source)
}
