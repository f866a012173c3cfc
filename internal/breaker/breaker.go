// Package breaker is a small Closed/Open/HalfOpen circuit breaker used to
// fail fast while the remote log store is down.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned without calling the operation while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds the breaker tunables.
type Config struct {
	MaxFailures  int           // consecutive failures before opening
	ResetTimeout time.Duration // how long to stay open before a trial call
}

// Breaker wraps calls to an unreliable dependency.
type Breaker struct {
	name   string
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// New returns a closed breaker.  Non-positive settings fall back to
// 5 failures and a 30s reset timeout.
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{name: name, cfg: cfg, logger: logger.Named("breaker"), now: time.Now}
}

// Execute runs op unless the breaker is open.  After ResetTimeout one trial
// call is let through (half-open); its outcome closes or re-opens the
// breaker.  Context cancellation is not counted as a failure.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := op(ctx)
	switch {
	case err == nil:
		b.onSuccess()
	case errors.Is(err, context.Canceled):
		b.release()
	default:
		b.onFailure(err)
	}
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.ResetTimeout {
			return false
		}
		b.state = HalfOpen
		b.logger.Info("trial call", zap.String("name", b.name))
		return true
	case HalfOpen:
		// only one trial call at a time
		return false
	default:
		return true
	}
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen {
		b.state = Open
	}
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Closed {
		b.logger.Info("closed", zap.String("name", b.name), zap.Stringer("from", b.state))
	}
	b.state = Closed
	b.failures = 0
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == HalfOpen || b.failures >= b.cfg.MaxFailures {
		if b.state != Open {
			b.logger.Warn("opened", zap.String("name", b.name), zap.Int("failures", b.failures), zap.Error(err))
		}
		b.state = Open
		b.openedAt = b.now()
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
