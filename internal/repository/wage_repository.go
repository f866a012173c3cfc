package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

const wagesKey = "wages"

// WageRepo keeps the per-employee hourly wage map as one JSON document.
type WageRepo struct {
	KV     KV
	Logger *zap.Logger

	mu  sync.Mutex
	gen atomic.Uint64
}

func NewWageRepo(kv KV, logger *zap.Logger) *WageRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WageRepo{KV: kv, Logger: logger}
}

// All returns every wage.  Entries that are not non-negative numbers are
// dropped one by one; an unreadable document yields an empty map.
func (r *WageRepo) All(ctx context.Context) (map[string]float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *WageRepo) load(ctx context.Context) (map[string]float64, error) {
	out := map[string]float64{}
	b, err := r.KV.Get(ctx, wagesKey)
	if errors.Is(err, ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		r.Logger.Warn("discarding unreadable wage map", zap.Error(err))
		return out, nil
	}
	for name, v := range raw {
		f, ok := v.(float64)
		if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			r.Logger.Warn("dropping corrupt wage entry", zap.String("employee", name))
			continue
		}
		out[name] = f
	}
	return out, nil
}

func (r *WageRepo) save(ctx context.Context, m map[string]float64) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := r.KV.Set(ctx, wagesKey, b, 0); err != nil {
		return err
	}
	r.gen.Add(1)
	return nil
}

// Generation increases after every successful Set or Delete made through
// this repository.
func (r *WageRepo) Generation() uint64 { return r.gen.Load() }

// Get returns the wage of one employee and whether it is set.
func (r *WageRepo) Get(ctx context.Context, name string) (float64, bool, error) {
	m, err := r.All(ctx)
	if err != nil {
		return 0, false, err
	}
	w, ok := m[name]
	return w, ok, nil
}

// Set stores a wage.
func (r *WageRepo) Set(ctx context.Context, name string, wage float64) error {
	if wage < 0 || math.IsNaN(wage) || math.IsInf(wage, 0) {
		return ErrInvalidWage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	m[name] = wage
	return r.save(ctx, m)
}

// Delete removes a wage.  Missing entries yield ErrNotFound.
func (r *WageRepo) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := m[name]; !ok {
		return ErrNotFound
	}
	delete(m, name)
	return r.save(ctx, m)
}
