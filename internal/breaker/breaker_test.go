package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func fail(context.Context) error { return errBoom }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Minute}, nil)
	ctx := context.Background()

	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Closed, b.State())
	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("test", Config{MaxFailures: 1, ResetTimeout: 10 * time.Second}, nil)
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	assert.Equal(t, Open, b.State())

	now = now.Add(11 * time.Second)
	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, Open, b.State(), "failed trial re-opens")

	now = now.Add(11 * time.Second)
	assert.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_CancellationIsNotAFailure(t *testing.T) {
	b := New("test", Config{MaxFailures: 1}, nil)
	err := b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Closed, b.State())
}
