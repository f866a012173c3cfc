package repository

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/database"
	"github.com/iliyamo/attendance-ledger/internal/model"
)

func newBadgerKV(t *testing.T) *BadgerKV {
	t.Helper()
	db, err := database.OpenBadger(database.InMemoryBadger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewBadgerKV(db)
}

func exerciseKV(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "a:1", []byte("one"), 0))
	require.NoError(t, kv.Set(ctx, "a:2", []byte("two"), time.Hour))
	require.NoError(t, kv.Set(ctx, "b:1", []byte("other"), 0))

	v, err := kv.Get(ctx, "a:1")
	require.NoError(t, err)
	assert.Equal(t, "one", string(v))

	keys, err := kv.Keys(ctx, "a:")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"a:1", "a:2"}, keys)

	require.NoError(t, kv.Delete(ctx, "a:1"))
	_, err = kv.Get(ctx, "a:1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerKV(t *testing.T) {
	exerciseKV(t, newBadgerKV(t))
}

// Uses REDIS_ADDR when it points at a disposable server, miniredis otherwise.
func TestRedisKV(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ns := "test-" + time.Now().Format("150405.000000")
	exerciseKV(t, NewRedisKV(client, ns))
}

func TestSessionRepo(t *testing.T) {
	ctx := context.Background()
	kv := newBadgerKV(t)
	repo := NewSessionRepo(kv, time.Hour)

	s := model.Session{ID: "sid-1", Name: "alice", IsAdmin: true, IssuedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, model.RoleAdmin, got.Role())

	require.NoError(t, repo.Delete(ctx, "sid-1"))
	_, err = repo.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, repo.Delete(ctx, "sid-1"))
}

func TestSessionRepo_CorruptRecordIsDiscarded(t *testing.T) {
	ctx := context.Background()
	kv := newBadgerKV(t)
	require.NoError(t, kv.Set(ctx, sessionPrefix+"bad", []byte("{not json"), 0))

	_, err := NewSessionRepo(kv, 0).Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = kv.Get(ctx, sessionPrefix+"bad")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWageRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewWageRepo(newBadgerKV(t), nil)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, repo.Set(ctx, "alice", 12.5))
	require.NoError(t, repo.Set(ctx, "bob", 0))
	assert.ErrorIs(t, repo.Set(ctx, "carol", -1), ErrInvalidWage)

	w, ok, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12.5, w)

	require.NoError(t, repo.Delete(ctx, "alice"))
	assert.ErrorIs(t, repo.Delete(ctx, "alice"), ErrNotFound)

	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"bob": 0}, all)
}

func TestWageRepo_GenerationCountsWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewWageRepo(newBadgerKV(t), nil)
	assert.Zero(t, repo.Generation())

	require.NoError(t, repo.Set(ctx, "alice", 10))
	assert.Equal(t, uint64(1), repo.Generation())

	// rejected writes and reads leave it alone
	assert.ErrorIs(t, repo.Set(ctx, "alice", -1), ErrInvalidWage)
	assert.ErrorIs(t, repo.Delete(ctx, "bob"), ErrNotFound)
	_, _, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), repo.Generation())

	require.NoError(t, repo.Delete(ctx, "alice"))
	assert.Equal(t, uint64(2), repo.Generation())
}

func TestWageRepo_CorruptEntries(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want map[string]float64
	}{
		{"mixed", `{"alice":10,"bob":"ten","carol":-3,"dave":null,"erin":7.25}`, map[string]float64{"alice": 10, "erin": 7.25}},
		{"not an object", `[1,2,3]`, map[string]float64{}},
		{"garbage", `%%%`, map[string]float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := newBadgerKV(t)
			require.NoError(t, kv.Set(ctx, wagesKey, []byte(tt.doc), 0))
			got, err := NewWageRepo(kv, nil).All(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsRepo(t *testing.T) {
	ctx := context.Background()
	kv := newBadgerKV(t)
	repo := NewSettingsRepo(kv)

	_, err := repo.Policy(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetPolicy(ctx, model.PolicyPairs))
	p, err := repo.Policy(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PolicyPairs, p)

	require.NoError(t, kv.Set(ctx, policyKey, []byte("hourly"), 0))
	_, err = repo.Policy(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
