package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

const sessionPrefix = "session:"

// SessionRepo stores login sessions.  A token is only honoured while its
// session record exists, so logout is a delete.
type SessionRepo struct {
	KV  KV
	TTL time.Duration
}

func NewSessionRepo(kv KV, ttl time.Duration) *SessionRepo { return &SessionRepo{KV: kv, TTL: ttl} }

// Create persists s under its ID.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.KV.Set(ctx, sessionPrefix+s.ID, b, r.TTL)
}

// Get loads a session.  A record that does not decode is removed and
// reported as ErrNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	var s model.Session
	b, err := r.KV.Get(ctx, sessionPrefix+id)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil || s.ID != id {
		_ = r.KV.Delete(ctx, sessionPrefix+id)
		return model.Session{}, ErrNotFound
	}
	return s, nil
}

// Delete removes a session; deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	err := r.KV.Delete(ctx, sessionPrefix+id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
