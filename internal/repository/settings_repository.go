package repository

import (
	"context"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

const policyKey = "settings:policy"

// SettingsRepo persists global preferences.
type SettingsRepo struct{ KV KV }

func NewSettingsRepo(kv KV) *SettingsRepo { return &SettingsRepo{KV: kv} }

// Policy returns the stored hour policy, or ErrNotFound.  An unknown stored
// value is treated as missing.
func (r *SettingsRepo) Policy(ctx context.Context) (model.Policy, error) {
	b, err := r.KV.Get(ctx, policyKey)
	if err != nil {
		return "", err
	}
	p, err := model.ParsePolicy(string(b))
	if err != nil {
		return "", ErrNotFound
	}
	return p, nil
}

func (r *SettingsRepo) SetPolicy(ctx context.Context, p model.Policy) error {
	return r.KV.Set(ctx, policyKey, []byte(p), 0)
}
