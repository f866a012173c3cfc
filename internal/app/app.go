// Package app wires the event log store and the local preferences store from
// configuration.  It is shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/breaker"
	"github.com/iliyamo/attendance-ledger/internal/config"
	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/database"
	"github.com/iliyamo/attendance-ledger/internal/repository"
	"github.com/iliyamo/attendance-ledger/internal/sheet"
)

// OpenLogStore returns the configured event log and a function releasing it.
func OpenLogStore(ctx context.Context, st config.StoreConfig, sc config.SyncConfig, logger *zap.Logger) (coordinator.LogStore, func(), error) {
	switch st.Kind {
	case "mysql":
		db, err := database.Open(st.DBUser, st.DBPass, st.DBHost, st.DBPort, st.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repository.NewEventRepo(db), func() { _ = db.Close() }, nil
	default:
		if sc.ReadURL == "" {
			return nil, nil, fmt.Errorf("SHEET_READ_URL is required for the sheet store")
		}
		brk := breaker.New("sheet", breaker.Config{
			MaxFailures:  sc.BreakerMaxFailures,
			ResetTimeout: sc.BreakerResetTimeout,
		}, logger)
		client := sheet.New(sc.ReadURL, sc.WriteURL, &http.Client{Timeout: sc.WriteTimeout}, brk, logger)
		return client, func() {}, nil
	}
}

// Prefs bundles the repositories backed by the preferences store.
type Prefs struct {
	Sessions *repository.SessionRepo
	Wages    *repository.WageRepo
	Settings *repository.SettingsRepo
	close    func()
}

// Close releases the underlying store.
func (p *Prefs) Close() {
	if p.close != nil {
		p.close()
	}
}

// OpenPrefs opens Badger or, when configured and reachable, Redis.  A nil
// rdb with the redis backend falls back to Badger.
func OpenPrefs(pc config.PrefsConfig, rdb *redis.Client, sessionTTL time.Duration, logger *zap.Logger) (*Prefs, error) {
	var (
		kv      repository.KV
		release = func() {}
	)
	if pc.Backend == "redis" && rdb != nil {
		kv = repository.NewRedisKV(rdb, "attendance")
	} else {
		if pc.Backend == "redis" {
			logger.Warn("redis unavailable, keeping preferences in badger", zap.String("path", pc.BadgerPath))
		}
		db, err := database.OpenBadger(database.BadgerConfig{Path: pc.BadgerPath, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		kv = repository.NewBadgerKV(db)
		release = func() { _ = db.Close() }
	}
	return &Prefs{
		Sessions: repository.NewSessionRepo(kv, sessionTTL),
		Wages:    repository.NewWageRepo(kv, logger),
		Settings: repository.NewSettingsRepo(kv),
		close:    release,
	}, nil
}
