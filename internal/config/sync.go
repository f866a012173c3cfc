package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

// SyncConfig tunes the coordinator, the remote store client and report
// calendars.
type SyncConfig struct {
	ReadURL           string
	WriteURL          string
	Interval          time.Duration
	WriteTimeout      time.Duration
	RefreshAfterWrite bool
	Policy            model.Policy
	WeekStart         time.Weekday
	Location          *time.Location
	Language          language.Tag
	DefaultPassphrase string

	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
}

// LoadSyncConfig reads the sync settings.  Unlike must(), invalid values are
// returned as errors so the CLI can report them.
func LoadSyncConfig() (SyncConfig, error) {
	sc := SyncConfig{
		ReadURL:             envStr("SHEET_READ_URL", ""),
		WriteURL:            envStr("SHEET_WRITE_URL", ""),
		Interval:            envDur("SYNC_INTERVAL", time.Minute),
		WriteTimeout:        envDur("WRITE_TIMEOUT", 15*time.Second),
		RefreshAfterWrite:   envBool("REFRESH_AFTER_WRITE", true),
		DefaultPassphrase:   envStr("ADMIN_DEFAULT_PASSPHRASE", model.DefaultAdminPassphrase),
		BreakerMaxFailures:  envInt("BREAKER_MAX_FAILURES", 5),
		BreakerResetTimeout: envDur("BREAKER_RESET_TIMEOUT", 30*time.Second),
	}
	if sc.WriteURL == "" {
		sc.WriteURL = sc.ReadURL
	}

	var err error
	if sc.Policy, err = model.ParsePolicy(envStr("HOUR_POLICY", string(model.PolicyFirstLast))); err != nil {
		return sc, err
	}
	if sc.WeekStart, err = ParseWeekday(envStr("WEEK_START", "sunday")); err != nil {
		return sc, err
	}
	if sc.Location, err = time.LoadLocation(envStr("TIMEZONE", "Local")); err != nil {
		return sc, fmt.Errorf("TIMEZONE: %w", err)
	}
	if sc.Language, err = language.Parse(envStr("COLLATION_LANG", "und")); err != nil {
		return sc, fmt.Errorf("COLLATION_LANG: %w", err)
	}
	return sc, nil
}

// ParseWeekday accepts English day names, three-letter abbreviations or
// 0 (Sunday) to 6.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid week start %q", s)
}
