package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"sunday", time.Sunday, true},
		{"Mon", time.Monday, true},
		{" SATURDAY ", time.Saturday, true},
		{"1", time.Monday, true},
		{"7", 0, false},
		{"someday", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSyncConfig_Defaults(t *testing.T) {
	t.Setenv("SHEET_READ_URL", "https://example.test/read")
	t.Setenv("SHEET_WRITE_URL", "")
	t.Setenv("HOUR_POLICY", "")
	t.Setenv("WEEK_START", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("COLLATION_LANG", "")

	sc, err := LoadSyncConfig()
	require.NoError(t, err)
	assert.Equal(t, sc.ReadURL, sc.WriteURL)
	assert.Equal(t, model.PolicyFirstLast, sc.Policy)
	assert.Equal(t, time.Sunday, sc.WeekStart)
	assert.Equal(t, time.Minute, sc.Interval)
	assert.Equal(t, "UTC", sc.Location.String())
	assert.True(t, sc.RefreshAfterWrite)
}

func TestLoadSyncConfig_Invalid(t *testing.T) {
	t.Setenv("HOUR_POLICY", "hourly")
	_, err := LoadSyncConfig()
	assert.Error(t, err)

	t.Setenv("HOUR_POLICY", "pairs")
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err = LoadSyncConfig()
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "ON")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "90s")
	assert.True(t, envBool("X_BOOL", false))
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, 90*time.Second, envDur("X_DUR", time.Second))
	assert.Equal(t, "d", envStr("X_MISSING", "d"))
}
