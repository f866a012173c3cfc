package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

func row(actor, action, ts, date string) []string {
	return []string{actor, action, ts, date, "", "web"}
}

func TestNormalize_GroupsAndSortsLogs(t *testing.T) {
	rows := [][]string{
		row("alice", "checkout", "2024-03-04T17:00:00Z", "2024-03-04"),
		row("alice", "checkin", "2024-03-04T09:00:00Z", "2024-03-04"),
		row("bob", "checkin", "2024-03-05T08:30:00Z", "20240305"),
	}
	p := Normalize(rows, Options{})

	logs := p.EmployeeLogs("alice")["2024-03-04"]
	require.Len(t, logs, 2)
	assert.Equal(t, model.ActionCheckIn, logs[0].Action)
	assert.Equal(t, model.ActionCheckOut, logs[1].Action)

	require.Contains(t, p.EmployeeLogs("bob"), "2024-03-05")
	assert.Equal(t, []string{"alice", "bob"}, p.Roster)
	assert.Equal(t, model.DefaultAdminPassphrase, p.AdminPassphrase)
	assert.Equal(t, 0, p.Dropped)
}

func TestNormalize_IdempotentReplay(t *testing.T) {
	rows := [][]string{
		row("carol", "add_employee", "", ""),
		row("carol", "checkin", "2024-03-04T09:00:00Z", "2024-03-04"),
		row("dave", "checkin", "2024-03-04T10:00:00Z", "2024-03-04"),
		row("hunter2", "change_admin_password", "", ""),
		row("dave", "remove_employee", "", ""),
		{"broken"},
	}
	first := Normalize(rows, Options{})
	second := Normalize(rows, Options{})
	assert.Equal(t, first, second)
}

func TestNormalize_RosterReAdd(t *testing.T) {
	rows := [][]string{
		row("A", "add_employee", "", ""),
		row("A", "remove_employee", "", ""),
		row("A", "add_employee", "", ""),
	}
	p := Normalize(rows, Options{})
	assert.Equal(t, []string{"A"}, p.Roster)
}

func TestNormalize_RemoveWins_WhenLastRosterEvent(t *testing.T) {
	rows := [][]string{
		row("A", "add_employee", "", ""),
		row("A", "remove_employee", "", ""),
		// attendance after removal does not re-activate the name
		row("A", "checkin", "2024-03-04T09:00:00Z", "2024-03-04"),
	}
	p := Normalize(rows, Options{})
	assert.Empty(t, p.Roster)
	assert.Len(t, p.EmployeeLogs("A")["2024-03-04"], 1)
}

func TestNormalize_PassphraseLastWriterWins(t *testing.T) {
	rows := [][]string{
		row("first", "change_admin_password", "", ""),
		row("second", "CHANGE_ADMIN_PASSWORD", "", ""),
	}
	p := Normalize(rows, Options{DefaultPassphrase: "boot"})
	assert.Equal(t, "second", p.AdminPassphrase)
	assert.True(t, p.VerifyPassphrase("second"))
	assert.False(t, p.VerifyPassphrase("first"))
	assert.False(t, p.VerifyPassphrase(""))

	assert.Equal(t, "boot", Normalize(nil, Options{DefaultPassphrase: "boot"}).AdminPassphrase)
}

func TestNormalize_TolerantOfBadRows(t *testing.T) {
	rows := [][]string{
		nil,
		{},
		row("", "", "", ""),
		row("eve", "checkin", "not-a-time", "2024-03-04"),
		row("eve", "checkin", "2024-03-04T09:00:00Z", ""),
		row("", "checkout", "2024-03-04T09:00:00Z", "2024-03-04"),
		row("eve", "checkin", "2024-03-04T09:00:00Z", "04/03/2024"),
		row("frank", "checkin", "2024-03-04T09:00:00Z", "2024-03-04"),
	}
	p := Normalize(rows, Options{})

	assert.Equal(t, []string{"frank"}, p.Roster)
	assert.Equal(t, len(rows), p.Rows)
	// nil row + 4 attendance rows with bad fields; the two rows without an
	// action are skipped silently.
	assert.Equal(t, 5, p.Dropped)
}

func TestNormalize_UnknownActionRegistersActor(t *testing.T) {
	rows := [][]string{
		row("gina", "break_start", "2024-03-04T12:00:00Z", "2024-03-04"),
		row(model.ReservedActor, "checkin", "2024-03-04T09:00:00Z", "2024-03-04"),
	}
	p := Normalize(rows, Options{})
	assert.Equal(t, []string{"gina"}, p.Roster)
	assert.Nil(t, p.EmployeeLogs("gina"))
}

func TestNormalize_LocalTimestampsUseLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	rows := [][]string{row("hana", "checkin", "2024-03-04 09:00:00", "2024-03-04")}
	p := Normalize(rows, Options{Location: loc})
	logs := p.EmployeeLogs("hana")["2024-03-04"]
	require.Len(t, logs, 1)
	assert.Equal(t, time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC), logs[0].Timestamp.UTC())
}

func TestProjection_WithRosterDoesNotAlias(t *testing.T) {
	p := Normalize([][]string{row("ivy", "add_employee", "", "")}, Options{})
	roster := []string{"ivy", "jack"}
	next := p.WithRoster(roster)
	roster[0] = "mutated"

	assert.Equal(t, []string{"ivy", "jack"}, next.Roster)
	assert.Equal(t, []string{"ivy"}, p.Roster)
	assert.True(t, next.HasEmployee("jack"))
	assert.False(t, p.HasEmployee("jack"))
}
