package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/attendance-ledger/internal/model"
	"github.com/iliyamo/attendance-ledger/internal/report"
)

func at(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, time.UTC) }

func window(policy model.Policy) report.Window {
	in1, out1, in2, out2 := at(9, 0), at(12, 0), at(13, 0), at(17, 30)
	return report.Window{
		Employee:    "alice",
		Granularity: model.GranularityDay,
		Policy:      policy,
		Start:       "2024-03-04",
		End:         "2024-03-04",
		Summaries: []model.DailySummary{{
			Date:       "2024-03-04",
			FirstIn:    &in1,
			LastOut:    &out2,
			TotalHours: 7.5,
			ShiftPairs: []model.ShiftPair{
				{CheckIn: in1, CheckOut: out1, DurationHours: 3},
				{CheckIn: in2, CheckOut: out2, DurationHours: 4.5},
			},
		}},
		TotalHours:   7.5,
		Days:         1,
		HourlyWage:   20,
		EstimatedPay: 150,
	}
}

func TestWriteCSV_FirstLast(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, window(model.PolicyFirstLast), time.UTC))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))
	lines := strings.Split(strings.TrimPrefix(out, "\ufeff"), "\n")
	assert.Equal(t, "Employee,alice", lines[0])
	assert.Equal(t, "Period,2024-03-04", lines[1])
	assert.Equal(t, "Estimated pay,150.00", lines[7])
	assert.Equal(t, "", lines[8])
	assert.Equal(t, "Date,First check-in,Last check-out,Hours", lines[9])
	assert.Equal(t, "2024-03-04,09:00:00,17:30:00,7.50", lines[10])
}

func TestWriteCSV_PairsListsShifts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, window(model.PolicyPairs), time.UTC))
	out := buf.String()
	assert.Contains(t, out, "2024-03-04,day,09:00:00,17:30:00,7.50\n")
	assert.Contains(t, out, "2024-03-04,shift,09:00:00,12:00:00,3.00\n")
	assert.Contains(t, out, "2024-03-04,shift,13:00:00,17:30:00,4.50\n")
}

func TestWriteCSV_MixedRowWidths(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, window(model.PolicyPairs), time.UTC))

	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff")))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 12) // 8 header rows, table header, day, two shifts
	assert.Len(t, records[0], 2)
	assert.Len(t, records[8], 5)
	assert.Equal(t, []string{"2024-03-04", "shift", "13:00:00", "17:30:00", "4.50"}, records[11])
}

func TestWriteCSV_LocalTimes(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("UTC+2", 2*3600)
	require.NoError(t, WriteCSV(&buf, window(model.PolicyFirstLast), loc))
	assert.Contains(t, buf.String(), "2024-03-04,11:00:00,19:30:00,7.50")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, window(model.PolicyPairs), time.UTC))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 12)
	assert.Equal(t, []string{"Employee", "alice"}, rows[0])
	assert.Equal(t, "Date", rows[9][0])
	assert.Equal(t, "shift", rows[11][1])

	v, err := f.GetCellValue(sheetName, "B8")
	require.NoError(t, err)
	assert.Equal(t, "150", v)
}
