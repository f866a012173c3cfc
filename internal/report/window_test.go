package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/attendance-ledger/internal/model"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func summaries(dates ...string) map[string]model.DailySummary {
	m := map[string]model.DailySummary{}
	for _, d := range dates {
		m[d] = model.DailySummary{Date: d, TotalHours: 1}
	}
	return m
}

func dates(rows []model.DailySummary) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Date
	}
	return out
}

func TestBounds(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	ref := time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC)

	s, e := Bounds(ref, model.GranularityDay, time.Sunday)
	assert.Equal(t, date(2024, 3, 6), s)
	assert.Equal(t, date(2024, 3, 6), e)

	s, e = Bounds(ref, model.GranularityWeek, time.Sunday)
	assert.Equal(t, date(2024, 3, 3), s)
	assert.Equal(t, date(2024, 3, 9), e)

	s, e = Bounds(ref, model.GranularityWeek, time.Monday)
	assert.Equal(t, date(2024, 3, 4), s)
	assert.Equal(t, date(2024, 3, 10), e)

	s, e = Bounds(ref, model.GranularityMonth, time.Sunday)
	assert.Equal(t, date(2024, 3, 1), s)
	assert.Equal(t, date(2024, 3, 31), e)

	_, e = Bounds(date(2024, 2, 10), model.GranularityMonth, time.Sunday)
	assert.Equal(t, date(2024, 2, 29), e)
}

func TestSelect_WeekBoundaries(t *testing.T) {
	// Week starting Sunday 2024-03-03: the 7th day (03-09) is inside, 03-10 is not.
	byDate := summaries("2024-03-02", "2024-03-09", "2024-03-03", "2024-03-10", "2024-03-05")
	got := Select(byDate, date(2024, 3, 3), model.GranularityWeek, time.Sunday)
	assert.Equal(t, []string{"2024-03-03", "2024-03-05", "2024-03-09"}, dates(got))
}

func TestSelect_DayAndMonth(t *testing.T) {
	byDate := summaries("2024-02-29", "2024-03-01", "2024-03-15", "2024-03-31", "2024-04-01")

	day := Select(byDate, time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC), model.GranularityDay, time.Sunday)
	assert.Equal(t, []string{"2024-03-15"}, dates(day))

	month := Select(byDate, date(2024, 3, 20), model.GranularityMonth, time.Sunday)
	assert.Equal(t, []string{"2024-03-01", "2024-03-15", "2024-03-31"}, dates(month))

	assert.Empty(t, Select(byDate, date(2024, 3, 16), model.GranularityDay, time.Sunday))
}

func TestShift(t *testing.T) {
	assert.Equal(t, date(2024, 2, 1), Shift(date(2024, 1, 31), model.GranularityMonth, 1))
	assert.Equal(t, date(2023, 12, 1), Shift(date(2024, 1, 31), model.GranularityMonth, -1))
	assert.Equal(t, date(2024, 3, 13), Shift(date(2024, 3, 6), model.GranularityWeek, 1))
	assert.Equal(t, date(2024, 3, 5), Shift(date(2024, 3, 6), model.GranularityDay, -1))
}

func TestCanAdvance(t *testing.T) {
	now := time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

	assert.False(t, CanAdvance(now, model.GranularityDay, time.Sunday, now))
	assert.True(t, CanAdvance(date(2024, 3, 5), model.GranularityDay, time.Sunday, now))
	assert.False(t, CanAdvance(now, model.GranularityWeek, time.Sunday, now))
	assert.True(t, CanAdvance(date(2024, 2, 28), model.GranularityWeek, time.Sunday, now))
	assert.False(t, CanAdvance(now, model.GranularityMonth, time.Sunday, now))
	assert.True(t, CanAdvance(date(2024, 2, 10), model.GranularityMonth, time.Sunday, now))
}

func TestAssemble(t *testing.T) {
	in := func(h int) model.DailyLog {
		return model.DailyLog{Action: model.ActionCheckIn, Timestamp: time.Date(2024, 3, 4, h, 0, 0, 0, time.UTC)}
	}
	out := func(h int) model.DailyLog {
		return model.DailyLog{Action: model.ActionCheckOut, Timestamp: time.Date(2024, 3, 4, h, 0, 0, 0, time.UTC)}
	}
	logs := map[string][]model.DailyLog{
		"2024-03-04": {in(8), out(12), in(13), out(17)},
	}
	q := Query{
		Employee:    "alice",
		Ref:         date(2024, 3, 4),
		Granularity: model.GranularityWeek,
		Policy:      model.PolicyPairs,
		WeekStart:   time.Sunday,
		HourlyWage:  20,
		Now:         time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC),
	}
	w := Assemble(logs, q)
	require.Len(t, w.Summaries, 1)
	assert.Equal(t, 8.0, w.TotalHours)
	assert.Equal(t, 160.0, w.EstimatedPay)
	assert.Equal(t, "2024-03-03", w.Start)
	assert.Equal(t, "2024-03-09", w.End)
	assert.Equal(t, "2024-02-26", w.Prev)
	assert.False(t, w.CanAdvance)
	assert.Empty(t, w.Next)

	q.Policy = model.PolicyFirstLast
	assert.Equal(t, 9.0, Assemble(logs, q).TotalHours)
}
