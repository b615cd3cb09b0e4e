package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestNextOccurrence_TimeAlreadyPassedToday(t *testing.T) {
	loc := seoul(t)
	// Reference scenario: 23:30 home time, asking for 07:00.
	now := time.Date(2026, time.January, 28, 23, 30, 0, 0, loc)

	fireAt, err := NextOccurrence(now, "07:00", loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 29, 7, 0, 0, 0, loc), fireAt)

	delay, err := DelayUntil(now, "07:00", loc)
	require.NoError(t, err)
	assert.Equal(t, 7*time.Hour+30*time.Minute, delay)
}

func TestNextOccurrence_TimeStillAheadToday(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, time.January, 28, 6, 0, 0, 0, loc)

	fireAt, err := NextOccurrence(now, "07:00", loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 28, 7, 0, 0, 0, loc), fireAt)
}

func TestNextOccurrence_ExactlyNowRollsToTomorrow(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, time.January, 28, 7, 0, 0, 0, loc)

	fireAt, err := NextOccurrence(now, "07:00", loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.January, 29, 7, 0, 0, 0, loc), fireAt)
}

func TestNextOccurrence_RejectsMalformedTime(t *testing.T) {
	loc := seoul(t)
	now := time.Date(2026, time.January, 28, 12, 0, 0, 0, loc)

	_, err := NextOccurrence(now, "7am", loc)
	assert.Error(t, err)

	_, err = NextOccurrence(now, "25:00", loc)
	assert.Error(t, err)
}

func TestDailyCronUTC_SubtractsHomeOffset(t *testing.T) {
	loc := seoul(t)

	// 07:00 KST is 22:00 UTC the previous day.
	cron, err := DailyCronUTC("07:00", loc)
	require.NoError(t, err)
	assert.Equal(t, "cron(0 22 * * ? *)", cron)

	// 18:00 KST is 09:00 UTC the same day.
	cron, err = DailyCronUTC("18:00", loc)
	require.NoError(t, err)
	assert.Equal(t, "cron(0 9 * * ? *)", cron)
}

func TestDailyCronUTC_WrapsAtDayBoundary(t *testing.T) {
	// UTC itself needs no conversion.
	cron, err := DailyCronUTC("23:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "cron(30 23 * * ? *)", cron)

	// A negative-offset zone pushes a late evening past midnight UTC.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	cron, err = DailyCronUTC("23:30", ny)
	require.NoError(t, err)
	assert.Equal(t, "cron(30 4 * * ? *)", cron)
}

func TestDateString(t *testing.T) {
	loc := seoul(t)
	// 20:00 UTC on the 28th is already the 29th in Seoul.
	instant := time.Date(2026, time.January, 28, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-01-29", DateString(instant, loc))
	assert.Equal(t, "2026-01-28", DateString(instant, time.UTC))
}
