// Package clock holds the wall-clock arithmetic for alarm scheduling.
// Clients send a bare "HH:mm"; every conversion to a concrete fire time or
// a scheduler trigger happens here, always through the deployment's home
// time zone, so the rest of the code never touches zone offsets.
package clock

import (
	"fmt"
	"time"

	pkgerrors "pillbox-backend/pkg/errors"
)

// ParseWallClock splits an "HH:mm" string into hour and minute
func ParseWallClock(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, 0, pkgerrors.NewValidationError("time must be HH:mm").WithCause(err)
	}
	return t.Hour(), t.Minute(), nil
}

// NextOccurrence returns the next moment the given wall-clock time comes
// around in loc: today if it is still ahead of now, otherwise tomorrow.
func NextOccurrence(now time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseWallClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

// DelayUntil returns how long from now until the next occurrence of hhmm
func DelayUntil(now time.Time, hhmm string, loc *time.Location) (time.Duration, error) {
	fireAt, err := NextOccurrence(now, hhmm, loc)
	if err != nil {
		return 0, err
	}
	return fireAt.Sub(now), nil
}

// DailyCronUTC converts a home-zone wall-clock time into the scheduler's
// UTC-based daily cron expression, wrapping at the day boundary when the
// offset subtraction crosses midnight. The minute-level zone offsets of
// e.g. Asia/Kathmandu are carried into the minute field.
func DailyCronUTC(hhmm string, loc *time.Location) (string, error) {
	hour, minute, err := ParseWallClock(hhmm)
	if err != nil {
		return "", err
	}

	// Use a fixed reference date purely to read the zone offset.
	ref := time.Date(2000, time.January, 1, hour, minute, 0, 0, loc)
	_, offsetSeconds := ref.Zone()

	total := hour*60 + minute - offsetSeconds/60
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}

	return fmt.Sprintf("cron(%d %d * * ? *)", total%60, total/60), nil
}

// DateString formats the calendar date of t in loc as YYYY-MM-DD, the key
// component used by taken-records.
func DateString(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
