// Package market knows candle timing and the futures contracts traders log.
package market

import "time"

// StartOfDay returns local midnight of the day containing now, in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// NextAlignedTime returns the next candle close for a period of periodMinutes,
// measured in whole periods from local midnight. The result is always strictly
// after now: a call landing exactly on a boundary yields the following one.
//
// Nothing is cached; the value is re-derived from now on every call so that
// day rollover and DST shifts correct themselves.
func NextAlignedTime(periodMinutes int, now time.Time) time.Time {
	if periodMinutes <= 0 {
		periodMinutes = 1
	}
	period := time.Duration(periodMinutes) * time.Minute

	start := StartOfDay(now)
	elapsed := now.Sub(start)

	n := elapsed / period
	if elapsed%period != 0 {
		n++
	}
	slot := n * period
	if slot <= elapsed {
		slot += period
	}
	return start.Add(slot)
}
