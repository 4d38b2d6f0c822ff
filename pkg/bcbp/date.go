package bcbp

import (
	"fmt"
	"time"
)

// ResolveFlightDate converts a Julian day-of-year to a calendar date in the
// given location. The reference year is an explicit input: the decoder never
// reads the wall clock, so callers decide which airline reference year a
// scan belongs to.
func ResolveFlightDate(julianDay int, referenceYear int, loc *time.Location) (time.Time, error) {
	if julianDay < 1 || julianDay > 366 {
		return time.Time{}, fmt.Errorf("julian day out of range: %d", julianDay)
	}
	if loc == nil {
		loc = time.UTC
	}
	date := time.Date(referenceYear, time.January, 1, 0, 0, 0, 0, loc).AddDate(0, 0, julianDay-1)
	if date.Year() != referenceYear {
		return time.Time{}, fmt.Errorf("julian day %d does not exist in year %d", julianDay, referenceYear)
	}
	return date, nil
}
