// Package interval implements half-open [start, end) time interval checks.
// All instants are absolute UTC times; the package never consults the wall
// clock itself.
package interval

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when an interval's start is not strictly
// before its end. Equal instants form an empty interval and are invalid.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// Validate checks that start < end.
func Validate(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	return nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints (aEnd == bStart) do not overlap; identical intervals,
// containment and partial overlaps do. Either interval being invalid is an
// error, never a silent false.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) (bool, error) {
	if err := Validate(aStart, aEnd); err != nil {
		return false, err
	}
	if err := Validate(bStart, bEnd); err != nil {
		return false, err
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd), nil
}

// IsPast reports whether instant is strictly before now.
func IsPast(instant, now time.Time) bool {
	return instant.Before(now)
}
