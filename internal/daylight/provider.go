package daylight

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidLatitude is returned when a latitude is outside [-90, 90].
	ErrInvalidLatitude = errors.New("daylight: invalid latitude")
	// ErrInvalidLongitude is returned when a longitude is outside [-180, 180].
	ErrInvalidLongitude = errors.New("daylight: invalid longitude")
	// ErrInvalidRange is returned when the end date precedes the start date.
	ErrInvalidRange = errors.New("daylight: end before start")
	// ErrDataUnavailable is returned when a provider cannot produce data.
	ErrDataUnavailable = errors.New("daylight: data unavailable")
)

// Info describes day length for a single calendar day.
type Info struct {
	Date          time.Time
	DaylightHours float64
}

// NightHours returns the dark portion of the day.
func (i Info) NightHours() float64 {
	return 24 - i.DaylightHours
}

// Provider resolves day-length data for a coordinate and date range.
// Results are keyed by UTC midnight of each calendar day in [start, end].
type Provider interface {
	Fetch(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[time.Time]Info, error)
}

// DayKey normalizes a time to the UTC midnight used as map key.
func DayKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateQuery(latitude, longitude float64, start, end time.Time) error {
	if latitude < -90 || latitude > 90 {
		return ErrInvalidLatitude
	}
	if longitude < -180 || longitude > 180 {
		return ErrInvalidLongitude
	}
	if end.Before(start) {
		return ErrInvalidRange
	}
	return nil
}
