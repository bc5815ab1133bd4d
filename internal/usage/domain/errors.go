package usage

import "errors"

var (
	// ErrInvalidPower is returned when real power is zero or negative.
	ErrInvalidPower = errors.New("usage: real power must be positive")
	// ErrInvalidLatitude is returned when a latitude is outside [-90, 90].
	ErrInvalidLatitude = errors.New("usage: latitude out of range")
	// ErrInvalidLongitude is returned when a longitude is outside [-180, 180].
	ErrInvalidLongitude = errors.New("usage: longitude out of range")
	// ErrInvalidDateRange is returned when the end date precedes the start date.
	ErrInvalidDateRange = errors.New("usage: end date before start date")
	// ErrInvalidFraction is returned when an intelligent setting is outside [0, 1].
	ErrInvalidFraction = errors.New("usage: intelligent setting out of [0, 1]")
	// ErrMissingDate is returned when a required date is zero.
	ErrMissingDate = errors.New("usage: missing date")
)
