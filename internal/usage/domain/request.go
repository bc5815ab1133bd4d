package usage

import "time"

// IntelligentSettings describes the dimming policy for the portion of the
// installation under intelligent control. All fractions live in [0, 1] and a
// zero value means no intelligent behavior at all.
type IntelligentSettings struct {
	PercentageOfTotal                float64
	DimmingPowerPercentage           float64
	DimmingTimePercentage            float64
	CriticalInfrastructurePercentage float64
}

// Validate checks every fraction is within [0, 1].
func (s IntelligentSettings) Validate() error {
	for _, fraction := range []float64{
		s.PercentageOfTotal,
		s.DimmingPowerPercentage,
		s.DimmingTimePercentage,
		s.CriticalInfrastructurePercentage,
	} {
		if fraction < 0 || fraction > 1 {
			return ErrInvalidFraction
		}
	}
	return nil
}

// Request is a validated, immutable calculation input.
type Request struct {
	RealPowerKw float64
	StartDate   time.Time
	EndDate     time.Time
	Latitude    float64
	Longitude   float64
	Intelligent IntelligentSettings
}

// Validate checks the request once at entry; the calculation never revisits
// these constraints.
func (r Request) Validate() error {
	if r.RealPowerKw <= 0 {
		return ErrInvalidPower
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrMissingDate
	}
	if dayStart(r.EndDate).Before(dayStart(r.StartDate)) {
		return ErrInvalidDateRange
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return ErrInvalidLatitude
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return ErrInvalidLongitude
	}
	return r.Intelligent.Validate()
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
