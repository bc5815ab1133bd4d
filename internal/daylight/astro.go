package daylight

import (
	"context"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// AstronomicalProvider computes sunrise and sunset locally instead of calling
// the network service. Polar days and nights, where the library reports no
// sunrise or sunset, degrade to the seasonal model for that day.
type AstronomicalProvider struct {
	seasonal SeasonalModel
}

// NewAstronomicalProvider constructs the provider.
func NewAstronomicalProvider() *AstronomicalProvider {
	return &AstronomicalProvider{}
}

// Fetch implements Provider.
func (p *AstronomicalProvider) Fetch(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[time.Time]Info, error) {
	if err := validateQuery(latitude, longitude, start, end); err != nil {
		return nil, err
	}

	infos := make(map[time.Time]Info)
	for day := DayKey(start); !day.After(DayKey(end)); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rise, set := sunrise.SunriseSunset(latitude, longitude, day.Year(), day.Month(), day.Day())
		var hours float64
		if rise.IsZero() || set.IsZero() || !set.After(rise) {
			hours = p.seasonal.DaylightHours(latitude, day.Month())
		} else {
			hours = set.Sub(rise).Hours()
		}
		infos[day] = Info{Date: day, DaylightHours: hours}
	}
	return infos, nil
}
