package daylight

import (
	"context"
	"math"
	"time"
)

// SeasonalModel is the deterministic latitude/season day-length estimate used
// whenever live data is unavailable. The same (latitude, month) pair always
// produces the same value.
type SeasonalModel struct{}

// DaylightHours estimates daylight for a latitude and month. Winter months
// shorten toward 8h and summer months lengthen toward 16h proportionally to
// the absolute latitude; the remaining months sit at 12h.
func (SeasonalModel) DaylightHours(latitude float64, month time.Month) float64 {
	absLat := math.Abs(latitude)
	switch month {
	case time.December, time.January, time.February:
		return math.Max(8, 12-absLat/10)
	case time.June, time.July, time.August:
		return math.Min(16, 12+absLat/10)
	default:
		return 12
	}
}

// Fetch implements Provider. It never fails once the query is valid.
func (m SeasonalModel) Fetch(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[time.Time]Info, error) {
	if err := validateQuery(latitude, longitude, start, end); err != nil {
		return nil, err
	}
	_ = ctx

	infos := make(map[time.Time]Info)
	for day := DayKey(start); !day.After(DayKey(end)); day = day.AddDate(0, 0, 1) {
		infos[day] = Info{Date: day, DaylightHours: m.DaylightHours(latitude, day.Month())}
	}
	return infos, nil
}
