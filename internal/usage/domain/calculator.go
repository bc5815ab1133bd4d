package usage

import (
	"math"
	"time"

	"lumengrid/internal/daylight"
)

// MonthUsage is the computed energy figure for one month bucket. UsageKwh is
// rounded to two decimals, which is also the precision the caller sees.
type MonthUsage struct {
	MonthStart  time.Time
	UsageKwh    float64
	SkippedDays []time.Time
}

// DayEnergyKwh computes the energy one day consumes under the unified model:
// standard and critical infrastructure run at full power around the clock,
// dimmable infrastructure operates during night hours only, at full power for
// the non-dimmed fraction and at the dimming power fraction for the rest.
func DayEnergyKwh(alloc TierAllocation, settings IntelligentSettings, nightHours float64) float64 {
	dimmedHours := nightHours * settings.DimmingTimePercentage
	normalHours := nightHours - dimmedHours
	return alloc.StandardKw*24 +
		alloc.CriticalKw*24 +
		alloc.DimmableKw*normalHours +
		alloc.DimmableKw*settings.DimmingPowerPercentage*dimmedHours
}

// ComputeMonthUsage sums per-day energies across a bucket. Days absent from
// the day-length map are excluded from the sum and reported as skipped rather
// than failing the month.
func ComputeMonthUsage(bucket MonthBucket, alloc TierAllocation, settings IntelligentSettings, infos map[time.Time]daylight.Info) MonthUsage {
	result := MonthUsage{MonthStart: bucket.MonthStart}
	var sum float64
	for _, day := range bucket.Days {
		info, ok := infos[daylight.DayKey(day)]
		if !ok {
			result.SkippedDays = append(result.SkippedDays, day)
			continue
		}
		sum += DayEnergyKwh(alloc, settings, info.NightHours())
	}
	result.UsageKwh = round2(sum)
	return result
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
