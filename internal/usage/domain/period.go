package usage

import "time"

// MonthBucket groups the calendar days of one month that fall inside the
// requested range. Buckets partition the range exactly: no gaps, no overlaps.
type MonthBucket struct {
	MonthStart time.Time
	Days       []time.Time
}

// FirstDay returns the first in-range day of the bucket.
func (b MonthBucket) FirstDay() time.Time {
	if len(b.Days) == 0 {
		return time.Time{}
	}
	return b.Days[0]
}

// LastDay returns the last in-range day of the bucket.
func (b MonthBucket) LastDay() time.Time {
	if len(b.Days) == 0 {
		return time.Time{}
	}
	return b.Days[len(b.Days)-1]
}

// PartitionMonths walks month by month from the start date's month and
// returns chronological buckets. The first bucket starts at the start date,
// the last ends at the end date, interior buckets cover full months.
func PartitionMonths(start, end time.Time) ([]MonthBucket, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrMissingDate
	}
	start = dayStart(start)
	end = dayStart(end)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	var buckets []MonthBucket
	for monthStart := monthOf(start); !monthStart.After(end); monthStart = monthStart.AddDate(0, 1, 0) {
		from := monthStart
		if from.Before(start) {
			from = start
		}
		to := monthStart.AddDate(0, 1, -1)
		if to.After(end) {
			to = end
		}

		days := make([]time.Time, 0, 31)
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			days = append(days, day)
		}
		buckets = append(buckets, MonthBucket{MonthStart: monthStart, Days: days})
	}
	return buckets, nil
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
