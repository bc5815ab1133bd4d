package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lumengrid/internal/daylight"
	"lumengrid/internal/observability/metrics"
	usage "lumengrid/internal/usage/domain"
)

// fetchConcurrency bounds parallel month-batch queries against the provider.
const fetchConcurrency = 4

// Report is the outcome of one calculation: one entry per month bucket in
// chronological order, plus the total over the rounded monthly figures.
type Report struct {
	Months   []usage.MonthUsage
	TotalKwh float64
}

// Service runs usage calculations against a day-length provider.
type Service struct {
	provider daylight.Provider
	logger   *log.Logger
}

// NewService constructs a Service.
func NewService(provider daylight.Provider, logger *log.Logger) (*Service, error) {
	if provider == nil {
		return nil, errors.New("usage service: nil provider")
	}
	return &Service{provider: provider, logger: logger}, nil
}

// Calculate partitions the request range into month buckets, resolves
// day-length data per bucket (buckets fetch concurrently, merged by date
// key), and applies the tier allocation across each day.
func (s *Service) Calculate(ctx context.Context, req usage.Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	buckets, err := usage.PartitionMonths(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	infos := make(map[time.Time]daylight.Info)
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchConcurrency)
	for _, bucket := range buckets {
		bucket := bucket
		group.Go(func() error {
			fetched, err := s.provider.Fetch(groupCtx, req.Latitude, req.Longitude, bucket.FirstDay(), bucket.LastDay())
			if err != nil {
				return err
			}
			mu.Lock()
			for day, info := range fetched {
				infos[day] = info
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Tiers do not vary by day; allocate once per request.
	alloc := usage.Allocate(req.RealPowerKw, req.Intelligent)

	report := &Report{Months: make([]usage.MonthUsage, 0, len(buckets))}
	for _, bucket := range buckets {
		month := usage.ComputeMonthUsage(bucket, alloc, req.Intelligent, infos)
		for _, day := range month.SkippedDays {
			s.logf("no day-length data for %s, excluded from %s", day.Format("2006-01-02"), month.MonthStart.Format("2006-01"))
		}
		metrics.AddSkippedDays(len(month.SkippedDays))
		report.Months = append(report.Months, month)
		report.TotalKwh += month.UsageKwh
	}
	return report, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
