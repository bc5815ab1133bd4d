package daylight

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"lumengrid/internal/observability/metrics"
)

const (
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = time.Minute
)

// ResilientProvider wraps a primary provider with a failure-counting circuit
// breaker and guarantees a complete result: any day the primary cannot cover
// is filled from the deterministic seasonal model. It therefore never fails
// for a valid query, which keeps the calculation path free of hard
// data-source errors.
type ResilientProvider struct {
	primary  Provider
	seasonal SeasonalModel
	logger   *log.Logger

	source    string
	threshold int
	cooldown  time.Duration

	mu        sync.Mutex
	failures  int
	openUntil time.Time
}

// ResilientOption customizes a ResilientProvider.
type ResilientOption func(*ResilientProvider)

// WithBreakerThreshold sets consecutive failures before the breaker opens.
func WithBreakerThreshold(threshold int) ResilientOption {
	return func(p *ResilientProvider) {
		if threshold > 0 {
			p.threshold = threshold
		}
	}
}

// WithBreakerCooldown sets how long an open breaker bypasses the primary.
func WithBreakerCooldown(cooldown time.Duration) ResilientOption {
	return func(p *ResilientProvider) {
		if cooldown > 0 {
			p.cooldown = cooldown
		}
	}
}

// WithSourceLabel names the primary source in fetch metrics.
func WithSourceLabel(source string) ResilientOption {
	return func(p *ResilientProvider) {
		if source != "" {
			p.source = source
		}
	}
}

// NewResilientProvider constructs a ResilientProvider.
func NewResilientProvider(primary Provider, logger *log.Logger, opts ...ResilientOption) (*ResilientProvider, error) {
	if primary == nil {
		return nil, errors.New("daylight: nil primary provider")
	}
	p := &ResilientProvider{
		primary:   primary,
		logger:    logger,
		source:    "primary",
		threshold: defaultBreakerThreshold,
		cooldown:  defaultBreakerCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Fetch implements Provider.
func (p *ResilientProvider) Fetch(ctx context.Context, latitude, longitude float64, start, end time.Time) (map[time.Time]Info, error) {
	if err := validateQuery(latitude, longitude, start, end); err != nil {
		return nil, err
	}

	var infos map[time.Time]Info
	if p.allow() {
		began := time.Now()
		fetched, err := p.primary.Fetch(ctx, latitude, longitude, start, end)
		if err != nil {
			metrics.ObserveDaylightFetch(p.source, metrics.ResultError, time.Since(began))
			p.recordFailure()
			p.logf("daylight fetch degraded, using seasonal model: %v", err)
		} else {
			metrics.ObserveDaylightFetch(p.source, metrics.ResultSuccess, time.Since(began))
			p.recordSuccess()
			infos = fetched
		}
	}

	if infos == nil {
		infos = make(map[time.Time]Info)
	}
	filled := 0
	for day := DayKey(start); !day.After(DayKey(end)); day = day.AddDate(0, 0, 1) {
		if _, ok := infos[day]; ok {
			continue
		}
		infos[day] = Info{Date: day, DaylightHours: p.seasonal.DaylightHours(latitude, day.Month())}
		filled++
	}
	if filled > 0 {
		metrics.AddFallbackDays(filled)
		p.logf("daylight fallback filled %d day(s) in [%s, %s]", filled, DayKey(start).Format(dateLayout), DayKey(end).Format(dateLayout))
	}
	return infos, nil
}

// Open reports whether the breaker is currently open.
func (p *ResilientProvider) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Now().Before(p.openUntil)
}

func (p *ResilientProvider) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !time.Now().Before(p.openUntil)
}

func (p *ResilientProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
	if p.failures >= p.threshold {
		p.openUntil = time.Now().Add(p.cooldown)
		p.failures = 0
	}
}

func (p *ResilientProvider) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = 0
	p.openUntil = time.Time{}
}

func (p *ResilientProvider) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
