package daylight

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubProvider struct {
	infos map[time.Time]Info
	err   error
	calls int
}

func (s *stubProvider) Fetch(_ context.Context, _, _ float64, _, _ time.Time) (map[time.Time]Info, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.infos, nil
}

func TestResilientProvider_FillsFromSeasonalOnFailure(t *testing.T) {
	primary := &stubProvider{err: errors.New("boom")}
	provider, err := NewResilientProvider(primary, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 4)
	infos, err := provider.Fetch(context.Background(), 40, -74, start, end)
	if err != nil {
		t.Fatalf("fetch should degrade, not fail: %v", err)
	}
	if len(infos) != 5 {
		t.Fatalf("expected 5 days, got %d", len(infos))
	}

	// The fallback values must match the seasonal model exactly.
	model := SeasonalModel{}
	for day, info := range infos {
		if want := model.DaylightHours(40, day.Month()); info.DaylightHours != want {
			t.Fatalf("day %s = %f, want seasonal %f", day, info.DaylightHours, want)
		}
	}
}

func TestResilientProvider_FillsMissingDays(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	partial := map[time.Time]Info{
		DayKey(start): {Date: DayKey(start), DaylightHours: 13},
	}
	primary := &stubProvider{infos: partial}
	provider, err := NewResilientProvider(primary, nil)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	infos, err := provider.Fetch(context.Background(), 40, -74, start, start.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 days, got %d", len(infos))
	}
	if infos[DayKey(start)].DaylightHours != 13 {
		t.Fatal("primary data should win over fallback")
	}
	if infos[DayKey(start.AddDate(0, 0, 1))].DaylightHours != 12 {
		t.Fatal("missing day should use seasonal model")
	}
}

func TestResilientProvider_BreakerOpensAfterThreshold(t *testing.T) {
	primary := &stubProvider{err: errors.New("down")}
	provider, err := NewResilientProvider(primary, nil, WithBreakerThreshold(2), WithBreakerCooldown(time.Hour))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if _, err := provider.Fetch(context.Background(), 10, 10, start, start); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if primary.calls != 2 {
		t.Fatalf("breaker should stop primary calls after 2 failures, got %d calls", primary.calls)
	}
	if !provider.Open() {
		t.Fatal("breaker should report open")
	}
}

func TestResilientProvider_RecoversAfterSuccess(t *testing.T) {
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	primary := &stubProvider{err: errors.New("down")}
	provider, err := NewResilientProvider(primary, nil, WithBreakerThreshold(3))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	if _, err := provider.Fetch(context.Background(), 10, 10, start, start); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	primary.err = nil
	primary.infos = map[time.Time]Info{DayKey(start): {Date: DayKey(start), DaylightHours: 14}}
	if _, err := provider.Fetch(context.Background(), 10, 10, start, start); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if provider.Open() {
		t.Fatal("breaker should close on success")
	}
}
