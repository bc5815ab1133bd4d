package application

import (
	"context"
	"math"
	"testing"
	"time"

	"lumengrid/internal/daylight"
	usage "lumengrid/internal/usage/domain"
)

type fixedProvider struct {
	daylightHours float64
	skip          map[time.Time]bool
}

func (p fixedProvider) Fetch(_ context.Context, _, _ float64, start, end time.Time) (map[time.Time]daylight.Info, error) {
	infos := make(map[time.Time]daylight.Info)
	for day := daylight.DayKey(start); !day.After(daylight.DayKey(end)); day = day.AddDate(0, 0, 1) {
		if p.skip[day] {
			continue
		}
		infos[day] = daylight.Info{Date: day, DaylightHours: p.daylightHours}
	}
	return infos, nil
}

func TestServiceCalculate_ThirtyDaysAlwaysOn(t *testing.T) {
	service, err := NewService(fixedProvider{daylightHours: 12}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := usage.Request{
		RealPowerKw: 10,
		StartDate:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		Latitude:    40.7,
		Longitude:   -74.0,
	}
	report, err := service.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(report.Months) != 1 {
		t.Fatalf("expected 1 month, got %d", len(report.Months))
	}
	if report.Months[0].UsageKwh != 7200 {
		t.Fatalf("usage = %f, want 7200", report.Months[0].UsageKwh)
	}
	if report.TotalKwh != 7200 {
		t.Fatalf("total = %f, want 7200", report.TotalKwh)
	}
}

func TestServiceCalculate_TotalSumsRoundedMonths(t *testing.T) {
	service, err := NewService(fixedProvider{daylightHours: 10.123}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := usage.Request{
		RealPowerKw: 3.7,
		StartDate:   time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		Latitude:    52.5,
		Longitude:   13.4,
		Intelligent: usage.IntelligentSettings{
			PercentageOfTotal:      0.8,
			DimmingTimePercentage:  0.5,
			DimmingPowerPercentage: 0.3,
		},
	}
	report, err := service.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(report.Months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(report.Months))
	}

	var sum float64
	for _, month := range report.Months {
		sum += month.UsageKwh
	}
	if math.Abs(sum-report.TotalKwh) > 1e-9 {
		t.Fatalf("total %f does not equal sum of months %f", report.TotalKwh, sum)
	}

	// Months must come back in chronological order.
	for i := 1; i < len(report.Months); i++ {
		if !report.Months[i-1].MonthStart.Before(report.Months[i].MonthStart) {
			t.Fatal("months out of order")
		}
	}
}

func TestServiceCalculate_SkipsDaysWithoutData(t *testing.T) {
	missing := time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)
	service, err := NewService(fixedProvider{daylightHours: 12, skip: map[time.Time]bool{missing: true}}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := usage.Request{
		RealPowerKw: 10,
		StartDate:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		Latitude:    40.7,
		Longitude:   -74.0,
	}
	report, err := service.Calculate(context.Background(), req)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	month := report.Months[0]
	if len(month.SkippedDays) != 1 || !month.SkippedDays[0].Equal(missing) {
		t.Fatalf("unexpected skipped days: %v", month.SkippedDays)
	}
	if month.UsageKwh != 10*24*29 {
		t.Fatalf("usage = %f, want %f", month.UsageKwh, float64(10*24*29))
	}
}

func TestServiceCalculate_RejectsInvalidRequest(t *testing.T) {
	service, err := NewService(fixedProvider{daylightHours: 12}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := usage.Request{
		RealPowerKw: 0,
		StartDate:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
	}
	if _, err := service.Calculate(context.Background(), req); err == nil {
		t.Fatal("expected validation error")
	}
}
