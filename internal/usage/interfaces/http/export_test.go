package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lumengrid/internal/usage/application"
	usage "lumengrid/internal/usage/domain"
)

func newTestReportHandler(t *testing.T) *ReportHandler {
	t.Helper()
	service, err := application.NewService(fixedProvider{hours: 12}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewReportHandler(service, nil, nil)
	if err != nil {
		t.Fatalf("new report handler: %v", err)
	}
	return handler
}

func TestReportHandler_CSV(t *testing.T) {
	handler := newTestReportHandler(t)
	body := `{"realPower": 10, "startDate": "2024-04-01", "endDate": "2024-04-30", "lat": 45, "long": 9}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/report", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "usage.csv") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(resp.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, one month and total, got %d lines", len(lines))
	}
	if lines[0] != "month,usage_kwh" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "2024-04,7200.00" {
		t.Fatalf("unexpected month row %q", lines[1])
	}
	if lines[2] != "total,7200.00" {
		t.Fatalf("unexpected total row %q", lines[2])
	}
}

func TestReportHandler_UnknownFormat(t *testing.T) {
	handler := newTestReportHandler(t)
	body := `{"realPower": 10, "startDate": "2024-04-01", "endDate": "2024-04-30", "lat": 45, "long": 9}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/report?format=docx", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReportHandler_InvalidRequest(t *testing.T) {
	handler := newTestReportHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usage/report?format=pdf", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func sampleReport() (usage.Request, *application.Report) {
	req := usage.Request{
		RealPowerKw: 10,
		StartDate:   time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
		Latitude:    45,
		Longitude:   9,
	}
	report := &application.Report{
		Months: []usage.MonthUsage{
			{MonthStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), UsageKwh: 7200},
			{MonthStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), UsageKwh: 7440},
		},
		TotalKwh: 14640,
	}
	return req, report
}

func TestBuildUsageXLSX(t *testing.T) {
	req, report := sampleReport()
	body, err := BuildUsageXLSX(req, report)
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	// XLSX files are zip archives.
	if len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
		t.Fatalf("output is not a zip archive")
	}
}

func TestBuildUsagePDF(t *testing.T) {
	req, report := sampleReport()
	body, err := BuildUsagePDF(req, report)
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !strings.HasPrefix(string(body), "%PDF") {
		t.Fatalf("output is not a pdf")
	}
}
