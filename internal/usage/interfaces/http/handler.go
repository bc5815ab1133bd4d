package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"lumengrid/internal/audit"
	"lumengrid/internal/auth"
	"lumengrid/internal/observability/metrics"
	"lumengrid/internal/publisher"
	"lumengrid/internal/usage/application"
	usage "lumengrid/internal/usage/domain"
)

// monthLayout renders month starts as midnight UTC timestamps.
const monthLayout = "2006-01-02T00:00:00.000Z"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// CalculateHandler serves POST /api/v1/usage/calculate.
type CalculateHandler struct {
	service     *application.Service
	publisher   publisher.Publisher
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewCalculateHandler constructs a CalculateHandler. Publisher and audit
// logger are optional.
func NewCalculateHandler(service *application.Service, resultPublisher publisher.Publisher, auditLogger audit.Logger, logger *log.Logger) (*CalculateHandler, error) {
	if service == nil {
		return nil, errors.New("usage handler: nil service")
	}
	return &CalculateHandler{service: service, publisher: resultPublisher, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles a calculation request.
func (h *CalculateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	started := time.Now()

	req, raw, err := decodeCalculateRequest(r)
	if err != nil {
		metrics.ObserveCalculate(metrics.ResultError, time.Since(started))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		metrics.ObserveCalculate(metrics.ResultError, time.Since(started))
		h.logf("calculate error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.ObserveCalculate(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(buildResponse(report))

	h.logAudit(r, "usage.calculate", raw)
	if h.publisher != nil {
		if err := h.publisher.PublishReport(req, report); err != nil {
			h.logf("publish result: %v", err)
		}
	}
}

type calculateResponse struct {
	Results    []monthResult `json:"results"`
	TotalUsage float64       `json:"totalUsage"`
}

type monthResult struct {
	Date  string  `json:"date"`
	Usage float64 `json:"usage"`
}

func buildResponse(report *application.Report) calculateResponse {
	resp := calculateResponse{Results: make([]monthResult, 0, len(report.Months)), TotalUsage: report.TotalKwh}
	for _, month := range report.Months {
		resp.Results = append(resp.Results, monthResult{
			Date:  month.MonthStart.UTC().Format(monthLayout),
			Usage: month.UsageKwh,
		})
	}
	return resp
}

type intelligentPayload struct {
	PercentageOfTotal                float64 `json:"percentageOfTotal"`
	DimmingPowerPercentage           float64 `json:"dimmingPowerPercentage"`
	DimmingTimePercentage            float64 `json:"dimmingTimePercentage"`
	CriticalInfrastructurePercentage float64 `json:"criticalInfrastructurePercentage"`
}

type calculatePayload struct {
	RealPower           *float64            `json:"realPower"`
	StartDate           string              `json:"startDate"`
	EndDate             string              `json:"endDate"`
	Lat                 *float64            `json:"lat"`
	Long                *float64            `json:"long"`
	IntelligentSettings *intelligentPayload `json:"intelligentSettings"`
}

// decodeCalculateRequest parses and validates the request body. It returns
// the raw body alongside the request so audit entries can digest the payload.
func decodeCalculateRequest(r *http.Request) (usage.Request, []byte, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return usage.Request{}, nil, errors.New("read body error")
	}
	var payload calculatePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return usage.Request{}, raw, errors.New("invalid json")
	}

	var missing []string
	if payload.RealPower == nil {
		missing = append(missing, "realPower")
	}
	if payload.StartDate == "" {
		missing = append(missing, "startDate")
	}
	if payload.EndDate == "" {
		missing = append(missing, "endDate")
	}
	if payload.Lat == nil {
		missing = append(missing, "lat")
	}
	if payload.Long == nil {
		missing = append(missing, "long")
	}
	if len(missing) > 0 {
		return usage.Request{}, raw, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	startDate, err := parseDate(payload.StartDate)
	if err != nil {
		return usage.Request{}, raw, errors.New("startDate must be an ISO-8601 date")
	}
	endDate, err := parseDate(payload.EndDate)
	if err != nil {
		return usage.Request{}, raw, errors.New("endDate must be an ISO-8601 date")
	}

	req := usage.Request{
		RealPowerKw: *payload.RealPower,
		StartDate:   startDate,
		EndDate:     endDate,
		Latitude:    *payload.Lat,
		Longitude:   *payload.Long,
	}
	if payload.IntelligentSettings != nil {
		req.Intelligent = usage.IntelligentSettings{
			PercentageOfTotal:                payload.IntelligentSettings.PercentageOfTotal,
			DimmingPowerPercentage:           payload.IntelligentSettings.DimmingPowerPercentage,
			DimmingTimePercentage:            payload.IntelligentSettings.DimmingTimePercentage,
			CriticalInfrastructurePercentage: payload.IntelligentSettings.CriticalInfrastructurePercentage,
		}
	}
	if err := req.Validate(); err != nil {
		return usage.Request{}, raw, err
	}
	return req, raw, nil
}

// parseDate accepts ISO-8601 dates or date-times, truncated to the day.
func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *CalculateHandler) logAudit(r *http.Request, action string, payload []byte) {
	logAudit(h.auditLogger, r, action, payload)
}

func logAudit(auditLogger audit.Logger, r *http.Request, action string, payload []byte) {
	if auditLogger == nil {
		return
	}
	entry := audit.Entry{
		Actor:         auth.ActorFromContext(r.Context()),
		Action:        action,
		PayloadDigest: audit.DigestJSON(payload),
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	}
	_ = auditLogger.Log(r.Context(), entry)
}

func (h *CalculateHandler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
