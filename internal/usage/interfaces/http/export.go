package http

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"lumengrid/internal/audit"
	"lumengrid/internal/observability/metrics"
	"lumengrid/internal/usage/application"
	usage "lumengrid/internal/usage/domain"
)

// ReportHandler serves POST /api/v1/usage/report, rendering the computed
// monthly figures as CSV, XLSX or PDF.
type ReportHandler struct {
	service     *application.Service
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(service *application.Service, auditLogger audit.Logger, logger *log.Logger) (*ReportHandler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &ReportHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles a report export request.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	started := time.Now()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	req, raw, err := decodeCalculateRequest(r)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Calculate(r.Context(), req)
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		h.logf("report calculate error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var body []byte
	var contentType, filename string
	switch format {
	case "csv":
		body, err = BuildUsageCSV(req, report)
		contentType, filename = "text/csv", "usage.csv"
	case "xlsx":
		body, err = BuildUsageXLSX(req, report)
		contentType, filename = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "usage.xlsx"
	case "pdf":
		body, err = BuildUsagePDF(req, report)
		contentType, filename = "application/pdf", "usage.pdf"
	default:
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		respondError(w, http.StatusBadRequest, "format must be csv, xlsx or pdf")
		return
	}
	if err != nil {
		metrics.ObserveReportExport(format, metrics.ResultError, time.Since(started))
		h.logf("report render error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	metrics.ObserveReportExport(format, metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)

	logAudit(h.auditLogger, r, "usage.report."+format, raw)
}

func (h *ReportHandler) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}

// BuildUsageCSV renders monthly usage as CSV.
func BuildUsageCSV(req usage.Request, report *application.Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"month", "usage_kwh"}); err != nil {
		return nil, err
	}
	for _, month := range report.Months {
		record := []string{
			month.MonthStart.Format("2006-01"),
			strconv.FormatFloat(month.UsageKwh, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	if err := writer.Write([]string{"total", strconv.FormatFloat(report.TotalKwh, 'f', 2, 64)}); err != nil {
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildUsageXLSX renders monthly usage as a workbook.
func BuildUsageXLSX(req usage.Request, report *application.Report) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	monthsSheet := "months"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(monthsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Lighting Energy Usage")
	_ = f.SetCellValue(summarySheet, "A3", "Real Power (kW)")
	_ = f.SetCellValue(summarySheet, "B3", req.RealPowerKw)
	_ = f.SetCellValue(summarySheet, "A4", "Latitude")
	_ = f.SetCellValue(summarySheet, "B4", req.Latitude)
	_ = f.SetCellValue(summarySheet, "A5", "Longitude")
	_ = f.SetCellValue(summarySheet, "B5", req.Longitude)
	_ = f.SetCellValue(summarySheet, "A6", "From")
	_ = f.SetCellValue(summarySheet, "B6", req.StartDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A7", "To")
	_ = f.SetCellValue(summarySheet, "B7", req.EndDate.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A8", "Total Usage (kWh)")
	_ = f.SetCellValue(summarySheet, "B8", report.TotalKwh)

	_ = f.SetCellValue(monthsSheet, "A1", "Month")
	_ = f.SetCellValue(monthsSheet, "B1", "Usage (kWh)")
	for i, month := range report.Months {
		row := i + 2
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("A%d", row), month.MonthStart.Format("2006-01"))
		_ = f.SetCellValue(monthsSheet, fmt.Sprintf("B%d", row), month.UsageKwh)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildUsagePDF renders monthly usage as a minimal PDF.
func BuildUsagePDF(req usage.Request, report *application.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Lighting Energy Usage")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Real Power: %.2f kW", req.RealPowerKw))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Location: %.4f, %.4f", req.Latitude, req.Longitude))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Range: %s to %s", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Usage (kWh): %.2f", report.TotalKwh))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Usage (kWh)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, month := range report.Months {
		pdf.CellFormat(60, 6, month.MonthStart.Format("2006-01"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, fmt.Sprintf("%.2f", month.UsageKwh), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
