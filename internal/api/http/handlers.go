package apihttp

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
)

const timeLayout = time.RFC3339

const maxHistoryLimit = 500

// AuditHistoryHandler serves audit trail queries.
type AuditHistoryHandler struct {
	db *sql.DB
}

// NewAuditHistoryHandler constructs an AuditHistoryHandler.
func NewAuditHistoryHandler(db *sql.DB) *AuditHistoryHandler {
	return &AuditHistoryHandler{db: db}
}

// ServeHTTP handles GET /api/v1/audit.
func (h *AuditHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "audit store not configured", http.StatusServiceUnavailable)
		return
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryAuditEntries(r.Context(), h.db, filter)
	if err != nil {
		http.Error(w, "query audit error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// ExportAuditCSVHandler serves audit trail CSV exports.
type ExportAuditCSVHandler struct {
	db *sql.DB
}

// NewExportAuditCSVHandler constructs an ExportAuditCSVHandler.
func NewExportAuditCSVHandler(db *sql.DB) *ExportAuditCSVHandler {
	return &ExportAuditCSVHandler{db: db}
}

// ServeHTTP handles GET /api/v1/exports/audit.csv.
func (h *ExportAuditCSVHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.db == nil {
		http.Error(w, "audit store not configured", http.StatusServiceUnavailable)
		return
	}

	filter, err := parseHistoryFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := queryAuditEntries(r.Context(), h.db, filter)
	if err != nil {
		http.Error(w, "query audit error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
	writer := csv.NewWriter(w)
	_ = writer.Write([]string{
		"id",
		"actor",
		"action",
		"payload_digest",
		"ip",
		"user_agent",
		"created_at",
	})
	for _, row := range rows {
		_ = writer.Write([]string{
			row.ID,
			row.Actor,
			row.Action,
			row.PayloadDigest,
			row.IP,
			row.UserAgent,
			row.CreatedAt.Format(timeLayout),
		})
	}
	writer.Flush()
}

type historyFilter struct {
	Actor  string
	Action string
	From   time.Time
	To     time.Time
	Limit  int
}

type auditRow struct {
	ID            string    `json:"id"`
	Actor         string    `json:"actor"`
	Action        string    `json:"action"`
	PayloadDigest string    `json:"payload_digest"`
	IP            string    `json:"ip"`
	UserAgent     string    `json:"user_agent"`
	CreatedAt     time.Time `json:"created_at"`
}

func parseHistoryFilter(r *http.Request) (historyFilter, error) {
	filter := historyFilter{
		Actor:  r.URL.Query().Get("actor"),
		Action: r.URL.Query().Get("action"),
		Limit:  100,
	}

	from, err := parseTimeQuery(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := parseTimeQuery(r, "to")
	if err != nil {
		return filter, err
	}
	if !to.After(from) {
		return filter, errors.New("to must be after from")
	}
	filter.From = from
	filter.To = to

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxHistoryLimit {
			return filter, errors.New("limit must be between 1 and " + strconv.Itoa(maxHistoryLimit))
		}
		filter.Limit = limit
	}
	return filter, nil
}

func queryAuditEntries(ctx context.Context, db *sql.DB, filter historyFilter) ([]auditRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT
	id,
	actor,
	action,
	payload_digest,
	ip,
	user_agent,
	created_at
FROM audit_logs
WHERE created_at >= $1
	AND created_at < $2
	AND ($3 = '' OR actor = $3)
	AND ($4 = '' OR action = $4)
ORDER BY created_at DESC
LIMIT $5`, filter.From.UTC(), filter.To.UTC(), filter.Actor, filter.Action, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]auditRow, 0)
	for rows.Next() {
		var row auditRow
		if err := rows.Scan(
			&row.ID,
			&row.Actor,
			&row.Action,
			&row.PayloadDigest,
			&row.IP,
			&row.UserAgent,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		row.CreatedAt = row.CreatedAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func parseTimeQuery(r *http.Request, key string) (time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, errors.New(key + " must be RFC3339")
	}
	return parsed.UTC(), nil
}
