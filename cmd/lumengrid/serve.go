package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	apihttp "lumengrid/internal/api/http"
	"lumengrid/internal/audit"
	"lumengrid/internal/auth"
	"lumengrid/internal/config"
	"lumengrid/internal/daylight"
	"lumengrid/internal/observability/metrics"
	"lumengrid/internal/publisher"
	"lumengrid/internal/usage/application"
	usagehttp "lumengrid/internal/usage/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP calculation service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db open error: %w", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			return fmt.Errorf("db ping error: %w", err)
		}
	}

	metrics.Init(db, logger)
	var auditLogger audit.Logger
	if db != nil {
		auditLogger = audit.NewRepository(db)
	}

	var primary daylight.Provider
	switch cfg.Daylight.Provider {
	case config.ProviderAstronomical:
		primary = daylight.NewAstronomicalProvider()
	default:
		primary, err = daylight.NewSunriseSunsetClient(cfg.Daylight.BaseURL, daylight.WithTimeout(cfg.Daylight.Timeout))
		if err != nil {
			return fmt.Errorf("daylight client error: %w", err)
		}
	}
	provider, err := daylight.NewResilientProvider(primary, logger,
		daylight.WithBreakerThreshold(cfg.Daylight.BreakerThreshold),
		daylight.WithBreakerCooldown(cfg.Daylight.BreakerCooldown),
		daylight.WithSourceLabel(cfg.Daylight.Provider),
	)
	if err != nil {
		return fmt.Errorf("daylight provider error: %w", err)
	}

	service, err := application.NewService(provider, logger)
	if err != nil {
		return fmt.Errorf("usage service error: %w", err)
	}

	var authenticator auth.Authenticator
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		authenticator, err = auth.NewJWTAuthenticator([]byte(cfg.JWTSecret))
	default:
		authenticator, err = auth.NewAPIKeyAuthenticator(cfg.APIKey)
	}
	if err != nil {
		return fmt.Errorf("authenticator error: %w", err)
	}

	var resultPublisher publisher.Publisher
	if cfg.MQTT.Enabled {
		mqttPublisher, err := publisher.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.Username, cfg.MQTT.Password, cfg.MQTT.TopicPrefix)
		if err != nil {
			return fmt.Errorf("mqtt publisher error: %w", err)
		}
		defer mqttPublisher.Close()
		resultPublisher = mqttPublisher
	}

	calculateHandler, err := usagehttp.NewCalculateHandler(service, resultPublisher, auditLogger, logger)
	if err != nil {
		return fmt.Errorf("calculate handler error: %w", err)
	}
	reportHandler, err := usagehttp.NewReportHandler(service, auditLogger, logger)
	if err != nil {
		return fmt.Errorf("report handler error: %w", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware(authenticator, policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/usage/calculate", calculateHandler)
	mux.Handle("/api/v1/usage/report", reportHandler)
	if db != nil {
		mux.Handle("/api/v1/audit", apihttp.NewAuditHistoryHandler(db))
		mux.Handle("/api/v1/exports/audit.csv", apihttp.NewExportAuditCSVHandler(db))
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	return server.ListenAndServe()
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
