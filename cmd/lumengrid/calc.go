package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"lumengrid/internal/daylight"
	"lumengrid/internal/usage/application"
	usage "lumengrid/internal/usage/domain"

	"github.com/spf13/cobra"
)

var (
	calcPower    float64
	calcStart    string
	calcEnd      string
	calcLat      float64
	calcLong     float64
	calcSeasonal bool

	calcIntelligentShare float64
	calcDimPower         float64
	calcDimTime          float64
	calcCriticalShare    float64
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run a one-shot usage calculation offline",
	Long: `Computes monthly energy usage locally without the HTTP server, using the
astronomical day-length provider (or the seasonal model with --seasonal).`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().Float64Var(&calcPower, "power", 0, "real power rating in kW (required)")
	calcCmd.Flags().StringVar(&calcStart, "start", "", "start date YYYY-MM-DD (required)")
	calcCmd.Flags().StringVar(&calcEnd, "end", "", "end date YYYY-MM-DD (required)")
	calcCmd.Flags().Float64Var(&calcLat, "lat", 0, "latitude")
	calcCmd.Flags().Float64Var(&calcLong, "long", 0, "longitude")
	calcCmd.Flags().BoolVar(&calcSeasonal, "seasonal", false, "use the seasonal model instead of astronomy")
	calcCmd.Flags().Float64Var(&calcIntelligentShare, "intelligent-share", 0, "fraction of power under intelligent control")
	calcCmd.Flags().Float64Var(&calcDimPower, "dim-power", 0, "fraction of full power retained while dimmed")
	calcCmd.Flags().Float64Var(&calcDimTime, "dim-time", 0, "fraction of night hours spent dimmed")
	calcCmd.Flags().Float64Var(&calcCriticalShare, "critical-share", 0, "fraction of intelligent power exempt from dimming")
	_ = calcCmd.MarkFlagRequired("power")
	_ = calcCmd.MarkFlagRequired("start")
	_ = calcCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	startDate, err := time.Parse("2006-01-02", calcStart)
	if err != nil {
		return fmt.Errorf("start must be YYYY-MM-DD: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", calcEnd)
	if err != nil {
		return fmt.Errorf("end must be YYYY-MM-DD: %w", err)
	}

	req := usage.Request{
		RealPowerKw: calcPower,
		StartDate:   startDate.UTC(),
		EndDate:     endDate.UTC(),
		Latitude:    calcLat,
		Longitude:   calcLong,
		Intelligent: usage.IntelligentSettings{
			PercentageOfTotal:                calcIntelligentShare,
			DimmingPowerPercentage:           calcDimPower,
			DimmingTimePercentage:            calcDimTime,
			CriticalInfrastructurePercentage: calcCriticalShare,
		},
	}
	if err := req.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	var provider daylight.Provider
	if calcSeasonal {
		provider = daylight.SeasonalModel{}
	} else {
		provider = daylight.NewAstronomicalProvider()
	}

	service, err := application.NewService(provider, logger)
	if err != nil {
		return err
	}
	report, err := service.Calculate(cmd.Context(), req)
	if err != nil {
		return err
	}

	type monthOut struct {
		Date  string  `json:"date"`
		Usage float64 `json:"usage"`
	}
	out := struct {
		Results    []monthOut `json:"results"`
		TotalUsage float64    `json:"totalUsage"`
	}{TotalUsage: report.TotalKwh}
	for _, month := range report.Months {
		out.Results = append(out.Results, monthOut{
			Date:  month.MonthStart.UTC().Format("2006-01-02T00:00:00.000Z"),
			Usage: month.UsageKwh,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
