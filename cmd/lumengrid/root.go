package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lumengrid",
	Short: "Estimate electrical energy usage for outdoor lighting",
	Long: `Lumengrid estimates kWh consumption for outdoor lighting installations
over a date range, accounting for day-length variation by location and
optional intelligent dimming policies.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $LUMENGRID_CONFIG)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
