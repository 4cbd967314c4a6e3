// Package cmd provides the command-line interface for WhiteKnight.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags
var (
	configFile string
	noColor    bool
)

// defaultTimeout bounds a single CLI operation against a remote API
const defaultTimeout = 30 * time.Second

// NewRootCmd creates the whiteknight root command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "whiteknight",
		Short: "WhiteKnight threat investigation platform",
		Long: `WhiteKnight tracks investigation cases, logs wireless signals, flags threats
and produces static mitigation recommendations over a JSON API.

A separate status page serves a fixed SOC dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			if configFile != "" {
				if _, err := os.Stat(configFile); err != nil {
					return fmt.Errorf("config file %s: %w", configFile, err)
				}
				viper.SetConfigFile(configFile)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStatusPageCmd())
	rootCmd.AddCommand(newRecommendCmd())
	rootCmd.AddCommand(newDemoCmd())

	return rootCmd
}

// outputAsJSON writes data as indented JSON
func outputAsJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
