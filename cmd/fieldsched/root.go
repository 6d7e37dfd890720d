package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"field-scheduler/internal/app"
	"field-scheduler/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "fieldsched",
	Short:         "Crew scheduling and travel-time feasibility service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(cfg, app.WithLogOutput(cmd.ErrOrStderr()))
}
