package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"field-scheduler/internal/businessday"
	"field-scheduler/internal/priority"
	"field-scheduler/internal/scheduling"
)

var (
	optimizeDB     string
	optimizeStart  string
	optimizePreset string
	optimizeJSON   bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Place unscheduled projects from the store onto crews",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeDB, "db", "", "SQLite database path (overrides store.path)")
	optimizeCmd.Flags().StringVar(&optimizeStart, "start", "", "first install date, YYYY-MM-DD (default today)")
	optimizeCmd.Flags().StringVar(&optimizePreset, "preset", "", "priority preset: "+presetNames())
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(optimizeCmd)
}

func presetNames() string {
	names := make([]string, 0, len(priority.Presets()))
	for _, p := range priority.Presets() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	if optimizeDB != "" {
		cfg.Store.Path = optimizeDB
	}

	start := businessday.Date(time.Now())
	if optimizeStart != "" {
		if start, err = businessday.ParseDate(optimizeStart); err != nil {
			return err
		}
	}

	preset := cfg.Scheduling.Preset
	if optimizePreset != "" {
		if preset, err = priority.ParsePreset(optimizePreset); err != nil {
			return err
		}
	}

	store, err := a.Store()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	projects, err := store.Projects().ListUnscheduled(cmd.Context())
	if err != nil {
		return err
	}
	bookings, err := store.Bookings().ListFrom(cmd.Context(), start)
	if err != nil {
		return err
	}

	roster := a.Roster()
	result := a.Optimizer().Optimize(scheduling.Request{
		Projects:            projects,
		CrewsByLocation:     roster.CrewsByLocation,
		DirectorsByLocation: roster.DirectorsByLocation,
		TimezonesByLocation: roster.TimezonesByLocation,
		Options: scheduling.Options{
			StartDate:        start,
			Preset:           preset,
			ExistingBookings: bookings,
		},
	})

	if optimizeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printSchedule(cmd.OutOrStdout(), result)
}

func printSchedule(out io.Writer, result *scheduling.Result) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tLOCATION\tCREW\tSTART\tEND\tDAYS\tSCORE")
	for _, e := range result.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%.1f\n",
			e.ProjectID, e.Location, e.Crew, businessday.Format(e.StartDate), businessday.Format(e.EndDate), e.Days, e.Score)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Skipped:")
		for _, s := range result.Skipped {
			fmt.Fprintf(out, "  %s (%s): %s\n", s.ProjectID, s.Reason, s.Message)
		}
	}
	return nil
}
