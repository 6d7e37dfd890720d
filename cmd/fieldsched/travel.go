package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"field-scheduler/internal/handlers"
	"field-scheduler/internal/models"
	"field-scheduler/internal/travel"
)

var (
	travelInput     string
	travelFromStore bool
)

var travelCmd = &cobra.Command{
	Use:   "travel",
	Short: "Annotate candidate slots with travel warnings",
	Long: `Reads {"candidate", "slots", "bookingsByPerson", "bufferMinutes"} JSON
and prints the slots with any travel warnings attached.`,
	RunE: runTravel,
}

func init() {
	travelCmd.Flags().StringVarP(&travelInput, "input", "i", "", "slot batch JSON file (- for stdin)")
	travelCmd.Flags().BoolVar(&travelFromStore, "from-store", false, "load person bookings from the store's appointments")
	_ = travelCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(travelCmd)
}

func runTravel(cmd *cobra.Command, args []string) error {
	var req handlers.TravelRequest
	in := cmd.InOrStdin()
	if travelInput != "-" {
		f, err := os.Open(travelInput)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode %s: %w", travelInput, err)
	}

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if travelFromStore && len(req.Slots) > 0 {
		store, err := a.Store()
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		from, to := slotWindow(req.Slots)
		byPerson, err := store.Appointments().ListByPerson(cmd.Context(), from.Add(-24*time.Hour), to.Add(24*time.Hour))
		if err != nil {
			return err
		}
		req.BookingsByPerson = byPerson
	}

	stats := a.Evaluator().EvaluateBatch(cmd.Context(), travel.BatchRequest{
		Slots:            req.Slots,
		BookingsByPerson: req.BookingsByPerson,
		Candidate:        req.Candidate,
		BufferMinutes:    req.BufferMinutes,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(handlers.TravelResponse{Slots: req.Slots, Stats: stats})
}

func slotWindow(slots []models.Slot) (time.Time, time.Time) {
	from, to := slots[0].Start, slots[0].End
	for _, s := range slots[1:] {
		if s.Start.Before(from) {
			from = s.Start
		}
		if s.End.After(to) {
			to = s.End
		}
	}
	return from, to
}
