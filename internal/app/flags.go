// Package app holds what the four sync binaries share: the CLI flag set with
// its mode exclusivity rules, and the runtime wiring of config, logging,
// database and registry client.
package app

import (
	"errors"

	"github.com/spf13/cobra"
)

// Mode is the single operation a sync binary run performs.
type Mode int

const (
	ModeNone Mode = iota
	// ModeSingle fetches one record by identifier.
	ModeSingle
	// ModeCSV processes a CSV of identifiers.
	ModeCSV
	// ModeMissing backfills records with demand but no mirrored copy.
	ModeMissing
	// ModeKnown refreshes mirrored records with a newer signal.
	ModeKnown
	// ModeDaemon cycles refresh-then-backfill on an interval.
	ModeDaemon
)

var (
	ErrNoMode       = errors.New("one of --kvk, --csv, --update-missing, --update-known or --daemon is required")
	ErrModeConflict = errors.New("--kvk, --csv, --update-missing, --update-known and --daemon are mutually exclusive")
)

// Flags is the shared flag set of the profile sync binaries.
type Flags struct {
	KVK           string
	CSV           string
	UpdateMissing bool
	UpdateKnown   bool
	Daemon        bool
	Interval      int
	BatchSize     int
	Debug         bool
}

// Register binds the shared flags to a command. csvUsage names what the CSV
// column holds, since the establishment app takes establishment numbers.
func (f *Flags) Register(cmd *cobra.Command, singleUsage, csvUsage string) {
	cmd.Flags().StringVar(&f.KVK, "kvk", "", singleUsage)
	cmd.Flags().StringVar(&f.CSV, "csv", "", csvUsage)
	cmd.Flags().BoolVar(&f.UpdateMissing, "update-missing", false, "Backfill records present in signalen but absent locally")
	cmd.Flags().BoolVar(&f.UpdateKnown, "update-known", false, "Refresh records whose signal timestamp is newer")
	cmd.Flags().BoolVar(&f.Daemon, "daemon", false, "Run refresh-then-backfill cycles on an interval")
	cmd.Flags().IntVar(&f.Interval, "interval", 60, "Daemon cycle interval in minutes")
	cmd.Flags().IntVar(&f.BatchSize, "batch-size", 1, "Database write batch size")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug log level")
}

// Mode validates mutual exclusivity and returns the selected mode. Exactly
// one mode flag is required; the check runs before any I/O.
func (f *Flags) Mode() (Mode, error) {
	var mode Mode
	count := 0

	if f.KVK != "" {
		mode = ModeSingle
		count++
	}
	if f.CSV != "" {
		mode = ModeCSV
		count++
	}
	if f.UpdateMissing {
		mode = ModeMissing
		count++
	}
	if f.UpdateKnown {
		mode = ModeKnown
		count++
	}
	if f.Daemon {
		mode = ModeDaemon
		count++
	}

	switch {
	case count == 0:
		return ModeNone, ErrNoMode
	case count > 1:
		return ModeNone, ErrModeConflict
	}
	return mode, nil
}
