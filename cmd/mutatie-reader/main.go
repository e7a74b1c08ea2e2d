// cmd/mutatie-reader/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kvk-connect/internal/app"
	"kvk-connect/internal/service"
	"kvk-connect/internal/store"
)

var (
	signaalID  string
	auto       bool
	manual     bool
	fromTime   string
	toTime     string
	batchSize  int
	fetchLimit int
	interval   int
	daemon     bool
	debug      bool
)

// rootCmd reads the Mutatieservice change feed into the signalen table.
var rootCmd = &cobra.Command{
	Use:           "mutatie-reader",
	Short:         "Read KVK Mutatieservice signals into the local database",
	SilenceUsage:  false,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&signaalID, "signaalid", "", "Fetch a single signal by ID and print it to stdout")
	rootCmd.Flags().BoolVar(&auto, "auto", false, "Automatic window: from last stored signal to one minute ago")
	rootCmd.Flags().BoolVar(&manual, "manual", false, "Manual window: requires --from and --to")
	rootCmd.Flags().StringVar(&fromTime, "from", "", "Manual window start (ISO8601)")
	rootCmd.Flags().StringVar(&toTime, "to", "", "Manual window end (ISO8601)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 100, "Database write batch size")
	rootCmd.Flags().IntVar(&fetchLimit, "fetch-limit", 500, "API page size")
	rootCmd.Flags().IntVar(&interval, "interval", 60, "Daemon cycle interval in minutes")
	rootCmd.Flags().BoolVar(&daemon, "daemon", false, "Run in daemon mode, only valid with --auto")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug log level")
}

// parseISOUTC parses an ISO8601 timestamp into UTC, accepting a bare local
// form, 'Z' and explicit offsets.
func parseISOUTC(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

func validateFlags() error {
	count := 0
	for _, set := range []bool{signaalID != "", auto, manual} {
		if set {
			count++
		}
	}
	switch {
	case count == 0:
		return errors.New("one of --signaalid, --auto or --manual is required")
	case count > 1:
		return errors.New("--signaalid, --auto and --manual are mutually exclusive")
	}
	if manual && (fromTime == "" || toTime == "") {
		return errors.New("manual mode requires both --from and --to")
	}
	if daemon && !auto {
		return errors.New("daemon mode only works with --auto")
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	rt, err := app.NewRuntime("mutatie-reader", debug)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Single signal mode prints and exits, no sync involved.
	if signaalID != "" {
		raw, err := rt.Client.GetMutatieSignaalRaw(ctx, signaalID)
		if err != nil {
			return err
		}
		if raw == nil {
			return fmt.Errorf("no data found for signaal %s", signaalID)
		}
		fmt.Println(string(raw))
		return nil
	}

	st := store.NewSignaalStore(rt.PG.DB, batchSize, rt.Logger)
	sync := service.NewMutatieSync(rt.Client, st, fetchLimit, rt.Logger)

	runOnce := func(ctx context.Context) (int, error) {
		var from, to time.Time
		var err error
		if auto {
			from, to, err = sync.ResolveAutoWindow(ctx)
			if err != nil {
				return 0, err
			}
		} else {
			from, err = parseISOUTC(fromTime)
			if err != nil {
				return 0, err
			}
			to, err = parseISOUTC(toTime)
			if err != nil {
				return 0, err
			}
			if to.Before(from) {
				return 0, errors.New("--to must be equal or after --from")
			}
		}
		return sync.Run(ctx, from, to)
	}

	if daemon {
		rt.ServeMetrics()
		d := service.NewDaemon("mutatie-reader", time.Duration(interval)*time.Minute, runOnce, rt.Logger)
		if err := d.Run(ctx); err != context.Canceled {
			return err
		}
		return nil
	}

	count, err := runOnce(ctx)
	if err != nil {
		return err
	}
	rt.Logger.Info("run completed", map[string]interface{}{"signalen": count})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
