// cmd/vestigingsprofiel/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kvk-connect/internal/app"
	"kvk-connect/internal/service"
	"kvk-connect/internal/store"
)

var flags app.Flags

// rootCmd mirrors per-establishment profiles, geo data included.
var rootCmd = &cobra.Command{
	Use:           "vestigingsprofiel",
	Short:         "Mirror KVK vestigingsprofielen into the local database",
	SilenceUsage:  false,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags.Register(rootCmd,
		"Single establishment number to process, e.g. --kvk 000038976579",
		"Path to a CSV with establishment numbers")
}

func run(cmd *cobra.Command, args []string) error {
	if _, err := flags.Mode(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	rt, err := app.NewRuntime("vestigingsprofiel", flags.Debug)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewVestigingsProfielStore(rt.PG.DB, flags.BatchSize, rt.Logger)
	target := service.NewVestigingsProfielTarget(rt.Client, st, rt.Guard, rt.Logger)
	sync := service.NewSync(target, rt.Obs, rt.Cfg.Sync.FetchLimit, rt.Logger)

	return app.RunSync(ctx, rt, &flags, sync, "vestigingsprofiel")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
