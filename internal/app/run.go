package app

import (
	"context"
	"fmt"
	"time"

	"kvk-connect/internal/service"
)

// RunSync executes the selected mode of one profile sync binary. One-shot
// modes return their error to the caller (non-zero exit); daemon mode logs
// and keeps cycling until ctx is cancelled.
func RunSync(ctx context.Context, rt *Runtime, flags *Flags, sync *service.Sync, appName string) error {
	mode, err := flags.Mode()
	if err != nil {
		return err
	}

	if mode == ModeDaemon {
		rt.ServeMetrics()
		daemon := service.NewDaemon(appName, time.Duration(flags.Interval)*time.Minute, func(ctx context.Context) (int, error) {
			count, err := sync.ProcessOutdated(ctx)
			if err != nil {
				return count, err
			}
			n, err := sync.ProcessMissing(ctx)
			count += n
			if err != nil {
				return count, err
			}
			return count, sync.Flush(ctx)
		}, rt.Logger)

		if err := daemon.Run(ctx); err != context.Canceled {
			return err
		}
		return nil
	}

	var processed int
	switch mode {
	case ModeSingle:
		processed, err = sync.ProcessSingle(ctx, flags.KVK)
	case ModeCSV:
		processed, err = sync.ProcessCSV(ctx, flags.CSV)
	case ModeMissing:
		processed, err = sync.ProcessMissing(ctx)
	case ModeKnown:
		processed, err = sync.ProcessOutdated(ctx)
	default:
		return fmt.Errorf("unsupported mode %d", mode)
	}
	if err != nil {
		return err
	}

	if err := sync.Flush(ctx); err != nil {
		return err
	}

	rt.Logger.Info("run completed", map[string]interface{}{"processed": processed})
	return nil
}
