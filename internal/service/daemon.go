package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"kvk-connect/internal/common/logger"
	"kvk-connect/internal/common/metrics"
)

// Daemon repeats a sync cycle on a fixed interval until the context is
// cancelled. Cycle errors are logged and the loop continues; only
// cancellation stops it.
type Daemon struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) (int, error)
	logger   logger.Logger
}

// NewDaemon builds a daemon running one cycle per interval.
func NewDaemon(name string, interval time.Duration, run func(ctx context.Context) (int, error), log logger.Logger) *Daemon {
	return &Daemon{name: name, interval: interval, run: run, logger: log}
}

// Run loops until ctx is cancelled. The first cycle starts immediately.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("daemon started", map[string]interface{}{
		"app":      d.name,
		"interval": d.interval.String(),
	})

	for {
		d.cycle(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped", map[string]interface{}{"app": d.name})
			return ctx.Err()
		case <-time.After(d.interval):
		}
	}
}

func (d *Daemon) cycle(ctx context.Context) {
	cycleID := uuid.NewString()
	log := d.logger.WithFields(map[string]interface{}{
		"app":   d.name,
		"cycle": cycleID,
	})

	log.Info("starting cycle", nil)
	timer := prometheus.NewTimer(metrics.SyncCycleDuration.WithLabelValues(d.name))
	defer timer.ObserveDuration()

	count, err := d.run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error("cycle failed", map[string]interface{}{
			"error":     err.Error(),
			"processed": count,
		})
		return
	}

	log.Info("cycle completed", map[string]interface{}{"processed": count})
}
