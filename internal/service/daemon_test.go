package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kvk-connect/internal/common/logger"
)

func TestDaemonStopsOnCancel(t *testing.T) {
	var cycles int32
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDaemon("basisprofiel", time.Millisecond, func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&cycles, 1) >= 3 {
			cancel()
		}
		return 0, nil
	}, logger.NewNoOpLogger())

	err := d.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&cycles), int32(3))
}

func TestDaemonContinuesAfterCycleError(t *testing.T) {
	var cycles int32
	ctx, cancel := context.WithCancel(context.Background())

	d := NewDaemon("basisprofiel", time.Millisecond, func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&cycles, 1)
		if n >= 3 {
			cancel()
			return 0, nil
		}
		return 0, errors.New("upstream hiccup")
	}, logger.NewNoOpLogger())

	err := d.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	// The two failing cycles did not stop the loop.
	assert.GreaterOrEqual(t, atomic.LoadInt32(&cycles), int32(3))
}
