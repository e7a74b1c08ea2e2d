package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeRequiresExactlyOne(t *testing.T) {
	_, err := (&Flags{}).Mode()
	assert.ErrorIs(t, err, ErrNoMode)

	_, err = (&Flags{KVK: "12345678", UpdateMissing: true}).Mode()
	assert.ErrorIs(t, err, ErrModeConflict)

	_, err = (&Flags{UpdateMissing: true, UpdateKnown: true}).Mode()
	assert.ErrorIs(t, err, ErrModeConflict)

	_, err = (&Flags{Daemon: true, CSV: "x.csv"}).Mode()
	assert.ErrorIs(t, err, ErrModeConflict)
}

func TestModeSelection(t *testing.T) {
	cases := []struct {
		flags Flags
		want  Mode
	}{
		{Flags{KVK: "56850042"}, ModeSingle},
		{Flags{CSV: "input.csv"}, ModeCSV},
		{Flags{UpdateMissing: true}, ModeMissing},
		{Flags{UpdateKnown: true}, ModeKnown},
		{Flags{Daemon: true}, ModeDaemon},
	}

	for _, tc := range cases {
		mode, err := tc.flags.Mode()
		require.NoError(t, err)
		assert.Equal(t, tc.want, mode)
	}
}
