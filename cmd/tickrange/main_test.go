package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tickrange/internal/config"
	"tickrange/internal/storage"
	"tickrange/internal/ticks"
)

const defaultPayload = "0000000000000000000000000000000000000000000000000000000000031e70" +
	"0000000000000000000000000000000000000000000000000000000000030318"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootDefaults(t *testing.T) {
	out, err := execute(t, "--log-level=error")
	require.NoError(t, err)
	assert.Equal(t, defaultPayload, out)
	assert.Len(t, out, 128)

	again, err := execute(t, "--log-level=error")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestRootUnknownFeeWritesNothing(t *testing.T) {
	out, err := execute(t, "--log-level=error", "--fee=3000")
	require.Error(t, err)
	assert.ErrorIs(t, err, ticks.ErrUnknownFeeTier)
	assert.Empty(t, out)
}

func TestRootExtraFeeTier(t *testing.T) {
	out, err := execute(t, "--log-level=error", "--fee=3000", "--fee-tick-spacing=3000=60")
	require.NoError(t, err)
	require.Len(t, out, 128)

	decoded, err := execute(t, "decode", out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(decoded), "\n")
	require.Len(t, lines, 2)
	assert.NotEqual(t, "204400", lines[0])
}

func TestRootRejectsArgs(t *testing.T) {
	out, err := execute(t, "extra")
	assert.Error(t, err)
	assert.Empty(t, out)
}

func TestDecodeCommand(t *testing.T) {
	out, err := execute(t, "decode", "0x"+defaultPayload)
	require.NoError(t, err)
	assert.Equal(t, "204400\n197400\n", out)

	_, err = execute(t, "decode", "abcd")
	assert.Error(t, err)
}

func TestSpacingCommand(t *testing.T) {
	out, err := execute(t, "spacing", "--log-level=error")
	require.NoError(t, err)
	assert.Equal(t, "200\n", out)

	out, err = execute(t, "spacing", "--log-level=error", "--fee=500")
	assert.ErrorIs(t, err, ticks.ErrUnknownFeeTier)
	assert.Empty(t, out)
}

func TestComputeTickRangeRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranges.jsonl")
	cfg := config.Config{
		Params: ticks.DefaultParams(),
		Record: path,
	}

	var out bytes.Buffer
	require.NoError(t, computeTickRange(context.Background(), cfg, zap.NewNop(), &out))
	assert.Equal(t, defaultPayload, out.String())

	records, err := storage.NewJsonlStorage(path).ReadTickRanges()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(204400), records[0].StartingTick)
	assert.Equal(t, int64(197400), records[0].EndingTick)
	assert.Equal(t, int64(200), records[0].TickSpacing)
	assert.Equal(t, defaultPayload, records[0].Encoded)
}

func TestComputeTickRangeErrors(t *testing.T) {
	zeroSupply := ticks.DefaultParams()
	zeroSupply.TokenSupply = 0

	zeroDirection := ticks.DefaultParams()
	zeroDirection.RoundingDirection = 0

	cases := []struct {
		name string
		cfg  config.Config
		want error
	}{
		{name: "domain error", cfg: config.Config{Params: zeroSupply}, want: ticks.ErrNonPositiveRatio},
		{name: "rounding direction", cfg: config.Config{Params: zeroDirection}, want: ticks.ErrInvalidRoundingDirection},
		{name: "pool without rpc", cfg: config.Config{Params: ticks.DefaultParams(), Pool: "0x1111111111111111111111111111111111111111"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := computeTickRange(context.Background(), tc.cfg, zap.NewNop(), &out)
			require.Error(t, err)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
			assert.Empty(t, out.String())
		})
	}
}
