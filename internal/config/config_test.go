package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tickrange/internal/ticks"
)

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("starting-mcap", 5_000, "")
	flags.Float64("ending-mcap", 10_000, "")
	flags.Uint32("fee", 10_000, "")
	flags.Int("rounding-direction", -1, "")
	flags.String("fee-tick-spacing", "", "")
	flags.String("log-level", "info", "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, ticks.DefaultParams(), cfg.Params)
	assert.Equal(t, ticks.DefaultSpacingTable(), cfg.SpacingTable())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Pool)
}

func TestLoadFlagsAndEnv(t *testing.T) {
	t.Setenv("TICKRANGE_NUMERAIRE_USD", "2500.5")
	t.Setenv("TICKRANGE_PG_DSN", "postgres://localhost/ticks")

	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{
		"--starting-mcap=20000",
		"--fee=3000",
		"--rounding-direction=1",
		"--fee-tick-spacing=3000=60, 500=10",
	}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 20_000.0, cfg.Params.StartingMarketCapUSD)
	assert.Equal(t, 10_000.0, cfg.Params.EndingMarketCapUSD)
	assert.Equal(t, uint32(3000), cfg.Params.Fee)
	assert.Equal(t, ticks.RoundUp, cfg.Params.RoundingDirection)
	assert.Equal(t, 2500.5, cfg.Params.NumeraireUSD)
	assert.Equal(t, "postgres://localhost/ticks", cfg.PGDSN)

	table := cfg.SpacingTable()
	assert.Equal(t, []uint32{500, 3000, 10_000}, table.Fees())
	ts, err := table.Lookup(3000)
	require.NoError(t, err)
	assert.Equal(t, int64(60), ts)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickrange.yaml")
	content := []byte("ending-mcap: 50000\ntoken-supply: 21000000\nfee-tick-spacing:\n  \"100\": 1\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path, newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, 50_000.0, cfg.Params.EndingMarketCapUSD)
	assert.Equal(t, 21_000_000.0, cfg.Params.TokenSupply)
	assert.Equal(t, int64(1), cfg.FeeTickSpacing[100])
}

func TestLoadInvalidSpacing(t *testing.T) {
	flags := newFlagSet()
	require.NoError(t, flags.Parse([]string{"--fee-tick-spacing=3000=0"}))

	_, err := Load("", flags)
	assert.ErrorIs(t, err, ticks.ErrInvalidTickSpacing)

	flags = newFlagSet()
	require.NoError(t, flags.Parse([]string{"--fee-tick-spacing=abc=60"}))
	_, err = Load("", flags)
	assert.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), newFlagSet())
	assert.Error(t, err)
}
