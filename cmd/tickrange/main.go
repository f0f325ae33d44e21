package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tickrange",
		Short:        "Compute ABI-encoded tick bounds for a market cap range",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runCompute,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.Flags().Float64("starting-mcap", 5_000, "starting target market cap in USD")
	root.Flags().Float64("ending-mcap", 10_000, "ending target market cap in USD")
	root.Flags().Uint32("fee", 10_000, "fee tier (10000 = 1%)")
	root.Flags().Float64("token-supply", 1_000_000_000, "total token supply")
	root.Flags().Float64("numeraire-usd", 3723, "USD price of one unit of the counter asset")
	root.Flags().Int("rounding-direction", -1, "bucketing direction (-1 down, 1 up)")
	root.Flags().String("fee-tick-spacing", "", "extra fee->tick spacing entries (comma-separated fee=spacing)")
	root.Flags().String("rpc", "", "RPC URL used with --pool")
	root.Flags().String("pool", "", "V3 pool address to read fee and tick spacing from")
	root.Flags().String("token", "", "launched token address, checked against the pool's token1")
	root.Flags().Int("max-retries", 3, "maximum RPC retry attempts")
	root.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	root.Flags().String("record", "", "append the result to this JSONL file")
	root.Flags().String("pg-dsn", "", "Postgres DSN for storing results")

	decodeCmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode an int256[2] tick range payload",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}
	root.AddCommand(decodeCmd)

	spacingCmd := &cobra.Command{
		Use:   "spacing",
		Short: "Print the tick spacing resolved for the configured fee tier",
		Args:  cobra.NoArgs,
		RunE:  runSpacing,
	}
	spacingCmd.Flags().Uint32("fee", 10_000, "fee tier (10000 = 1%)")
	spacingCmd.Flags().String("fee-tick-spacing", "", "extra fee->tick spacing entries (comma-separated fee=spacing)")
	spacingCmd.Flags().String("rpc", "", "RPC URL used with --pool")
	spacingCmd.Flags().String("pool", "", "V3 pool address to read fee and tick spacing from")
	spacingCmd.Flags().Int("max-retries", 3, "maximum RPC retry attempts")
	spacingCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial RPC retry backoff")
	root.AddCommand(spacingCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
