package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tickrange/internal/chain"
	"tickrange/internal/codec"
	"tickrange/internal/config"
	"tickrange/internal/model"
	"tickrange/internal/pool"
	"tickrange/internal/storage"
	"tickrange/internal/storage/postgres"
	"tickrange/internal/ticks"
)

func runCompute(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := computeTickRange(ctx, cfg, logger, cmd.OutOrStdout()); err != nil {
		logger.Error("tick range failed", zap.Error(err))
		return err
	}
	return nil
}

// computeTickRange runs the pipeline and writes the hex payload to out. Nothing
// is written to out unless every step, including the sinks, succeeds.
func computeTickRange(ctx context.Context, cfg config.Config, logger *zap.Logger, out io.Writer) error {
	params := cfg.Params
	if params.EndingMarketCapUSD <= params.StartingMarketCapUSD {
		logger.Warn("ending market cap is not above starting market cap",
			zap.Float64("starting_mcap_usd", params.StartingMarketCapUSD),
			zap.Float64("ending_mcap_usd", params.EndingMarketCapUSD),
		)
	}

	spacing, err := resolveSpacing(ctx, cfg, &params, logger)
	if err != nil {
		return err
	}

	res, err := ticks.ComputeWithSpacing(params, spacing)
	if err != nil {
		return err
	}

	encoded, err := codec.EncodeTickRangeHex(res.StartingTick, res.EndingTick)
	if err != nil {
		return err
	}

	logger.Info("tick range computed",
		zap.Uint32("fee", params.Fee),
		zap.Int64("tick_spacing", res.TickSpacing),
		zap.Stringer("rounding", params.RoundingDirection),
		zap.Int64("starting_tick", res.StartingTick),
		zap.Int64("ending_tick", res.EndingTick),
		zap.Float64("realized_starting_mcap_usd", res.RealizedStartingMarketCap),
		zap.Float64("realized_ending_mcap_usd", res.RealizedEndingMarketCap),
	)

	record := model.NewTickRangeRecord(params, res, encoded, cfg.Pool, time.Now())
	if err := persistRecord(ctx, cfg, record, logger); err != nil {
		return err
	}

	_, err = io.WriteString(out, encoded)
	return err
}

// resolveSpacing reads tier settings from the pool when one is configured and
// falls back to the fee tier table otherwise. A pool overrides params.Fee.
func resolveSpacing(ctx context.Context, cfg config.Config, params *ticks.Params, logger *zap.Logger) (int64, error) {
	if cfg.Pool == "" {
		return cfg.SpacingTable().Lookup(params.Fee)
	}
	if cfg.RPCURL == "" {
		return 0, fmt.Errorf("rpc url is required with pool")
	}

	address, err := pool.ParseAddress(cfg.Pool)
	if err != nil {
		return 0, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return 0, fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var tiers pool.Tiers
	err = chain.WithRetry(ctx, cfg.MaxRetries, cfg.RetryBackoff, func(ctx context.Context) error {
		var fetchErr error
		tiers, fetchErr = pool.FetchTiers(ctx, chainClient, address)
		if fetchErr != nil {
			logger.Warn("pool tiers fetch failed", zap.String("pool", address.Hex()), zap.Error(fetchErr))
		}
		return fetchErr
	})
	if err != nil {
		return 0, fmt.Errorf("fetch pool tiers: %w", err)
	}

	if tiers.Fee != params.Fee {
		logger.Info("using pool fee tier",
			zap.Uint32("configured_fee", params.Fee),
			zap.Uint32("pool_fee", tiers.Fee),
		)
		params.Fee = tiers.Fee
	}

	if cfg.Token != "" {
		token, err := pool.ParseAddress(cfg.Token)
		if err != nil {
			return 0, err
		}
		if !tiers.TokenIsToken1(token) {
			logger.Warn("token is not the pool's token1; ticks assume token1 pricing",
				zap.String("token", token.Hex()),
				zap.String("token0", tiers.Token0.Hex()),
				zap.String("token1", tiers.Token1.Hex()),
			)
		}
	}

	logger.Debug("pool tiers loaded",
		zap.String("pool", address.Hex()),
		zap.Uint32("fee", tiers.Fee),
		zap.Int64("tick_spacing", tiers.TickSpacing),
	)
	return tiers.TickSpacing, nil
}

func persistRecord(ctx context.Context, cfg config.Config, record model.TickRangeRecord, logger *zap.Logger) error {
	if cfg.Record != "" {
		var sink storage.Storage = storage.NewJsonlStorage(cfg.Record)
		if err := sink.PutTickRanges([]model.TickRangeRecord{record}); err != nil {
			return fmt.Errorf("record tick range: %w", err)
		}
	}

	if cfg.PGDSN == "" {
		return nil
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	previous, ok, err := store.LoadEncoded(ctx, record.Key)
	if err != nil {
		return fmt.Errorf("load previous tick range: %w", err)
	}
	if ok && previous != record.Encoded {
		logger.Warn("tick range differs from previous run with the same inputs",
			zap.String("key", record.Key),
			zap.String("previous", previous),
			zap.String("current", record.Encoded),
		)
	}

	if err := store.UpsertTickRanges(ctx, []model.TickRangeRecord{record}); err != nil {
		return fmt.Errorf("store tick range: %w", err)
	}
	return nil
}
