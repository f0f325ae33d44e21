package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tickrange/internal/codec"
	"tickrange/internal/config"
)

func runDecode(cmd *cobra.Command, args []string) error {
	start, end, err := codec.DecodeTickRangeHex(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n%d\n", start, end)
	return err
}

func runSpacing(cmd *cobra.Command, _ []string) error {
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

	params := cfg.Params
	spacing, err := resolveSpacing(cmd.Context(), cfg, &params, logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", spacing)
	return err
}
