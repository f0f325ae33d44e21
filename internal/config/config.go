package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tickrange/internal/ticks"
)

// EnvPrefix is the environment variable prefix for every key.
const EnvPrefix = "TICKRANGE"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Params         ticks.Params
	FeeTickSpacing ticks.SpacingTable
	RPCURL         string
	Pool           string
	Token          string
	Record         string
	PGDSN          string
	MaxRetries     int
	RetryBackoff   time.Duration
	LogLevel       string
}

// SpacingTable returns the built-in table merged with configured entries.
func (c Config) SpacingTable() ticks.SpacingTable {
	return ticks.DefaultSpacingTable().Merge(c.FeeTickSpacing)
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := ticks.DefaultParams()
	v.SetDefault("starting-mcap", defaults.StartingMarketCapUSD)
	v.SetDefault("ending-mcap", defaults.EndingMarketCapUSD)
	v.SetDefault("fee", defaults.Fee)
	v.SetDefault("token-supply", defaults.TokenSupply)
	v.SetDefault("numeraire-usd", defaults.NumeraireUSD)
	v.SetDefault("rounding-direction", int(defaults.RoundingDirection))
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	spacing, err := parseSpacingTable(getStringMap(v, "fee-tick-spacing"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Params: ticks.Params{
			StartingMarketCapUSD: v.GetFloat64("starting-mcap"),
			EndingMarketCapUSD:   v.GetFloat64("ending-mcap"),
			Fee:                  v.GetUint32("fee"),
			TokenSupply:          v.GetFloat64("token-supply"),
			NumeraireUSD:         v.GetFloat64("numeraire-usd"),
			RoundingDirection:    ticks.RoundingDirection(v.GetInt("rounding-direction")),
		},
		FeeTickSpacing: spacing,
		RPCURL:         v.GetString("rpc"),
		Pool:           v.GetString("pool"),
		Token:          v.GetString("token"),
		Record:         v.GetString("record"),
		PGDSN:          v.GetString("pg-dsn"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}

func parseSpacingTable(entries map[string]string) (ticks.SpacingTable, error) {
	table := make(ticks.SpacingTable, len(entries))
	for key, value := range entries {
		fee, err := strconv.ParseUint(strings.TrimSpace(key), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid fee tier %q: %w", key, err)
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid tick spacing %q for fee %s: %w", value, key, err)
		}
		if ts <= 0 {
			return nil, fmt.Errorf("%w: fee %s", ticks.ErrInvalidTickSpacing, key)
		}
		table[uint32(fee)] = ts
	}
	return table, nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	case []string:
		return parseStringMap(strings.Join(typed, ","))
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
