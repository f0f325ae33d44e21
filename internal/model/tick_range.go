package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tickrange/internal/ticks"
)

const usdPlaces = 2

// TickRangeRecord is the persisted form of one tick range computation.
type TickRangeRecord struct {
	Key                          string `json:"key"`
	StartingMarketCapUSD         string `json:"starting_mcap_usd"`
	EndingMarketCapUSD           string `json:"ending_mcap_usd"`
	Fee                          uint32 `json:"fee"`
	TokenSupply                  string `json:"token_supply"`
	NumeraireUSD                 string `json:"numeraire_usd"`
	RoundingDirection            int    `json:"rounding_direction"`
	TickSpacing                  int64  `json:"tick_spacing"`
	StartingTick                 int64  `json:"starting_tick"`
	EndingTick                   int64  `json:"ending_tick"`
	RealizedStartingMarketCapUSD string `json:"realized_starting_mcap_usd"`
	RealizedEndingMarketCapUSD   string `json:"realized_ending_mcap_usd"`
	Encoded                      string `json:"encoded"`
	Pool                         string `json:"pool,omitempty"`
	ComputedAt                   string `json:"computed_at"`
}

// NewTickRangeRecord builds a record from the inputs and outputs of a run.
func NewTickRangeRecord(p ticks.Params, res ticks.Result, encoded string, pool string, computedAt time.Time) TickRangeRecord {
	return TickRangeRecord{
		Key:                          RangeKey(p, res.TickSpacing, pool),
		StartingMarketCapUSD:         formatDecimal(p.StartingMarketCapUSD, usdPlaces),
		EndingMarketCapUSD:           formatDecimal(p.EndingMarketCapUSD, usdPlaces),
		Fee:                          p.Fee,
		TokenSupply:                  decimal.NewFromFloat(p.TokenSupply).String(),
		NumeraireUSD:                 formatDecimal(p.NumeraireUSD, usdPlaces),
		RoundingDirection:            int(p.RoundingDirection),
		TickSpacing:                  res.TickSpacing,
		StartingTick:                 res.StartingTick,
		EndingTick:                   res.EndingTick,
		RealizedStartingMarketCapUSD: formatDecimal(res.RealizedStartingMarketCap, usdPlaces),
		RealizedEndingMarketCapUSD:   formatDecimal(res.RealizedEndingMarketCap, usdPlaces),
		Encoded:                      encoded,
		Pool:                         pool,
		ComputedAt:                   computedAt.UTC().Format(time.RFC3339Nano),
	}
}

// RangeKey identifies a computation by its inputs, so reruns map to the same key.
func RangeKey(p ticks.Params, spacing int64, pool string) string {
	return fmt.Sprintf("%s:%s:%d:%d:%s:%s:%d:%s",
		decimal.NewFromFloat(p.StartingMarketCapUSD).String(),
		decimal.NewFromFloat(p.EndingMarketCapUSD).String(),
		p.Fee,
		spacing,
		decimal.NewFromFloat(p.TokenSupply).String(),
		decimal.NewFromFloat(p.NumeraireUSD).String(),
		int(p.RoundingDirection),
		pool,
	)
}

func formatDecimal(value float64, places int32) string {
	return decimal.NewFromFloat(value).StringFixed(places)
}
