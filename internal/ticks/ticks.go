package ticks

import (
	"fmt"
	"math"
)

// TickBase is the per-tick price multiplier.
const TickBase = 1.0001

// Result is the outcome of a tick range computation.
type Result struct {
	StartingTick              int64
	EndingTick                int64
	TickSpacing               int64
	RealizedStartingMarketCap float64
	RealizedEndingMarketCap   float64
}

// MarketCapToRatio converts a USD market cap into a numeraire/token price
// ratio. The token is assumed to be token1 of the pair.
func MarketCapToRatio(mcUSD, supply, numeraire float64) float64 {
	tokenPrice := mcUSD / supply
	return numeraire / tokenPrice
}

// RatioToTick returns the continuous tick for ratio on the 1.0001 ladder.
func RatioToTick(ratio float64) float64 {
	return math.Log(ratio) / math.Log(TickBase)
}

// FloorDiv divides x by y rounding toward negative infinity. The quotient is
// derived from math.Mod, which can differ from math.Floor(x/y) in the last ulp.
func FloorDiv(x, y float64) float64 {
	mod := math.Mod(x, y)
	div := (x - mod) / y
	if mod != 0 && (y < 0) != (mod < 0) {
		div -= 1.0
	}
	if div == 0 {
		return math.Copysign(0, x/y)
	}
	floored := math.Floor(div)
	if div-floored > 0.5 {
		floored += 1.0
	}
	return floored
}

// Bucket snaps a continuous tick onto the spacing grid and offsets it one
// step against dir. The float result is truncated toward zero.
func Bucket(tick float64, spacing int64, dir RoundingDirection) int64 {
	ts := float64(spacing)
	return int64((FloorDiv(tick, ts) + float64(dir)*-1) * ts)
}

// RealizedMarketCap returns the market cap implied by a bucketed tick.
func RealizedMarketCap(numeraire float64, tick int64, supply float64) float64 {
	return (numeraire / math.Pow(TickBase, float64(tick))) * supply
}

// Compute runs the full market cap to bucketed tick pipeline.
func Compute(p Params, table SpacingTable) (Result, error) {
	ts, err := table.Lookup(p.Fee)
	if err != nil {
		return Result{}, err
	}
	return ComputeWithSpacing(p, ts)
}

// ComputeWithSpacing runs the pipeline with an externally resolved tick
// spacing, such as one read from a deployed pool.
func ComputeWithSpacing(p Params, spacing int64) (Result, error) {
	if !p.RoundingDirection.Valid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidRoundingDirection, int(p.RoundingDirection))
	}
	if spacing <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTickSpacing, spacing)
	}

	startTick, endTick, err := ContinuousTicks(p)
	if err != nil {
		return Result{}, err
	}

	start := Bucket(startTick, spacing, p.RoundingDirection)
	end := Bucket(endTick, spacing, p.RoundingDirection)

	return Result{
		StartingTick:              start,
		EndingTick:                end,
		TickSpacing:               spacing,
		RealizedStartingMarketCap: RealizedMarketCap(p.NumeraireUSD, start, p.TokenSupply),
		RealizedEndingMarketCap:   RealizedMarketCap(p.NumeraireUSD, end, p.TokenSupply),
	}, nil
}

// ContinuousTicks returns the unbucketed starting and ending ticks for p.
func ContinuousTicks(p Params) (float64, float64, error) {
	start, err := continuousTick(p.StartingMarketCapUSD, p)
	if err != nil {
		return 0, 0, fmt.Errorf("starting market cap: %w", err)
	}
	end, err := continuousTick(p.EndingMarketCapUSD, p)
	if err != nil {
		return 0, 0, fmt.Errorf("ending market cap: %w", err)
	}
	return start, end, nil
}

func continuousTick(mcUSD float64, p Params) (float64, error) {
	ratio := MarketCapToRatio(mcUSD, p.TokenSupply, p.NumeraireUSD)
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNonPositiveRatio, ratio)
	}
	return RatioToTick(ratio), nil
}
