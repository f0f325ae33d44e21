package ticks

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownFeeTier           = errors.New("fee missing from mapping")
	ErrInvalidRoundingDirection = errors.New("invalid rounding direction")
	ErrNonPositiveRatio         = errors.New("price ratio must be positive and finite")
	ErrInvalidTickSpacing       = errors.New("tick spacing must be positive")
)

// RoundingDirection selects the bias applied when bucketing a tick.
type RoundingDirection int

const (
	RoundDown RoundingDirection = -1
	RoundUp   RoundingDirection = 1
)

func (d RoundingDirection) Valid() bool {
	return d == RoundDown || d == RoundUp
}

func (d RoundingDirection) String() string {
	switch d {
	case RoundDown:
		return "down"
	case RoundUp:
		return "up"
	default:
		return fmt.Sprintf("unsupported(%d)", int(d))
	}
}

// Params holds the inputs of a tick range computation.
type Params struct {
	StartingMarketCapUSD float64
	EndingMarketCapUSD   float64
	Fee                  uint32
	TokenSupply          float64
	NumeraireUSD         float64
	RoundingDirection    RoundingDirection
}

// DefaultParams returns the reference launch configuration.
func DefaultParams() Params {
	return Params{
		StartingMarketCapUSD: 5_000,
		EndingMarketCapUSD:   10_000,
		Fee:                  10_000,
		TokenSupply:          1_000_000_000,
		NumeraireUSD:         3723,
		RoundingDirection:    RoundDown,
	}
}

// SpacingTable maps a fee tier to its tick spacing.
type SpacingTable map[uint32]int64

// DefaultSpacingTable returns the built-in fee tier table.
func DefaultSpacingTable() SpacingTable {
	return SpacingTable{10_000: 200}
}

// Lookup resolves the tick spacing for fee.
func (t SpacingTable) Lookup(fee uint32) (int64, error) {
	ts, ok := t[fee]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFeeTier, fee)
	}
	return ts, nil
}

// Merge returns a copy of t with extra entries added. Entries in extra win.
func (t SpacingTable) Merge(extra SpacingTable) SpacingTable {
	out := make(SpacingTable, len(t)+len(extra))
	for fee, ts := range t {
		out[fee] = ts
	}
	for fee, ts := range extra {
		out[fee] = ts
	}
	return out
}

// Fees returns the configured fee tiers in ascending order.
func (t SpacingTable) Fees() []uint32 {
	fees := make([]uint32, 0, len(t))
	for fee := range t {
		fees = append(fees, fee)
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i] < fees[j] })
	return fees
}
