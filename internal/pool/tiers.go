package pool

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Tiers holds the fee tier settings of a deployed pool.
type Tiers struct {
	Address     common.Address
	Token0      common.Address
	Token1      common.Address
	Fee         uint32
	TickSpacing int64
}

// TokenIsToken1 reports whether token is the pool's token1. The tick math
// prices the launched token as token1.
func (t Tiers) TokenIsToken1(token common.Address) bool {
	return t.Token1 == token
}

// ParseAddress converts a hex string into common.Address.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// FetchTiers loads fee, tick spacing and token ordering from a V3 pool.
func FetchTiers(ctx context.Context, caller Caller, address common.Address) (Tiers, error) {
	if caller == nil {
		return Tiers{}, fmt.Errorf("chain client is nil")
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return Tiers{}, fmt.Errorf("parse pool abi: %w", err)
	}

	tiers := Tiers{Address: address}

	values, err := callPoolMethod(ctx, caller, address, poolABI, "token0")
	if err != nil {
		return Tiers{}, err
	}
	if tiers.Token0, err = asAddress(values[0]); err != nil {
		return Tiers{}, fmt.Errorf("token0: %w", err)
	}

	values, err = callPoolMethod(ctx, caller, address, poolABI, "token1")
	if err != nil {
		return Tiers{}, err
	}
	if tiers.Token1, err = asAddress(values[0]); err != nil {
		return Tiers{}, fmt.Errorf("token1: %w", err)
	}

	values, err = callPoolMethod(ctx, caller, address, poolABI, "fee")
	if err != nil {
		return Tiers{}, err
	}
	fee, err := asBigInt(values[0])
	if err != nil {
		return Tiers{}, fmt.Errorf("fee: %w", err)
	}
	tiers.Fee = uint32(fee.Uint64())

	values, err = callPoolMethod(ctx, caller, address, poolABI, "tickSpacing")
	if err != nil {
		return Tiers{}, err
	}
	spacing, err := asBigInt(values[0])
	if err != nil {
		return Tiers{}, fmt.Errorf("tick spacing: %w", err)
	}
	if spacing.Sign() <= 0 || !spacing.IsInt64() {
		return Tiers{}, fmt.Errorf("tick spacing out of range: %s", spacing.String())
	}
	tiers.TickSpacing = spacing.Int64()

	return tiers, nil
}

func callPoolMethod(ctx context.Context, caller Caller, address common.Address, poolABI abi.ABI, method string) ([]interface{}, error) {
	data, err := poolABI.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &address, Data: data}
	resp, err := caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := poolABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}
