package codec

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EncodedSize is the byte length of an encoded tick range.
const EncodedSize = 64

var (
	tickRangeArgs     abi.Arguments
	tickRangeArgsOnce sync.Once
	tickRangeArgsErr  error
)

// TickRangeArguments returns the ABI arguments for a single int256[2] value.
func TickRangeArguments() (abi.Arguments, error) {
	tickRangeArgsOnce.Do(func() {
		typ, err := abi.NewType("int256[2]", "", nil)
		if err != nil {
			tickRangeArgsErr = err
			return
		}
		tickRangeArgs = abi.Arguments{{Name: "ticks", Type: typ}}
	})
	return tickRangeArgs, tickRangeArgsErr
}

// EncodeTickRange ABI-encodes [start, end] as int256[2].
func EncodeTickRange(start, end int64) ([]byte, error) {
	args, err := TickRangeArguments()
	if err != nil {
		return nil, fmt.Errorf("build abi type: %w", err)
	}
	data, err := args.Pack([2]*big.Int{big.NewInt(start), big.NewInt(end)})
	if err != nil {
		return nil, fmt.Errorf("pack tick range: %w", err)
	}
	return data, nil
}

// EncodeTickRangeHex returns the lowercase hex encoding without a 0x prefix.
func EncodeTickRangeHex(start, end int64) (string, error) {
	data, err := EncodeTickRange(start, end)
	if err != nil {
		return "", err
	}
	return common.Bytes2Hex(data), nil
}

// DecodeTickRange unpacks an int256[2] payload.
func DecodeTickRange(data []byte) (int64, int64, error) {
	if len(data) != EncodedSize {
		return 0, 0, fmt.Errorf("invalid payload length: %d", len(data))
	}

	args, err := TickRangeArguments()
	if err != nil {
		return 0, 0, fmt.Errorf("build abi type: %w", err)
	}
	values, err := args.Unpack(data)
	if err != nil {
		return 0, 0, fmt.Errorf("unpack tick range: %w", err)
	}
	if len(values) != 1 {
		return 0, 0, fmt.Errorf("unexpected value count: %d", len(values))
	}

	pair, ok := values[0].([2]*big.Int)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected value type %T", values[0])
	}
	for i, v := range pair {
		if v == nil || !v.IsInt64() {
			return 0, 0, fmt.Errorf("tick %d overflows int64", i)
		}
	}
	return pair[0].Int64(), pair[1].Int64(), nil
}

// DecodeTickRangeHex decodes a hex payload, with or without a 0x prefix.
func DecodeTickRangeHex(input string) (int64, int64, error) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "0x") && !strings.HasPrefix(input, "0X") {
		input = "0x" + input
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hex payload: %w", err)
	}
	return DecodeTickRange(data)
}
