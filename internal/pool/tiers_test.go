package pool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	outputs map[string][]interface{}
	fail    string
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, err
	}
	for name, method := range poolABI.Methods {
		if !bytes.Equal(msg.Data[:4], method.ID) {
			continue
		}
		if name == f.fail {
			return nil, errors.New("execution reverted")
		}
		return method.Outputs.Pack(f.outputs[name]...)
	}
	return nil, fmt.Errorf("unknown selector %x", msg.Data[:4])
}

func newFakeCaller(spacing int64) *fakeCaller {
	return &fakeCaller{outputs: map[string][]interface{}{
		"token0":      {common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")},
		"token1":      {common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")},
		"fee":         {big.NewInt(10_000)},
		"tickSpacing": {big.NewInt(spacing)},
	}}
}

func TestFetchTiers(t *testing.T) {
	address := common.HexToAddress("0x1111111111111111111111111111111111111111")

	tiers, err := FetchTiers(context.Background(), newFakeCaller(200), address)
	require.NoError(t, err)

	assert.Equal(t, address, tiers.Address)
	assert.Equal(t, uint32(10_000), tiers.Fee)
	assert.Equal(t, int64(200), tiers.TickSpacing)
	assert.True(t, tiers.TokenIsToken1(common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")))
	assert.False(t, tiers.TokenIsToken1(tiers.Token0))
}

func TestFetchTiersErrors(t *testing.T) {
	address := common.HexToAddress("0x1111111111111111111111111111111111111111")

	_, err := FetchTiers(context.Background(), nil, address)
	assert.Error(t, err)

	failing := newFakeCaller(200)
	failing.fail = "tickSpacing"
	_, err = FetchTiers(context.Background(), failing, address)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call tickSpacing")

	_, err = FetchTiers(context.Background(), newFakeCaller(-60), address)
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress(" 0x1111111111111111111111111111111111111111 ")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
}
