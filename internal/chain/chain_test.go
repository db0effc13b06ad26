package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name    string
		address string
		chainID int64
		want    bool
	}{
		{"ethereum lowercase", "0x52908400098527886e0f7030069857d2e4169ee7", Ethereum, true},
		{"bsc mixed case", "0x8617E340B3D01FA5F11F306F4090FD50E238070D", BSC, true},
		{"polygon", "0xde709f2102306220921060314715629080e2fb77", Polygon, true},
		{"unsupported chain", "0x52908400098527886e0f7030069857d2e4169ee7", 10, false},
		{"no prefix", "52908400098527886e0f7030069857d2e4169ee7", Ethereum, false},
		{"upper X prefix", "0X52908400098527886e0f7030069857d2e4169ee7", Ethereum, false},
		{"too short", "0x52908400098527886e0f7030069857d2e4169e", Ethereum, false},
		{"not hex", "0x52908400098527886e0f7030069857d2e4169ezz", Ethereum, false},
		{"garbage", "not-an-address", Ethereum, false},
		{"empty", "", Ethereum, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsValidAddress(tt.address, tt.chainID))
		})
	}
}

func TestRegistryCustomChains(t *testing.T) {
	r := NewRegistry([]int64{Ethereum})

	assert.True(t, r.IsSupported(Ethereum))
	assert.False(t, r.IsSupported(Polygon))
	assert.False(t, r.IsValidAddress("0xde709f2102306220921060314715629080e2fb77", Polygon))
}

func TestCanonicalAddress(t *testing.T) {
	assert.Equal(t,
		"0x8617e340b3d01fa5f11f306f4090fd50e238070d",
		CanonicalAddress(" 0x8617E340B3D01FA5F11F306F4090FD50E238070D "),
	)
	assert.Equal(t, "not-an-address", CanonicalAddress("NOT-an-address"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "ethereum", Name(Ethereum))
	assert.Equal(t, "polygon", Name(Polygon))
	assert.Equal(t, "unknown", Name(42161))
}
