// Package chain holds the EVM chain registry and wallet address rules.
package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Well-known chain IDs
const (
	Ethereum int64 = 1
	BSC      int64 = 56
	Polygon  int64 = 137
)

var knownNames = map[int64]string{
	Ethereum: "ethereum",
	BSC:      "bsc",
	Polygon:  "polygon",
}

// DefaultSupported is the chain set used when none is configured
var DefaultSupported = []int64{Ethereum, BSC, Polygon}

// Registry is the set of chains withdrawals may target
type Registry struct {
	supported map[int64]struct{}
}

// NewRegistry builds a registry; an empty list falls back to DefaultSupported
func NewRegistry(chainIDs []int64) *Registry {
	if len(chainIDs) == 0 {
		chainIDs = DefaultSupported
	}
	r := &Registry{supported: make(map[int64]struct{}, len(chainIDs))}
	for _, id := range chainIDs {
		r.supported[id] = struct{}{}
	}
	return r
}

// IsSupported reports whether chainID is in the registry
func (r *Registry) IsSupported(chainID int64) bool {
	_, ok := r.supported[chainID]
	return ok
}

// IsValidAddress reports whether address is well formed for chainID.
// Only supported EVM chains are accepted; the address must be 0x followed by 40 hex digits.
func (r *Registry) IsValidAddress(address string, chainID int64) bool {
	if !r.IsSupported(chainID) {
		return false
	}
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// Name returns a human readable chain name
func Name(chainID int64) string {
	if name, ok := knownNames[chainID]; ok {
		return name
	}
	return "unknown"
}

// CanonicalAddress normalises an address for watchlist lookups.
// Hex addresses are lower-cased without checksum; anything else is trimmed and lower-cased as is.
func CanonicalAddress(address string) string {
	address = strings.TrimSpace(address)
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}
