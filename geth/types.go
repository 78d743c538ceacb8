// Package geth adapts between merklegate's type system and go-ethereum's,
// and re-derives finished commitments with go-ethereum's own primitives as
// an independent cross-check of the in-repo hashing and checksumming.
package geth

import (
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/merklegate/merklegate/core/types"
)

// --- Address and Hash conversion (zero-copy, layout-compatible) ---

// ToGethAddress converts a merklegate Address to a go-ethereum Address.
func ToGethAddress(a types.Address) gethcommon.Address {
	return gethcommon.Address(a)
}

// FromGethAddress converts a go-ethereum Address to a merklegate Address.
func FromGethAddress(a gethcommon.Address) types.Address {
	return types.Address(a)
}

// ToGethHash converts a merklegate Hash to a go-ethereum Hash.
func ToGethHash(h types.Hash) gethcommon.Hash {
	return gethcommon.Hash(h)
}

// FromGethHash converts a go-ethereum Hash to a merklegate Hash.
func FromGethHash(h gethcommon.Hash) types.Hash {
	return types.Hash(h)
}
