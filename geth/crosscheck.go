package geth

import (
	"bytes"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/merklegate/merklegate/allowlist"
	"github.com/merklegate/merklegate/core/types"
)

// CrossCheck re-derives a finished report with go-ethereum's primitives:
// every leaf digest is recomputed with geth's keccak, every displayed
// address is re-rendered with geth's checksummer, and every proof is folded
// back to the root. A mismatch means the in-repo implementation diverged
// from the ecosystem reference and the artifact must not be trusted.
func CrossCheck(r *allowlist.Report) error {
	for i := range r.Entries {
		e := &r.Entries[i]

		leaf := types.BytesToHash(gethcrypto.Keccak256(e.Address.Bytes()))
		if leaf != e.Leaf {
			return fmt.Errorf("geth: leaf %d digest mismatch: %s vs %s", i, e.Leaf, leaf)
		}

		if display := ToGethAddress(e.Address).Hex(); display != e.Display {
			return fmt.Errorf("geth: entry %d checksum mismatch: %s vs %s", i, e.Display, display)
		}

		if root := foldProof(e.Leaf, e.Proof); root != r.Root {
			return fmt.Errorf("geth: proof %d folds to %s, want root %s", i, root, r.Root)
		}
	}
	return nil
}

// foldProof replays the sorted-pair verification fold using geth's keccak.
func foldProof(leaf types.Hash, proof []types.Hash) types.Hash {
	current := leaf
	for _, sib := range proof {
		a, b := current, sib
		if bytes.Compare(a[:], b[:]) > 0 {
			a, b = b, a
		}
		current = types.BytesToHash(gethcrypto.Keccak256(a[:], b[:]))
	}
	return current
}
