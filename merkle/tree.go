// Package merkle builds binary Merkle trees over leaf digests using
// sorted-pair hashing: a parent is keccak256(min(a,b) || max(b,a)) with the
// two child digests ordered byte-lexicographically before concatenation.
// Sorting inside each pair makes a parent independent of which child sat
// left or right, so proof verification is a pure fold that never tracks
// position. Pairing itself stays positional: the same leaf set presented in
// a different order can produce a different root.
package merkle

import (
	"bytes"
	"errors"

	"github.com/merklegate/merklegate/core/types"
	"github.com/merklegate/merklegate/crypto"
)

// ErrNoLeaves is returned when a tree is requested over zero leaves.
var ErrNoLeaves = errors.New("merkle: tree requires at least one leaf")

// ErrLeafIndex is returned for a proof request outside the leaf range.
var ErrLeafIndex = errors.New("merkle: leaf index out of range")

// LeafHash maps an address to its leaf digest: keccak256 of the raw
// 20-byte value. This must match the encoding an on-chain verifier hashes,
// so the textual form is never hashed.
func LeafHash(addr types.Address) types.Hash {
	return crypto.Keccak256Hash(addr.Bytes())
}

// Tree is an immutable binary Merkle tree. It retains every level built
// during construction (levels[0] is the leaf digests, the last level holds
// only the root) so sibling digests can be extracted for proofs.
type Tree struct {
	levels [][]types.Hash
}

// NewTree folds the ordered leaf digests bottom-up into a tree. Consecutive
// elements are paired per level; an unpaired trailing element is carried
// forward unchanged into the next level. A single leaf short-circuits to
// root = leaf with height 0.
func NewTree(leaves []types.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	level := make([]types.Hash, len(leaves))
	copy(level, leaves)
	levels := [][]types.Hash{level}

	for len(level) > 1 {
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, hashPair(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		levels = append(levels, next)
		level = next
	}

	return &Tree{levels: levels}, nil
}

// Root returns the root digest.
func (t *Tree) Root() types.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Height returns the number of folding levels above the leaves; 0 for a
// single-leaf tree.
func (t *Tree) Height() int {
	return len(t.levels) - 1
}

// NumLeaves returns the number of leaf digests committed.
func (t *Tree) NumLeaves() int {
	return len(t.levels[0])
}

// Leaves returns a copy of the leaf digest sequence in committed order.
func (t *Tree) Leaves() []types.Hash {
	out := make([]types.Hash, len(t.levels[0]))
	copy(out, t.levels[0])
	return out
}

// Proof returns the ordered sibling digests along the path from leaf i to
// the root. Levels where the element was the carried-forward odd one out
// contribute no sibling, so the proof may be shorter than the tree height.
// A single-leaf tree yields an empty proof.
func (t *Tree) Proof(i int) ([]types.Hash, error) {
	if i < 0 || i >= len(t.levels[0]) {
		return nil, ErrLeafIndex
	}

	proof := make([]types.Hash, 0, t.Height())
	pos := i
	for _, level := range t.levels[:len(t.levels)-1] {
		sib := pos ^ 1
		if sib < len(level) {
			proof = append(proof, level[sib])
		}
		pos /= 2
	}
	return proof, nil
}

// VerifyProof recomputes the root from a leaf digest and its sibling
// sequence and reports whether it matches the expected root.
func VerifyProof(leaf types.Hash, proof []types.Hash, root types.Hash) bool {
	current := leaf
	for _, sib := range proof {
		current = hashPair(current, sib)
	}
	return current == root
}

// hashPair computes a parent digest from two children, ordering them by
// ascending byte value before concatenation.
func hashPair(a, b types.Hash) types.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}
