// Package attest signs a committed Merkle root so downstream consumers can
// check who produced an artifact, not only that its proofs are internally
// consistent. Signatures are 65-byte recoverable secp256k1 over a
// domain-separated digest of the root, so the signer is itself an address.
package attest

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/merklegate/merklegate/allowlist"
	"github.com/merklegate/merklegate/core/types"
	"github.com/merklegate/merklegate/geth"
)

// signPrefix domain-separates root attestations from any other message a
// key might sign.
const signPrefix = "merklegate root attestation:"

// ParseKey decodes a secp256k1 private key from hex (optional 0x prefix).
func ParseKey(hexkey string) (*ecdsa.PrivateKey, error) {
	hexkey = strings.TrimPrefix(hexkey, "0x")
	key, err := gethcrypto.HexToECDSA(hexkey)
	if err != nil {
		return nil, fmt.Errorf("attest: invalid signing key: %w", err)
	}
	return key, nil
}

// signDigest is the 32-byte message actually signed for a root.
func signDigest(root types.Hash) []byte {
	return gethcrypto.Keccak256([]byte(signPrefix), root.Bytes())
}

// SignRoot produces a 65-byte recoverable signature over the root.
func SignRoot(key *ecdsa.PrivateKey, root types.Hash) ([]byte, error) {
	sig, err := gethcrypto.Sign(signDigest(root), key)
	if err != nil {
		return nil, fmt.Errorf("attest: sign root %s: %w", root, err)
	}
	return sig, nil
}

// RecoverSigner returns the address that signed the given root.
func RecoverSigner(root types.Hash, sig []byte) (types.Address, error) {
	pub, err := gethcrypto.SigToPub(signDigest(root), sig)
	if err != nil {
		return types.Address{}, fmt.Errorf("attest: recover signer: %w", err)
	}
	return geth.FromGethAddress(gethcrypto.PubkeyToAddress(*pub)), nil
}

// Attest signs the root and packages the result for the artifact, with the
// signer rendered in canonical checksummed form.
func Attest(key *ecdsa.PrivateKey, root types.Hash) (*allowlist.RootAttestation, error) {
	sig, err := SignRoot(key, root)
	if err != nil {
		return nil, err
	}
	signer := geth.FromGethAddress(gethcrypto.PubkeyToAddress(key.PublicKey))
	return &allowlist.RootAttestation{
		Signer:    signer.ChecksumHex(),
		Signature: "0x" + hex.EncodeToString(sig),
	}, nil
}
