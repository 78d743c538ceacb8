package types

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// ParseAddress validates and decodes a textual address. The only accepted
// shape is a literal "0x" prefix followed by exactly 40 hexadecimal digits,
// in any letter case. Anything else is rejected, so an Address obtained here
// is known well-formed for the rest of the pipeline.
func ParseAddress(s string) (Address, error) {
	if len(s) != 2+2*AddressLength {
		return Address{}, fmt.Errorf("types: invalid address length %d for %q", len(s), s)
	}
	if s[0] != '0' || s[1] != 'x' {
		return Address{}, fmt.Errorf("types: address %q missing 0x prefix", s)
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return Address{}, fmt.Errorf("types: address %q is not hexadecimal", s)
	}
	return BytesToAddress(b), nil
}

// ChecksumHex returns the canonical EIP-55 checksummed form of the address.
// The case pattern is derived from the keccak256 hash of the lowercase hex
// digits: hex letters whose corresponding hash nibble is >= 8 are rendered
// uppercase, everything else lowercase.
func (a Address) ChecksumHex() string {
	buf := make([]byte, 2*AddressLength)
	hex.Encode(buf, a[:])

	d := sha3.NewLegacyKeccak256()
	d.Write(buf)
	hash := d.Sum(nil)

	for i, c := range buf {
		if c < 'a' || c > 'f' {
			continue // digits keep their case
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			buf[i] = c - ('a' - 'A')
		}
	}
	return "0x" + string(buf)
}
