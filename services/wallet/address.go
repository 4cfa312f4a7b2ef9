package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Checksum returns the EIP-55 mixed-case form of a hex account address.
// It is display formatting only and proves nothing about who holds the account.
func Checksum(address string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(address), "0x"), "0X")
	if len(raw) != 40 {
		return "", fmt.Errorf("address %q: expected 40 hex characters", address)
	}
	lower := strings.ToLower(raw)
	if _, err := hex.DecodeString(lower); err != nil {
		return "", fmt.Errorf("address %q: %w", address, err)
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out), nil
}

// DisplayAddress returns the checksummed address, or the input unchanged when
// it is not a 20-byte hex address.
func DisplayAddress(address string) string {
	if sum, err := Checksum(address); err == nil {
		return sum
	}
	return address
}
