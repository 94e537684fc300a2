// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// hexToBytes decodes a hex string into raw bytes. The input may carry an
// optional 0x/0X prefix, mixed case and surrounding whitespace; odd-length or
// non-hex input returns ErrInvalidHex.
func hexToBytes(s string) ([]byte, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "0x")

	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}

	return b, nil
}

// normalizeHex returns the canonical unprefixed lowercase form of s.
func normalizeHex(s string) (string, error) {
	b, err := hexToBytes(s)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// bytesToHex encodes raw bytes as a 0x-prefixed lowercase hex string.
func bytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// ToHex normalises a hex string into the canonical 0x-prefixed lowercase form.
func ToHex(s string) (string, error) {
	n, err := normalizeHex(s)
	if err != nil {
		return "", err
	}

	return "0x" + n, nil
}

// BytesToHex is the raw-byte companion of ToHex.
func BytesToHex(b []byte) string {
	return bytesToHex(b)
}
