// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import "errors"

// Sentinel errors for codec and call failures.
var (
	// ErrInvalidHex is returned when a hex input is malformed (odd length or
	// non-hex characters).
	ErrInvalidHex = errors.New("invalid hex input")
	// ErrTruncated is returned when a decompressor runs off the end of its input.
	ErrTruncated = errors.New("truncated compressed input")
	// ErrInvalidBackReference is returned when an flz token points before the
	// start of the output.
	ErrInvalidBackReference = errors.New("invalid back-reference")
	// ErrUnsupportedAlg is returned by ParseAlg for unknown algorithm names.
	// The selector degrades unknown names to vanilla instead of failing.
	ErrUnsupportedAlg = errors.New("unsupported compression algorithm")
	// ErrCompressedCallFailed is returned when the compressed eth_call is
	// rejected and fallback is disabled. Callers can use errors.Is.
	ErrCompressedCallFailed = errors.New("compressed call failed and fallback disabled")
)
