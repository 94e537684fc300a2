// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

// opcodeByte packs a token fragment to one byte as required by the codec
// wire layouts. Callers pass values whose low 8 bits are the serialized
// representation.
func opcodeByte(v int) byte {
	// #nosec G115 -- codec tokens intentionally encode only low 8 bits.
	return byte(v & 0xff)
}
