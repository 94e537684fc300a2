// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

// Wire-format constants for the cd and flz codecs and the jit synthesizer.

// cd (LibZip run-length) format.
const (
	cdHeaderSize = 4    // leading output bytes are XOR-obfuscated with 0xFF
	cdRunMarker  = 0x00 // introduces a two-byte run token
	cdFFRunFlag  = 0x80 // bit 7 of the length byte selects a 0xFF run
	cdMaxZeroRun = 0x80
	cdMaxFFRun   = 0x20
)

// flz (FastLZ variant) format.
const (
	flzHashBits        = 13
	flzHashSize        = 1 << flzHashBits // 8192 entries
	flzHashSeed        = 2654435769       // Knuth multiplicative constant
	flzWindow          = 8192             // max back-reference distance
	flzMaxLiteralRun   = 32
	flzMaxMatchToken   = 262 // longer matches chain max-length tokens
	flzLongMatchMarker = 224 // header byte with the top three bits set
	flzNoMatch         = 0x1000000
)

// EVM instruction bytes used by the jit synthesizer.
const (
	opOr             = 0x17
	opShl            = 0x1b
	opAddress        = 0x30
	opCallValue      = 0x34
	opCalldataLoad   = 0x35
	opCalldataSize   = 0x36
	opCalldataCopy   = 0x37
	opReturnDataSize = 0x3d
	opReturnDataCopy = 0x3e
	opMload          = 0x51
	opMstore         = 0x52
	opMstore8        = 0x53
	opMsize          = 0x59
	opGas            = 0x5a
	opPush0          = 0x5f
	opPush1          = 0x60
	opPush32         = 0x7f
	opDup1           = 0x80
	opSwap1          = 0x90
	opCall           = 0xf1
	opReturn         = 0xf3
)

// Selector thresholds.
const (
	defaultMinSize   = 800  // payloads below this stay vanilla
	jitSizeThreshold = 2096 // auto mode goes straight to jit at or above this
)
