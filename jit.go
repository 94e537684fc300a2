// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"encoding/hex"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
)

// jitEpilogue closes every synthesized program: CALLVALUE, PUSH0
// CALLDATALOAD (the target address from calldata word 0), GAS, CALL, then
// RETURNDATACOPY/RETURN of whatever the callee produced.
var jitEpilogue = []byte{
	opCallValue,
	opPush0, opCalldataLoad,
	opGas,
	opCall,
	opReturnDataSize, opPush0, opPush0, opReturnDataCopy,
	opReturnDataSize, opPush0, opReturn,
}

// preTopK bounds how many frequent literals the emit pass pre-pushes.
const preTopK = 13

// wordSegment is a maximal run of non-zero bytes within a 32-byte word,
// inclusive on both ends.
type wordSegment struct {
	start, end int
}

// JitBytecode compiles hex-encoded calldata into an EVM program that
// reconstructs the calldata in memory, CALLs the address found in calldata
// word 0 and returns the callee's output verbatim. The result is 0x-prefixed
// hex and always ends in the fixed 12-byte epilogue.
func JitBytecode(data string) (string, error) {
	in, err := hexToBytes(data)
	if err != nil {
		return "", err
	}

	return bytesToHex(jitBytecode(in)), nil
}

func jitBytecode(original []byte) []byte {
	originalLen := len(original)

	// Right-align the 4-byte selector in the first 32-byte slot to improve
	// word alignment of the ABI-encoded arguments that follow.
	padding := 0
	buf := original
	if originalLen >= 4 {
		padding = 32 - 4
		buf = make([]byte, 0, padding+originalLen)
		buf = append(buf, make([]byte, padding)...)
		buf = append(buf, original...)
	}
	n := len(buf)
	hexData := hex.EncodeToString(original)

	s := newJitSynth()
	wordCache := make(map[string]uint64)
	wordCacheCost := make(map[string]int)

	// Seed 1 below the working values; the plan pass counts its reuses and
	// the emit pass re-issues it after the pre-pushed literals.
	s.pushNum(uint256.NewInt(1))

	for base := 0; base < n; base += 32 {
		var word [32]byte
		copy(word[:], buf[base:min(base+32, n)])

		segs := nonZeroSegments(&word)
		if len(segs) == 0 {
			continue
		}

		literal := word[segs[0].start:]
		literalCost := 1 + len(literal)
		baseSize := wordBaseSize(base)
		wordHex := hex.EncodeToString(word[:])

		if literalCost > 8 {
			if prior, ok := wordCache[wordHex]; ok {
				if literalCost > wordCacheCost[wordHex]+baseSize {
					// The word is already in memory; copying it costs an
					// MLOAD/MSTORE pair plus two offset pushes.
					s.recordNum(uint256.NewInt(prior))
					s.recordOp(opMload)
					s.recordNum(uint256.NewInt(uint64(base)))
					s.recordOp(opMstore)
					continue
				}
			} else if wordCacheCost[wordHex] != -1 {
				// First sighting: record the base, and cost the entry for
				// reuse when it would amortise, otherwise poison the cost
				// (-1) for good. A poisoned entry keeps its base, so a later
				// sighting still copies it from memory. Occurrences are
				// counted over the whole input hex, so differently aligned
				// repeats still count.
				reuseCost := baseSize + 3
				freq := strings.Count(hexData, wordHex)
				if freq*32 > freq*reuseCost {
					wordCacheCost[wordHex] = reuseCost
				} else {
					wordCacheCost[wordHex] = -1
				}
				wordCache[wordHex] = uint64(base)
			}
		}

		singleBytes := true
		for _, sg := range segs {
			if sg.start != sg.end {
				singleBytes = false
				break
			}
		}

		switch {
		case s.literalLive(literal):
			s.recordBytes(literal)

		case singleBytes:
			// Isolated bytes go straight to memory; no word-level MSTORE.
			for _, sg := range segs {
				s.recordNum(uint256.NewInt(uint64(word[sg.start])))
				s.recordNum(uint256.NewInt(uint64(base + sg.start)))
				s.recordOp(opMstore8)
			}
			continue

		case literalCost <= estShlCost(segs):
			s.recordBytes(literal)

		default:
			// Build the word segment by segment: push, shift into place, OR
			// into the accumulator.
			first := true
			for _, sg := range segs {
				suffix := 31 - sg.end
				s.recordBytes(word[sg.start : sg.end+1])
				if suffix > 0 {
					s.recordNum(uint256.NewInt(uint64(suffix * 8)))
					s.recordOp(opShl)
				}
				if !first {
					s.recordOp(opOr)
				}
				first = false
			}
		}

		s.recordNum(uint256.NewInt(uint64(base)))
		s.recordOp(opMstore)
	}

	// Emit pass: fresh machine, pre-pushed frequent literals, then the plan.
	s.reset()
	for _, cand := range s.preCandidates(preTopK) {
		v := cand
		s.pushNum(&v)
	}
	s.pushNum(uint256.NewInt(1))
	s.replay()

	// CALL argument block: retSize, retOffset, argsSize, argsOffset. The
	// epilogue supplies value, address and gas.
	s.addOp(opPush0, nil)
	s.addOp(opPush0, nil)
	s.pushNum(uint256.NewInt(uint64(originalLen)))
	s.pushNum(uint256.NewInt(uint64(padding)))

	return append(s.bytecode(), jitEpilogue...)
}

// nonZeroSegments returns the maximal non-zero runs of word in order.
func nonZeroSegments(word *[32]byte) []wordSegment {
	var segs []wordSegment

	for i := 0; i < len(word); {
		for i < len(word) && word[i] == 0 {
			i++
		}
		if i >= len(word) {
			break
		}

		start := i
		for i < len(word) && word[i] != 0 {
			i++
		}
		segs = append(segs, wordSegment{start: start, end: i - 1})
	}

	return segs
}

// estShlCost estimates the byte cost of building a word from its segments
// with PUSH/SHL/OR: each segment costs a push of its bytes, a shift when
// zeros follow it inside the word, and an OR for every segment after the
// first.
func estShlCost(segs []wordSegment) int {
	cost := 0
	first := true

	for _, sg := range segs {
		cost += 1 + (sg.end - sg.start + 1)
		if 31-sg.end > 0 {
			cost += 3 // PUSH1, shift amount, SHL
		}
		if !first {
			cost++
		}
		first = false
	}

	return cost
}

// wordBaseSize is the byte width of base as a minimal big-endian push
// immediate, with zero costed as one byte.
func wordBaseSize(base int) int {
	if base == 0 {
		return 1
	}

	return (bits.Len(uint(base)) + 7) / 8
}
