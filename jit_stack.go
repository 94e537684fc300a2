// SPDX-License-Identifier: MIT
// Source: github.com/tadpole-labs/ethzip

package ethzip

import (
	"sort"

	"github.com/holiman/uint256"
)

// The jit synthesizer runs twice over the same plan. Pass one records typed
// plan steps while building frequency tables for every pushed value; pass
// two resets the abstract machine, pre-pushes the most recently pushed of
// the literals used more than once, and replays the plan. The abstract stack and memory model below mirror the
// semantics of each opcode the emitter uses, so the synthesizer can decide
// when a value is already live and a DUP or SWAP is cheaper than a fresh
// PUSH. All stack arithmetic is 256-bit modular.

type jitPlanKind uint8

const (
	planNum jitPlanKind = iota
	planBytes
	planOp
)

// jitPlanStep is one recorded emission: a numeric push, an immediate byte
// push, or a bare opcode.
type jitPlanStep struct {
	kind jitPlanKind
	num  uint256.Int
	data []byte
	op   byte
}

// jitSynth is the abstract machine state for one synthesizer invocation.
// Nothing escapes or persists across calls.
type jitSynth struct {
	ops  []byte
	imms [][]byte

	stack          []uint256.Int
	mem            map[uint64]uint256.Int
	trackedMemSize uint64

	// stackFreq counts outstanding pushes per value; stackCnt holds the
	// ordinal of the latest push. Both survive the reset between passes:
	// the emit pass keeps consuming the frequencies the plan pass built up.
	stackFreq   map[uint256.Int]int
	stackCnt    map[uint256.Int]int
	pushCounter int

	plan []jitPlanStep
}

func newJitSynth() *jitSynth {
	return &jitSynth{
		mem:       make(map[uint64]uint256.Int),
		stackFreq: make(map[uint256.Int]int),
		stackCnt:  make(map[uint256.Int]int),
	}
}

// reset clears the emitted program and machine state for the emit pass. The
// frequency tables and the plan are deliberately kept.
func (s *jitSynth) reset() {
	s.ops = nil
	s.imms = nil
	s.stack = nil
	s.mem = make(map[uint64]uint256.Int)
	s.trackedMemSize = 0
}

func (s *jitSynth) appendOp(op byte, imm []byte) {
	s.ops = append(s.ops, op)
	s.imms = append(s.imms, imm)
}

// pushS pushes a value on the abstract stack and bumps its bookkeeping.
// freqDelta is 1 for a plain push, -1 when the push is satisfied by a DUP,
// and 0 for MSIZE whose value is positional rather than literal.
func (s *jitSynth) pushS(v *uint256.Int, freqDelta int) {
	s.stack = append(s.stack, *v)
	s.stackFreq[*v] += freqDelta
	s.pushCounter++
	s.stackCnt[*v] = s.pushCounter
}

func (s *jitSynth) pop1() uint256.Int {
	top := len(s.stack) - 1
	v := s.stack[top]
	s.stack = s.stack[:top]
	return v
}

func (s *jitSynth) pop2() (a, b uint256.Int) {
	a = s.pop1()
	b = s.pop1()
	return a, b
}

// stackIdx returns the depth of v from the top of the abstract stack
// (0 = top), or -1 when absent.
func (s *jitSynth) stackIdx(v *uint256.Int) int {
	for j := len(s.stack) - 1; j >= 0; j-- {
		if s.stack[j].Eq(v) {
			return len(s.stack) - 1 - j
		}
	}

	return -1
}

// literalLive reports whether the value of a word literal is already
// obtainable without a full push: it is on the abstract stack, or it is one
// of the always-live sentinels (ADDRESS yields 0xE0, CALLDATASIZE yields 32).
func (s *jitSynth) literalLive(b []byte) bool {
	var v uint256.Int
	v.SetBytes(b)

	if v.CmpUint64(0xe0) == 0 || v.CmpUint64(32) == 0 {
		return true
	}

	return s.stackIdx(&v) != -1
}

func (s *jitSynth) trackMem(offset, size uint64) {
	s.trackedMemSize = (offset + size + 31) &^ 31
}

// cancelSwap1 pops a trailing SWAP1 from the emitted stream. Used as a
// peephole when SHL or OR is about to consume the top two values: a SWAP1
// that was only emitted to reorder operands for DUP reuse can be folded into
// the operand order instead.
func (s *jitSynth) cancelSwap1() bool {
	if n := len(s.ops); n > 0 && s.ops[n-1] == opSwap1 {
		s.ops = s.ops[:n-1]
		s.imms = s.imms[:n-1]
		return true
	}

	return false
}

// addOp emits one opcode while mirroring its effect on the abstract machine.
func (s *jitSynth) addOp(op byte, imm []byte) {
	switch {
	case op == opCalldataSize:
		// The host supplies a single 32-byte calldata word.
		s.pushS(uint256.NewInt(32), 1)

	case op == opMsize:
		s.pushS(uint256.NewInt(s.trackedMemSize), 0)

	case op == opShl:
		shift, val := s.pop2()
		if s.cancelSwap1() {
			shift, val = val, shift
		}
		var r uint256.Int
		if shift.LtUint64(256) {
			r.Lsh(&val, uint(shift.Uint64()))
		}
		s.pushS(&r, 1)

	case op == opOr:
		a, b := s.pop2()
		s.cancelSwap1()
		var r uint256.Int
		r.Or(&a, &b)
		s.pushS(&r, 1)

	case op == opPush0 || (op >= opPush1 && op <= opPush32):
		var v uint256.Int
		v.SetBytes(imm)

		if v.CmpUint64(0xe0) == 0 {
			// The program executes at 0x…00e0, so ADDRESS already has this
			// value on tap for one byte.
			s.pushS(&v, 1)
			s.appendOp(opAddress, nil)
			return
		}

		if idx := s.stackIdx(&v); idx != -1 && op != opPush0 {
			lastUse := s.stackFreq[v] == 0
			if idx == 0 && lastUse {
				// Already on top and never needed again: the consumer can
				// take it in place.
				s.stackFreq[v]--
				return
			}
			if idx == 1 && lastUse {
				s.appendOp(opSwap1, nil)
				top := len(s.stack) - 1
				s.stack[top], s.stack[top-1] = s.stack[top-1], s.stack[top]
				s.stackFreq[v]--
				return
			}
			s.pushS(&v, -1)
			s.appendOp(opDup1+byte(idx), nil)
			return
		}

		s.pushS(&v, 1)

	case op == opMload:
		k := s.pop1()
		val := s.mem[k.Uint64()]
		s.pushS(&val, 1)

	case op == opMstore:
		offset, value := s.pop2()
		k := offset.Uint64()
		s.mem[k] = value
		s.trackMem(k, 32)

	case op == opMstore8:
		offset, _ := s.pop2()
		s.trackMem(offset.Uint64(), 1)

	case op == opReturn:
		s.pop2()
	}

	s.appendOp(op, imm)
}

// pushNum emits the cheapest instruction that leaves value on the stack:
// MSIZE when it equals the tracked memory size, PUSH0 for zero,
// CALLDATASIZE for 32, otherwise a minimal big-endian PUSH.
func (s *jitSynth) pushNum(v *uint256.Int) {
	switch {
	case !v.IsZero() && v.IsUint64() && v.Uint64() == s.trackedMemSize:
		s.addOp(opMsize, nil)
	case v.IsZero():
		s.addOp(opPush0, nil)
	case v.CmpUint64(32) == 0:
		s.addOp(opCalldataSize, nil)
	default:
		be := v.Bytes()
		s.addOp(opPush0+byte(len(be)), be)
	}
}

// pushBytes emits a PUSH<len(b)> with b as the immediate.
func (s *jitSynth) pushBytes(b []byte) {
	s.addOp(opPush0+byte(len(b)), b)
}

// recordNum, recordBytes and recordOp append a typed step to the plan while
// executing it against the abstract machine, so the plan pass observes the
// same stack the emit pass will.
func (s *jitSynth) recordNum(v *uint256.Int) {
	s.plan = append(s.plan, jitPlanStep{kind: planNum, num: *v})
	s.pushNum(v)
}

func (s *jitSynth) recordBytes(b []byte) {
	s.plan = append(s.plan, jitPlanStep{kind: planBytes, data: b})
	s.pushBytes(b)
}

func (s *jitSynth) recordOp(op byte) {
	s.plan = append(s.plan, jitPlanStep{kind: planOp, op: op})
	s.addOp(op, nil)
}

// replay re-executes the recorded plan against the (reset) abstract machine.
func (s *jitSynth) replay() {
	for i := range s.plan {
		st := &s.plan[i]
		switch st.kind {
		case planNum:
			v := st.num
			s.pushNum(&v)
		case planBytes:
			s.pushBytes(st.data)
		case planOp:
			s.addOp(st.op, nil)
		}
	}
}

// preCandidates selects up to limit integer literals worth pre-pushing: used
// more than once, not covered by the CALLDATASIZE/ADDRESS sentinels, and at
// most 128 bits wide. Ordered by last-push ordinal, most recent first; the
// ordinal is unique per value, so the order is deterministic regardless of
// map iteration.
func (s *jitSynth) preCandidates(limit int) []uint256.Int {
	cands := make([]uint256.Int, 0, len(s.stackFreq))
	for v, freq := range s.stackFreq {
		if freq > 1 && v.CmpUint64(32) != 0 && v.CmpUint64(0xe0) != 0 && v.BitLen() <= 128 {
			cands = append(cands, v)
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		return s.stackCnt[cands[i]] > s.stackCnt[cands[j]]
	})

	if len(cands) > limit {
		cands = cands[:limit]
	}

	return cands
}

// bytecode flattens opcodes and immediates into the output byte stream.
func (s *jitSynth) bytecode() []byte {
	out := make([]byte, 0, len(s.ops)*2)
	for i, op := range s.ops {
		out = append(out, op)
		if op >= opPush1 && op <= opPush32 && len(s.imms[i]) > 0 {
			out = append(out, s.imms[i]...)
		}
	}

	return out
}
