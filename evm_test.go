package ethzip

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// miniEVM is a test-only interpreter for the straight-line opcode subset the
// jit synthesizer emits, plus what the echo contract needs. It models
// memory, calldata, returndata and nested CALLs, but no gas accounting, no
// jumps and no storage.
type miniEVM struct {
	code map[common.Address][]byte
}

// echoBytecode returns whatever calldata it receives:
// CALLDATASIZE PUSH0 PUSH0 CALLDATACOPY CALLDATASIZE PUSH0 RETURN.
var echoBytecode = []byte{
	opCalldataSize, opPush0, opPush0, opCalldataCopy,
	opCalldataSize, opPush0, opReturn,
}

func newMiniEVM() *miniEVM {
	return &miniEVM{code: make(map[common.Address][]byte)}
}

func (e *miniEVM) setCode(addr common.Address, code []byte) {
	e.code[addr] = code
}

// call executes the code at self with the given input and returns its output.
func (e *miniEVM) call(self common.Address, input []byte, depth int) ([]byte, error) {
	if depth > 8 {
		return nil, fmt.Errorf("mini evm: call depth %d exceeded", depth)
	}
	code := e.code[self]

	var (
		stack []uint256.Int
		mem   []byte
		ret   []byte
	)

	push := func(v *uint256.Int) {
		stack = append(stack, *v)
	}
	pushU := func(v uint64) {
		stack = append(stack, *uint256.NewInt(v))
	}
	pop := func() *uint256.Int {
		if len(stack) == 0 {
			panic("mini evm: stack underflow")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return &v
	}
	expand := func(end uint64) {
		end = (end + 31) &^ 31
		if end > uint64(len(mem)) {
			mem = append(mem, make([]byte, end-uint64(len(mem)))...)
		}
	}

	for pc := 0; pc < len(code); {
		op := code[pc]

		switch {
		case op == opPush0:
			pushU(0)
			pc++
			continue

		case op >= opPush1 && op <= opPush32:
			n := int(op - opPush0)
			if pc+1+n > len(code) {
				return nil, fmt.Errorf("mini evm: push immediate runs past code end at %d", pc)
			}
			var v uint256.Int
			v.SetBytes(code[pc+1 : pc+1+n])
			push(&v)
			pc += 1 + n
			continue

		case op >= opDup1 && op < opDup1+16:
			idx := int(op - opDup1)
			if idx >= len(stack) {
				panic("mini evm: dup beyond stack")
			}
			v := stack[len(stack)-1-idx]
			push(&v)
			pc++
			continue

		case op >= opSwap1 && op < opSwap1+16:
			n := int(op-opSwap1) + 1
			top := len(stack) - 1
			if n > top {
				panic("mini evm: swap beyond stack")
			}
			stack[top], stack[top-n] = stack[top-n], stack[top]
			pc++
			continue
		}

		switch op {
		case opOr:
			a, b := pop(), pop()
			var r uint256.Int
			r.Or(a, b)
			push(&r)

		case opShl:
			shift, val := pop(), pop()
			var r uint256.Int
			if shift.LtUint64(256) {
				r.Lsh(val, uint(shift.Uint64()))
			}
			push(&r)

		case opAddress:
			var v uint256.Int
			v.SetBytes(self[:])
			push(&v)

		case opCallValue:
			pushU(0)

		case opCalldataLoad:
			off := pop().Uint64()
			var word [32]byte
			for j := range word {
				if off+uint64(j) < uint64(len(input)) {
					word[j] = input[off+uint64(j)]
				}
			}
			var v uint256.Int
			v.SetBytes(word[:])
			push(&v)

		case opCalldataSize:
			pushU(uint64(len(input)))

		case opCalldataCopy:
			dest, off, size := pop().Uint64(), pop().Uint64(), pop().Uint64()
			expand(dest + size)
			for j := uint64(0); j < size; j++ {
				var b byte
				if off+j < uint64(len(input)) {
					b = input[off+j]
				}
				mem[dest+j] = b
			}

		case opReturnDataSize:
			pushU(uint64(len(ret)))

		case opReturnDataCopy:
			dest, off, size := pop().Uint64(), pop().Uint64(), pop().Uint64()
			if off+size > uint64(len(ret)) {
				return nil, fmt.Errorf("mini evm: returndatacopy out of bounds")
			}
			expand(dest + size)
			copy(mem[dest:dest+size], ret[off:off+size])

		case opMload:
			off := pop().Uint64()
			expand(off + 32)
			var v uint256.Int
			v.SetBytes(mem[off : off+32])
			push(&v)

		case opMstore:
			off, val := pop().Uint64(), pop()
			expand(off + 32)
			word := val.Bytes32()
			copy(mem[off:off+32], word[:])

		case opMstore8:
			off, val := pop().Uint64(), pop()
			expand(off + 1)
			mem[off] = byte(val.Uint64())

		case opMsize:
			pushU(uint64(len(mem)))

		case opGas:
			pushU(1 << 32)

		case opCall:
			_, addr, _, argsOff, argsSize, retOff, retSize :=
				pop(), pop(), pop(), pop().Uint64(), pop().Uint64(), pop().Uint64(), pop().Uint64()
			expand(argsOff + argsSize)
			args := make([]byte, argsSize)
			copy(args, mem[argsOff:argsOff+argsSize])

			callee := common.Address(addr.Bytes20())
			out, err := e.call(callee, args, depth+1)
			if err != nil {
				ret = nil
				pushU(0)
				break
			}
			ret = out
			expand(retOff + retSize)
			copy(mem[retOff:retOff+retSize], out)
			pushU(1)

		case opReturn:
			off, size := pop().Uint64(), pop().Uint64()
			expand(off + size)
			out := make([]byte, size)
			copy(out, mem[off:off+size])
			return out, nil

		default:
			return nil, fmt.Errorf("mini evm: unsupported opcode %#02x at %d", op, pc)
		}
		pc++
	}

	return nil, nil
}
