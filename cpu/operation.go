package cpu

import (
	"math/bits"
)

// CodeOp is one of the 32 arithmetic and logical operations.
//
//go:generate go tool stringer -linecomment -type=CodeOp
type CodeOp int

const (
	OP_COPY     = CodeOp(0b00000) // copy
	OP_NOT      = CodeOp(0b00001) // not
	OP_NEG      = CodeOp(0b00010) // neg
	OP_REVERSE  = CodeOp(0b00011) // reverse
	OP_NUMZEROS = CodeOp(0b00100) // numzeros
	OP_NUMONES  = CodeOp(0b00101) // numones
	OP_AND      = CodeOp(0b00110) // and
	OP_OR       = CodeOp(0b00111) // or
	OP_XOR      = CodeOp(0b01000) // xor
	OP_SHL      = CodeOp(0b01001) // shl
	OP_SHLM     = CodeOp(0b01010) // shlm
	OP_SHR      = CodeOp(0b01011) // shr
	OP_SHRM     = CodeOp(0b01100) // shrm
	OP_ROTL     = CodeOp(0b01101) // rotl
	OP_ROTR     = CodeOp(0b01110) // rotr
	OP_ADDC     = CodeOp(0b01111) // addc
	OP_ADDM     = CodeOp(0b10000) // addm
	OP_SUBC     = CodeOp(0b10001) // subc
	OP_SUBM     = CodeOp(0b10010) // subm
	OP_ABSDIFF  = CodeOp(0b10011) // absdiff
	OP_MULC     = CodeOp(0b10100) // mulc
	OP_MULM     = CodeOp(0b10101) // mulm
	OP_DIV      = CodeOp(0b10110) // div
	OP_MOD      = CodeOp(0b10111) // mod
	OP_POWM     = CodeOp(0b11000) // powm
	OP_POWC     = CodeOp(0b11001) // powc
	OP_GT       = CodeOp(0b11010) // gt
	OP_GE       = CodeOp(0b11011) // ge
	OP_LT       = CodeOp(0b11100) // lt
	OP_LE       = CodeOp(0b11101) // le
	OP_EQ       = CodeOp(0b11110) // eq
	OP_NE       = CodeOp(0b11111) // ne

	OP_COUNT = 32   // Number of operations.
	OP_MASK  = 0x1f // Mask of the operation bits in an opcode.
)

var opMap = func() map[string]CodeOp {
	m := make(map[string]CodeOp, OP_COUNT)
	for n := range OP_COUNT {
		m[CodeOp(n).String()] = CodeOp(n)
	}
	return m
}()

// ParseOp looks up an operation by its mnemonic.
func ParseOp(name string) (op CodeOp, ok bool) {
	op, ok = opMap[name]
	return
}

// Apply evaluates the operation on 32-bit operands.
func (op CodeOp) Apply(a, b uint32) uint32 {
	return evaluate(op, a, b)
}

// ApplyW evaluates the operation on 64-bit operands.
func (op CodeOp) ApplyW(a, b uint64) uint64 {
	return evaluate(op, a, b)
}

type word interface {
	uint32 | uint64
}

// widthOf returns the bit width of the word type.
func widthOf[T word]() uint32 {
	return uint32(bits.OnesCount64(uint64(^T(0))))
}

// evaluate is the operation table, shared by both operand widths.
//
// Shift, rotate and power amounts are the low 32 bits of the second operand.
func evaluate[T word](op CodeOp, a, b T) (out T) {
	width := widthOf[T]()
	maxValue := ^T(0)
	amount := uint32(b)

	switch op {
	case OP_COPY:
		out = b
	case OP_NOT:
		out = ^b
	case OP_NEG:
		out = maxValue - b
	case OP_REVERSE:
		out = T(bits.Reverse64(uint64(b)) >> (64 - width))
	case OP_NUMZEROS:
		out = T(width - uint32(bits.OnesCount64(uint64(b))))
	case OP_NUMONES:
		out = T(bits.OnesCount64(uint64(b)))
	case OP_AND:
		out = a & b
	case OP_OR:
		out = a | b
	case OP_XOR:
		out = a ^ b
	case OP_SHL:
		if amount < width {
			out = a << amount
		}
	case OP_SHLM:
		out = a << (amount & (width - 1))
	case OP_SHR:
		if amount < width {
			out = a >> amount
		}
	case OP_SHRM:
		out = a >> (amount & (width - 1))
	case OP_ROTL:
		k := amount % width
		out = a<<k | a>>(width-k)
	case OP_ROTR:
		k := amount % width
		out = a>>k | a<<(width-k)
	case OP_ADDC:
		out = a + b
		if out < a {
			out = maxValue
		}
	case OP_ADDM:
		out = a + b
	case OP_SUBC:
		if b < a {
			out = a - b
		}
	case OP_SUBM:
		out = a - b
	case OP_ABSDIFF:
		if a > b {
			out = a - b
		} else {
			out = b - a
		}
	case OP_MULC:
		if a != 0 && b > maxValue/a {
			out = maxValue
		} else {
			out = a * b
		}
	case OP_MULM:
		out = a * b
	case OP_DIV:
		out = a / floorOne(b)
	case OP_MOD:
		out = a % floorOne(b)
	case OP_POWM, OP_POWC:
		// Both powers wrap; powc does not saturate.
		out = pow(a, amount)
	case OP_GT:
		out = boolWord[T](a > b)
	case OP_GE:
		out = boolWord[T](a >= b)
	case OP_LT:
		out = boolWord[T](a < b)
	case OP_LE:
		out = boolWord[T](a <= b)
	case OP_EQ:
		out = boolWord[T](a == b)
	case OP_NE:
		out = boolWord[T](a != b)
	}

	return
}

func floorOne[T word](v T) T {
	if v == 0 {
		return 1
	}
	return v
}

// pow is wrapping exponentiation by squaring.
func pow[T word](base T, exp uint32) (out T) {
	out = 1
	for exp > 0 {
		if exp&1 == 1 {
			out *= base
		}
		base *= base
		exp >>= 1
	}
	return
}

func boolWord[T word](cond bool) T {
	if cond {
		return 1
	}
	return 0
}
