package cpu

import (
	"encoding/binary"
	"fmt"
)

// CodeClass is the instruction family selected by the opcode byte.
//
//go:generate go tool stringer -linecomment -type=CodeClass
type CodeClass int

const (
	CLASS_OUTPUT    = CodeClass(0)  // output
	CLASS_OUTPUTW   = CodeClass(1)  // outputw
	CLASS_LOADMEM   = CodeClass(2)  // loadmem
	CLASS_LOADMEMW  = CodeClass(3)  // loadmemw
	CLASS_STOREMEM  = CodeClass(4)  // storemem
	CLASS_STOREMEMW = CodeClass(5)  // storememw
	CLASS_JMP       = CodeClass(6)  // jmp
	CLASS_JO        = CodeClass(7)  // jo
	CLASS_OP        = CodeClass(8)  // op
	CLASS_OPW       = CodeClass(9)  // opw
	CLASS_OPIMM     = CodeClass(10) // opimm
	CLASS_OPIMMW    = CodeClass(11) // opimmw
)

// Opcode byte layout of the extended ALU family.
const (
	OPCODE_ALU  = 0b1000_0000 // Set for every ALU opcode.
	OPCODE_WIDE = 0b0010_0000 // 64-bit operands.
	OPCODE_IMM  = 0b0100_0000 // Second operand is an immediate.
)

// Alu returns true for the extended ALU families.
func (class CodeClass) Alu() bool {
	return class >= CLASS_OP && class <= CLASS_OPIMMW
}

// Wide returns true if the family operates on 64-bit registers.
func (class CodeClass) Wide() bool {
	switch class {
	case CLASS_OUTPUTW, CLASS_LOADMEMW, CLASS_STOREMEMW, CLASS_OPW, CLASS_OPIMMW:
		return true
	}
	return false
}

// Addressed returns true if the family carries a 16-bit memory address.
func (class CodeClass) Addressed() bool {
	return class >= CLASS_LOADMEM && class <= CLASS_JO
}

// Instruction is a single decoded instruction.
//
// Fields not used by the instruction family are zero.
type Instruction struct {
	Class CodeClass
	Op    CodeOp // ALU operation.
	A     uint8  // First register id, 0..15.
	B     uint8  // Second register id, 0..15.
	Addr  uint16 // Memory or jump address.
	Imm   uint64 // Immediate operand; only the low 32 bits for CLASS_OPIMM.
}

// Size returns the number of bytes in the encoding of the instruction.
func (ins Instruction) Size() int {
	switch ins.Class {
	case CLASS_OUTPUT, CLASS_OUTPUTW:
		return 1
	case CLASS_OP, CLASS_OPW:
		return 2
	case CLASS_OPIMM:
		return 2 + 4
	case CLASS_OPIMMW:
		return 2 + 8
	default:
		return 3
	}
}

// Decode reads one instruction from a stream of bytes.
//
// Decoding is total: every opcode byte yields an instruction, and next is
// called exactly Size() times.
func Decode(next func() byte) (ins Instruction) {
	b0 := next()
	hi, lo := b0>>4, b0&0xf

	if hi&0b1000 == 0 {
		ins.Class = CodeClass(hi)
		switch ins.Class {
		case CLASS_OUTPUT, CLASS_OUTPUTW:
			ins.A = lo
		case CLASS_JMP:
			ins.Addr = binary.BigEndian.Uint16([]byte{next(), next()})
		default:
			ins.A = lo
			ins.Addr = binary.BigEndian.Uint16([]byte{next(), next()})
		}
		return
	}

	ins.Op = CodeOp(b0 & OP_MASK)
	switch {
	case b0&OPCODE_IMM == 0 && b0&OPCODE_WIDE == 0:
		ins.Class = CLASS_OP
	case b0&OPCODE_IMM == 0:
		ins.Class = CLASS_OPW
	case b0&OPCODE_WIDE == 0:
		ins.Class = CLASS_OPIMM
	default:
		ins.Class = CLASS_OPIMMW
	}

	ab := next()
	ins.A, ins.B = ab>>4, ab&0xf

	switch ins.Class {
	case CLASS_OPIMM:
		var imm [4]byte
		for n := range imm {
			imm[n] = next()
		}
		ins.Imm = uint64(binary.BigEndian.Uint32(imm[:]))
	case CLASS_OPIMMW:
		var imm [8]byte
		for n := range imm {
			imm[n] = next()
		}
		ins.Imm = binary.BigEndian.Uint64(imm[:])
	}

	return
}

// DecodeAt decodes the instruction at offset, wrapping around the end of
// the program. Returns the instruction and its encoded size.
func DecodeAt(program []byte, offset int) (ins Instruction, size int) {
	ins = Decode(func() byte {
		b := program[offset%len(program)]
		offset++
		size++
		return b
	})
	return
}

// Encode returns the canonical encoding of the instruction.
func (ins Instruction) Encode() []byte {
	return ins.AppendEncode(make([]byte, 0, ins.Size()))
}

// AppendEncode appends the canonical encoding of the instruction to data.
func (ins Instruction) AppendEncode(data []byte) []byte {
	reg := ins.A & 0xf

	switch ins.Class {
	case CLASS_OUTPUT, CLASS_OUTPUTW:
		return append(data, byte(ins.Class)<<4|reg)
	case CLASS_JMP:
		return binary.BigEndian.AppendUint16(append(data, byte(ins.Class)<<4), ins.Addr)
	case CLASS_LOADMEM, CLASS_LOADMEMW, CLASS_STOREMEM, CLASS_STOREMEMW, CLASS_JO:
		return binary.BigEndian.AppendUint16(append(data, byte(ins.Class)<<4|reg), ins.Addr)
	}

	opcode := byte(OPCODE_ALU) | byte(ins.Op&OP_MASK)
	if ins.Class == CLASS_OPW || ins.Class == CLASS_OPIMMW {
		opcode |= OPCODE_WIDE
	}
	if ins.Class == CLASS_OPIMM || ins.Class == CLASS_OPIMMW {
		opcode |= OPCODE_IMM
	}

	data = append(data, opcode, reg<<4|(ins.B&0xf))

	switch ins.Class {
	case CLASS_OPIMM:
		data = binary.BigEndian.AppendUint32(data, uint32(ins.Imm))
	case CLASS_OPIMMW:
		data = binary.BigEndian.AppendUint64(data, ins.Imm)
	}

	return data
}

// Mnemonic returns the assembler mnemonic of the instruction.
func (ins Instruction) Mnemonic() string {
	switch ins.Class {
	case CLASS_OP:
		return ins.Op.String()
	case CLASS_OPW:
		return ins.Op.String() + "w"
	case CLASS_OPIMM:
		return ins.Op.String() + "imm"
	case CLASS_OPIMMW:
		return ins.Op.String() + "immw"
	}
	return ins.Class.String()
}

// String returns the assembly language representation of the instruction.
// Addresses are rendered as signed 16-bit values, so the text can be
// assembled back into the same encoding.
func (ins Instruction) String() string {
	name := ins.Mnemonic()

	switch ins.Class {
	case CLASS_OUTPUT, CLASS_OUTPUTW:
		return fmt.Sprintf("%v r%d", name, ins.A)
	case CLASS_JMP:
		return fmt.Sprintf("%v %d", name, int16(ins.Addr))
	case CLASS_OP, CLASS_OPW:
		return fmt.Sprintf("%v r%d r%d", name, ins.A, ins.B)
	case CLASS_OPIMM, CLASS_OPIMMW:
		return fmt.Sprintf("%v r%d r%d %d", name, ins.A, ins.B, ins.Imm)
	}

	return fmt.Sprintf("%v r%d %d", name, ins.A, int16(ins.Addr))
}
