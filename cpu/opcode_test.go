package cpu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDecodeTotal(t *testing.T) {
	assert := assert.New(t)

	for code := range 256 {
		b0 := byte(code)
		program := []byte{b0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x11, 0x22, 0x33}

		ins, size := DecodeAt(program, 0)
		assert.Equal(ins.Size(), size, "%02x", b0)

		if b0 < OPCODE_ALU {
			assert.Equal(CodeClass(b0>>4), ins.Class, "%02x", b0)
			assert.False(ins.Class.Alu())
		} else {
			assert.True(ins.Class.Alu(), "%02x", b0)
			assert.Equal(CodeOp(b0&OP_MASK), ins.Op, "%02x", b0)
			assert.Equal(b0&OPCODE_WIDE != 0, ins.Class.Wide(), "%02x", b0)
			assert.Equal(uint8(1), ins.A)
			assert.Equal(uint8(2), ins.B)
		}
	}
}

func TestDecode(t *testing.T) {
	table := [](struct {
		data []byte
		ins  Instruction
	}){
		{[]byte{0x03}, Instruction{Class: CLASS_OUTPUT, A: 3}},
		{[]byte{0x1f}, Instruction{Class: CLASS_OUTPUTW, A: 15}},
		{[]byte{0x21, 0x01, 0x00}, Instruction{Class: CLASS_LOADMEM, A: 1, Addr: 0x100}},
		{[]byte{0x3a, 0xff, 0xfe}, Instruction{Class: CLASS_LOADMEMW, A: 10, Addr: 0xfffe}},
		{[]byte{0x45, 0x00, 0x10}, Instruction{Class: CLASS_STOREMEM, A: 5, Addr: 0x10}},
		{[]byte{0x56, 0x00, 0x10}, Instruction{Class: CLASS_STOREMEMW, A: 6, Addr: 0x10}},
		{[]byte{0x6f, 0x12, 0x34}, Instruction{Class: CLASS_JMP, Addr: 0x1234}},
		{[]byte{0x77, 0x00, 0x05}, Instruction{Class: CLASS_JO, A: 7, Addr: 5}},
		{[]byte{0x90, 0x12}, Instruction{Class: CLASS_OP, Op: OP_ADDM, A: 1, B: 2}},
		{[]byte{0xb0, 0x12}, Instruction{Class: CLASS_OPW, Op: OP_ADDM, A: 1, B: 2}},
		{[]byte{0xd0, 0x12, 0, 0, 0, 5}, Instruction{Class: CLASS_OPIMM, Op: OP_ADDM, A: 1, B: 2, Imm: 5}},
		{[]byte{0xf0, 0x12, 0, 0, 0, 0, 0, 0, 1, 5}, Instruction{Class: CLASS_OPIMMW, Op: OP_ADDM, A: 1, B: 2, Imm: 0x105}},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, Instruction{Class: CLASS_OPIMMW, Op: OP_NE, A: 15, B: 15, Imm: 0xffffffff_ffffffff}},
	}

	for _, entry := range table {
		ins, size := DecodeAt(entry.data, 0)
		if diff := cmp.Diff(entry.ins, ins); diff != "" {
			t.Errorf("% x: (-want +got)\n%s", entry.data, diff)
		}
		assert.Equal(t, len(entry.data), size)

		again, _ := DecodeAt(ins.Encode(), 0)
		assert.Equal(t, ins, again, "% x", entry.data)
	}
}

func TestDecodeAtWrap(t *testing.T) {
	assert := assert.New(t)

	// loadmem r1, with its address split across the end of the program.
	program := []byte{0x00, 0x01, 0x21}

	ins, size := DecodeAt(program, 2)
	assert.Equal(3, size)
	assert.Equal(Instruction{Class: CLASS_LOADMEM, A: 1, Addr: 0x0001}, ins)

	// A program shorter than its only instruction reuses its own bytes.
	ins, size = DecodeAt([]byte{0xd0}, 0)
	assert.Equal(6, size)
	assert.Equal(CLASS_OPIMM, ins.Class)
	assert.Equal(uint8(0xd), ins.A)
	assert.Equal(uint8(0x0), ins.B)
	assert.Equal(uint64(0xd0d0d0d0), ins.Imm)
}

func TestEncodeRoundTrip(t *testing.T) {
	table := []Instruction{
		{Class: CLASS_OUTPUT, A: 0},
		{Class: CLASS_OUTPUTW, A: 9},
		{Class: CLASS_LOADMEM, A: 15, Addr: 0xffff},
		{Class: CLASS_STOREMEMW, A: 2, Addr: 0x8000},
		{Class: CLASS_JMP, Addr: 42},
		{Class: CLASS_JO, A: 4, Addr: 3},
		{Class: CLASS_OP, Op: OP_COPY, A: 0, B: 0},
		{Class: CLASS_OPW, Op: OP_POWC, A: 3, B: 12},
		{Class: CLASS_OPIMM, Op: OP_SHL, A: 8, B: 1, Imm: 0xdeadbeef},
		{Class: CLASS_OPIMMW, Op: OP_NE, A: 15, B: 14, Imm: 0x0123456789abcdef},
	}

	for _, ins := range table {
		data := ins.Encode()
		assert.Equal(t, ins.Size(), len(data), "%v", ins)

		got, size := DecodeAt(data, 0)
		assert.Equal(t, len(data), size)
		if diff := cmp.Diff(ins, got); diff != "" {
			t.Errorf("%v: (-want +got)\n%s", ins, diff)
		}
	}
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		ins  Instruction
		text string
	}){
		{Instruction{Class: CLASS_OUTPUT, A: 3}, "output r3"},
		{Instruction{Class: CLASS_OUTPUTW, A: 15}, "outputw r15"},
		{Instruction{Class: CLASS_JMP, Addr: 0xfffb}, "jmp -5"},
		{Instruction{Class: CLASS_JO, A: 1, Addr: 4}, "jo r1 4"},
		{Instruction{Class: CLASS_LOADMEMW, A: 2, Addr: 100}, "loadmemw r2 100"},
		{Instruction{Class: CLASS_OP, Op: OP_ADDM, A: 1, B: 2}, "addm r1 r2"},
		{Instruction{Class: CLASS_OPW, Op: OP_XOR, A: 1, B: 2}, "xorw r1 r2"},
		{Instruction{Class: CLASS_OPIMM, Op: OP_SHR, A: 1, B: 2, Imm: 7}, "shrimm r1 r2 7"},
		{Instruction{Class: CLASS_OPIMMW, Op: OP_ADDM, A: 1, B: 2, Imm: 5}, "addmimmw r1 r2 5"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.ins.String())
	}

	assert.Equal("opimmw", CLASS_OPIMMW.String())
	assert.Equal("CodeClass(12)", CodeClass(12).String())
}
