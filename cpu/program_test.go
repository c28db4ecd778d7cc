package cpu

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var programSample = []string{
	"start: copyimm r0 r0 3",
	"loop: output r0",
	"submimm r0 r0 1",
	"gtimm r1 r0 0",
	"jo r1 loop",
	"storememw r2 start",
	"end: jmp end",
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, programSample...)

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(5)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(5, dbg.Index)

	dbg = prog.Debug(6)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(21)
	assert.NotNil(dbg.Opcode)
	assert.Equal(5, dbg.Opcode.LineNo)
	assert.Equal(2, dbg.Index)

	dbg = prog.Debug(22)
	assert.NotNil(dbg.Opcode)
	assert.Equal(6, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
	assert.Equal([]string{"storememw", "r2", "start"}, dbg.Opcode.Words)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, "output r0")

	dbg := prog.Debug(10)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(-1)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, programSample...)

	assert.Equal([]byte{
		0xc0, 0x00, 0, 0, 0, 3,
		0x00,
		0xd2, 0x00, 0, 0, 0, 1,
		0xda, 0x10, 0, 0, 0, 0,
		0x71, 0x00, 0x06,
		0x52, 0x00, 0x00,
		0x60, 0x00, 0x19,
	}, prog.Binary())

	var total int
	for _, op := range prog.Opcodes {
		assert.Equal(total, op.Offset)
		total += len(op.Bytes)
	}
	assert.Equal(total, len(prog.Binary()))
}

func TestProgram_Bytes_EarlyReturn(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, programSample...)

	var got []byte
	for b := range prog.Bytes() {
		got = append(got, b)
		if len(got) == 7 {
			break
		}
	}
	assert.Equal(prog.Binary()[:7], got)
}

func TestProgram_Bytes_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	assert.Equal(0, len(slices.Collect(prog.Bytes())))
	assert.Nil(prog.Binary())
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"output r0",
		"loop: addmimm r1 r2 5",
		"jmp loop",
	)

	var text strings.Builder
	err := prog.Listing(&text)
	assert.NoError(err)

	lines := strings.Split(strings.TrimSuffix(text.String(), "\n"), "\n")
	assert.Equal(3, len(lines))
	assert.Equal("0000: 00"+strings.Repeat(" ", 29)+"output r0", lines[0])
	assert.True(strings.HasPrefix(lines[1], "0001: d0 12 00 00 00 05"), lines[1])
	assert.True(strings.HasSuffix(lines[1], " addmimm r1 r2 5"), lines[1])
	assert.True(strings.HasPrefix(lines[2], "0007: 60 00 01"), lines[2])
	assert.True(strings.HasSuffix(lines[2], " jmp loop"), lines[2])
}

func TestProgram_Disassemble(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, programSample...)
	bin := prog.Binary()

	dis := Disassemble(bin)
	assert.Equal(len(prog.Opcodes), len(dis.Opcodes))
	assert.Equal(bin, dis.Binary())
	assert.Equal([]string{"jo", "r1", "6"}, dis.Opcodes[4].Words)

	// The disassembly assembles back to the same binary.
	var source []string
	for _, op := range dis.Opcodes {
		source = append(source, strings.Join(op.Words, " "))
	}
	again := assemble(t, source...)
	assert.Equal(bin, again.Binary())
}

func TestProgram_Disassemble_Wrap(t *testing.T) {
	assert := assert.New(t)

	dis := Disassemble([]byte{0x00, 0xd0})
	assert.Equal(2, len(dis.Opcodes))
	assert.Equal([]string{"output", "r0"}, dis.Opcodes[0].Words)
	assert.Equal(1, dis.Opcodes[1].Offset)
	assert.Equal([]byte{0xd0}, dis.Opcodes[1].Bytes)
	assert.Equal([]byte{0x00, 0xd0}, dis.Binary())
	assert.Equal([]string{"addmimm", "r0", "r0", "3489714176"}, dis.Opcodes[1].Words)

	assert.Equal(0, len(Disassemble(nil).Opcodes))
}
