package emulator

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lemurs/cpu"
	"github.com/ezrec/lemurs/io"
)

func newEmulator(t *testing.T, program ...string) (emu *Emulator) {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	emu, err = NewEmulator(prog)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu, err := NewEmulator(&cpu.Program{})
	assert.ErrorIs(err, cpu.ErrMemoryEmpty)
	assert.Nil(emu)

	emu = newEmulator(t, "output r0")
	assert.False(emu.Verbose)
	assert.Equal(STEPS_PER_TICK, emu.StepsPerTick)
	assert.Equal([]byte{0x00}, emu.Cpu.Memory)

	defines := maps.Collect(emu.Defines())
	assert.Equal("2048", defines["STEPS_PER_TICK"])
	assert.Equal("16", defines["REGISTER_COUNT"])
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, "output r0")
	emu.StepsPerTick = 10
	emu.StepLimit = 25

	output := &bytes.Buffer{}
	emu.Tape.Output = output

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(10, emu.Cpu.Ticks)

	done, err = emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(25, emu.Cpu.Ticks)
	assert.Equal(25, emu.Tape.Written)
	assert.Equal(25, output.Len())

	// Ticking past the limit does nothing.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(25, emu.Cpu.Ticks)
}

func TestEmulatorOutputLimit(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, "output r0")
	emu.StepsPerTick = 4
	emu.OutputLimit = 7

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(8, emu.Tape.Written)
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t,
		"loop: output r0",
		"addmimm r0 r0 1",
		"jmp loop",
	)
	emu.StepsPerTick = 30
	emu.StepLimit = 100

	output := &bytes.Buffer{}
	emu.Tape.Output = output

	err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(100, emu.Cpu.Ticks)
	assert.Equal(34, output.Len())
	assert.Equal([]byte{0, 1, 2, 3}, output.Bytes()[:4])
}

func TestEmulatorRunCancel(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, "loop: jmp loop")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(0, emu.Cpu.Ticks)
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t,
		"copyimm r0 r0 65",
		"loop: output r0",
		"jmp loop",
	)
	assert.Equal(1, emu.LineNo())

	emu.Tape.Output = &io.Buffer{Capacity: 3}

	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, io.ErrChannelFull)

	var re *ErrRuntime
	if assert.True(errors.As(err, &re)) {
		assert.Equal(2, re.LineNo)
		assert.Equal(6, re.Offset)
		assert.Contains(re.Error(), "line 2")
	}
	assert.Equal(3, emu.Tape.Written)
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t,
		"; setup",
		"copyimm r0 r0 65",
		"",
		"loop: output r0",
		"jmp loop",
	)
	emu.StepsPerTick = 1

	lines := []int{}
	for range 5 {
		lines = append(lines, emu.LineNo())
		_, err := emu.Tick()
		assert.NoError(err)
	}
	assert.Equal([]int{2, 4, 5, 4, 5}, lines)
}

func TestEmulatorReset(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t,
		"storemem r0 0",
		"output r1",
	)
	emu.StepsPerTick = 2

	_, err := emu.Tick()
	assert.NoError(err)
	assert.Equal(byte(0x00), emu.Cpu.Memory[0])
	assert.Equal(1, emu.Tape.Written)

	emu.Reset()
	assert.Equal(byte(0x40), emu.Cpu.Memory[0])
	assert.Equal(0, emu.Cpu.Ticks)
	assert.Equal(0, emu.Cpu.Pc)
	assert.Equal(0, emu.Tape.Written)
}

func TestEmulatorPreview(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t,
		"loop: output r0",
		"addmimm r0 r0 1",
		"jmp loop",
	)

	data, err := emu.Preview(5, 100)
	assert.NoError(err)
	assert.Equal([]byte{0, 1, 2, 3, 4}, data)
	assert.Equal(0, emu.Tape.Written)

	data, err = emu.Preview(0, 100)
	assert.NoError(err)
	assert.Nil(data)
}

func TestEmulatorPreviewPadded(t *testing.T) {
	assert := assert.New(t)

	emu := newEmulator(t, "loop: jmp loop")
	emu.StepsPerTick = 16

	data, err := emu.Preview(4, 3)
	assert.NoError(err)
	assert.Equal([]byte{0, 0, 0, 0}, data)
	assert.Equal(48, emu.Cpu.Ticks)
}
