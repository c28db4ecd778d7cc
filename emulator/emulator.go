// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/lemurs/cpu"
	"github.com/ezrec/lemurs/internal"
	"github.com/ezrec/lemurs/io"
)

const (
	STEPS_PER_TICK = 2048         // Default instructions per Tick.
	PREVIEW_LENGTH = 65536        // Default preview length in bytes.
	PREVIEW_TICKS  = 2048 * 8 * 8 // Default Tick limit of a preview.
)

var _emulator_defines = map[string]string{
	"STEPS_PER_TICK": fmt.Sprintf("%v", STEPS_PER_TICK),
	"PREVIEW_LENGTH": fmt.Sprintf("%v", PREVIEW_LENGTH),
}

// Emulator state. CPU + program listing + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Tape io.Tape // Tape output channel.

	StepsPerTick int // Instructions per Tick; STEPS_PER_TICK if zero.
	StepLimit    int // Total instructions before done; unlimited if zero.
	OutputLimit  int // Total output bytes before done; unlimited if zero.
}

// NewEmulator creates a new emulator running the binary of prog.
func NewEmulator(prog *cpu.Program) (emu *Emulator, err error) {
	machine, err := cpu.NewCpu(prog.Binary())
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:          machine,
		Program:      prog,
		StepsPerTick: STEPS_PER_TICK,
	}

	return
}

// Defines returns an iterator over the emulator and machine defines, for
// use before an emulator exists.
func Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		cpu.Defines(),
	)
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset restores the program memory, clears the machine state and rewinds
// the tape.
func (emu *Emulator) Reset() {
	copy(emu.Cpu.Memory, emu.Program.Binary())
	emu.Cpu.Reset()
	emu.Tape.Rewind()
}

// lineAt returns the source line number of the opcode at offset, or 0.
func (emu *Emulator) lineAt(offset int) int {
	dbg := emu.Program.Debug(offset)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.lineAt(emu.Cpu.Pc)
}

// stepsPerTick returns the batch size.
func (emu *Emulator) stepsPerTick() int {
	if emu.StepsPerTick <= 0 {
		return STEPS_PER_TICK
	}

	return emu.StepsPerTick
}

// run executes up to steps instructions, sending output to output.
func (emu *Emulator) run(steps int, output io.Channel) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	for range steps {
		pc := emu.Cpu.Pc
		err = emu.Cpu.Tick(output)
		if err != nil {
			err = &ErrRuntime{Offset: pc, LineNo: emu.lineAt(pc), Err: err}
			return
		}
	}

	return
}

// Tick performs a single batch of the emulator, and returns done once the
// step or output limit has been reached.
func (emu *Emulator) Tick() (done bool, err error) {
	steps := emu.stepsPerTick()

	if emu.StepLimit > 0 {
		remain := max(emu.StepLimit-emu.Cpu.Ticks, 0)
		if remain <= steps {
			steps = remain
			done = true
		}
	}

	err = emu.run(steps, &emu.Tape)
	if err != nil {
		return
	}

	if emu.OutputLimit > 0 && emu.Tape.Written >= emu.OutputLimit {
		done = true
	}

	if done && emu.Verbose {
		log.Printf("emulator: done after %d steps, %d bytes", emu.Cpu.Ticks, emu.Tape.Written)
	}

	return
}

// Run ticks the emulator until done, an error, or the context is cancelled.
// Cancellation is only observed between ticks.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

// Preview captures exactly length bytes of output from the current machine
// state. Execution stops once length bytes are captured, or after maxTicks
// ticks; a short capture is padded with zeros. The tape is not used.
func (emu *Emulator) Preview(length int, maxTicks int) (data []byte, err error) {
	if length <= 0 {
		return
	}

	buf := &io.Buffer{Capacity: length}
	buf.Rewind()

	steps := emu.stepsPerTick()
	for range maxTicks {
		err = emu.run(steps, buf)
		if errors.Is(err, io.ErrChannelFull) {
			err = nil
			break
		}
		if err != nil {
			return
		}
		if buf.Full() {
			break
		}
	}

	data = append(buf.Data, make([]byte, length-len(buf.Data))...)

	return
}
