package cpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
)

// Register file geometry.
const (
	REGISTER_FILE_SIZE = 256 // Bytes in the register file.
	REGISTER_COUNT     = 16  // Register ids addressable by an instruction.
	NARROW_BYTES       = 4   // Bytes in a narrow register.
	WIDE_BYTES         = 8   // Bytes in a wide register.
)

var _cpu_defines = map[string]string{
	"REGISTER_FILE_SIZE": fmt.Sprintf("%d", REGISTER_FILE_SIZE),
	"REGISTER_COUNT":     fmt.Sprintf("%d", REGISTER_COUNT),
	"NARROW_BYTES":       fmt.Sprintf("%d", NARROW_BYTES),
	"WIDE_BYTES":         fmt.Sprintf("%d", WIDE_BYTES),
}

// Cpu is the simulation context for a single program.
//
// Narrow register n occupies Register[n*4:n*4+4] and wide register n
// occupies Register[n*8:n*8+8], both big-endian. The two views alias the
// same storage. All memory and PC arithmetic is modulo len(Memory).
//
// A Cpu must not be used from more than one goroutine at a time.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   []byte                   // Program memory.
	Pc       int                      // Program counter, always in [0, len(Memory)).
	Register [REGISTER_FILE_SIZE]byte // Register file.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU executing a private copy of memory.
func NewCpu(memory []byte) (cpu *Cpu, err error) {
	if len(memory) == 0 {
		err = ErrMemoryEmpty
		return
	}

	cpu = &Cpu{
		Memory: slices.Clone(memory),
	}

	return
}

// Defines returns the machine geometry as assembler equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return Defines()
}

// Reset clears the registers, program counter and tick counter.
// Memory modified by stores is not restored.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	cpu.Pc = 0
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text = fmt.Sprintf("%5s: %04x\n", "pc", cpu.Pc)
	for n := range REGISTER_COUNT {
		val := cpu.ReadRegister(uint8(n))
		text += fmt.Sprintf("%5s: %04X_%04X\n", fmt.Sprintf("r%d", n), val>>16, val&0xffff)
	}
	// Wide registers below 8 overlay the narrow ones.
	for n := REGISTER_COUNT / 2; n < REGISTER_COUNT; n++ {
		val := cpu.ReadRegisterW(uint8(n))
		text += fmt.Sprintf("%5s: %08X_%08X\n", fmt.Sprintf("w%d", n), val>>32, val&0xffffffff)
	}

	return
}

// ReadRegister returns the narrow register n.
func (cpu *Cpu) ReadRegister(n uint8) uint32 {
	offset := int(n) * NARROW_BYTES
	return binary.BigEndian.Uint32(cpu.Register[offset : offset+NARROW_BYTES])
}

// WriteRegister sets the narrow register n.
func (cpu *Cpu) WriteRegister(n uint8, value uint32) {
	offset := int(n) * NARROW_BYTES
	binary.BigEndian.PutUint32(cpu.Register[offset:offset+NARROW_BYTES], value)
}

// ReadRegisterW returns the wide register n.
func (cpu *Cpu) ReadRegisterW(n uint8) uint64 {
	offset := int(n) * WIDE_BYTES
	return binary.BigEndian.Uint64(cpu.Register[offset : offset+WIDE_BYTES])
}

// WriteRegisterW sets the wide register n.
func (cpu *Cpu) WriteRegisterW(n uint8, value uint64) {
	offset := int(n) * WIDE_BYTES
	binary.BigEndian.PutUint64(cpu.Register[offset:offset+WIDE_BYTES], value)
}

// readMemory fills data from memory starting at addr, wrapping around.
func (cpu *Cpu) readMemory(addr uint16, data []byte) {
	for n := range data {
		data[n] = cpu.Memory[(int(addr)+n)%len(cpu.Memory)]
	}
}

// writeMemory stores data to memory starting at addr, wrapping around.
func (cpu *Cpu) writeMemory(addr uint16, data []byte) {
	for n, b := range data {
		cpu.Memory[(int(addr)+n)%len(cpu.Memory)] = b
	}
}

// ReadMemory returns the big-endian 32-bit value at addr.
func (cpu *Cpu) ReadMemory(addr uint16) uint32 {
	var data [NARROW_BYTES]byte
	cpu.readMemory(addr, data[:])
	return binary.BigEndian.Uint32(data[:])
}

// ReadMemoryW returns the big-endian 64-bit value at addr.
func (cpu *Cpu) ReadMemoryW(addr uint16) uint64 {
	var data [WIDE_BYTES]byte
	cpu.readMemory(addr, data[:])
	return binary.BigEndian.Uint64(data[:])
}

// WriteMemory stores a big-endian 32-bit value at addr.
func (cpu *Cpu) WriteMemory(addr uint16, value uint32) {
	var data [NARROW_BYTES]byte
	binary.BigEndian.PutUint32(data[:], value)
	cpu.writeMemory(addr, data[:])
}

// WriteMemoryW stores a big-endian 64-bit value at addr.
func (cpu *Cpu) WriteMemoryW(addr uint16, value uint64) {
	var data [WIDE_BYTES]byte
	binary.BigEndian.PutUint64(data[:], value)
	cpu.writeMemory(addr, data[:])
}

// nextByte returns the byte at the PC and advances it, wrapping to 0.
func (cpu *Cpu) nextByte() (b byte) {
	b = cpu.Memory[cpu.Pc]
	cpu.Pc++
	if cpu.Pc >= len(cpu.Memory) {
		cpu.Pc = 0
	}
	return
}

// Fetch decodes the instruction at the PC, and advances the PC past it.
func (cpu *Cpu) Fetch() Instruction {
	return Decode(cpu.nextByte)
}

// jump sets the PC to addr, modulo the memory size.
func (cpu *Cpu) jump(addr uint16) {
	cpu.Pc = int(addr) % len(cpu.Memory)
}

// Execute executes a single decoded instruction.
// The only error is one returned by the output writer.
func (cpu *Cpu) Execute(ins Instruction, output io.Writer) (err error) {
	switch ins.Class {
	case CLASS_OUTPUT:
		_, err = output.Write([]byte{byte(cpu.ReadRegister(ins.A))})
	case CLASS_OUTPUTW:
		_, err = output.Write(binary.BigEndian.AppendUint16(nil, uint16(cpu.ReadRegisterW(ins.A))))
	case CLASS_LOADMEM:
		cpu.WriteRegister(ins.A, cpu.ReadMemory(ins.Addr))
	case CLASS_LOADMEMW:
		cpu.WriteRegisterW(ins.A, cpu.ReadMemoryW(ins.Addr))
	case CLASS_STOREMEM:
		cpu.WriteMemory(ins.Addr, cpu.ReadRegister(ins.A))
	case CLASS_STOREMEMW:
		cpu.WriteMemoryW(ins.Addr, cpu.ReadRegisterW(ins.A))
	case CLASS_JMP:
		cpu.jump(ins.Addr)
	case CLASS_JO:
		if cpu.ReadRegister(ins.A)&1 == 1 {
			cpu.jump(ins.Addr)
		}
	case CLASS_OP:
		cpu.WriteRegister(ins.A, ins.Op.Apply(cpu.ReadRegister(ins.A), cpu.ReadRegister(ins.B)))
	case CLASS_OPW:
		cpu.WriteRegisterW(ins.A, ins.Op.ApplyW(cpu.ReadRegisterW(ins.A), cpu.ReadRegisterW(ins.B)))
	case CLASS_OPIMM:
		cpu.WriteRegister(ins.A, ins.Op.Apply(cpu.ReadRegister(ins.B), uint32(ins.Imm)))
	case CLASS_OPIMMW:
		cpu.WriteRegisterW(ins.A, ins.Op.ApplyW(cpu.ReadRegisterW(ins.B), ins.Imm))
	}

	cpu.Ticks++

	return
}

// Tick executes a single fetch-decode-execute cycle.
func (cpu *Cpu) Tick(output io.Writer) (err error) {
	pc := cpu.Pc
	ins := cpu.Fetch()
	if cpu.Verbose {
		log.Printf("%04x: %v", pc, ins)
	}

	return cpu.Execute(ins, output)
}

// Run executes exactly steps cycles, appending any output to output.
// State persists between calls, so Run may be called repeatedly to
// continue execution. Returns early only if output fails.
func (cpu *Cpu) Run(steps int, output io.Writer) (err error) {
	for range steps {
		err = cpu.Tick(output)
		if err != nil {
			return
		}
	}

	return
}
