package cpu

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/ezrec/lemurs/internal"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Offset    int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled, or disassembled, binary program.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode containing the byte at offset.
func (prog *Program) Debug(offset int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if offset >= op.Offset && offset < op.Offset+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  offset - op.Offset,
			}
			break
		}
	}

	return
}

// Bytes returns an iterator over the program bytes.
func (prog *Program) Bytes() iter.Seq[byte] {
	seqs := make([]iter.Seq[byte], 0, len(prog.Opcodes))
	for _, op := range prog.Opcodes {
		seqs = append(seqs, slices.Values(op.Bytes))
	}

	return internal.IterSeqConcat(seqs...)
}

// Binary returns the program as machine memory.
func (prog *Program) Binary() (bin []byte) {
	return slices.AppendSeq(bin, prog.Bytes())
}

// Listing writes one line per opcode: offset, bytes and source text.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "%04x: %-30s %v\n", op.Offset, fmt.Sprintf("% x", op.Bytes), strings.Join(op.Words, " "))
		if err != nil {
			return
		}
	}

	return
}

// Disassemble decodes a binary by linear sweep from offset 0.
//
// The final instruction may wrap past the end of the binary, exactly as
// the machine would fetch it. Its Words describe the wrapped instruction,
// but its Bytes stop at the end of the binary, so Binary() returns bin.
func Disassemble(bin []byte) (prog *Program) {
	prog = &Program{}

	for offset := 0; offset < len(bin); {
		ins, size := DecodeAt(bin, offset)
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: len(prog.Opcodes) + 1,
			Offset: offset,
			Words:  strings.Fields(ins.String()),
			Bytes:  slices.Clone(bin[offset:min(offset+size, len(bin))]),
		})
		offset += size
	}

	return
}
