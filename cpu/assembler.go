// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates, updated for every line.
var sysEquate = map[string]string{
	"LINENO": "0", // Current source line.
	"HERE":   "0", // Byte offset of the current line.
}

// classMap maps the fixed mnemonics. All other mnemonics are operations.
var classMap = func() map[string]CodeClass {
	m := make(map[string]CodeClass, CLASS_JO+1)
	for class := CLASS_OUTPUT; class <= CLASS_JO; class++ {
		m[class.String()] = class
	}
	return m
}()

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler is a two pass assembler for the lemurs machine.
//
// The first pass encodes each line, reserving two zero bytes for every
// address given as a label. The second pass patches the label offsets in.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string
	Label     map[string]int    // Map of labels to byte offsets.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing one for
// subsequent calls to Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// currentOffset gets the byte offset of the next opcode.
func (asm *Assembler) currentOffset() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Offset + len(last.Bytes)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or mnemonics.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// parseLine splits a comment-free line into words, handling expressions,
// label definitions, equate definitions, and equate substitution.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%d", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("%d", asm.currentOffset())

	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if len(label) == 0 || isNumeric(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentOffset()
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	// .equ NAME VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// Parse assembles an input stream into a Program.
//
// Assembly is all or nothing: on error the returned program is nil.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	asm.Label = make(map[string]int, 16)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err == nil {
			err = asm.parseWords(words, lineno)
		}
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		offset, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = &ErrSyntax{LineNo: op.LineNo, Line: strings.Join(op.Words, " "), Err: ErrLabelMissing(op.LinkLabel)}
			return
		}
		if offset > 0xffff {
			err = &ErrSyntax{LineNo: op.LineNo, Line: strings.Join(op.Words, " "), Err: ErrLabelRange(op.LinkLabel)}
			return
		}
		if asm.Verbose {
			log.Printf("%v: link %v = %04x", op.LineNo, op.LinkLabel, offset)
		}
		binary.BigEndian.PutUint16(op.Bytes[1:3], uint16(offset))
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// isNumeric returns true if the word can only be read as a number.
func isNumeric(word string) bool {
	switch word[0] {
	case '-', '+', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

// register parses a register operand, 'r0' through 'r15'.
func register(word string) (reg uint8, err error) {
	num, ok := strings.CutPrefix(word, "r")
	if !ok {
		err = ErrRegisterInvalid
		return
	}
	value, err := strconv.ParseUint(num, 10, 8)
	if err != nil || value >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	reg = uint8(value)
	return
}

// address parses an address operand: a signed 16-bit decimal literal, or a
// label to be linked in the second pass.
func address(word string) (addr uint16, label string, err error) {
	if !isNumeric(word) {
		label = word
		return
	}

	value, err := strconv.ParseInt(word, 10, 16)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	addr = uint16(int16(value))
	return
}

// immediate parses a decimal immediate of the given bit width, with an
// optional sign. Negative values are stored in two's complement.
func immediate(word string, width int) (imm uint64, err error) {
	imm, err = strconv.ParseUint(strings.TrimPrefix(word, "+"), 10, width)
	if err == nil {
		return
	}

	value, err := strconv.ParseInt(word, 10, width)
	if err != nil || value >= 0 {
		err = ErrParseNumber(word)
		return
	}

	imm = uint64(value)
	if width < 64 {
		imm &= (1 << width) - 1
	}
	return
}

// parseWords encodes the words of a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	var ins Instruction
	var label string

	mnemonic, args := words[0], words[1:]

	if strings.HasPrefix(mnemonic, ".") {
		err = ErrOpcodeInvalid
		return
	}

	want := 0
	class, fixed := classMap[mnemonic]
	if fixed {
		ins.Class = class
		switch class {
		case CLASS_OUTPUT, CLASS_OUTPUTW, CLASS_JMP:
			want = 1
		default:
			want = 2
		}
	} else {
		name, wide := strings.CutSuffix(mnemonic, "w")
		name, imm := strings.CutSuffix(name, "imm")
		op, ok := ParseOp(name)
		if !ok {
			err = ErrOperation(mnemonic)
			return
		}
		ins.Op = op
		switch {
		case wide && imm:
			ins.Class = CLASS_OPIMMW
		case wide:
			ins.Class = CLASS_OPW
		case imm:
			ins.Class = CLASS_OPIMM
		default:
			ins.Class = CLASS_OP
		}
		want = 2
		if imm {
			want = 3
		}
	}

	if len(args) < want {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > want {
		err = ErrOpcodeExtraArgs
		return
	}

	switch ins.Class {
	case CLASS_JMP:
		ins.Addr, label, err = address(args[0])
	case CLASS_OUTPUT, CLASS_OUTPUTW:
		ins.A, err = register(args[0])
	case CLASS_LOADMEM, CLASS_LOADMEMW, CLASS_STOREMEM, CLASS_STOREMEMW, CLASS_JO:
		ins.A, err = register(args[0])
		if err != nil {
			return
		}
		ins.Addr, label, err = address(args[1])
	default:
		ins.A, err = register(args[0])
		if err != nil {
			return
		}
		ins.B, err = register(args[1])
		if err != nil {
			return
		}
		switch ins.Class {
		case CLASS_OPIMM:
			ins.Imm, err = immediate(args[2], 32)
		case CLASS_OPIMMW:
			ins.Imm, err = immediate(args[2], 64)
		}
	}
	if err != nil {
		return
	}

	asm.Opcode = append(asm.Opcode, Opcode{
		LineNo:    lineno,
		Offset:    asm.currentOffset(),
		Words:     words,
		Bytes:     ins.Encode(),
		LinkLabel: label,
	})

	return
}
