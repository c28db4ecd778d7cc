// Package cpu implements the machine and assembler for the lemurs system.
//
// The machine is a byte oriented register machine. Program memory is a
// single non-empty byte buffer that is also the code; every address and the
// program counter wrap modulo its length, so any byte sequence is a valid
// program that runs forever. Sixteen narrow (32-bit) and sixteen wide
// (64-bit) registers overlay one 256 byte register file. The only branch
// is "jump if odd". Output is a raw byte stream.
//
// The assembler translates one mnemonic per line into the same binary
// encoding, resolving labels in a second pass, and supports equates and
// compile-time $(...) expressions.
package cpu
