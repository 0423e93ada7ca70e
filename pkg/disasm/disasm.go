// Package disasm is a thin pretty-printer over decoded instructions,
// adapted from the teacher's Disassemble helper: given a raw word it
// decodes it and renders one line, for tools that want to inspect code
// without executing it.
package disasm

import (
	"fmt"

	"github.com/klenin/rv32i/pkg/isa"
)

// Line decodes word and renders it as one disassembly line, or reports
// the decode failure inline rather than returning an error -- callers of
// this package (the disasm CLI subcommand) want a line per word
// regardless of whether that word decodes, the same way the teacher's
// Disassemble always returns a string.
func Line(addr uint32, word uint32) string {
	in, err := isa.Decode(word)
	if err != nil {
		return fmt.Sprintf("%08x:  %08x  (illegal)", addr, word)
	}
	return fmt.Sprintf("%08x:  %08x  %s", addr, word, in)
}

// Segment renders one line per 4-byte-aligned word in code, whose first
// byte is loaded at base.
func Segment(base uint32, code []byte) []string {
	lines := make([]string, 0, len(code)/4)
	for off := 0; off+4 <= len(code); off += 4 {
		word := uint32(code[off]) | uint32(code[off+1])<<8 | uint32(code[off+2])<<16 | uint32(code[off+3])<<24
		lines = append(lines, Line(base+uint32(off), word))
	}
	return lines
}
