// Package elf parses the small subset of the 32-bit ELF container format
// this emulator needs: a header good enough to validate the file is a
// 32-bit little-endian RISC-V executable, and the program headers that
// say which bytes to copy into memory before execution starts.
//
// This is not a general-purpose ELF library (no relocation, no dynamic
// linking, no symbol table); see the header fields copied verbatim from
// the original prototype's ph/sh layout for why section headers are
// parsed but never consulted by the VM.
package elf

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klenin/rv32i/pkg/cpu"
)

// Header field byte offsets, fixed by the ELF32 little-endian format.
const (
	offMagic      = 0x00
	offClass      = 0x04
	offData       = 0x05
	offOSABI      = 0x07
	offMachine    = 0x12
	offEntry      = 0x18
	offPhOff      = 0x1C
	offShOff      = 0x20
	offPhEntSize  = 0x2A
	offPhNum      = 0x2C
	offShEntSize  = 0x2E
	offShNum      = 0x30
	offShStrNdx   = 0x32
	headerMinSize = 0x34

	classELF32      = 1
	dataLittleEndian = 1
	machineRISCV     = 0xF3

	ptLoad = 1

	// Program-header field offsets within one e_phentsize-sized record.
	phOffType     = 0x00
	phOffOffset   = 0x04
	phOffVAddr    = 0x08
	phOffFileSize = 0x10
	phOffMemSize  = 0x14
	phOffFlags    = 0x18
)

// Errors the loader raises, per §7 of the specification.
var (
	ErrBadMagic     = errors.New("elf: bad magic number")
	ErrBadClass     = errors.New("elf: not a 32-bit ELF")
	ErrBadData      = errors.New("elf: not little-endian")
	ErrBadMachine   = errors.New("elf: not a RISC-V executable")
	ErrTruncatedELF = errors.New("elf: file truncated")
)

// ProgramHeader is one PT_* entry from the program header table.
type ProgramHeader struct {
	Type     uint32
	Offset   uint32
	VAddr    uint32
	FileSize uint32
	MemSize  uint32
	Flags    uint32
}

// SectionHeader is one section header table entry. Execution never reads
// these; they are carried on Image only so a caller (for example a future
// disassembler wanting section names) does not need to re-parse the file.
type SectionHeader struct {
	Name   uint32
	Type   uint32
	Flags  uint32
	Addr   uint32
	Offset uint32
	Size   uint32
}

// Image is the parse result of Load: the entry point the driver should
// place in PC, the program and section header tables, and the OS ABI
// byte the header carried (populated for completeness, per §3.1; not
// used by execution).
type Image struct {
	Entry   uint32
	OSABI   uint32
	Program []ProgramHeader
	Section []SectionHeader
}

// Load parses data as a 32-bit little-endian RISC-V ELF executable,
// validates its header, and copies every PT_LOAD segment into mem. It
// returns the parsed Image (primarily its Entry field) or one of the
// Err* sentinels above.
func Load(data []byte, mem *cpu.Memory) (*Image, error) {
	if len(data) < headerMinSize {
		return nil, fmt.Errorf("%w: header truncated", ErrTruncatedELF)
	}
	if !bytesEqual(data[offMagic:offMagic+4], []byte{0x7F, 'E', 'L', 'F'}) {
		return nil, ErrBadMagic
	}
	if data[offClass] != classELF32 {
		return nil, ErrBadClass
	}
	if data[offData] != dataLittleEndian {
		return nil, ErrBadData
	}
	if data[offMachine] != machineRISCV {
		return nil, ErrBadMachine
	}

	img := &Image{
		Entry: binary.LittleEndian.Uint32(data[offEntry : offEntry+4]),
		OSABI: uint32(data[offOSABI]),
	}

	phOff := binary.LittleEndian.Uint32(data[offPhOff : offPhOff+4])
	phEntSize := binary.LittleEndian.Uint16(data[offPhEntSize : offPhEntSize+2])
	phNum := binary.LittleEndian.Uint16(data[offPhNum : offPhNum+2])

	for i := uint16(0); i < phNum; i++ {
		start := uint64(phOff) + uint64(i)*uint64(phEntSize)
		end := start + uint64(phEntSize)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: program header %d out of range", ErrTruncatedELF, i)
		}
		rec := data[start:end]

		ph := ProgramHeader{
			Type:     binary.LittleEndian.Uint32(rec[phOffType : phOffType+4]),
			Offset:   binary.LittleEndian.Uint32(rec[phOffOffset : phOffOffset+4]),
			VAddr:    binary.LittleEndian.Uint32(rec[phOffVAddr : phOffVAddr+4]),
			FileSize: binary.LittleEndian.Uint32(rec[phOffFileSize : phOffFileSize+4]),
			MemSize:  binary.LittleEndian.Uint32(rec[phOffMemSize : phOffMemSize+4]),
			Flags:    binary.LittleEndian.Uint32(rec[phOffFlags : phOffFlags+4]),
		}
		img.Program = append(img.Program, ph)

		if ph.Type != ptLoad || ph.FileSize == 0 {
			continue
		}
		segEnd := uint64(ph.Offset) + uint64(ph.FileSize)
		if segEnd > uint64(len(data)) {
			return nil, fmt.Errorf("%w: segment %d extends past end of file", ErrTruncatedELF, i)
		}
		mem.LoadSegment(ph.VAddr, data[ph.Offset:segEnd])
	}

	shOff := binary.LittleEndian.Uint32(data[offShOff : offShOff+4])
	shEntSize := binary.LittleEndian.Uint16(data[offShEntSize : offShEntSize+2])
	shNum := binary.LittleEndian.Uint16(data[offShNum : offShNum+2])

	for i := uint16(0); i < shNum; i++ {
		start := uint64(shOff) + uint64(i)*uint64(shEntSize)
		end := start + uint64(shEntSize)
		if end > uint64(len(data)) || shEntSize < 0x18 {
			// Section headers are informational only (§3.1); a
			// truncated or absent section table does not fail the
			// load the way a truncated PT_LOAD segment does.
			break
		}
		rec := data[start:end]
		img.Section = append(img.Section, SectionHeader{
			Name:   binary.LittleEndian.Uint32(rec[0x00:0x04]),
			Type:   binary.LittleEndian.Uint32(rec[0x04:0x08]),
			Flags:  binary.LittleEndian.Uint32(rec[0x08:0x0C]),
			Addr:   binary.LittleEndian.Uint32(rec[0x0C:0x10]),
			Offset: binary.LittleEndian.Uint32(rec[0x10:0x14]),
			Size:   binary.LittleEndian.Uint32(rec[0x14:0x18]),
		})
	}

	return img, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
