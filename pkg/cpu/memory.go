package cpu

import "encoding/binary"

// pageSize is the granularity at which Memory allocates backing storage.
// A flat 2^32 byte buffer is impractical on most hosts (§9's design note);
// pages are allocated lazily on first write and read as all-zero before
// that, which preserves the "flat 2^32 byte address space" contract
// without ever allocating more than the program actually touches.
const pageSize = 4096

// Memory is the RV32I byte-addressable address space. Addresses wrap
// implicitly modulo 2^32 (every address fits in a uint32, so arithmetic on
// it already wraps); reads and writes are little-endian end to end.
type Memory struct {
	pages map[uint32][]byte
}

// NewMemory returns an empty, all-zero Memory.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32][]byte)}
}

func (m *Memory) pageFor(addr uint32, alloc bool) []byte {
	base := addr &^ (pageSize - 1)
	page, ok := m.pages[base]
	if !ok {
		if !alloc {
			return nil
		}
		page = make([]byte, pageSize)
		m.pages[base] = page
	}
	return page
}

// ReadByte returns the byte at addr, or 0 if that page was never written.
func (m *Memory) ReadByte(addr uint32) byte {
	page := m.pageFor(addr, false)
	if page == nil {
		return 0
	}
	return page[addr&(pageSize-1)]
}

// WriteByte stores v at addr, allocating the backing page on demand.
func (m *Memory) WriteByte(addr uint32, v byte) {
	page := m.pageFor(addr, true)
	page[addr&(pageSize-1)] = v
}

// ReadBytes returns the n bytes starting at addr (any n >= 0; loads use
// 1, 2 or 4), handling the case where they straddle a page boundary. Callers interpret the
// result as little-endian.
func (m *Memory) ReadBytes(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = m.ReadByte(addr + uint32(i))
	}
	return out
}

// WriteBytes stores the given little-endian bytes starting at addr.
func (m *Memory) WriteBytes(addr uint32, bytes []byte) {
	for i, b := range bytes {
		m.WriteByte(addr+uint32(i), b)
	}
}

// ReadWord reads a little-endian 32-bit word at addr.
func (m *Memory) ReadWord(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m.ReadBytes(addr, 4))
}

// ReadHalf reads a little-endian 16-bit half-word at addr.
func (m *Memory) ReadHalf(addr uint32) uint16 {
	return binary.LittleEndian.Uint16(m.ReadBytes(addr, 2))
}

// WriteWord stores a little-endian 32-bit word at addr.
func (m *Memory) WriteWord(addr uint32, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	m.WriteBytes(addr, buf[:])
}

// WriteHalf stores a little-endian 16-bit half-word at addr.
func (m *Memory) WriteHalf(addr uint32, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	m.WriteBytes(addr, buf[:])
}

// LoadSegment copies src into memory starting at vaddr, used by the ELF
// loader to place a PT_LOAD segment's file contents. Any bytes between
// len(src) and the segment's p_memsz need no explicit write: an
// unwritten page already reads as zero, which is exactly §4.3's
// "p_memsz > p_filesz" tail zero-fill.
func (m *Memory) LoadSegment(vaddr uint32, src []byte) {
	m.WriteBytes(vaddr, src)
}
