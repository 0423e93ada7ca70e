// Package cpu implements the RV32I register file, memory, and executor:
// the mutable machine state an isa.Instruction is applied to.
package cpu

// NumRegisters is the number of addressable register-file slots: x0..x31
// plus the program counter at index PCIndex.
const NumRegisters = 33

// PCIndex is the register-file index of the program counter.
const PCIndex = 32

// Registers is the RV32I register file: 32 general-purpose words (x0..x31)
// plus the program counter, addressed through one Read/Write interface.
// x0 always reads as zero; writes to it are silently discarded. Every
// other write funnels through Write so that invariant cannot be bypassed
// by a caller reaching into the array directly.
type Registers struct {
	words [NumRegisters]uint32
}

// Read returns the current value of register i. Reading x0 (i==0) always
// yields 0.
func (r *Registers) Read(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return r.words[i]
}

// Write stores v into register i, except when i==0, which is a no-op.
func (r *Registers) Write(i uint32, v uint32) {
	if i == 0 {
		return
	}
	r.words[i] = v
}

// PC returns the program counter.
func (r *Registers) PC() uint32 {
	return r.words[PCIndex]
}

// SetPC sets the program counter.
func (r *Registers) SetPC(v uint32) {
	r.words[PCIndex] = v
}
