package cpu

import "errors"

// The following errors are the traps an Execute call may return, per §7 of
// the specification. Every trap sets State.Halted and is returned to the
// driver as a value; none of them unwind through host code via panics.
var (
	// ErrUnsupportedSyscall indicates an ECALL with an a7 value this
	// executor does not implement.
	ErrUnsupportedSyscall = errors.New("cpu: unsupported syscall")

	// ErrBreakpointTrap indicates an EBREAK was executed.
	ErrBreakpointTrap = errors.New("cpu: breakpoint trap")

	// ErrUnmappedMemory is declared for API completeness (§7 lists it as
	// optional) but is never returned by Memory: the page-map memory
	// model has no notion of an address outside the 32-bit space being
	// "unmapped" -- every address reads as zero until written.
	ErrUnmappedMemory = errors.New("cpu: unmapped memory access")
)
