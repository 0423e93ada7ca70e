// Package vm is the driver loop: it owns a machine State, knows how to
// load an ELF image into it, and fetches/decodes/executes instructions
// one at a time until the program halts or traps. It is the thin
// connective layer described in §2's "driver loop" row -- the teacher's
// cmd/vm and cmd/interp main functions inline this loop directly; here
// it is pulled out into a reusable type that cmd/rv32i's run subcommand
// drives (the disasm subcommand loads the ELF through pkg/elf directly
// and never executes).
package vm

import (
	"context"
	"fmt"

	"github.com/klenin/rv32i/pkg/cpu"
	"github.com/klenin/rv32i/pkg/elf"
	"github.com/klenin/rv32i/pkg/hostio"
	"github.com/klenin/rv32i/pkg/isa"
)

// Status is the driver's coarse state machine (§4.5's "Ready, Running,
// Halted").
type Status int

const (
	StatusReady Status = iota
	StatusRunning
	StatusHalted
)

// VM wires together machine state, host I/O, and the fetch/decode/execute
// loop. The zero value is not usable; construct with New.
type VM struct {
	State  *cpu.State
	IO     hostio.IO
	Status Status

	// TraceFunc, if set, is called with the PC and decoded instruction
	// before every step -- the hook cmd/rv32i's -v flag uses instead of
	// reaching into VM internals directly.
	TraceFunc func(pc uint32, in isa.Instruction)
}

// New returns a VM in StatusReady with an empty machine state, using io
// for ECALL 63/64.
func New(io hostio.IO) *VM {
	return &VM{State: cpu.NewState(), IO: io, Status: StatusReady}
}

// Load parses elfBytes and copies its PT_LOAD segments into the VM's
// memory, then sets PC to the entry point. The VM stays in StatusReady
// until Run is called; Step does not change Status.
func (m *VM) Load(elfBytes []byte) (*elf.Image, error) {
	img, err := elf.Load(elfBytes, m.State.Mem)
	if err != nil {
		return nil, err
	}
	m.State.Regs.SetPC(img.Entry)
	return img, nil
}

// Halted reports whether the VM has stopped (exit or trap).
func (m *VM) Halted() bool {
	return m.State.Halted
}

// ExitCode returns the code the program passed to the exit environment
// call. Meaningless before Halted() is true.
func (m *VM) ExitCode() uint32 {
	return m.State.ExitCode
}

// Step fetches the word at PC, decodes it, executes it, and returns the
// decoded instruction alongside any trap. A decode failure is itself a
// trap: it halts the VM and is returned as an error, matching §7's
// policy that a decode failure never panics or silently corrupts state.
func (m *VM) Step() (isa.Instruction, error) {
	pc := m.State.Regs.PC()
	word := m.State.Mem.ReadWord(pc)

	in, err := isa.Decode(word)
	if err != nil {
		m.State.Halted = true
		return isa.Instruction{}, fmt.Errorf("vm: fetch at %#x: %w", pc, err)
	}
	if m.TraceFunc != nil {
		m.TraceFunc(pc, in)
	}
	if err := cpu.Execute(in, m.State, m.IO); err != nil {
		return in, err
	}
	return in, nil
}

// Run transitions Ready -> Running and steps until the program halts, a
// trap occurs, or ctx is cancelled. Cancellation is checked only between
// steps (§5: "cooperative step-boundary cancellation"); it never
// interrupts a step already in flight.
func (m *VM) Run(ctx context.Context) error {
	m.Status = StatusRunning
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := m.Step(); err != nil {
			m.Status = StatusHalted
			return err
		}
		if m.State.Halted {
			m.Status = StatusHalted
			return nil
		}
	}
}
