package cpu

// State is the machine state a single Execute step mutates: the register
// file, memory, and the halted/exit-code pair an environment-call exit
// sets. A driver owns one State per run and borrows it mutably per step;
// State itself does not know how to fetch or decode -- that is pkg/vm's
// job.
type State struct {
	Regs     Registers
	Mem      *Memory
	Halted   bool
	ExitCode uint32
}

// NewState returns a State with a fresh, empty Memory and all registers
// (including PC) at zero.
func NewState() *State {
	return &State{Mem: NewMemory()}
}
