package cpu

import (
	"errors"
	"testing"
	"testing/quick"

	"github.com/klenin/rv32i/pkg/hostio"
	"github.com/klenin/rv32i/pkg/isa"
)

func newExecState() *State {
	return NewState()
}

// scenario #1: add x10, x11, x12 with x11=5, x12=7.
func TestExecuteAdd(t *testing.T) {
	st := newExecState()
	st.Regs.Write(11, 5)
	st.Regs.Write(12, 7)

	in := isa.Instruction{Kind: isa.KindADD, Rd: 10, Rs1: 11, Rs2: 12}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(10); got != 12 {
		t.Errorf("x10 = %d, want 12", got)
	}
	if st.Regs.PC() != 4 {
		t.Errorf("PC = %#x, want 4", st.Regs.PC())
	}
}

// scenario #2: add wraps on overflow.
func TestExecuteAddWraps(t *testing.T) {
	st := newExecState()
	st.Regs.Write(11, 0xFFFFFFFF)
	st.Regs.Write(12, 1)

	in := isa.Instruction{Kind: isa.KindADD, Rd: 10, Rs1: 11, Rs2: 12}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(10); got != 0 {
		t.Errorf("x10 = %#x, want 0", got)
	}
}

// scenario #3: SRAI replicates the sign bit.
func TestExecuteSRAI(t *testing.T) {
	st := newExecState()
	st.Regs.Write(11, 0x80000000)

	in := isa.Instruction{Kind: isa.KindSRAI, Rd: 10, Rs1: 11, Imm: 1}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(10); got != 0xC0000000 {
		t.Errorf("x10 = %#x, want 0xC0000000", got)
	}
}

// scenario #4: LW reads a little-endian word.
func TestExecuteLW(t *testing.T) {
	st := newExecState()
	st.Mem.WriteBytes(0x1000, []byte{0xFE, 0xFF, 0xFF, 0xFF})
	st.Regs.Write(11, 0x1000)

	in := isa.Instruction{Kind: isa.KindLW, Rd: 10, Rs1: 11, Imm: 0}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(10); got != 0xFFFFFFFE {
		t.Errorf("x10 = %#x, want 0xFFFFFFFE", got)
	}
}

// scenario #5: SB then LBU round-trips the low byte, zero-extended.
func TestExecuteSBThenLBU(t *testing.T) {
	st := newExecState()
	st.Regs.Write(11, 0x1000)
	st.Regs.Write(12, 0xAABBCCDD)

	sb := isa.Instruction{Kind: isa.KindSB, Rs1: 11, Rs2: 12, Imm: 0}
	if err := Execute(sb, st, hostio.Std()); err != nil {
		t.Fatalf("Execute(SB): %v", err)
	}
	lbu := isa.Instruction{Kind: isa.KindLBU, Rd: 10, Rs1: 11, Imm: 0}
	if err := Execute(lbu, st, hostio.Std()); err != nil {
		t.Fatalf("Execute(LBU): %v", err)
	}
	if got := st.Regs.Read(10); got != 0xDD {
		t.Errorf("x10 = %#x, want 0xDD", got)
	}
}

// scenario #6: JALR links PC+4 and jumps, handling rd/rs1 write ordering.
func TestExecuteJALR(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x100)
	st.Regs.Write(1, 0x200)

	in := isa.Instruction{Kind: isa.KindJALR, Rd: 5, Rs1: 1, Imm: 0}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(5); got != 0x104 {
		t.Errorf("x5 = %#x, want 0x104", got)
	}
	if st.Regs.PC() != 0x200 {
		t.Errorf("PC = %#x, want 0x200", st.Regs.PC())
	}
}

// JALR with rd aliasing rs1 (the common "ret"-like idiom: jalr ra, ra, 0)
// must still link the old PC, not the freshly-written target.
func TestExecuteJALRAliasedRdRs1(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x100)
	st.Regs.Write(1, 0x200)

	in := isa.Instruction{Kind: isa.KindJALR, Rd: 1, Rs1: 1, Imm: 0}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(1); got != 0x104 {
		t.Errorf("x1 = %#x, want 0x104 (link value, not the jump target)", got)
	}
	if st.Regs.PC() != 0x200 {
		t.Errorf("PC = %#x, want 0x200", st.Regs.PC())
	}
}

// scenario #7: BEQ takes the branch and adds the byte offset to PC.
func TestExecuteBEQTaken(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x100)
	st.Regs.Write(1, 0)

	in := isa.Instruction{Kind: isa.KindBEQ, Rs1: 1, Rs2: 0, Imm: 20}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if st.Regs.PC() != 0x114 {
		t.Errorf("PC = %#x, want 0x114", st.Regs.PC())
	}
}

func TestExecuteBEQNotTaken(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x100)
	st.Regs.Write(1, 1)

	in := isa.Instruction{Kind: isa.KindBEQ, Rs1: 1, Rs2: 0, Imm: 20}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if st.Regs.PC() != 0x104 {
		t.Errorf("PC = %#x, want 0x104 (fall through)", st.Regs.PC())
	}
}

// scenario #8: AUIPC adds the shifted immediate to the instruction's own PC.
func TestExecuteAUIPC(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x100)

	in := isa.Instruction{Kind: isa.KindAUIPC, Rd: 10, Imm: 0xA4}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(10); got != 0x000A4100 {
		t.Errorf("x10 = %#x, want 0xA4100", got)
	}
}

// scenario #9: ECALL with a7=93 halts and records the exit code.
func TestExecuteECallExit(t *testing.T) {
	st := newExecState()
	st.Regs.Write(isa.RegA7, isa.SyscallExit)
	st.Regs.Write(isa.RegA0, 0)

	err := Execute(isa.Instruction{Kind: isa.KindECALL}, st, hostio.Std())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !st.Halted {
		t.Error("Halted = false, want true")
	}
	if st.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", st.ExitCode)
	}
}

func TestExecuteECallUnsupported(t *testing.T) {
	st := newExecState()
	st.Regs.Write(isa.RegA7, 999)

	err := Execute(isa.Instruction{Kind: isa.KindECALL}, st, hostio.Std())
	if !errors.Is(err, ErrUnsupportedSyscall) {
		t.Errorf("err = %v, want ErrUnsupportedSyscall", err)
	}
	if !st.Halted {
		t.Error("Halted = false, want true")
	}
}

func TestExecuteECallReadWrite(t *testing.T) {
	st := newExecState()
	io := hostio.NewBuffered([]byte("hi"))

	st.Regs.Write(isa.RegA1, 0x2000)
	st.Regs.Write(isa.RegA2, 2)
	st.Regs.Write(isa.RegA7, isa.SyscallRead)
	if err := Execute(isa.Instruction{Kind: isa.KindECALL}, st, io); err != nil {
		t.Fatalf("Execute(read): %v", err)
	}
	if got := st.Regs.Read(isa.RegA0); got != 2 {
		t.Errorf("a0 = %d, want 2", got)
	}
	if got := st.Mem.ReadBytes(0x2000, 2); string(got) != "hi" {
		t.Errorf("memory = %q, want %q", got, "hi")
	}

	st.Regs.Write(isa.RegA7, isa.SyscallWrite)
	if err := Execute(isa.Instruction{Kind: isa.KindECALL}, st, io); err != nil {
		t.Fatalf("Execute(write): %v", err)
	}
	if got := st.Regs.Read(isa.RegA0); got != 2 {
		t.Errorf("a0 = %d, want 2", got)
	}
	if io.Out.String() != "hi" {
		t.Errorf("stdout = %q, want %q", io.Out.String(), "hi")
	}
}

func TestExecuteEBREAK(t *testing.T) {
	st := newExecState()
	err := Execute(isa.Instruction{Kind: isa.KindEBREAK}, st, hostio.Std())
	if !errors.Is(err, ErrBreakpointTrap) {
		t.Errorf("err = %v, want ErrBreakpointTrap", err)
	}
	if !st.Halted {
		t.Error("Halted = false, want true")
	}
}

func TestExecuteFenceAdvancesPC(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x40)
	if err := Execute(isa.Instruction{Kind: isa.KindFENCE}, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if st.Regs.PC() != 0x44 {
		t.Errorf("PC = %#x, want 0x44", st.Regs.PC())
	}
	if st.Halted {
		t.Error("Halted = true, want false")
	}
}

func TestExecuteSystemOtherIsNoop(t *testing.T) {
	st := newExecState()
	st.Regs.SetPC(0x40)
	if err := Execute(isa.Instruction{Kind: isa.KindSystemOther, Imm: 7}, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if st.Regs.PC() != 0x44 {
		t.Errorf("PC = %#x, want 0x44", st.Regs.PC())
	}
	if st.Halted {
		t.Error("Halted = true, want false")
	}
}

// property: x0 always reads zero after Execute, whatever the instruction
// tried to write to it.
func TestExecuteX0AlwaysZero(t *testing.T) {
	st := newExecState()
	st.Regs.Write(11, 5)
	st.Regs.Write(12, 7)
	in := isa.Instruction{Kind: isa.KindADD, Rd: 0, Rs1: 11, Rs2: 12}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := st.Regs.Read(0); got != 0 {
		t.Errorf("x0 = %d, want 0", got)
	}
}

// property: an R-type instruction touches only rd (and PC); every other
// register is left exactly as it was.
func TestExecuteRTypeLeavesOtherRegistersUnchanged(t *testing.T) {
	st := newExecState()
	for i := uint32(1); i < 32; i++ {
		st.Regs.Write(i, i*0x1001)
	}
	before := st.Regs

	in := isa.Instruction{Kind: isa.KindXOR, Rd: 9, Rs1: 3, Rs2: 4}
	if err := Execute(in, st, hostio.Std()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := before.Read(3) ^ before.Read(4)
	if got := st.Regs.Read(9); got != want {
		t.Errorf("x9 = %#x, want %#x", got, want)
	}
	for i := uint32(1); i < 32; i++ {
		if i == 9 {
			continue
		}
		if got := st.Regs.Read(i); got != before.Read(i) {
			t.Errorf("x%d changed from %#x to %#x", i, before.Read(i), got)
		}
	}
}

// property: addi rd, rs1, imm always produces rs1 + sign_ext(imm), wrapping.
func TestExecuteAddiProperty(t *testing.T) {
	f := func(rs1 uint32, imm int16) bool {
		signed := int32(imm) & 0xFFF
		if signed&0x800 != 0 {
			signed |= ^0xFFF
		}
		st := newExecState()
		st.Regs.Write(1, rs1)
		in := isa.Instruction{Kind: isa.KindADDI, Rd: 2, Rs1: 1, Imm: signed}
		if err := Execute(in, st, hostio.Std()); err != nil {
			return false
		}
		return st.Regs.Read(2) == rs1+uint32(signed)
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 2000}); err != nil {
		t.Error(err)
	}
}

// property: every non-branching, non-jumping instruction advances PC by
// exactly 4.
func TestExecuteNonControlFlowAdvancesPCBy4(t *testing.T) {
	kinds := []isa.Kind{
		isa.KindADD, isa.KindSUB, isa.KindAND, isa.KindOR, isa.KindXOR,
		isa.KindADDI, isa.KindLUI, isa.KindAUIPC, isa.KindSLTI,
	}
	for _, k := range kinds {
		st := newExecState()
		st.Regs.SetPC(0x1000)
		in := isa.Instruction{Kind: k, Rd: 5, Rs1: 1, Rs2: 2, Imm: 1}
		if err := Execute(in, st, hostio.Std()); err != nil {
			t.Fatalf("Execute(%v): %v", k, err)
		}
		if st.Regs.PC() != 0x1004 {
			t.Errorf("%v: PC = %#x, want 0x1004", k, st.Regs.PC())
		}
	}
}
