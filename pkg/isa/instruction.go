package isa

import "fmt"

// Kind tags which RV32I mnemonic an Instruction carries. The zero value,
// KindInvalid, never escapes a successful Decode -- it exists only as the
// sentinel a decoder-internal partial result starts from.
type Kind int

const (
	KindInvalid Kind = iota

	KindADD
	KindSUB
	KindXOR
	KindOR
	KindAND
	KindSLL
	KindSRL
	KindSRA
	KindSLT
	KindSLTU

	KindADDI
	KindXORI
	KindORI
	KindANDI
	KindSLLI
	KindSRLI
	KindSRAI
	KindSLTI
	KindSLTIU

	KindLB
	KindLH
	KindLW
	KindLBU
	KindLHU

	KindSB
	KindSH
	KindSW

	KindBEQ
	KindBNE
	KindBLT
	KindBGE
	KindBLTU
	KindBGEU

	KindJAL
	KindJALR

	KindLUI
	KindAUIPC

	KindECALL
	KindEBREAK
	KindSystemOther // any SYSTEM encoding other than ECALL/EBREAK; executor no-ops it

	KindFENCE
)

var kindNames = map[Kind]string{
	KindADD: "add", KindSUB: "sub", KindXOR: "xor", KindOR: "or", KindAND: "and",
	KindSLL: "sll", KindSRL: "srl", KindSRA: "sra", KindSLT: "slt", KindSLTU: "sltu",
	KindADDI: "addi", KindXORI: "xori", KindORI: "ori", KindANDI: "andi",
	KindSLLI: "slli", KindSRLI: "srli", KindSRAI: "srai", KindSLTI: "slti", KindSLTIU: "sltiu",
	KindLB: "lb", KindLH: "lh", KindLW: "lw", KindLBU: "lbu", KindLHU: "lhu",
	KindSB: "sb", KindSH: "sh", KindSW: "sw",
	KindBEQ: "beq", KindBNE: "bne", KindBLT: "blt", KindBGE: "bge", KindBLTU: "bltu", KindBGEU: "bgeu",
	KindJAL: "jal", KindJALR: "jalr",
	KindLUI: "lui", KindAUIPC: "auipc",
	KindECALL: "ecall", KindEBREAK: "ebreak", KindSystemOther: "system",
	KindFENCE: "fence",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Instruction is the typed result of Decode. It is a value object: Decode
// produces it, Execute consumes it, and it is never mutated in place.
//
// Only the fields relevant to Kind are meaningful; the rest are zero. Rd,
// Rs1, Rs2 are always in 0..31. Imm is already sign-extended to int32 for
// every format except LUI/AUIPC, where it holds the raw zero-extended
// 20-bit upper-immediate value (bits 31..12 of the word, unshifted) --
// Execute applies the <<12 itself, per §4.4.
type Instruction struct {
	Kind Kind
	Rd   uint32
	Rs1  uint32
	Rs2  uint32
	Imm  int32

	// Fence-only fields (§4.4, FENCE format); zero for every other Kind.
	FencePred uint32
	FenceSucc uint32
	FenceFM   uint32
}

// String renders one disassembly-adjacent line; pkg/disasm builds on this
// but callers that just want something for a log line can use it directly.
func (in Instruction) String() string {
	switch in.Kind {
	case KindADD, KindSUB, KindXOR, KindOR, KindAND, KindSLL, KindSRL, KindSRA, KindSLT, KindSLTU:
		return fmt.Sprintf("%s x%d, x%d, x%d", in.Kind, in.Rd, in.Rs1, in.Rs2)
	case KindADDI, KindXORI, KindORI, KindANDI, KindSLTI, KindSLTIU:
		return fmt.Sprintf("%s x%d, x%d, %d", in.Kind, in.Rd, in.Rs1, in.Imm)
	case KindSLLI, KindSRLI, KindSRAI:
		return fmt.Sprintf("%s x%d, x%d, %d", in.Kind, in.Rd, in.Rs1, in.Imm)
	case KindLB, KindLH, KindLW, KindLBU, KindLHU:
		return fmt.Sprintf("%s x%d, %d(x%d)", in.Kind, in.Rd, in.Imm, in.Rs1)
	case KindSB, KindSH, KindSW:
		return fmt.Sprintf("%s x%d, %d(x%d)", in.Kind, in.Rs2, in.Imm, in.Rs1)
	case KindBEQ, KindBNE, KindBLT, KindBGE, KindBLTU, KindBGEU:
		return fmt.Sprintf("%s x%d, x%d, %d", in.Kind, in.Rs1, in.Rs2, in.Imm)
	case KindJAL:
		return fmt.Sprintf("jal x%d, %d", in.Rd, in.Imm)
	case KindJALR:
		return fmt.Sprintf("jalr x%d, x%d, %d", in.Rd, in.Rs1, in.Imm)
	case KindLUI, KindAUIPC:
		return fmt.Sprintf("%s x%d, 0x%x", in.Kind, in.Rd, uint32(in.Imm))
	case KindECALL, KindEBREAK:
		return in.Kind.String()
	case KindSystemOther:
		return fmt.Sprintf("system %d", in.Imm)
	case KindFENCE:
		return fmt.Sprintf("fence %d,%d", in.FencePred, in.FenceSucc)
	default:
		return "invalid"
	}
}
