package isa

import "fmt"

// ErrCannotEncode is returned by Encode when the Instruction's Kind has no
// defined encoding (KindInvalid) or an I, S, B or J immediate is out of
// its range (or, for B and J, odd). Register fields, shift amounts and
// U-type immediates are masked to their width, not range-checked.
var ErrCannotEncode = fmt.Errorf("isa: cannot encode instruction")

// Encode is the inverse of Decode, used by the round-trip property test in
// §8 of the specification. It is not a textual assembler: it packs an
// already-typed Instruction back into a 32-bit word, nothing more -- see
// §4.4.1.
func Encode(in Instruction) (uint32, error) {
	switch in.Kind {
	case KindADD:
		return encodeR(groupOP, in.Rd, f3ADDSUB, in.Rs1, in.Rs2, f7Logical), nil
	case KindSUB:
		return encodeR(groupOP, in.Rd, f3ADDSUB, in.Rs1, in.Rs2, f7Arithmetic), nil
	case KindSLL:
		return encodeR(groupOP, in.Rd, f3SLL, in.Rs1, in.Rs2, f7Logical), nil
	case KindSLT:
		return encodeR(groupOP, in.Rd, f3SLT, in.Rs1, in.Rs2, f7Logical), nil
	case KindSLTU:
		return encodeR(groupOP, in.Rd, f3SLTU, in.Rs1, in.Rs2, f7Logical), nil
	case KindXOR:
		return encodeR(groupOP, in.Rd, f3XOR, in.Rs1, in.Rs2, f7Logical), nil
	case KindSRL:
		return encodeR(groupOP, in.Rd, f3SRLSRA, in.Rs1, in.Rs2, f7Logical), nil
	case KindSRA:
		return encodeR(groupOP, in.Rd, f3SRLSRA, in.Rs1, in.Rs2, f7Arithmetic), nil
	case KindOR:
		return encodeR(groupOP, in.Rd, f3OR, in.Rs1, in.Rs2, f7Logical), nil
	case KindAND:
		return encodeR(groupOP, in.Rd, f3AND, in.Rs1, in.Rs2, f7Logical), nil

	case KindADDI:
		return encodeI(groupOPIMM, in.Rd, f3ADDSUB, in.Rs1, in.Imm)
	case KindSLTI:
		return encodeI(groupOPIMM, in.Rd, f3SLT, in.Rs1, in.Imm)
	case KindSLTIU:
		return encodeI(groupOPIMM, in.Rd, f3SLTU, in.Rs1, in.Imm)
	case KindXORI:
		return encodeI(groupOPIMM, in.Rd, f3XOR, in.Rs1, in.Imm)
	case KindORI:
		return encodeI(groupOPIMM, in.Rd, f3OR, in.Rs1, in.Imm)
	case KindANDI:
		return encodeI(groupOPIMM, in.Rd, f3AND, in.Rs1, in.Imm)
	case KindSLLI:
		return encodeShift(in.Rd, f3SLL, in.Rs1, uint32(in.Imm), f7Logical), nil
	case KindSRLI:
		return encodeShift(in.Rd, f3SRLSRA, in.Rs1, uint32(in.Imm), f7Logical), nil
	case KindSRAI:
		return encodeShift(in.Rd, f3SRLSRA, in.Rs1, uint32(in.Imm), f7Arithmetic), nil

	case KindLB:
		return encodeI(groupLOAD, in.Rd, f3LB, in.Rs1, in.Imm)
	case KindLH:
		return encodeI(groupLOAD, in.Rd, f3LH, in.Rs1, in.Imm)
	case KindLW:
		return encodeI(groupLOAD, in.Rd, f3LW, in.Rs1, in.Imm)
	case KindLBU:
		return encodeI(groupLOAD, in.Rd, f3LBU, in.Rs1, in.Imm)
	case KindLHU:
		return encodeI(groupLOAD, in.Rd, f3LHU, in.Rs1, in.Imm)

	case KindSB:
		return encodeS(f3SB, in.Rs1, in.Rs2, in.Imm)
	case KindSH:
		return encodeS(f3SH, in.Rs1, in.Rs2, in.Imm)
	case KindSW:
		return encodeS(f3SW, in.Rs1, in.Rs2, in.Imm)

	case KindBEQ:
		return encodeB(f3BEQ, in.Rs1, in.Rs2, in.Imm)
	case KindBNE:
		return encodeB(f3BNE, in.Rs1, in.Rs2, in.Imm)
	case KindBLT:
		return encodeB(f3BLT, in.Rs1, in.Rs2, in.Imm)
	case KindBGE:
		return encodeB(f3BGE, in.Rs1, in.Rs2, in.Imm)
	case KindBLTU:
		return encodeB(f3BLTU, in.Rs1, in.Rs2, in.Imm)
	case KindBGEU:
		return encodeB(f3BGEU, in.Rs1, in.Rs2, in.Imm)

	case KindJAL:
		return encodeJ(in.Rd, in.Imm)
	case KindJALR:
		return encodeI(groupJALR, in.Rd, 0, in.Rs1, in.Imm)

	case KindLUI:
		return encodeU(groupLUI, in.Rd, in.Imm), nil
	case KindAUIPC:
		return encodeU(groupAUIPC, in.Rd, in.Imm), nil

	case KindECALL:
		return groupSYSTEM, nil
	case KindEBREAK:
		return (1 << 20) | groupSYSTEM, nil
	case KindSystemOther:
		return (uint32(in.Imm) << 20) | groupSYSTEM, nil

	case KindFENCE:
		return (in.FenceFM << 28) | (in.FencePred << 24) | (in.FenceSucc << 20) | groupFENCE, nil

	default:
		return 0, ErrCannotEncode
	}
}

func encodeR(group, rd, f3, rs1, rs2, f7 uint32) uint32 {
	return (f7 << 25) | ((rs2 & 0x1F) << 20) | ((rs1 & 0x1F) << 15) | (f3 << 12) | ((rd & 0x1F) << 7) | group
}

func encodeI(group, rd, f3, rs1 uint32, imm int32) (uint32, error) {
	if imm < -(1<<11) || imm > (1<<11)-1 {
		return 0, fmt.Errorf("%w: immediate %d out of 12-bit signed range", ErrCannotEncode, imm)
	}
	return ((uint32(imm) & 0xFFF) << 20) | ((rs1 & 0x1F) << 15) | (f3 << 12) | ((rd & 0x1F) << 7) | group, nil
}

func encodeShift(rd, f3, rs1, shamt, f7 uint32) uint32 {
	return (f7 << 25) | ((shamt & 0x1F) << 20) | ((rs1 & 0x1F) << 15) | (f3 << 12) | ((rd & 0x1F) << 7) | groupOPIMM
}

func encodeS(f3, rs1, rs2 uint32, imm int32) (uint32, error) {
	if imm < -(1<<11) || imm > (1<<11)-1 {
		return 0, fmt.Errorf("%w: immediate %d out of 12-bit signed range", ErrCannotEncode, imm)
	}
	u := uint32(imm) & 0xFFF
	imm11_5 := u >> 5
	imm4_0 := u & 0x1F
	return (imm11_5 << 25) | ((rs2 & 0x1F) << 20) | ((rs1 & 0x1F) << 15) | (f3 << 12) | (imm4_0 << 7) | groupSTORE, nil
}

func encodeB(f3, rs1, rs2 uint32, imm int32) (uint32, error) {
	if imm < -(1<<12) || imm > (1<<12)-1 || imm%2 != 0 {
		return 0, fmt.Errorf("%w: branch offset %d out of range or unaligned", ErrCannotEncode, imm)
	}
	u := uint32(imm)
	bit12 := (u >> 12) & 0x1
	bit11 := (u >> 11) & 0x1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return (bit12 << 31) | (bits10_5 << 25) | ((rs2 & 0x1F) << 20) | ((rs1 & 0x1F) << 15) |
		(f3 << 12) | (bits4_1 << 8) | (bit11 << 7) | groupBRANCH, nil
}

func encodeJ(rd uint32, imm int32) (uint32, error) {
	if imm < -(1<<20) || imm > (1<<20)-1 || imm%2 != 0 {
		return 0, fmt.Errorf("%w: jump offset %d out of range or unaligned", ErrCannotEncode, imm)
	}
	u := uint32(imm)
	bit20 := (u >> 20) & 0x1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19_12 := (u >> 12) & 0xFF
	return (bit20 << 31) | (bits10_1 << 21) | (bit11 << 20) | (bits19_12 << 12) | ((rd & 0x1F) << 7) | groupJAL, nil
}

func encodeU(group, rd uint32, imm int32) uint32 {
	return ((uint32(imm) & 0xFFFFF) << 12) | ((rd & 0x1F) << 7) | group
}
