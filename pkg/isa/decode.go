package isa

import "errors"

// ErrIllegalInstruction is returned by Decode when no RV32I encoding
// matches the given word, or a sub-field combination (funct3/funct7 pair)
// within a matched opcode group is undefined.
var ErrIllegalInstruction = errors.New("isa: illegal instruction")

// signExtend replicates bit `bit` of value across bits bit..31, producing
// the 32-bit two's-complement sign extension of a bit-wide field. Every
// format-specific immediate assembler in Decode funnels through this one
// helper, per the single-sign-extend-helper design note.
func signExtend(value uint32, bit uint) int32 {
	mask := uint32(1) << bit
	if value&mask != 0 {
		value |= ^(mask - 1)
	}
	return int32(value)
}

func regField(word uint32, shift uint) uint32 {
	return (word >> shift) & 0x1F
}

func funct3(word uint32) uint32 {
	return (word >> 12) & 0x7
}

func funct7(word uint32) uint32 {
	return (word >> 25) & 0x7F
}

// Decode parses a 32-bit little-endian RV32I instruction word into a typed
// Instruction. It never panics and never loops: every word either matches
// exactly one of the encodings in §4.4's table or falls through to
// ErrIllegalInstruction.
func Decode(word uint32) (Instruction, error) {
	group := word & 0x7F
	switch group {
	case groupOP:
		return decodeR(word)
	case groupOPIMM:
		return decodeOpImm(word)
	case groupLOAD:
		return decodeLoad(word)
	case groupSTORE:
		return decodeStore(word)
	case groupBRANCH:
		return decodeBranch(word)
	case groupJAL:
		return decodeJAL(word)
	case groupJALR:
		return decodeJALR(word)
	case groupLUI:
		return decodeU(word, KindLUI)
	case groupAUIPC:
		return decodeU(word, KindAUIPC)
	case groupSYSTEM:
		return decodeSystem(word)
	case groupFENCE:
		return decodeFence(word), nil
	default:
		return Instruction{}, ErrIllegalInstruction
	}
}

func decodeR(word uint32) (Instruction, error) {
	in := Instruction{
		Rd:  regField(word, 7),
		Rs1: regField(word, 15),
		Rs2: regField(word, 20),
	}
	f3, f7 := funct3(word), funct7(word)
	switch f3 {
	case f3ADDSUB:
		switch f7 {
		case f7Logical:
			in.Kind = KindADD
		case f7Arithmetic:
			in.Kind = KindSUB
		default:
			return Instruction{}, ErrIllegalInstruction
		}
	case f3SLL:
		in.Kind = KindSLL
	case f3SLT:
		in.Kind = KindSLT
	case f3SLTU:
		in.Kind = KindSLTU
	case f3XOR:
		in.Kind = KindXOR
	case f3SRLSRA:
		switch f7 {
		case f7Logical:
			in.Kind = KindSRL
		case f7Arithmetic:
			in.Kind = KindSRA
		default:
			return Instruction{}, ErrIllegalInstruction
		}
	case f3OR:
		in.Kind = KindOR
	case f3AND:
		in.Kind = KindAND
	default:
		return Instruction{}, ErrIllegalInstruction
	}
	return in, nil
}

func decodeOpImm(word uint32) (Instruction, error) {
	in := Instruction{
		Rd:  regField(word, 7),
		Rs1: regField(word, 15),
		Imm: signExtend(word>>20, 11),
	}
	f3 := funct3(word)
	switch f3 {
	case f3ADDSUB: // addi shares the 0b000 encoding with add, distinct opcode group
		in.Kind = KindADDI
	case f3SLT:
		in.Kind = KindSLTI
	case f3SLTU:
		in.Kind = KindSLTIU
	case f3XOR:
		in.Kind = KindXORI
	case f3OR:
		in.Kind = KindORI
	case f3AND:
		in.Kind = KindANDI
	case f3SLL:
		if funct7(word) != f7Logical {
			return Instruction{}, ErrIllegalInstruction
		}
		in.Kind = KindSLLI
		in.Imm = int32(regField(word, 20)) // shamt, low 5 bits of the I-immediate
	case f3SRLSRA:
		shamt := int32(regField(word, 20))
		switch funct7(word) {
		case f7Logical:
			in.Kind = KindSRLI
		case f7Arithmetic:
			in.Kind = KindSRAI
		default:
			return Instruction{}, ErrIllegalInstruction
		}
		in.Imm = shamt
	default:
		return Instruction{}, ErrIllegalInstruction
	}
	return in, nil
}

func decodeLoad(word uint32) (Instruction, error) {
	in := Instruction{
		Rd:  regField(word, 7),
		Rs1: regField(word, 15),
		Imm: signExtend(word>>20, 11),
	}
	switch funct3(word) {
	case f3LB:
		in.Kind = KindLB
	case f3LH:
		in.Kind = KindLH
	case f3LW:
		in.Kind = KindLW
	case f3LBU:
		in.Kind = KindLBU
	case f3LHU:
		in.Kind = KindLHU
	default:
		return Instruction{}, ErrIllegalInstruction
	}
	return in, nil
}

func decodeStore(word uint32) (Instruction, error) {
	imm11_5 := (word >> 25) & 0x7F
	imm4_0 := (word >> 7) & 0x1F
	in := Instruction{
		Rs1: regField(word, 15),
		Rs2: regField(word, 20),
		Imm: signExtend((imm11_5<<5)|imm4_0, 11),
	}
	switch funct3(word) {
	case f3SB:
		in.Kind = KindSB
	case f3SH:
		in.Kind = KindSH
	case f3SW:
		in.Kind = KindSW
	default:
		return Instruction{}, ErrIllegalInstruction
	}
	return in, nil
}

func decodeBranch(word uint32) (Instruction, error) {
	bit12 := (word >> 31) & 0x1
	bit11 := (word >> 7) & 0x1
	bits10_5 := (word >> 25) & 0x3F
	bits4_1 := (word >> 8) & 0xF
	imm := (bit12 << 12) | (bit11 << 11) | (bits10_5 << 5) | (bits4_1 << 1)
	in := Instruction{
		Rs1: regField(word, 15),
		Rs2: regField(word, 20),
		Imm: signExtend(imm, 12),
	}
	switch funct3(word) {
	case f3BEQ:
		in.Kind = KindBEQ
	case f3BNE:
		in.Kind = KindBNE
	case f3BLT:
		in.Kind = KindBLT
	case f3BGE:
		in.Kind = KindBGE
	case f3BLTU:
		in.Kind = KindBLTU
	case f3BGEU:
		in.Kind = KindBGEU
	default:
		return Instruction{}, ErrIllegalInstruction
	}
	return in, nil
}

func decodeJAL(word uint32) (Instruction, error) {
	bit20 := (word >> 31) & 0x1
	bits19_12 := (word >> 12) & 0xFF
	bit11 := (word >> 20) & 0x1
	bits10_1 := (word >> 21) & 0x3FF
	imm := (bit20 << 20) | (bits19_12 << 12) | (bit11 << 11) | (bits10_1 << 1)
	return Instruction{
		Kind: KindJAL,
		Rd:   regField(word, 7),
		Imm:  signExtend(imm, 20),
	}, nil
}

func decodeJALR(word uint32) (Instruction, error) {
	if funct3(word) != 0 {
		return Instruction{}, ErrIllegalInstruction
	}
	return Instruction{
		Kind: KindJALR,
		Rd:   regField(word, 7),
		Rs1:  regField(word, 15),
		Imm:  signExtend(word>>20, 11),
	}, nil
}

func decodeU(word uint32, kind Kind) (Instruction, error) {
	return Instruction{
		Kind: kind,
		Rd:   regField(word, 7),
		Imm:  int32(word >> 12),
	}, nil
}

func decodeSystem(word uint32) (Instruction, error) {
	selector := word >> 20
	switch selector {
	case 0:
		return Instruction{Kind: KindECALL}, nil
	case 1:
		return Instruction{Kind: KindEBREAK}, nil
	default:
		return Instruction{Kind: KindSystemOther, Imm: int32(selector)}, nil
	}
}

func decodeFence(word uint32) Instruction {
	return Instruction{
		Kind:      KindFENCE,
		FenceSucc: (word >> 20) & 0xF,
		FencePred: (word >> 24) & 0xF,
		FenceFM:   (word >> 28) & 0xF,
	}
}
