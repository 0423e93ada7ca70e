// Package isa decodes and re-encodes RV32I instruction words.
//
// Instruction format
//
// Every instruction is a single 32-bit little-endian word. The low 7 bits
// select one of the formats below; the remaining bits are sliced up
// differently per format.
//
//	R: <funct7:7><rs2:5><rs1:5><funct3:3><rd:5><opcode:7>
//	I: <imm[11:0]:12><rs1:5><funct3:3><rd:5><opcode:7>
//	S: <imm[11:5]:7><rs2:5><rs1:5><funct3:3><imm[4:0]:5><opcode:7>
//	B: <imm[12|10:5]:7><rs2:5><rs1:5><funct3:3><imm[4:1|11]:5><opcode:7>
//	U: <imm[31:12]:20><rd:5><opcode:7>
//	J: <imm[20|10:1|11|19:12]:20><rd:5><opcode:7>
//
// Register fields are always 5 bits wide (0x1F) and funct3 is always 3 bits
// wide (0x7); narrower masks seen in some drafts of this decoder are bugs.
package isa

// Opcode groups: the low 7 bits of every instruction word.
const (
	groupOP     = 0b0110011 // R: reg-reg arithmetic
	groupOPIMM  = 0b0010011 // I: reg-imm arithmetic
	groupLOAD   = 0b0000011 // I: loads
	groupSTORE  = 0b0100011 // S: stores
	groupBRANCH = 0b1100011 // B: branches
	groupJAL    = 0b1101111 // J
	groupJALR   = 0b1100111 // I: jalr
	groupLUI    = 0b0110111 // U
	groupAUIPC  = 0b0010111 // U
	groupSYSTEM = 0b1110011 // I: ecall/ebreak/other
	groupFENCE  = 0b0001111 // FENCE
)

// funct3 values, scoped per opcode group.
const (
	f3ADDSUB = 0b000
	f3SLL    = 0b001
	f3SLT    = 0b010
	f3SLTU   = 0b011
	f3XOR    = 0b100
	f3SRLSRA = 0b101
	f3OR     = 0b110
	f3AND    = 0b111

	f3LB = 0b000
	f3LH = 0b001
	f3LW = 0b010
	f3LBU = 0b100
	f3LHU = 0b101

	f3SB = 0b000
	f3SH = 0b001
	f3SW = 0b010

	f3BEQ  = 0b000
	f3BNE  = 0b001
	f3BLT  = 0b100
	f3BGE  = 0b101
	f3BLTU = 0b110
	f3BGEU = 0b111

	f3ECALLEBREAK = 0b000
)

// funct7 values that disambiguate R-type ADD/SUB and SRL/SRA, and the
// I-type shift-immediate SRLI/SRAI pair.
const (
	f7Logical     = 0x00
	f7Arithmetic  = 0x20
)

// ABI register indices referenced directly by the environment-call
// convention (§6 of the specification).
const (
	RegA0 = 10
	RegA1 = 11
	RegA2 = 12
	RegA7 = 17
)

// Well-known a7 values dispatched by ECALL.
const (
	SyscallRead  = 63
	SyscallWrite = 64
	SyscallExit  = 93
)
