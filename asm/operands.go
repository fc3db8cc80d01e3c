package asm

import "github.com/neptune-vm/neptune/isa"

// shape describes how an instruction's source line is written, which is
// purely an assembler-syntax concern distinct from the opcode's runtime
// Words count.
type shape int

const (
	shapeNone     shape = iota // no operands: RET, NOP, HLT, SYSCALL
	shapeReg                   // one register: INC, DEC, NEG, NOT, CLR, PUSH, POP
	shapeRegReg                // two registers: ADD, CMP, MOV, MSET, MCPY, ...
	shapeRegImm                // register, then a 32-bit immediate word: ADDI, MOVI, LOADI, STORI, ...
	shapeRegShift              // register, then a 0-255 shift count packed into word0 (masked to 0-31 at execution): SHL, SHR
	shapeImm                   // a single address/label operand: JMP and its conditional forms, CALL
)

var shapeByMnemonic = map[string]shape{
	"ADD": shapeRegReg, "SUB": shapeRegReg, "MUL": shapeRegReg, "DIV": shapeRegReg, "MOD": shapeRegReg,
	"ADDI": shapeRegImm, "SUBI": shapeRegImm, "MULI": shapeRegImm, "DIVI": shapeRegImm, "MODI": shapeRegImm,

	"INC": shapeReg, "DEC": shapeReg, "NEG": shapeReg, "NOT": shapeReg, "CLR": shapeReg,

	"AND": shapeRegReg, "OR": shapeRegReg, "XOR": shapeRegReg,
	"ANDI": shapeRegImm, "ORI": shapeRegImm, "XORI": shapeRegImm,

	"SHL": shapeRegShift, "SHR": shapeRegShift,

	"LOAD": shapeRegReg, "STORE": shapeRegReg,
	"LOADI": shapeRegImm, "STORI": shapeRegImm,

	"MSET": shapeRegReg, "MCPY": shapeRegReg,

	"MOV": shapeRegReg, "MOVI": shapeRegImm,

	"CMP": shapeRegReg, "CMPI": shapeRegImm,
	"TEST": shapeRegReg, "TESTI": shapeRegImm,

	"JMP": shapeImm, "JZ": shapeImm, "JE": shapeImm, "JNZ": shapeImm, "JNE": shapeImm,
	"JN": shapeImm, "JP": shapeImm, "JG": shapeImm, "JGE": shapeImm, "JL": shapeImm, "JLE": shapeImm,
	"JC": shapeImm, "JB": shapeImm, "JNC": shapeImm, "JAE": shapeImm, "JA": shapeImm, "JBE": shapeImm,

	"CALL": shapeImm, "RET": shapeNone,

	"PUSH": shapeReg, "POP": shapeReg,

	"SYSCALL": shapeNone, "NOP": shapeNone, "HLT": shapeNone,
}

// wordsFor reports how many 32-bit words a shape occupies at this
// assembler's opcode layout: shapeRegImm and shapeImm instructions carry a
// trailing immediate word, everything else fits word0 alone. This must
// stay consistent with each instruction's isa.Words registration in
// canonical.go.
func wordsFor(sh shape) isa.Words {
	if sh == shapeRegImm || sh == shapeImm {
		return isa.TwoWord
	}
	return isa.OneWord
}
