package isa

import "github.com/neptune-vm/neptune/flags"

// Machine is the set of CPU operations an instruction's semantic action is
// allowed to perform. It lets the instruction set be defined and tested
// without importing the concrete CPU type, matching the "tagged-variant
// enumeration of opcodes... compiled table mapping opcode byte to decoder
// plus semantic action" dispatch style.
type Machine interface {
	Reg(i byte) (uint32, error)
	SetReg(i byte, v uint32) error
	Flags() *flags.Flags

	ReadWord(addr uint32) (uint32, error)
	WriteWord(addr uint32, v uint32) error
	ReadByte(addr uint32) (byte, error)
	WriteByte(addr uint32, v byte) error

	Push(v uint32) error
	Pop() (uint32, error)

	PC() uint32
	SetPC(addr uint32)

	Halt()
	Syscall(n uint32) error
}
