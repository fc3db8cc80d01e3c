package isa

import (
	"github.com/neptune-vm/neptune/flags"
	"github.com/neptune-vm/neptune/vmerr"
)

// fakeMachine is a minimal in-memory Machine implementation for exercising
// ExecFuncs in isolation, without a real CPU or bus.
type fakeMachine struct {
	regs   [8]uint32
	mem    map[uint32]uint32
	stack  []uint32
	pc     uint32
	fl     flags.Flags
	halted bool
}

func newFakeMachine() *fakeMachine {
	return &fakeMachine{mem: make(map[uint32]uint32)}
}

func (f *fakeMachine) Reg(i byte) (uint32, error) {
	if int(i) >= len(f.regs) {
		return 0, &vmerr.Error{Kind: vmerr.InvalidRegister, Message: "out of range"}
	}
	return f.regs[i], nil
}

func (f *fakeMachine) SetReg(i byte, v uint32) error {
	if int(i) >= len(f.regs) {
		return &vmerr.Error{Kind: vmerr.InvalidRegister, Message: "out of range"}
	}
	f.regs[i] = v
	return nil
}

func (f *fakeMachine) Flags() *flags.Flags { return &f.fl }

func (f *fakeMachine) ReadWord(addr uint32) (uint32, error) { return f.mem[addr], nil }
func (f *fakeMachine) WriteWord(addr uint32, v uint32) error {
	f.mem[addr] = v
	return nil
}
func (f *fakeMachine) ReadByte(addr uint32) (byte, error) { return byte(f.mem[addr]), nil }
func (f *fakeMachine) WriteByte(addr uint32, v byte) error {
	f.mem[addr] = uint32(v)
	return nil
}

func (f *fakeMachine) Push(v uint32) error {
	f.stack = append(f.stack, v)
	return nil
}

func (f *fakeMachine) Pop() (uint32, error) {
	if len(f.stack) == 0 {
		return 0, &vmerr.Error{Kind: vmerr.StackUnderflow, Message: "empty stack"}
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

func (f *fakeMachine) PC() uint32     { return f.pc }
func (f *fakeMachine) SetPC(a uint32) { f.pc = a }

func (f *fakeMachine) Halt()                     { f.halted = true }
func (f *fakeMachine) Syscall(n uint32) error { return nil }
