// Package cpu implements Neptune's register file, fetch-decode-execute
// loop, stack/heap bump allocator and syscall dispatch.
package cpu

import (
	"github.com/neptune-vm/neptune/flags"
	"github.com/neptune-vm/neptune/isa"
	"github.com/neptune-vm/neptune/membus"
	"github.com/neptune-vm/neptune/memmap"
	"github.com/neptune-vm/neptune/vmerr"
)

// Register aliases: indices 252-254 map transparently onto PC, SP and HP.
const (
	RegCount = 32

	PCAlias = 252
	SPAlias = 253
	HPAlias = 254
)

// Trace, when set, is invoked once per successfully decoded instruction
// before its semantic action runs. It is nil by default and adds no
// overhead to Step when unused.
type Trace func(pc uint32, opcode byte, mnemonic string)

// CPU owns the register file, program counter, stack/heap pointers, flags
// and a reference to the memory bus and instruction set it executes
// against. It implements isa.Machine.
type CPU struct {
	regs   [RegCount]uint32
	pc, sp, hp uint32
	fl     flags.Flags
	halted bool

	bus *membus.Bus
	set *isa.Set

	Trace Trace
}

// New constructs a CPU wired to bus and set, with PC/SP/HP initialized to
// program-start, stack-start and heap-start respectively.
func New(bus *membus.Bus, set *isa.Set) *CPU {
	c := &CPU{bus: bus, set: set}
	c.Reset()
	return c
}

// Reset restores the CPU to its construction-time state without touching
// the underlying bus's memory contents.
func (c *CPU) Reset() {
	for i := range c.regs {
		c.regs[i] = 0
	}
	c.pc = c.bus.RAMBase()
	c.sp = c.bus.RAMBase() + c.bus.RAMSize()
	c.hp = c.bus.RAMBase() + memmap.HeapOff
	c.fl.Clear()
	c.halted = false
}

func (c *CPU) IsHalted() bool { return c.halted }
func (c *CPU) Halt()          { c.halted = true }

func (c *CPU) PC() uint32     { return c.pc }
func (c *CPU) SetPC(a uint32) { c.pc = a }
func (c *CPU) SP() uint32     { return c.sp }
func (c *CPU) HP() uint32     { return c.hp }

func (c *CPU) Flags() *flags.Flags { return &c.fl }

// Reg reads a register, honoring the PC/SP/HP aliases.
func (c *CPU) Reg(i byte) (uint32, error) {
	switch i {
	case PCAlias:
		return c.pc, nil
	case SPAlias:
		return c.sp, nil
	case HPAlias:
		return c.hp, nil
	}
	if int(i) >= RegCount {
		return 0, (&vmerr.Error{Kind: vmerr.InvalidRegister, Message: "register index out of range"}).WithReg(int(i))
	}
	return c.regs[i], nil
}

// SetReg writes a register, honoring the PC/SP/HP aliases.
func (c *CPU) SetReg(i byte, v uint32) error {
	switch i {
	case PCAlias:
		c.pc = v
		return nil
	case SPAlias:
		c.sp = v
		return nil
	case HPAlias:
		c.hp = v
		return nil
	}
	if int(i) >= RegCount {
		return (&vmerr.Error{Kind: vmerr.InvalidRegister, Message: "register index out of range"}).WithReg(int(i))
	}
	c.regs[i] = v
	return nil
}

func (c *CPU) ReadWord(addr uint32) (uint32, error)  { return c.bus.ReadWord(addr) }
func (c *CPU) WriteWord(addr uint32, v uint32) error  { return c.bus.WriteWord(addr, v) }
func (c *CPU) ReadByte(addr uint32) (byte, error)     { return c.bus.ReadByte(addr) }
func (c *CPU) WriteByte(addr uint32, v byte) error     { return c.bus.WriteByte(addr, v) }

// Push decrements SP by 4, checks for a heap/stack collision, then writes
// v at the new SP.
func (c *CPU) Push(v uint32) error {
	c.sp -= 4
	if c.hp >= c.sp {
		return vmerr.Fault(vmerr.HeapStackCollision, c.sp, "stack pointer collided with heap pointer")
	}
	return c.bus.WriteWord(c.sp, v)
}

// Pop reads the word at SP then increments SP by 4.
func (c *CPU) Pop() (uint32, error) {
	v, err := c.bus.ReadWord(c.sp)
	if err != nil {
		return 0, err
	}
	c.sp += 4
	return v, nil
}

// AllocateHeap bump-allocates n bytes (rounded up to a multiple of 4) and
// returns the start address. Fails with HeapStackCollision if the
// allocation would meet or pass the current stack pointer.
func (c *CPU) AllocateHeap(n uint32) (uint32, error) {
	aligned := (n + 3) &^ 3
	if c.hp+aligned >= c.sp {
		return 0, vmerr.Fault(vmerr.HeapStackCollision, c.hp, "heap allocation would collide with stack")
	}
	addr := c.hp
	c.hp += aligned
	return addr, nil
}

// Jump sets PC directly, with no alignment or bounds enforcement beyond
// what the next fetch's bus access will impose.
func (c *CPU) Jump(addr uint32) { c.pc = addr }

// Step fetches one instruction at PC, advances PC past it (and past any
// immediate word), and runs its semantic action. Errors are fatal to the
// step and propagate to the caller, who decides whether to keep stepping.
func (c *CPU) Step() error {
	word0, err := c.bus.ReadWord(c.pc)
	if err != nil {
		return err
	}
	opcode, rDest, rSrc := isa.Decode(word0)
	instPC := c.pc
	c.pc += 4

	inst, ok := c.set.ByOpcode(opcode)
	if !ok {
		return vmerr.Fault(vmerr.UnknownOpcode, instPC, "unrecognized opcode").WithOpcode(opcode)
	}

	var imm uint32
	if inst.Words == isa.TwoWord {
		imm, err = c.bus.ReadWord(c.pc)
		if err != nil {
			return err
		}
		c.pc += 4
	}

	if c.Trace != nil {
		c.Trace(instPC, opcode, inst.Mnemonic)
	}

	return inst.Exec(c, rDest, rSrc, imm)
}

// Syscall implements the SYSCALL instruction: look up slot n in ROM's
// syscall table, verify the target is populated and addressable, push the
// return address and jump to the handler. The handler returns via RET,
// which pops PC.
func (c *CPU) Syscall(n uint32) error {
	entryAddr := memmap.SyscallTableBase + n*memmap.SyscallSlotSize
	if !memmap.IsROM(entryAddr) {
		return vmerr.Fault(vmerr.SyscallOutOfRange, entryAddr, "syscall table index out of range")
	}
	target, err := c.bus.ReadWord(entryAddr)
	if err != nil {
		return err
	}
	if target == 0 {
		return vmerr.Fault(vmerr.SyscallNotImplemented, entryAddr, "syscall %d has no registered handler", n)
	}
	if !c.bus.IsAddressable(target) {
		return vmerr.Fault(vmerr.SyscallInvalidTarget, target, "syscall %d handler address is not addressable", n)
	}
	if err := c.Push(c.pc); err != nil {
		return err
	}
	c.pc = target
	return nil
}
