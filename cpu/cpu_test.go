package cpu

import (
	"testing"

	"github.com/neptune-vm/neptune/isa"
	"github.com/neptune-vm/neptune/membus"
	"github.com/neptune-vm/neptune/memmap"
)

func newTestCPU() (*CPU, *membus.Bus, *isa.Set) {
	bus := membus.New()
	set := isa.NewCanonicalSet()
	return New(bus, set), bus, set
}

// TestResetInitializesPointers verifies Reset sets PC/SP/HP to the
// canonical program-start, stack-top and heap-base addresses.
func TestResetInitializesPointers(t *testing.T) {
	c, bus, _ := newTestCPU()
	if c.PC() != bus.RAMBase() {
		t.Fatalf("PC = 0x%08x, want RAM base 0x%08x", c.PC(), bus.RAMBase())
	}
	if c.SP() != bus.RAMBase()+bus.RAMSize() {
		t.Fatalf("SP = 0x%08x, want stack top", c.SP())
	}
	if c.HP() != bus.RAMBase()+memmap.HeapOff {
		t.Fatalf("HP = 0x%08x, want heap base", c.HP())
	}
}

// TestPushPopRoundTrip verifies the stack round trip invariant: Pop after
// Push returns the same value and SP is restored.
func TestPushPopRoundTrip(t *testing.T) {
	c, _, _ := newTestCPU()
	sp0 := c.SP()

	if err := c.Push(0x12345678); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if c.SP() != sp0-4 {
		t.Fatalf("SP after Push = 0x%08x, want 0x%08x", c.SP(), sp0-4)
	}

	v, err := c.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if v != 0x12345678 {
		t.Fatalf("Pop = 0x%08x, want 0x12345678", v)
	}
	if c.SP() != sp0 {
		t.Fatalf("SP after Pop = 0x%08x, want 0x%08x", c.SP(), sp0)
	}
}

// TestAllocateHeapBumpsUpward verifies successive allocations return
// increasing, word-aligned addresses.
func TestAllocateHeapBumpsUpward(t *testing.T) {
	c, _, _ := newTestCPU()
	a, err := c.AllocateHeap(10)
	if err != nil {
		t.Fatalf("AllocateHeap(10): %v", err)
	}
	b, err := c.AllocateHeap(4)
	if err != nil {
		t.Fatalf("AllocateHeap(4): %v", err)
	}
	if b != a+12 { // 10 rounds up to 12
		t.Fatalf("second allocation at 0x%08x, want 0x%08x", b, a+12)
	}
}

// TestHeapStackCollisionFault verifies a heap allocation that would meet
// or pass the current stack pointer fails with HeapStackCollision, and a
// push that would do the same fails too.
func TestHeapStackCollisionFault(t *testing.T) {
	c, bus, _ := newTestCPU()

	// Shrink the gap between HP and SP to force a collision.
	c.sp = c.hp + 4

	if _, err := c.AllocateHeap(8); err == nil {
		t.Fatal("AllocateHeap across the stack pointer should fail")
	}

	c.sp = bus.RAMBase() + bus.RAMSize()
	c.hp = c.sp - 4
	if err := c.Push(1); err == nil {
		t.Fatal("Push colliding with the heap pointer should fail")
	}
}

// TestStepExecutesMOVIAndAdvancesPC verifies Step decodes a two-word
// instruction, runs its semantic action, and advances PC past both words.
func TestStepExecutesMOVIAndAdvancesPC(t *testing.T) {
	c, bus, set := newTestCPU()
	inst, _ := set.Lookup("MOVI")
	start := c.PC()
	bus.WriteWord(start, isa.Encode(inst.Opcode, 2, 0))
	bus.WriteWord(start+4, 0x00000042)

	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.PC() != start+8 {
		t.Fatalf("PC after MOVI = 0x%08x, want 0x%08x", c.PC(), start+8)
	}
	v, _ := c.Reg(2)
	if v != 0x42 {
		t.Fatalf("r2 = 0x%x, want 0x42", v)
	}
}

// TestStepUnknownOpcodeFaults verifies fetching an unregistered opcode
// byte faults instead of panicking.
func TestStepUnknownOpcodeFaults(t *testing.T) {
	c, bus, _ := newTestCPU()
	bus.WriteWord(c.PC(), 0xFF) // opcode 0xFF is never registered
	if err := c.Step(); err == nil {
		t.Fatal("Step on an unknown opcode should fault")
	}
}

// TestSyscallDispatchesToROMHandlerAndReturns verifies SYSCALL looks up
// the ROM table, pushes the return address, jumps to the handler, and
// RET pops back to the instruction after SYSCALL.
func TestSyscallDispatchesToROMHandlerAndReturns(t *testing.T) {
	c, bus, set := newTestCPU()

	handlerAddr := memmap.SyscallCodeBase
	retInst, _ := set.Lookup("RET")
	bus.ROM().WriteWordDirect(handlerAddr, isa.Encode(retInst.Opcode, 0, 0))

	slot := uint32(1)
	entryAddr := memmap.SyscallTableBase + slot*memmap.SyscallSlotSize
	bus.ROM().WriteWordDirect(entryAddr, handlerAddr)

	syscallInst, _ := set.Lookup("SYSCALL")
	start := c.PC()
	bus.WriteWord(start, isa.Encode(syscallInst.Opcode, 0, 0))
	c.SetReg(0, slot)

	if err := c.Step(); err != nil { // executes SYSCALL
		t.Fatalf("Step (SYSCALL): %v", err)
	}
	if c.PC() != handlerAddr {
		t.Fatalf("PC after SYSCALL = 0x%08x, want handler 0x%08x", c.PC(), handlerAddr)
	}

	if err := c.Step(); err != nil { // executes RET
		t.Fatalf("Step (RET): %v", err)
	}
	if c.PC() != start+4 {
		t.Fatalf("PC after RET = 0x%08x, want 0x%08x", c.PC(), start+4)
	}
}

// TestSyscallUnregisteredSlotFaults verifies dispatching an empty syscall
// table slot fails rather than jumping to address zero.
func TestSyscallUnregisteredSlotFaults(t *testing.T) {
	c, _, _ := newTestCPU()
	if err := c.Syscall(9); err == nil {
		t.Fatal("Syscall on an unregistered slot should fault")
	}
}

// TestRegPCSPHPAliases verifies register indices 252-254 transparently
// read/write PC, SP and HP.
func TestRegPCSPHPAliases(t *testing.T) {
	c, _, _ := newTestCPU()
	if err := c.SetReg(SPAlias, 0x9000); err != nil {
		t.Fatalf("SetReg(SPAlias): %v", err)
	}
	if c.SP() != 0x9000 {
		t.Fatalf("SP = 0x%08x, want 0x9000", c.SP())
	}
	v, err := c.Reg(SPAlias)
	if err != nil || v != 0x9000 {
		t.Fatalf("Reg(SPAlias) = 0x%08x, err=%v", v, err)
	}
}
