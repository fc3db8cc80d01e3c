package isa

import "testing"

// TestEncodeDecodeRoundTrip verifies word0's field layout survives an
// Encode/Decode round trip.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	word0 := Encode(0x07, 3, 5)
	opcode, rDest, rSrc := Decode(word0)
	if opcode != 0x07 || rDest != 3 || rSrc != 5 {
		t.Fatalf("Decode(Encode(0x07,3,5)) = (0x%02x,%d,%d), want (0x07,3,5)", opcode, rDest, rSrc)
	}
}

// TestRegisterAssignsSequentialOpcodes verifies opcodes are assigned in
// registration order, starting at 1.
func TestRegisterAssignsSequentialOpcodes(t *testing.T) {
	s := NewSet()
	op1, err := s.Register("ADD", OneWord, nil)
	if err != nil {
		t.Fatalf("Register(ADD): %v", err)
	}
	op2, err := s.Register("SUB", OneWord, nil)
	if err != nil {
		t.Fatalf("Register(SUB): %v", err)
	}
	if op1 != 1 || op2 != 2 {
		t.Fatalf("opcodes = %d,%d, want 1,2", op1, op2)
	}
}

// TestRegisterDuplicateMnemonicFails verifies a second registration of
// the same mnemonic is rejected.
func TestRegisterDuplicateMnemonicFails(t *testing.T) {
	s := NewSet()
	if _, err := s.Register("ADD", OneWord, nil); err != nil {
		t.Fatalf("first Register(ADD): %v", err)
	}
	if _, err := s.Register("ADD", OneWord, nil); err == nil {
		t.Fatal("second Register(ADD) should have failed")
	}
}

// TestLookupAndByOpcode verifies both lookup paths find the same
// instruction.
func TestLookupAndByOpcode(t *testing.T) {
	s := NewSet()
	op, _ := s.Register("HLT", OneWord, nil)

	byName, ok := s.Lookup("HLT")
	if !ok || byName.Opcode != op {
		t.Fatalf("Lookup(HLT) = %+v, ok=%v", byName, ok)
	}
	byOp, ok := s.ByOpcode(op)
	if !ok || byOp.Mnemonic != "HLT" {
		t.Fatalf("ByOpcode(%d) = %+v, ok=%v", op, byOp, ok)
	}
}

// TestNewCanonicalSetRegistersEveryMnemonic spot-checks that the
// canonical catalog registers every mnemonic the assembler's shape table
// expects to exist, with the word counts the assembler assumes.
func TestNewCanonicalSetRegistersEveryMnemonic(t *testing.T) {
	s := NewCanonicalSet()
	cases := []struct {
		mnemonic string
		words    Words
	}{
		{"ADD", OneWord}, {"ADDI", TwoWord},
		{"SHL", OneWord}, {"SHR", OneWord},
		{"MOVI", TwoWord}, {"LOADI", TwoWord}, {"STORI", TwoWord},
		{"JMP", TwoWord}, {"CALL", TwoWord}, {"RET", OneWord},
		{"SYSCALL", OneWord}, {"NOP", OneWord}, {"HLT", OneWord},
	}
	for _, c := range cases {
		inst, ok := s.Lookup(c.mnemonic)
		if !ok {
			t.Fatalf("canonical set missing mnemonic %s", c.mnemonic)
		}
		if inst.Words != c.words {
			t.Fatalf("%s: Words = %d, want %d", c.mnemonic, inst.Words, c.words)
		}
	}
}

// TestDivisionByZeroFault verifies DIV's semantic action reports
// DivisionByZero rather than panicking, exercised through the Machine
// interface via a minimal fake.
func TestDivisionByZeroFault(t *testing.T) {
	s := NewCanonicalSet()
	inst, _ := s.Lookup("DIV")
	m := newFakeMachine()
	m.regs[0] = 10
	m.regs[1] = 0
	if err := inst.Exec(m, 0, 1, 0); err == nil {
		t.Fatal("DIV by zero should fail")
	}
}

// TestCompareAndConditionalJumpUnsignedOrdering verifies CMP sets C to
// an unsigned borrow (a < b) and that JB/JAE/JA/JBE branch on the
// unsigned-below/above-or-equal conditions that convention, matching
// CMP's own carry semantics.
func TestCompareAndConditionalJumpUnsignedOrdering(t *testing.T) {
	s := NewCanonicalSet()
	cmp, _ := s.Lookup("CMP")
	jb, _ := s.Lookup("JB")
	jae, _ := s.Lookup("JAE")
	ja, _ := s.Lookup("JA")
	jbe, _ := s.Lookup("JBE")

	// r0=1, r1=2: unsigned 1 < 2, so CMP r0,r1 must borrow (C=true).
	m := newFakeMachine()
	m.regs[0] = 1
	m.regs[1] = 2
	if err := cmp.Exec(m, 0, 1, 0); err != nil {
		t.Fatalf("CMP: %v", err)
	}
	if !m.fl.C {
		t.Fatal("CMP(1,2): C must be set (1 < 2 unsigned, a borrow occurred)")
	}

	m.pc = 0
	if err := jb.Exec(m, 0, 0, 0x100); err != nil {
		t.Fatalf("JB: %v", err)
	}
	if m.pc != 0x100 {
		t.Fatal("JB must jump when the prior CMP found a < b (below)")
	}

	m.pc = 0
	if err := jae.Exec(m, 0, 0, 0x200); err != nil {
		t.Fatalf("JAE: %v", err)
	}
	if m.pc == 0x200 {
		t.Fatal("JAE must not jump when the prior CMP found a < b")
	}

	m.pc = 0
	if err := ja.Exec(m, 0, 0, 0x300); err != nil {
		t.Fatalf("JA: %v", err)
	}
	if m.pc == 0x300 {
		t.Fatal("JA must not jump when the prior CMP found a < b")
	}

	m.pc = 0
	if err := jbe.Exec(m, 0, 0, 0x400); err != nil {
		t.Fatalf("JBE: %v", err)
	}
	if m.pc != 0x400 {
		t.Fatal("JBE must jump when the prior CMP found a < b (below-or-equal)")
	}

	// r0=5, r1=2: unsigned 5 > 2, no borrow; JA must jump, JB must not.
	m.regs[0] = 5
	m.regs[1] = 2
	if err := cmp.Exec(m, 0, 1, 0); err != nil {
		t.Fatalf("CMP: %v", err)
	}
	if m.fl.C {
		t.Fatal("CMP(5,2): C must be clear (5 >= 2 unsigned, no borrow)")
	}
	m.pc = 0
	if err := ja.Exec(m, 0, 0, 0x500); err != nil {
		t.Fatalf("JA: %v", err)
	}
	if m.pc != 0x500 {
		t.Fatal("JA must jump when the prior CMP found a > b and not equal")
	}
	m.pc = 0
	if err := jb.Exec(m, 0, 0, 0x600); err != nil {
		t.Fatalf("JB: %v", err)
	}
	if m.pc == 0x600 {
		t.Fatal("JB must not jump when the prior CMP found a > b")
	}
}

// TestShiftLeftSetsCarryFromLastBitOut verifies SHL's carry-out rule:
// the bit shifted out of bit 31 lands in C.
func TestShiftLeftSetsCarryFromLastBitOut(t *testing.T) {
	s := NewCanonicalSet()
	inst, _ := s.Lookup("SHL")
	m := newFakeMachine()
	m.regs[0] = 0x80000001
	if err := inst.Exec(m, 0, 1, 0); err != nil {
		t.Fatalf("SHL: %v", err)
	}
	if m.regs[0] != 2 {
		t.Fatalf("SHL by 1: regs[0] = 0x%x, want 0x2", m.regs[0])
	}
	if !m.fl.C {
		t.Fatal("SHL by 1 on 0x80000001 must set carry from the bit shifted out of bit 31")
	}
}
