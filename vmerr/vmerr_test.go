package vmerr

import (
	"strings"
	"testing"
)

// TestSyntaxErrorIncludesFileAndLine verifies an assembly-time error
// message carries its file:line anchor.
func TestSyntaxErrorIncludesFileAndLine(t *testing.T) {
	err := Syntax(UndefinedLabel, "prog.nasm", 7, "undefined symbol: %s", "foo")
	msg := err.Error()
	if !strings.Contains(msg, "prog.nasm:7") {
		t.Fatalf("message %q missing file:line anchor", msg)
	}
	if !strings.Contains(msg, "undefined symbol: foo") {
		t.Fatalf("message %q missing formatted text", msg)
	}
}

// TestFaultErrorIncludesAddress verifies an execution-time fault carries
// its address, and that WithReg/WithOpcode append further context.
func TestFaultErrorIncludesAddress(t *testing.T) {
	err := Fault(DivisionByZero, 0x2000, "division by zero")
	msg := err.Error()
	if !strings.Contains(msg, "addr=0x00002000") {
		t.Fatalf("message %q missing address", msg)
	}

	err = err.WithReg(3).WithOpcode(0x05)
	msg = err.Error()
	if !strings.Contains(msg, "reg=3") || !strings.Contains(msg, "opcode=0x05") {
		t.Fatalf("message %q missing reg/opcode context", msg)
	}
}

// TestKindStringCoversEveryKind verifies every Kind constant has a
// non-default String() so fault logs never print "unknown error" for a
// kind that actually exists.
func TestKindStringCoversEveryKind(t *testing.T) {
	kinds := []Kind{
		BadSyntax, UndefinedLabel, DuplicateLabel, UnknownDirective, UnknownMnemonic,
		BadOperand, BadArgument, CircularInclude, IOFailure, DuplicateSyscall,
		ArrayOverflow, ByteOutOfRange,
		AddressOutOfRange, InvalidAddress, ROMWrite, UnalignedAccess, UnknownOpcode,
		InvalidRegister, StackOverflow, StackUnderflow, HeapExhausted, HeapStackCollision,
		DivisionByZero, UnknownSyscall, SyscallOutOfRange, SyscallNotImplemented,
		SyscallInvalidTarget,
	}
	for _, k := range kinds {
		if k.String() == "unknown error" {
			t.Fatalf("Kind %d has no String() case", k)
		}
	}
}
