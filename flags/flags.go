// Package flags implements Neptune's four condition-code bits — Zero,
// Negative, Carry and Overflow — and the three distinct update rules
// used by the instruction set: logical, additive and subtractive/compare.
package flags

// Flags holds the four condition codes.
type Flags struct {
	Z bool // Zero: result == 0
	N bool // Negative: bit 31 of result set
	C bool // Carry: unsigned carry/borrow out, or last bit shifted out
	V bool // Overflow: signed overflow
}

// Clear resets all four flags to false.
func (f *Flags) Clear() {
	*f = Flags{}
}

// Update applies the logical-operation rule (AND/OR/XOR/NOT/shifts): Z and
// N are derived from the result, C and V are left untouched unless the
// caller sets them explicitly (shift instructions set C separately via
// SetCarry).
func (f *Flags) Update(result uint32) {
	f.Z = result == 0
	f.N = result&0x80000000 != 0
}

// UpdateAdd applies the additive rule (ADD/ADDI): Z and N from the result,
// C is the unsigned carry out of the 32-bit addition, V is the signed
// overflow (operands share a sign and the result's sign differs from
// theirs).
func (f *Flags) UpdateAdd(a, b, result uint32) {
	f.Z = result == 0
	f.N = result&0x80000000 != 0
	f.C = uint64(a)+uint64(b) > 0xFFFFFFFF
	signA := a&0x80000000 != 0
	signB := b&0x80000000 != 0
	signR := result&0x80000000 != 0
	f.V = signA == signB && signR != signA
}

// UpdateSub applies the subtractive/compare rule (SUB/SUBI/CMP/CMPI): Z and N
// from the result, C is set when a borrow occurred (unsigned a < b), V is
// the signed overflow of a - b.
func (f *Flags) UpdateSub(a, b, result uint32) {
	f.Z = result == 0
	f.N = result&0x80000000 != 0
	f.C = a < b
	signA := a&0x80000000 != 0
	signB := b&0x80000000 != 0
	signR := result&0x80000000 != 0
	f.V = signA != signB && signR != signA
}

// SetCarry sets C directly, used by shift instructions to record the last
// bit shifted out. A shift count of zero must not call this — the flag is
// left unchanged in that case.
func (f *Flags) SetCarry(c bool) {
	f.C = c
}
