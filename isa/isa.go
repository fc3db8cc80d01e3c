// Package isa defines Neptune's instruction encoding and the registered
// table of opcodes, mirroring the "compiled table mapping opcode byte to
// decoder and semantic action" dispatch idiom: opcodes are byte-sized,
// assigned in deterministic registration order starting at 1, and stored
// in a fixed array rather than recreated per instruction.
package isa

import "github.com/neptune-vm/neptune/vmerr"

// Words counts how many 32-bit words an instruction occupies.
type Words int

const (
	OneWord Words = 1
	TwoWord Words = 2
)

// ExecFunc is the semantic action for one instruction. rDest and
// rSrcOrShift come straight from word0's fields; imm is word1 when the
// instruction is TwoWord (undefined otherwise).
type ExecFunc func(m Machine, rDest, rSrcOrShift byte, imm uint32) error

// Instruction is one entry in a Set: a mnemonic, its assigned opcode, its
// word count, and its semantic action.
type Instruction struct {
	Mnemonic string
	Opcode   byte
	Words    Words
	Exec     ExecFunc
}

// Set is the registered, ordered table of instructions a CPU executes
// against. Construct one with NewSet (a zero Set rejects every Register
// call); NewCanonicalSet builds the full mnemonic catalog.
type Set struct {
	byName   map[string]*Instruction
	byOpcode [256]*Instruction
	next     byte
}

// NewSet returns an empty instruction set ready for registration.
func NewSet() *Set {
	return &Set{byName: make(map[string]*Instruction), next: 1}
}

// Register assigns the next opcode (registration order, starting at 1) to
// mnemonic and returns it. Registering the same mnemonic twice, or
// exhausting the 255 available opcodes, is an error.
func (s *Set) Register(mnemonic string, words Words, exec ExecFunc) (byte, error) {
	if _, exists := s.byName[mnemonic]; exists {
		return 0, &vmerr.Error{Kind: vmerr.BadArgument, Message: "mnemonic already registered: " + mnemonic}
	}
	if s.next == 0 {
		return 0, &vmerr.Error{Kind: vmerr.BadArgument, Message: "instruction set exhausted (255 opcodes)"}
	}
	inst := &Instruction{Mnemonic: mnemonic, Opcode: s.next, Words: words, Exec: exec}
	s.byName[mnemonic] = inst
	s.byOpcode[inst.Opcode] = inst
	s.next++
	return inst.Opcode, nil
}

// Lookup finds an instruction by mnemonic (case is the caller's
// responsibility to normalize — the assembler upper-cases before calling).
func (s *Set) Lookup(mnemonic string) (*Instruction, bool) {
	inst, ok := s.byName[mnemonic]
	return inst, ok
}

// ByOpcode finds an instruction by its assigned opcode byte.
func (s *Set) ByOpcode(opcode byte) (*Instruction, bool) {
	inst := s.byOpcode[opcode]
	return inst, inst != nil
}

// Encode packs word0 from an opcode and its two register/shift fields,
// per the layout [31:24]=rDest [23:16]=rSrcOrShift [15:8]=reserved
// [7:0]=opcode.
func Encode(opcode, rDest, rSrcOrShift byte) uint32 {
	return uint32(rDest)<<24 | uint32(rSrcOrShift)<<16 | uint32(opcode)
}

// Decode unpacks word0 into its opcode and register/shift fields. The
// reserved byte [15:8] is ignored, matching the decoding discipline that
// requires it be zero on assembly but tolerates any value on decode.
func Decode(word0 uint32) (opcode, rDest, rSrcOrShift byte) {
	opcode = byte(word0)
	rDest = byte(word0 >> 24)
	rSrcOrShift = byte(word0 >> 16)
	return
}
