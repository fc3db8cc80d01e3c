package isa

import "fmt"

// Disassemble formats one decoded instruction for the disasm CLI
// subcommand, grounded on the teacher's per-architecture
// debug_disasm_*.go family.
func (s *Set) Disassemble(word0, word1 uint32) string {
	opcode, rDest, rSrcOrShift := Decode(word0)
	inst, ok := s.ByOpcode(opcode)
	if !ok {
		return fmt.Sprintf("??? (opcode=0x%02x)", opcode)
	}
	if inst.Words == TwoWord {
		return fmt.Sprintf("%s r%d, 0x%x", inst.Mnemonic, rDest, word1)
	}
	return fmt.Sprintf("%s r%d, r%d", inst.Mnemonic, rDest, rSrcOrShift)
}
