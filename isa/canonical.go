package isa

import "github.com/neptune-vm/neptune/vmerr"

// NewCanonicalSet registers Neptune's full mnemonic catalog in a fixed,
// deterministic order so that opcode assignment (registration order
// starting at 1) is stable across the lifetime of any Set built this way.
func NewCanonicalSet() *Set {
	s := NewSet()
	for _, reg := range canonicalRegistrations {
		if _, err := s.Register(reg.mnemonic, reg.words, reg.exec); err != nil {
			// The canonical table is fixed at compile time; a registration
			// failure here means the table itself is broken.
			panic(err)
		}
	}
	return s
}

type registration struct {
	mnemonic string
	words    Words
	exec     ExecFunc
}

// arithOp computes a binary op over two 32-bit operands.
type arithOp func(a, b uint32) (uint32, error)

func opAdd(a, b uint32) (uint32, error) { return a + b, nil }
func opSub(a, b uint32) (uint32, error) { return a - b, nil }
func opMul(a, b uint32) (uint32, error) { return a * b, nil }
func opDiv(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, &vmerr.Error{Kind: vmerr.DivisionByZero, Message: "division by zero"}
	}
	return a / b, nil
}
func opMod(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, &vmerr.Error{Kind: vmerr.DivisionByZero, Message: "modulo by zero"}
	}
	return a % b, nil
}

// regRegArith builds an ExecFunc for a 1-word reg-reg arithmetic/logical
// instruction; updateFlags decides which flag-update rule applies.
func regRegArith(op arithOp, updateFlags func(m Machine, a, b, r uint32)) ExecFunc {
	return func(m Machine, rDest, rSrc byte, _ uint32) error {
		a, err := m.Reg(rDest)
		if err != nil {
			return err
		}
		b, err := m.Reg(rSrc)
		if err != nil {
			return err
		}
		r, err := op(a, b)
		if err != nil {
			return err
		}
		if err := m.SetReg(rDest, r); err != nil {
			return err
		}
		updateFlags(m, a, b, r)
		return nil
	}
}

// regImmArith is the two-word counterpart of regRegArith: the second
// operand is the literal immediate word rather than a register.
func regImmArith(op arithOp, updateFlags func(m Machine, a, b, r uint32)) ExecFunc {
	return func(m Machine, rDest, _ byte, imm uint32) error {
		a, err := m.Reg(rDest)
		if err != nil {
			return err
		}
		r, err := op(a, imm)
		if err != nil {
			return err
		}
		if err := m.SetReg(rDest, r); err != nil {
			return err
		}
		updateFlags(m, a, imm, r)
		return nil
	}
}

func updateLogical(m Machine, _, _, r uint32) { m.Flags().Update(r) }
func updateAdd(m Machine, a, b, r uint32)     { m.Flags().UpdateAdd(a, b, r) }
func updateSub(m Machine, a, b, r uint32)     { m.Flags().UpdateSub(a, b, r) }

func unary(f func(a uint32) uint32) ExecFunc {
	return func(m Machine, rDest, _ byte, _ uint32) error {
		a, err := m.Reg(rDest)
		if err != nil {
			return err
		}
		r := f(a)
		if err := m.SetReg(rDest, r); err != nil {
			return err
		}
		m.Flags().Update(r)
		return nil
	}
}

func shiftLeft(m Machine, rDest, rShift byte, _ uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	n := uint(rShift) & 0x1F
	r := a << n
	if err := m.SetReg(rDest, r); err != nil {
		return err
	}
	m.Flags().Update(r)
	if n > 0 {
		m.Flags().SetCarry((a>>(32-n))&1 != 0)
	}
	return nil
}

func shiftRight(m Machine, rDest, rShift byte, _ uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	n := uint(rShift) & 0x1F
	r := a >> n
	if err := m.SetReg(rDest, r); err != nil {
		return err
	}
	m.Flags().Update(r)
	if n > 0 {
		m.Flags().SetCarry((a>>(n-1))&1 != 0)
	}
	return nil
}

func execLoad(m Machine, rDest, rSrc byte, _ uint32) error {
	addr, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	v, err := m.ReadWord(addr)
	if err != nil {
		return err
	}
	if err := m.SetReg(rDest, v); err != nil {
		return err
	}
	m.Flags().Update(v)
	return nil
}

func execStore(m Machine, rDest, rSrc byte, _ uint32) error {
	addr, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	v, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	return m.WriteWord(addr, v)
}

func execLoadI(m Machine, rDest, _ byte, imm uint32) error {
	if err := m.SetReg(rDest, imm); err != nil {
		return err
	}
	m.Flags().Update(imm)
	return nil
}

func execStorI(m Machine, rDest, _ byte, imm uint32) error {
	v, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	return m.WriteWord(imm, v)
}

// blockCount reads the word count for MSET/MCPY from general-purpose
// register 1, as the catalog names it explicitly rather than taking it
// from either instruction field.
func blockCount(m Machine) (uint32, error) {
	return m.Reg(1)
}

func execMSet(m Machine, rDest, rSrc byte, _ uint32) error {
	count, err := blockCount(m)
	if err != nil {
		return err
	}
	dest, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	val, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if err := m.WriteWord(dest+i*4, val); err != nil {
			return err
		}
	}
	return nil
}

func execMCpy(m Machine, rDest, rSrc byte, _ uint32) error {
	count, err := blockCount(m)
	if err != nil {
		return err
	}
	dest, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	src, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	if dest > src && dest < src+count*4 {
		for i := count; i > 0; i-- {
			idx := i - 1
			v, err := m.ReadWord(src + idx*4)
			if err != nil {
				return err
			}
			if err := m.WriteWord(dest+idx*4, v); err != nil {
				return err
			}
		}
		return nil
	}
	for i := uint32(0); i < count; i++ {
		v, err := m.ReadWord(src + i*4)
		if err != nil {
			return err
		}
		if err := m.WriteWord(dest+i*4, v); err != nil {
			return err
		}
	}
	return nil
}

func execMov(m Machine, rDest, rSrc byte, _ uint32) error {
	v, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	if err := m.SetReg(rDest, v); err != nil {
		return err
	}
	m.Flags().Update(v)
	return nil
}

func execMovI(m Machine, rDest, _ byte, imm uint32) error {
	if err := m.SetReg(rDest, imm); err != nil {
		return err
	}
	m.Flags().Update(imm)
	return nil
}

func execCmp(m Machine, rDest, rSrc byte, _ uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	b, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	m.Flags().UpdateSub(a, b, a-b)
	return nil
}

func execCmpI(m Machine, rDest, _ byte, imm uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	m.Flags().UpdateSub(a, imm, a-imm)
	return nil
}

func execTest(m Machine, rDest, rSrc byte, _ uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	b, err := m.Reg(rSrc)
	if err != nil {
		return err
	}
	m.Flags().Update(a & b)
	return nil
}

func execTestI(m Machine, rDest, _ byte, imm uint32) error {
	a, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	m.Flags().Update(a & imm)
	return nil
}

// jump builds an ExecFunc for a conditional absolute jump; predicate
// receives the current flags and decides whether to branch.
func jump(predicate func(m Machine) bool) ExecFunc {
	return func(m Machine, _, _ byte, imm uint32) error {
		if predicate == nil || predicate(m) {
			m.SetPC(imm)
		}
		return nil
	}
}

func predZ(m Machine) bool   { return m.Flags().Z }
func predNZ(m Machine) bool  { return !m.Flags().Z }
func predN(m Machine) bool   { return m.Flags().N }
func predNN(m Machine) bool  { return !m.Flags().N }
func predG(m Machine) bool   { return !m.Flags().Z && !m.Flags().N }
func predGE(m Machine) bool  { return !m.Flags().N }
func predL(m Machine) bool   { return m.Flags().N }
func predLE(m Machine) bool  { return m.Flags().N || m.Flags().Z }
func predC(m Machine) bool   { return m.Flags().C }
func predNC(m Machine) bool  { return !m.Flags().C }
func predA(m Machine) bool   { return !m.Flags().C && !m.Flags().Z }
func predBE(m Machine) bool  { return m.Flags().C || m.Flags().Z }

func execCall(m Machine, _, _ byte, imm uint32) error {
	if err := m.Push(m.PC()); err != nil {
		return err
	}
	m.SetPC(imm)
	return nil
}

func execRet(m Machine, _, _ byte, _ uint32) error {
	addr, err := m.Pop()
	if err != nil {
		return err
	}
	m.SetPC(addr)
	return nil
}

func execPush(m Machine, rDest, _ byte, _ uint32) error {
	v, err := m.Reg(rDest)
	if err != nil {
		return err
	}
	return m.Push(v)
}

func execPop(m Machine, rDest, _ byte, _ uint32) error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	if err := m.SetReg(rDest, v); err != nil {
		return err
	}
	m.Flags().Update(v)
	return nil
}

func execSyscall(m Machine, _, _ byte, _ uint32) error {
	n, err := m.Reg(0)
	if err != nil {
		return err
	}
	return m.Syscall(n)
}

func execNop(m Machine, _, _ byte, _ uint32) error { return nil }

func execHlt(m Machine, _, _ byte, _ uint32) error {
	m.Halt()
	return nil
}

var canonicalRegistrations = []registration{
	{"ADD", OneWord, regRegArith(opAdd, updateAdd)},
	{"SUB", OneWord, regRegArith(opSub, updateSub)},
	{"MUL", OneWord, regRegArith(opMul, updateLogical)},
	{"DIV", OneWord, regRegArith(opDiv, updateLogical)},
	{"MOD", OneWord, regRegArith(opMod, updateLogical)},

	{"ADDI", TwoWord, regImmArith(opAdd, updateAdd)},
	{"SUBI", TwoWord, regImmArith(opSub, updateSub)},
	{"MULI", TwoWord, regImmArith(opMul, updateLogical)},
	{"DIVI", TwoWord, regImmArith(opDiv, updateLogical)},
	{"MODI", TwoWord, regImmArith(opMod, updateLogical)},

	{"INC", OneWord, unary(func(a uint32) uint32 { return a + 1 })},
	{"DEC", OneWord, unary(func(a uint32) uint32 { return a - 1 })},
	{"NEG", OneWord, unary(func(a uint32) uint32 { return uint32(-int32(a)) })},
	{"NOT", OneWord, unary(func(a uint32) uint32 { return ^a })},
	{"CLR", OneWord, unary(func(uint32) uint32 { return 0 })},

	{"AND", OneWord, regRegArith(func(a, b uint32) (uint32, error) { return a & b, nil }, updateLogical)},
	{"OR", OneWord, regRegArith(func(a, b uint32) (uint32, error) { return a | b, nil }, updateLogical)},
	{"XOR", OneWord, regRegArith(func(a, b uint32) (uint32, error) { return a ^ b, nil }, updateLogical)},

	{"ANDI", TwoWord, regImmArith(func(a, b uint32) (uint32, error) { return a & b, nil }, updateLogical)},
	{"ORI", TwoWord, regImmArith(func(a, b uint32) (uint32, error) { return a | b, nil }, updateLogical)},
	{"XORI", TwoWord, regImmArith(func(a, b uint32) (uint32, error) { return a ^ b, nil }, updateLogical)},

	{"SHL", OneWord, shiftLeft},
	{"SHR", OneWord, shiftRight},

	{"LOAD", OneWord, execLoad},
	{"STORE", OneWord, execStore},
	{"LOADI", TwoWord, execLoadI},
	{"STORI", TwoWord, execStorI},

	{"MSET", OneWord, execMSet},
	{"MCPY", OneWord, execMCpy},

	{"MOV", OneWord, execMov},
	{"MOVI", TwoWord, execMovI},

	{"CMP", OneWord, execCmp},
	{"CMPI", TwoWord, execCmpI},
	{"TEST", OneWord, execTest},
	{"TESTI", TwoWord, execTestI},

	{"JMP", TwoWord, jump(nil)},
	{"JZ", TwoWord, jump(predZ)},
	{"JE", TwoWord, jump(predZ)},
	{"JNZ", TwoWord, jump(predNZ)},
	{"JNE", TwoWord, jump(predNZ)},
	{"JN", TwoWord, jump(predN)},
	{"JP", TwoWord, jump(predNN)},
	{"JG", TwoWord, jump(predG)},
	{"JGE", TwoWord, jump(predGE)},
	{"JL", TwoWord, jump(predL)},
	{"JLE", TwoWord, jump(predLE)},
	{"JC", TwoWord, jump(predC)},
	{"JB", TwoWord, jump(predC)},
	{"JNC", TwoWord, jump(predNC)},
	{"JAE", TwoWord, jump(predNC)},
	{"JA", TwoWord, jump(predA)},
	{"JBE", TwoWord, jump(predBE)},

	{"CALL", TwoWord, execCall},
	{"RET", OneWord, execRet},

	{"PUSH", OneWord, execPush},
	{"POP", OneWord, execPop},

	{"SYSCALL", OneWord, execSyscall},
	{"NOP", OneWord, execNop},
	{"HLT", OneWord, execHlt},
}
