// Package asm implements Neptune's two-pass assembler: macro expansion,
// data-section layout, label and constant resolution, and instruction
// encoding into a memory image ready to load onto a bus.
package asm

import (
	"strconv"
	"strings"

	"github.com/neptune-vm/neptune/isa"
	"github.com/neptune-vm/neptune/membus"
	"github.com/neptune-vm/neptune/memmap"
	"github.com/neptune-vm/neptune/vmerr"
)

// Image is the result of a successful assembly: the entry address the
// loader should set PC to, plus the populated ROM syscall table entries
// for diagnostics.
type Image struct {
	EntryPoint uint32
	Syscalls   map[uint32]uint32 // slot -> handler address
	Labels     map[string]uint32
}

type codeItem struct {
	label    string // non-empty for a bare label-binding line
	syscall  bool
	slot     uint32
	slotName string

	mnemonic string
	args     []string
	addr     uint32
	inROM    bool
	sh       shape
	line     int
}

// Assembler drives the two-pass assembly of one source file against a
// fixed instruction set.
type Assembler struct {
	set      *isa.Set
	filename string

	consts map[string]int64
	labels map[string]uint32

	dataDecls    []*dataDecl
	code         []*codeItem
	entryDefault uint32
}

// New returns an assembler that encodes instructions from set.
func New(set *isa.Set) *Assembler {
	return &Assembler{
		set:    set,
		consts: make(map[string]int64),
		labels: make(map[string]uint32),
	}
}

// Assemble assembles source (named filename for diagnostics) and writes
// the resulting program image directly into bus's ROM/RAM regions via
// their direct-write bypass, returning the entry point to run from.
func (a *Assembler) Assemble(source, filename string, bus *membus.Bus) (*Image, error) {
	a.filename = filename

	rawLines := strings.Split(source, "\n")
	included, err := expandIncludes(rawLines, filename, false)
	if err != nil {
		return nil, err
	}
	lines, err := expandMacros(included, filename)
	if err != nil {
		return nil, err
	}

	if err := a.pass1(lines); err != nil {
		return nil, err
	}

	img, err := a.pass2(bus)
	if err != nil {
		return nil, err
	}
	return img, nil
}

type section int

const (
	sectionNone section = iota
	sectionData
	sectionCode
)

// pass1 walks the macro-expanded source once, recognizing sections,
// recording .const definitions, laying out data declarations (assigning
// each its address), and laying out code (assigning each instruction and
// label its address) without yet resolving operand values.
func (a *Assembler) pass1(lines []string) error {
	sect := sectionNone
	dataAddr := ramOrigin
	codeAddr := uint32(0) // fixed up once data size is known

	var pendingCode []*codeItem

	for i, raw := range lines {
		lineNum := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		switch {
		case strings.EqualFold(line, ".data"):
			sect = sectionData
			continue
		case strings.EqualFold(line, ".code"):
			sect = sectionCode
			continue
		}

		if strings.HasPrefix(line, ".const") {
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return vmerr.Syntax(vmerr.BadSyntax, a.filename, lineNum, "malformed .const directive")
			}
			v, ok := parseNumericLiteral(fields[2])
			if !ok {
				return vmerr.Syntax(vmerr.BadArgument, a.filename, lineNum, "invalid .const value: %s", fields[2])
			}
			if _, exists := a.consts[fields[1]]; exists {
				return vmerr.Syntax(vmerr.DuplicateLabel, a.filename, lineNum, "constant already defined: %s", fields[1])
			}
			a.consts[fields[1]] = v
			continue
		}

		switch sect {
		case sectionData:
			decl, err := parseDataDecl(line, lineNum, a.filename)
			if err != nil {
				return err
			}
			if decl == nil {
				continue
			}
			if _, exists := a.labels[decl.name]; exists {
				return vmerr.Syntax(vmerr.DuplicateLabel, a.filename, lineNum, "label already defined: %s", decl.name)
			}
			decl.addr = dataAddr
			a.labels[decl.name] = dataAddr
			dataAddr += decl.length
			a.dataDecls = append(a.dataDecls, decl)

		case sectionCode:
			// A label may share its line with the instruction it binds to
			// ("loop: SUB r1, r2"); split it off as its own item first.
			if f := strings.Fields(line); len(f) > 1 && strings.HasSuffix(f[0], ":") {
				pendingCode = append(pendingCode, &codeItem{label: strings.TrimSuffix(f[0], ":"), line: lineNum})
				line = strings.TrimSpace(line[len(f[0]):])
			}
			item, err := a.parseCodeLine(line, lineNum)
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			pendingCode = append(pendingCode, item)

		default:
			return vmerr.Syntax(vmerr.BadSyntax, a.filename, lineNum, "statement outside .data/.code section")
		}
	}

	// Code starts immediately after the laid-out data, word-aligned.
	codeAddr = alignUp4(dataAddr)

	// A syscall handler's block (its label and the instructions through its
	// closing RET) is laid out in ROM, at the canonical handler area, since
	// the syscall table's slots point into ROM and handlers are logically
	// part of the boot image rather than the running program. Everything
	// else lays out in RAM as the main program stream.
	ramAddr := codeAddr
	romAddr := memmap.SyscallCodeBase
	inHandler := false

	for _, item := range pendingCode {
		switch {
		case item.syscall:
			if _, exists := a.labels[item.slotName]; exists {
				return vmerr.Syntax(vmerr.DuplicateLabel, a.filename, item.line, "label already defined: %s", item.slotName)
			}
			a.labels[item.slotName] = romAddr
			inHandler = true
		case item.label != "":
			if _, exists := a.labels[item.label]; exists {
				return vmerr.Syntax(vmerr.DuplicateLabel, a.filename, item.line, "label already defined: %s", item.label)
			}
			if inHandler {
				a.labels[item.label] = romAddr
			} else {
				a.labels[item.label] = ramAddr
			}
		default:
			item.inROM = inHandler
			if inHandler {
				item.addr = romAddr
				romAddr += uint32(wordsFor(item.sh)) * 4
				if item.mnemonic == "RET" {
					inHandler = false
				}
			} else {
				item.addr = ramAddr
				ramAddr += uint32(wordsFor(item.sh)) * 4
			}
		}
	}

	a.code = pendingCode
	a.entryDefault = codeAddr
	return nil
}

// ramOrigin is the base address the program region (data followed by
// code) starts at.
const ramOrigin uint32 = memmap.RAMBase

// parseCodeLine recognizes one .code-section statement: a bare label
// ("name:"), a syscall table declaration ("syscall N name:"), or an
// instruction line ("MNEMONIC arg1, arg2"). pass1 splits a leading label
// off an instruction line before calling it.
func (a *Assembler) parseCodeLine(line string, lineNum int) (*codeItem, error) {
	fields := strings.Fields(line)

	// A bare "SYSCALL" is the instruction; only "syscall" with operands is
	// a table declaration.
	if strings.EqualFold(fields[0], "syscall") && len(fields) > 1 {
		if len(fields) != 3 || !strings.HasSuffix(fields[2], ":") {
			return nil, vmerr.Syntax(vmerr.BadSyntax, a.filename, lineNum, "malformed syscall declaration")
		}
		slot, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, vmerr.Syntax(vmerr.BadArgument, a.filename, lineNum, "invalid syscall slot: %s", fields[1])
		}
		return &codeItem{syscall: true, slot: uint32(slot), slotName: strings.TrimSuffix(fields[2], ":"), line: lineNum}, nil
	}

	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		return &codeItem{label: strings.TrimSuffix(fields[0], ":"), line: lineNum}, nil
	}

	mnemonic := strings.ToUpper(fields[0])
	sh, ok := shapeByMnemonic[mnemonic]
	if !ok {
		return nil, vmerr.Syntax(vmerr.UnknownMnemonic, a.filename, lineNum, "unknown instruction: %s", fields[0])
	}
	rest := strings.TrimSpace(line[len(fields[0]):])
	var args []string
	if rest != "" {
		args = splitArgs(rest)
	}
	return &codeItem{mnemonic: mnemonic, args: args, sh: sh, line: lineNum}, nil
}

// pass2 resolves every operand against the labels/consts recorded in
// pass1, encodes instructions, writes data bytes, and finalizes the ROM
// syscall table.
func (a *Assembler) pass2(bus *membus.Bus) (*Image, error) {
	for _, d := range a.dataDecls {
		if err := a.writeDataDecl(bus, d); err != nil {
			return nil, err
		}
	}

	syscalls := make(map[uint32]uint32)
	for _, item := range a.code {
		if item.syscall {
			addr, ok := a.labels[item.slotName]
			if !ok {
				return nil, vmerr.Syntax(vmerr.UndefinedLabel, a.filename, item.line, "undefined label: %s", item.slotName)
			}
			if _, exists := syscalls[item.slot]; exists {
				return nil, vmerr.Syntax(vmerr.DuplicateSyscall, a.filename, item.line, "syscall slot %d already registered", item.slot)
			}
			syscalls[item.slot] = addr
			continue
		}
		if item.label != "" {
			continue
		}
		if err := a.encodeInstruction(bus, item); err != nil {
			return nil, err
		}
	}

	rom := bus.ROM()
	for slot, addr := range syscalls {
		if slot >= memmap.SyscallSlots {
			return nil, vmerr.Syntax(vmerr.BadArgument, a.filename, 0, "syscall slot %d out of range", slot)
		}
		entryAddr := memmap.SyscallTableBase + slot*memmap.SyscallSlotSize
		if err := rom.WriteWordDirect(entryAddr, addr); err != nil {
			return nil, err
		}
	}

	entry, ok := a.labels["main"]
	if !ok {
		entry = a.entryDefault
	}

	return &Image{EntryPoint: entry, Syscalls: syscalls, Labels: a.labels}, nil
}

func (a *Assembler) writeDataDecl(bus *membus.Bus, d *dataDecl) error {
	ram := bus.RAM()
	switch d.kind {
	case "string":
		b := append([]byte(d.str), 0)
		for i, c := range b {
			if err := ram.WriteByteDirect(d.addr+uint32(i), c); err != nil {
				return err
			}
		}
	case "int":
		v, err := a.resolveValue(d.ints[0], d.line)
		if err != nil {
			return err
		}
		if err := ram.WriteWordDirect(d.addr, v); err != nil {
			return err
		}
	case "byte":
		v, err := a.resolveSigned(d.bVal, d.line)
		if err != nil {
			return err
		}
		if v < -128 || v > 255 {
			return vmerr.Syntax(vmerr.ByteOutOfRange, a.filename, d.line, "byte value %d out of range", v)
		}
		if err := ram.WriteByteDirect(d.addr, byte(uint32(v))); err != nil {
			return err
		}
	case "array":
		if len(d.ints) > d.size {
			return vmerr.Syntax(vmerr.ArrayOverflow, a.filename, d.line, "array %s: too many initializers", d.name)
		}
		for i := 0; i < d.size; i++ {
			var v uint32
			if i < len(d.ints) {
				rv, err := a.resolveValue(d.ints[i], d.line)
				if err != nil {
					return err
				}
				v = rv
			}
			if err := ram.WriteWordDirect(d.addr+uint32(i)*4, v); err != nil {
				return err
			}
		}
	case "buffer":
		for i := 0; i < int(d.length); i++ {
			if err := ram.WriteByteDirect(d.addr+uint32(i), 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveValue resolves a bare operand token to its 32-bit value: a
// numeric literal, a named constant, or a label address, in that order.
func (a *Assembler) resolveValue(tok string, line int) (uint32, error) {
	v, err := a.resolveSigned(tok, line)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// resolveSigned resolves a bare operand token the same way resolveValue
// does, but preserves the token's sign instead of collapsing it to
// uint32 up front — needed by callers (byte declarations) that must
// validate a signed range before truncating.
func (a *Assembler) resolveSigned(tok string, line int) (int64, error) {
	tok = strings.TrimSpace(tok)
	if v, ok := parseNumericLiteral(tok); ok {
		return v, nil
	}
	if v, ok := a.consts[tok]; ok {
		return v, nil
	}
	if v, ok := a.labels[tok]; ok {
		return int64(v), nil
	}
	return 0, vmerr.Syntax(vmerr.UndefinedLabel, a.filename, line, "undefined symbol: %s", tok)
}

func (a *Assembler) encodeInstruction(bus *membus.Bus, item *codeItem) error {
	inst, ok := a.set.Lookup(item.mnemonic)
	if !ok {
		return vmerr.Syntax(vmerr.UnknownMnemonic, a.filename, item.line, "unknown instruction: %s", item.mnemonic)
	}

	var rDest, rSrcOrShift byte
	var imm uint32
	var hasImm bool

	switch item.sh {
	case shapeNone:
		if len(item.args) != 0 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s takes no operands", item.mnemonic)
		}
	case shapeReg:
		if len(item.args) != 1 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s expects one register operand", item.mnemonic)
		}
		r, ok := parseRegister(item.args[0])
		if !ok {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "not a register: %s", item.args[0])
		}
		rDest = r
	case shapeRegReg:
		if len(item.args) != 2 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s expects two register operands", item.mnemonic)
		}
		rd, ok := parseRegister(item.args[0])
		if !ok {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "not a register: %s", item.args[0])
		}
		rs, ok := parseRegister(item.args[1])
		if !ok {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "not a register: %s", item.args[1])
		}
		rDest, rSrcOrShift = rd, rs
	case shapeRegImm:
		if len(item.args) != 2 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s expects a register and an immediate", item.mnemonic)
		}
		rd, ok := parseRegister(item.args[0])
		if !ok {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "not a register: %s", item.args[0])
		}
		rDest = rd
		v, err := a.resolveValue(item.args[1], item.line)
		if err != nil {
			return err
		}
		imm, hasImm = v, true
	case shapeRegShift:
		if len(item.args) != 2 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s expects a register and a shift count", item.mnemonic)
		}
		rd, ok := parseRegister(item.args[0])
		if !ok {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "not a register: %s", item.args[0])
		}
		n, ok := parseNumericLiteral(item.args[1])
		if !ok || n < 0 || n > 0xFF {
			return vmerr.Syntax(vmerr.BadOperand, a.filename, item.line, "invalid shift count: %s", item.args[1])
		}
		rDest, rSrcOrShift = rd, byte(n)
	case shapeImm:
		if len(item.args) != 1 {
			return vmerr.Syntax(vmerr.BadArgument, a.filename, item.line, "%s expects one address operand", item.mnemonic)
		}
		v, err := a.resolveValue(item.args[0], item.line)
		if err != nil {
			return err
		}
		imm, hasImm = v, true
	}

	word0 := isa.Encode(inst.Opcode, rDest, rSrcOrShift)
	region := bus.RAM()
	if item.inROM {
		region = bus.ROM()
	}
	if err := region.WriteWordDirect(item.addr, word0); err != nil {
		return err
	}
	if hasImm {
		if err := region.WriteWordDirect(item.addr+4, imm); err != nil {
			return err
		}
	}
	return nil
}
