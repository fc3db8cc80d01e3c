package membus

import (
	"github.com/neptune-vm/neptune/devices"
	"github.com/neptune-vm/neptune/iobus"
	"github.com/neptune-vm/neptune/memmap"
	"github.com/neptune-vm/neptune/vmerr"
)

// Bus is Neptune's unified memory bus: byte/word accessors routed by
// address range, in order, across ROM, RAM, VRAM and the I/O window.
type Bus struct {
	rom  *Region
	ram  *Region
	vram *Region
	io   *iobus.Bus
}

// Config overrides the default RAM size, letting the configuration layer
// experiment with historical RAM variants without touching the canonical
// constants used elsewhere. The heap offset is not configurable: the CPU
// always places the heap at memmap.HeapOff from the RAM base.
type Config struct {
	RAMSize uint32
}

// New builds a bus with the canonical region layout from memmap.
func New() *Bus {
	return NewWithConfig(Config{RAMSize: memmap.RAMSize})
}

// NewWithConfig builds a bus honoring overridden region sizes. VRAM and
// I/O remain fixed-size and immediately follow RAM, wherever RAM ends.
func NewWithConfig(cfg Config) *Bus {
	ramSize := cfg.RAMSize
	if ramSize == 0 {
		ramSize = memmap.RAMSize
	}
	ramEnd := memmap.RAMBase + ramSize
	vramBase := ramEnd
	ioBase := vramBase + memmap.VRAMSize

	return &Bus{
		rom:  NewRegion("rom", memmap.ROMBase, memmap.ROMSize, true),
		ram:  NewRegion("ram", memmap.RAMBase, ramSize, false),
		vram: NewRegion("vram", vramBase, memmap.VRAMSize, false),
		io:   iobus.New(ioBase, memmap.IOSize),
	}
}

// RegisterDevice registers a device on the I/O bus.
func (b *Bus) RegisterDevice(d devices.Device) error {
	return b.io.Register(d)
}

// ROM exposes the ROM region for the assembler's direct-write bypass path.
func (b *Bus) ROM() *Region { return b.rom }

// RAM exposes the RAM region for the assembler's direct-write bypass path.
func (b *Bus) RAM() *Region { return b.ram }

// VRAM exposes the video framebuffer region for host frontends that poll
// it for rendering.
func (b *Bus) VRAM() *Region { return b.vram }

// RAMBase and VRAMBase report the actual (possibly reconfigured) bases,
// for callers that compute stack/heap addresses from a live bus.
func (b *Bus) RAMBase() uint32  { return b.ram.Base() }
func (b *Bus) RAMSize() uint32  { return b.ram.Size() }
func (b *Bus) VRAMBase() uint32 { return b.vram.Base() }
func (b *Bus) IOBase() uint32   { return b.io.Base() }

func (b *Bus) regionFor(addr uint32) (*Region, bool) {
	switch {
	case memmap.Contains(b.rom.Base(), b.rom.Size(), addr):
		return b.rom, true
	case memmap.Contains(b.ram.Base(), b.ram.Size(), addr):
		return b.ram, true
	case memmap.Contains(b.vram.Base(), b.vram.Size(), addr):
		return b.vram, true
	default:
		return nil, false
	}
}

func (b *Bus) isIO(addr uint32) bool {
	return memmap.Contains(b.io.Base(), b.io.Size(), addr)
}

// IsAddressable reports whether addr falls within ROM, RAM, VRAM or the
// I/O window as this bus actually laid them out (accounting for any
// Config override), rather than the fixed memmap constants.
func (b *Bus) IsAddressable(addr uint32) bool {
	if _, ok := b.regionFor(addr); ok {
		return true
	}
	return b.isIO(addr)
}

func (b *Bus) ReadByte(addr uint32) (byte, error) {
	if r, ok := b.regionFor(addr); ok {
		return r.ReadByte(addr)
	}
	if b.isIO(addr) {
		return b.io.ReadByte(addr), nil
	}
	return 0, vmerr.Fault(vmerr.InvalidAddress, addr, "address not mapped to any region")
}

func (b *Bus) WriteByte(addr uint32, v byte) error {
	if r, ok := b.regionFor(addr); ok {
		return r.WriteByte(addr, v)
	}
	if b.isIO(addr) {
		b.io.WriteByte(addr, v)
		return nil
	}
	return vmerr.Fault(vmerr.InvalidAddress, addr, "address not mapped to any region")
}

func (b *Bus) ReadWord(addr uint32) (uint32, error) {
	if r, ok := b.regionFor(addr); ok {
		return r.ReadWord(addr)
	}
	if b.isIO(addr) {
		return b.io.ReadWord(addr), nil
	}
	return 0, vmerr.Fault(vmerr.InvalidAddress, addr, "address not mapped to any region")
}

func (b *Bus) WriteWord(addr uint32, v uint32) error {
	if r, ok := b.regionFor(addr); ok {
		return r.WriteWord(addr, v)
	}
	if b.isIO(addr) {
		b.io.WriteWord(addr, v)
		return nil
	}
	return vmerr.Fault(vmerr.InvalidAddress, addr, "address not mapped to any region")
}

// Reset zeroes RAM and VRAM, leaving ROM (boot code) intact.
func (b *Bus) Reset() {
	b.ram.Reset()
	b.vram.Reset()
}
