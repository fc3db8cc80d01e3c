// Package membus implements Neptune's memory regions and the unified bus
// that routes byte/word accesses across ROM, RAM, VRAM and the I/O window.
package membus

import (
	"encoding/binary"

	"github.com/neptune-vm/neptune/vmerr"
)

// Region is a byte-array backing store with a base address, exposing
// byte/word accessors. Out-of-range accesses fail with AddressOutOfRange;
// no alignment is enforced here, and the Bus routing to it does not
// enforce any either: an unaligned word access is served as-is.
type Region struct {
	name     string
	base     uint32
	data     []byte
	readOnly bool
}

// NewRegion allocates a zeroed region of size bytes starting at base.
func NewRegion(name string, base, size uint32, readOnly bool) *Region {
	return &Region{name: name, base: base, data: make([]byte, size), readOnly: readOnly}
}

func (r *Region) Base() uint32 { return r.base }
func (r *Region) Size() uint32 { return uint32(len(r.data)) }

func (r *Region) contains(addr uint32) bool {
	return addr >= r.base && addr < r.base+uint32(len(r.data))
}

func (r *Region) ReadByte(addr uint32) (byte, error) {
	if !r.contains(addr) {
		return 0, vmerr.Fault(vmerr.AddressOutOfRange, addr, "address outside %s region", r.name)
	}
	return r.data[addr-r.base], nil
}

func (r *Region) WriteByte(addr uint32, v byte) error {
	if !r.contains(addr) {
		return vmerr.Fault(vmerr.AddressOutOfRange, addr, "address outside %s region", r.name)
	}
	if r.readOnly {
		return vmerr.Fault(vmerr.ROMWrite, addr, "write to read-only %s region", r.name)
	}
	r.data[addr-r.base] = v
	return nil
}

func (r *Region) ReadWord(addr uint32) (uint32, error) {
	if !r.contains(addr) || !r.contains(addr+3) {
		return 0, vmerr.Fault(vmerr.AddressOutOfRange, addr, "word access outside %s region", r.name)
	}
	off := addr - r.base
	return binary.LittleEndian.Uint32(r.data[off : off+4]), nil
}

func (r *Region) WriteWord(addr uint32, v uint32) error {
	if !r.contains(addr) || !r.contains(addr+3) {
		return vmerr.Fault(vmerr.AddressOutOfRange, addr, "word access outside %s region", r.name)
	}
	if r.readOnly {
		return vmerr.Fault(vmerr.ROMWrite, addr, "write to read-only %s region", r.name)
	}
	off := addr - r.base
	binary.LittleEndian.PutUint32(r.data[off:off+4], v)
	return nil
}

// WriteWordDirect bypasses the read-only check. It exists only for the
// assembler's load-time ROM population — instruction semantics must never
// call it.
func (r *Region) WriteWordDirect(addr uint32, v uint32) error {
	if !r.contains(addr) || !r.contains(addr+3) {
		return vmerr.Fault(vmerr.AddressOutOfRange, addr, "word access outside %s region", r.name)
	}
	off := addr - r.base
	binary.LittleEndian.PutUint32(r.data[off:off+4], v)
	return nil
}

// WriteByteDirect is the byte-granular counterpart of WriteWordDirect.
func (r *Region) WriteByteDirect(addr uint32, v byte) error {
	if !r.contains(addr) {
		return vmerr.Fault(vmerr.AddressOutOfRange, addr, "address outside %s region", r.name)
	}
	r.data[addr-r.base] = v
	return nil
}

// Reset zeroes the region's backing store.
func (r *Region) Reset() {
	for i := range r.data {
		r.data[i] = 0
	}
}

// Bytes returns the region's raw backing bytes, for serializing a built
// image to disk. Callers must not mutate the returned slice.
func (r *Region) Bytes() []byte { return r.data }

// LoadBytes overwrites the region's backing store with data, for
// restoring a previously serialized image. data must match the region's
// size exactly.
func (r *Region) LoadBytes(data []byte) error {
	if len(data) != len(r.data) {
		return vmerr.Fault(vmerr.IOFailure, r.base, "%s region size mismatch: got %d bytes, want %d", r.name, len(data), len(r.data))
	}
	copy(r.data, data)
	return nil
}
