// Package iobus implements address-routing within Neptune's memory-mapped
// I/O window, dispatching to registered devices the way the teacher's
// SystemBus dispatches to IORegion callbacks, generalized to the devices
// package's Device interface.
package iobus

import "github.com/neptune-vm/neptune/devices"

// Bus owns an address-ordered collection of devices within the I/O
// window. Register places each device immediately after the previous
// one, accumulating a running offset from the window's base.
type Bus struct {
	windowBase uint32
	windowSize uint32
	nextOffset uint32
	devs       []devices.Device
}

// New creates an I/O bus spanning [base, base+size).
func New(base, size uint32) *Bus {
	return &Bus{windowBase: base, windowSize: size}
}

// Register places device at windowBase+nextOffset and claims
// [device.Base(), device.Base()+device.Size()). The caller must construct
// the device with that base already (devices are address-aware, not
// relocatable), so Register validates placement rather than computing it.
func (b *Bus) Register(d devices.Device) error {
	expected := b.windowBase + b.nextOffset
	if d.Base() != expected {
		return &placementError{wanted: expected, got: d.Base(), name: d.Name()}
	}
	if d.Base()+d.Size() > b.windowBase+b.windowSize {
		return &placementError{wanted: expected, got: d.Base(), name: d.Name()}
	}
	b.devs = append(b.devs, d)
	b.nextOffset += d.Size()
	return nil
}

type placementError struct {
	wanted, got uint32
	name        string
}

func (e *placementError) Error() string {
	return "iobus: device " + e.name + " placed out of sequence"
}

// find returns the device claiming addr, or nil if unclaimed.
func (b *Bus) find(addr uint32) devices.Device {
	for _, d := range b.devs {
		if d.Handles(addr) {
			return d
		}
	}
	return nil
}

// ReadWord returns 0 for addresses not claimed by any device.
func (b *Bus) ReadWord(addr uint32) uint32 {
	if d := b.find(addr); d != nil {
		return d.ReadWord(addr)
	}
	return 0
}

// WriteWord drops writes to addresses not claimed by any device.
func (b *Bus) WriteWord(addr uint32, v uint32) {
	if d := b.find(addr); d != nil {
		d.WriteWord(addr, v)
	}
}

func (b *Bus) ReadByte(addr uint32) byte {
	if d := b.find(addr); d != nil {
		return d.ReadByte(addr)
	}
	return 0
}

func (b *Bus) WriteByte(addr uint32, v byte) {
	if d := b.find(addr); d != nil {
		d.WriteByte(addr, v)
	}
}

// Base and Size expose the I/O window's own address span to the memory
// bus, per the component's documented responsibility.
func (b *Bus) Base() uint32 { return b.windowBase }
func (b *Bus) Size() uint32 { return b.windowSize }
