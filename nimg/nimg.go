// Package nimg implements Neptune's on-disk assembled-image container: a
// small fixed header (magic, version, entry point, region sizes) followed
// by the raw ROM and RAM bytes, so `neptune asm` and `neptune run`/`disasm`
// can hand a program between processes without re-assembling it.
package nimg

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/neptune-vm/neptune/membus"
)

const magic uint32 = 0x4E505432 // "NPT2"
const version uint32 = 1

// Header precedes the ROM and RAM byte payloads in a saved image file.
type Header struct {
	EntryPoint uint32
	ROMSize    uint32
	RAMSize    uint32
}

// Save writes bus's ROM and RAM contents to path, tagged with entryPoint.
func Save(path string, entryPoint uint32, bus *membus.Bus) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}
	defer f.Close()
	return Write(f, entryPoint, bus)
}

// Write serializes bus's ROM/RAM contents to w, tagged with entryPoint.
func Write(w io.Writer, entryPoint uint32, bus *membus.Bus) error {
	rom := bus.ROM().Bytes()
	ram := bus.RAM().Bytes()

	for _, v := range []uint32{magic, version, entryPoint, uint32(len(rom)), uint32(len(ram))} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.Write(rom); err != nil {
		return err
	}
	if _, err := w.Write(ram); err != nil {
		return err
	}
	return nil
}

// Load reads a previously saved image from path into bus, returning its
// entry point.
func Load(path string, bus *membus.Bus) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open image file: %w", err)
	}
	defer f.Close()
	return Read(f, bus)
}

// Read deserializes an image from r into bus, returning its entry point.
func Read(r io.Reader, bus *membus.Bus) (uint32, error) {
	var gotMagic, gotVersion, entryPoint, romSize, ramSize uint32
	for _, v := range []*uint32{&gotMagic, &gotVersion, &entryPoint, &romSize, &ramSize} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return 0, fmt.Errorf("read image header: %w", err)
		}
	}
	if gotMagic != magic {
		return 0, fmt.Errorf("not a neptune image file (bad magic)")
	}
	if gotVersion != version {
		return 0, fmt.Errorf("unsupported image version %d", gotVersion)
	}

	rom := make([]byte, romSize)
	if _, err := io.ReadFull(r, rom); err != nil {
		return 0, fmt.Errorf("read ROM payload: %w", err)
	}
	ram := make([]byte, ramSize)
	if _, err := io.ReadFull(r, ram); err != nil {
		return 0, fmt.Errorf("read RAM payload: %w", err)
	}

	if err := bus.ROM().LoadBytes(rom); err != nil {
		return 0, err
	}
	if err := bus.RAM().LoadBytes(ram); err != nil {
		return 0, err
	}
	return entryPoint, nil
}
