// Command neptunectl is an optional host-collaborator frontend: it polls
// a running program's VRAM framebuffer and keyboard device purely through
// the public bus/device API (no CPU-internal coupling), rendering frames
// and forwarding host key events via Ebiten. Build with the default tags;
// pass -tags headless to build the core without this frontend.
//
//go:build !headless

package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/neptune-vm/neptune/asm"
	"github.com/neptune-vm/neptune/config"
	"github.com/neptune-vm/neptune/cpu"
	"github.com/neptune-vm/neptune/devices"
	"github.com/neptune-vm/neptune/isa"
	"github.com/neptune-vm/neptune/logx"
	"github.com/neptune-vm/neptune/memmap"
	"github.com/neptune-vm/neptune/membus"
	"github.com/neptune-vm/neptune/nimg"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: neptunectl <source.nasm|program.nimg>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "neptunectl: %v\n", err)
		os.Exit(1)
	}

	bus := membus.NewWithConfig(membus.Config{RAMSize: cfg.Memory.RAMSize})
	set := isa.NewCanonicalSet()
	entry, err := loadProgram(os.Args[1], bus, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "neptunectl: %v\n", err)
		os.Exit(1)
	}

	kb := devices.NewKeyboard(bus.IOBase())
	console := devices.NewConsole(bus.IOBase()+devices.KeyboardSize, os.Stdout)
	timer := devices.NewTimer(bus.IOBase()+devices.KeyboardSize+devices.ConsoleSize, cfg.TimerTick())
	defer timer.Stop()
	for _, d := range []devices.Device{kb, console, timer} {
		if err := bus.RegisterDevice(d); err != nil {
			fmt.Fprintf(os.Stderr, "neptunectl: %v\n", err)
			os.Exit(1)
		}
	}

	c := cpu.New(bus, set)
	c.SetPC(entry)

	go runUntilHalt(c)

	ebiten.SetWindowSize(int(memmap.VRAMWidth)*4, int(memmap.VRAMHeight)*4)
	ebiten.SetWindowTitle("neptunectl")
	ebiten.SetWindowResizable(true)

	game := &frontend{bus: bus, kb: kb}
	if err := ebiten.RunGame(game); err != nil {
		fmt.Fprintf(os.Stderr, "neptunectl: %v\n", err)
		os.Exit(1)
	}
}

func loadProgram(path string, bus *membus.Bus, set *isa.Set) (uint32, error) {
	if len(path) > 5 && path[len(path)-5:] == ".nimg" {
		return nimg.Load(path, bus)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read source: %w", err)
	}
	a := asm.New(set)
	img, err := a.Assemble(string(source), path, bus)
	if err != nil {
		return 0, err
	}
	return img.EntryPoint, nil
}

func runUntilHalt(c *cpu.CPU) {
	log := logx.Default()
	for !c.IsHalted() {
		if err := c.Step(); err != nil {
			log.Fault(c.PC(), err)
			return
		}
	}
}

// frontend implements ebiten.Game, rendering the VRAM framebuffer it
// polls from bus and forwarding pressed keys into kb. It never touches
// the CPU directly: the running program and this viewer communicate only
// through memory and the device's public Enqueue/EnqueueKeyEvent API.
type frontend struct {
	bus  *membus.Bus
	kb   *devices.Keyboard
	view *ebiten.Image
}

func (f *frontend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			f.kb.Enqueue(byte(r))
		}
	}
	special := map[ebiten.Key]string{
		ebiten.KeyEnter:     "Enter",
		ebiten.KeyBackspace: "Backspace",
		ebiten.KeyTab:       "Tab",
		ebiten.KeySpace:     "Space",
	}
	for key, name := range special {
		if inpututil.IsKeyJustPressed(key) {
			f.kb.EnqueueKeyEvent(name)
		}
	}
	return nil
}

func (f *frontend) Draw(screen *ebiten.Image) {
	if f.view == nil {
		f.view = ebiten.NewImage(int(memmap.VRAMWidth), int(memmap.VRAMHeight))
	}
	f.view.WritePixels(f.bus.VRAM().Bytes())
	screen.DrawImage(f.view, nil)
}

func (f *frontend) Layout(_, _ int) (int, int) {
	return int(memmap.VRAMWidth), int(memmap.VRAMHeight)
}
