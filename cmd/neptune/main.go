// Command neptune assembles and runs Neptune virtual machine programs.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neptune-vm/neptune/asm"
	"github.com/neptune-vm/neptune/config"
	"github.com/neptune-vm/neptune/cpu"
	"github.com/neptune-vm/neptune/devices"
	"github.com/neptune-vm/neptune/hostio"
	"github.com/neptune-vm/neptune/isa"
	"github.com/neptune-vm/neptune/logx"
	"github.com/neptune-vm/neptune/memmap"
	"github.com/neptune-vm/neptune/membus"
	"github.com/neptune-vm/neptune/nimg"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "neptune",
		Short: "Neptune virtual machine: assembler, runner and disassembler",
	}

	var configPath string
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a neptune.toml config file (default: platform config dir)")

	var asmOut string
	asmCmd := &cobra.Command{
		Use:   "asm [source.nasm]",
		Short: "Assemble a source file into a .nimg image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			bus, _, img, err := assembleFile(args[0], cfg)
			if err != nil {
				return err
			}
			out := asmOut
			if out == "" {
				out = strings.TrimSuffix(args[0], filepathExt(args[0])) + ".nimg"
			}
			if err := nimg.Save(out, img.EntryPoint, bus); err != nil {
				return err
			}
			if err := writeSidecar(out+".json", img); err != nil {
				return err
			}
			fmt.Printf("Assembled %s -> %s (entry=0x%08x)\n", args[0], out, img.EntryPoint)
			return nil
		},
	}
	asmCmd.Flags().StringVarP(&asmOut, "output", "o", "", "Output image path (default: input with .nimg extension)")

	var interactive bool
	var traceSteps bool
	var showStats bool
	runCmd := &cobra.Command{
		Use:   "run [source.nasm|program.nimg]",
		Short: "Assemble (if needed) and run a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runFile(args[0], cfg, interactive, traceSteps, showStats)
		},
	}
	runCmd.Flags().BoolVar(&interactive, "interactive", false, "Bridge the real terminal to the keyboard/console devices")
	runCmd.Flags().BoolVar(&traceSteps, "trace", false, "Log every executed instruction")
	runCmd.Flags().BoolVar(&showStats, "stats", false, "Print an opcode histogram and cycle count after the run")

	disasmCmd := &cobra.Command{
		Use:   "disasm [source.nasm|program.nimg]",
		Short: "Disassemble a program's instruction stream starting at its entry point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return disasmFile(args[0], cfg)
		},
	}

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "List the registered instruction catalog and address map",
		RunE: func(cmd *cobra.Command, args []string) error {
			printFeatures()
			return nil
		},
	}

	rootCmd.AddCommand(asmCmd, runCmd, disasmCmd, featuresCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// sidecar is the JSON debug side-car written next to an assembled .nimg
// image: the symbol table and the syscall dispatch table, keyed for
// readability rather than performance.
type sidecar struct {
	EntryPoint uint32            `json:"entry_point"`
	Labels     map[string]uint32 `json:"labels"`
	Syscalls   map[uint32]uint32 `json:"syscalls"`
}

func writeSidecar(path string, img *asm.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sidecar{
		EntryPoint: img.EntryPoint,
		Labels:     img.Labels,
		Syscalls:   img.Syscalls,
	})
}

func filepathExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}

func newBus(cfg *config.Config) *membus.Bus {
	return membus.NewWithConfig(membus.Config{RAMSize: cfg.Memory.RAMSize})
}

// assembleFile reads and assembles a .nasm source file against a fresh
// bus, returning the bus, instruction set and resulting image.
func assembleFile(path string, cfg *config.Config) (*membus.Bus, *isa.Set, *asm.Image, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read source: %w", err)
	}
	bus := newBus(cfg)
	set := isa.NewCanonicalSet()
	a := asm.New(set)
	img, err := a.Assemble(string(source), path, bus)
	if err != nil {
		return nil, nil, nil, err
	}
	return bus, set, img, nil
}

// loadOrAssemble loads path as a pre-assembled .nimg image if its
// extension says so, otherwise treats it as source and assembles it.
func loadOrAssemble(path string, cfg *config.Config) (*membus.Bus, *isa.Set, uint32, error) {
	set := isa.NewCanonicalSet()
	bus := newBus(cfg)
	if strings.HasSuffix(path, ".nimg") {
		entry, err := nimg.Load(path, bus)
		if err != nil {
			return nil, nil, 0, err
		}
		return bus, set, entry, nil
	}
	b, s, img, err := assembleFile(path, cfg)
	if err != nil {
		return nil, nil, 0, err
	}
	return b, s, img.EntryPoint, nil
}

func runFile(path string, cfg *config.Config, interactive, trace, stats bool) error {
	bus, set, entry, err := loadOrAssemble(path, cfg)
	if err != nil {
		return err
	}

	kb := devices.NewKeyboard(bus.IOBase())
	console := devices.NewConsole(bus.IOBase()+devices.KeyboardSize, os.Stdout)
	timer := devices.NewTimer(bus.IOBase()+devices.KeyboardSize+devices.ConsoleSize, cfg.TimerTick())
	defer timer.Stop()

	if err := bus.RegisterDevice(kb); err != nil {
		return err
	}
	if err := bus.RegisterDevice(console); err != nil {
		return err
	}
	if err := bus.RegisterDevice(timer); err != nil {
		return err
	}

	c := cpu.New(bus, set)
	c.SetPC(entry)

	log := logx.Default()
	if trace {
		log = logx.New(os.Stderr, logx.Debug)
	}
	histogram := make(map[string]uint64)
	var cycles uint64
	if trace || stats {
		c.Trace = func(pc uint32, opcode byte, mnemonic string) {
			if trace {
				log.Debug("pc=0x%08x op=0x%02x %s", pc, opcode, mnemonic)
			}
			if stats {
				cycles++
				histogram[mnemonic]++
			}
		}
	}

	if interactive {
		host := hostio.NewTerminalHost(kb)
		host.Start()
		defer host.Stop()
	}

	for !c.IsHalted() {
		if err := c.Step(); err != nil {
			log.Fault(c.PC(), err)
			return err
		}
	}

	if stats {
		printStats(cycles, histogram)
	}
	return nil
}

// printStats reports the executed-instruction count and a per-mnemonic
// histogram, sorted by descending frequency then mnemonic.
func printStats(cycles uint64, histogram map[string]uint64) {
	fmt.Printf("cycles: %d\n", cycles)
	mnemonics := make([]string, 0, len(histogram))
	for m := range histogram {
		mnemonics = append(mnemonics, m)
	}
	sort.Slice(mnemonics, func(i, j int) bool {
		if histogram[mnemonics[i]] != histogram[mnemonics[j]] {
			return histogram[mnemonics[i]] > histogram[mnemonics[j]]
		}
		return mnemonics[i] < mnemonics[j]
	})
	for _, m := range mnemonics {
		fmt.Printf("  %-8s %d\n", m, histogram[m])
	}
}

func disasmFile(path string, cfg *config.Config) error {
	bus, set, entry, err := loadOrAssemble(path, cfg)
	if err != nil {
		return err
	}
	addr := entry
	for i := 0; i < 4096; i++ {
		word0, err := bus.ReadWord(addr)
		if err != nil {
			return err
		}
		opcode, _, _ := isa.Decode(word0)
		inst, ok := set.ByOpcode(opcode)
		var word1 uint32
		if ok && inst.Words == isa.TwoWord {
			word1, _ = bus.ReadWord(addr + 4)
		}
		fmt.Printf("0x%08x: %s\n", addr, set.Disassemble(word0, word1))
		if !ok {
			break
		}
		if inst.Mnemonic == "HLT" {
			break
		}
		addr += uint32(inst.Words) * 4
	}
	return nil
}

func printFeatures() {
	set := isa.NewCanonicalSet()
	fmt.Println("Address map:")
	for _, r := range memmap.Regions() {
		fmt.Printf("  %-6s base=0x%08x size=0x%08x\n", r.Name, r.Base, r.Size)
	}
	fmt.Println("Instruction catalog:")
	for opcode := 1; opcode < 256; opcode++ {
		inst, ok := set.ByOpcode(byte(opcode))
		if !ok {
			break
		}
		fmt.Printf("  0x%02x %-8s words=%d\n", inst.Opcode, inst.Mnemonic, inst.Words)
	}
}
