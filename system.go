// Package dmg wires the CPU, memory bus and pixel pipeline into a single
// owning emulation core. The System aggregate is the only mutable holder of
// the bus: CPU and PPU steps are methods on it and never run concurrently.
package dmg

import (
	"fmt"
	"log/slog"

	"github.com/dotmatrixgo/go-dmg/dmg/cart"
	"github.com/dotmatrixgo/go-dmg/dmg/cpu"
	"github.com/dotmatrixgo/go-dmg/dmg/debug"
	"github.com/dotmatrixgo/go-dmg/dmg/memory"
	"github.com/dotmatrixgo/go-dmg/dmg/video"
)

// Config carries the tunables that used to be scattered globals: tracing,
// crash dump behavior and the output palette.
type Config struct {
	// Trace logs every executed instruction at debug level.
	Trace bool
	// DumpOnCrash writes a crash log with the full register and memory state
	// when a fatal execution error stops the frame loop.
	DumpOnCrash bool
	// CrashLogDir is where crash logs land. Defaults to "logs".
	CrashLogDir string
	// Palette maps the four background color indexes to output colors.
	Palette video.Palette
}

// System owns every emulation component and drives them in lockstep.
type System struct {
	config Config

	bus *memory.Bus
	cpu *cpu.CPU
	ppu *video.PPU

	// extraCycles carries frame-budget overshoot into the next frame.
	extraCycles int
}

// New builds a system with nothing loaded. Execution starts at 0x0000, the
// boot ROM entry point; loading a cartridge without a boot ROM applies the
// post-boot register state instead.
func New(config Config) *System {
	if config.CrashLogDir == "" {
		config.CrashLogDir = "logs"
	}
	var zero video.Palette
	if config.Palette == zero {
		config.Palette = video.GreyPalette
	}

	bus := memory.New()
	ppu := video.New(bus)
	ppu.SetPalette(config.Palette)

	return &System{
		config: config,
		bus:    bus,
		cpu:    cpu.New(bus),
		ppu:    ppu,
	}
}

// LoadBootROM maps a 256-byte boot ROM over the start of the address space.
func (s *System) LoadBootROM(data []byte) {
	s.bus.LoadBootROM(data)
}

// LoadCartridge attaches a cartridge. Without a boot ROM mapped, the
// registers are set to the state the boot ROM would leave behind and
// execution starts at the cartridge entry point.
func (s *System) LoadCartridge(c *cart.Cartridge) error {
	if err := s.bus.LoadCartridge(c); err != nil {
		return err
	}
	if !s.bus.BootROMMapped() {
		s.cpu.Restore(postBootState)
		s.bus.Write(0xFF40, 0x91) // LCDC as the boot ROM leaves it
	}
	return nil
}

// LoadCartridgeFile reads and attaches a cartridge image from disk.
func (s *System) LoadCartridgeFile(path string) error {
	c, err := cart.Open(path)
	if err != nil {
		return err
	}
	return s.LoadCartridge(c)
}

// postBootState is the register state after the DMG boot ROM hands over
// control to the cartridge.
var postBootState = cpu.Snapshot{
	A: 0x01, F: 0xB0,
	B: 0x00, C: 0x13,
	D: 0x00, E: 0xD8,
	H: 0x01, L: 0x4D,
	SP: 0xFFFE,
	PC: 0x0100,
}

// Step executes one instruction and advances the divider and the pixel
// pipeline by the cycles it consumed, in that order.
func (s *System) Step() (int, error) {
	cycles, err := s.cpu.ExecuteNext()
	if err != nil {
		return 0, err
	}
	if s.config.Trace {
		slog.Debug("step", "state", s.cpu.Snapshot().String(), "cycles", cycles)
	}

	s.bus.TickDivider(cycles)
	s.ppu.Tick(cycles)
	return cycles, nil
}

// RunFrame steps the system until one frame's worth of T-cycles has elapsed.
// A fatal execution error stops the loop immediately; there is no partial
// recovery, the error surfaces to the caller after diagnostics run.
func (s *System) RunFrame() error {
	budget := s.extraCycles
	for budget < video.FrameCycles {
		cycles, err := s.Step()
		if err != nil {
			s.reportCrash(err)
			return err
		}
		budget += cycles
	}
	s.extraCycles = budget - video.FrameCycles
	return nil
}

func (s *System) reportCrash(err error) {
	snapshot := s.cpu.Snapshot()
	slog.Error("execution stopped", "error", err, "state", snapshot.String())

	if !s.config.DumpOnCrash {
		return
	}
	path, dumpErr := debug.WriteCrashLog(s.config.CrashLogDir, snapshot, s.bus)
	if dumpErr != nil {
		slog.Error("crash log failed", "error", dumpErr)
		return
	}
	slog.Info("crash log written", "path", path)
}

// Framebuffer returns the pixel pipeline's render target.
func (s *System) Framebuffer() *video.FrameBuffer {
	return s.ppu.Framebuffer()
}

// CPU exposes the execution engine, mainly for state inspection.
func (s *System) CPU() *cpu.CPU {
	return s.cpu
}

// Bus exposes the memory bus for tooling and state setup.
func (s *System) Bus() *memory.Bus {
	return s.bus
}

// PPU exposes the pixel pipeline.
func (s *System) PPU() *video.PPU {
	return s.ppu
}

// String summarizes the system state in one line.
func (s *System) String() string {
	return fmt.Sprintf("%s cycles=%d", s.cpu.Snapshot(), s.cpu.Cycles())
}
