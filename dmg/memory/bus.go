// Package memory implements the memory bus: address decoding over the 16 bit
// address space, the boot ROM overlay, cartridge bank switching and the
// register side effects tied to specific addresses.
package memory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dotmatrixgo/go-dmg/dmg/addr"
	"github.com/dotmatrixgo/go-dmg/dmg/bit"
	"github.com/dotmatrixgo/go-dmg/dmg/cart"
)

// ErrOutOfRange is returned by GetRange when a requested range does not fit
// in the addressable space. Callers such as debug viewers should treat it as
// "nothing to show" rather than a fatal condition.
var ErrOutOfRange = errors.New("memory: range exceeds addressable space")

// ErrIncompatibleROM is returned when loading a cartridge that cannot run on
// DMG hardware.
var ErrIncompatibleROM = errors.New("memory: cartridge is not DMG compatible")

const (
	addressSpaceSize = 0x10000
	bootROMSize      = 0x100

	// divPeriod is the number of T-cycles between DIV increments (16384 Hz).
	divPeriod = 256
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// Bus owns all addressable storage and performs address-to-region decoding.
type Bus struct {
	mbc       MBC
	memory    []byte
	regionMap [256]memRegion

	bootROM       [bootROMSize]byte
	bootROMMapped bool
	divCycles     int
}

// New creates a bus with no cartridge loaded and no boot ROM mapped.
func New() *Bus {
	b := &Bus{
		memory: make([]byte, addressSpaceSize),
	}
	b.initRegionMap()
	return b
}

func (b *Bus) initRegionMap() {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		b.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		b.regionMap[i] = regionVRAM
	}
	// External cartridge RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		b.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		b.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		b.regionMap[i] = regionEcho
	}
	// OAM + unusable gap: 0xFE00-0xFEFF
	b.regionMap[0xFE] = regionOAM
	// I/O registers + HRAM + IE: 0xFF00-0xFFFF
	b.regionMap[0xFF] = regionIO
}

// LoadBootROM maps a boot ROM blob over 0x0000-0x00FF. Blobs shorter than
// 256 bytes are accepted, longer ones are truncated.
func (b *Bus) LoadBootROM(data []byte) {
	n := copy(b.bootROM[:], data)
	b.bootROMMapped = true
	slog.Debug("boot ROM mapped", "bytes", n)
}

// LoadCartridge attaches a cartridge to the bus, selecting the bank
// controller from its header.
func (b *Bus) LoadCartridge(c *cart.Cartridge) error {
	if !c.GBCompatible() {
		return ErrIncompatibleROM
	}

	switch c.MBCType() {
	case cart.NoMBC:
		b.mbc = NewNoMBC(c.Bytes())
	case cart.MBC1:
		b.mbc = NewMBC1(c.Bytes(), c.ROMBankCount(), c.HasRAM())
	default:
		return fmt.Errorf("memory: unsupported bank controller %s", c.MBCType())
	}

	slog.Info("cartridge loaded", "title", c.Title(), "mbc", c.MBCType().String(), "romBanks", c.ROMBankCount())
	return nil
}

// Read returns the byte mapped at the given address.
func (b *Bus) Read(address uint16) byte {
	switch b.regionMap[address>>8] {
	case regionROM:
		if b.bootROMMapped && address < bootROMSize {
			return b.bootROM[address]
		}
		if b.mbc == nil {
			// No cartridge attached: fall back to plain storage so state can
			// be injected for tests and tooling.
			return b.memory[address]
		}
		return b.mbc.Read(address)
	case regionExtRAM:
		if b.mbc == nil {
			return b.memory[address]
		}
		return b.mbc.Read(address)
	case regionVRAM, regionWRAM:
		return b.memory[address]
	case regionEcho:
		return b.memory[address-0x2000]
	case regionOAM:
		if address > 0xFE9F {
			// Unusable gap 0xFEA0-0xFEFF always reads as 0.
			return 0
		}
		return b.memory[address]
	default: // regionIO
		return b.memory[address]
	}
}

// Write stores a byte at the given address, applying any register side
// effects tied to it.
func (b *Bus) Write(address uint16, value byte) {
	switch b.regionMap[address>>8] {
	case regionROM:
		// Writes to the ROM region are bank controller commands.
		if b.mbc != nil {
			b.mbc.Write(address, value)
		}
	case regionExtRAM:
		if b.mbc != nil {
			b.mbc.Write(address, value)
		}
	case regionVRAM, regionWRAM:
		b.memory[address] = value
	case regionEcho:
		b.memory[address-0x2000] = value
	case regionOAM:
		if address > 0xFE9F {
			// Writes to the unusable gap are dropped.
			return
		}
		b.memory[address] = value
	default: // regionIO
		switch address {
		case addr.DIV:
			// Any write resets the divider, the value is ignored.
			b.memory[address] = 0
			b.divCycles = 0
		case addr.BootROMDisable:
			b.memory[address] = value
			if b.bootROMMapped && value != 0 {
				b.bootROMMapped = false
				slog.Debug("boot ROM unmapped")
			}
		default:
			b.memory[address] = value
		}
	}
}

// ReadU16 reads a little-endian word: the low byte at address, the high byte
// at address+1.
func (b *Bus) ReadU16(address uint16) uint16 {
	return bit.Combine(b.Read(address+1), b.Read(address))
}

// WriteU16 writes a little-endian word.
func (b *Bus) WriteU16(address uint16, value uint16) {
	b.Write(address, bit.Low(value))
	b.Write(address+1, bit.High(value))
}

// GetRange returns a copy of length bytes starting at start. It fails with
// ErrOutOfRange when the range does not fit in the address space.
func (b *Bus) GetRange(start uint16, length int) ([]byte, error) {
	if length < 0 || int(start)+length > addressSpaceSize {
		return nil, ErrOutOfRange
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = b.Read(start + uint16(i))
	}
	return out, nil
}

// TickDivider advances the DIV register by the given number of elapsed
// T-cycles. DIV increments at 16384 Hz, once every 256 cycles.
func (b *Bus) TickDivider(cycles int) {
	b.divCycles += cycles
	for b.divCycles >= divPeriod {
		b.divCycles -= divPeriod
		b.memory[addr.DIV]++
	}
}

// Poke stores a byte directly in the backing array, bypassing region decode
// and register side effects. It exists for tooling and test state injection,
// not for emulated stores.
func (b *Bus) Poke(address uint16, value byte) {
	b.memory[address] = value
}

// Peek reads the backing array directly, ignoring the boot ROM overlay and
// the bank controller.
func (b *Bus) Peek(address uint16) byte {
	return b.memory[address]
}

// BootROMMapped reports whether the boot ROM overlay is still active.
func (b *Bus) BootROMMapped() bool {
	return b.bootROMMapped
}
