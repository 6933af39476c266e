package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrixgo/go-dmg/dmg/addr"
	"github.com/dotmatrixgo/go-dmg/dmg/cart"
)

// makeCartridge builds a minimal ROM image. Extra banks are stamped with
// their bank number at the first byte of the switchable window so tests can
// tell which bank is mapped.
func makeCartridge(t *testing.T, cartridgeType byte, bankCount int) *cart.Cartridge {
	t.Helper()

	sizeCode := byte(0)
	for 2<<sizeCode < bankCount {
		sizeCode++
	}
	data := make([]byte, bankCount*0x4000)
	copy(data[0x134:], "BUSTEST")
	data[0x147] = cartridgeType
	data[0x148] = sizeCode
	for bank := 0; bank < bankCount; bank++ {
		data[bank*0x4000] = byte(bank)
	}

	c, err := cart.New(data)
	assert.NoError(t, err)
	return c
}

func TestBus_regionDecoding(t *testing.T) {
	b := New()

	testCases := []struct {
		desc    string
		address uint16
	}{
		{desc: "VRAM", address: 0x8000},
		{desc: "work RAM", address: 0xC000},
		{desc: "OAM", address: 0xFE00},
		{desc: "high RAM", address: 0xFF80},
		{desc: "interrupt enable", address: 0xFFFF},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			b.Write(tC.address, 0x42)
			assert.Equal(t, byte(0x42), b.Read(tC.address))
		})
	}
}

func TestBus_echoRAMMirrorsWorkRAM(t *testing.T) {
	b := New()

	b.Write(0xC123, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0xE123))

	b.Write(0xE456, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xC456))
}

func TestBus_unusableGap(t *testing.T) {
	b := New()

	b.Write(0xFEA0, 0xFF)
	b.Write(0xFEFF, 0xFF)

	assert.Equal(t, byte(0), b.Read(0xFEA0))
	assert.Equal(t, byte(0), b.Read(0xFEFF))
}

func TestBus_wordAccessIsLittleEndian(t *testing.T) {
	b := New()

	b.WriteU16(0xC000, 0x1234)

	assert.Equal(t, byte(0x34), b.Read(0xC000), "low byte first")
	assert.Equal(t, byte(0x12), b.Read(0xC001))
	assert.Equal(t, uint16(0x1234), b.ReadU16(0xC000))
}

func TestBus_divWriteResets(t *testing.T) {
	b := New()
	b.TickDivider(256 * 3)
	assert.Equal(t, byte(3), b.Read(addr.DIV))

	b.Write(addr.DIV, 0xAB)

	assert.Equal(t, byte(0), b.Read(addr.DIV), "any written value resets DIV")
}

func TestBus_tickDividerAccumulatesPartialPeriods(t *testing.T) {
	b := New()

	b.TickDivider(255)
	assert.Equal(t, byte(0), b.Read(addr.DIV))

	b.TickDivider(1)
	assert.Equal(t, byte(1), b.Read(addr.DIV))

	b.TickDivider(512)
	assert.Equal(t, byte(3), b.Read(addr.DIV))
}

func TestBus_bootROMOverlay(t *testing.T) {
	b := New()
	assert.NoError(t, b.LoadCartridge(makeCartridge(t, 0x00, 2)))

	boot := make([]byte, 0x100)
	boot[0x00] = 0x31
	boot[0xFF] = 0x50
	b.LoadBootROM(boot)

	assert.True(t, b.BootROMMapped())
	assert.Equal(t, byte(0x31), b.Read(0x0000))
	assert.Equal(t, byte(0x50), b.Read(0x00FF))
	// Above the overlay, reads come from the cartridge.
	assert.Equal(t, byte('B'), b.Read(0x0134))

	// Writing zero to the disable register does not unmap.
	b.Write(addr.BootROMDisable, 0)
	assert.True(t, b.BootROMMapped())

	b.Write(addr.BootROMDisable, 1)
	assert.False(t, b.BootROMMapped())
	assert.Equal(t, byte(0x00), b.Read(0x0000), "reads fall through to bank 0")

	// The unmap is one-way.
	b.LoadBootROM(boot)
	b.Write(addr.BootROMDisable, 1)
	b.Write(addr.BootROMDisable, 0)
	assert.False(t, b.BootROMMapped())
}

func TestBus_noCartridgeFallsBackToPlainStorage(t *testing.T) {
	b := New()

	assert.Equal(t, byte(0), b.Read(0x0000))

	b.Poke(0x0100, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0x0100))
	// Emulated stores to the ROM region are still bank commands, not writes.
	b.Write(0x0100, 0x99)
	assert.Equal(t, byte(0x42), b.Read(0x0100))
}

func TestBus_pokeAndPeekBypassSideEffects(t *testing.T) {
	b := New()
	b.TickDivider(256)
	assert.Equal(t, byte(1), b.Read(addr.DIV))

	b.Poke(addr.DIV, 0x55)

	assert.Equal(t, byte(0x55), b.Peek(addr.DIV), "poke does not reset the divider")
}

func TestBus_loadCartridge(t *testing.T) {
	b := New()

	err := b.LoadCartridge(makeCartridge(t, 0x00, 2))
	assert.NoError(t, err)
	assert.Equal(t, byte('B'), b.Read(0x0134))
}

func TestBus_loadCartridgeRejectsCGBOnly(t *testing.T) {
	data := make([]byte, 0x8000)
	data[0x143] = 0xC0
	c, err := cart.New(data)
	assert.NoError(t, err)

	assert.ErrorIs(t, New().LoadCartridge(c), ErrIncompatibleROM)
}

func TestBus_loadCartridgeRejectsUnsupportedMBC(t *testing.T) {
	err := New().LoadCartridge(makeCartridge(t, 0x13, 2)) // MBC3
	assert.Error(t, err)
}

func TestBus_romBankSwitching(t *testing.T) {
	b := New()
	assert.NoError(t, b.LoadCartridge(makeCartridge(t, 0x01, 4)))

	// Bank 1 is mapped by default.
	assert.Equal(t, byte(1), b.Read(0x4000))

	b.Write(0x2000, 0x03)
	assert.Equal(t, byte(3), b.Read(0x4000))

	// A bank 0 request remaps to bank 1.
	b.Write(0x2000, 0x00)
	assert.Equal(t, byte(1), b.Read(0x4000))

	// Only the low 5 bits of the command are significant.
	b.Write(0x2000, 0xE2)
	assert.Equal(t, byte(2), b.Read(0x4000))

	// The fixed window is unaffected by switching.
	assert.Equal(t, byte(0), b.Read(0x0000))
}

func TestBus_externalRAM(t *testing.T) {
	b := New()
	assert.NoError(t, b.LoadCartridge(makeCartridge(t, 0x02, 2))) // MBC1+RAM

	// Disabled RAM reads 0xFF and drops writes.
	b.Write(0xA000, 0x42)
	assert.Equal(t, byte(0xFF), b.Read(0xA000))

	b.Write(0x0000, 0x0A) // enable
	b.Write(0xA000, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0xA000))

	// Contents survive a disable/enable cycle.
	b.Write(0x0000, 0x00)
	assert.Equal(t, byte(0xFF), b.Read(0xA000))
	b.Write(0x0000, 0x0A)
	assert.Equal(t, byte(0x42), b.Read(0xA000))
}

func TestBus_getRange(t *testing.T) {
	b := New()
	b.Write(0xC000, 0x11)
	b.Write(0xC001, 0x22)

	data, err := b.GetRange(0xC000, 2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x11, 0x22}, data)

	_, err = b.GetRange(0xFFF0, 0x20)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = b.GetRange(0xC000, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMBC1_bankContentsRetainedAcrossSwitches(t *testing.T) {
	m := NewMBC1(make([]byte, 4*romBankSize), 4, true)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x42)

	m.Write(0x2000, 3)
	assert.Equal(t, 3, m.ROMBank())
	m.Write(0x2000, 1)

	assert.Equal(t, byte(0x42), m.Read(0xA000), "RAM contents survive bank switches")
}

func TestMBC1_bankSelectionModuloBankCount(t *testing.T) {
	m := NewMBC1(make([]byte, 4*romBankSize), 4, false)

	m.Write(0x2000, 0x1F) // 31 mod 4 = 3
	assert.Equal(t, 3, m.ROMBank())

	m.Write(0x2000, 0x04) // 4 mod 4 = 0, remapped to 1
	assert.Equal(t, 1, m.ROMBank())
}

func TestNoMBC_readOutOfImage(t *testing.T) {
	m := NewNoMBC([]byte{0x01, 0x02})

	assert.Equal(t, byte(0x02), m.Read(1))
	assert.Equal(t, byte(0xFF), m.Read(0x7FFF))
}
