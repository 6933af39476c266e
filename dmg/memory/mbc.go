package memory

// MBC is the bank controller contract: it answers all reads and writes that
// fall in the cartridge regions (0x0000-0x7FFF ROM, 0xA000-0xBFFF RAM).
// Writes to the ROM region are control commands, not stores. Richer
// controllers (MBC2/3/5/...) plug in behind this interface.
type MBC interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// NoMBC covers cartridges without banking hardware: up to 32KB of ROM mapped
// flat over 0x0000-0x7FFF and no external RAM.
type NoMBC struct {
	rom []byte
}

// NewNoMBC creates a controller for an unbanked cartridge.
func NewNoMBC(rom []byte) *NoMBC {
	return &NoMBC{rom: rom}
}

func (m *NoMBC) Read(address uint16) byte {
	if int(address) < len(m.rom) {
		return m.rom[address]
	}
	return 0xFF
}

func (m *NoMBC) Write(address uint16, value byte) {}

// MBC1 implements the simplest banking scheme: writes to 0x2000-0x3FFF select
// which 16KB ROM bank appears in the 0x4000-0x7FFF window. Only the low 5
// bits of the written value are significant, and a bank 0 request is remapped
// to bank 1 (bank 0 is always visible in the fixed window). Bank contents are
// retained across switches, including RAM written while a bank was active.
type MBC1 struct {
	rom        []byte
	ram        []byte
	romBank    int
	bankCount  int
	ramEnabled bool
}

const (
	romBankSize = 0x4000
	extRAMSize  = 0x2000
)

// NewMBC1 creates an MBC1 controller over a ROM image.
func NewMBC1(rom []byte, bankCount int, hasRAM bool) *MBC1 {
	m := &MBC1{
		rom:       rom,
		romBank:   1,
		bankCount: bankCount,
	}
	if hasRAM {
		m.ram = make([]byte, extRAMSize)
	}
	return m
}

func (m *MBC1) Read(address uint16) byte {
	switch {
	case address < 0x4000:
		return m.rom[address]
	case address < 0x8000:
		offset := m.romBank*romBankSize + int(address-0x4000)
		if offset >= len(m.rom) {
			offset %= len(m.rom)
		}
		return m.rom[offset]
	case address >= 0xA000 && address <= 0xBFFF:
		if m.ram == nil || !m.ramEnabled {
			return 0xFF
		}
		return m.ram[address-0xA000]
	}
	return 0xFF
}

func (m *MBC1) Write(address uint16, value byte) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		bank := int(value & 0x1F)
		if bank == 0 {
			bank = 1
		}
		if m.bankCount > 0 {
			bank %= m.bankCount
			if bank == 0 {
				bank = 1
			}
		}
		m.romBank = bank
	case address >= 0xA000 && address <= 0xBFFF:
		if m.ram != nil && m.ramEnabled {
			m.ram[address-0xA000] = value
		}
	}
}

// ROMBank returns the bank currently mapped at 0x4000-0x7FFF.
func (m *MBC1) ROMBank() int {
	return m.romBank
}
