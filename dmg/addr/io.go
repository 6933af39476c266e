// Package addr holds the fixed addresses of the memory mapped I/O registers.
package addr

// lcd registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// DMA Transfer and Start register.
	DMA uint16 = 0xFF46
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
)

// boot ROM
const (
	// BootROMDisable unmaps the 256-byte boot ROM overlay when written to.
	// The unmap is permanent until the next power cycle.
	BootROMDisable uint16 = 0xFF50
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// tile data and tile maps
const (
	// TileDataUnsigned is the base of the unsigned tile data region (tiles 0-255).
	TileDataUnsigned uint16 = 0x8000
	// TileDataSigned is the base of the signed tile data region (tiles -128 to 127).
	TileDataSigned uint16 = 0x9000

	// TileMap0 is background/window tile map 0.
	TileMap0 uint16 = 0x9800
	// TileMap1 is background/window tile map 1.
	TileMap1 uint16 = 0x9C00
)
