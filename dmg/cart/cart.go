// Package cart parses cartridge images and their header metadata.
package cart

import (
	"fmt"
	"os"
	"strings"
)

// header field addresses
const (
	titleAddress         = 0x134
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149

	titleLength = 16
	headerEnd   = 0x150
)

// MBCType identifies the memory bank controller a cartridge carries.
type MBCType uint8

const (
	NoMBC MBCType = iota
	MBC1
	MBC2
	MBC3
	MBC5
	MBC6
	MBC7
	MBCUnknown
)

func (t MBCType) String() string {
	switch t {
	case NoMBC:
		return "none"
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	case MBC6:
		return "MBC6"
	case MBC7:
		return "MBC7"
	}
	return "unknown"
}

// Cartridge holds a loaded ROM image along with its decoded header fields.
type Cartridge struct {
	data         []byte
	title        string
	gbCompatible bool
	mbcType      MBCType
	hasRAM       bool
	hasBattery   bool
	romBankCount int
	ramSize      uint8
}

// New decodes a cartridge from a raw ROM image.
func New(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, fmt.Errorf("cart: image too small for a header (%d bytes)", len(data))
	}

	c := &Cartridge{
		data:    make([]byte, len(data)),
		ramSize: data[ramSizeAddress],
	}
	copy(c.data, data)

	// CGB flag: 0xC0 means CGB-only, anything else still runs on a DMG.
	c.gbCompatible = data[cgbFlagAddress] != 0xC0

	titleBytes := data[titleAddress : titleAddress+titleLength]
	c.title = strings.TrimRight(string(titleBytes), "\x00")

	switch data[cartridgeTypeAddress] {
	case 0x00:
		c.mbcType = NoMBC
	case 0x01:
		c.mbcType = MBC1
	case 0x02:
		c.mbcType, c.hasRAM = MBC1, true
	case 0x03:
		c.mbcType, c.hasRAM, c.hasBattery = MBC1, true, true
	case 0x05, 0x06:
		c.mbcType = MBC2
	case 0x08:
		c.mbcType, c.hasRAM = NoMBC, true
	case 0x09:
		c.mbcType, c.hasRAM, c.hasBattery = NoMBC, true, true
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		c.mbcType = MBC3
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		c.mbcType = MBC5
	case 0x20:
		c.mbcType = MBC6
	case 0x22:
		c.mbcType = MBC7
	default:
		c.mbcType = MBCUnknown
	}

	switch sizeCode := data[romSizeAddress]; {
	case sizeCode <= 0x08:
		c.romBankCount = 2 << sizeCode
	case sizeCode == 0x52:
		c.romBankCount = 72
	case sizeCode == 0x53:
		c.romBankCount = 80
	case sizeCode == 0x54:
		c.romBankCount = 96
	default:
		return nil, fmt.Errorf("cart: invalid ROM size code 0x%02X", sizeCode)
	}

	return c, nil
}

// Open reads and decodes a cartridge from a file on disk.
func Open(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// Bytes returns the full ROM image.
func (c *Cartridge) Bytes() []byte { return c.data }

// Title returns the game title stored in the header.
func (c *Cartridge) Title() string { return c.title }

// GBCompatible reports whether the image runs on the original DMG hardware.
func (c *Cartridge) GBCompatible() bool { return c.gbCompatible }

// MBCType returns the bank controller the cartridge declares.
func (c *Cartridge) MBCType() MBCType { return c.mbcType }

// ROMBankCount returns the number of 16KB ROM banks in the image.
func (c *Cartridge) ROMBankCount() int { return c.romBankCount }

// HasRAM reports whether the cartridge declares external RAM.
func (c *Cartridge) HasRAM() bool { return c.hasRAM }

// HasBattery reports whether the cartridge declares battery-backed RAM.
func (c *Cartridge) HasBattery() bool { return c.hasBattery }
