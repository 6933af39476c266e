package cpu

import "github.com/dotmatrixgo/go-dmg/dmg/bit"

// Flag is one of the 4 flags stored in the high nibble of F.
type Flag uint8

const (
	ZeroFlag      Flag = 0x80
	SubFlag       Flag = 0x40
	HalfCarryFlag Flag = 0x20
	CarryFlag     Flag = 0x10
)

// Registers is the register file: eight 8 bit registers, with AF/BC/DE/HL
// exposed as 16 bit pairs. The low nibble of F is always zero.
type Registers struct {
	A uint8
	B uint8
	C uint8
	D uint8
	E uint8
	F uint8
	H uint8
	L uint8
}

func (r *Registers) AF() uint16 {
	return bit.Combine(r.A, r.F)
}

func (r *Registers) SetAF(value uint16) {
	r.A = bit.High(value)
	// F register lower 4 bits must be 0
	r.F = bit.Low(value) & 0xF0
}

func (r *Registers) BC() uint16 {
	return bit.Combine(r.B, r.C)
}

func (r *Registers) SetBC(value uint16) {
	r.B = bit.High(value)
	r.C = bit.Low(value)
}

func (r *Registers) DE() uint16 {
	return bit.Combine(r.D, r.E)
}

func (r *Registers) SetDE(value uint16) {
	r.D = bit.High(value)
	r.E = bit.Low(value)
}

func (r *Registers) HL() uint16 {
	return bit.Combine(r.H, r.L)
}

func (r *Registers) SetHL(value uint16) {
	r.H = bit.High(value)
	r.L = bit.Low(value)
}

func (r *Registers) SetFlag(flag Flag) {
	r.F |= uint8(flag)
}

func (r *Registers) ClearFlag(flag Flag) {
	r.F &= ^uint8(flag)
}

func (r *Registers) FlagSet(flag Flag) bool {
	return r.F&uint8(flag) != 0
}

// FlagBit returns 1 if the flag is set, 0 otherwise.
func (r *Registers) FlagBit(flag Flag) uint8 {
	if r.FlagSet(flag) {
		return 1
	}
	return 0
}

func (r *Registers) SetFlagTo(flag Flag, condition bool) {
	if condition {
		r.SetFlag(flag)
		return
	}
	r.ClearFlag(flag)
}
