package cpu

import "github.com/dotmatrixgo/go-dmg/dmg/bit"

// condition guards conditional jumps, calls and returns.
type condition uint8

const (
	condNone condition = iota
	condNZ
	condZ
	condNC
	condC
)

// conditionFromCode maps bits 4-3 of a conditional opcode to its condition.
func conditionFromCode(code byte) condition {
	switch (code >> 3) & 3 {
	case 0:
		return condNZ
	case 1:
		return condZ
	case 2:
		return condNC
	}
	return condC
}

func (c *CPU) conditionMet(cond condition) bool {
	switch cond {
	case condNZ:
		return !c.reg.FlagSet(ZeroFlag)
	case condZ:
		return c.reg.FlagSet(ZeroFlag)
	case condNC:
		return !c.reg.FlagSet(CarryFlag)
	case condC:
		return c.reg.FlagSet(CarryFlag)
	}
	return true
}

// carryTrackAddU8 adds two bytes and reports the half carry out of bit 3 and
// the full carry out of bit 7. Every ALU opcode's flag computation routes
// through this helper or its subtract twin.
func carryTrackAddU8(lhs, rhs uint8) (sum uint8, halfCarry, fullCarry bool) {
	sum = lhs + rhs
	halfCarry = (lhs&0xF+rhs&0xF)&0x10 == 0x10
	fullCarry = uint16(lhs)+uint16(rhs) > 0xFF
	return
}

// carryTrackSubU8 subtracts rhs from lhs and reports the half borrow from
// bit 4 and the full borrow.
func carryTrackSubU8(lhs, rhs uint8) (diff uint8, halfBorrow, fullBorrow bool) {
	diff = lhs - rhs
	halfBorrow = lhs&0xF < rhs&0xF
	fullBorrow = lhs < rhs
	return
}

// loadModifier is the post-load HL adjustment used by LD [HL+] / LD [HL-].
type loadModifier uint8

const (
	loadNone loadModifier = iota
	loadIncHL
	loadDecHL
)

// load implements every LD form: the destination mode decides whether the
// resolved source value lands in a register or in memory.
func (c *CPU) load(lhs, rhs AddressingMode, modifier loadModifier) error {
	data, err := c.getData(rhs)
	if err != nil {
		return err
	}

	switch lhs.Kind {
	case ModeImmediateRegister:
		switch data.kind {
		case operandU8:
			if err := c.setReg8(lhs.Reg, data.u8); err != nil {
				return err
			}
		case operandU16:
			if err := c.setWordReg(lhs.Reg, data.u16); err != nil {
				return err
			}
		case operandAddr:
			if err := c.setReg8(lhs.Reg, c.bus.Read(data.address)); err != nil {
				return err
			}
		default:
			return opcodeErrorf("load into register requires a value or address source")
		}
	case ModeAddressRegister, ModeAddressU16, ModeAddressHRAM, ModeIoAddressOffset:
		address, err := c.operandAddress(lhs)
		if err != nil {
			return err
		}
		switch data.kind {
		case operandU8:
			c.bus.Write(address, data.u8)
		case operandU16:
			// LD [a16], SP is the only word store.
			c.bus.WriteU16(address, data.u16)
		default:
			return opcodeErrorf("load into memory requires a value source")
		}
	default:
		return opcodeErrorf("load destination must be a register or an address")
	}

	switch modifier {
	case loadIncHL:
		c.reg.SetHL(c.reg.HL() + 1)
	case loadDecHL:
		c.reg.SetHL(c.reg.HL() - 1)
	}
	return nil
}

// incU8 implements INC r8 / INC [HL]. Carry is left untouched.
func (c *CPU) incU8(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	sum, halfCarry, _ := carryTrackAddU8(value, 1)
	if err := c.writeByteTarget(mode, sum); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, sum == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfCarry)
	return nil
}

// decU8 implements DEC r8 / DEC [HL]. Carry is left untouched.
func (c *CPU) decU8(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	diff, halfBorrow, _ := carryTrackSubU8(value, 1)
	if err := c.writeByteTarget(mode, diff); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, diff == 0)
	c.reg.SetFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfBorrow)
	return nil
}

// incU16 and decU16 wrap mod 2^16 and affect no flags.
func (c *CPU) incU16(mode AddressingMode) error {
	value, err := c.operandWord(mode)
	if err != nil {
		return err
	}
	return c.setWordReg(mode.Reg, value+1)
}

func (c *CPU) decU16(mode AddressingMode) error {
	value, err := c.operandWord(mode)
	if err != nil {
		return err
	}
	return c.setWordReg(mode.Reg, value-1)
}

// addToA implements ADD A,x and ADC A,x. ADC chains the carry-in through a
// second application of the carry tracking helper.
func (c *CPU) addToA(mode AddressingMode, withCarry bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	sum, halfCarry, fullCarry := carryTrackAddU8(c.reg.A, value)
	if withCarry && c.reg.FlagSet(CarryFlag) {
		sum2, half2, full2 := carryTrackAddU8(sum, 1)
		sum = sum2
		halfCarry = halfCarry || half2
		fullCarry = fullCarry || full2
	}
	c.reg.A = sum
	c.reg.SetFlagTo(ZeroFlag, sum == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfCarry)
	c.reg.SetFlagTo(CarryFlag, fullCarry)
	return nil
}

// subFromA implements SUB, SBC and CP. CP is a subtract that never stores
// the result back into A.
func (c *CPU) subFromA(mode AddressingMode, withCarry, store bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	diff, halfBorrow, fullBorrow := carryTrackSubU8(c.reg.A, value)
	if withCarry && c.reg.FlagSet(CarryFlag) {
		diff2, half2, full2 := carryTrackSubU8(diff, 1)
		diff = diff2
		halfBorrow = halfBorrow || half2
		fullBorrow = fullBorrow || full2
	}
	if store {
		c.reg.A = diff
	}
	c.reg.SetFlagTo(ZeroFlag, diff == 0)
	c.reg.SetFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfBorrow)
	c.reg.SetFlagTo(CarryFlag, fullBorrow)
	return nil
}

func (c *CPU) andA(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	c.reg.A &= value
	c.reg.SetFlagTo(ZeroFlag, c.reg.A == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlag(HalfCarryFlag)
	c.reg.ClearFlag(CarryFlag)
	return nil
}

func (c *CPU) orA(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	c.reg.A |= value
	c.reg.SetFlagTo(ZeroFlag, c.reg.A == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.ClearFlag(CarryFlag)
	return nil
}

func (c *CPU) xorA(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	c.reg.A ^= value
	c.reg.SetFlagTo(ZeroFlag, c.reg.A == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.ClearFlag(CarryFlag)
	return nil
}

// addToHL implements ADD HL,r16: half carry out of bit 11, carry out of
// bit 15, zero flag untouched.
func (c *CPU) addToHL(mode AddressingMode) error {
	value, err := c.operandWord(mode)
	if err != nil {
		return err
	}
	hl := c.reg.HL()
	c.reg.SetHL(hl + value)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, hl&0x0FFF+value&0x0FFF > 0x0FFF)
	c.reg.SetFlagTo(CarryFlag, uint32(hl)+uint32(value) > 0xFFFF)
	return nil
}

// addToSP implements ADD SP,e8. H and C come from the unsigned low-byte add.
func (c *CPU) addToSP(mode AddressingMode) error {
	offset, err := c.operandSigned(mode)
	if err != nil {
		return err
	}
	_, halfCarry, fullCarry := carryTrackAddU8(uint8(c.sp), uint8(offset))
	c.sp = uint16(int32(c.sp) + int32(offset))
	c.reg.ClearFlag(ZeroFlag)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfCarry)
	c.reg.SetFlagTo(CarryFlag, fullCarry)
	return nil
}

// loadHLSPOffset implements LD HL,SP+e8 with the same flags as ADD SP,e8.
func (c *CPU) loadHLSPOffset(mode AddressingMode) error {
	offset, err := c.operandSigned(mode)
	if err != nil {
		return err
	}
	_, halfCarry, fullCarry := carryTrackAddU8(uint8(c.sp), uint8(offset))
	c.reg.SetHL(uint16(int32(c.sp) + int32(offset)))
	c.reg.ClearFlag(ZeroFlag)
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlagTo(HalfCarryFlag, halfCarry)
	c.reg.SetFlagTo(CarryFlag, fullCarry)
	return nil
}

// rotateLeft covers RLCA/RLA and the prefixed RLC/RL forms. Through-carry
// variants feed the old carry into bit 0; otherwise the evicted bit wraps
// around. Only prefixed forms compute the zero flag.
func (c *CPU) rotateLeft(mode AddressingMode, throughCarry, prefixed bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	evicted := value >> 7
	incoming := evicted
	if throughCarry {
		incoming = c.reg.FlagBit(CarryFlag)
	}
	result := value<<1 | incoming
	if err := c.writeByteTarget(mode, result); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, prefixed && result == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.SetFlagTo(CarryFlag, evicted == 1)
	return nil
}

// rotateRight covers RRCA/RRA and the prefixed RRC/RR forms.
func (c *CPU) rotateRight(mode AddressingMode, throughCarry, prefixed bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	evicted := value & 1
	incoming := evicted
	if throughCarry {
		incoming = c.reg.FlagBit(CarryFlag)
	}
	result := value>>1 | incoming<<7
	if err := c.writeByteTarget(mode, result); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, prefixed && result == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.SetFlagTo(CarryFlag, evicted == 1)
	return nil
}

// shiftLeft implements SLA: bit 0 fills with zero.
func (c *CPU) shiftLeft(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	result := value << 1
	if err := c.writeByteTarget(mode, result); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, result == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.SetFlagTo(CarryFlag, value>>7 == 1)
	return nil
}

// shiftRight implements SRA (arithmetic=true, sign bit preserved) and SRL
// (arithmetic=false, bit 7 fills with zero).
func (c *CPU) shiftRight(mode AddressingMode, arithmetic bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	result := value >> 1
	if arithmetic {
		result |= value & 0x80
	}
	if err := c.writeByteTarget(mode, result); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, result == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.SetFlagTo(CarryFlag, value&1 == 1)
	return nil
}

// swapNibbles implements SWAP r8/[HL].
func (c *CPU) swapNibbles(mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	result := value<<4 | value>>4
	if err := c.writeByteTarget(mode, result); err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, result == 0)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.ClearFlag(CarryFlag)
	return nil
}

// bitCheck implements BIT b,x: sets Z when the tested bit is clear, leaves
// the value itself untouched.
func (c *CPU) bitCheck(index uint8, mode AddressingMode) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	c.reg.SetFlagTo(ZeroFlag, !bit.IsSet(index, value))
	c.reg.ClearFlag(SubFlag)
	c.reg.SetFlag(HalfCarryFlag)
	return nil
}

// setBitTo implements SET and RES: in-place bit writes, no flags affected.
func (c *CPU) setBitTo(index uint8, mode AddressingMode, set bool) error {
	value, err := c.operandByte(mode)
	if err != nil {
		return err
	}
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Clear(index, value)
	}
	return c.writeByteTarget(mode, value)
}

// daa adjusts A back to valid binary-coded decimal after an ALU operation,
// using the N/H/C flags that operation left behind.
func (c *CPU) daa() {
	a := c.reg.A
	carry := c.reg.FlagSet(CarryFlag)

	if !c.reg.FlagSet(SubFlag) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.reg.FlagSet(HalfCarryFlag) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.reg.FlagSet(HalfCarryFlag) {
			a -= 0x06
		}
	}

	c.reg.A = a
	c.reg.SetFlagTo(ZeroFlag, a == 0)
	c.reg.ClearFlag(HalfCarryFlag)
	c.reg.SetFlagTo(CarryFlag, carry)
}

func (c *CPU) cpl() {
	c.reg.A = ^c.reg.A
	c.reg.SetFlag(SubFlag)
	c.reg.SetFlag(HalfCarryFlag)
}

func (c *CPU) scf() {
	c.reg.SetFlag(CarryFlag)
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
}

func (c *CPU) ccf() {
	c.reg.SetFlagTo(CarryFlag, !c.reg.FlagSet(CarryFlag))
	c.reg.ClearFlag(SubFlag)
	c.reg.ClearFlag(HalfCarryFlag)
}

// jumpRelative implements JR [cond],e8. The target is the address of the
// next instruction plus the signed offset. Taken conditional jumps cost 4
// extra cycles.
func (c *CPU) jumpRelative(mode AddressingMode, cond condition) (int, error) {
	offset, err := c.operandSigned(mode)
	if err != nil {
		return 0, err
	}
	if !c.conditionMet(cond) {
		return 0, nil
	}
	c.pc = uint16(int32(c.pc) + 2 + int32(offset))
	c.skipPCAdvance = true
	if cond == condNone {
		return 0, nil
	}
	return 4, nil
}

// jumpAbsolute implements JP [cond],a16 and JP HL.
func (c *CPU) jumpAbsolute(mode AddressingMode, cond condition) (int, error) {
	address, err := c.operandAddress(mode)
	if err != nil {
		return 0, err
	}
	if !c.conditionMet(cond) {
		return 0, nil
	}
	c.pc = address
	c.skipPCAdvance = true
	if cond == condNone {
		return 0, nil
	}
	return 4, nil
}

// call pushes the return address (the instruction after the CALL) and jumps.
// When the condition fails neither the push nor the jump happens.
func (c *CPU) call(mode AddressingMode, cond condition, length uint16) (int, error) {
	address, err := c.operandAddress(mode)
	if err != nil {
		return 0, err
	}
	if !c.conditionMet(cond) {
		return 0, nil
	}
	c.pushStack(c.pc + length)
	c.pc = address
	c.skipPCAdvance = true
	if cond == condNone {
		return 0, nil
	}
	return 12, nil
}

// ret pops the return address when the condition holds. RETI additionally
// re-enables the interrupt master flag.
func (c *CPU) ret(cond condition, reti bool) (int, error) {
	if !c.conditionMet(cond) {
		return 0, nil
	}
	c.pc = c.popStack()
	c.skipPCAdvance = true
	if reti {
		c.interruptsEnabled = true
	}
	if cond == condNone {
		return 0, nil
	}
	return 12, nil
}

// rst jumps to a fixed vector, pushing the address of the next instruction.
func (c *CPU) rst(vector byte) {
	c.pushStack(c.pc + 1)
	c.pc = uint16(vector)
	c.skipPCAdvance = true
}

// pushStack decrements SP, writes the high byte, decrements again and writes
// the low byte.
func (c *CPU) pushStack(value uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(value))
	c.sp--
	c.bus.Write(c.sp, bit.Low(value))
}

// popStack reads the low byte at SP, then the high byte, incrementing after
// each read.
func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.sp++
	high := c.bus.Read(c.sp)
	c.sp++
	return bit.Combine(high, low)
}

// pushWord implements PUSH r16.
func (c *CPU) pushWord(mode AddressingMode) error {
	value, err := c.operandWord(mode)
	if err != nil {
		return err
	}
	c.pushStack(value)
	return nil
}

// popWord implements POP r16. Popping into AF masks the low nibble of F.
func (c *CPU) popWord(mode AddressingMode) error {
	if mode.Kind != ModeImmediateRegister {
		return opcodeErrorf("can only pop the stack into a 16 bit register")
	}
	return c.setWordReg(mode.Reg, c.popStack())
}
