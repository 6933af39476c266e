package cpu

// execute runs an unprefixed opcode and returns any extra cycles the taken
// branch of a conditional control-flow instruction costs on top of the
// table's base cost.
func (c *CPU) execute(op *Opcode) (int, error) {
	code := op.Code

	switch {
	case code == 0x00: // NOP
		return 0, nil
	case code == 0x10: // STOP
		c.stopped = true
		return 0, nil
	case code == 0x76: // HALT
		c.halted = true
		return 0, nil
	case code == 0xF3: // DI
		c.interruptsEnabled = false
		return 0, nil
	case code == 0xFB: // EI
		c.interruptsEnabled = true
		return 0, nil

	case code == 0x07: // RLCA
		return 0, c.rotateLeft(op.Lhs, false, false)
	case code == 0x17: // RLA
		return 0, c.rotateLeft(op.Lhs, true, false)
	case code == 0x0F: // RRCA
		return 0, c.rotateRight(op.Lhs, false, false)
	case code == 0x1F: // RRA
		return 0, c.rotateRight(op.Lhs, true, false)

	case code == 0x27:
		c.daa()
		return 0, nil
	case code == 0x2F:
		c.cpl()
		return 0, nil
	case code == 0x37:
		c.scf()
		return 0, nil
	case code == 0x3F:
		c.ccf()
		return 0, nil

	case code == 0x22 || code == 0x2A: // LD [HL+], A / LD A, [HL+]
		return 0, c.load(op.Lhs, op.Rhs, loadIncHL)
	case code == 0x32 || code == 0x3A: // LD [HL-], A / LD A, [HL-]
		return 0, c.load(op.Lhs, op.Rhs, loadDecHL)
	case code == 0x02 || code == 0x12 || code == 0x0A || code == 0x1A || code == 0x08:
		return 0, c.load(op.Lhs, op.Rhs, loadNone)

	case code == 0x18: // JR e8
		return c.jumpRelative(op.Rhs, condNone)
	case code < 0x40 && code&0xE7 == 0x20: // JR cond, e8
		return c.jumpRelative(op.Rhs, conditionFromCode(code))

	case code < 0x40 && code&0x0F == 0x01: // LD r16, n16
		return 0, c.load(op.Lhs, op.Rhs, loadNone)
	case code < 0x40 && code&0x0F == 0x03: // INC r16
		return 0, c.incU16(op.Lhs)
	case code < 0x40 && code&0x0F == 0x0B: // DEC r16
		return 0, c.decU16(op.Lhs)
	case code < 0x40 && code&0x0F == 0x09: // ADD HL, r16
		return 0, c.addToHL(op.Rhs)
	case code < 0x40 && code&0x07 == 0x04: // INC r8
		return 0, c.incU8(op.Lhs)
	case code < 0x40 && code&0x07 == 0x05: // DEC r8
		return 0, c.decU8(op.Lhs)
	case code < 0x40 && code&0x07 == 0x06: // LD r8, n8
		return 0, c.load(op.Lhs, op.Rhs, loadNone)

	case code >= 0x40 && code <= 0x7F: // LD r8, r8
		return 0, c.load(op.Lhs, op.Rhs, loadNone)

	case code >= 0x80 && code <= 0xBF:
		return 0, c.alu((code>>3)&7, op.Rhs)
	case code >= 0xC0 && code&0x07 == 0x06: // ALU immediate forms
		return 0, c.alu((code-0xC6)>>3, op.Rhs)

	case code == 0xC9:
		return c.ret(condNone, false)
	case code == 0xD9:
		return c.ret(condNone, true)
	case code == 0xC3 || code == 0xE9:
		return c.jumpAbsolute(op.Lhs, condNone)
	case code == 0xCD:
		return c.call(op.Lhs, condNone, op.Length)
	case code&0xE7 == 0xC0: // RET cond
		return c.ret(conditionFromCode(code), false)
	case code&0xE7 == 0xC2: // JP cond, a16
		return c.jumpAbsolute(op.Lhs, conditionFromCode(code))
	case code&0xE7 == 0xC4: // CALL cond, a16
		return c.call(op.Lhs, conditionFromCode(code), op.Length)
	case code&0xC7 == 0xC7: // RST
		c.rst(code & 0x38)
		return 0, nil

	case code&0xCF == 0xC1: // POP r16
		return 0, c.popWord(op.Lhs)
	case code&0xCF == 0xC5: // PUSH r16
		return 0, c.pushWord(op.Lhs)

	case code == 0xE0 || code == 0xF0 || code == 0xE2 || code == 0xF2 ||
		code == 0xEA || code == 0xFA || code == 0xF9:
		return 0, c.load(op.Lhs, op.Rhs, loadNone)

	case code == 0xE8:
		return 0, c.addToSP(op.Rhs)
	case code == 0xF8:
		return 0, c.loadHLSPOffset(op.Rhs)
	}

	return 0, &NotImplementedError{Code: code}
}

// alu dispatches the 8-entry ALU family in opcode row order.
func (c *CPU) alu(family byte, rhs AddressingMode) error {
	switch family {
	case 0:
		return c.addToA(rhs, false)
	case 1:
		return c.addToA(rhs, true)
	case 2:
		return c.subFromA(rhs, false, true)
	case 3:
		return c.subFromA(rhs, true, true)
	case 4:
		return c.andA(rhs)
	case 5:
		return c.xorA(rhs)
	case 6:
		return c.orA(rhs)
	}
	return c.subFromA(rhs, false, false) // CP
}

// executePrefixed runs a 0xCB-prefixed opcode. The table is fully regular:
// eight rotate/shift groups, then BIT, RES and SET.
func (c *CPU) executePrefixed(op *Opcode) error {
	code := op.Code
	switch {
	case code <= 0x07: // RLC
		return c.rotateLeft(op.Lhs, false, true)
	case code <= 0x0F: // RRC
		return c.rotateRight(op.Lhs, false, true)
	case code <= 0x17: // RL
		return c.rotateLeft(op.Lhs, true, true)
	case code <= 0x1F: // RR
		return c.rotateRight(op.Lhs, true, true)
	case code <= 0x27: // SLA
		return c.shiftLeft(op.Lhs)
	case code <= 0x2F: // SRA
		return c.shiftRight(op.Lhs, true)
	case code <= 0x37: // SWAP
		return c.swapNibbles(op.Lhs)
	case code <= 0x3F: // SRL
		return c.shiftRight(op.Lhs, false)
	case code <= 0x7F:
		return c.bitCheck((code>>3)&7, op.Rhs)
	case code <= 0xBF:
		return c.setBitTo((code>>3)&7, op.Lhs, false)
	}
	return c.setBitTo((code>>3)&7, op.Lhs, true)
}
