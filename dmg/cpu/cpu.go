// Package cpu implements the SM83 instruction execution engine: the register
// file, the two opcode decode tables and the fetch-decode-execute loop.
package cpu

import "fmt"

// Bus is the memory interface the execution engine drives.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	ReadU16(address uint16) uint16
	WriteU16(address uint16, value uint16)
}

// CPU holds processor state and runs the fetch-decode-execute loop.
type CPU struct {
	reg Registers
	sp  uint16
	pc  uint16

	// interruptsEnabled is the IME flag. DI/EI/RETI only store it; interrupt
	// dispatch itself belongs to an external collaborator.
	interruptsEnabled bool
	halted            bool
	stopped           bool

	// skipPCAdvance is set by control-flow handlers that assign PC themselves.
	skipPCAdvance bool

	cycles uint64

	bus Bus
}

// New returns a CPU with zeroed state, ready to start executing at 0x0000
// (the boot ROM entry point).
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// Snapshot is a copy of all externally visible CPU state.
type Snapshot struct {
	A, B, C, D, E, F, H, L uint8
	SP, PC                 uint16
}

// FlagString renders the flag register as "ZNHC" with dashes for clear bits.
func (s Snapshot) FlagString() string {
	flags := []byte("----")
	names := []byte("ZNHC")
	for i, mask := range []uint8{0x80, 0x40, 0x20, 0x10} {
		if s.F&mask != 0 {
			flags[i] = names[i]
		}
	}
	return string(flags)
}

func (s Snapshot) String() string {
	return fmt.Sprintf("A=%02X F=%s BC=%02X%02X DE=%02X%02X HL=%02X%02X SP=%04X PC=%04X",
		s.A, s.FlagString(), s.B, s.C, s.D, s.E, s.H, s.L, s.SP, s.PC)
}

// Snapshot returns a copy of the current CPU state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.reg.A, B: c.reg.B, C: c.reg.C, D: c.reg.D,
		E: c.reg.E, F: c.reg.F, H: c.reg.H, L: c.reg.L,
		SP: c.sp, PC: c.pc,
	}
}

// Restore overwrites the CPU state with the given snapshot. The low nibble
// of F is discarded, preserving the register file invariant.
func (c *CPU) Restore(s Snapshot) {
	c.reg.A, c.reg.B, c.reg.C, c.reg.D = s.A, s.B, s.C, s.D
	c.reg.E, c.reg.H, c.reg.L = s.E, s.H, s.L
	c.reg.F = s.F & 0xF0
	c.sp = s.SP
	c.pc = s.PC
	c.halted = false
	c.stopped = false
}

// Cycles returns the total T-cycles executed so far.
func (c *CPU) Cycles() uint64 { return c.cycles }

// PC returns the current program counter.
func (c *CPU) PC() uint16 { return c.pc }

// Halted reports whether the CPU executed HALT and is waiting.
func (c *CPU) Halted() bool { return c.halted }

// Stopped reports whether the CPU executed STOP.
func (c *CPU) Stopped() bool { return c.stopped }

// InterruptsEnabled reports the stored IME flag.
func (c *CPU) InterruptsEnabled() bool { return c.interruptsEnabled }

// ExecuteNext runs a single fetch-decode-execute step and returns the
// T-cycles it consumed. Decode failures and operand type mismatches are
// fatal: the returned error means CPU state is no longer trustworthy.
func (c *CPU) ExecuteNext() (int, error) {
	if c.halted {
		// Waiting for an (externally dispatched) interrupt.
		c.cycles += 4
		return 4, nil
	}

	code := c.bus.Read(c.pc)
	prefixed := code == 0xCB

	var op *Opcode
	if prefixed {
		code = c.bus.Read(c.pc + 1)
		op = &prefixedOpcodes[code]
	} else {
		op = &normalOpcodes[code]
	}
	if !op.defined {
		return 0, &UnrecognizedOpcodeError{Code: code, Prefixed: prefixed}
	}

	var extraCycles int
	var err error
	if prefixed {
		err = c.executePrefixed(op)
	} else {
		extraCycles, err = c.execute(op)
	}
	if err != nil {
		return 0, err
	}

	if c.skipPCAdvance {
		c.skipPCAdvance = false
	} else {
		c.pc += op.Length
	}

	total := op.Cycles + extraCycles
	c.cycles += uint64(total)
	return total, nil
}

// getData resolves an addressing mode into an operand against current state.
// Immediate operands are read relative to PC, which still points at the
// opcode byte during execution.
func (c *CPU) getData(mode AddressingMode) (operand, error) {
	switch mode.Kind {
	case ModeImmediateRegister:
		switch mode.Reg {
		case RegA:
			return operand{kind: operandU8, u8: c.reg.A}, nil
		case RegB:
			return operand{kind: operandU8, u8: c.reg.B}, nil
		case RegC:
			return operand{kind: operandU8, u8: c.reg.C}, nil
		case RegD:
			return operand{kind: operandU8, u8: c.reg.D}, nil
		case RegE:
			return operand{kind: operandU8, u8: c.reg.E}, nil
		case RegH:
			return operand{kind: operandU8, u8: c.reg.H}, nil
		case RegL:
			return operand{kind: operandU8, u8: c.reg.L}, nil
		case RegAF:
			return operand{kind: operandU16, u16: c.reg.AF()}, nil
		case RegBC:
			return operand{kind: operandU16, u16: c.reg.BC()}, nil
		case RegDE:
			return operand{kind: operandU16, u16: c.reg.DE()}, nil
		case RegHL:
			return operand{kind: operandU16, u16: c.reg.HL()}, nil
		case RegSP:
			return operand{kind: operandU16, u16: c.sp}, nil
		}
		return operand{}, opcodeErrorf("immediate register mode with unknown register %d", mode.Reg)
	case ModeAddressRegister:
		switch mode.Reg {
		case RegBC:
			return operand{kind: operandAddr, address: c.reg.BC()}, nil
		case RegDE:
			return operand{kind: operandAddr, address: c.reg.DE()}, nil
		case RegHL:
			return operand{kind: operandAddr, address: c.reg.HL()}, nil
		}
		return operand{}, opcodeErrorf("address register mode requires BC, DE or HL")
	case ModeImmediateU8:
		return operand{kind: operandU8, u8: c.bus.Read(c.pc + 1)}, nil
	case ModeImmediateI8:
		return operand{kind: operandI8, i8: int8(c.bus.Read(c.pc + 1))}, nil
	case ModeImmediateU16:
		return operand{kind: operandU16, u16: c.bus.ReadU16(c.pc + 1)}, nil
	case ModeAddressU16:
		return operand{kind: operandAddr, address: c.bus.ReadU16(c.pc + 1)}, nil
	case ModeAddressHRAM:
		return operand{kind: operandAddr, address: 0xFF00 | uint16(c.bus.Read(c.pc+1))}, nil
	case ModeIoAddressOffset:
		return operand{kind: operandAddr, address: 0xFF00 | uint16(c.reg.C)}, nil
	case ModeNone:
		return operand{kind: operandNone}, nil
	}
	return operand{}, opcodeErrorf("unknown addressing mode %d", mode.Kind)
}

// operandByte resolves a mode that must yield an 8 bit value, reading memory
// when the mode yields an address.
func (c *CPU) operandByte(mode AddressingMode) (uint8, error) {
	data, err := c.getData(mode)
	if err != nil {
		return 0, err
	}
	switch data.kind {
	case operandU8:
		return data.u8, nil
	case operandAddr:
		return c.bus.Read(data.address), nil
	}
	return 0, opcodeErrorf("expected an 8 bit operand, mode kind %d", mode.Kind)
}

// operandWord resolves a mode that must yield a 16 bit value.
func (c *CPU) operandWord(mode AddressingMode) (uint16, error) {
	data, err := c.getData(mode)
	if err != nil {
		return 0, err
	}
	if data.kind != operandU16 {
		return 0, opcodeErrorf("expected a 16 bit operand, mode kind %d", mode.Kind)
	}
	return data.u16, nil
}

// operandAddress resolves a mode that must yield a memory address.
func (c *CPU) operandAddress(mode AddressingMode) (uint16, error) {
	data, err := c.getData(mode)
	if err != nil {
		return 0, err
	}
	if data.kind != operandAddr {
		return 0, opcodeErrorf("expected an address operand, mode kind %d", mode.Kind)
	}
	return data.address, nil
}

// operandSigned resolves a mode that must yield a signed 8 bit value.
func (c *CPU) operandSigned(mode AddressingMode) (int8, error) {
	data, err := c.getData(mode)
	if err != nil {
		return 0, err
	}
	if data.kind != operandI8 {
		return 0, opcodeErrorf("expected a signed 8 bit operand, mode kind %d", mode.Kind)
	}
	return data.i8, nil
}

// setReg8 stores a byte into a named 8 bit register.
func (c *CPU) setReg8(r Register, value uint8) error {
	switch r {
	case RegA:
		c.reg.A = value
	case RegB:
		c.reg.B = value
	case RegC:
		c.reg.C = value
	case RegD:
		c.reg.D = value
	case RegE:
		c.reg.E = value
	case RegH:
		c.reg.H = value
	case RegL:
		c.reg.L = value
	default:
		return opcodeErrorf("cannot store an 8 bit value in register %d", r)
	}
	return nil
}

// setWordReg stores a word into a named 16 bit register pair or SP.
func (c *CPU) setWordReg(r Register, value uint16) error {
	switch r {
	case RegAF:
		c.reg.SetAF(value)
	case RegBC:
		c.reg.SetBC(value)
	case RegDE:
		c.reg.SetDE(value)
	case RegHL:
		c.reg.SetHL(value)
	case RegSP:
		c.sp = value
	default:
		return opcodeErrorf("cannot store a 16 bit value in register %d", r)
	}
	return nil
}

// writeByteTarget stores a byte back to wherever the mode points: a register
// for immediate register modes, memory for address modes.
func (c *CPU) writeByteTarget(mode AddressingMode, value uint8) error {
	if mode.Kind == ModeImmediateRegister {
		return c.setReg8(mode.Reg, value)
	}
	address, err := c.operandAddress(mode)
	if err != nil {
		return err
	}
	c.bus.Write(address, value)
	return nil
}
