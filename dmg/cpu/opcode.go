package cpu

// Register names an operand register in an addressing mode descriptor.
type Register uint8

const (
	RegNone Register = iota
	RegA
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
	RegAF
	RegBC
	RegDE
	RegHL
	RegSP
)

// AddressingKind discriminates the closed set of addressing modes.
type AddressingKind uint8

const (
	// ModeNone marks an unused operand slot.
	ModeNone AddressingKind = iota
	// ModeImmediateRegister reads or writes the named register directly.
	ModeImmediateRegister
	// ModeAddressRegister treats the named 16 bit pair as a memory address.
	ModeAddressRegister
	// ModeImmediateU8 reads an unsigned byte at PC+1.
	ModeImmediateU8
	// ModeImmediateI8 reads a signed byte at PC+1.
	ModeImmediateI8
	// ModeImmediateU16 reads a little-endian word at PC+1.
	ModeImmediateU16
	// ModeAddressU16 reads a little-endian word at PC+1 and treats it as an address.
	ModeAddressU16
	// ModeAddressHRAM computes 0xFF00 | byte-at(PC+1).
	ModeAddressHRAM
	// ModeIoAddressOffset computes 0xFF00 | C.
	ModeIoAddressOffset
)

// AddressingMode describes how one operand of an instruction is resolved.
type AddressingMode struct {
	Kind AddressingKind
	Reg  Register
}

func immReg(r Register) AddressingMode {
	return AddressingMode{Kind: ModeImmediateRegister, Reg: r}
}

func addrReg(r Register) AddressingMode {
	return AddressingMode{Kind: ModeAddressRegister, Reg: r}
}

var (
	modeNone = AddressingMode{}
	immU8    = AddressingMode{Kind: ModeImmediateU8}
	immI8    = AddressingMode{Kind: ModeImmediateI8}
	immU16   = AddressingMode{Kind: ModeImmediateU16}
	addrU16  = AddressingMode{Kind: ModeAddressU16}
	addrHRAM = AddressingMode{Kind: ModeAddressHRAM}
	ioOffset = AddressingMode{Kind: ModeIoAddressOffset}
)

// Opcode is an immutable instruction descriptor. The two decode tables are
// built once at package init and shared by every decode afterwards.
type Opcode struct {
	Code   byte
	Asm    string
	Length uint16
	Cycles int
	Lhs    AddressingMode
	Rhs    AddressingMode

	defined bool
}

// Lookup returns the descriptor for an opcode byte in the chosen table. The
// second return value is false for undefined opcodes.
func Lookup(code byte, prefixed bool) (Opcode, bool) {
	var op Opcode
	if prefixed {
		op = prefixedOpcodes[code]
	} else {
		op = normalOpcodes[code]
	}
	return op, op.defined
}

// operandKind discriminates resolved operand values.
type operandKind uint8

const (
	operandNone operandKind = iota
	operandU8
	operandU16
	operandI8
	operandAddr
)

// operand is the result of resolving an addressing mode against current state.
type operand struct {
	kind    operandKind
	u8      uint8
	u16     uint16
	i8      int8
	address uint16
}
