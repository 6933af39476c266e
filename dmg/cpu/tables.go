package cpu

import "fmt"

// The two fixed decode tables, indexed directly by opcode byte. Entries left
// at their zero value are the undefined opcodes (0xD3, 0xDB, ...): a direct
// array read plus a tag check replaces a map lookup miss.
var (
	normalOpcodes   [256]Opcode
	prefixedOpcodes [256]Opcode
)

// operand order used by the regular opcode blocks (0x40-0xBF and all of the
// prefixed table): B, C, D, E, H, L, [HL], A.
var blockTargets = [8]AddressingMode{
	immReg(RegB), immReg(RegC), immReg(RegD), immReg(RegE),
	immReg(RegH), immReg(RegL), addrReg(RegHL), immReg(RegA),
}

var blockTargetNames = [8]string{"B", "C", "D", "E", "H", "L", "[HL]", "A"}

// 16 bit register order for the r16 opcode columns.
var pairTargets = [4]AddressingMode{
	immReg(RegBC), immReg(RegDE), immReg(RegHL), immReg(RegSP),
}

var pairTargetNames = [4]string{"BC", "DE", "HL", "SP"}

var condNames = [4]string{"NZ", "Z", "NC", "C"}

func init() {
	buildNormalTable()
	buildPrefixedTable()
}

func def(table *[256]Opcode, code byte, asm string, length uint16, cycles int, lhs, rhs AddressingMode) {
	table[code] = Opcode{
		Code:    code,
		Asm:     asm,
		Length:  length,
		Cycles:  cycles,
		Lhs:     lhs,
		Rhs:     rhs,
		defined: true,
	}
}

func buildNormalTable() {
	t := &normalOpcodes

	def(t, 0x00, "NOP", 1, 4, modeNone, modeNone)
	def(t, 0x10, "STOP", 2, 4, modeNone, modeNone)
	def(t, 0x76, "HALT", 1, 4, modeNone, modeNone)

	// LD r16, n16 / INC r16 / DEC r16 / ADD HL, r16 columns.
	for i := byte(0); i < 4; i++ {
		pair, name := pairTargets[i], pairTargetNames[i]
		def(t, 0x01+i*0x10, "LD "+name+", n16", 3, 12, pair, immU16)
		def(t, 0x03+i*0x10, "INC "+name, 1, 8, pair, modeNone)
		def(t, 0x0B+i*0x10, "DEC "+name, 1, 8, pair, modeNone)
		def(t, 0x09+i*0x10, "ADD HL, "+name, 1, 8, immReg(RegHL), pair)
	}

	// INC r8 / DEC r8 / LD r8, n8 columns.
	for i := byte(0); i < 8; i++ {
		target, name := blockTargets[i], blockTargetNames[i]
		cost := 4
		ldCost := 8
		if target.Kind == ModeAddressRegister {
			cost = 12
			ldCost = 12
		}
		def(t, i<<3|0x04, "INC "+name, 1, cost, target, modeNone)
		def(t, i<<3|0x05, "DEC "+name, 1, cost, target, modeNone)
		def(t, i<<3|0x06, "LD "+name+", n8", 2, ldCost, target, immU8)
	}

	// Indirect accumulator loads and stores.
	def(t, 0x02, "LD [BC], A", 1, 8, addrReg(RegBC), immReg(RegA))
	def(t, 0x12, "LD [DE], A", 1, 8, addrReg(RegDE), immReg(RegA))
	def(t, 0x22, "LD [HL+], A", 1, 8, addrReg(RegHL), immReg(RegA))
	def(t, 0x32, "LD [HL-], A", 1, 8, addrReg(RegHL), immReg(RegA))
	def(t, 0x0A, "LD A, [BC]", 1, 8, immReg(RegA), addrReg(RegBC))
	def(t, 0x1A, "LD A, [DE]", 1, 8, immReg(RegA), addrReg(RegDE))
	def(t, 0x2A, "LD A, [HL+]", 1, 8, immReg(RegA), addrReg(RegHL))
	def(t, 0x3A, "LD A, [HL-]", 1, 8, immReg(RegA), addrReg(RegHL))

	def(t, 0x08, "LD [a16], SP", 3, 20, addrU16, immReg(RegSP))

	// Accumulator rotates. These never touch the zero flag.
	def(t, 0x07, "RLCA", 1, 4, immReg(RegA), modeNone)
	def(t, 0x0F, "RRCA", 1, 4, immReg(RegA), modeNone)
	def(t, 0x17, "RLA", 1, 4, immReg(RegA), modeNone)
	def(t, 0x1F, "RRA", 1, 4, immReg(RegA), modeNone)

	def(t, 0x27, "DAA", 1, 4, immReg(RegA), modeNone)
	def(t, 0x2F, "CPL", 1, 4, immReg(RegA), modeNone)
	def(t, 0x37, "SCF", 1, 4, modeNone, modeNone)
	def(t, 0x3F, "CCF", 1, 4, modeNone, modeNone)

	// Relative jumps. Conditional costs are for the untaken path.
	def(t, 0x18, "JR e8", 2, 12, modeNone, immI8)
	for i := byte(0); i < 4; i++ {
		def(t, 0x20+i*8, "JR "+condNames[i]+", e8", 2, 8, modeNone, immI8)
	}

	// LD r8, r8 block (0x76 in the middle is HALT, defined above).
	for code := 0x40; code <= 0x7F; code++ {
		if code == 0x76 {
			continue
		}
		dst := (code - 0x40) >> 3
		src := code & 7
		cost := 4
		if dst == 6 || src == 6 {
			cost = 8
		}
		asm := "LD " + blockTargetNames[dst] + ", " + blockTargetNames[src]
		def(t, byte(code), asm, 1, cost, blockTargets[dst], blockTargets[src])
	}

	// ALU block, plus the immediate-operand forms at 0xC6..0xFE.
	aluNames := [8]string{"ADD A, ", "ADC A, ", "SUB A, ", "SBC A, ", "AND A, ", "XOR A, ", "OR A, ", "CP A, "}
	for op := 0; op < 8; op++ {
		for i := 0; i < 8; i++ {
			code := byte(0x80 + op<<3 + i)
			cost := 4
			if i == 6 {
				cost = 8
			}
			def(t, code, aluNames[op]+blockTargetNames[i], 1, cost, immReg(RegA), blockTargets[i])
		}
		def(t, byte(0xC6+op*8), aluNames[op]+"n8", 2, 8, immReg(RegA), immU8)
	}

	// Returns, jumps and calls.
	def(t, 0xC9, "RET", 1, 16, modeNone, modeNone)
	def(t, 0xD9, "RETI", 1, 16, modeNone, modeNone)
	def(t, 0xC3, "JP a16", 3, 16, addrU16, modeNone)
	def(t, 0xE9, "JP HL", 1, 4, addrReg(RegHL), modeNone)
	def(t, 0xCD, "CALL a16", 3, 24, addrU16, modeNone)
	for i := byte(0); i < 4; i++ {
		cond := condNames[i]
		def(t, 0xC0+i*8, "RET "+cond, 1, 8, modeNone, modeNone)
		def(t, 0xC2+i*8, "JP "+cond+", a16", 3, 12, addrU16, modeNone)
		def(t, 0xC4+i*8, "CALL "+cond+", a16", 3, 12, addrU16, modeNone)
	}
	for i := byte(0); i < 8; i++ {
		def(t, 0xC7+i*8, fmt.Sprintf("RST $%02X", i*8), 1, 16, modeNone, modeNone)
	}

	// Stack.
	stackPairs := [4]AddressingMode{immReg(RegBC), immReg(RegDE), immReg(RegHL), immReg(RegAF)}
	stackNames := [4]string{"BC", "DE", "HL", "AF"}
	for i := byte(0); i < 4; i++ {
		def(t, 0xC1+i*0x10, "POP "+stackNames[i], 1, 12, stackPairs[i], modeNone)
		def(t, 0xC5+i*0x10, "PUSH "+stackNames[i], 1, 16, stackPairs[i], modeNone)
	}

	// High-page loads and the remaining accumulator loads.
	def(t, 0xE0, "LDH [a8], A", 2, 12, addrHRAM, immReg(RegA))
	def(t, 0xF0, "LDH A, [a8]", 2, 12, immReg(RegA), addrHRAM)
	def(t, 0xE2, "LD [C], A", 1, 8, ioOffset, immReg(RegA))
	def(t, 0xF2, "LD A, [C]", 1, 8, immReg(RegA), ioOffset)
	def(t, 0xEA, "LD [a16], A", 3, 16, addrU16, immReg(RegA))
	def(t, 0xFA, "LD A, [a16]", 3, 16, immReg(RegA), addrU16)

	// Stack pointer arithmetic.
	def(t, 0xE8, "ADD SP, e8", 2, 16, immReg(RegSP), immI8)
	def(t, 0xF8, "LD HL, SP+e8", 2, 12, immReg(RegHL), immI8)
	def(t, 0xF9, "LD SP, HL", 1, 8, immReg(RegSP), immReg(RegHL))

	// Interrupt master enable toggles.
	def(t, 0xF3, "DI", 1, 4, modeNone, modeNone)
	def(t, 0xFB, "EI", 1, 4, modeNone, modeNone)
}

func buildPrefixedTable() {
	t := &prefixedOpcodes

	// Rotates, shifts and SWAP: 0x00-0x3F.
	groupNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	for group := 0; group < 8; group++ {
		for i := 0; i < 8; i++ {
			code := byte(group<<3 | i)
			cost := 8
			if i == 6 {
				cost = 16
			}
			asm := groupNames[group] + " " + blockTargetNames[i]
			def(t, code, asm, 2, cost, blockTargets[i], modeNone)
		}
	}

	// BIT / RES / SET: 0x40-0xFF.
	for b := 0; b < 8; b++ {
		for i := 0; i < 8; i++ {
			target, name := blockTargets[i], blockTargetNames[i]
			bitCost, rwCost := 8, 8
			if i == 6 {
				bitCost, rwCost = 12, 16
			}
			def(t, byte(0x40|b<<3|i), fmt.Sprintf("BIT %d, %s", b, name), 2, bitCost, modeNone, target)
			def(t, byte(0x80|b<<3|i), fmt.Sprintf("RES %d, %s", b, name), 2, rwCost, target, modeNone)
			def(t, byte(0xC0|b<<3|i), fmt.Sprintf("SET %d, %s", b, name), 2, rwCost, target, modeNone)
		}
	}
}
