package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrixgo/go-dmg/dmg/bit"
)

// ramBus is a flat 64 KiB bus with none of the region semantics, enough to
// exercise the execution engine in isolation.
type ramBus struct {
	mem [0x10000]byte
}

func (b *ramBus) Read(address uint16) byte         { return b.mem[address] }
func (b *ramBus) Write(address uint16, value byte) { b.mem[address] = value }

func (b *ramBus) ReadU16(address uint16) uint16 {
	return bit.Combine(b.mem[address+1], b.mem[address])
}

func (b *ramBus) WriteU16(address uint16, value uint16) {
	b.mem[address] = bit.Low(value)
	b.mem[address+1] = bit.High(value)
}

func newTestCPU(program ...byte) (*CPU, *ramBus) {
	bus := &ramBus{}
	copy(bus.mem[:], program)
	return New(bus), bus
}

func TestCPU_stack(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.sp = 0xFFFE

	cpu.pushStack(0x0102)

	assert.Equal(t, uint16(0xFFFC), cpu.sp)
	assert.Equal(t, byte(0x01), bus.mem[0xFFFD], "high byte written first, above the low byte")
	assert.Equal(t, byte(0x02), bus.mem[0xFFFC])

	popped := cpu.popStack()

	assert.Equal(t, uint16(0x0102), popped)
	assert.Equal(t, uint16(0xFFFE), cpu.sp)
}

func TestCPU_executeNext_bootSequence(t *testing.T) {
	// The first instructions of the DMG boot ROM: set up the stack, clear A,
	// point HL at the top of VRAM.
	cpu, _ := newTestCPU(
		0x31, 0xFE, 0xFF, // LD SP, 0xFFFE
		0xAF,             // XOR A, A
		0x21, 0xFF, 0x9F, // LD HL, 0x9FFF
	)

	total := 0
	for i := 0; i < 3; i++ {
		cycles, err := cpu.ExecuteNext()
		assert.NoError(t, err)
		total += cycles
	}

	assert.Equal(t, uint16(0xFFFE), cpu.sp)
	assert.Equal(t, uint8(0), cpu.reg.A)
	assert.True(t, cpu.reg.FlagSet(ZeroFlag))
	assert.Equal(t, uint16(0x9FFF), cpu.reg.HL())
	assert.Equal(t, uint16(0x0007), cpu.pc)
	assert.Equal(t, 28, total)
}

func TestCPU_executeNext_unrecognizedOpcode(t *testing.T) {
	cpu, _ := newTestCPU(0xD3)

	_, err := cpu.ExecuteNext()

	var unrecognized *UnrecognizedOpcodeError
	assert.ErrorAs(t, err, &unrecognized)
	assert.Equal(t, byte(0xD3), unrecognized.Code)
	assert.False(t, unrecognized.Prefixed)
	assert.Equal(t, uint16(0), cpu.pc, "PC does not advance past a decode failure")
}

func TestCPU_executeNext_halted(t *testing.T) {
	cpu, _ := newTestCPU(0x76, 0x04) // HALT; INC B

	cycles, err := cpu.ExecuteNext()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.True(t, cpu.Halted())

	// Further steps idle without fetching.
	cycles, err = cpu.ExecuteNext()
	assert.NoError(t, err)
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(1), cpu.pc)
	assert.Equal(t, uint8(0), cpu.reg.B)
}

func TestCPU_executeNext_prefixedDecode(t *testing.T) {
	cpu, _ := newTestCPU(0xCB, 0x37) // SWAP A
	cpu.reg.A = 0xF0

	cycles, err := cpu.ExecuteNext()

	assert.NoError(t, err)
	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(0x0F), cpu.reg.A)
	assert.Equal(t, uint16(2), cpu.pc)
}

// Every defined opcode must reach a handler. Executing each one against a
// flat RAM bus flushes out dispatch holes without asserting semantics.
func TestCPU_dispatchCoversAllDefinedOpcodes(t *testing.T) {
	for code := 0; code < 256; code++ {
		op := normalOpcodes[code]
		if !op.defined {
			continue
		}
		cpu, _ := newTestCPU(byte(code), 0x00, 0x00)
		cpu.sp = 0xFFFE

		_, err := cpu.ExecuteNext()

		var notImplemented *NotImplementedError
		assert.False(t, errors.As(err, &notImplemented), "opcode 0x%02X (%s) has no handler", code, op.Asm)
		assert.NoError(t, err, "opcode 0x%02X (%s)", code, op.Asm)
	}

	for code := 0; code < 256; code++ {
		cpu, _ := newTestCPU(0xCB, byte(code))
		_, err := cpu.ExecuteNext()
		assert.NoError(t, err, "prefixed opcode 0x%02X (%s)", code, prefixedOpcodes[code].Asm)
	}
}

func TestCPU_snapshotRestore(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.Restore(Snapshot{
		A: 0x12, B: 0x34, C: 0x56, D: 0x78,
		E: 0x9A, F: 0xBF, H: 0xDE, L: 0xF0,
		SP: 0xFFFE, PC: 0x0100,
	})

	s := cpu.Snapshot()

	assert.Equal(t, uint8(0x12), s.A)
	assert.Equal(t, uint8(0xB0), s.F, "low nibble of F is discarded")
	assert.Equal(t, uint16(0xFFFE), s.SP)
	assert.Equal(t, uint16(0x0100), s.PC)
	assert.Equal(t, "Z-HC", s.FlagString())
}

func TestCPU_getData(t *testing.T) {
	cpu, bus := newTestCPU(0x00, 0x42, 0x1F)
	cpu.reg.SetHL(0xC123)
	cpu.reg.C = 0x44
	bus.mem[0xC123] = 0x99

	testCases := []struct {
		desc string
		mode AddressingMode
		want operand
	}{
		{desc: "register value", mode: immReg(RegA), want: operand{kind: operandU8}},
		{desc: "register pair value", mode: immReg(RegHL), want: operand{kind: operandU16, u16: 0xC123}},
		{desc: "register pair address", mode: addrReg(RegHL), want: operand{kind: operandAddr, address: 0xC123}},
		{desc: "immediate byte", mode: immU8, want: operand{kind: operandU8, u8: 0x42}},
		{desc: "immediate signed byte", mode: immI8, want: operand{kind: operandI8, i8: 0x42}},
		{desc: "immediate word", mode: immU16, want: operand{kind: operandU16, u16: 0x1F42}},
		{desc: "address word", mode: addrU16, want: operand{kind: operandAddr, address: 0x1F42}},
		{desc: "high ram address", mode: addrHRAM, want: operand{kind: operandAddr, address: 0xFF42}},
		{desc: "io offset address", mode: ioOffset, want: operand{kind: operandAddr, address: 0xFF44}},
		{desc: "no operand", mode: modeNone, want: operand{kind: operandNone}},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := cpu.getData(tC.mode)
			assert.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
}
