package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeROM(cartridgeType, romSizeCode byte) []byte {
	data := make([]byte, 0x8000)
	copy(data[titleAddress:], "TESTCART")
	data[cartridgeTypeAddress] = cartridgeType
	data[romSizeAddress] = romSizeCode
	return data
}

func TestNew_headerDecoding(t *testing.T) {
	c, err := New(makeROM(0x00, 0x00))

	assert.NoError(t, err)
	assert.Equal(t, "TESTCART", c.Title())
	assert.True(t, c.GBCompatible())
	assert.Equal(t, NoMBC, c.MBCType())
	assert.Equal(t, 2, c.ROMBankCount())
	assert.False(t, c.HasRAM())
	assert.False(t, c.HasBattery())
}

func TestNew_rejectsTruncatedImage(t *testing.T) {
	_, err := New(make([]byte, 0x100))
	assert.Error(t, err)
}

func TestNew_cgbOnlyIsIncompatible(t *testing.T) {
	data := makeROM(0x00, 0x00)
	data[cgbFlagAddress] = 0xC0

	c, err := New(data)

	assert.NoError(t, err)
	assert.False(t, c.GBCompatible())
}

func TestNew_mbcTypes(t *testing.T) {
	testCases := []struct {
		desc    string
		code    byte
		mbc     MBCType
		ram     bool
		battery bool
	}{
		{desc: "ROM only", code: 0x00, mbc: NoMBC},
		{desc: "MBC1", code: 0x01, mbc: MBC1},
		{desc: "MBC1 with RAM", code: 0x02, mbc: MBC1, ram: true},
		{desc: "MBC1 with battery", code: 0x03, mbc: MBC1, ram: true, battery: true},
		{desc: "MBC3", code: 0x13, mbc: MBC3},
		{desc: "MBC5", code: 0x19, mbc: MBC5},
		{desc: "unknown controller", code: 0xF0, mbc: MBCUnknown},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			c, err := New(makeROM(tC.code, 0x00))

			assert.NoError(t, err)
			assert.Equal(t, tC.mbc, c.MBCType())
			assert.Equal(t, tC.ram, c.HasRAM())
			assert.Equal(t, tC.battery, c.HasBattery())
		})
	}
}

func TestNew_romBankCounts(t *testing.T) {
	testCases := []struct {
		code  byte
		banks int
	}{
		{code: 0x00, banks: 2},
		{code: 0x01, banks: 4},
		{code: 0x05, banks: 64},
		{code: 0x52, banks: 72},
		{code: 0x54, banks: 96},
	}
	for _, tC := range testCases {
		c, err := New(makeROM(0x01, tC.code))

		assert.NoError(t, err)
		assert.Equal(t, tC.banks, c.ROMBankCount(), "size code 0x%02X", tC.code)
	}
}

func TestNew_invalidROMSizeCode(t *testing.T) {
	_, err := New(makeROM(0x00, 0x60))
	assert.Error(t, err)
}

func TestBytes_returnsACopy(t *testing.T) {
	data := makeROM(0x00, 0x00)
	c, err := New(data)
	assert.NoError(t, err)

	data[titleAddress] = 'X'

	assert.Equal(t, "TESTCART", c.Title())
	assert.Equal(t, byte('T'), c.Bytes()[titleAddress])
}
