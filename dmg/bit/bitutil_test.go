package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint16(0x0001), Combine(0x00, 0x01))
	assert.Equal(t, uint16(0xFF00), Combine(0xFF, 0x00))
}

func TestHighLow(t *testing.T) {
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
}

func TestIsSet(t *testing.T) {
	assert.True(t, IsSet(0, 0x01))
	assert.True(t, IsSet(7, 0x80))
	assert.False(t, IsSet(3, 0xF7))
}

func TestSetClear(t *testing.T) {
	assert.Equal(t, uint8(0x81), Set(7, 0x01))
	assert.Equal(t, uint8(0x01), Clear(7, 0x81))
	assert.Equal(t, uint8(0x81), Set(0, 0x81))
}

func TestValue(t *testing.T) {
	assert.Equal(t, uint8(1), Value(4, 0x10))
	assert.Equal(t, uint8(0), Value(4, 0xEF))
}
