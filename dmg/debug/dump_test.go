package debug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrixgo/go-dmg/dmg/cpu"
	"github.com/dotmatrixgo/go-dmg/dmg/memory"
)

func TestDumpState(t *testing.T) {
	bus := memory.New()
	bus.Write(0xC000, 0xAB)
	s := cpu.Snapshot{A: 0x01, F: 0x80, SP: 0xFFFE, PC: 0x0150}

	var out strings.Builder
	err := DumpState(&out, s, bus)
	assert.NoError(t, err)

	dump := out.String()
	assert.Contains(t, dump, "A=01 F=Z---")
	assert.Contains(t, dump, "SP=FFFE PC=0150")
	assert.Contains(t, dump, "VRAM")
	assert.Contains(t, dump, "high RAM / HRAM")
	assert.Contains(t, dump, "|0xc000| ab")
}

func TestWriteCrashLog(t *testing.T) {
	bus := memory.New()
	dir := t.TempDir()

	path, err := WriteCrashLog(dir, cpu.Snapshot{}, bus)
	assert.NoError(t, err)
	assert.FileExists(t, path)
}
