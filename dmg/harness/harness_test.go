package harness

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	dmg "github.com/dotmatrixgo/go-dmg"
)

const vectorJSON = `[
  {
    "name": "00 0000",
    "initial": {
      "a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 176, "h": 6, "l": 7,
      "pc": 49152, "sp": 65534,
      "ram": [[49152, 0]]
    },
    "final": {
      "a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 176, "h": 6, "l": 7,
      "pc": 49153, "sp": 65534,
      "ram": [[49152, 0]]
    }
  }
]`

func TestDecodeCases(t *testing.T) {
	cases, err := DecodeCases([]byte(vectorJSON))

	assert.NoError(t, err)
	assert.Len(t, cases, 1)

	want := Case{
		Name: "00 0000",
		Initial: State{
			A: 1, B: 2, C: 3, D: 4, E: 5, F: 176, H: 6, L: 7,
			PC: 0xC000, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0}},
		},
		Final: State{
			A: 1, B: 2, C: 3, D: 4, E: 5, F: 176, H: 6, L: 7,
			PC: 0xC001, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0}},
		},
	}
	if diff := cmp.Diff(want, cases[0]); diff != "" {
		t.Errorf("decoded case mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCases_malformedInput(t *testing.T) {
	_, err := DecodeCases([]byte(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestRun_passingVector(t *testing.T) {
	cases, err := DecodeCases([]byte(vectorJSON))
	assert.NoError(t, err)

	sys := dmg.New(dmg.Config{})

	assert.NoError(t, RunAll(sys, cases))
}

func TestRun_registerMismatchIsReported(t *testing.T) {
	cases, err := DecodeCases([]byte(vectorJSON))
	assert.NoError(t, err)
	cases[0].Final.A = 0x99

	sys := dmg.New(dmg.Config{})
	err = Run(sys, cases[0])

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "00 0000")
}

func TestRun_memoryMismatchIsReported(t *testing.T) {
	// LD [HL], B with a wrong expected memory byte.
	c := Case{
		Name: "70 bad ram",
		Initial: State{
			B: 0x42, H: 0xC1, L: 0x00,
			PC: 0xC000, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0x70}},
		},
		Final: State{
			B: 0x42, H: 0xC1, L: 0x00,
			PC: 0xC001, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0x70}, {0xC100, 0xFF}},
		},
	}

	err := Run(dmg.New(dmg.Config{}), c)
	assert.Error(t, err)
}

func TestRun_storeInstruction(t *testing.T) {
	c := Case{
		Name: "70 0000",
		Initial: State{
			B: 0x42, H: 0xC1, L: 0x00,
			PC: 0xC000, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0x70}},
		},
		Final: State{
			B: 0x42, H: 0xC1, L: 0x00,
			PC: 0xC001, SP: 0xFFFE,
			RAM: [][2]uint16{{0xC000, 0x70}, {0xC100, 0x42}},
		},
	}

	assert.NoError(t, Run(dmg.New(dmg.Config{}), c))
}

func TestDiff_excludesDivider(t *testing.T) {
	sys := dmg.New(dmg.Config{})
	want := State{RAM: [][2]uint16{{0xFF04, 0xAB}}}

	assert.Empty(t, Diff(sys, want), "DIV assertions are skipped")
}
