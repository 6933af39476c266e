// Package harness runs golden single-step vectors against the emulation
// core: each case sets up a full register and sparse memory state, executes
// exactly one instruction and checks the resulting state.
package harness

import (
	"fmt"
	"os"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"

	dmg "github.com/dotmatrixgo/go-dmg"
	"github.com/dotmatrixgo/go-dmg/dmg/addr"
	"github.com/dotmatrixgo/go-dmg/dmg/cpu"
)

// State is one side of a single-step vector: the eight registers, SP, PC and
// a sparse list of (address, byte) memory pairs.
type State struct {
	A, B, C, D, E, F, H, L uint8
	PC, SP                 uint16
	RAM                    [][2]uint16
}

// Case is a named single-instruction vector.
type Case struct {
	Name    string
	Initial State
	Final   State
}

// DecodeCases parses a vector file: a JSON array of objects with "name",
// "initial" and "final" keys.
func DecodeCases(data []byte) ([]Case, error) {
	var cases []Case

	d := jx.DecodeBytes(data)
	err := d.Arr(func(d *jx.Decoder) error {
		var c Case
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				name, err := d.Str()
				c.Name = name
				return err
			case "initial":
				state, err := decodeState(d)
				c.Initial = state
				return err
			case "final":
				state, err := decodeState(d)
				c.Final = state
				return err
			default:
				return d.Skip()
			}
		})
		if err != nil {
			return err
		}
		cases = append(cases, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("harness: decoding vectors: %w", err)
	}
	return cases, nil
}

// LoadCases reads and parses a vector file from disk.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeCases(data)
}

func decodeState(d *jx.Decoder) (State, error) {
	var s State
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "a", "b", "c", "d", "e", "f", "h", "l":
			v, err := d.UInt8()
			if err != nil {
				return err
			}
			switch key {
			case "a":
				s.A = v
			case "b":
				s.B = v
			case "c":
				s.C = v
			case "d":
				s.D = v
			case "e":
				s.E = v
			case "f":
				s.F = v
			case "h":
				s.H = v
			case "l":
				s.L = v
			}
			return nil
		case "pc":
			v, err := d.UInt16()
			s.PC = v
			return err
		case "sp":
			v, err := d.UInt16()
			s.SP = v
			return err
		case "ram":
			return d.Arr(func(d *jx.Decoder) error {
				var pair [2]uint16
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					if i > 1 {
						return fmt.Errorf("ram pair has more than 2 elements")
					}
					v, err := d.UInt16()
					pair[i] = v
					i++
					return err
				})
				if err != nil {
					return err
				}
				s.RAM = append(s.RAM, pair)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return s, err
}

// Apply injects a vector state into the system: registers through the CPU
// snapshot, memory pairs directly into backing storage so region side
// effects do not fire during setup.
func Apply(sys *dmg.System, s State) {
	sys.CPU().Restore(cpu.Snapshot{
		A: s.A, B: s.B, C: s.C, D: s.D,
		E: s.E, F: s.F, H: s.H, L: s.L,
		SP: s.SP, PC: s.PC,
	})
	for _, pair := range s.RAM {
		sys.Bus().Poke(pair[0], byte(pair[1]))
	}
}

// Diff compares the system state against an expected vector state and
// returns a human readable difference, or "" on a match. DIV is excluded
// from memory assertions because the divider advances independently of the
// instruction under test.
func Diff(sys *dmg.System, want State) string {
	snapshot := sys.CPU().Snapshot()
	got := State{
		A: snapshot.A, B: snapshot.B, C: snapshot.C, D: snapshot.D,
		E: snapshot.E, F: snapshot.F, H: snapshot.H, L: snapshot.L,
		SP: snapshot.SP, PC: snapshot.PC,
	}

	expected := want
	expected.RAM = nil
	for _, pair := range want.RAM {
		if pair[0] == addr.DIV {
			continue
		}
		expected.RAM = append(expected.RAM, pair)
		got.RAM = append(got.RAM, [2]uint16{pair[0], uint16(sys.Bus().Peek(pair[0]))})
	}

	return cmp.Diff(expected, got)
}

// Run executes one case: load the initial state, step a single instruction,
// check the final state. The returned error carries the case name.
func Run(sys *dmg.System, c Case) error {
	Apply(sys, c.Initial)

	if _, err := sys.CPU().ExecuteNext(); err != nil {
		return fmt.Errorf("harness: %s: %w", c.Name, err)
	}

	if diff := Diff(sys, c.Final); diff != "" {
		return fmt.Errorf("harness: %s: state mismatch (-want +got):\n%s", c.Name, diff)
	}
	return nil
}

// RunAll executes every case against a fresh pass over the same system and
// reports the first failure.
func RunAll(sys *dmg.System, cases []Case) error {
	for _, c := range cases {
		if err := Run(sys, c); err != nil {
			return err
		}
	}
	return nil
}
