// Package debug renders crash diagnostics: the full register state and an
// annotated dump of the 64KB address space.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dotmatrixgo/go-dmg/dmg/cpu"
	"github.com/dotmatrixgo/go-dmg/dmg/memory"
)

// region banners printed ahead of the row containing their start address.
var banners = map[int]string{
	0x0000: "16KiB ROM bank 00 | boot ROM $0000-$00FF",
	0x4000: "16KiB ROM bank 01-NN",
	0x8000: "VRAM",
	0xA000: "8KiB external RAM",
	0xC000: "8KiB WRAM",
	0xE000: "echo RAM",
	0xFE00: "object attribute memory (OAM)",
	0xFEA0: "not usable",
	0xFF00: "I/O registers",
	0xFF80: "high RAM / HRAM",
}

// DumpState writes the register snapshot followed by a full hex dump of the
// address space: 32 bytes per row, grouped in blocks of 8.
func DumpState(w io.Writer, s cpu.Snapshot, bus *memory.Bus) error {
	if _, err := fmt.Fprintf(w, "CRASH STATE\n%s\n", s); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\nMEMORY DUMP\n------------------------------------"); err != nil {
		return err
	}

	for i := 0; i <= 0xFFFF; i++ {
		if banner, ok := banners[i]; ok {
			if _, err := fmt.Fprintf(w, "\n%s", banner); err != nil {
				return err
			}
		}
		switch {
		case i%32 == 0:
			fmt.Fprintf(w, "\n|%#06x| ", i)
		case i%16 == 0:
			fmt.Fprintf(w, "|%#06x| ", i)
		case i%8 == 0:
			fmt.Fprint(w, " ")
		}
		if _, err := fmt.Fprintf(w, "%02x ", bus.Read(uint16(i))); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteCrashLog dumps the given state into a timestamped file under dir,
// creating the directory if needed. It returns the path of the written file.
func WriteCrashLog(dir string, s cpu.Snapshot, bus *memory.Bus) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := "crash_" + time.Now().Format("2006-01-02_15-04-05") + ".log"
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := DumpState(f, s, bus); err != nil {
		return "", err
	}
	return path, nil
}
