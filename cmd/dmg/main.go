package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	dmg "github.com/dotmatrixgo/go-dmg"
	"github.com/dotmatrixgo/go-dmg/dmg/display"
	"github.com/dotmatrixgo/go-dmg/dmg/harness"
	"github.com/dotmatrixgo/go-dmg/dmg/video"
)

const frameTime = time.Second / 60

func main() {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A cycle-stepped DMG emulation core"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot-rom",
			Usage: "Path to a 256-byte boot ROM image",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, sdl or none",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a display (same as --backend none)",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.StringFlag{
			Name:  "vectors",
			Usage: "Run a golden single-step vector file instead of a ROM",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction",
		},
		cli.BoolFlag{
			Name:  "dump-on-crash",
			Usage: "Write a crash log with registers and memory on fatal errors",
		},
		cli.BoolFlag{
			Name:  "green",
			Usage: "Use the green LCD palette instead of greyscale",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("emulator stopped", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") || c.Bool("trace") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	config := dmg.Config{
		Trace:       c.Bool("trace"),
		DumpOnCrash: c.Bool("dump-on-crash"),
	}
	if c.Bool("green") {
		config.Palette = video.GreenPalette
	}

	if path := c.String("vectors"); path != "" {
		return runVectors(config, path)
	}

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	sys := dmg.New(config)
	if path := c.String("boot-rom"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading boot ROM: %w", err)
		}
		sys.LoadBootROM(data)
	}
	if err := sys.LoadCartridgeFile(romPath); err != nil {
		return err
	}

	if c.Bool("headless") || c.String("backend") == "none" {
		return runHeadless(sys, c.Int("frames"))
	}
	return runDisplay(sys, c.String("backend"))
}

func runVectors(config dmg.Config, path string) error {
	cases, err := harness.LoadCases(path)
	if err != nil {
		return err
	}

	sys := dmg.New(config)
	if err := harness.RunAll(sys, cases); err != nil {
		return err
	}
	slog.Info("vectors passed", "file", path, "cases", len(cases))
	return nil
}

func runHeadless(sys *dmg.System, frames int) error {
	if frames <= 0 {
		return errors.New("headless mode requires --frames with a positive value")
	}
	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := sys.RunFrame(); err != nil {
			return err
		}
	}
	slog.Info("headless run complete", "frames", frames, "elapsed", time.Since(start))
	return nil
}

func runDisplay(sys *dmg.System, backend string) error {
	var out display.Display
	switch backend {
	case "terminal":
		out = display.NewTerminal()
	case "sdl":
		out = display.NewWindow("dmg")
	default:
		return fmt.Errorf("unknown display backend %q", backend)
	}

	if err := out.Init(); err != nil {
		return err
	}
	defer out.Close()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for !out.Closed() {
		if err := sys.RunFrame(); err != nil {
			return err
		}
		if err := out.Present(sys.Framebuffer()); err != nil {
			return err
		}
		<-ticker.C
	}
	return nil
}
