// Package display renders finished frames to an output device: a terminal,
// an SDL2 window or nothing at all.
package display

import "github.com/dotmatrixgo/go-dmg/dmg/video"

// Display presents frames and reports when the user asked to quit.
type Display interface {
	// Init acquires the output device. Required before the first Present.
	Init() error
	// Present draws one finished frame.
	Present(frame *video.FrameBuffer) error
	// Closed reports whether the user requested shutdown.
	Closed() bool
	// Close releases the output device.
	Close() error
}

// Headless is a Display that discards every frame. It exists for automated
// runs and benchmarks.
type Headless struct{}

func (Headless) Init() error                            { return nil }
func (Headless) Present(frame *video.FrameBuffer) error { return nil }
func (Headless) Closed() bool                           { return false }
func (Headless) Close() error                           { return nil }
