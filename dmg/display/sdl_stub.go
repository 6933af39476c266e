//go:build !sdl2

package display

import (
	"fmt"

	"github.com/dotmatrixgo/go-dmg/dmg/video"
)

// Window stub for builds without SDL2 support.
type Window struct{}

func NewWindow(title string) *Window {
	return &Window{}
}

func (w *Window) Init() error {
	return fmt.Errorf("display: SDL2 window not available, build with -tags sdl2 and install the SDL2 development libraries")
}

func (w *Window) Present(frame *video.FrameBuffer) error {
	return fmt.Errorf("display: SDL2 window not available")
}

func (w *Window) Closed() bool { return false }

func (w *Window) Close() error { return nil }
