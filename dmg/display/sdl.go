//go:build sdl2

package display

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/dotmatrixgo/go-dmg/dmg/video"
)

const pixelScale = 4

// Window renders frames into an SDL2 window. Building it requires the SDL2
// development libraries and the sdl2 build tag; default builds get the stub.
type Window struct {
	title    string
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	closed   bool
	pixels   []byte
}

// NewWindow creates an SDL2 display. Call Init before presenting.
func NewWindow(title string) *Window {
	return &Window{title: title}
}

func (w *Window) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("display: initializing SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		w.title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FrameWidth*pixelScale,
		video.FrameHeight*pixelScale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("display: creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("display: creating renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FrameWidth,
		video.FrameHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("display: creating texture: %w", err)
	}

	w.window = window
	w.renderer = renderer
	w.texture = texture
	w.pixels = make([]byte, video.FrameWidth*video.FrameHeight*4)
	return nil
}

func (w *Window) Present(frame *video.FrameBuffer) error {
	w.pollEvents()
	if w.closed {
		return nil
	}

	for i, pixel := range frame.ToSlice() {
		// ARGB8888 on a little-endian host stores BGRA byte order.
		w.pixels[i*4] = byte(pixel)
		w.pixels[i*4+1] = byte(pixel >> 8)
		w.pixels[i*4+2] = byte(pixel >> 16)
		w.pixels[i*4+3] = byte(pixel >> 24)
	}

	if err := w.texture.Update(nil, unsafe.Pointer(&w.pixels[0]), video.FrameWidth*4); err != nil {
		return fmt.Errorf("display: updating texture: %w", err)
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("display: copying texture: %w", err)
	}
	w.renderer.Present()
	return nil
}

func (w *Window) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			w.closed = true
		case *sdl.KeyboardEvent:
			if ev.Type == sdl.KEYDOWN && ev.Keysym.Sym == sdl.K_ESCAPE {
				w.closed = true
			}
		}
	}
}

func (w *Window) Closed() bool {
	return w.closed
}

func (w *Window) Close() error {
	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	sdl.Quit()
	return nil
}
