package display

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dotmatrixgo/go-dmg/dmg/video"
)

// Terminal renders frames into a tcell screen. Each character cell carries
// two vertically stacked pixels drawn with the upper half block rune, so the
// 160x144 frame fits in a 160x72 cell area.
type Terminal struct {
	screen tcell.Screen
	closed bool
}

// NewTerminal creates a terminal display. Call Init before presenting.
func NewTerminal() *Terminal {
	return &Terminal{}
}

func (t *Terminal) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("display: creating terminal screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("display: initializing terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()
	t.screen = screen
	return nil
}

func (t *Terminal) Present(frame *video.FrameBuffer) error {
	t.pollEvents()
	if t.closed {
		return nil
	}

	for y := 0; y < video.FrameHeight; y += 2 {
		for x := 0; x < video.FrameWidth; x++ {
			top := toTCellColor(frame.GetPixel(uint(x), uint(y)))
			bottom := tcell.ColorBlack
			if y+1 < video.FrameHeight {
				bottom = toTCellColor(frame.GetPixel(uint(x), uint(y+1)))
			}
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
	t.screen.Show()
	return nil
}

func (t *Terminal) pollEvents() {
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				t.closed = true
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *Terminal) Closed() bool {
	return t.closed
}

func (t *Terminal) Close() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	return nil
}

func toTCellColor(pixel uint32) tcell.Color {
	r := int32(pixel >> 16 & 0xFF)
	g := int32(pixel >> 8 & 0xFF)
	b := int32(pixel & 0xFF)
	return tcell.NewRGBColor(r, g, b)
}
