package video

// GBColor is a packed ARGB color value.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFF989898
	DarkGreyColor  GBColor = 0xFF4C4C4C
	BlackColor     GBColor = 0xFF000000
)

// Palette maps the four 2bpp color indexes to output colors. It is supplied
// by the caller and can be swapped at runtime.
type Palette [4]GBColor

// GreyPalette is the default DMG-style palette.
var GreyPalette = Palette{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// GreenPalette approximates the original LCD tint.
var GreenPalette = Palette{0xFF9BBC0F, 0xFF8BAC0F, 0xFF306230, 0xFF0F380F}

const (
	FrameWidth  = 160
	FrameHeight = 144
)

// FrameBuffer is the 160x144 output surface the pixel pipeline writes to.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the standard LCD size.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FrameWidth,
		height: FrameHeight,
		buffer: make([]uint32, FrameWidth*FrameHeight),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Fill paints the whole buffer with a single color.
func (fb *FrameBuffer) Fill(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice returns the backing pixel slice, row-major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}
