package video

import (
	"github.com/dotmatrixgo/go-dmg/dmg/addr"
	"github.com/dotmatrixgo/go-dmg/dmg/bit"
	"github.com/dotmatrixgo/go-dmg/dmg/memory"
)

// Mode is the PPU scanline phase.
type Mode int

const (
	OAMScan Mode = iota
	DrawingPixels
	HBlank
	VBlank
)

// fetcherState is the background fetcher sub-phase, advanced every 2nd cycle
// while drawing.
type fetcherState int

const (
	getTileNumber fetcherState = iota
	getTileDataLow
	getTileDataHigh
	pushRow
)

const (
	oamScanCycles  = 80
	scanlineCycles = 456
	vblankLine     = 144
	linesPerFrame  = 154

	tileMapWidth = 32
	fifoCapacity = 16
)

// FrameCycles is the T-cycle budget of one complete frame.
const FrameCycles = scanlineCycles * linesPerFrame

// pixelFIFO is a bounded ring of decoded, palette-mapped pixels. The fetcher
// refills it 8 pixels at a time and the output stage drains it one per cycle.
type pixelFIFO struct {
	pixels [fifoCapacity]GBColor
	head   int
	size   int
}

func (f *pixelFIFO) push(color GBColor) {
	f.pixels[(f.head+f.size)%fifoCapacity] = color
	f.size++
}

func (f *pixelFIFO) pop() GBColor {
	color := f.pixels[f.head]
	f.head = (f.head + 1) % fifoCapacity
	f.size--
	return color
}

func (f *pixelFIFO) clear() {
	f.head = 0
	f.size = 0
}

// PPU renders the background layer through a fetcher plus pixel FIFO,
// advancing a mode state machine on the cycle count each CPU step produces.
type PPU struct {
	bus         *memory.Bus
	framebuffer *FrameBuffer
	palette     Palette

	mode   Mode
	cycles int

	fetcher   fetcherState
	fetcherX  uint8
	fetchTick bool

	tileNumber      byte
	tileDataAddress uint16
	tileLow         byte
	tileHigh        byte

	fifo pixelFIFO

	// x is the next pixel column on the active scanline, discard the count
	// of fetched pixels still to drop for the SCX fine scroll.
	x       int
	discard int
}

// New creates a PPU rendering into a fresh frame buffer.
func New(bus *memory.Bus) *PPU {
	p := &PPU{
		bus:         bus,
		framebuffer: NewFrameBuffer(),
		palette:     GreyPalette,
	}
	p.startScanline()
	return p
}

// SetPalette swaps the active color palette.
func (p *PPU) SetPalette(palette Palette) {
	p.palette = palette
}

// Framebuffer returns the render target by reference. It is only a complete
// frame once a full frame's cycle budget has been consumed.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// Mode returns the current scanline phase.
func (p *PPU) Mode() Mode {
	return p.mode
}

// Tick advances the pipeline by the given T-cycle count. When LCDC bit 7 is
// clear the display is off and the pipeline does not advance at all.
func (p *PPU) Tick(cycles int) {
	if !bit.IsSet(7, p.bus.Read(addr.LCDC)) {
		return
	}
	for i := 0; i < cycles; i++ {
		p.step()
	}
}

// step advances the state machine by exactly one T-cycle.
func (p *PPU) step() {
	p.cycles++

	switch p.mode {
	case OAMScan:
		if p.cycles >= oamScanCycles {
			p.mode = DrawingPixels
		}
	case DrawingPixels:
		p.fetchTick = !p.fetchTick
		if p.fetchTick {
			p.advanceFetcher()
		}
		if p.fifo.size > 0 {
			pixel := p.fifo.pop()
			if p.discard > 0 {
				p.discard--
			} else {
				p.framebuffer.SetPixel(uint(p.x), uint(p.bus.Read(addr.LY)), pixel)
				p.x++
				if p.x == FrameWidth {
					p.mode = HBlank
				}
			}
		}
	case HBlank:
		if p.cycles >= scanlineCycles {
			p.advanceLine()
		}
	case VBlank:
		if p.cycles >= scanlineCycles {
			p.cycles = 0
			line := p.bus.Read(addr.LY) + 1
			if line == linesPerFrame {
				p.bus.Write(addr.LY, 0)
				p.startScanline()
				return
			}
			p.bus.Write(addr.LY, line)
		}
	}
}

// advanceLine closes an HBlank scanline: bump LY and either start the next
// visible line or enter the 10-line VBlank period.
func (p *PPU) advanceLine() {
	line := p.bus.Read(addr.LY) + 1
	p.bus.Write(addr.LY, line)
	p.cycles = 0

	if line == vblankLine {
		p.mode = VBlank
		return
	}
	p.startScanline()
}

// startScanline re-arms the fetcher and FIFO for a fresh visible line. The
// coarse scroll seeds the tile map column, the fine scroll (SCX mod 8) is
// paid by discarding that many fetched pixels.
func (p *PPU) startScanline() {
	scx := p.bus.Read(addr.SCX)
	p.mode = OAMScan
	p.cycles = 0
	p.x = 0
	p.fetcher = getTileNumber
	p.fetcherX = scx >> 3
	p.fetchTick = false
	p.discard = int(scx & 7)
	p.fifo.clear()
}

// advanceFetcher runs one fetcher sub-step.
func (p *PPU) advanceFetcher() {
	switch p.fetcher {
	case getTileNumber:
		p.tileNumber = p.bus.Read(p.tileMapAddress())
		p.fetcher = getTileDataLow
	case getTileDataLow:
		p.tileDataAddress = p.tileDataRowAddress()
		p.tileLow = p.bus.Read(p.tileDataAddress)
		p.fetcher = getTileDataHigh
	case getTileDataHigh:
		p.tileHigh = p.bus.Read(p.tileDataAddress + 1)
		p.fetcher = pushRow
	case pushRow:
		// A full row of 8 pixels goes in at once; wait until it fits.
		if p.fifo.size > fifoCapacity-8 {
			return
		}
		for b := 7; b >= 0; b-- {
			index := bit.Value(uint8(b), p.tileHigh)<<1 | bit.Value(uint8(b), p.tileLow)
			p.fifo.push(p.palette[index])
		}
		p.fetcherX = (p.fetcherX + 1) % tileMapWidth
		p.fetcher = getTileNumber
	}
}

// tileMapAddress locates the tile number for the fetcher's current column on
// the scrolled background row. LCDC bit 3 selects the active 32x32 map.
func (p *PPU) tileMapAddress() uint16 {
	base := uint16(addr.TileMap0)
	if bit.IsSet(3, p.bus.Read(addr.LCDC)) {
		base = addr.TileMap1
	}
	y := p.bus.Read(addr.LY) + p.bus.Read(addr.SCY)
	row := uint16(y) >> 3
	return base + row*tileMapWidth + uint16(p.fetcherX)
}

// tileDataRowAddress locates the low plane byte of the current tile's row.
// LCDC bit 4 selects unsigned indexing from 0x8000 or signed from 0x9000.
func (p *PPU) tileDataRowAddress() uint16 {
	y := p.bus.Read(addr.LY) + p.bus.Read(addr.SCY)
	rowOffset := uint16(y%8) * 2

	if bit.IsSet(4, p.bus.Read(addr.LCDC)) {
		return addr.TileDataUnsigned + uint16(p.tileNumber)*16 + rowOffset
	}
	return uint16(int32(addr.TileDataSigned) + int32(int8(p.tileNumber))*16 + int32(rowOffset))
}
