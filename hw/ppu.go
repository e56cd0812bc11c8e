package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwdefs"
	"nescore/hw/hwio"
	"nescore/ines"
)

const (
	NumScanlines = hwdefs.NumScanlines
	NumCycles    = hwdefs.NumCycles
)

const (
	// PPUCTRL bits
	// $2000

	// Nametable selection mask
	// (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ntselect = 0b11

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 2

	// Sprite pattern table address for 8x8 sprites
	// (0: $0000; 1: $1000; ignored in 8x16 mode)
	spriteAddr = 3

	// Background pattern table address (0: $0000; 1: $1000)
	backgroundAddr = 4

	// Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
	spriteSize = 5

	// Generate an NMI at the start of the
	// vertical blanking interval (0: off; 1: on)
	nmi = 7
)

const (
	// PPUMASK bits
	// $2001

	// Greyscale
	// (0: normal color, 1: produce a greyscale display)
	greyscale = 0

	// Show background in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostBg = 1

	// Show sprites in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostSprites = 2

	// Show background
	showBg = 3

	// Show sprites
	showSprites = 4
)

const (
	// PPUSTATUS bits
	// $2002

	// Returns stale PPU bus contents.
	openbusMask = 0b11111

	// Sprite overflow and sprite 0 hit. Neither is computed, they're
	// only cleared at dot 1 of the pre-render line.
	spriteOverflow = 5
	sprite0Hit     = 6

	// Vertical blank has started (0: not in vblank; 1: in vblank).
	// Set at dot 1 of line 241 (the line *after* the post-render
	// line); cleared after reading $2002 and at dot 1 of the
	// pre-render line.
	vblank = 7
)

// A MirroringSource reports how the cartridge wires the nametables.
type MirroringSource interface {
	Mirroring() ines.NTMirroring
}

type PPU struct {
	Bus   *hwio.Table // PPU bus
	Lines *Lines      // NMI output goes there

	// Cartridge nametable wiring. Horizontal mirroring if nil.
	Cart MirroringSource

	Dot      int    // Current dot in scanline (0-340)
	Scanline int    // Current scanline (0-261)
	Frame    uint64 // Number of frames since power up

	// $2000-$2FFF	$1000	Nametables 0 to 3
	// $3000-$3EFF	$0F00	Mirrors of $2000-$2EFF
	NameTables hwio.Device `hwio:"offset=0x2000,size=0x1F00,rcb,pcb,wcb"`

	// $3F00-$3F1F	$0020	Palette RAM indexes
	// $3F20-$3FFF	$00E0	Mirrors of $3F00-$3F1F
	Palettes hwio.Device `hwio:"offset=0x3F00,size=0x100,rcb,pcb,wcb"`

	// CPU-exposed memory-mapped PPU registers
	// mapped from $2000 to $2007, mirrored up to $3fff.
	// Reading a write-only register returns the I/O latch.
	PPUCTRL   hwio.Reg8 `hwio:"bank=1,offset=0x0,rcb=ReadLatch,pcb=PeekLatch,wcb"`
	PPUMASK   hwio.Reg8 `hwio:"bank=1,offset=0x1,rcb=ReadLatch,pcb=PeekLatch,wcb"`
	PPUSTATUS hwio.Reg8 `hwio:"bank=1,offset=0x2,rcb,pcb,wcb"`
	OAMADDR   hwio.Reg8 `hwio:"bank=1,offset=0x3,rcb=ReadLatch,pcb=PeekLatch,wcb"`
	OAMDATA   hwio.Reg8 `hwio:"bank=1,offset=0x4,rcb,pcb,wcb"`
	PPUSCROLL hwio.Reg8 `hwio:"bank=1,offset=0x5,rcb=ReadLatch,pcb=PeekLatch,wcb"`
	PPUADDR   hwio.Reg8 `hwio:"bank=1,offset=0x6,rcb=ReadLatch,pcb=PeekLatch,wcb"`
	PPUDATA   hwio.Reg8 `hwio:"bank=1,offset=0x7,rcb,pcb,wcb"`

	nametables [0x1000]uint8 // 4 nametables, 2 are used unless four-screen
	palette    [32]uint8
	oam        [256]uint8

	// I/O latch, last value written to (or read from) a register.
	latch uint8

	// VRAM read/write
	vramAddr    loopy // v
	vramTmp     loopy // t
	finex       uint8 // x
	writeLatch  bool  // w
	ppuDataRbuf uint8

	bg      bgPipeline
	sprites spriteLine

	frames     [2]Frame
	back       int // index of the frame being rendered
	frameReady bool
}

func NewPPU(lines *Lines) *PPU {
	if lines == nil {
		lines = new(Lines)
	}
	return &PPU{
		Bus:   hwio.NewTable("ppu"),
		Lines: lines,
	}
}

func (p *PPU) InitBus() {
	hwio.MustInitRegs(p)
	p.Bus.MapBank(0x0000, p, 0)
}

// Reset resets the PPU. A hard reset also clears the memories.
func (p *PPU) Reset(soft bool) {
	p.PPUCTRL.Value = 0
	p.PPUMASK.Value = 0
	p.writeLatch = false
	p.ppuDataRbuf = 0
	p.finex = 0
	p.vramTmp = 0
	p.updateNMI()

	if soft {
		return
	}

	p.PPUSTATUS.Value = 0
	p.OAMADDR.Value = 0
	p.vramAddr = 0
	p.latch = 0
	p.Dot = 0
	p.Scanline = 0
	p.Frame = 0
	p.bg = bgPipeline{}
	p.sprites = spriteLine{}
	p.nametables = [0x1000]uint8{}
	p.palette = [32]uint8{}
	for i := range p.oam {
		p.oam[i] = 0xFF
	}
	p.frames = [2]Frame{}
	p.back = 0
	p.frameReady = false
}

func (p *PPU) ctrl(bit uint) bool { return hwio.GetBit8(p.PPUCTRL.Value, bit) }
func (p *PPU) mask(bit uint) bool { return hwio.GetBit8(p.PPUMASK.Value, bit) }

func (p *PPU) renderingEnabled() bool {
	return p.mask(showBg) || p.mask(showSprites)
}

// updateNMI drives the NMI output: it's high while both the vblank flag and
// the NMI enable bit of PPUCTRL are set.
func (p *PPU) updateNMI() {
	p.Lines.SetNMI(p.ctrl(nmi) && hwio.GetBit8(p.PPUSTATUS.Value, vblank))
}

// Tick runs the PPU for one dot.
func (p *PPU) Tick() {
	const (
		postRenderLine = 240
		vblankLine     = 241
		preRenderLine  = 261
	)

	visibleLine := p.Scanline < postRenderLine
	preLine := p.Scanline == preRenderLine

	if p.renderingEnabled() {
		if visibleLine || preLine {
			p.renderLine(visibleLine)
		}
	} else if visibleLine && p.Dot >= 1 && p.Dot <= 256 {
		p.output(p.Dot-1, p.Scanline, 0)
	}

	switch {
	case p.Scanline == vblankLine && p.Dot == 1:
		hwio.SetBit8(&p.PPUSTATUS.Value, vblank)
		p.updateNMI()
		p.swapFrames()
	case preLine && p.Dot == 1:
		const mask = 1<<vblank | 1<<sprite0Hit | 1<<spriteOverflow
		hwio.ClearBits8(&p.PPUSTATUS.Value, mask)
		p.updateNMI()
	}

	p.Dot++
	if p.Dot == NumCycles {
		p.Dot = 0
		p.Scanline++
		if p.Scanline == NumScanlines {
			p.Scanline = 0
			p.Frame++
		}
	}
}

func (p *PPU) swapFrames() {
	p.back ^= 1
	p.frameReady = true
	log.ModPPU.DebugZ("frame complete").Uint64("frame", p.Frame).End()
}

// TakeFrame reports whether a frame has been completed since the last call.
func (p *PPU) TakeFrame() bool {
	ready := p.frameReady
	p.frameReady = false
	return ready
}

// FrontFrame returns the last completed frame. It's only modified at the
// next vblank.
func (p *PPU) FrontFrame() *Frame {
	return &p.frames[p.back^1]
}

func (p *PPU) output(x, y int, color uint8) {
	c := p.palette[paletteIndex(uint16(color))] & 0x3F
	if p.mask(greyscale) {
		c &= 0x30
	}
	p.frames[p.back][y*ScreenWidth+x] = c
}

// OAM returns the sprite attribute memory.
func (p *PPU) OAM() *[256]uint8 { return &p.oam }

func (p *PPU) writeOAM(val uint8) {
	p.oam[p.OAMADDR.Value] = val
	p.OAMADDR.Value++
}
