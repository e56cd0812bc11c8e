package hw

// bgPipeline holds the background tile fetch latches and shift registers.
type bgPipeline struct {
	ntByte   uint8
	atByte   uint8 // palette number, pre-shifted to bits 2-3
	lowTile  uint8
	highTile uint8

	// 2 tiles worth of 4-bit pixels (2 bits palette, 2 bits pattern), the
	// high 32 bits hold the tile being drawn.
	tileData uint64
}

// spriteLine holds the sprites selected for the current scanline.
type spriteLine struct {
	count      int
	patterns   [8]uint32 // 8 pixels of 4 bits
	positions  [8]uint8
	priorities [8]uint8
	indexes    [8]uint8
}

// renderLine runs the rendering pipeline for the current dot of a visible or
// of the pre-render scanline.
func (p *PPU) renderLine(visible bool) {
	dot := p.Dot
	visibleDot := dot >= 1 && dot <= 256
	prefetchDot := dot >= 321 && dot <= 336
	fetchDot := visibleDot || prefetchDot

	if visible && visibleDot {
		p.renderPixel()
	}

	if fetchDot {
		p.bg.tileData <<= 4
		switch dot % 8 {
		case 1:
			p.fetchNametableByte()
		case 3:
			p.fetchAttributeByte()
		case 5:
			p.bg.lowTile = p.Bus.Read8(p.bgTileAddr())
		case 7:
			p.bg.highTile = p.Bus.Read8(p.bgTileAddr() + 8)
		case 0:
			p.storeTileData()
			p.vramAddr.incx()
		}
	}

	switch {
	case dot == 256:
		p.vramAddr.incy()
	case dot == 257:
		p.vramAddr.copyx(p.vramTmp)
		if visible {
			p.evaluateSprites()
		} else {
			p.sprites.count = 0
		}
	case !visible && dot >= 280 && dot <= 304:
		p.vramAddr.copyy(p.vramTmp)
	}
}

func (p *PPU) fetchNametableByte() {
	addr := 0x2000 | p.vramAddr.val()&0x0FFF
	p.bg.ntByte = p.Bus.Read8(addr)
}

func (p *PPU) fetchAttributeByte() {
	v := p.vramAddr
	addr := 0x23C0 | v.nametable()<<10 | (v.coarsey()>>2)<<3 | v.coarsex()>>2
	shift := (v.coarsey() & 2 << 1) | (v.coarsex() & 2)
	p.bg.atByte = ((p.Bus.Read8(addr) >> shift) & 3) << 2
}

func (p *PPU) bgTileAddr() uint16 {
	var table uint16
	if p.ctrl(backgroundAddr) {
		table = 0x1000
	}
	return table + uint16(p.bg.ntByte)*16 + p.vramAddr.finey()
}

func (p *PPU) storeTileData() {
	var data uint32
	for range 8 {
		p1 := (p.bg.lowTile & 0x80) >> 7
		p2 := (p.bg.highTile & 0x80) >> 6
		p.bg.lowTile <<= 1
		p.bg.highTile <<= 1
		data <<= 4
		data |= uint32(p.bg.atByte | p1 | p2)
	}
	p.bg.tileData |= uint64(data)
}

func (p *PPU) backgroundPixel() uint8 {
	if !p.mask(showBg) {
		return 0
	}
	data := uint32(p.bg.tileData>>32) >> ((7 - p.finex) * 4)
	return uint8(data & 0x0F)
}

func (p *PPU) spritePixel() (idx int, color uint8) {
	if !p.mask(showSprites) {
		return 0, 0
	}
	for i := range p.sprites.count {
		off := (p.Dot - 1) - int(p.sprites.positions[i])
		if off < 0 || off > 7 {
			continue
		}
		off = 7 - off
		c := uint8((p.sprites.patterns[i] >> (off * 4)) & 0x0F)
		if c%4 == 0 {
			continue
		}
		return i, c
	}
	return 0, 0
}

// renderPixel multiplexes the background and sprite pixels at the current
// dot into the frame being rendered.
func (p *PPU) renderPixel() {
	x := p.Dot - 1
	bg := p.backgroundPixel()
	i, sprite := p.spritePixel()
	if x < 8 && !p.mask(leftmostBg) {
		bg = 0
	}
	if x < 8 && !p.mask(leftmostSprites) {
		sprite = 0
	}

	opaqueBg := bg%4 != 0
	opaqueSprite := sprite%4 != 0

	var color uint8
	switch {
	case !opaqueBg && !opaqueSprite:
		color = 0
	case !opaqueBg && opaqueSprite:
		color = sprite | 0x10
	case opaqueBg && !opaqueSprite:
		color = bg
	default:
		// sprite 0 hit detection would go here.
		if p.sprites.priorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = bg
		}
	}
	p.output(x, p.Scanline, color)
}

func (p *PPU) spriteHeight() int {
	if p.ctrl(spriteSize) {
		return 16
	}
	return 8
}

// evaluateSprites selects the first 8 sprites of OAM that are in range for the
// next scanline and fetches their patterns.
func (p *PPU) evaluateSprites() {
	h := p.spriteHeight()
	count := 0
	for i := range 64 {
		y := p.oam[i*4+0]
		attr := p.oam[i*4+2]
		x := p.oam[i*4+3]
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		p.sprites.patterns[count] = p.fetchSpritePattern(i, row)
		p.sprites.positions[count] = x
		p.sprites.priorities[count] = (attr >> 5) & 1
		p.sprites.indexes[count] = uint8(i)
		count++
		if count == 8 {
			// sprite overflow isn't computed.
			break
		}
	}
	p.sprites.count = count
}

func (p *PPU) fetchSpritePattern(i, row int) uint32 {
	tile := p.oam[i*4+1]
	attr := p.oam[i*4+2]

	var addr uint16
	if p.spriteHeight() == 8 {
		if attr&0x80 != 0 {
			row = 7 - row
		}
		var table uint16
		if p.ctrl(spriteAddr) {
			table = 0x1000
		}
		addr = table + uint16(tile)*16 + uint16(row)
	} else {
		if attr&0x80 != 0 {
			row = 15 - row
		}
		table := uint16(tile&1) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		addr = table + uint16(tile)*16 + uint16(row)
	}

	pal := (attr & 3) << 2
	lo := p.Bus.Read8(addr)
	hi := p.Bus.Read8(addr + 8)
	var data uint32
	for range 8 {
		var p1, p2 uint8
		if attr&0x40 != 0 {
			// horizontal flip
			p1 = lo & 1
			p2 = (hi & 1) << 1
			lo >>= 1
			hi >>= 1
		} else {
			p1 = (lo & 0x80) >> 7
			p2 = (hi & 0x80) >> 6
			lo <<= 1
			hi <<= 1
		}
		data <<= 4
		data |= uint32(pal | p1 | p2)
	}
	return data
}
