package hw

import "nescore/ines"

// nametable banks used for each of the 4 logical nametables, per mirroring
// mode.
var ntBanks = [...][4]uint16{
	ines.HorzMirroring: {0, 0, 1, 1},
	ines.VertMirroring: {0, 1, 0, 1},
	ines.FourScreen:    {0, 1, 2, 3},
}

func (p *PPU) ntIndex(addr uint16) uint16 {
	mode := ines.HorzMirroring
	if p.Cart != nil {
		mode = p.Cart.Mirroring()
	}
	addr = (addr - 0x2000) & 0x0FFF
	return ntBanks[mode][addr/0x400]*0x400 + addr%0x400
}

func (p *PPU) ReadNAMETABLES(addr uint16) uint8 { return p.nametables[p.ntIndex(addr)] }
func (p *PPU) PeekNAMETABLES(addr uint16) uint8 { return p.nametables[p.ntIndex(addr)] }

func (p *PPU) WriteNAMETABLES(addr uint16, val uint8) {
	p.nametables[p.ntIndex(addr)] = val
}

// paletteIndex mirrors $3F10/$3F14/$3F18/$3F1C down to $3F00/$3F04/$3F08/$3F0C.
func paletteIndex(addr uint16) uint16 {
	i := addr & 0x1F
	if i&0x13 == 0x10 {
		i &^= 0x10
	}
	return i
}

func (p *PPU) ReadPALETTES(addr uint16) uint8 { return p.palette[paletteIndex(addr)] }
func (p *PPU) PeekPALETTES(addr uint16) uint8 { return p.palette[paletteIndex(addr)] }

func (p *PPU) WritePALETTES(addr uint16, val uint8) {
	p.palette[paletteIndex(addr)] = val & 0x3F
}
