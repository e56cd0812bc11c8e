package hw

import "nescore/emu/log"

// Every register write goes through the I/O latch, which is what reads of the
// write-only registers return.

func (p *PPU) ReadLatch(uint8) uint8 { return p.latch }
func (p *PPU) PeekLatch(uint8) uint8 { return p.latch }

// PPUCTRL: $2000
func (p *PPU) WritePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()
	p.latch = val

	// Transfer the nametable bits.
	p.vramTmp.setNametable(uint16(val) & ntselect)

	// By toggling the nmi bit during vblank without reading PPUSTATUS, a
	// program can cause multiple NMIs to be generated.
	p.updateNMI()
}

// PPUMASK: $2001
func (p *PPU) WritePPUMASK(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.latch = val
}

// PPUSTATUS: $2002
func (p *PPU) PeekPPUSTATUS(val uint8) uint8 {
	return val&^openbusMask | p.latch&openbusMask
}

func (p *PPU) ReadPPUSTATUS(val uint8) uint8 {
	ret := p.PeekPPUSTATUS(val)
	p.latch = ret
	p.writeLatch = false
	p.PPUSTATUS.Value &^= 1 << vblank
	p.updateNMI()
	return ret
}

func (p *PPU) WritePPUSTATUS(old, val uint8) {
	// read-only, only the latch is affected.
	p.latch = val
	p.PPUSTATUS.Value = old
}

// OAMADDR: $2003
func (p *PPU) WriteOAMADDR(old, val uint8) {
	p.latch = val
}

// OAMDATA: $2004
func (p *PPU) PeekOAMDATA(uint8) uint8 {
	return p.oam[p.OAMADDR.Value]
}

func (p *PPU) ReadOAMDATA(val uint8) uint8 {
	p.latch = p.PeekOAMDATA(val)
	return p.latch
}

func (p *PPU) WriteOAMDATA(old, val uint8) {
	p.latch = val
	p.writeOAM(val)
}

// PPUSCROLL: $2005
func (p *PPU) WritePPUSCROLL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()
	p.latch = val

	if !p.writeLatch { // first write
		p.finex = val & 0b111
		p.vramTmp.setCoarsex(uint16(val >> 3))
	} else { // second write
		p.vramTmp.setFiney(uint16(val & 0b111))
		p.vramTmp.setCoarsey(uint16(val >> 3))
	}

	p.writeLatch = !p.writeLatch
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) WritePPUADDR(old, val uint8) {
	p.latch = val

	if !p.writeLatch { // first write
		p.vramTmp.setHigh(val & 0b11_1111) // clears bit 14
	} else { // second write
		p.vramTmp.setLow(val)
		p.vramAddr = p.vramTmp
	}

	p.writeLatch = !p.writeLatch
}

// PPUDATA: $2007
func (p *PPU) PeekPPUDATA(uint8) uint8 {
	addr := p.vramAddr.addr()
	if addr >= 0x3F00 {
		return p.Bus.Peek8(addr)
	}
	return p.ppuDataRbuf
}

func (p *PPU) ReadPPUDATA(_ uint8) uint8 {
	var val uint8
	addr := p.vramAddr.addr()
	switch {
	case addr < 0x3F00:
		// Reading VRAM is too slow so the actual data
		// will be returned at the next read.
		val = p.ppuDataRbuf
		p.ppuDataRbuf = p.Bus.Read8(addr)
	default: // $3F00-3FFF
		// Reading palette data is immediate, bits 6-7 are open bus.
		val = p.Bus.Read8(addr) | p.latch&0xC0
		// Still it overwrites the read buffer with the nametable
		// byte 'under' the palette.
		p.ppuDataRbuf = p.Bus.Read8(addr - 0x1000)
	}

	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", addr).
		Hex8("val", val).
		End()

	p.latch = val
	p.incVRAMaddr()
	return val
}

func (p *PPU) WritePPUDATA(old, val uint8) {
	p.latch = val
	addr := p.vramAddr.addr()
	p.Bus.Write8(addr, val)

	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", addr).
		Hex8("val", val).
		End()

	p.incVRAMaddr()
}

// After each i/o on PPUDATA, PPUADDR is incremented.
func (p *PPU) incVRAMaddr() {
	incr := loopy(1)
	if p.ctrl(vramIncr) {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7FFF
}
