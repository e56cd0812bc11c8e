package hw

import (
	"nescore/hw/hwdefs"
	"nescore/hw/snapshot"
)

// State returns the CPU state, including RAM, interrupt lines and OAM DMA.
func (c *CPU) State() *snapshot.CPU {
	return &snapshot.CPU{
		PC:         c.PC,
		SP:         c.SP,
		P:          uint8(c.P),
		A:          c.A,
		X:          c.X,
		Y:          c.Y,
		Cycles:     c.Cycles,
		OpenBus:    c.openbus,
		NMILine:    c.Lines.nmiOut,
		NMIPending: c.Lines.nmiEdge,
		IRQ:        uint8(c.Lines.irq),
		DMAPage:    c.DMA.page,
		DMAPending: c.DMA.pending,
	}
}

func (c *CPU) SetState(state *snapshot.CPU) {
	c.PC = state.PC
	c.SP = state.SP
	c.P = P(state.P)
	c.A = state.A
	c.X = state.X
	c.Y = state.Y
	c.Cycles = state.Cycles
	c.openbus = state.OpenBus
	c.Lines.nmiOut = state.NMILine
	c.Lines.nmiEdge = state.NMIPending
	c.Lines.irq = hwdefs.IRQSource(state.IRQ)
	c.DMA.page = state.DMAPage
	c.DMA.pending = state.DMAPending
	c.halted = nil
}

// SaveRAM copies the internal RAM into dst.
func (c *CPU) SaveRAM(dst *[0x800]uint8) { copy(dst[:], c.RAM.Data) }

// LoadRAM restores the internal RAM from src.
func (c *CPU) LoadRAM(src *[0x800]uint8) { copy(c.RAM.Data, src[:]) }

// State returns the PPU state. The rendering pipeline isn't part of it, so the
// state must be taken between frames to be restored exactly.
func (p *PPU) State() *snapshot.PPU {
	return &snapshot.PPU{
		PPUCTRL:    p.PPUCTRL.Value,
		PPUMASK:    p.PPUMASK.Value,
		PPUSTATUS:  p.PPUSTATUS.Value,
		OAMADDR:    p.OAMADDR.Value,
		Latch:      p.latch,
		VRAMAddr:   uint16(p.vramAddr),
		VRAMTemp:   uint16(p.vramTmp),
		FineX:      p.finex,
		WriteLatch: p.writeLatch,
		PPUDataBuf: p.ppuDataRbuf,
		Dot:        p.Dot,
		Scanline:   p.Scanline,
		Frame:      p.Frame,
		Nametables: p.nametables,
		Palette:    p.palette,
		OAM:        p.oam,
	}
}

func (p *PPU) SetState(state *snapshot.PPU) {
	p.PPUCTRL.Value = state.PPUCTRL
	p.PPUMASK.Value = state.PPUMASK
	p.PPUSTATUS.Value = state.PPUSTATUS
	p.OAMADDR.Value = state.OAMADDR
	p.latch = state.Latch
	p.vramAddr = loopy(state.VRAMAddr)
	p.vramTmp = loopy(state.VRAMTemp)
	p.finex = state.FineX
	p.writeLatch = state.WriteLatch
	p.ppuDataRbuf = state.PPUDataBuf
	p.Dot = state.Dot
	p.Scanline = state.Scanline
	p.Frame = state.Frame
	p.nametables = state.Nametables
	p.palette = state.Palette
	p.oam = state.OAM
	p.bg = bgPipeline{}
	p.sprites = spriteLine{}
}
