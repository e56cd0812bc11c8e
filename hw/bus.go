package hw

import "nescore/hw/hwio"

// InitBus maps the CPU address space:
//
//	$0000-$1FFF  2KB internal RAM, mirrored every $800 bytes
//	$2000-$3FFF  PPU registers, mirrored every 8 bytes
//	$4014        OAM DMA
//	$4016-$4017  controller ports
//	$4020-$FFFF  cartridge space (mapped by the cartridge)
//
// The other APU and I/O registers are left unmapped: reads return the open
// bus value, writes are ignored.
func (c *CPU) InitBus() {
	hwio.MustInitRegs(c)
	c.Bus.MapBank(0x0000, c, 0)

	if c.PPU != nil {
		for off := uint16(0x2000); off < 0x4000; off += 8 {
			c.Bus.MapBank(off, c.PPU, 1)
		}
	}

	c.DMA.initBus()
	c.Bus.MapBank(0x4000, &c.DMA, 0)

	c.Input.initBus(c)
	c.Bus.MapBank(0x4000, &c.Input, 0)
}

// Peek8 reads the CPU bus without side effects.
func (c *CPU) Peek8(addr uint16) uint8 {
	return c.Bus.Peek8(addr)
}

// openBus handles reads of unmapped addresses and write-only registers on the
// CPU bus: they return the last value driven on the data bus.
type openBus struct {
	cpu *CPU
}

func (ob *openBus) Read8(uint16) uint8   { return ob.cpu.openbus }
func (ob *openBus) Peek8(uint16) uint8   { return ob.cpu.openbus }
func (ob *openBus) Write8(uint16, uint8) {}
