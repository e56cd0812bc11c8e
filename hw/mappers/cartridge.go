package mappers

import (
	"fmt"
	"slices"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/hwio"
	"nescore/hw/snapshot"
	"nescore/ines"
)

const (
	prgRAMSize = 0x2000
	chrRAMSize = 0x2000
)

// region is a cartridge memory area.
type region uint8

const (
	unmapped region = iota
	prgROM
	prgRAM
	chrMem
)

// A Cartridge holds the memories of a cartridge and the state of its mapper.
// It's mapped on the CPU bus at $6000-$FFFF and on the PPU bus at
// $0000-$1FFF, every access goes through translate.
type Cartridge struct {
	PRG hwio.Device `hwio:"bank=0,offset=0x6000,size=0xA000,rcb,pcb,wcb"`
	CHR hwio.Device `hwio:"bank=1,offset=0x0000,size=0x2000,rcb,pcb,wcb"`

	desc      MapperDesc
	mirroring ines.NTMirroring

	prgROM []byte
	prgRAM []byte
	chr    []byte
	chrRAM bool // chr is writable
}

func newCartridge(desc MapperDesc, rom *ines.Rom) (*Cartridge, error) {
	nbanks := len(rom.PRGROM) / desc.PRGROMbanksz
	if len(rom.PRGROM)%desc.PRGROMbanksz != 0 || !slices.Contains(desc.PRGROMbanks, nbanks) {
		return nil, fmt.Errorf("unsupported PRG ROM size %d", len(rom.PRGROM))
	}

	cart := &Cartridge{
		desc:      desc,
		mirroring: rom.Mirroring(),
		prgROM:    slices.Clone(rom.PRGROM),
		prgRAM:    make([]byte, prgRAMSize),
	}
	switch len(rom.CHRROM) {
	case 0:
		cart.chr = make([]byte, chrRAMSize)
		cart.chrRAM = true
	case desc.CHRROMbanksz:
		cart.chr = slices.Clone(rom.CHRROM)
	default:
		return nil, fmt.Errorf("unsupported CHR ROM size %d", len(rom.CHRROM))
	}

	hwio.MustInitRegs(cart)
	return cart, nil
}

func (c *Cartridge) mapBuses(cpu *hw.CPU, ppu *hw.PPU) {
	if cpu != nil {
		cpu.Bus.MapBank(0x0000, c, 0)
	}
	if ppu != nil {
		ppu.Bus.MapBank(0x0000, c, 1)
		ppu.Cart = c
	}
}

// translate converts a CPU (or PPU when ppu is true) bus address into an
// offset in one of the cartridge memories.
func (c *Cartridge) translate(addr uint16, ppu bool) (region, int) {
	switch c.desc.Kind {
	case KindNROM:
		return c.translateNROM(addr, ppu)
	}
	panic(fmt.Sprintf("unexpected mapper kind %d", c.desc.Kind))
}

// Name returns the mapper name.
func (c *Cartridge) Name() string { return c.desc.Name }

// Mirroring returns the nametable mirroring mode.
func (c *Cartridge) Mirroring() ines.NTMirroring { return c.mirroring }

// IRQ reports whether the cartridge asserts the IRQ line. NROM never does.
func (c *Cartridge) IRQ() bool { return false }

// PRGRAM returns the PRG RAM.
func (c *Cartridge) PRGRAM() []byte { return c.prgRAM }

// CHRRAM returns the CHR RAM, or nil if the cartridge has CHR ROM.
func (c *Cartridge) CHRRAM() []byte {
	if !c.chrRAM {
		return nil
	}
	return c.chr
}

func (c *Cartridge) read(addr uint16, ppu bool) uint8 {
	reg, off := c.translate(addr, ppu)
	switch reg {
	case prgROM:
		return c.prgROM[off]
	case prgRAM:
		return c.prgRAM[off]
	case chrMem:
		return c.chr[off]
	}
	return 0
}

func (c *Cartridge) write(addr uint16, val uint8, ppu bool) {
	reg, off := c.translate(addr, ppu)
	switch {
	case reg == prgRAM:
		c.prgRAM[off] = val
	case reg == chrMem && c.chrRAM:
		c.chr[off] = val
	default:
		log.ModMapper.DebugZ("write to ROM ignored").
			Hex16("addr", addr).
			Hex8("val", val).
			Bool("ppu", ppu).
			End()
	}
}

func (c *Cartridge) ReadPRG(addr uint16) uint8       { return c.read(addr, false) }
func (c *Cartridge) PeekPRG(addr uint16) uint8       { return c.read(addr, false) }
func (c *Cartridge) WritePRG(addr uint16, val uint8) { c.write(addr, val, false) }

func (c *Cartridge) ReadCHR(addr uint16) uint8       { return c.read(addr, true) }
func (c *Cartridge) PeekCHR(addr uint16) uint8       { return c.read(addr, true) }
func (c *Cartridge) WriteCHR(addr uint16, val uint8) { c.write(addr, val, true) }

// State returns a copy of the writable cartridge memories.
func (c *Cartridge) State() *snapshot.Cartridge {
	return &snapshot.Cartridge{
		PRGRAM: slices.Clone(c.prgRAM),
		CHRRAM: slices.Clone(c.CHRRAM()),
	}
}

func (c *Cartridge) SetState(state *snapshot.Cartridge) error {
	if len(state.PRGRAM) != len(c.prgRAM) {
		return fmt.Errorf("PRG RAM size mismatch: got %d, want %d", len(state.PRGRAM), len(c.prgRAM))
	}
	if len(state.CHRRAM) != len(c.CHRRAM()) {
		return fmt.Errorf("CHR RAM size mismatch: got %d, want %d", len(state.CHRRAM), len(c.CHRRAM()))
	}
	copy(c.prgRAM, state.PRGRAM)
	if c.chrRAM {
		copy(c.chr, state.CHRRAM)
	}
	return nil
}
