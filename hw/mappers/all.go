// Package mappers implements cartridge boards: how the program and graphics
// memories of a cartridge are mapped into the CPU and PPU address spaces.
package mappers

import (
	"fmt"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/ines"
)

// Kind identifies a board in the closed set of supported mappers.
type Kind uint8

const (
	KindNROM Kind = iota
)

// MapperDesc describes a supported mapper.
type MapperDesc struct {
	Name         string
	Kind         Kind
	PRGROMbanksz int
	CHRROMbanksz int

	// Allowed number of PRG ROM banks.
	PRGROMbanks []int
}

// All maps iNES mapper numbers to the supported mappers.
var All = map[uint16]MapperDesc{
	0: NROM,
}

// Load creates the cartridge for rom and maps it into the CPU and PPU buses.
// An unsupported mapper number yields an *ines.ParseError.
func Load(rom *ines.Rom, cpu *hw.CPU, ppu *hw.PPU) (*Cartridge, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, ines.UnsupportedMapperError(rom.Mapper())
	}

	cart, err := newCartridge(desc, rom)
	if err != nil {
		return nil, fmt.Errorf("mapper %s: %w", desc.Name, err)
	}

	cart.mapBuses(cpu, ppu)
	log.ModMapper.InfoZ("mapper loaded").
		String("name", desc.Name).
		Int("prgrom", len(cart.prgROM)).
		Int("chr", len(cart.chr)).
		Bool("chrram", cart.chrRAM).
		Stringer("mirroring", cart.mirroring).
		End()
	return cart, nil
}
