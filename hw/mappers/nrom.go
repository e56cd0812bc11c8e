package mappers

// NROM boards have no bank switching: 16 or 32KB of PRG ROM at $8000 (a 16KB
// image is mirrored at $C000), optional 8KB PRG RAM at $6000 and 8KB of CHR
// ROM or RAM.
var NROM = MapperDesc{
	Name:         "NROM",
	Kind:         KindNROM,
	PRGROMbanksz: 0x4000,
	CHRROMbanksz: 0x2000,
	PRGROMbanks:  []int{1, 2},
}

func (c *Cartridge) translateNROM(addr uint16, ppu bool) (region, int) {
	if ppu {
		return chrMem, int(addr & 0x1FFF)
	}
	switch {
	case addr >= 0x8000:
		return prgROM, int(addr-0x8000) % len(c.prgROM)
	case addr >= 0x6000:
		return prgRAM, int(addr - 0x6000)
	}
	return unmapped, 0
}
