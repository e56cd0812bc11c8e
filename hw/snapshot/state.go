// Package snapshot defines the serializable state of the emulated machine.
//
// States are plain values filled by the State methods of the hardware
// components, and restored with their SetState counterparts.
package snapshot

// Version of the snapshot format.
const Version = 1

type NES struct {
	Version int
	CPU     CPU
	RAM     [0x800]uint8
	PPU     PPU
	Cart    Cartridge
}

type CPU struct {
	PC uint16
	SP uint8
	P  uint8
	A  uint8
	X  uint8
	Y  uint8

	Cycles  int64
	OpenBus uint8

	// interrupt lines
	NMILine    bool
	NMIPending bool
	IRQ        uint8

	// OAM DMA
	DMAPage    uint8
	DMAPending bool
}

type PPU struct {
	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8
	OAMADDR   uint8

	Latch      uint8
	VRAMAddr   uint16
	VRAMTemp   uint16
	FineX      uint8
	WriteLatch bool
	PPUDataBuf uint8

	Dot      int
	Scanline int
	Frame    uint64

	Nametables [0x1000]uint8
	Palette    [0x20]uint8
	OAM        [0x100]uint8
}

// Cartridge holds the writable memories of the cartridge. ROMs aren't part
// of the snapshot.
type Cartridge struct {
	PRGRAM []uint8
	CHRRAM []uint8
}
