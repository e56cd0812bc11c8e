package tests

import "bytes"

// RomImage describes a synthetic iNES image.
type RomImage struct {
	PRG     []byte // PRG ROM, multiple of 16KB
	CHR     []byte // CHR ROM, multiple of 8KB (nil for CHR RAM)
	Trainer []byte // 512 bytes or nil
	Flags6  uint8  // mirroring, battery, trainer bit set automatically, mapper low nibble
	Flags7  uint8  // mapper high nibble
}

// Bytes encodes the image in iNES format.
func (img RomImage) Bytes() []byte {
	var buf bytes.Buffer
	flags6 := img.Flags6
	if img.Trainer != nil {
		flags6 |= 0x04
	}
	buf.WriteString("NES\x1a")
	buf.WriteByte(uint8(len(img.PRG) / 0x4000))
	buf.WriteByte(uint8(len(img.CHR) / 0x2000))
	buf.WriteByte(flags6)
	buf.WriteByte(img.Flags7)
	buf.Write(make([]byte, 8))
	buf.Write(img.Trainer)
	buf.Write(img.PRG)
	buf.Write(img.CHR)
	return buf.Bytes()
}

// NROMImage returns a 16KB NROM image whose reset vector points to $8000
// where program is stored. nmi, if not zero, sets the NMI vector.
func NROMImage(program []byte, nmi uint16) RomImage {
	prg := make([]byte, 0x4000)
	copy(prg, program)

	// vectors at $FFFA-$FFFF, mirrored from $BFFA in a 16KB image.
	prg[0x3FFA] = uint8(nmi)
	prg[0x3FFB] = uint8(nmi >> 8)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	prg[0x3FFE] = 0x00
	prg[0x3FFF] = 0x80

	return RomImage{
		PRG: prg,
		CHR: make([]byte, 0x2000),
	}
}
