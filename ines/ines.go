// Package ines implements a reader for roms in the iNES file format, used for
// the distribution of NES binary programs.
package ines

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

const (
	HeaderSize  = 16
	TrainerSize = 512
	PRGBankSize = 0x4000 // 16KB
	CHRBankSize = 0x2000 // 8KB
)

const Magic = "NES\x1a"

type Rom struct {
	header
	Trainer []byte // Trainer, 512 bytes if present, or empty.
	PRGROM  []byte // PRG ROM data (length is multiple of 16k)
	CHRROM  []byte // CHR ROM data (length is multiple of 8k), empty for CHR RAM
}

// ReadRom loads a rom from file.
func ReadRom(path string) (*Rom, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rom, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// Decode parses an iNES image. The returned Rom slices alias buf. Errors are
// of type *ParseError.
func Decode(buf []byte) (*Rom, error) {
	rom := new(Rom)
	if err := rom.decode(buf); err != nil {
		return nil, err
	}
	off := HeaderSize

	section := func(name string, size int) ([]byte, error) {
		if len(buf) < off+size {
			return nil, &ParseError{
				Kind:    Truncated,
				Section: name,
				Want:    size,
				Got:     max(0, len(buf)-off),
			}
		}
		s := buf[off : off+size]
		off += size
		return s, nil
	}

	var err error
	if rom.HasTrainer() {
		if rom.Trainer, err = section("trainer", TrainerSize); err != nil {
			return nil, err
		}
	}
	if rom.PRGROM, err = section("PRG", rom.PRGROMSize()); err != nil {
		return nil, err
	}
	if rom.CHRROM, err = section("CHR", rom.CHRROMSize()); err != nil {
		return nil, err
	}
	return rom, nil
}

func (hdr *header) decode(p []byte) error {
	n := min(len(p), len(Magic))
	if string(p[:n]) != Magic[:n] {
		return &ParseError{Kind: BadMagic}
	}
	if len(p) < HeaderSize {
		return &ParseError{Kind: Truncated, Section: "header", Want: HeaderSize, Got: len(p)}
	}
	copy(hdr.raw[:], p[:HeaderSize])
	if hdr.PRGROMSize() == 0 {
		return &ParseError{Kind: Truncated, Section: "PRG", Want: PRGBankSize, Got: 0}
	}
	return nil
}

type header struct {
	raw [HeaderSize]byte
}

// HasTrainer indicates the presence of a trainer section in the rom.
func (hdr *header) HasTrainer() bool {
	return hdr.raw[6]&0x04 != 0
}

// HasPersistent indicates the presence of battery-backed PRG RAM.
func (hdr *header) HasPersistent() bool {
	return hdr.raw[6]&0x02 != 0
}

// IsNES20 reports whether the header is in NES 2.0 format.
func (hdr *header) IsNES20() bool {
	return hdr.raw[7]&0x0C == 0x08
}

// Mapper returns the mapper number.
func (hdr *header) Mapper() uint16 {
	m := uint16(hdr.raw[7]&0xF0) | uint16(hdr.raw[6]>>4)
	if hdr.IsNES20() {
		m |= uint16(hdr.raw[8]&0x0F) << 8
	}
	return m
}

// SubMapper returns the sub-mapper number (NES 2.0 only, 0 otherwise).
func (hdr *header) SubMapper() uint8 {
	if !hdr.IsNES20() {
		return 0
	}
	return hdr.raw[8] >> 4
}

// Mirroring returns the nametable mirroring mode.
func (hdr *header) Mirroring() NTMirroring {
	switch {
	case hdr.raw[6]&0x08 != 0:
		return FourScreen
	case hdr.raw[6]&0x01 != 0:
		return VertMirroring
	}
	return HorzMirroring
}

// PRGROMSize returns the size of the PRG ROM, in bytes.
func (hdr *header) PRGROMSize() int {
	return int(hdr.raw[4]) * PRGBankSize
}

// CHRROMSize returns the size of the CHR ROM, in bytes. A zero size means the
// cartridge has CHR RAM instead.
func (hdr *header) CHRROMSize() int {
	return int(hdr.raw[5]) * CHRBankSize
}

// PRGRAMSize returns the size of the PRG RAM, in bytes. iNES 1.0 roms
// specifying 0 are given 8KB for compatibility.
func (hdr *header) PRGRAMSize() int {
	if hdr.IsNES20() {
		if shift := hdr.raw[10] & 0x0F; shift != 0 {
			return 64 << shift
		}
		return 0
	}
	return max(1, int(hdr.raw[8])) * 0x2000
}

// PrintInfos writes a human readable summary of the rom header.
func (rom *Rom) PrintInfos(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	format := "iNES"
	if rom.IsNES20() {
		format = "NES 2.0"
	}
	chr := fmt.Sprintf("%dKB", len(rom.CHRROM)/1024)
	if len(rom.CHRROM) == 0 {
		chr = "none (8KB CHR RAM)"
	}
	fmt.Fprintf(tw, "Format:\t%s\n", format)
	fmt.Fprintf(tw, "Mapper:\t%d (sub-mapper %d)\n", rom.Mapper(), rom.SubMapper())
	fmt.Fprintf(tw, "PRG ROM:\t%dKB\n", len(rom.PRGROM)/1024)
	fmt.Fprintf(tw, "CHR ROM:\t%s\n", chr)
	fmt.Fprintf(tw, "PRG RAM:\t%dKB\n", rom.PRGRAMSize()/1024)
	fmt.Fprintf(tw, "Mirroring:\t%s\n", rom.Mirroring())
	fmt.Fprintf(tw, "Battery:\t%t\n", rom.HasPersistent())
	fmt.Fprintf(tw, "Trainer:\t%t\n", rom.HasTrainer())
	tw.Flush()
}

// NTMirroring is the nametable mirroring mode.
type NTMirroring uint8

const (
	HorzMirroring NTMirroring = iota
	VertMirroring
	FourScreen
)

func (m NTMirroring) String() string {
	switch m {
	case HorzMirroring:
		return "horizontal"
	case VertMirroring:
		return "vertical"
	case FourScreen:
		return "four-screen"
	}
	return fmt.Sprintf("NTMirroring(%d)", uint8(m))
}
