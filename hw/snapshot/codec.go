package snapshot

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-faster/jx"

	"nescore/hw/hwdefs"
)

var (
	ErrVersion = errors.New("unsupported snapshot version")
	ErrInvalid = errors.New("invalid snapshot")
)

// Encode writes the JSON representation of s into w.
func Encode(w io.Writer, s *NES) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
		e.Field("cpu", s.CPU.encode)
		e.Field("ram", func(e *jx.Encoder) { e.Base64(s.RAM[:]) })
		e.Field("ppu", s.PPU.encode)
		e.Field("cart", s.Cart.encode)
	})

	_, err := e.WriteTo(w)
	return err
}

// Decode reads a snapshot encoded with Encode.
func Decode(r io.Reader) (*NES, error) {
	var s NES

	d := jx.Decode(r, 4096)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "version":
			v, err := d.Int()
			if err != nil {
				return err
			}
			if v != Version {
				return fmt.Errorf("%w: %d", ErrVersion, v)
			}
			s.Version = v
			return nil
		case "cpu":
			return s.CPU.decode(d)
		case "ram":
			return decodeBytes(d, s.RAM[:])
		case "ppu":
			return s.PPU.decode(d)
		case "cart":
			return s.Cart.decode(d)
		}
		return d.Skip()
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot decode: %w: missing version", ErrVersion)
	}
	if err := s.PPU.validate(); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w: %w", ErrInvalid, err)
	}
	return &s, nil
}

// decodeBytes decodes a base64 string into dst, which must have the exact same
// length.
func decodeBytes(d *jx.Decoder, dst []byte) error {
	buf, err := d.Base64()
	if err != nil {
		return err
	}
	if len(buf) != len(dst) {
		return fmt.Errorf("got %d bytes, want %d", len(buf), len(dst))
	}
	copy(dst, buf)
	return nil
}

func (s *CPU) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("pc", func(e *jx.Encoder) { e.UInt16(s.PC) })
		e.Field("sp", func(e *jx.Encoder) { e.UInt8(s.SP) })
		e.Field("p", func(e *jx.Encoder) { e.UInt8(s.P) })
		e.Field("a", func(e *jx.Encoder) { e.UInt8(s.A) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.X) })
		e.Field("y", func(e *jx.Encoder) { e.UInt8(s.Y) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("openbus", func(e *jx.Encoder) { e.UInt8(s.OpenBus) })
		e.Field("nmi_line", func(e *jx.Encoder) { e.Bool(s.NMILine) })
		e.Field("nmi_pending", func(e *jx.Encoder) { e.Bool(s.NMIPending) })
		e.Field("irq", func(e *jx.Encoder) { e.UInt8(s.IRQ) })
		e.Field("dma_page", func(e *jx.Encoder) { e.UInt8(s.DMAPage) })
		e.Field("dma_pending", func(e *jx.Encoder) { e.Bool(s.DMAPending) })
	})
}

func (s *CPU) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "sp":
			s.SP, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "cycles":
			s.Cycles, err = d.Int64()
		case "openbus":
			s.OpenBus, err = d.UInt8()
		case "nmi_line":
			s.NMILine, err = d.Bool()
		case "nmi_pending":
			s.NMIPending, err = d.Bool()
		case "irq":
			s.IRQ, err = d.UInt8()
		case "dma_page":
			s.DMAPage, err = d.UInt8()
		case "dma_pending":
			s.DMAPending, err = d.Bool()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("cpu.%s: %w", key, err)
		}
		return nil
	})
}

func (s *PPU) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("ctrl", func(e *jx.Encoder) { e.UInt8(s.PPUCTRL) })
		e.Field("mask", func(e *jx.Encoder) { e.UInt8(s.PPUMASK) })
		e.Field("status", func(e *jx.Encoder) { e.UInt8(s.PPUSTATUS) })
		e.Field("oamaddr", func(e *jx.Encoder) { e.UInt8(s.OAMADDR) })
		e.Field("latch", func(e *jx.Encoder) { e.UInt8(s.Latch) })
		e.Field("v", func(e *jx.Encoder) { e.UInt16(s.VRAMAddr) })
		e.Field("t", func(e *jx.Encoder) { e.UInt16(s.VRAMTemp) })
		e.Field("x", func(e *jx.Encoder) { e.UInt8(s.FineX) })
		e.Field("w", func(e *jx.Encoder) { e.Bool(s.WriteLatch) })
		e.Field("databuf", func(e *jx.Encoder) { e.UInt8(s.PPUDataBuf) })
		e.Field("dot", func(e *jx.Encoder) { e.Int(s.Dot) })
		e.Field("scanline", func(e *jx.Encoder) { e.Int(s.Scanline) })
		e.Field("frame", func(e *jx.Encoder) { e.UInt64(s.Frame) })
		e.Field("nametables", func(e *jx.Encoder) { e.Base64(s.Nametables[:]) })
		e.Field("palette", func(e *jx.Encoder) { e.Base64(s.Palette[:]) })
		e.Field("oam", func(e *jx.Encoder) { e.Base64(s.OAM[:]) })
	})
}

// validate checks the values the PPU uses as indices or loop bounds.
func (s *PPU) validate() error {
	switch {
	case s.Dot < 0 || s.Dot >= hwdefs.NumCycles:
		return fmt.Errorf("ppu.dot out of range: %d", s.Dot)
	case s.Scanline < 0 || s.Scanline >= hwdefs.NumScanlines:
		return fmt.Errorf("ppu.scanline out of range: %d", s.Scanline)
	case s.FineX > 7:
		return fmt.Errorf("ppu.x out of range: %d", s.FineX)
	case s.VRAMAddr > 0x7FFF:
		return fmt.Errorf("ppu.v out of range: $%04X", s.VRAMAddr)
	case s.VRAMTemp > 0x7FFF:
		return fmt.Errorf("ppu.t out of range: $%04X", s.VRAMTemp)
	}
	return nil
}

func (s *PPU) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "ctrl":
			s.PPUCTRL, err = d.UInt8()
		case "mask":
			s.PPUMASK, err = d.UInt8()
		case "status":
			s.PPUSTATUS, err = d.UInt8()
		case "oamaddr":
			s.OAMADDR, err = d.UInt8()
		case "latch":
			s.Latch, err = d.UInt8()
		case "v":
			s.VRAMAddr, err = d.UInt16()
		case "t":
			s.VRAMTemp, err = d.UInt16()
		case "x":
			s.FineX, err = d.UInt8()
		case "w":
			s.WriteLatch, err = d.Bool()
		case "databuf":
			s.PPUDataBuf, err = d.UInt8()
		case "dot":
			s.Dot, err = d.Int()
		case "scanline":
			s.Scanline, err = d.Int()
		case "frame":
			s.Frame, err = d.UInt64()
		case "nametables":
			err = decodeBytes(d, s.Nametables[:])
		case "palette":
			err = decodeBytes(d, s.Palette[:])
		case "oam":
			err = decodeBytes(d, s.OAM[:])
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("ppu.%s: %w", key, err)
		}
		return nil
	})
}

func (s *Cartridge) encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		if s.PRGRAM != nil {
			e.Field("prgram", func(e *jx.Encoder) { e.Base64(s.PRGRAM) })
		}
		if s.CHRRAM != nil {
			e.Field("chrram", func(e *jx.Encoder) { e.Base64(s.CHRRAM) })
		}
	})
}

func (s *Cartridge) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "prgram":
			s.PRGRAM, err = d.Base64()
		case "chrram":
			s.CHRRAM, err = d.Base64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("cart.%s: %w", key, err)
		}
		return nil
	})
}
