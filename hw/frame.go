package hw

import (
	"image"
	"image/color"

	"nescore/hw/hwdefs"
)

const (
	ScreenWidth  = hwdefs.NTSCWidth
	ScreenHeight = hwdefs.NTSCHeight
)

// Frame is a picture produced by the PPU. Pixels are stored row by row as
// 6-bit indices in the NES master palette.
type Frame [ScreenWidth * ScreenHeight]uint8

// At returns the palette index of the pixel at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f[y*ScreenWidth+x]
}

// Image converts the frame to RGB colors using the NTSC palette.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	for i, idx := range f {
		c := Palette[idx&0x3F]
		off := i * 4
		img.Pix[off+0] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = 0xFF
	}
	return img
}

// Palette is the NTSC 2C02 master palette.
var Palette = [64]color.RGBA{}

func init() {
	rgb := [64]uint32{
		0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
		0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
		0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
		0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
		0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
		0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
		0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
		0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
	}
	for i, c := range rgb {
		Palette[i] = color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
	}
}
