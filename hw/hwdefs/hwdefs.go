// Package hwdefs holds hardware definitions shared by several packages.
package hwdefs

import "strings"

type IRQSource uint8

const (
	// External is the cartridge IRQ line.
	External IRQSource = 1 << iota

	numSources = 1
)

var irqSrcNames = [numSources]string{
	"ext",
}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

const (
	SoftReset = true
	HardReset = false
)

// PPU timing.
const (
	NumScanlines = 262 // Number of scanlines per frame.
	NumCycles    = 341 // Number of PPU cycles (dots) per scanline.
)

// Screen dimensions, in pixels.
const (
	NTSCWidth  = 256
	NTSCHeight = 240
)
