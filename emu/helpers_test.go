package emu

import (
	"testing"

	"nescore/hw"
	"nescore/tests"
)

// Programs are stored at $8000, where the reset vector points.
var (
	// spin
	loopProg = []byte{
		0x4C, 0x00, 0x80, // JMP $8000
	}

	// enable NMI, then spin. The NMI handler, at $8008, counts frames at $0000.
	nmiProg = []byte{
		0xA9, 0x80,       // LDA #$80
		0x8D, 0x00, 0x20, // STA $2000
		0x4C, 0x05, 0x80, // JMP $8005
		0xE6, 0x00,       // INC $00
		0x40,             // RTI
	}

	// set the backdrop color to $21, then spin.
	backdropProg = []byte{
		0xA9, 0x3F,       // LDA #$3F
		0x8D, 0x06, 0x20, // STA $2006
		0xA9, 0x00,       // LDA #$00
		0x8D, 0x06, 0x20, // STA $2006
		0xA9, 0x21,       // LDA #$21
		0x8D, 0x07, 0x20, // STA $2007
		0x4C, 0x0F, 0x80, // JMP $800F
	}
)

const nmiHandler = 0x8008

func loadNES(tb testing.TB, prog []byte, nmi uint16) *NES {
	tb.Helper()

	nes, err := LoadCartridge(tests.NROMImage(prog, nmi).Bytes())
	if err != nil {
		tb.Fatal(err)
	}
	return nes
}

func runFrames(tb testing.TB, nes *NES, n int) {
	tb.Helper()

	for range n {
		if err := nes.RunFrame(); err != nil {
			tb.Fatal(err)
		}
	}
}

// recordOutput keeps all frames it receives.
type recordOutput struct {
	frames []hw.Frame
	closed bool
}

func (o *recordOutput) EndFrame(frame *hw.Frame) error {
	o.frames = append(o.frames, *frame)
	return nil
}

func (o *recordOutput) Close() error {
	o.closed = true
	return nil
}
