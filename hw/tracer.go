package hw

import (
	"fmt"
	"io"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock    int64
	PPUCycle int
	Scanline int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

// tracer writes one line per executed instruction:
//
//	PC  bytes  mnemonic operand  registers  PPU:scanline,dot cycles
type tracer struct {
	d   disasmer
	w   io.Writer
	buf []byte
}

// Trace columns.
const (
	mnemonicCol = 16
	regsCol     = 48
)

const hexDigits = "0123456789ABCDEF"

func appendHex8(buf []byte, v uint8) []byte {
	return append(buf, hexDigits[v>>4], hexDigits[v&0x0F])
}

func padTo(buf []byte, col int) []byte {
	for len(buf) < col {
		buf = append(buf, ' ')
	}
	return buf
}

// appendTo appends the disassembly of d to buf, padded up to the registers
// column.
func (d DisasmOp) appendTo(buf []byte) []byte {
	start := len(buf)
	buf = appendHex8(buf, uint8(d.PC>>8))
	buf = appendHex8(buf, uint8(d.PC))
	buf = append(buf, ' ', ' ')
	for _, b := range d.Buf {
		buf = append(appendHex8(buf, b), ' ')
	}
	buf = padTo(buf, start+mnemonicCol)
	buf = append(buf, d.Opcode...)
	buf = append(buf, ' ')
	buf = append(buf, d.Oper...)
	return padTo(buf, start+regsCol)
}

// write the execution trace for current instruction.
func (t *tracer) write(state cpuState) {
	buf := t.d.Disasm(state.PC).appendTo(t.buf[:0])
	buf = append(buf, ' ')

	for _, r := range [...]struct {
		name byte
		val  uint8
	}{{'A', state.A}, {'X', state.X}, {'Y', state.Y}, {'P', uint8(state.P)}, {'S', state.SP}} {
		buf = append(buf, r.name, ':')
		buf = append(appendHex8(buf, r.val), ' ')
	}

	// pre-render line is shown as -1.
	scanline := state.Scanline
	if scanline == 261 {
		scanline = -1
	}

	buf = fmt.Appendf(buf, "PPU:%-3d,%-3d %d\n", scanline, state.PPUCycle, state.Clock)
	t.buf = buf
	t.w.Write(buf)
}
