package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// OAMDMA handles the OAM DMA register at $4014. Writing N to it copies the
// 256 bytes of CPU page $NN00-$NNFF to the PPU OAM, starting at OAMADDR,
// and stalls the CPU for 513 cycles, plus one if the transfer starts on an odd
// cycle.
type OAMDMA struct {
	DMA hwio.Reg8 `hwio:"offset=0x14,writeonly,wcb"`

	page    uint8
	pending bool
}

func (dma *OAMDMA) initBus() {
	hwio.MustInitRegs(dma)
	dma.reset()
}

func (dma *OAMDMA) reset() {
	dma.page = 0
	dma.pending = false
}

func (dma *OAMDMA) WriteDMA(_, val uint8) {
	log.ModDMA.DebugZ("OAM DMA requested").Hex8("page", val).End()
	dma.page = val
	dma.pending = true
}

// process runs the pending transfer, if any.
func (dma *OAMDMA) process(cpu *CPU) {
	if !dma.pending {
		return
	}
	dma.pending = false

	stall := int64(513)
	if cpu.Cycles&1 == 1 {
		stall++
	}

	base := uint16(dma.page) << 8
	for i := range uint16(256) {
		val := cpu.read8(base + i)
		if cpu.PPU != nil {
			cpu.PPU.writeOAM(val)
		}
	}
	cpu.Cycles += stall

	log.ModDMA.DebugZ("OAM DMA done").
		Hex16("src", base).
		Int64("stall", stall).
		End()
}
