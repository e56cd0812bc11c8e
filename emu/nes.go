package emu

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/hwdefs"
	"nescore/hw/mappers"
	"nescore/ines"
)

// NES is an emulation session. It owns every component of the console and
// steps them in lockstep: each CPU cycle is followed by 3 PPU dots.
type NES struct {
	CPU   *hw.CPU
	PPU   *hw.PPU
	Cart  *mappers.Cartridge
	Rom   *ines.Rom
	Lines *hw.Lines

	dbg hw.Debugger
}

// LoadCartridge decodes an iNES image and powers up a console with it.
func LoadCartridge(raw []byte) (*NES, error) {
	rom, err := ines.Decode(raw)
	if err != nil {
		return nil, err
	}
	return PowerUp(rom)
}

// PowerUp plugs rom into a new console and powers it up.
func PowerUp(rom *ines.Rom) (*NES, error) {
	lines := new(hw.Lines)
	ppu := hw.NewPPU(lines)
	ppu.InitBus()
	cpu := hw.NewCPU(ppu, lines)
	cpu.InitBus()

	cart, err := mappers.Load(rom, cpu, ppu)
	if err != nil {
		return nil, fmt.Errorf("power up: %w", err)
	}

	nes := &NES{
		CPU:   cpu,
		PPU:   ppu,
		Cart:  cart,
		Rom:   rom,
		Lines: lines,
	}
	nes.Reset(hwdefs.HardReset)

	log.ModEmu.InfoZ("cartridge loaded").
		String("mapper", cart.Name()).
		Stringer("mirroring", cart.Mirroring()).
		Hex16("reset", cpu.PC).
		End()
	return nes, nil
}

// Reset performs a soft (reset button) or hard (power cycle) reset. The PPU
// is clocked during the cycles the CPU spends resetting.
func (nes *NES) Reset(soft bool) {
	nes.PPU.Reset(soft)
	start := nes.CPU.Cycles
	if !soft {
		start = 0
	}
	nes.CPU.Reset(soft)
	nes.tickPPU(int(nes.CPU.Cycles - start))
}

func (nes *NES) tickPPU(cycles int) {
	for range cycles * 3 {
		nes.PPU.Tick()
	}
}

// StepInstruction runs one CPU instruction (or interrupt sequence) and
// clocks the PPU accordingly. It returns the number of CPU cycles consumed.
// Once the CPU has fetched an unimplemented opcode, it returns a
// *hw.UnimplementedOpcodeError and the session stays halted.
func (nes *NES) StepInstruction() (int, error) {
	if nes.Cart.IRQ() {
		nes.Lines.SetIRQ(hwdefs.External)
	} else {
		nes.Lines.ClearIRQ(hwdefs.External)
	}

	cycles, err := nes.CPU.Step()
	nes.tickPPU(cycles)
	if err != nil {
		log.ModEmu.WarnZ("cpu halted").Error("err", err).End()
	}
	return cycles, err
}

// RunFrame runs the console until the PPU completes a frame, that is until
// it enters vertical blank.
func (nes *NES) RunFrame() error {
	nes.PPU.TakeFrame()
	for !nes.PPU.TakeFrame() {
		if _, err := nes.StepInstruction(); err != nil {
			return err
		}
	}
	if nes.dbg != nil {
		nes.dbg.FrameEnd()
	}
	return nil
}

// FrameBuffer returns a copy of the last completed frame.
func (nes *NES) FrameBuffer() hw.Frame {
	return *nes.PPU.FrontFrame()
}

// FrameCount returns the number of frames since power up.
func (nes *NES) FrameCount() uint64 {
	return nes.PPU.Frame
}

// PlugInput connects dev to controller port (0 or 1).
func (nes *NES) PlugInput(port int, dev hw.InputDevice) {
	nes.CPU.Input.Plug(port, dev)
}

// SetTraceOutput enables the CPU execution trace, nil disables it.
func (nes *NES) SetTraceOutput(w io.Writer) {
	nes.CPU.SetTraceOutput(w)
}

// SetDebugger attaches dbg to the CPU, nil detaches it.
func (nes *NES) SetDebugger(dbg hw.Debugger) {
	nes.dbg = dbg
	nes.CPU.SetDebugger(dbg)
}
