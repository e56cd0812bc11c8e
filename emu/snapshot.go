package emu

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/snapshot"
)

// SaveState writes the state of the console into w. The state of the
// rendering pipeline isn't saved: call it between frames (after RunFrame) for
// the state to be restored exactly.
func (nes *NES) SaveState(w io.Writer) error {
	s := &snapshot.NES{
		Version: snapshot.Version,
		CPU:     *nes.CPU.State(),
		PPU:     *nes.PPU.State(),
		Cart:    *nes.Cart.State(),
	}
	nes.CPU.SaveRAM(&s.RAM)

	if err := snapshot.Encode(w, s); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// LoadState restores a state saved with SaveState. The console is left
// untouched if the state can't be decoded or doesn't match the cartridge.
func (nes *NES) LoadState(r io.Reader) error {
	s, err := snapshot.Decode(r)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if err := nes.Cart.SetState(&s.Cart); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	nes.CPU.SetState(&s.CPU)
	nes.CPU.LoadRAM(&s.RAM)
	nes.PPU.SetState(&s.PPU)

	log.ModEmu.InfoZ("state loaded").
		Hex16("pc", nes.CPU.PC).
		Uint64("frame", nes.PPU.Frame).
		End()
	return nil
}
