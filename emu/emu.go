package emu

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"nescore/emu/log"
)

// Emulator runs an emulation session frame by frame, sending each frame to
// an Output and replaying scripted input.
type Emulator struct {
	NES *NES
	out Output
	cfg Config

	script *inputScript

	// These are accessed concurrently by the emulator loop and its
	// controllers.
	quit    atomic.Bool
	paused  atomic.Bool
	reset   atomic.Bool
	restart atomic.Bool
	frames  atomic.Int64 // frames run since creation
}

// New creates an emulator running nes. A nil out discards the frames.
func New(nes *NES, out Output, cfg Config) *Emulator {
	cfg.Check()
	if out == nil {
		out = DiscardOutput{}
	}

	e := &Emulator{
		NES:    nes,
		out:    out,
		cfg:    cfg,
		script: newInputScript(cfg.Input.Events),
	}
	e.script.plug(nes)

	if cfg.TraceOut != nil {
		nes.SetTraceOutput(cfg.TraceOut)
	}
	return e
}

// Launch powers up a console with the iNES image raw and creates an
// emulator for it.
func Launch(raw []byte, out Output, cfg Config) (*Emulator, error) {
	nes, err := LoadCartridge(raw)
	if err != nil {
		return nil, err
	}
	return New(nes, out, cfg), nil
}

// Run runs the emulation loop until the frame limit is reached, ctx is
// canceled, Stop is called or the CPU halts. The output is closed when the loop exits, only
// a CPU halt is reported as an error.
func (e *Emulator) Run(ctx context.Context) error {
	err := e.loop(ctx)
	log.ModEmu.InfoZ("Emulation loop exited").
		Uint64("frames", e.NES.FrameCount()).
		Int64("cycles", e.NES.CPU.Cycles).
		End()

	if cerr := e.out.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("output: %w", cerr)
	}
	return err
}

func (e *Emulator) loop(ctx context.Context) error {
	var nframes int64
	for e.cfg.General.Frames == 0 || nframes < e.cfg.General.Frames {
		if ctx.Err() != nil || e.quit.Load() {
			return nil
		}

		// Handle pause.
		if e.paused.Load() {
			// Don't burn cpu while paused.
			select {
			case <-ctx.Done():
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		e.script.apply(nframes)
		if err := e.NES.RunFrame(); err != nil {
			return err
		}

		frame := e.NES.PPU.FrontFrame()
		if err := e.out.EndFrame(frame); err != nil {
			return fmt.Errorf("output: %w", err)
		}
		nframes++
		e.frames.Add(1)

		e.handleReset()
	}
	return nil
}

// SetPause, Reset, Restart and Stop allows to control
// the emulator loop in a concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.Store(pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Restart()            { e.restart.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

// Frames returns the number of frames run by the emulator.
func (e *Emulator) Frames() int64 { return e.frames.Load() }

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing soft reset").End()
		e.NES.Reset(true)
	} else if e.restart.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("Performing hard reset").End()
		e.NES.Reset(false)
	}
}
