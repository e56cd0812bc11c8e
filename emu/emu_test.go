package emu

import (
	"context"
	"errors"
	"flag"
	"os"
	"testing"
	"time"

	"nescore/emu/log"
	"nescore/hw"
	"nescore/hw/input"
	"nescore/tests"
)

var romPath = flag.String("rom", "", "ROM file to load for BenchmarkRunFrame")

func TestEmulatorRun(t *testing.T) {
	nes := loadNES(t, backdropProg, 0)

	out := &recordOutput{}
	cfg := DefaultConfig()
	cfg.General.Frames = 5
	e := New(nes, out, cfg)
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(out.frames) != 5 {
		t.Fatalf("got %d frames, want 5", len(out.frames))
	}
	if !out.closed {
		t.Errorf("output not closed")
	}
	if out.frames[4].At(100, 100) != 0x21 {
		t.Errorf("pixel = $%02X, want $21", out.frames[4].At(100, 100))
	}
}

func TestEmulatorCancel(t *testing.T) {
	nes := loadNES(t, loopProg, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &recordOutput{}
	e := New(nes, out, DefaultConfig())
	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(out.frames) != 0 {
		t.Errorf("got %d frames, want 0", len(out.frames))
	}
	if !out.closed {
		t.Errorf("output not closed")
	}
}

func TestEmulatorStop(t *testing.T) {
	nes := loadNES(t, loopProg, 0)

	out := &recordOutput{}
	e := New(nes, out, DefaultConfig())

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	deadline := time.After(5 * time.Second)
	for e.Frames() < 3 {
		select {
		case <-deadline:
			t.Fatal("emulator did not run 3 frames")
		case <-time.After(time.Millisecond):
		}
	}
	e.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("emulator did not stop")
	}
	if got := int64(len(out.frames)); got != e.Frames() {
		t.Errorf("output got %d frames, emulator reports %d", got, e.Frames())
	}
}

func TestEmulatorPause(t *testing.T) {
	nes := loadNES(t, loopProg, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := &recordOutput{}
	e := New(nes, out, DefaultConfig())
	e.SetPause(true)
	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if len(out.frames) != 0 {
		t.Errorf("got %d frames while paused", len(out.frames))
	}
}

func TestEmulatorHalt(t *testing.T) {
	nes := loadNES(t, []byte{0x02}, 0)

	out := &recordOutput{}
	e := New(nes, out, DefaultConfig())
	err := e.Run(context.Background())
	if !errors.Is(err, hw.ErrUnimplementedOpcode) {
		t.Fatalf("Run() error = %v, want ErrUnimplementedOpcode", err)
	}
	if !out.closed {
		t.Errorf("output not closed")
	}
}

func TestEmulatorReset(t *testing.T) {
	nes := loadNES(t, loopProg, 0)

	cfg := DefaultConfig()
	cfg.General.Frames = 1
	e := New(nes, nil, cfg)
	e.Reset()
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nes.CPU.SP != 0xFA {
		t.Errorf("SP = $%02X, want $FA after a soft reset", nes.CPU.SP)
	}

	e.Restart()
	if err := e.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if nes.CPU.SP != 0xFD {
		t.Errorf("SP = $%02X, want $FD after a hard reset", nes.CPU.SP)
	}
}

func TestEmulatorInputScript(t *testing.T) {
	// Each NMI reads the A button of port 1 into $0000.
	prog := []byte{
		0xA9, 0x80,       // LDA #$80
		0x8D, 0x00, 0x20, // STA $2000
		0x4C, 0x05, 0x80, // JMP $8005
		// NMI handler
		0xA9, 0x01,       // LDA #$01
		0x8D, 0x16, 0x40, // STA $4016
		0xA9, 0x00,       // LDA #$00
		0x8D, 0x16, 0x40, // STA $4016
		0xAD, 0x16, 0x40, // LDA $4016
		0x29, 0x01,       // AND #$01
		0x85, 0x00,       // STA $00
		0x40,             // RTI
	}
	nes := loadNES(t, prog, 0x8008)

	cfg := DefaultConfig()
	cfg.Input.Events = []InputEvent{
		{Frame: 2, Port: 0, Buttons: input.Buttons(0).With(input.PadA), Hold: 2},
	}
	e := New(nes, nil, cfg)

	// The NMI handler of frame n runs at the beginning of frame n+1, with
	// the input of frame n+1.
	want := []uint8{0, 0, 1, 1, 0, 0}
	for i, w := range want {
		e.script.apply(int64(i))
		runFrames(t, nes, 1)
		if got := nes.CPU.Peek8(0x0000); got != w {
			t.Errorf("frame %d: A button = %d, want %d", i, got, w)
		}
	}
}

func BenchmarkRunFrame(b *testing.B) {
	log.Disable()
	b.ReportAllocs()

	raw := tests.NROMImage(backdropProg, 0).Bytes()
	if *romPath != "" {
		var err error
		if raw, err = os.ReadFile(*romPath); err != nil {
			b.Fatal(err)
		}
	}

	nes, err := LoadCartridge(raw)
	if err != nil {
		b.Fatal(err)
	}

	const nframes = 60

	start := time.Now()
	nloops := 0
	for b.Loop() {
		runFrames(b, nes, nframes)
		nloops++
	}
	fps := float64(nframes*nloops) / time.Since(start).Seconds()
	b.ReportMetric(fps, "frames/s")
}
