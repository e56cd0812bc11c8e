package rpc

import (
	"sync"
	"testing"
)

type fakeEmu struct {
	mu                      sync.Mutex
	resets, restarts, stops int
	paused                  bool
	frames                  int64
}

func (f *fakeEmu) Reset()   { f.mu.Lock(); f.resets++; f.mu.Unlock() }
func (f *fakeEmu) Restart() { f.mu.Lock(); f.restarts++; f.mu.Unlock() }
func (f *fakeEmu) Stop()    { f.mu.Lock(); f.stops++; f.mu.Unlock() }

func (f *fakeEmu) SetPause(pause bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = pause
}

func (f *fakeEmu) Frames() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func TestClientServer(t *testing.T) {
	emu := &fakeEmu{frames: 42}
	srv, err := NewServer("localhost:0", emu)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	c, err := Dial(srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	check := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	check(c.Reset())
	check(c.Reset())
	check(c.Restart())
	check(c.SetPause(true))
	check(c.Stop())

	n, err := c.Frames()
	check(err)
	if n != 42 {
		t.Errorf("Frames() = %d, want 42", n)
	}

	emu.mu.Lock()
	defer emu.mu.Unlock()
	if emu.resets != 2 || emu.restarts != 1 || emu.stops != 1 || !emu.paused {
		t.Errorf("unexpected emulator state: resets=%d restarts=%d stops=%d paused=%t",
			emu.resets, emu.restarts, emu.stops, emu.paused)
	}
}

func TestDialError(t *testing.T) {
	srv, err := NewServer("localhost:0", &fakeEmu{})
	if err != nil {
		t.Fatal(err)
	}
	addr := srv.Addr().String()
	srv.Close()

	if _, err := Dial(addr); err == nil {
		t.Fatal("Dial() should fail once the server is closed")
	}
}
