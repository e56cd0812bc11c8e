package emu

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"nescore/hw"
)

func TestScaleImage(t *testing.T) {
	var frame hw.Frame
	frame[0] = 0x21                  // (0,0)
	frame[1*hw.ScreenWidth+2] = 0x16 // (2,1)
	img := frame.Image()

	scaled := scaleImage(img, 3)
	if b := scaled.Bounds(); b.Dx() != 3*hw.ScreenWidth || b.Dy() != 3*hw.ScreenHeight {
		t.Fatalf("scaled size = %dx%d", b.Dx(), b.Dy())
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, hw.Palette[0x21]},
		{2, 2, hw.Palette[0x21]},
		{3, 0, hw.Palette[0x00]},
		{6, 3, hw.Palette[0x16]},
		{8, 5, hw.Palette[0x16]},
		{9, 5, hw.Palette[0x00]},
	}
	for _, tt := range tests {
		if got := scaled.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if scaleImage(img, 1) != img {
		t.Errorf("scale 1 should return the same image")
	}
}

func TestPNGOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	out := NewPNGOutput(path, 2)

	if err := out.Close(); err == nil {
		t.Fatal("Close() without frames should fail")
	}

	var frame hw.Frame
	for i := range frame {
		frame[i] = 0x2A
	}
	if err := out.EndFrame(&frame); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 512 || b.Dy() != 480 {
		t.Errorf("image size = %dx%d, want 512x480", b.Dx(), b.Dy())
	}
	r, g, b, _ := img.At(300, 200).RGBA()
	want := hw.Palette[0x2A]
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(b>>8) != want.B {
		t.Errorf("pixel color = %d,%d,%d, want %v", r>>8, g>>8, b>>8, want)
	}
}
