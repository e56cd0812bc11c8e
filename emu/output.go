package emu

import (
	"fmt"
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"nescore/hw"
)

// An Output receives the frames produced by the emulator.
type Output interface {
	EndFrame(frame *hw.Frame) error
	Close() error
}

// DiscardOutput drops every frame.
type DiscardOutput struct{}

func (DiscardOutput) EndFrame(*hw.Frame) error { return nil }
func (DiscardOutput) Close() error             { return nil }

// PNGOutput keeps the last frame and writes it as a PNG file on Close.
type PNGOutput struct {
	Path  string
	Scale int // integer upscaling factor, 1 if 0.

	last   hw.Frame
	nframe int
}

func NewPNGOutput(path string, scale int) *PNGOutput {
	return &PNGOutput{Path: path, Scale: scale}
}

func (o *PNGOutput) EndFrame(frame *hw.Frame) error {
	o.last = *frame
	o.nframe++
	return nil
}

// Screenshot returns the last frame, scaled.
func (o *PNGOutput) Screenshot() *image.RGBA {
	return scaleImage(o.last.Image(), max(o.Scale, 1))
}

func (o *PNGOutput) Close() error {
	if o.nframe == 0 {
		return fmt.Errorf("no frame to save in %s", o.Path)
	}
	return SaveAsPNG(o.Screenshot(), o.Path)
}

// SaveAsPNG saves img as a PNG file at path.
func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("png encode: %w", err)
	}
	return f.Close()
}

// scaleImage upscales img by an integer factor (nearest neighbor).
func scaleImage(img *image.RGBA, scale int) *image.RGBA {
	if scale == 1 {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
