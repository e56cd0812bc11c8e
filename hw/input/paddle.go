package input

import "sync/atomic"

// Paddle is a standard NES controller. Its button state can be updated from
// any goroutine, while the console reads it through the hw.InputDevice
// methods.
type Paddle struct {
	state atomic.Uint32 // current Buttons

	shift  uint8
	strobe bool
}

// SetButtons sets the buttons currently pressed.
func (p *Paddle) SetButtons(b Buttons) {
	p.state.Store(uint32(b))
}

// Buttons returns the buttons currently pressed.
func (p *Paddle) Buttons() Buttons {
	return Buttons(p.state.Load())
}

func (p *Paddle) Strobe(on bool) {
	p.strobe = on
	if on {
		p.shift = uint8(p.Buttons())
	}
}

func (p *Paddle) Read() uint8 {
	if p.strobe {
		p.shift = uint8(p.Buttons())
		return p.shift & 1
	}

	ret := p.shift & 1
	// After 8 bits are read, all subsequent bits will report 1 on a standard
	// NES controller.
	p.shift = p.shift>>1 | 0x80
	return ret
}

func (p *Paddle) Peek() uint8 {
	if p.strobe {
		return uint8(p.Buttons()) & 1
	}
	return p.shift & 1
}
