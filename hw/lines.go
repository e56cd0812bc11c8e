package hw

import "nescore/hw/hwdefs"

// Lines holds the state of the CPU interrupt lines. It's owned by the
// emulation session and shared between the CPU, which samples it at
// instruction boundaries, and the devices raising interrupts.
type Lines struct {
	nmiOut  bool // current level of the NMI output
	nmiEdge bool // an NMI rising edge occurred and wasn't serviced yet
	irq     hwdefs.IRQSource
}

// SetNMI sets the level of the NMI output. A low to high transition latches
// a pending NMI.
func (l *Lines) SetNMI(level bool) {
	if level && !l.nmiOut {
		l.nmiEdge = true
	}
	l.nmiOut = level
}

// NMIPending reports whether an NMI is waiting to be serviced.
func (l *Lines) NMIPending() bool { return l.nmiEdge }

func (l *Lines) takeNMI() bool {
	if !l.nmiEdge {
		return false
	}
	l.nmiEdge = false
	return true
}

func (l *Lines) SetIRQ(src hwdefs.IRQSource)   { l.irq |= src }
func (l *Lines) ClearIRQ(src hwdefs.IRQSource) { l.irq &^= src }

// IRQ returns the sources currently asserting the IRQ line.
func (l *Lines) IRQ() hwdefs.IRQSource { return l.irq }

// Reset releases all lines.
func (l *Lines) Reset() {
	*l = Lines{}
}
