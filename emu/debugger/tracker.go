// Package debugger follows the execution of the CPU to keep track of the
// call stack of the emulated program, so that a backtrace can be shown when
// the CPU halts.
package debugger

import (
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw"
)

// A Tracker is a hw.Debugger that maintains the program call stack from the
// subroutine calls and returns, and the interrupts.
type Tracker struct {
	cpu *hw.CPU

	prevPC     uint16
	prevOpcode uint8
	resetPC    uint16

	frames uint64 // number of completed frames
	halt   string // reason of the CPU halt, if any

	cstack callStack
}

func NewTracker(cpu *hw.CPU) *Tracker {
	return &Tracker{
		cpu:        cpu,
		prevOpcode: 0xFF,
	}
}

func (t *Tracker) Reset() {
	// PC has been read at the reset vector.
	t.resetPC = t.cpu.PC
	t.prevOpcode = 0xFF
	t.halt = ""
	t.cstack.reset()
}

// Trace is called before each opcode is executed.
func (t *Tracker) Trace(pc uint16) {
	t.updateStack(pc)
	t.prevPC = pc
	t.prevOpcode = t.cpu.Peek8(pc)
}

func (t *Tracker) updateStack(dstPc uint16) {
	switch t.prevOpcode {
	case 0x20: // JSR
		t.cstack.push(callFrame{from: t.prevPC, entry: dstPc})
	case 0x60: // RTS
		t.cstack.unwind(false)
	case 0x40: // RTI
		t.cstack.unwind(true)
	}
}

func (t *Tracker) Interrupt(prevpc, curpc uint16, isNMI bool) {
	kind := irqHandler
	if isNMI {
		kind = nmiHandler
	}
	t.updateStack(prevpc)
	t.prevOpcode = 0xFF

	t.cstack.push(callFrame{from: prevpc, entry: curpc, kind: kind})
}

func (t *Tracker) Break(msg string) {
	t.halt = msg
	log.ModEmu.DebugZ("debugger break").String("msg", msg).Int("depth", len(t.cstack)).End()
}

func (t *Tracker) FrameEnd() { t.frames++ }

// Backtrace returns the call stack, innermost frame first.
func (t *Tracker) Backtrace() []Frame {
	return t.cstack.build(t.cpu.PC)
}

// WriteBacktrace writes a human readable backtrace into w.
func (t *Tracker) WriteBacktrace(w io.Writer) error {
	if t.halt != "" {
		if _, err := fmt.Fprintf(w, "CPU halted: %s\n", t.halt); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "frame %d, reset vector $%04X\n", t.frames, t.resetPC); err != nil {
		return err
	}
	for i, f := range t.Backtrace() {
		if _, err := fmt.Fprintf(w, "#%-2d %-20s %s\n", i, f.Entry, f.PC); err != nil {
			return err
		}
	}
	return nil
}
