package debugger

import (
	"fmt"
	"slices"
)

// maxDepth bounds the call stack of programs that never return from their
// subroutines or interrupt handlers.
const maxDepth = 256

type frameKind uint8

const (
	subroutine frameKind = iota
	nmiHandler
	irqHandler
)

// callFrame is a routine being executed. from is the address of the
// instruction that entered it: the JSR, or the instruction that was
// interrupted.
type callFrame struct {
	from, entry uint16
	kind        frameKind
}

func (f callFrame) String() string {
	switch f.kind {
	case nmiHandler:
		return fmt.Sprintf("[nmi] $%04X", f.entry)
	case irqHandler:
		return fmt.Sprintf("[irq] $%04X", f.entry)
	}
	return fmt.Sprintf("$%04X", f.entry)
}

type callStack []callFrame

func (cs *callStack) push(f callFrame) {
	if len(*cs) == maxDepth {
		*cs = slices.Delete(*cs, 0, 1)
	}
	*cs = append(*cs, f)
}

// unwind removes the innermost subroutine frame, or interrupt handler frame
// if interrupt is set, along with all the frames above it. Nothing is
// removed when there's no such frame.
func (cs *callStack) unwind(interrupt bool) {
	for i := len(*cs) - 1; i >= 0; i-- {
		if ((*cs)[i].kind != subroutine) == interrupt {
			*cs = (*cs)[:i]
			return
		}
	}
}

func (cs *callStack) reset() { *cs = (*cs)[:0] }

// A Frame is an entry of a backtrace: the entry point of a routine, and the
// address being executed in it.
type Frame struct {
	Entry string
	PC    string
}

// build returns the backtrace, innermost frame first, pc being the address
// of the current instruction.
func (cs callStack) build(pc uint16) []Frame {
	bt := make([]Frame, 0, len(cs)+1)
	for i := len(cs); i >= 0; i-- {
		// Level i runs the routine entered by frame i-1. Outer levels are
		// stopped at the instruction that entered the next one.
		at := pc
		if i < len(cs) {
			at = cs[i].from
		}
		entry := "[bottom of stack]"
		if i > 0 {
			entry = cs[i-1].String()
		}
		bt = append(bt, Frame{Entry: entry, PC: fmt.Sprintf("$%04X", at)})
	}
	return bt
}
