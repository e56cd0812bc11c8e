package hw

// A Debugger monitors a CPU.
type Debugger interface {
	// Reset is called when the CPU is reset.
	Reset()

	// Trace is called before each opcode is executed. A debugger can stop the
	// CPU execution by making this function block until user interaction
	// finishes.
	Trace(pc uint16)

	// Interrupt is called after an interrupt has been serviced. prevpc is the
	// address of the instruction that was about to be executed, curpc is the
	// address of the interrupt handler.
	Interrupt(prevpc, curpc uint16, isNMI bool)

	// Break is called by the CPU core to force breaking into the debugger,
	// when the CPU halts for example.
	Break(msg string)

	// FrameEnd signals the debugger the end of the current frame.
	FrameEnd()
}
