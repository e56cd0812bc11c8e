package hw

import (
	"errors"
	"fmt"
	"io"

	"nescore/emu/log"
	"nescore/hw/hwio"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// ErrUnimplementedOpcode is the sentinel wrapped by UnimplementedOpcodeError.
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")

// UnimplementedOpcodeError is returned by CPU.Step when the opcode at PC is not
// one of the official 6502 opcodes. The CPU is then halted.
type UnimplementedOpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode $%02X at $%04X", e.Opcode, e.PC)
}

func (e *UnimplementedOpcodeError) Unwrap() error { return ErrUnimplementedOpcode }

type CPU struct {
	Bus *hwio.Table

	RAM hwio.Mem `hwio:"bank=0,offset=0x0,size=0x800,vsize=0x2000"`

	PPU   *PPU // non-nil when there's a PPU.
	DMA   OAMDMA
	Input InputPorts

	// Interrupt lines, shared with the devices that can raise interrupts.
	Lines *Lines

	// Non-nil when execution tracing is enabled.
	tracer *tracer
	dbg    Debugger

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	// last value driven on the data bus.
	openbus uint8

	halted *UnimplementedOpcodeError
}

// NewCPU creates a new CPU at power-up state. If lines is nil, the CPU gets
// its own interrupt lines.
func NewCPU(ppu *PPU, lines *Lines) *CPU {
	if lines == nil {
		lines = new(Lines)
	}
	cpu := &CPU{
		Bus:   hwio.NewTable("cpu"),
		PPU:   ppu,
		Lines: lines,
		SP:    0xFD,
		P:     IntDisable | Unused,
		dbg:   nopDebugger{},
	}
	cpu.Bus.Unmapped = &openBus{cpu: cpu}
	return cpu
}

// Reset performs a soft (reset button) or hard (power cycle) reset. In both
// cases the CPU spends 7 cycles, decrements the stack pointer by 3 without
// writing to the stack and jumps to the address found at the reset vector.
func (c *CPU) Reset(soft bool) {
	if !soft {
		c.A = 0x00
		c.X = 0x00
		c.Y = 0x00
		c.SP = 0x00
		c.P = Unused
		c.Cycles = 0
		c.openbus = 0
		clear(c.RAM.Data)
	}

	c.SP -= 3
	c.P.set(IntDisable, true)
	c.halted = nil
	c.DMA.reset()
	c.Lines.Reset()

	c.PC = hwio.Read16(c.Bus, ResetVector)
	c.Cycles += 7
	c.dbg.Reset()
}

// Halted returns the error that halted the CPU, or nil if the CPU is running.
func (c *CPU) Halted() error {
	if c.halted == nil {
		return nil
	}
	return c.halted
}

// Step runs the next instruction, or services a pending interrupt, then
// a pending OAM DMA transfer. It returns the number of CPU cycles consumed.
func (c *CPU) Step() (int, error) {
	if c.halted != nil {
		return 0, c.halted
	}

	start := c.Cycles
	switch {
	case c.Lines.takeNMI():
		c.interrupt(NMIVector, true)
	case c.Lines.IRQ() != 0 && !c.P.intDisable():
		c.interrupt(IRQVector, false)
	default:
		c.traceOp()
		if err := c.execute(); err != nil {
			return int(c.Cycles - start), err
		}
	}

	c.DMA.process(c)
	return int(c.Cycles - start), nil
}

func (c *CPU) traceOp() {
	if c.tracer != nil {
		state := cpuState{
			A:     c.A,
			X:     c.X,
			Y:     c.Y,
			P:     c.P,
			SP:    c.SP,
			Clock: c.Cycles,
			PC:    c.PC,
		}
		if c.PPU != nil {
			state.PPUCycle = c.PPU.Dot
			state.Scanline = c.PPU.Scanline
		}
		c.tracer.write(state)
	}

	c.dbg.Trace(c.PC)
}

func (c *CPU) halt(pc uint16, opcode uint8) error {
	c.halted = &UnimplementedOpcodeError{PC: pc, Opcode: opcode}
	log.ModCPU.WarnZ("CPU halted").
		Hex16("PC", pc).
		Hex8("opcode", opcode).
		End()
	c.dbg.Break(c.halted.Error())
	return c.halted
}

func (c *CPU) read8(addr uint16) uint8 {
	c.openbus = c.Bus.Read8(addr)
	return c.openbus
}

func (c *CPU) write8(addr uint16, val uint8) {
	c.openbus = val
	c.Bus.Write8(addr, val)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// read16zp reads a 16-bit pointer from the zero page, wrapping around at
// $FF.
func (c *CPU) read16zp(addr uint8) uint16 {
	lo := c.read8(uint16(addr))
	hi := c.read8(uint16(addr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := uint16(c.SP) + 0x0100
	c.write8(top, val)
	c.SP -= 1
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := uint16(c.SP) + 0x0100
	return c.read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt handling */

func (c *CPU) interrupt(vector uint16, isNMI bool) {
	prevpc := c.PC
	c.push16(c.PC)
	c.push8(c.P.pushed(false))
	c.P.set(IntDisable, true)
	c.PC = c.read16(vector)
	c.Cycles += 7
	c.dbg.Interrupt(prevpc, c.PC, isNMI)
}

/* tracing / debugging */

func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

func (c *CPU) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

type nopDebugger struct{}

func (nopDebugger) Reset()                                     {}
func (nopDebugger) Trace(pc uint16)                            {}
func (nopDebugger) Interrupt(prevpc, curpc uint16, isNMI bool) {}
func (nopDebugger) Break(msg string)                           {}
func (nopDebugger) FrameEnd()                                  {}
