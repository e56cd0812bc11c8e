package hw

import "fmt"

// DisasmOp is a disassembled instruction.
type DisasmOp struct {
	Opcode string // mnemonic
	Oper   string // formatted operand
	Buf    []byte // instruction bytes
	PC     uint16
}

// String returns the disassembly as shown in the execution trace, padded to
// the registers column.
func (d DisasmOp) String() string {
	return string(d.appendTo(nil))
}

// Disasm disassembles the instruction at pc. It has no side effects on the
// bus.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.Bus.Peek8(pc)
	desc := opcodes[opcode]
	if !desc.Valid() {
		return DisasmOp{
			Opcode: "???",
			Buf:    []byte{opcode},
			PC:     pc,
		}
	}

	buf := make([]byte, 1+desc.Mode.operandSize())
	for i := range buf {
		buf[i] = c.Bus.Peek8(pc + uint16(i))
	}

	var (
		oper string
		arg8 uint8
		arg  uint16
	)
	if len(buf) > 1 {
		arg8 = buf[1]
		arg = uint16(buf[1])
	}
	if len(buf) > 2 {
		arg |= uint16(buf[2]) << 8
	}

	switch desc.Mode {
	case Accumulator:
		oper = "A"
	case Immediate:
		oper = fmt.Sprintf("#$%02X", arg8)
	case ZeroPage:
		oper = fmt.Sprintf("$%02X", arg8)
	case ZeroPageX:
		oper = fmt.Sprintf("$%02X,X", arg8)
	case ZeroPageY:
		oper = fmt.Sprintf("$%02X,Y", arg8)
	case Absolute:
		oper = formatAddr(arg)
	case AbsoluteX:
		oper = formatAddr(arg) + ",X"
	case AbsoluteY:
		oper = formatAddr(arg) + ",Y"
	case Indirect:
		oper = fmt.Sprintf("($%04X)", arg)
	case IndirectX:
		oper = fmt.Sprintf("($%02X,X)", arg8)
	case IndirectY:
		oper = fmt.Sprintf("($%02X),Y", arg8)
	case Relative:
		oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(arg8)))
	}

	return DisasmOp{
		Opcode: desc.Op.String(),
		Oper:   oper,
		Buf:    buf,
		PC:     pc,
	}
}

var addressLabels = map[uint16]string{
	0x2000: "PpuControl_2000",
	0x2001: "PpuMask_2001",
	0x2002: "PpuStatus_2002",
	0x2003: "OamAddr_2003",
	0x2004: "OamData_2004",
	0x2005: "PpuScroll_2005",
	0x2006: "PpuAddr_2006",
	0x2007: "PpuData_2007",
	0x4014: "SpriteDma_4014",
	0x4016: "Ctrl1_4016",
	0x4017: "Ctrl2_FrameCtr_4017",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
