package hw

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// execute fetches, decodes and executes the instruction at PC.
func (c *CPU) execute() error {
	pc := c.PC
	opcode := c.read8(pc)
	desc := opcodes[opcode]
	if !desc.Valid() {
		return c.halt(pc, opcode)
	}

	c.PC++
	c.Cycles += int64(desc.Cycles)

	if desc.Op == JSR {
		c.jsr()
		return nil
	}

	addr, crossed := c.operand(desc.Mode)
	if crossed && desc.Op.pageCrossPenalty() {
		c.Cycles++
	}
	c.exec(desc.Op, desc.Mode, addr)
	return nil
}

// operand resolves the effective address of the operand and advances PC past
// it. crossed reports whether indexing crossed a page boundary.
func (c *CPU) operand(mode AddrMode) (addr uint16, crossed bool) {
	switch mode {
	case Implied, Accumulator:
		// dummy read of the next byte.
		_ = c.read8(c.PC)
	case Immediate:
		addr = c.PC
		c.PC++
	case ZeroPage:
		addr = uint16(c.read8(c.PC))
		c.PC++
	case ZeroPageX:
		addr = uint16(c.read8(c.PC) + c.X)
		c.PC++
	case ZeroPageY:
		addr = uint16(c.read8(c.PC) + c.Y)
		c.PC++
	case Absolute:
		addr = c.read16(c.PC)
		c.PC += 2
	case AbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		crossed = pagesDiffer(base, addr)
	case AbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case Indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		// The high byte is fetched without carry into the pointer high
		// byte: JMP ($12FF) reads $12FF and $1200.
		lo := c.read8(ptr)
		hi := c.read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		addr = uint16(hi)<<8 | uint16(lo)
	case IndirectX:
		zp := c.read8(c.PC) + c.X
		c.PC++
		addr = c.read16zp(zp)
	case IndirectY:
		zp := c.read8(c.PC)
		c.PC++
		base := c.read16zp(zp)
		addr = base + uint16(c.Y)
		crossed = pagesDiffer(base, addr)
	case Relative:
		off := int8(c.read8(c.PC))
		c.PC++
		addr = c.PC + uint16(off)
	}
	return addr, crossed
}

func (c *CPU) exec(op Op, mode AddrMode, addr uint16) {
	switch op {
	// loads and stores
	case LDA:
		c.A = c.read8(addr)
		c.P.checkNZ(c.A)
	case LDX:
		c.X = c.read8(addr)
		c.P.checkNZ(c.X)
	case LDY:
		c.Y = c.read8(addr)
		c.P.checkNZ(c.Y)
	case STA:
		c.write8(addr, c.A)
	case STX:
		c.write8(addr, c.X)
	case STY:
		c.write8(addr, c.Y)

	// register transfers
	case TAX:
		c.X = c.A
		c.P.checkNZ(c.X)
	case TAY:
		c.Y = c.A
		c.P.checkNZ(c.Y)
	case TSX:
		c.X = c.SP
		c.P.checkNZ(c.X)
	case TXA:
		c.A = c.X
		c.P.checkNZ(c.A)
	case TXS:
		c.SP = c.X
	case TYA:
		c.A = c.Y
		c.P.checkNZ(c.A)

	// arithmetic and logic
	case ADC:
		c.adc(c.read8(addr))
	case SBC:
		c.adc(^c.read8(addr))
	case AND:
		c.A &= c.read8(addr)
		c.P.checkNZ(c.A)
	case ORA:
		c.A |= c.read8(addr)
		c.P.checkNZ(c.A)
	case EOR:
		c.A ^= c.read8(addr)
		c.P.checkNZ(c.A)
	case BIT:
		val := c.read8(addr)
		c.P.set(Zero, c.A&val == 0)
		c.P.set(Overflow, val&0x40 != 0)
		c.P.set(Negative, val&0x80 != 0)
	case CMP:
		c.compare(c.A, c.read8(addr))
	case CPX:
		c.compare(c.X, c.read8(addr))
	case CPY:
		c.compare(c.Y, c.read8(addr))

	// increments, decrements and shifts
	case INC:
		c.rmw(mode, addr, (*CPU).inc)
	case DEC:
		c.rmw(mode, addr, (*CPU).dec)
	case ASL:
		c.rmw(mode, addr, (*CPU).asl)
	case LSR:
		c.rmw(mode, addr, (*CPU).lsr)
	case ROL:
		c.rmw(mode, addr, (*CPU).rol)
	case ROR:
		c.rmw(mode, addr, (*CPU).ror)
	case INX:
		c.X++
		c.P.checkNZ(c.X)
	case INY:
		c.Y++
		c.P.checkNZ(c.Y)
	case DEX:
		c.X--
		c.P.checkNZ(c.X)
	case DEY:
		c.Y--
		c.P.checkNZ(c.Y)

	// branches
	case BCC:
		c.branch(!c.P.carry(), addr)
	case BCS:
		c.branch(c.P.carry(), addr)
	case BNE:
		c.branch(!c.P.zero(), addr)
	case BEQ:
		c.branch(c.P.zero(), addr)
	case BPL:
		c.branch(!c.P.negative(), addr)
	case BMI:
		c.branch(c.P.negative(), addr)
	case BVC:
		c.branch(!c.P.overflow(), addr)
	case BVS:
		c.branch(c.P.overflow(), addr)

	// jumps and subroutines
	case JMP:
		c.PC = addr
	case RTS:
		_ = c.read8(0x100 | uint16(c.SP))
		c.PC = c.pull16()
		_ = c.read8(c.PC)
		c.PC++
	case RTI:
		_ = c.read8(0x100 | uint16(c.SP))
		c.P = pulled(c.pull8())
		c.PC = c.pull16()
	case BRK:
		c.brk()

	// stack
	case PHA:
		c.push8(c.A)
	case PHP:
		c.push8(c.P.pushed(true))
	case PLA:
		_ = c.read8(0x100 | uint16(c.SP))
		c.A = c.pull8()
		c.P.checkNZ(c.A)
	case PLP:
		_ = c.read8(0x100 | uint16(c.SP))
		c.P = pulled(c.pull8())

	// flags
	case CLC:
		c.P.set(Carry, false)
	case SEC:
		c.P.set(Carry, true)
	case CLI:
		c.P.set(IntDisable, false)
	case SEI:
		c.P.set(IntDisable, true)
	case CLV:
		c.P.set(Overflow, false)
	case CLD:
		c.P.set(Decimal, false)
	case SED:
		c.P.set(Decimal, true)

	case NOP:
	}
}

// adc adds val and carry to A. The 2A03 has no decimal mode, D is ignored.
func (c *CPU) adc(val uint8) {
	var carry uint16
	if c.P.carry() {
		carry = 1
	}
	sum := uint16(c.A) + uint16(val) + carry
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.set(Carry, reg >= val)
	c.P.checkNZ(reg - val)
}

// rmw performs a read-modify-write operation, either on A or on memory. The
// unmodified value is written back before the result, like the real CPU
// does.
func (c *CPU) rmw(mode AddrMode, addr uint16, f func(*CPU, uint8) uint8) {
	if mode == Accumulator {
		c.A = f(c, c.A)
		return
	}
	val := c.read8(addr)
	c.write8(addr, val)
	c.write8(addr, f(c, val))
}

func (c *CPU) inc(val uint8) uint8 {
	val++
	c.P.checkNZ(val)
	return val
}

func (c *CPU) dec(val uint8) uint8 {
	val--
	c.P.checkNZ(val)
	return val
}

func (c *CPU) asl(val uint8) uint8 {
	c.P.set(Carry, val&0x80 != 0)
	val <<= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) lsr(val uint8) uint8 {
	c.P.set(Carry, val&0x01 != 0)
	val >>= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rol(val uint8) uint8 {
	carry := uint8(0)
	if c.P.carry() {
		carry = 1
	}
	c.P.set(Carry, val&0x80 != 0)
	val = val<<1 | carry
	c.P.checkNZ(val)
	return val
}

func (c *CPU) ror(val uint8) uint8 {
	carry := uint8(0)
	if c.P.carry() {
		carry = 0x80
	}
	c.P.set(Carry, val&0x01 != 0)
	val = val>>1 | carry
	c.P.checkNZ(val)
	return val
}

// branch jumps to target if cond is true. A taken branch costs one more cycle,
// and another one if the target is on a different page.
func (c *CPU) branch(cond bool, target uint16) {
	if !cond {
		return
	}
	c.Cycles++
	if pagesDiffer(c.PC, target) {
		c.Cycles++
	}
	c.PC = target
}

func (c *CPU) jsr() {
	lo := c.read8(c.PC)
	c.PC++
	_ = c.read8(0x100 | uint16(c.SP))
	c.push16(c.PC)
	hi := c.read8(c.PC)
	c.PC = uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) brk() {
	// the byte following BRK is skipped, its operand has been read as a dummy
	// read by the implied addressing mode.
	c.push16(c.PC + 1)
	c.push8(c.P.pushed(true))
	c.P.set(IntDisable, true)
	c.PC = c.read16(IRQVector)
}
