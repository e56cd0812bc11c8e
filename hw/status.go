package hw

// P is the processor status register.
type P uint8

// Status flags.
const (
	Carry P = 1 << iota
	Zero
	IntDisable
	Decimal
	Break
	Unused
	Overflow
	Negative
)

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := range 8 {
		ibit := (uint8(p) >> (7 - i)) & 1
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}

func (p P) has(flag P) bool { return p&flag != 0 }

func (p *P) set(flag P, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

func (p P) carry() bool      { return p.has(Carry) }
func (p P) zero() bool       { return p.has(Zero) }
func (p P) intDisable() bool { return p.has(IntDisable) }
func (p P) overflow() bool   { return p.has(Overflow) }
func (p P) negative() bool   { return p.has(Negative) }

// checkNZ sets Z if v is zero and N if bit 7 of v is set, clears them
// otherwise.
func (p *P) checkNZ(v uint8) {
	p.set(Negative, v&0x80 != 0)
	p.set(Zero, v == 0)
}

// checkCV sets C and V from the 9-bit result of x + y (+ carry).
func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	p.set(Carry, sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	p.set(Overflow, v != 0)
}

// pushed returns the value of P as it's pushed on the stack: the unused bit
// is always set, B is set for BRK and PHP only.
func (p P) pushed(brk bool) uint8 {
	v := p | Unused
	v.set(Break, brk)
	return uint8(v)
}

// pulled returns the value of P as restored from the stack by PLP and RTI.
func pulled(v uint8) P {
	p := P(v) | Unused
	p.set(Break, false)
	return p
}
