package hw

// loopy is the layout of the internal v and t VRAM address registers:
//
//	yyy NN YYYYY XXXXX
//	||| || ||||| +++++-- coarse X scroll
//	||| || +++++-------- coarse Y scroll
//	||| ++-------------- nametable select
//	+++----------------- fine Y scroll
type loopy uint16

func (l loopy) val() uint16       { return uint16(l) & 0x7FFF }
func (l loopy) addr() uint16      { return uint16(l) & 0x3FFF }
func (l loopy) coarsex() uint16   { return uint16(l) & 0x1F }
func (l loopy) coarsey() uint16   { return (uint16(l) >> 5) & 0x1F }
func (l loopy) nametable() uint16 { return (uint16(l) >> 10) & 0b11 }
func (l loopy) finey() uint16     { return (uint16(l) >> 12) & 0b111 }
func (l loopy) high() uint8       { return uint8(l.val() >> 8) }
func (l loopy) low() uint8        { return uint8(l) }

func (l *loopy) setCoarsex(v uint16) { *l = *l&^0x001F | loopy(v&0x1F) }
func (l *loopy) setCoarsey(v uint16) { *l = *l&^0x03E0 | loopy(v&0x1F)<<5 }
func (l *loopy) setNametable(v uint16) {
	*l = *l&^0x0C00 | loopy(v&0b11)<<10
}
func (l *loopy) setFiney(v uint16) { *l = *l&^0x7000 | loopy(v&0b111)<<12 }

// setHigh sets bits 8-13 and clears bit 14.
func (l *loopy) setHigh(v uint8) { *l = *l&0x00FF | loopy(v&0x3F)<<8 }
func (l *loopy) setLow(v uint8)  { *l = *l&0x7F00 | loopy(v) }

// incx increments coarse X, switching horizontal nametable on wrap.
func (l *loopy) incx() {
	if l.coarsex() == 31 {
		*l &^= 0x001F
		*l ^= 0x0400
		return
	}
	*l++
}

// incy increments fine Y, overflowing into coarse Y. Coarse Y wraps at 29,
// switching vertical nametable. 30 and 31 are out of bounds values which wrap
// to 0 without switching.
func (l *loopy) incy() {
	if l.finey() < 7 {
		*l += 0x1000
		return
	}
	*l &^= 0x7000
	y := l.coarsey()
	switch y {
	case 29:
		y = 0
		*l ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	l.setCoarsey(y)
}

// copyx copies the horizontal position bits from t.
func (l *loopy) copyx(t loopy) { *l = *l&0xFBE0 | t&0x041F }

// copyy copies the vertical position bits from t.
func (l *loopy) copyy(t loopy) { *l = *l&0x841F | t&0x7BE0 }
