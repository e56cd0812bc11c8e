package hwio

import (
	"fmt"
	"strings"

	"nescore/emu/log"
)

// RWFlags restricts the accesses allowed on a register or a device.
type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = 1 << 1
	WriteOnlyFlag RWFlags = 1 << 2
)

func (f RWFlags) readOnly() bool  { return f&ReadOnlyFlag != 0 }
func (f RWFlags) writeOnly() bool { return f&WriteOnlyFlag != 0 }

func dropWrite(kind, name string, addr uint16, val uint8) {
	log.ModHwIo.DebugZ("write to read-only " + kind + " ignored").
		String("name", name).
		Hex16("addr", addr).
		Hex8("val", val).
		End()
}

// Reg8 is an 8-bit register mapped at a single address (and its mirrors).
// Bits set in RoMask keep their value on writes.
type Reg8 struct {
	Name   string
	Value  uint8
	RoMask uint8
	Flags  RWFlags

	// Optional callbacks. Read and peek callbacks receive the current value
	// and return what the bus sees. WriteCb is called after Value is updated.
	ReadCb  func(val uint8) uint8
	PeekCb  func(val uint8) uint8
	WriteCb func(old uint8, val uint8)
}

func (reg *Reg8) Read8(uint16) uint8 {
	if reg.ReadCb == nil {
		return reg.Value
	}
	return reg.ReadCb(reg.Value)
}

func (reg *Reg8) Peek8(uint16) uint8 {
	if reg.PeekCb == nil {
		return reg.Value
	}
	return reg.PeekCb(reg.Value)
}

func (reg *Reg8) Write8(addr uint16, val uint8) {
	if reg.Flags.readOnly() {
		dropWrite("register", reg.Name, addr, val)
		return
	}
	old := reg.Value
	reg.Value = old&reg.RoMask | val&^reg.RoMask
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

// String returns the register name and value, followed by the list of
// installed callbacks, for example "PPUSTATUS=$A0[rp]".
func (reg Reg8) String() string {
	var cbs strings.Builder
	for _, cb := range []struct {
		set bool
		c   byte
	}{{reg.ReadCb != nil, 'r'}, {reg.PeekCb != nil, 'p'}, {reg.WriteCb != nil, 'w'}} {
		if cb.set {
			cbs.WriteByte(cb.c)
		}
	}
	s := fmt.Sprintf("%s=$%02X", reg.Name, reg.Value)
	if cbs.Len() != 0 {
		s += "[" + cbs.String() + "]"
	}
	return s
}

// Device maps a range of addresses to callbacks. Missing read or peek
// callbacks read as 0, a missing write callback ignores writes.
type Device struct {
	Name  string
	Size  int
	Flags RWFlags

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16) uint8 {
	if d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(addr)
}

func (d *Device) Peek8(addr uint16) uint8 {
	if d.PeekCb == nil {
		return 0
	}
	return d.PeekCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.Flags.readOnly() {
		dropWrite("device", d.Name, addr, val)
		return
	}
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}
