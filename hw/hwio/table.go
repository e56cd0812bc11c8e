package hwio

import (
	"fmt"

	"nescore/emu/log"
)

// log unmapped accesses (useful for debugging but verbose on NES since many
// games read from open bus)
const logUnmapped = false

type BankIO8 interface {
	Read8(addr uint16) uint8
	// Peek8 reads a byte without side effects (debugging/tracing).
	Peek8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr)
	hi := b.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Table is a 16-bit address space where each address is routed to the
// BankIO8 mapped there.
type Table struct {
	Name string

	// Unmapped handles accesses to addresses where nothing is mapped, and
	// reads of write-only registers. When nil, such reads return 0.
	Unmapped BankIO8

	table8 [0x10000]BankIO8
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	return t
}

// Map a register bank (that is, a structure containing mulitple Reg8, Mem or
// Device fields). For this function to work, registers must have a struct tag
// "hwio", containing the following fields:
//
//	offset=0x12     Byte-offset within the register bank at which this
//	                register is mapped. There is no default value: if this
//	                option is missing, the register is assumed not to be
//	                part of the bank, and is ignored by this call.
//
//	bank=NN         Ordinal bank number (if not specified, default to zero).
//	                This option allows for a structure to expose multiple
//	                banks, as regs can be grouped by bank by specified the
//	                bank number.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Device:
			t.MapDevice(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) UnmapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}

	for _, reg := range regs {
		begin := addr + reg.offset
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.Unmap(begin, begin+uint16(r.VSize-1))
		case *Reg8:
			t.Unmap(begin, begin)
		case *Device:
			t.Unmap(begin, begin+uint16(r.Size-1))
		default:
			panic(fmt.Errorf("invalid reg type: %T", r))
		}
	}
}

func (t *Table) mapBus8(addr uint16, size int, io BankIO8) {
	if size <= 0 || int(addr)+size > len(t.table8) {
		panic(fmt.Errorf("%s: invalid mapping at %04X (size %d)", t.Name, addr, size))
	}
	for i := range size {
		t.table8[int(addr)+i] = io
	}
}

func (t *Table) MapReg8(addr uint16, io *Reg8) {
	if io.Flags.writeOnly() {
		t.mapBus8(addr, 1, &writeOnly{BankIO8: io, t: t})
		return
	}
	t.mapBus8(addr, 1, io)
}

func (t *Table) MapDevice(addr uint16, io *Device) {
	if io.Flags.writeOnly() {
		t.mapBus8(addr, io.Size, &writeOnly{BankIO8: io, t: t})
		return
	}
	t.mapBus8(addr, io.Size, io)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	log.ModHwIo.DebugZ("mapping mem").
		Hex16("addr", addr).
		Hex16("size", uint16(mem.VSize)).
		String("area", mem.Name).
		String("bus", t.Name).
		End()

	t.mapBus8(addr, mem.VSize, mem.BankIO8())
}

// MapMemorySlice maps mem in [addr, end], mirroring it if the slice is smaller
// than the range. Since addresses are masked, addr must be aligned on the
// slice length.
func (t *Table) MapMemorySlice(addr, end uint16, mem []uint8, readonly bool) {
	log.ModHwIo.DebugZ("mapping slice").
		Hex16("addr", addr).
		Hex16("end", end).
		String("bus", t.Name).
		Bool("ro", readonly).
		End()

	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Data:  mem,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

// Unmap removes all mappings in [begin, end].
func (t *Table) Unmap(begin, end uint16) {
	for i := int(begin); i <= int(end); i++ {
		t.table8[i] = nil
	}
}

// Read8 forwards the read to the device mapped at the given address.
func (t *Table) Read8(addr uint16) uint8 {
	io := t.table8[addr]
	if io == nil {
		return t.readUnmapped(addr)
	}
	return io.Read8(addr)
}

func (t *Table) readUnmapped(addr uint16) uint8 {
	if logUnmapped {
		log.ModHwIo.ErrorZ("unmapped Read8").
			String("name", t.Name).
			Hex16("addr", addr).
			End()
	}
	if t.Unmapped != nil {
		return t.Unmapped.Read8(addr)
	}
	return 0
}

func (t *Table) peekUnmapped(addr uint16) uint8 {
	if t.Unmapped != nil {
		return t.Unmapped.Peek8(addr)
	}
	return 0
}

// Peek8 reads the given address without side effects.
func (t *Table) Peek8(addr uint16) uint8 {
	io := t.table8[addr]
	if io == nil {
		return t.peekUnmapped(addr)
	}
	return io.Peek8(addr)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.table8[addr]
	if io == nil {
		if logUnmapped {
			log.ModHwIo.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		if t.Unmapped != nil {
			t.Unmapped.Write8(addr, val)
		}
		return
	}
	io.Write8(addr, val)
}

// writeOnly routes reads of write-only registers and devices to the table
// Unmapped handler.
type writeOnly struct {
	BankIO8
	t *Table
}

func (wo *writeOnly) Read8(addr uint16) uint8 { return wo.t.readUnmapped(addr) }
func (wo *writeOnly) Peek8(addr uint16) uint8 { return wo.t.peekUnmapped(addr) }
