package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// An InputDevice is a device plugged in one of the 2 controller ports. It
// behaves as a parallel-in serial-out shift register.
type InputDevice interface {
	// Strobe is called on each write to $4016 with bit 0 of the written
	// value. While the strobe is high the device continuously reloads its
	// shift register with its current state.
	Strobe(on bool)

	// Read returns the next serial bit in bit 0, and shifts.
	Read() uint8

	// Peek returns the next serial bit without shifting.
	Peek() uint8
}

// InputPorts handles I/O with the input devices plugged in the controller
// ports. Reads only drive bit 0, bits 5-7 come from the open bus.
type InputPorts struct {
	// $4016: strobe on writes, port 1 serial data on reads.
	JOY1 hwio.Reg8 `hwio:"offset=0x16,rcb,pcb,wcb"`

	// $4017: port 2 serial data on reads. Writes go to the APU frame counter
	// and are ignored.
	JOY2 hwio.Reg8 `hwio:"offset=0x17,rcb,pcb"`

	devs [2]InputDevice
	cpu  *CPU
}

func (ip *InputPorts) initBus(cpu *CPU) {
	hwio.MustInitRegs(ip)
	ip.cpu = cpu
}

// Plug connects dev to port (0 or 1). A nil dev unplugs the port.
func (ip *InputPorts) Plug(port int, dev InputDevice) {
	ip.devs[port] = dev
}

func (ip *InputPorts) openbus() uint8 {
	if ip.cpu == nil {
		return 0
	}
	return ip.cpu.openbus & 0xE0
}

func (ip *InputPorts) WriteJOY1(_, val uint8) {
	strobe := val&1 != 0
	log.ModInput.DebugZ("strobe").Bool("on", strobe).End()
	for _, dev := range ip.devs {
		if dev != nil {
			dev.Strobe(strobe)
		}
	}
}

func (ip *InputPorts) read(port int, peek bool) uint8 {
	var bit uint8
	if dev := ip.devs[port]; dev != nil {
		if peek {
			bit = dev.Peek()
		} else {
			bit = dev.Read()
		}
	}
	return ip.openbus() | bit&1
}

func (ip *InputPorts) ReadJOY1(uint8) uint8 { return ip.read(0, false) }
func (ip *InputPorts) PeekJOY1(uint8) uint8 { return ip.read(0, true) }
func (ip *InputPorts) ReadJOY2(uint8) uint8 { return ip.read(1, false) }
func (ip *InputPorts) PeekJOY2(uint8) uint8 { return ip.read(1, true) }
