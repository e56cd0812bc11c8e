package hw

import (
	"errors"
	"testing"

	"nescore/hw/hwdefs"
)

func TestPflag(t *testing.T) {
	p := P(0x40)
	p.set(IntDisable, true)
	if p != 0x44 {
		t.Errorf("got P = %q, want %q", p.String(), P(0x44))
	}

	p.set(Break, true)
	if p != 0x54 {
		t.Errorf("got P = %q, want %q", p.String(), P(0x54))
	}

	p.checkNZ(0xff)
	if !p.negative() || p.zero() {
		t.Errorf("checkNZ(0xff): got P = %s", p)
	}
	p.checkNZ(0x7f)
	if p.negative() || p.zero() {
		t.Errorf("checkNZ(0x7f): got P = %s", p)
	}
	p.checkNZ(0)
	if p.negative() || !p.zero() {
		t.Errorf("checkNZ(0): got P = %s", p)
	}
}

func TestPString(t *testing.T) {
	p := P(0b00110100)
	if got := p.String(); got != "nvUBdIzc" {
		t.Errorf("got P = %s, want %s", got, "nvUBdIzc")
	}
	p = P(0b00000100)
	if p.String() != "nvubdIzc" {
		t.Errorf("got P = %s, want %s", p.String(), "nvubdIzc")
	}
}

func TestPStack(t *testing.T) {
	p := IntDisable | Carry
	if got := p.pushed(true); got != 0x35 {
		t.Errorf("pushed(true) = %02X, want 35", got)
	}
	if got := p.pushed(false); got != 0x25 {
		t.Errorf("pushed(false) = %02X, want 25", got)
	}
	if got := pulled(0xFF); got != 0xEF {
		t.Errorf("pulled(FF) = %02X, want EF", uint8(got))
	}
}

func TestCPx(t *testing.T) {
	t.Run("40 - 41", func(t *testing.T) {
		// LDX #$40
		// CPX #$41
		cpu := loadCPUWith(t, `0600: a2 40 e0 41`)
		cpu.PC = 0x0600
		cpu.P = 0b00110000
		runAndCheckState(t, cpu, 2,
			"A", 0x00,
			"X", 0x40,
			"Y", 0x00,
			"P", 0b10110000,
		)
	})
	t.Run("40 - 40", func(t *testing.T) {
		cpu := loadCPUWith(t, `0600: a2 40 e0 40`)
		cpu.PC = 0x0600
		cpu.P = 0b00110000
		runAndCheckState(t, cpu, 2,
			"X", 0x40,
			"P", 0b00110011,
		)
	})
	t.Run("40 - 39", func(t *testing.T) {
		cpu := loadCPUWith(t, `0600: a2 40 e0 39`)
		cpu.PC = 0x0600
		cpu.P = 0b00110000
		runAndCheckState(t, cpu, 2,
			"X", 0x40,
			"P", 0b00110001,
		)
	})
}

func TestLDA_STA(t *testing.T) {
	dump := `0600: a9 01 8d 00 02 a9 05 8d 01 02 a9 08 8d 02 02`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0600
	runAndCheckState(t, cpu, 6,
		"A", 0x08,
		"PC", 0x060F,
		"SP", 0xfd,
		"mem", `0200: 01 05 08`,
	)
}

func TestADC(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		states []any
	}{
		{
			name: "no carry",
			// CLC; LDA #$50; ADC #$10
			dump:   `0600: 18 a9 50 69 10`,
			states: []any{"A", 0x60, "Pnvzc", 0},
		},
		{
			name: "signed overflow",
			// CLC; LDA #$50; ADC #$50
			dump:   `0600: 18 a9 50 69 50`,
			states: []any{"A", 0xA0, "Pnv", 1, "Pzc", 0},
		},
		{
			name: "carry out",
			// CLC; LDA #$D0; ADC #$90
			dump:   `0600: 18 a9 d0 69 90`,
			states: []any{"A", 0x60, "Pvc", 1, "Pnz", 0},
		},
		{
			name: "decimal ignored",
			// SED; LDA #$09; ADC #$01
			dump:   `0600: f8 a9 09 69 01`,
			states: []any{"A", 0x0A, "Pd", 1},
		},
		{
			name: "sbc borrow",
			// SEC; LDA #$50; SBC #$F0
			dump:   `0600: 38 a9 50 e9 f0`,
			states: []any{"A", 0x60, "Pnvzc", 0},
		},
		{
			name: "sbc no borrow",
			// SEC; LDA #$50; SBC #$50
			dump:   `0600: 38 a9 50 e9 50`,
			states: []any{"A", 0x00, "Pzc", 1, "Pnv", 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu := loadCPUWith(t, tt.dump+"\nFFFC: 00 06")
			runAndCheckState(t, cpu, 3, tt.states...)
		})
	}
}

func TestEOR(t *testing.T) {
	t.Run("zeropage", func(t *testing.T) {
		dump := `
0000: 06
0100: 45 00`
		cpu := loadCPUWith(t, dump)
		cpu.PC = 0x0100
		cpu.A = 0x80
		runAndCheckState(t, cpu, 1,
			"A", 0x86,
			"Pn", 1,
			"Pz", 0,
		)
	})
}

func TestROR(t *testing.T) {
	t.Run("zeropage", func(t *testing.T) {
		dump := `
0000: 55
0100: 66 00
# reset vector
FFFC: 00 01`
		cpu := loadCPUWith(t, dump)
		cpu.A = 0x80
		cpu.P.set(Carry, true)
		runAndCheckState(t, cpu, 1,
			"Pn", 1,
			"Pc", 1,
			"Pz", 0,
			"cycles", 7+5,
		)
		wantMem8(t, cpu, 0x0000, 0xAA)
	})
	t.Run("accumulator", func(t *testing.T) {
		cpu := loadCPUWith(t, "0100: 6a\nFFFC: 00 01")
		cpu.A = 0x01
		runAndCheckState(t, cpu, 1,
			"A", 0x00,
			"Pc", 1,
			"Pz", 1,
			"cycles", 7+2,
		)
	})
}

func TestStack(t *testing.T) {
	dump := `
# upper stack
01E0: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00
01F0: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00
# ram
0200: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00
0210: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00
# instructions
0600: a2 00 a0 00 8a 99 00 02 48 e8 c8 c0 10 d0 f5 68
0610: 99 00 02 c8 c0 20 d0 f7
# reset vector
FFFC: 00 06
`
	cpu := loadCPUWith(t, dump)
	cpu.P = 0x30
	cpu.SP = 0xFF
	runAndCheckState(t, cpu, 2+16*7+16*5,
		"PC", 0x0618,
		"A", 0x00,
		"X", 0x10,
		"Y", 0x20,
		"SP", 0xFF,
		"mem", `
01f0: 0f 0e 0d 0c 0b 0a 09 08 07 06 05 04 03 02 01 00
0200: 00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f
0210: 0f 0e 0d 0c 0b 0a 09 08 07 06 05 04 03 02 01 00`,
	)
}

func TestStackSmall(t *testing.T) {
	dump := `0600: a9 aa 48 a9 11 68`
	cpu := loadCPUWith(t, dump)
	cpu.PC = 0x0600
	cpu.P = 0x30
	cpu.SP = 0xFF
	runAndCheckState(t, cpu, 4,
		"PC", 0x0606,
		"A", 0xAA,
		"SP", 0xFF,
		"Pn", 1,
	)
}

func TestStackWraps(t *testing.T) {
	// PHA with SP=0 writes $0100 then wraps to $FF.
	cpu := loadCPUWith(t, "0600: 48\nFFFC: 00 06")
	cpu.SP = 0x00
	cpu.A = 0x42
	runAndCheckState(t, cpu, 1,
		"SP", 0xFF,
		"mem", `0100: 42`,
	)
}

func TestReset(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: a9 11
FFFC: 00 06`)

	// power up
	if cpu.PC != 0x0600 {
		t.Errorf("PC = $%04X, want $0600", cpu.PC)
	}
	if cpu.SP != 0xFD {
		t.Errorf("SP = $%02X, want $FD", cpu.SP)
	}
	if cpu.P != 0x24 {
		t.Errorf("P = %s, want %s", cpu.P, P(0x24))
	}
	if cpu.Cycles != 7 {
		t.Errorf("cycles = %d, want 7", cpu.Cycles)
	}

	runAndCheckState(t, cpu, 1, "A", 0x11)

	// reset button: registers are kept, SP is decremented by 3 without
	// writing to the stack.
	cpu.Reset(true)
	runAndCheckState(t, cpu, 0,
		"A", 0x11,
		"PC", 0x0600,
		"SP", 0xFA,
		"Pi", 1,
		"cycles", 7+2+7,
		"mem", `01FA: 00 00 00 00`,
	)
}

func TestUnimplementedOpcode(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: ea 02 ea
FFFC: 00 06`)

	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		_, err := cpu.Step()
		if !errors.Is(err, ErrUnimplementedOpcode) {
			t.Fatalf("got err = %v, want ErrUnimplementedOpcode", err)
		}
		var uerr *UnimplementedOpcodeError
		if !errors.As(err, &uerr) {
			t.Fatalf("got err of type %T", err)
		}
		if uerr.PC != 0x0601 || uerr.Opcode != 0x02 {
			t.Errorf("got %+v, want PC=0601 Opcode=02", *uerr)
		}
		if cpu.PC != 0x0601 {
			t.Errorf("PC = $%04X, want $0601", cpu.PC)
		}
	}
	if cpu.Halted() == nil {
		t.Errorf("CPU should be halted")
	}

	cpu.Reset(true)
	if err := cpu.Halted(); err != nil {
		t.Errorf("CPU still halted after reset: %v", err)
	}
}

func stepCycles(t *testing.T, cpu *CPU, want int) {
	t.Helper()

	got, err := cpu.Step()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("got %d cycles, want %d", got, want)
	}
}

func TestCycles(t *testing.T) {
	t.Run("page cross penalty", func(t *testing.T) {
		// LDX #$20; LDA $06F0,X; LDX #$01; LDA $06F0,X; STA $06F0,X
		cpu := loadCPUWith(t, `
0600: a2 20 bd f0 06 a2 01 bd f0 06 9d f0 06
FFFC: 00 06`)
		stepCycles(t, cpu, 2)
		stepCycles(t, cpu, 5)
		stepCycles(t, cpu, 2)
		stepCycles(t, cpu, 4)
		stepCycles(t, cpu, 5)
	})
	t.Run("indirect indexed", func(t *testing.T) {
		// LDY #$10; LDA ($10),Y; STA ($10),Y
		cpu := loadCPUWith(t, `
0010: f8 02
0600: a0 10 b1 10 91 10
FFFC: 00 06`)
		stepCycles(t, cpu, 2)
		stepCycles(t, cpu, 6)
		stepCycles(t, cpu, 6)
	})
	t.Run("branch not taken", func(t *testing.T) {
		cpu := loadCPUWith(t, "0600: f0 10\nFFFC: 00 06")
		stepCycles(t, cpu, 2)
		runAndCheckState(t, cpu, 0, "PC", 0x0602)
	})
	t.Run("branch taken", func(t *testing.T) {
		cpu := loadCPUWith(t, "0600: d0 02\nFFFC: 00 06")
		stepCycles(t, cpu, 3)
		runAndCheckState(t, cpu, 0, "PC", 0x0604)
	})
	t.Run("branch backward", func(t *testing.T) {
		cpu := loadCPUWith(t, "0600: d0 fe\nFFFC: 00 06")
		stepCycles(t, cpu, 3)
		runAndCheckState(t, cpu, 0, "PC", 0x0600)
	})
	t.Run("branch page cross", func(t *testing.T) {
		cpu := loadCPUWith(t, "06FD: d0 10\nFFFC: fd 06")
		stepCycles(t, cpu, 4)
		runAndCheckState(t, cpu, 0, "PC", 0x070F)
	})
	t.Run("zero page index wraps", func(t *testing.T) {
		// LDX #$FF; LDA $80,X
		cpu := loadCPUWith(t, "007F: 99\n0600: a2 ff b5 80\nFFFC: 00 06")
		stepCycles(t, cpu, 2)
		stepCycles(t, cpu, 4)
		runAndCheckState(t, cpu, 0, "A", 0x99)
	})
}

func TestJMPIndirectBug(t *testing.T) {
	cpu := loadCPUWith(t, `
0200: 12
02FF: 34
0300: 56
0600: 6c ff 02
FFFC: 00 06`)
	stepCycles(t, cpu, 5)
	runAndCheckState(t, cpu, 0, "PC", 0x1234)
}

func TestJSR_RTS(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: 20 09 06 a9 01
0609: 60
FFFC: 00 06`)
	stepCycles(t, cpu, 6)
	runAndCheckState(t, cpu, 0,
		"PC", 0x0609,
		"SP", 0xFB,
		"mem", `01FC: 02 06`,
	)
	stepCycles(t, cpu, 6)
	runAndCheckState(t, cpu, 1,
		"PC", 0x0605,
		"SP", 0xFD,
		"A", 0x01,
	)
}

func TestBRK_RTI(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: 00 ea a9 01
0700: 40
FFFC: 00 06
FFFE: 00 07`)
	stepCycles(t, cpu, 7)
	runAndCheckState(t, cpu, 0,
		"PC", 0x0700,
		"SP", 0xFA,
		"Pi", 1,
		"mem", `01FB: 34 02 06`,
	)
	stepCycles(t, cpu, 6)
	runAndCheckState(t, cpu, 0,
		"PC", 0x0602,
		"SP", 0xFD,
		"P", 0x24,
	)
}

func TestPHP_PLP(t *testing.T) {
	// PHP; LDA #$00; PLP
	cpu := loadCPUWith(t, "0600: 08 a9 00 28\nFFFC: 00 06")
	stepCycles(t, cpu, 3)
	runAndCheckState(t, cpu, 1, "Pz", 1, "mem", `01FD: 34`)
	stepCycles(t, cpu, 4)
	runAndCheckState(t, cpu, 0, "P", 0x24, "SP", 0xFD)
}

func TestNMI(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: ea ea
0800: 40
FFFA: 00 08
FFFC: 00 06`)

	cpu.Lines.SetNMI(true)
	stepCycles(t, cpu, 7)
	runAndCheckState(t, cpu, 0,
		"PC", 0x0800,
		"Pi", 1,
		// B is clear in the pushed status.
		"mem", `01FB: 24 00 06`,
	)

	// the line is still high, no new edge.
	cpu.Lines.SetNMI(true)
	runAndCheckState(t, cpu, 2, "PC", 0x0601)

	// a new edge
	cpu.Lines.SetNMI(false)
	cpu.Lines.SetNMI(true)
	runAndCheckState(t, cpu, 1, "PC", 0x0800)
}

func TestIRQ(t *testing.T) {
	cpu := loadCPUWith(t, `
0600: 58 ea
0900: ea 40
FFFC: 00 06
FFFE: 00 09`)

	cpu.Lines.SetIRQ(hwdefs.External)

	// masked, CLI runs.
	runAndCheckState(t, cpu, 1, "PC", 0x0601, "Pi", 0)

	stepCycles(t, cpu, 7)
	runAndCheckState(t, cpu, 0,
		"PC", 0x0900,
		"Pi", 1,
		"mem", `01FB: 20 01 06`,
	)

	// I is set, the handler runs.
	runAndCheckState(t, cpu, 1, "PC", 0x0901)

	cpu.Lines.ClearIRQ(hwdefs.External)
	runAndCheckState(t, cpu, 1, "PC", 0x0601, "Pi", 0)
	runAndCheckState(t, cpu, 1, "PC", 0x0602)
}

/* tests of the CPU wired to the console bus */

func TestOpenBus(t *testing.T) {
	prg := []byte{
		0xAD, 0x00, 0x50, // LDA $5000 (unmapped)
		0xAD, 0x00, 0x40, // LDA $4000 (audio register)
		0xA9, 0xFF, // LDA #$FF
		0xAD, 0x14, 0x40, // LDA $4014 (write-only)
		0xAD, 0x16, 0x40, // LDA $4016
	}
	cpu, _ := newTestNES(t, prg)

	// The last value on the data bus is the high byte of the operand.
	runAndCheckState(t, cpu, 1, "A", 0x50)
	runAndCheckState(t, cpu, 1, "A", 0x40)
	runAndCheckState(t, cpu, 1, "A", 0xFF)
	runAndCheckState(t, cpu, 1, "A", 0x40)
	runAndCheckState(t, cpu, 1, "A", 0x40)

	t.Run("write-only", func(t *testing.T) {
		for _, v := range []uint8{0x00, 0xA7, 0xFF} {
			cpu.openbus = v
			if got := cpu.Bus.Read8(0x4014); got != v {
				t.Errorf("read $4014 with open bus $%02X = $%02X", v, got)
			}
			if got := cpu.Bus.Peek8(0x4014); got != v {
				t.Errorf("peek $4014 with open bus $%02X = $%02X", v, got)
			}
		}
	})
	t.Run("controller port", func(t *testing.T) {
		dev := &fakeInputDevice{bits: []uint8{1, 0}}
		cpu.Input.Plug(0, dev)
		defer cpu.Input.Plug(0, nil)

		cpu.openbus = 0xB5
		if got := cpu.Bus.Read8(0x4016); got != 0xA1 {
			t.Errorf("read $4016 = $%02X, want $A1", got)
		}
		cpu.openbus = 0x5E
		if got := cpu.Bus.Read8(0x4016); got != 0x40 {
			t.Errorf("read $4016 = $%02X, want $40", got)
		}
		// unplugged port
		cpu.openbus = 0xFF
		if got := cpu.Bus.Read8(0x4017); got != 0xE0 {
			t.Errorf("read $4017 = $%02X, want $E0", got)
		}
	})
}

func TestRAMMirroring(t *testing.T) {
	// LDA #$42; STA $0800; LDA #$43; STA $1FFF
	cpu, _ := newTestNES(t, []byte{0xA9, 0x42, 0x8D, 0x00, 0x08, 0xA9, 0x43, 0x8D, 0xFF, 0x1F})
	runAndCheckState(t, cpu, 4)
	for _, addr := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		wantMem8(t, cpu, addr, 0x42)
	}
	for _, addr := range []uint16{0x07FF, 0x0FFF, 0x17FF, 0x1FFF} {
		wantMem8(t, cpu, addr, 0x43)
	}
}

func TestPRGIsReadOnly(t *testing.T) {
	// LDA #$42; STA $8000
	cpu, _ := newTestNES(t, []byte{0xA9, 0x42, 0x8D, 0x00, 0x80})
	runAndCheckState(t, cpu, 2)
	wantMem8(t, cpu, 0x8000, 0xA9)
}

type fakeInputDevice struct {
	bits    []uint8
	strobes []bool
}

func (d *fakeInputDevice) Strobe(on bool) { d.strobes = append(d.strobes, on) }

func (d *fakeInputDevice) Peek() uint8 {
	if len(d.bits) == 0 {
		return 1
	}
	return d.bits[0]
}

func (d *fakeInputDevice) Read() uint8 {
	v := d.Peek()
	if len(d.bits) > 0 {
		d.bits = d.bits[1:]
	}
	return v
}

func TestInputPorts(t *testing.T) {
	prg := []byte{
		0xA9, 0x01, // LDA #$01
		0x8D, 0x16, 0x40, // STA $4016
		0xA9, 0x00, // LDA #$00
		0x8D, 0x16, 0x40, // STA $4016
		0xAD, 0x16, 0x40, // LDA $4016
		0xAD, 0x16, 0x40, // LDA $4016
		0xAD, 0x17, 0x40, // LDA $4017
	}
	cpu, _ := newTestNES(t, prg)
	dev := &fakeInputDevice{bits: []uint8{1, 0}}
	cpu.Input.Plug(0, dev)

	runAndCheckState(t, cpu, 4)
	if len(dev.strobes) != 2 || !dev.strobes[0] || dev.strobes[1] {
		t.Errorf("got strobes %v, want [true false]", dev.strobes)
	}

	// the upper bits come from the open bus: the last written value here,
	// then the high byte of the address.
	if got := cpu.Peek8(0x4016); got != 0x01 {
		t.Errorf("peek $4016 = $%02X, want $01", got)
	}
	runAndCheckState(t, cpu, 1, "A", 0x41)
	runAndCheckState(t, cpu, 1, "A", 0x40)

	// nothing plugged in port 2
	runAndCheckState(t, cpu, 1, "A", 0x40)
}

func TestOAMDMA(t *testing.T) {
	tests := []struct {
		name string
		prg  []byte
		want int // cycles of the STA instruction
	}{
		{
			name: "odd cycle",
			// LDA #$02; STA $4014
			prg:  []byte{0xA9, 0x02, 0x8D, 0x14, 0x40},
			want: 4 + 514,
		},
		{
			name: "even cycle",
			// LDA $00; STA $4014
			prg:  []byte{0xA5, 0x00, 0x8D, 0x14, 0x40},
			want: 4 + 513,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, ppu := newTestNES(t, tt.prg)
			cpu.Bus.Write8(0x0000, 0x02)
			for i := range uint16(256) {
				cpu.Bus.Write8(0x0200+i, uint8(i))
			}

			runAndCheckState(t, cpu, 1)
			stepCycles(t, cpu, tt.want)

			oam := ppu.OAM()
			for i := range 256 {
				if oam[i] != uint8(i) {
					t.Fatalf("oam[%d] = %02X, want %02X", i, oam[i], i)
				}
			}
		})
	}
}
