package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testState() *NES {
	s := &NES{
		Version: Version,
		CPU: CPU{
			PC: 0xC123, SP: 0xF0, P: 0xA5, A: 1, X: 2, Y: 3,
			Cycles:     123456789,
			OpenBus:    0x40,
			NMILine:    true,
			IRQ:        1,
			DMAPage:    0x02,
			DMAPending: true,
		},
		PPU: PPU{
			PPUCTRL:    0x80,
			PPUMASK:    0x1E,
			PPUSTATUS:  0x80,
			OAMADDR:    0x10,
			Latch:      0x33,
			VRAMAddr:   0x2345,
			VRAMTemp:   0x2000,
			FineX:      5,
			WriteLatch: true,
			PPUDataBuf: 0x77,
			Dot:        2,
			Scanline:   241,
			Frame:      1000,
		},
		Cart: Cartridge{
			PRGRAM: bytes.Repeat([]byte{0xAB}, 0x2000),
		},
	}
	for i := range s.RAM {
		s.RAM[i] = uint8(i)
	}
	for i := range s.PPU.Nametables {
		s.PPU.Nametables[i] = uint8(i * 3)
	}
	for i := range s.PPU.OAM {
		s.PPU.OAM[i] = uint8(255 - i)
	}
	s.PPU.Palette[0x1F] = 0x3F
	return s
}

func TestEncodeDecode(t *testing.T) {
	want := testState()

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "bad version",
			data:    `{"version": 99}`,
			wantErr: ErrVersion,
		},
		{
			name:    "missing version",
			data:    `{"cpu": {"pc": 1}}`,
			wantErr: ErrVersion,
		},
		{
			name: "bad ram size",
			data: `{"version": 1, "ram": "AAAA"}`,
		},
		{
			name: "bad field type",
			data: `{"version": 1, "cpu": {"pc": "foo"}}`,
		},
		{
			name: "truncated",
			data: `{"version": 1, "cpu": {`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PPU)
	}{
		{"negative dot", func(p *PPU) { p.Dot = -1 }},
		{"dot", func(p *PPU) { p.Dot = 341 }},
		{"negative scanline", func(p *PPU) { p.Scanline = -5 }},
		{"scanline", func(p *PPU) { p.Scanline = 400 }},
		{"fine x", func(p *PPU) { p.FineX = 8 }},
		{"vram addr", func(p *PPU) { p.VRAMAddr = 0x8000 }},
		{"vram temp", func(p *PPU) { p.VRAMTemp = 0xFFFF }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testState()
			tt.modify(&s.PPU)

			var buf bytes.Buffer
			if err := Encode(&buf, s); err != nil {
				t.Fatal(err)
			}
			_, err := Decode(&buf)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("got err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	const data = `{"version": 1, "apu": {"foo": [1, 2, 3]}, "cpu": {"pc": 4660, "bar": null}}`
	s, err := Decode(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if s.CPU.PC != 0x1234 {
		t.Errorf("PC = %04X, want 1234", s.CPU.PC)
	}
}
