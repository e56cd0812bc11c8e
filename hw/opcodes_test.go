package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-faster/jx"

	"nescore/tests"
)

func TestOpcodeTable(t *testing.T) {
	nvalid := 0
	for opcode, desc := range opcodes {
		if !desc.Valid() {
			continue
		}
		nvalid++
		if desc.Cycles < 2 || desc.Cycles > 7 {
			t.Errorf("opcode %02X (%s): suspicious cycle count %d", opcode, desc.Op, desc.Cycles)
		}
	}
	if nvalid != 151 {
		t.Errorf("got %d official opcodes, want 151", nvalid)
	}
}

func TestOpcodes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long test")
	}

	dir := tests.TomHarteProcTestsPath(t)
	for opcode, desc := range opcodes {
		opstr := fmt.Sprintf("%02x", opcode)
		if !desc.Valid() {
			t.Run(opstr, func(t *testing.T) { t.Skipf("skipping unofficial opcode") })
			continue
		}
		t.Run(opstr, testOpcodes(filepath.Join(dir, opstr+".json")))
	}
}

var slicePool = sync.Pool{
	New: func() any {
		s := make([]uint8, 0x10000)
		return &s
	},
}

func newSlice() *[]uint8 {
	return slicePool.Get().(*[]uint8)
}

func putSlice(s *[]uint8) {
	clear(*s)
	slicePool.Put(s)
}

type (
	harteState struct {
		PC          uint16
		SP, A, X, Y uint8
		P           uint8
		RAM         [][2]int
	}
	harteCycle struct {
		addr uint16
		val  uint8
		kind string
	}
	harteTest struct {
		Name    string
		Initial harteState
		Final   harteState
		Cycles  []harteCycle
	}
)

func (s *harteState) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "pc":
			s.PC, err = d.UInt16()
		case "s":
			s.SP, err = d.UInt8()
		case "a":
			s.A, err = d.UInt8()
		case "x":
			s.X, err = d.UInt8()
		case "y":
			s.Y, err = d.UInt8()
		case "p":
			s.P, err = d.UInt8()
		case "ram":
			err = d.Arr(func(d *jx.Decoder) error {
				var row [2]int
				i := 0
				err := d.Arr(func(d *jx.Decoder) error {
					v, err := d.Int()
					if i < len(row) {
						row[i] = v
					}
					i++
					return err
				})
				s.RAM = append(s.RAM, row)
				return err
			})
		default:
			err = d.Skip()
		}
		return err
	})
}

func (c *harteCycle) decode(d *jx.Decoder) error {
	i := 0
	return d.Arr(func(d *jx.Decoder) error {
		defer func() { i++ }()
		switch i {
		case 0:
			v, err := d.UInt16()
			c.addr = v
			return err
		case 1:
			v, err := d.UInt8()
			c.val = v
			return err
		case 2:
			v, err := d.Str()
			c.kind = v
			return err
		}
		return d.Skip()
	})
}

func decodeHarteTests(buf []byte) ([]harteTest, error) {
	var all []harteTest
	err := jx.DecodeBytes(buf).Arr(func(d *jx.Decoder) error {
		var tt harteTest
		err := d.Obj(func(d *jx.Decoder, key string) error {
			switch key {
			case "name":
				s, err := d.Str()
				tt.Name = s
				return err
			case "initial":
				return tt.Initial.decode(d)
			case "final":
				return tt.Final.decode(d)
			case "cycles":
				return d.Arr(func(d *jx.Decoder) error {
					var c harteCycle
					err := c.decode(d)
					tt.Cycles = append(tt.Cycles, c)
					return err
				})
			}
			return d.Skip()
		})
		all = append(all, tt)
		return err
	})
	return all, err
}

func TestDecodeHarteTests(t *testing.T) {
	const data = `[{
	"name": "a9 12 34",
	"initial": {"pc": 512, "s": 253, "a": 0, "x": 1, "y": 2, "p": 36, "ram": [[512, 169], [513, 18]]},
	"final": {"pc": 514, "s": 253, "a": 18, "x": 1, "y": 2, "p": 36, "ram": [[512, 169], [513, 18]]},
	"cycles": [[512, 169, "read"], [513, 18, "read"]]
}]`
	all, err := decodeHarteTests([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d tests, want 1", len(all))
	}
	tt := all[0]
	if tt.Name != "a9 12 34" || tt.Initial.PC != 512 || tt.Final.A != 18 || tt.Initial.P != 36 {
		t.Errorf("bad decoding: %+v", tt)
	}
	if len(tt.Initial.RAM) != 2 || tt.Initial.RAM[1] != [2]int{513, 18} {
		t.Errorf("bad ram: %v", tt.Initial.RAM)
	}
	if len(tt.Cycles) != 2 || tt.Cycles[1] != (harteCycle{513, 18, "read"}) {
		t.Errorf("bad cycles: %v", tt.Cycles)
	}
}

// testOpcodes runs the opcode tests found in the json file at path. These
// come from github.com/SingleStepTests/65x02/tree/main/nes6502.
func testOpcodes(path string) func(t *testing.T) {
	return func(t *testing.T) {
		t.Parallel()

		buf, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		all, err := decodeHarteTests(buf)
		if err != nil {
			t.Fatal(err)
		}

		for _, tt := range all {
			t.Run(tt.Name, func(t *testing.T) {
				slice := newSlice()
				defer putSlice(slice)

				cpu := NewCPU(nil, nil)
				cpu.Bus.MapMemorySlice(0x0000, 0xFFFF, *slice, false)
				cpu.A = tt.Initial.A
				cpu.X = tt.Initial.X
				cpu.Y = tt.Initial.Y
				cpu.P = P(tt.Initial.P)
				cpu.SP = tt.Initial.SP
				cpu.PC = tt.Initial.PC

				for _, row := range tt.Initial.RAM {
					cpu.Bus.Write8(uint16(row[0]), uint8(row[1]))
				}

				ncycles, err := cpu.Step()
				if err != nil {
					t.Fatal(err)
				}

				// B and U are not real flags: they only exist once P is
				// pushed on the stack.
				const pmask = 0b11001111
				if got, want := uint8(cpu.P)&pmask, tt.Final.P&pmask; got != want {
					t.Errorf("P = %s, want %s", P(got), P(want))
				}
				if cpu.PC != tt.Final.PC {
					t.Errorf("PC = $%04X, want $%04X", cpu.PC, tt.Final.PC)
				}
				if cpu.SP != tt.Final.SP {
					t.Errorf("SP = $%02X, want $%02X", cpu.SP, tt.Final.SP)
				}
				if cpu.A != tt.Final.A || cpu.X != tt.Final.X || cpu.Y != tt.Final.Y {
					t.Errorf("A,X,Y = %02X,%02X,%02X want %02X,%02X,%02X",
						cpu.A, cpu.X, cpu.Y, tt.Final.A, tt.Final.X, tt.Final.Y)
				}
				if ncycles != len(tt.Cycles) {
					t.Errorf("cycles count mismatch: got %d want %d\n%s", ncycles, len(tt.Cycles), prettyCycles(tt.Cycles))
				}
				for _, row := range tt.Final.RAM {
					if got := cpu.Peek8(uint16(row[0])); got != uint8(row[1]) {
						t.Errorf("ram[$%04X] = $%02X, want $%02X", row[0], got, row[1])
					}
				}
			})
		}
	}
}

func prettyCycles(cycles []harteCycle) string {
	strs := make([]string, len(cycles))
	for i, c := range cycles {
		strs[i] = fmt.Sprintf("%s $%04X = $%02X", c.kind, c.addr, c.val)
	}
	return strings.Join(strs, "\n")
}
