package hwio

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	typeReg8   = reflect.TypeOf(Reg8{})
	typeMem    = reflect.TypeOf(Mem{})
	typeDevice = reflect.TypeOf(Device{})
)

type tagOpts struct {
	bank      int
	offset    uint16
	hasOffset bool
	size      int
	vsize     int
	reset     uint64
	rwmask    uint64
	hasRWMask bool
	readonly  bool
	writeonly bool

	// callback method names, empty when not requested.
	rcb, wcb, pcb string
}

func parseUint(key, val string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(val, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, val, err)
	}
	return n, nil
}

func parseTag(field reflect.StructField) (tagOpts, error) {
	var opts tagOpts

	tag := field.Tag.Get("hwio")
	if tag == "" {
		return opts, nil
	}

	upname := strings.ToUpper(field.Name)
	for _, opt := range strings.Split(tag, ",") {
		key, val, hasval := strings.Cut(strings.TrimSpace(opt), "=")
		var (
			n   uint64
			err error
		)
		switch key {
		case "bank":
			n, err = parseUint(key, val, 8)
			opts.bank = int(n)
		case "offset":
			n, err = parseUint(key, val, 16)
			opts.offset = uint16(n)
			opts.hasOffset = true
		case "size":
			n, err = parseUint(key, val, 32)
			opts.size = int(n)
		case "vsize":
			n, err = parseUint(key, val, 32)
			opts.vsize = int(n)
		case "reset":
			opts.reset, err = parseUint(key, val, 8)
		case "rwmask":
			opts.rwmask, err = parseUint(key, val, 8)
			opts.hasRWMask = true
		case "readonly":
			opts.readonly = true
		case "writeonly":
			opts.writeonly = true
		case "rcb":
			opts.rcb = "Read" + upname
			if hasval {
				opts.rcb = val
			}
		case "wcb":
			opts.wcb = "Write" + upname
			if hasval {
				opts.wcb = val
			}
		case "pcb":
			opts.pcb = "Peek" + upname
			if hasval {
				opts.pcb = val
			}
		case "":
		default:
			err = fmt.Errorf("unknown option %q", key)
		}
		if err != nil {
			return opts, fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	if opts.readonly && opts.writeonly {
		return opts, fmt.Errorf("field %s: both readonly and writeonly", field.Name)
	}
	return opts, nil
}

func (opts tagOpts) flags() RWFlags {
	switch {
	case opts.readonly:
		return ReadOnlyFlag
	case opts.writeonly:
		return WriteOnlyFlag
	}
	return ReadWriteFlag
}

// method returns the method called name on v, or an error if it doesn't exist
// or doesn't have the expected signature.
func method(v reflect.Value, name string, want reflect.Type) (reflect.Value, error) {
	m := v.MethodByName(name)
	if !m.IsValid() {
		return m, fmt.Errorf("method %s not found on %s", name, v.Type())
	}
	if !m.Type().ConvertibleTo(want) {
		return m, fmt.Errorf("method %s has signature %s, want %s", name, m.Type(), want)
	}
	return m.Convert(want), nil
}

func initReg8(reg *Reg8, v reflect.Value, name string, opts tagOpts) error {
	reg.Name = name
	reg.Value = uint8(opts.reset)
	reg.Flags = opts.flags()
	if opts.hasRWMask {
		reg.RoMask = ^uint8(opts.rwmask)
	}

	if opts.rcb != "" {
		m, err := method(v, opts.rcb, reflect.TypeOf(reg.ReadCb))
		if err != nil {
			return err
		}
		reg.ReadCb = m.Interface().(func(uint8) uint8)
	}
	if opts.pcb != "" {
		m, err := method(v, opts.pcb, reflect.TypeOf(reg.PeekCb))
		if err != nil {
			return err
		}
		reg.PeekCb = m.Interface().(func(uint8) uint8)
	}
	if opts.wcb != "" {
		m, err := method(v, opts.wcb, reflect.TypeOf(reg.WriteCb))
		if err != nil {
			return err
		}
		reg.WriteCb = m.Interface().(func(uint8, uint8))
	}
	return nil
}

func initMem(mem *Mem, v reflect.Value, name string, opts tagOpts) error {
	mem.Name = name
	if opts.size != 0 {
		mem.Data = make([]byte, opts.size)
	}
	mem.VSize = opts.vsize
	if mem.VSize == 0 {
		mem.VSize = len(mem.Data)
	}
	if opts.readonly {
		mem.Flags |= MemFlag8ReadOnly
	}
	if opts.wcb != "" {
		m, err := method(v, opts.wcb, reflect.TypeOf(mem.WriteCb))
		if err != nil {
			return err
		}
		mem.WriteCb = m.Interface().(func(uint16, uint8))
	}
	return nil
}

func initDevice(dev *Device, v reflect.Value, name string, opts tagOpts) error {
	dev.Name = name
	dev.Size = opts.size
	dev.Flags = opts.flags()
	if dev.Size == 0 {
		return fmt.Errorf("device %s: size is required", name)
	}

	if opts.rcb != "" {
		m, err := method(v, opts.rcb, reflect.TypeOf(dev.ReadCb))
		if err != nil {
			return err
		}
		dev.ReadCb = m.Interface().(func(uint16) uint8)
	}
	if opts.pcb != "" {
		m, err := method(v, opts.pcb, reflect.TypeOf(dev.PeekCb))
		if err != nil {
			return err
		}
		dev.PeekCb = m.Interface().(func(uint16) uint8)
	}
	if opts.wcb != "" {
		m, err := method(v, opts.wcb, reflect.TypeOf(dev.WriteCb))
		if err != nil {
			return err
		}
		dev.WriteCb = m.Interface().(func(uint16, uint8))
	}
	return nil
}

// InitRegs initializes all the Reg8, Mem and Device fields of the structure
// pointed to by data, using the options found in their "hwio" struct tag:
// name, reset value, flags, memory allocation and callbacks. Callbacks are
// methods of data, named after the uppercased field name (ReadXXX, WriteXXX,
// PeekXXX) unless an explicit name is given (rcb=Name).
func InitRegs(data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return errors.New("InitRegs: expected pointer to struct")
	}

	s := v.Elem()
	for i := range s.NumField() {
		field := s.Type().Field(i)
		if _, ok := field.Tag.Lookup("hwio"); !ok {
			continue
		}
		opts, err := parseTag(field)
		if err != nil {
			return err
		}

		fptr := s.Field(i).Addr().Interface()
		switch field.Type {
		case typeReg8:
			err = initReg8(fptr.(*Reg8), v, field.Name, opts)
		case typeMem:
			err = initMem(fptr.(*Mem), v, field.Name, opts)
		case typeDevice:
			err = initDevice(fptr.(*Device), v, field.Name, opts)
		default:
			err = fmt.Errorf("field %s: unsupported type %s", field.Name, field.Type)
		}
		if err != nil {
			return fmt.Errorf("InitRegs(%s): %w", s.Type(), err)
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(data any) {
	if err := InitRegs(data); err != nil {
		panic(err)
	}
}

type bankReg struct {
	offset uint16
	regPtr any
}

// bankGetRegs returns the registers of bank that are part of bank number
// bankNum, that is, the ones having an offset.
func bankGetRegs(bank any, bankNum int) ([]bankReg, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bank must be a pointer to struct")
	}

	var regs []bankReg
	s := v.Elem()
	for i := range s.NumField() {
		field := s.Type().Field(i)
		if _, ok := field.Tag.Lookup("hwio"); !ok {
			continue
		}
		opts, err := parseTag(field)
		if err != nil {
			return nil, err
		}
		if !opts.hasOffset || opts.bank != bankNum {
			continue
		}
		switch field.Type {
		case typeReg8, typeMem, typeDevice:
		default:
			return nil, fmt.Errorf("field %s: unsupported type %s", field.Name, field.Type)
		}
		regs = append(regs, bankReg{
			offset: opts.offset,
			regPtr: s.Field(i).Addr().Interface(),
		})
	}
	return regs, nil
}
