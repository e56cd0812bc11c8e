package log

import (
	"fmt"
	"strconv"
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

type fieldKind uint8

const (
	kindBool fieldKind = iota + 1
	kindString
	kindHex8
	kindHex16
	kindInt
	kindUint
	kindError
	kindStringer
)

// field is a typed key/value pair, only formatted when its entry is emitted.
type field struct {
	kind fieldKind
	key  string
	str  string
	num  uint64
	err  error
	obj  fmt.Stringer
}

func (f *field) value() string {
	switch f.kind {
	case kindBool:
		return strconv.FormatBool(f.num != 0)
	case kindString:
		return f.str
	case kindHex8:
		return fmt.Sprintf("%02X", f.num)
	case kindHex16:
		return fmt.Sprintf("%04X", f.num)
	case kindInt:
		return strconv.FormatInt(int64(f.num), 10)
	case kindUint:
		return strconv.FormatUint(f.num, 10)
	case kindError:
		if f.err == nil {
			return "<nil>"
		}
		return f.err.Error()
	case kindStringer:
		if f.obj == nil {
			return "<nil>"
		}
		return f.obj.String()
	}
	return ""
}

// EntryZ is a log entry built field by field, then emitted with End. Entries
// of disabled modules or levels are nil, and all methods are no-ops on a nil
// EntryZ, so that building them costs next to nothing.
type EntryZ struct {
	lvl Level
	mod Module
	msg string

	fields [16]field
	n      int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

// add appends f to z. Fields past the capacity of an entry are dropped.
func (z *EntryZ) add(f field) *EntryZ {
	if z == nil {
		return nil
	}
	if z.n < len(z.fields) {
		z.fields[z.n] = f
		z.n++
	}
	return z
}

func (z *EntryZ) Bool(key string, b bool) *EntryZ {
	var n uint64
	if b {
		n = 1
	}
	return z.add(field{kind: kindBool, key: key, num: n})
}

func (z *EntryZ) String(key, s string) *EntryZ {
	return z.add(field{kind: kindString, key: key, str: s})
}

func (z *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return z.add(field{kind: kindHex8, key: key, num: uint64(v)})
}

func (z *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return z.add(field{kind: kindHex16, key: key, num: uint64(v)})
}

func (z *EntryZ) Int(key string, v int) *EntryZ {
	return z.add(field{kind: kindInt, key: key, num: uint64(v)})
}

func (z *EntryZ) Int64(key string, v int64) *EntryZ {
	return z.add(field{kind: kindInt, key: key, num: uint64(v)})
}

func (z *EntryZ) Uint64(key string, v uint64) *EntryZ {
	return z.add(field{kind: kindUint, key: key, num: v})
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(field{kind: kindError, key: key, err: err})
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	return z.add(field{kind: kindStringer, key: key, obj: s})
}

// End emits the entry and releases it, z must not be used afterwards.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.n+1)
	fields["_mod"] = z.mod.String()
	for i := range z.fields[:z.n] {
		fields[z.fields[i].key] = z.fields[i].value()
	}

	lvl, msg := z.lvl, z.msg
	z.fields = [len(z.fields)]field{}
	entryPool.Put(z)

	emit(logrus.WithFields(fields), lvl, msg)
}
