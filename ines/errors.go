package ines

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic          = errors.New("bad magic number")
	ErrTruncated         = errors.New("truncated rom image")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
)

// ErrorKind is the cause of a ParseError.
type ErrorKind uint8

const (
	BadMagic ErrorKind = iota + 1
	Truncated
	UnsupportedMapper
)

func (k ErrorKind) String() string {
	switch k {
	case BadMagic:
		return "BadMagic"
	case Truncated:
		return "Truncated"
	case UnsupportedMapper:
		return "UnsupportedMapper"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// A ParseError reports why a rom can't be loaded. It matches the ErrBadMagic,
// ErrTruncated and ErrUnsupportedMapper sentinels with errors.Is.
type ParseError struct {
	Kind ErrorKind

	Section   string // Truncated: section being read
	Want, Got int    // Truncated: expected and available bytes

	Mapper uint16 // UnsupportedMapper: mapper number
}

// UnsupportedMapperError returns the error reported when a rom uses a mapper
// outside the supported set.
func UnsupportedMapperError(mapper uint16) *ParseError {
	return &ParseError{Kind: UnsupportedMapper, Mapper: mapper}
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case BadMagic:
		return ErrBadMagic.Error()
	case Truncated:
		return fmt.Sprintf("%s: %s section needs %d bytes, got %d", ErrTruncated, e.Section, e.Want, e.Got)
	case UnsupportedMapper:
		return fmt.Sprintf("%s %d", ErrUnsupportedMapper, e.Mapper)
	}
	return "invalid rom"
}

func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case BadMagic:
		return ErrBadMagic
	case Truncated:
		return ErrTruncated
	case UnsupportedMapper:
		return ErrUnsupportedMapper
	}
	return nil
}
