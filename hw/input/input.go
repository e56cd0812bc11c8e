// Package input implements the standard NES controller.
package input

import (
	"fmt"
	"strings"
)

// A PaddleButton identifies a button of a standard NES controller/paddle.
type PaddleButton byte

const (
	PadA PaddleButton = iota
	PadB
	PadSelect
	PadStart
	PadUp
	PadDown
	PadLeft
	PadRight

	PadButtonCount
)

var buttonNames = [PadButtonCount]string{
	"A", "B",
	"Select", "Start",
	"Up", "Down", "Left", "Right",
}

func (pd PaddleButton) String() string {
	if pd >= PadButtonCount {
		return fmt.Sprintf("PaddleButton(%d)", pd)
	}
	return buttonNames[pd]
}

// Buttons is the set of pressed buttons of a paddle. Bit n is set when
// PaddleButton n is pressed, which is also the order in which a paddle
// reports its buttons.
type Buttons uint8

// Has reports whether btn is pressed.
func (b Buttons) Has(btn PaddleButton) bool {
	return b&(1<<btn) != 0
}

// With returns b with btn pressed.
func (b Buttons) With(btn PaddleButton) Buttons {
	return b | 1<<btn
}

func (b Buttons) String() string {
	var names []string
	for btn := range PadButtonCount {
		if b.Has(btn) {
			names = append(names, btn.String())
		}
	}
	return strings.Join(names, "+")
}

// ParseButtons parses a '+' separated list of button names, such as
// "Start" or "A+Right". Names are case insensitive, the empty string means
// no buttons.
func ParseButtons(s string) (Buttons, error) {
	var b Buttons
	if strings.TrimSpace(s) == "" {
		return b, nil
	}

next:
	for _, name := range strings.Split(s, "+") {
		name = strings.TrimSpace(name)
		for btn := range PadButtonCount {
			if strings.EqualFold(name, buttonNames[btn]) {
				b = b.With(btn)
				continue next
			}
		}
		return 0, fmt.Errorf("unknown button %q", name)
	}
	return b, nil
}

func (b Buttons) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Buttons) UnmarshalText(text []byte) error {
	v, err := ParseButtons(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
