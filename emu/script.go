package emu

import (
	"cmp"
	"slices"

	"nescore/emu/log"
	"nescore/hw/input"
)

// inputScript replays scripted button presses on paddles plugged in the
// controller ports named by the events. Other ports are left untouched.
type inputScript struct {
	events  []InputEvent // sorted by frame
	paddles [2]*input.Paddle
	cur     [2]input.Buttons
}

func newInputScript(events []InputEvent) *inputScript {
	s := &inputScript{events: slices.Clone(events)}
	for _, ev := range s.events {
		if s.paddles[ev.Port] == nil {
			s.paddles[ev.Port] = new(input.Paddle)
		}
	}
	slices.SortStableFunc(s.events, func(a, b InputEvent) int {
		return cmp.Compare(a.Frame, b.Frame)
	})
	return s
}

func (s *inputScript) plug(nes *NES) {
	for port, p := range s.paddles {
		if p != nil {
			nes.PlugInput(port, p)
		}
	}
}

// buttons returns the buttons held on each port during frame.
func (s *inputScript) buttons(frame int64) [2]input.Buttons {
	var btns [2]input.Buttons
	for _, ev := range s.events {
		if ev.Frame > frame {
			break
		}
		if frame < ev.Frame+max(ev.Hold, 1) {
			btns[ev.Port] |= ev.Buttons
		}
	}
	return btns
}

// apply sets the paddle states for frame.
func (s *inputScript) apply(frame int64) {
	btns := s.buttons(frame)
	for port, b := range btns {
		if s.paddles[port] == nil || b == s.cur[port] {
			continue
		}
		log.ModInput.DebugZ("scripted input").
			Int64("frame", frame).
			Int("port", port).
			Stringer("buttons", b).
			End()
		s.paddles[port].SetButtons(b)
		s.cur[port] = b
	}
}
