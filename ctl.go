package main

import (
	"fmt"
	"io"

	"nescore/emu/rpc"
)

// runCtl performs a single control action on the emulator listening at
// args.Addr.
func runCtl(w io.Writer, args Ctl) error {
	c, err := rpc.Dial(args.Addr)
	if err != nil {
		return err
	}
	defer c.Close()

	switch args.Action {
	case "reset":
		return c.Reset()
	case "restart":
		return c.Restart()
	case "pause":
		return c.SetPause(true)
	case "resume":
		return c.SetPause(false)
	case "stop":
		return c.Stop()
	case "frames":
		n, err := c.Frames()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	}
	return fmt.Errorf("unknown action %q", args.Action)
}
