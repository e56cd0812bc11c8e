package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"nescore/emu"
	"nescore/emu/debugger"
	"nescore/emu/log"
	"nescore/emu/rpc"
)

// loadConfig returns the configuration to run with: the one in the config
// file, overridden by command line flags.
func loadConfig(args Run) (emu.Config, error) {
	var cfg emu.Config
	if args.Config != "" {
		var err error
		if cfg, err = emu.LoadConfig(args.Config); err != nil {
			return cfg, err
		}
	} else {
		cfg = emu.LoadConfigOrDefault()
	}

	if args.Frames > 0 {
		cfg.General.Frames = args.Frames
	}
	if args.Scale > 0 {
		cfg.Video.ScreenshotScale = args.Scale
	}
	if args.Trace != nil {
		cfg.TraceOut = args.Trace
	}
	cfg.Check()
	return cfg, nil
}

func enableLogModules(names []string) error {
	if len(names) == 0 {
		return nil
	}
	mask, nolog, err := parseLogModules(names)
	if err != nil {
		return err
	}
	if nolog {
		log.Disable()
		return nil
	}
	log.EnableDebugModules(mask)
	return nil
}

// runMain runs the emulator with the given rom, until the frame limit is
// reached or the process is interrupted. It returns the process exit code.
func runMain(args Run) int {
	cfg, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %s\n", err)
		return 1
	}
	if err := enableLogModules(cfg.General.LogModules); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log modules in config: %s\n", err)
		return 1
	}
	if args.SaveConfig {
		if err := saveConfig(cfg, args.Config); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save config: %s\n", err)
			return 1
		}
	}
	if args.Trace != nil {
		defer args.Trace.Close()
	}

	raw, err := os.ReadFile(args.RomPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading ROM: %s\n", err)
		return 1
	}

	var out emu.Output = emu.DiscardOutput{}
	if args.Screenshot != "" {
		out = emu.NewPNGOutput(args.Screenshot, cfg.Video.ScreenshotScale)
	}

	emulator, err := emu.Launch(raw, out, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}

	if args.LoadState != "" {
		if err := loadState(emulator.NES, args.LoadState); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load state: %v\n", err)
			return 1
		}
	}

	var tracker *debugger.Tracker
	if args.Backtrace {
		tracker = debugger.NewTracker(emulator.NES.CPU)
		emulator.NES.SetDebugger(tracker)
	}

	if args.Listen != "" {
		srv, err := rpc.NewServer(args.Listen, emulator)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start rpc server: %v\n", err)
			return 1
		}
		defer srv.Close()
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exitcode := 0
	if err := emulator.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "emulation stopped: %v\n", err)
		if tracker != nil {
			tracker.WriteBacktrace(os.Stderr)
		}
		exitcode = 1
	}

	if args.SaveState != "" {
		if err := saveState(emulator.NES, args.SaveState); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save state: %v\n", err)
			exitcode = 1
		}
	}
	return exitcode
}

// saveConfig writes cfg to path, or to the nescore config directory if path
// is empty.
func saveConfig(cfg emu.Config, path string) error {
	if path == "" {
		return emu.SaveConfig(cfg)
	}
	if err := emu.WriteConfig(path, cfg); err != nil {
		return err
	}
	log.ModEmu.Infof("Configuration saved to %s", path)
	return nil
}

func loadState(nes *emu.NES, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return nes.LoadState(f)
}

func saveState(nes *emu.NES, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nes.SaveState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
