package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nescore/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	romInfosMode             // Show ROM infos
	versionMode              // Show nescore version
	ctlMode                  // Control a running emulator
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator." default:"withargs"`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Version  Version  `cmd:"" help:"Show nescore version."`
		Ctl      Ctl      `cmd:"" help:"Control a running emulator."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"existingfile"`

		Frames     int64    `name:"frames" help:"${frames_help}"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Screenshot string   `name:"screenshot" help:"Save the last frame as a PNG file." type:"path"`
		Scale      int      `name:"scale" help:"Screenshot scale factor."`
		SaveState  string   `name:"save-state" help:"Save the emulator state to file on exit." type:"path"`
		LoadState  string   `name:"load-state" help:"Restore the emulator state from file." type:"existingfile"`
		Config     string   `name:"config" help:"${config_help}" type:"existingfile"`
		SaveConfig bool     `name:"save-config" help:"Write the configuration, with command line overrides, back to the configuration file."`
		CPUProfile string   `name:"cpuprofile" help:"Write CPU profile to file." type:"path"`
		Backtrace  bool     `name:"backtrace" help:"Print the CPU call stack if emulation stops on error."`
		Listen     string   `name:"listen" help:"Serve emulator controls on this address." placeholder:"HOST:PORT"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Version struct{}

	Ctl struct {
		Addr   string `arg:"" name:"addr" help:"Address of the emulator, as given to run --listen." placeholder:"HOST:PORT"`
		Action string `arg:"" name:"action" enum:"reset,restart,pause,resume,stop,frames" help:"One of: ${enum}."`
	}
)

var vars = kong.Vars{
	"rompath_help": "ROM to run, in iNES format.",
	"frames_help":  "Number of frames to run, overrides the configuration. Runs until interrupted if 0.",
	"config_help":  "Configuration file. (default: config.toml in the nescore config directory)",
	"log_help":     "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	cfg, err := parseArgsErr(args)
	checkf(err, "failed to parse command line")
	return cfg
}

func parseArgsErr(args []string) (CLI, error) {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nescore"),
		kong.Description("NES emulator core, headless runner."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return cfg, err
	}
	if ctx.Error != nil {
		return cfg, ctx.Error
	}

	switch ctx.Command() {
	case "rom-infos </path/to/rom>":
		cfg.mode = romInfosMode
	case "version":
		cfg.mode = versionMode
	case "ctl <addr> <action>":
		cfg.mode = ctlMode
	default:
		cfg.mode = runMode
	}
	return cfg, nil
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	mask, nolog, err := parseLogModules(strings.Split(tok.Value.(string), ","))
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

// parseLogModules converts module names into a module mask. nolog is true
// when logs are disabled altogether.
func parseLogModules(names []string) (mask log.ModuleMask, nolog bool, err error) {
	allLogs := false
	for _, v := range names {
		switch v = strings.TrimSpace(v); v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return 0, false, fmt.Errorf("unknown log module %s", v)
			}
			mask |= mod.Mask()
		}
	}

	if nolog {
		if allLogs {
			return 0, false, fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if mask != 0 {
			return 0, false, fmt.Errorf("cannot combine 'no' with other log modules")
		}
		return 0, true, nil
	}

	if allLogs {
		mask = log.ModuleMaskAll
	}
	return mask, false, nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes a file name, or stdout/stderr, into a writer.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
