package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"nescore/ines"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case romInfosMode:
		rom, err := ines.ReadRom(cli.RomInfos.RomPath)
		checkf(err, "failed to read rom")
		rom.PrintInfos(os.Stdout)
	case versionMode:
		printVersion()
	case ctlMode:
		checkf(runCtl(os.Stdout, cli.Ctl), "ctl %s", cli.Ctl.Action)
	case runMode:
		os.Exit(runMain(cli.Run))
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nescore", version)
}
