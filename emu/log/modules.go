package log

import "fmt"

// A Module identifies a subsystem in log entries. Its debug and info entries
// can be enabled independently of other modules.
type Module uint

type ModuleMask uint64

const ModuleMaskAll ModuleMask = 1<<64 - 1

const (
	ModEmu Module = iota + 1
	ModCPU
	ModPPU
	ModDMA
	ModHwIo
	ModInput
	ModMapper
)

var modNames = []string{
	"", "emu", "cpu", "ppu", "dma", "hwio", "input", "mapper",
}

var debugMask ModuleMask

// NewModule registers a module in addition to the standard ones. It must be
// called at package initialization.
func NewModule(name string) Module {
	if len(modNames) == 64 {
		panic(fmt.Sprintf("log: cannot register module %q, too many modules", name))
	}
	modNames = append(modNames, name)
	return Module(len(modNames) - 1)
}

// ModuleByName returns the module registered as name.
func ModuleByName(name string) (Module, bool) {
	for i, s := range modNames[1:] {
		if s == name {
			return Module(i + 1), true
		}
	}
	return 0, false
}

// ModuleNames returns the names of all registered modules.
func ModuleNames() []string {
	return append([]string(nil), modNames[1:]...)
}

// EnableDebugModules enables debug and info entries of the modules in mask.
func EnableDebugModules(mask ModuleMask) {
	debugMask |= mask
}

func (mod Module) String() string {
	if mod == 0 || int(mod) >= len(modNames) {
		return fmt.Sprintf("mod%d", uint(mod))
	}
	return modNames[mod]
}

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

// Enabled reports whether entries at lvl are emitted for mod.
func (mod Module) Enabled(lvl Level) bool {
	if disabled {
		return false
	}
	return lvl <= WarnLevel || debugMask&mod.Mask() != 0
}

func (mod Module) entry(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	z := entryPool.Get().(*EntryZ)
	z.mod, z.lvl, z.msg, z.n = mod, lvl, msg, 0
	return z
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.entry(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.entry(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.entry(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.entry(ErrorLevel, msg) }
