package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"nescore/emu/log"
	"nescore/hw/input"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

type Config struct {
	General GeneralConfig `toml:"general"`
	Video   VideoConfig   `toml:"video"`
	Input   InputConfig   `toml:"input"`

	TraceOut io.Writer `toml:"-"`
}

type GeneralConfig struct {
	// Number of frames to run, 0 means no limit.
	Frames int64 `toml:"frames"`

	// Modules for which debug logs are enabled.
	LogModules []string `toml:"log_modules"`
}

type VideoConfig struct {
	ScreenshotScale int `toml:"screenshot_scale"`
}

func (vcfg *VideoConfig) Check() {
	if vcfg.ScreenshotScale < 1 || vcfg.ScreenshotScale > 8 {
		log.ModEmu.Warnf("Invalid screenshot scale %d, fallback to 1", vcfg.ScreenshotScale)
		vcfg.ScreenshotScale = 1
	}
}

type InputConfig struct {
	Events []InputEvent `toml:"events"`
}

// An InputEvent presses buttons of the paddle plugged in port, starting at
// frame, for hold frames (at least 1).
type InputEvent struct {
	Frame   int64         `toml:"frame"`
	Port    int           `toml:"port"`
	Buttons input.Buttons `toml:"buttons"`
	Hold    int64         `toml:"hold"`
}

func (icfg *InputConfig) Check() {
	valid := icfg.Events[:0]
	for _, ev := range icfg.Events {
		if ev.Port != 0 && ev.Port != 1 {
			log.ModInput.WarnZ("Ignoring input event with invalid port").
				Int("port", ev.Port).
				Int64("frame", ev.Frame).
				End()
			continue
		}
		if ev.Hold < 1 {
			ev.Hold = 1
		}
		valid = append(valid, ev)
	}
	icfg.Events = valid
}

// Check validates cfg, replacing invalid values by their defaults.
func (cfg *Config) Check() {
	if cfg.General.Frames < 0 {
		cfg.General.Frames = 0
	}
	cfg.Video.Check()
	cfg.Input.Check()
}

// DefaultConfig returns the configuration used when none has been saved.
func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{ScreenshotScale: 1},
	}
}

// ConfigDir returns the nescore configuration directory, creating it if
// needed.
func ConfigDir() (string, error) {
	dir := configdir.LocalConfig("nescore")
	if err := configdir.MakePath(dir); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return dir, nil
}

const cfgFilename = "config.toml"

// LoadConfig loads the configuration file at path. Settings missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.Check()
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the nescore config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	dir, err := ConfigDir()
	if err != nil {
		log.ModEmu.WarnZ("No config directory").Error("err", err).End()
		return DefaultConfig()
	}

	cfg, err := LoadConfig(filepath.Join(dir, cfgFilename))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("Failed to load config, using defaults").Error("err", err).End()
		}
		return DefaultConfig()
	}
	return cfg
}

// WriteConfig writes cfg into the file at path.
func WriteConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

// SaveConfig into nescore config directory.
func SaveConfig(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, cfgFilename)
	if err := WriteConfig(path, cfg); err != nil {
		return err
	}
	log.ModEmu.Infof("Configuration saved to %s", path)
	return nil
}
