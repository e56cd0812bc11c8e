// Package log provides module-scoped logging on top of logrus.
//
// Each subsystem logs through its own Module. Warnings and errors are always
// emitted, info and debug entries only for modules enabled via
// EnableDebugModules.
package log

import (
	"fmt"
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
)

func init() {
	// Filtering is done per-module, logrus must let everything through.
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
}

// SetOutput sets the destination of all log entries.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

var disabled bool

// Disable disables all logging, including warnings and errors.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

func emit(e *logrus.Entry, lvl Level, msg string) {
	switch lvl {
	case ErrorLevel:
		e.Error(msg)
	case WarnLevel:
		e.Warn(msg)
	case InfoLevel:
		e.Info(msg)
	default:
		e.Debug(msg)
	}
}

func (mod Module) logf(lvl Level, format string, args ...any) {
	if !mod.Enabled(lvl) {
		return
	}
	emit(logrus.WithField("_mod", mod.String()), lvl, fmt.Sprintf(format, args...))
}

func (mod Module) Debugf(format string, args ...any) { mod.logf(DebugLevel, format, args...) }
func (mod Module) Infof(format string, args ...any)  { mod.logf(InfoLevel, format, args...) }
func (mod Module) Warnf(format string, args ...any)  { mod.logf(WarnLevel, format, args...) }
func (mod Module) Errorf(format string, args ...any) { mod.logf(ErrorLevel, format, args...) }
