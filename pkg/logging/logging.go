// Package logging provides leveled log output for breastcrop. Messages go to
// stderr through the standard log package unless a log file is configured,
// in which case they are written to a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

// ModeFlag is the minimum severity that gets written
type ModeFlag uint

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	SilentMode
)

var (
	mode = InfoMode

	// rotating file, nil when logging to stderr
	rotator *lumberjack.Logger
)

// ParseMode converts a level name from the config file into a ModeFlag
func ParseMode(level string) (ModeFlag, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DebugMode, nil
	case "", "info":
		return InfoMode, nil
	case "warning", "warn":
		return WarningMode, nil
	case "error":
		return ErrorMode, nil
	case "silent", "none":
		return SilentMode, nil
	}
	return InfoMode, fmt.Errorf("unknown log level %q", level)
}

// SetLogMode sets the severity required for a message to be printed.
// SetLogMode(WarningMode) prints Warningf and Errorf only.
func SetLogMode(newMode ModeFlag) {
	mode = newMode
}

// Mode returns the current severity threshold
func Mode() ModeFlag {
	return mode
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// LogConfig describes an optional rotating log file
type LogConfig struct {
	Logfile string
	MaxSize int // megabytes
	MaxAge  int // days
}

// SetLogger sends log output to a rotating file when a log file is named.
func (c *LogConfig) SetLogger() {
	if c == nil || c.Logfile == "" {
		return
	}
	rotator = &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize,
		MaxAge:   c.MaxAge,
	}
	log.SetOutput(rotator)
}

// Shutdown closes the log file if one is open
func Shutdown() {
	if rotator != nil {
		rotator.Close()
		rotator = nil
		log.SetOutput(os.Stderr)
	}
}

func Debugf(format string, args ...interface{}) {
	if mode <= DebugMode {
		log.Printf(" DEBUG "+format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if mode <= InfoMode {
		log.Printf(" INFO "+format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if mode <= WarningMode {
		log.Printf(" WARNING "+format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if mode <= ErrorMode {
		log.Printf(" ERROR "+format, args...)
	}
}
