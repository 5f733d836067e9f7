package logger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/heyjunin/sinklog/pkg/errors"
)

// Level defines the severity level for log events.
// Levels are ordered by verbosity: OffLevel admits nothing and
// TraceLevel admits every message.
type Level int32

const (
	// OffLevel silences every channel.
	OffLevel Level = iota
	// CriticalLevel indicates failures the application is unlikely to survive.
	CriticalLevel
	// ErrorLevel indicates error events that might still allow the application to continue running.
	ErrorLevel
	// WarnLevel indicates potentially harmful situations or unexpected events.
	WarnLevel
	// InfoLevel indicates general operational information.
	InfoLevel
	// DebugLevel indicates detailed information, typically only useful during development.
	DebugLevel
	// TraceLevel indicates the most verbose diagnostic output.
	TraceLevel
)

var levelNames = [...]string{"Off", "Critical", "Error", "Warn", "Info", "Debug", "Trace"}

// levelLabels are rendered inside the brackets of the default channel pattern.
var levelLabels = [...]string{"off", "critical", "error", "warning", "info", "debug", "trace"}

// ErrInvalidLevelName matches, via errors.Is, every error returned for an
// unrecognized level name.
var ErrInvalidLevelName = errors.New(errors.ConfigurationError,
	"invalid log level name", "", errors.ErrInvalidLevelName)

// Levels returns every level from OffLevel to TraceLevel.
func Levels() []Level {
	return []Level{OffLevel, CriticalLevel, ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel}
}

func (l Level) valid() bool {
	return l >= OffLevel && l <= TraceLevel
}

// String returns the capitalized level name, e.g. "Warn".
func (l Level) String() string {
	if !l.valid() {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// Label returns the lower-case name used in log lines, e.g. "warning".
func (l Level) Label() string {
	if !l.valid() {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelLabels[l]
}

// admits reports whether a message at msg passes a threshold of l.
func (l Level) admits(msg Level) bool {
	return l != OffLevel && msg <= l
}

// ParseLevel converts a case-insensitive level name into a Level.
// Unknown names yield a configuration error echoing the input.
func ParseLevel(name string) (Level, error) {
	lower := strings.ToLower(name)
	for i, n := range levelNames {
		if strings.ToLower(n) == lower {
			return Level(i), nil
		}
	}
	return OffLevel, errors.New(errors.ConfigurationError,
		fmt.Sprintf("Expected log level to be Off, Critical, Error, Warn, Info, Debug, or Trace; got %s.", name),
		name, errors.ErrInvalidLevelName)
}

// unknownLevel builds the internal error reported for a level outside the known range.
func unknownLevel(l Level) error {
	return errors.New(errors.InternalError, errors.GetErrorMessage(errors.ErrUnknownLevel),
		strconv.Itoa(int(l)), errors.ErrUnknownLevel)
}
