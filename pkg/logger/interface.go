package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Logger is a component-oriented view of the facility, for code that
// prefers attaching context data to formatting it into the message.
type Logger interface {
	Trace(message string, component string, data map[string]interface{})
	Debug(message string, component string, data map[string]interface{})
	Info(message string, component string, data map[string]interface{})
	Warn(message string, component string, data map[string]interface{})
	Error(message string, component string, data map[string]interface{})
	Critical(message string, component string, data map[string]interface{})
}

// DefaultLogger is the default implementation of the Logger interface.
// It renders "component: message key=value ..." with sorted keys and hands
// it to the package-level entry points.
type DefaultLogger struct{}

// NewLogger creates a new instance of the default logger.
func NewLogger() Logger {
	return &DefaultLogger{}
}

// Trace logs a trace event.
func (l *DefaultLogger) Trace(message string, component string, data map[string]interface{}) {
	l.log(TraceLevel, message, component, data)
}

// Debug logs a debug event.
func (l *DefaultLogger) Debug(message string, component string, data map[string]interface{}) {
	l.log(DebugLevel, message, component, data)
}

// Info logs an info event.
func (l *DefaultLogger) Info(message string, component string, data map[string]interface{}) {
	l.log(InfoLevel, message, component, data)
}

// Warn logs a warning event.
func (l *DefaultLogger) Warn(message string, component string, data map[string]interface{}) {
	l.log(WarnLevel, message, component, data)
}

// Error logs an error event.
func (l *DefaultLogger) Error(message string, component string, data map[string]interface{}) {
	l.log(ErrorLevel, message, component, data)
}

// Critical logs a critical event.
func (l *DefaultLogger) Critical(message string, component string, data map[string]interface{}) {
	l.log(CriticalLevel, message, component, data)
}

func (l *DefaultLogger) log(level Level, message, component string, data map[string]interface{}) {
	if !ShouldLog(level) {
		// Still counts as first use for the lazy file sink.
		facade.ensureFileSink()
		return
	}
	Log(level, "%s", componentMessage(message, component, data))
}

func componentMessage(message, component string, data map[string]interface{}) string {
	var b strings.Builder
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(message)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, data[k])
	}
	return b.String()
}
