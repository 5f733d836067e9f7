package logger

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// consoleOptions holds configuration for a ConsoleSink.
type consoleOptions struct {
	color    bool
	renderer *lipgloss.Renderer
}

// ConsoleOption is a function type used to configure a ConsoleSink.
type ConsoleOption func(*consoleOptions)

// WithColor enables level colors. Colors are only emitted when the
// writer is a terminal that supports them; otherwise lines stay plain.
func WithColor(enabled bool) ConsoleOption {
	return func(opts *consoleOptions) {
		opts.color = enabled
	}
}

// WithRenderer sets the renderer that detects the terminal's color
// support. Use it when w wraps the terminal, e.g. a Lock writer, and so
// hides its file descriptor.
func WithRenderer(r *lipgloss.Renderer) ConsoleOption {
	return func(opts *consoleOptions) {
		opts.renderer = r
	}
}

// ConsoleSink writes one line per entry to a stream, usually stdout.
type ConsoleSink struct {
	mu     sync.Mutex
	w      io.Writer
	styles map[Level]lipgloss.Style
}

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer, opts ...ConsoleOption) *ConsoleSink {
	var options consoleOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &ConsoleSink{w: w}
	if options.color {
		r := options.renderer
		if r == nil {
			r = lipgloss.NewRenderer(w)
		}
		base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
		s.styles = map[Level]lipgloss.Style{
			CriticalLevel: base.Bold(true).Foreground(lipgloss.Color("9")),
			ErrorLevel:    base.Foreground(lipgloss.Color("9")),
			WarnLevel:     base.Foreground(lipgloss.Color("11")),
			DebugLevel:    base.Faint(true),
			TraceLevel:    base.Faint(true),
		}
	}
	return s
}

// Write renders the entry's line, colored by level if enabled.
func (s *ConsoleSink) Write(entry Entry) error {
	line := entry.Line
	if style, ok := s.styles[entry.Level]; ok {
		line = style.Render(line)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Flush is a no-op; console writes are unbuffered.
func (s *ConsoleSink) Flush() error { return nil }
