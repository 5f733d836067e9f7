package logger

import (
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single admitted message as handed to a Sink.
type Entry struct {
	// Time is when the entry point was called.
	Time time.Time
	// Level is the severity the message was logged at.
	Level Level
	// Channel names the channel that routed the message ("cout" or "default").
	Channel string
	// Message is the formatted message without any channel decoration.
	Message string
	// Line is Message rendered with the channel pattern, without a trailing newline.
	Line string
}

// Sink is a destination for log entries.
//
// Sinks are identified by interface equality, so implementations should be
// pointer types: RemoveSink detaches exactly the value passed to AddSink.
// Write may be called concurrently and must serialize its own output so
// lines never interleave.
type Sink interface {
	Write(entry Entry) error
	Flush() error
}

// Lock wraps w in a mutex to make it safe for concurrent use.
// Sinks sharing one stream (like stdout) should share one locked writer.
func Lock(w io.Writer) io.Writer {
	if _, ok := w.(*lockWriter); ok {
		return w
	}
	return &lockWriter{w: w}
}

type lockWriter struct {
	sync.Mutex
	w io.Writer
}

func (lw *lockWriter) Write(p []byte) (int, error) {
	lw.Lock()
	n, err := lw.w.Write(p)
	lw.Unlock()
	return n, err
}

// BufferSink keeps every line in memory. Useful for tests and for
// showing recent output in a host UI.
type BufferSink struct {
	mu  sync.Mutex
	buf strings.Builder
}

// NewBufferSink creates an empty BufferSink.
func NewBufferSink() *BufferSink {
	return &BufferSink{}
}

// Write appends the entry's line and a newline.
func (s *BufferSink) Write(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.WriteString(entry.Line)
	s.buf.WriteByte('\n')
	return nil
}

// Flush is a no-op.
func (s *BufferSink) Flush() error { return nil }

// String returns everything written so far.
func (s *BufferSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Lines returns the written lines in order.
func (s *BufferSink) Lines() []string {
	out := strings.TrimSuffix(s.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Clear drops the buffered content.
func (s *BufferSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Reset()
}

// FuncSink adapts callbacks to the Sink interface.
type FuncSink struct {
	mu    sync.Mutex
	write func(line string)
	flush func()
}

// NewFuncSink returns a sink calling write for every line and flush, if
// not nil, on Flush. Calls are serialized.
func NewFuncSink(write func(line string), flush func()) *FuncSink {
	return &FuncSink{write: write, flush: flush}
}

// Write hands the rendered line to the callback.
func (s *FuncSink) Write(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(entry.Line)
	return nil
}

// Flush calls the flush callback, if any.
func (s *FuncSink) Flush() error {
	if s.flush == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flush()
	return nil
}
