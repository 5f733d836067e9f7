package logger

import "sync"

// Channel names, as reported in Entry.Channel.
const (
	CoutChannel    = "cout"
	DefaultChannel = "default"
)

// channel is a named, ordered list of sinks. The list is copy-on-write:
// writers take a snapshot under the read lock and never block mutations
// while sink I/O is in progress.
type channel struct {
	name    string
	pattern func(level Level, message string) string

	mu    sync.RWMutex
	sinks []Sink
}

// sinkFailure pairs a sink with the error its Write returned.
type sinkFailure struct {
	sink Sink
	err  error
}

func newChannel(name string, pattern func(Level, string) string, sinks ...Sink) *channel {
	return &channel{name: name, pattern: pattern, sinks: sinks}
}

// bareMessage is the cout channel pattern.
func bareMessage(_ Level, message string) string {
	return message
}

// levelPrefixed is the default channel pattern: "[warning] message".
func levelPrefixed(level Level, message string) string {
	return "[" + level.Label() + "] " + message
}

// add appends s unless it is already attached.
func (c *channel) add(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.sinks {
		if existing == s {
			return
		}
	}
	next := make([]Sink, len(c.sinks), len(c.sinks)+1)
	copy(next, c.sinks)
	c.sinks = append(next, s)
}

// remove detaches s by identity and reports whether it was attached.
func (c *channel) remove(s Sink) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Sink, 0, len(c.sinks))
	for _, existing := range c.sinks {
		if existing != s {
			next = append(next, existing)
		}
	}
	if len(next) == len(c.sinks) {
		return false
	}
	c.sinks = next
	return true
}

func (c *channel) snapshot() []Sink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sinks
}

// write delivers entry to every sink in attachment order.
func (c *channel) write(entry Entry) []sinkFailure {
	entry.Channel = c.name
	entry.Line = c.pattern(entry.Level, entry.Message)

	var failures []sinkFailure
	for _, s := range c.snapshot() {
		if err := s.Write(entry); err != nil {
			failures = append(failures, sinkFailure{sink: s, err: err})
		}
	}
	return failures
}
