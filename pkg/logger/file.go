package logger

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/heyjunin/sinklog/pkg/errors"
)

// DefaultFilePath is where the file sink is created automatically on first use.
const DefaultFilePath = "sinklog.log"

// errSinkClosed is returned by writes racing with RemoveFileSink.
var errSinkClosed = stderrors.New("file sink closed")

// fileOptions holds configuration for a FileSink.
type fileOptions struct {
	flushLevel Level
}

// FileOption is a function type used to configure a FileSink.
type FileOption func(*fileOptions)

// WithFlushLevel sets the least severe level that is flushed to disk
// immediately. Less severe entries stay buffered until the next flush.
// Defaults to InfoLevel.
func WithFlushLevel(level Level) FileOption {
	return func(opts *fileOptions) {
		opts.flushLevel = level
	}
}

// FileSink appends lines to a file.
type FileSink struct {
	mu         sync.Mutex
	path       string
	file       *os.File
	w          *bufio.Writer
	flushLevel Level
	closed     bool
}

// OpenFileSink opens path for appending, creating it and its parent
// directories if needed.
func OpenFileSink(path string, opts ...FileOption) (*FileSink, error) {
	options := fileOptions{flushLevel: InfoLevel}
	for _, opt := range opts {
		opt(&options)
	}

	message := fmt.Sprintf("Can't open file '%s' for writing", path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ResourceError, message, errors.ErrFileSinkOpen)
	}
	if err := checkWritable(dir); err != nil {
		return nil, errors.Wrap(err, errors.ResourceError, message, errors.ErrFileSinkOpen)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceError, message, errors.ErrFileSinkOpen)
	}

	return &FileSink{
		path:       path,
		file:       f,
		w:          bufio.NewWriter(f),
		flushLevel: options.flushLevel,
	}, nil
}

// Path returns the path the sink was opened with.
func (s *FileSink) Path() string {
	return s.path
}

// Write appends the entry's line.
func (s *FileSink) Write(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSinkClosed
	}
	if _, err := s.w.WriteString(entry.Line + "\n"); err != nil {
		return errors.Wrap(err, errors.ResourceError,
			fmt.Sprintf("Writing to log file '%s' failed", s.path), errors.ErrFileSinkWrite)
	}
	if entry.Level <= s.flushLevel {
		return s.flushLocked()
	}
	return nil
}

// Flush writes buffered lines to the file.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.flushLocked()
}

func (s *FileSink) flushLocked() error {
	if err := s.w.Flush(); err != nil {
		return errors.Wrap(err, errors.ResourceError,
			fmt.Sprintf("Writing to log file '%s' failed", s.path), errors.ErrFileSinkWrite)
	}
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if err := multierror.Append(nil, flushErr, closeErr).ErrorOrNil(); err != nil {
		return errors.Wrap(err, errors.ResourceError,
			fmt.Sprintf("Closing log file '%s' failed", s.path), errors.ErrFileSinkClose)
	}
	return nil
}
