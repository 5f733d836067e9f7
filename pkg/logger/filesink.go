package logger

import (
	stderrors "errors"
	"sync"

	"github.com/heyjunin/sinklog/pkg/errors"
)

// fileState tracks the lifecycle of the file sink.
type fileState int

const (
	// fileUnattempted: nothing happened yet; first use may create the default file.
	fileUnattempted fileState = iota
	// fileAttached: a file sink receives the default channel.
	fileAttached
	// fileSuppressed: RemoveFileSink was called before any file existed.
	fileSuppressed
	// fileFailed: opening or writing the file failed; never retried automatically.
	fileFailed
	// fileDetached: a file sink existed and was removed.
	fileDetached
)

func (s fileState) String() string {
	switch s {
	case fileUnattempted:
		return "unattempted"
	case fileAttached:
		return "attached"
	case fileSuppressed:
		return "suppressed"
	case fileFailed:
		return "failed"
	case fileDetached:
		return "detached"
	}
	return "unknown"
}

// fileSinks is the process-wide file sink singleton and its lazy gate.
type fileSinks struct {
	once sync.Once

	mu          sync.Mutex
	state       fileState
	sink        *FileSink
	defaultPath string
	auto        bool
	open        func(path string) (*FileSink, error)
}

// ensureFileSink runs the automatic creation at most once per facility,
// however many goroutines reach their first log call together.
func (f *facility) ensureFileSink() {
	f.files.once.Do(func() {
		f.attachFileSink(f.files.defaultPath, true)
	})
}

// attachFileSink opens path and attaches it to the default channel.
// Automatic attempts only act in the unattempted state and stay silent
// when a file already exists; explicit ones warn about the duplicate.
func (f *facility) attachFileSink(path string, auto bool) {
	fs := &f.files
	fs.mu.Lock()

	if auto && (!fs.auto || fs.state != fileUnattempted) {
		fs.mu.Unlock()
		return
	}
	if fs.sink != nil {
		existing := fs.sink.Path()
		fs.mu.Unlock()
		if !auto {
			f.emit(WarnLevel, f.all,
				"Already logging to file '%s'; log file not added. Call RemoveFileSink() first.", existing)
		}
		return
	}

	sink, err := fs.open(path)
	if err != nil {
		fs.state = fileFailed
		fs.mu.Unlock()
		f.emit(WarnLevel, f.all,
			"Can't open file '%s' for writing. Log file will not be created. "+
				"Check that you have write permissions to the specified path. (%s)", path, errorCause(err))
		return
	}
	fs.sink = sink
	fs.state = fileAttached
	f.all.add(sink)
	fs.mu.Unlock()
}

// detachFileSink removes the current file sink from every channel and
// closes it. With no sink yet and nothing attempted, it suppresses the
// automatic creation instead.
func (f *facility) detachFileSink() error {
	fs := &f.files
	fs.mu.Lock()
	sink := fs.sink
	if sink == nil {
		if fs.state == fileUnattempted {
			fs.state = fileSuppressed
		}
		fs.mu.Unlock()
		return nil
	}
	fs.sink = nil
	fs.state = fileDetached
	f.all.remove(sink)
	f.cout.remove(sink)
	fs.mu.Unlock()

	return sink.Close()
}

// dropFailedFileSink disables file logging after a write error on sink.
// It reports false when sink is no longer the current file sink.
func (f *facility) dropFailedFileSink(sink Sink) bool {
	fs := &f.files
	fs.mu.Lock()
	if fs.sink == nil || Sink(fs.sink) != sink {
		fs.mu.Unlock()
		return false
	}
	current := fs.sink
	fs.sink = nil
	fs.state = fileFailed
	f.all.remove(current)
	f.cout.remove(current)
	fs.mu.Unlock()

	_ = current.Close()
	return true
}

// filePath returns the path of the attached file sink.
func (f *facility) filePath() (string, bool) {
	f.files.mu.Lock()
	defer f.files.mu.Unlock()
	if f.files.sink == nil {
		return "", false
	}
	return f.files.sink.Path(), true
}

func (f *facility) currentFileState() fileState {
	f.files.mu.Lock()
	defer f.files.mu.Unlock()
	return f.files.state
}

// errorCause returns the underlying reason of a structured error, which
// otherwise repeats the message of the warning it is embedded in.
func errorCause(err error) string {
	var serr *errors.StructuredError
	if stderrors.As(err, &serr) && serr.Details != "" {
		return serr.Details
	}
	return err.Error()
}

func isClosedSink(err error) bool {
	return stderrors.Is(err, errSinkClosed)
}
