// Package logger is the process-wide logging facility.
//
// Every component logs through the package-level functions. Messages are
// filtered by one shared Level and delivered to the sinks of two channels:
//
//   - the default channel ("[warning] message") used by Critical, Error,
//     Warn, Info, Debug and Trace. It holds the console sink, the file sink
//     and any sink added with AddSink.
//   - the cout channel ("message") used by ConsoleOnly. It holds the console
//     sink and custom sinks but never the file sink.
//
// The file sink is created lazily at DefaultFilePath by the first logging
// call, exactly once. Calling RemoveFileSink before that call opts out;
// AddFileSink attaches a file explicitly at any time.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-multierror"
	"github.com/heyjunin/sinklog/pkg/errors"
	"go.uber.org/atomic"
)

// facility holds all shared state; the package functions operate on one
// instance created at program start.
type facility struct {
	level *atomic.Int32
	cout  *channel
	all   *channel
	files fileSinks

	hooksMu   sync.RWMutex
	formatter Formatter
	fatal     func(error)
	errOut    io.Writer
	jsonOut   io.Writer
	jsonSink  Sink
}

// facilityOptions controls construction; tests swap in their own writers
// and file opener.
type facilityOptions struct {
	console     io.Writer
	color       bool
	renderer    *lipgloss.Renderer
	defaultPath string
	autoFile    bool
	openFile    func(path string) (*FileSink, error)
	errOut      io.Writer
	jsonOut     io.Writer
}

func newFacility(opts facilityOptions) *facility {
	if opts.openFile == nil {
		opts.openFile = func(path string) (*FileSink, error) { return OpenFileSink(path) }
	}
	if opts.errOut == nil {
		opts.errOut = os.Stderr
	}
	if opts.jsonOut == nil {
		opts.jsonOut = os.Stderr
	}

	// Terminal detection needs the raw stream; the locked wrapper hides it.
	if opts.renderer == nil {
		opts.renderer = lipgloss.NewRenderer(opts.console)
	}
	console := Lock(opts.console)
	consoleOpts := []ConsoleOption{WithColor(opts.color), WithRenderer(opts.renderer)}
	f := &facility{
		level:     atomic.NewInt32(int32(InfoLevel)),
		cout:      newChannel(CoutChannel, bareMessage, NewConsoleSink(console, consoleOpts...)),
		all:       newChannel(DefaultChannel, levelPrefixed, NewConsoleSink(console, consoleOpts...)),
		formatter: Sprintf,
		fatal:     func(err error) { panic(err) },
		errOut:    opts.errOut,
		jsonOut:   opts.jsonOut,
	}
	f.files.defaultPath = opts.defaultPath
	f.files.auto = opts.autoFile
	f.files.open = opts.openFile
	return f
}

var facade = newFacility(facilityOptions{
	console:     os.Stdout,
	color:       true,
	defaultPath: DefaultFilePath,
	autoFile:    autoFileSink,
})

func (f *facility) internalError(err error) {
	f.hooksMu.RLock()
	fatal := f.fatal
	f.hooksMu.RUnlock()
	fatal(err)
}

func (f *facility) getLevel() Level {
	return Level(f.level.Load())
}

func (f *facility) setLevel(level Level) {
	if !level.valid() {
		f.internalError(unknownLevel(level))
		return
	}
	f.level.Store(int32(level))
	f.log(InfoLevel, f.all, "Set log level to %s.", level)
}

func (f *facility) shouldLog(level Level) bool {
	if !level.valid() {
		f.internalError(unknownLevel(level))
		return false
	}
	return f.getLevel().admits(level)
}

// log is the path of every public entry point: lazy gate first, then emit.
func (f *facility) log(level Level, ch *channel, template string, args ...interface{}) {
	f.ensureFileSink()
	f.emit(level, ch, template, args...)
}

// emit filters, formats and delivers a message without touching the lazy
// gate, so the gate itself can report problems.
func (f *facility) emit(level Level, ch *channel, template string, args ...interface{}) {
	if level == OffLevel || !f.shouldLog(level) {
		return
	}

	f.hooksMu.RLock()
	formatter := f.formatter
	f.hooksMu.RUnlock()

	entry := Entry{
		Time:    time.Now(),
		Level:   level,
		Message: render(formatter, template, args),
	}
	for _, failure := range ch.write(entry) {
		f.handleSinkFailure(failure)
	}
}

// handleSinkFailure absorbs a sink write error. A failing file sink is
// dropped and reported on the remaining sinks; other sinks are reported on
// stderr so a broken custom sink cannot recurse into itself.
func (f *facility) handleSinkFailure(failure sinkFailure) {
	if isClosedSink(failure.err) {
		return
	}
	if f.dropFailedFileSink(failure.sink) {
		f.emit(WarnLevel, f.all, "%v. File logging is disabled.", failure.err)
		return
	}
	fmt.Fprintf(f.errOut, "sinklog: sink write failed: %v\n", failure.err)
}

func (f *facility) addSink(s Sink) {
	f.cout.add(s)
	f.all.add(s)
}

func (f *facility) removeSink(s Sink) {
	f.all.remove(s)
	f.cout.remove(s)
}

// setJSON attaches or removes the JSON sink managed by Configure. At most
// one is attached however often it is enabled.
func (f *facility) setJSON(enabled bool) {
	f.hooksMu.Lock()
	defer f.hooksMu.Unlock()
	switch {
	case enabled && f.jsonSink == nil:
		Init()
		f.jsonSink = NewJSONSink(f.jsonOut)
		f.addSink(f.jsonSink)
	case !enabled && f.jsonSink != nil:
		f.removeSink(f.jsonSink)
		f.jsonSink = nil
	}
}

// flush flushes every distinct sink once.
func (f *facility) flush() error {
	var result *multierror.Error
	seen := make(map[Sink]bool)
	for _, ch := range []*channel{f.all, f.cout} {
		for _, s := range ch.snapshot() {
			if seen[s] {
				continue
			}
			seen[s] = true
			if err := s.Flush(); err != nil {
				result = multierror.Append(result, errors.Wrap(err, errors.ResourceError,
					errors.GetErrorMessage(errors.ErrSinkFlush), errors.ErrSinkFlush))
			}
		}
	}
	return result.ErrorOrNil()
}

// shutdown flushes all sinks and closes the file sink.
func (f *facility) shutdown() error {
	result := multierror.Append(nil, f.flush())
	f.files.mu.Lock()
	sink := f.files.sink
	f.files.mu.Unlock()
	if sink != nil {
		result = multierror.Append(result, f.detachFileSink())
	}
	return result.ErrorOrNil()
}

// SetLevel replaces the shared threshold and logs the change at InfoLevel.
func SetLevel(level Level) {
	facade.setLevel(level)
}

// GetLevel returns the current threshold.
func GetLevel() Level {
	return facade.getLevel()
}

// SetLevelFromText parses name case-insensitively and calls SetLevel.
// An unrecognized name leaves the level unchanged and returns an error
// matching ErrInvalidLevelName.
func SetLevelFromText(name string) error {
	level, err := ParseLevel(name)
	if err != nil {
		return err
	}
	facade.setLevel(level)
	return nil
}

// GetLevelText returns the current threshold's name, e.g. "Info".
func GetLevelText() string {
	return facade.getLevel().String()
}

// ShouldLog reports whether a message at level would currently be written,
// so callers can skip building expensive messages.
func ShouldLog(level Level) bool {
	return facade.shouldLog(level)
}

// AddFileSink starts logging the default channel to path, or to
// DefaultFilePath when path is empty. If a file sink is already attached
// it only logs a warning naming the existing file. Open failures are
// logged as warnings, never returned.
func AddFileSink(path string) {
	if path == "" {
		path = DefaultFilePath
	}
	facade.attachFileSink(path, false)
}

// RemoveFileSink detaches and closes the file sink. Called before any file
// sink exists, it disables the automatic creation for good; AddFileSink
// still works afterwards.
func RemoveFileSink() {
	if err := facade.detachFileSink(); err != nil {
		facade.emit(WarnLevel, facade.all, "%v", err)
	}
}

// FilePath returns the path of the attached file sink, if any.
func FilePath() (string, bool) {
	return facade.filePath()
}

// AddSink attaches s to both channels. Adding the same sink twice has no effect.
func AddSink(s Sink) {
	facade.addSink(s)
}

// RemoveSink detaches s from both channels. Unknown sinks are ignored.
func RemoveSink(s Sink) {
	facade.removeSink(s)
}

// SetFormatter replaces the message formatter; nil restores Sprintf.
func SetFormatter(f Formatter) {
	if f == nil {
		f = Sprintf
	}
	facade.hooksMu.Lock()
	facade.formatter = f
	facade.hooksMu.Unlock()
}

// SetFatalHandler replaces the reporter for internal invariant violations,
// such as an unknown Level value. The default panics; nil restores it.
func SetFatalHandler(handler func(error)) {
	if handler == nil {
		handler = func(err error) { panic(err) }
	}
	facade.hooksMu.Lock()
	facade.fatal = handler
	facade.hooksMu.Unlock()
}

// Flush flushes every attached sink.
func Flush() error {
	return facade.flush()
}

// Shutdown flushes every sink and closes the file sink. Logging keeps
// working on the remaining sinks afterwards.
func Shutdown() error {
	return facade.shutdown()
}

// Log writes a message at level to the default channel. OffLevel is not a
// message severity and is ignored.
func Log(level Level, template string, args ...interface{}) {
	facade.log(level, facade.all, template, args...)
}

// Critical logs to the default channel at CriticalLevel.
func Critical(template string, args ...interface{}) {
	facade.log(CriticalLevel, facade.all, template, args...)
}

// Error logs to the default channel at ErrorLevel.
func Error(template string, args ...interface{}) {
	facade.log(ErrorLevel, facade.all, template, args...)
}

// Warn logs to the default channel at WarnLevel.
func Warn(template string, args ...interface{}) {
	facade.log(WarnLevel, facade.all, template, args...)
}

// Info logs to the default channel at InfoLevel.
func Info(template string, args ...interface{}) {
	facade.log(InfoLevel, facade.all, template, args...)
}

// Debug logs to the default channel at DebugLevel.
func Debug(template string, args ...interface{}) {
	facade.log(DebugLevel, facade.all, template, args...)
}

// Trace logs to the default channel at TraceLevel.
func Trace(template string, args ...interface{}) {
	facade.log(TraceLevel, facade.all, template, args...)
}

// ConsoleOnly writes the bare message to the cout channel at InfoLevel.
// It is meant for user-facing output such as progress text and never
// reaches the log file.
func ConsoleOnly(template string, args ...interface{}) {
	facade.log(InfoLevel, facade.cout, template, args...)
}
