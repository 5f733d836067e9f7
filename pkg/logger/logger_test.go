package logger

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/heyjunin/sinklog/pkg/errors"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// harness replaces the process-wide facility for one test.
type harness struct {
	console *bytes.Buffer
	dir     string
	opens   *atomic.Int32
}

func newHarness(t *testing.T, mutate ...func(*facilityOptions)) *harness {
	t.Helper()

	h := &harness{
		console: &bytes.Buffer{},
		dir:     t.TempDir(),
		opens:   atomic.NewInt32(0),
	}
	opts := facilityOptions{
		console:     h.console,
		defaultPath: filepath.Join(h.dir, DefaultFilePath),
		autoFile:    true,
		openFile: func(path string) (*FileSink, error) {
			h.opens.Inc()
			return OpenFileSink(path)
		},
		errOut: io.Discard,
	}
	for _, m := range mutate {
		m(&opts)
	}

	prev := facade
	facade = newFacility(opts)
	t.Cleanup(func() {
		_ = facade.shutdown()
		facade = prev
	})
	return h
}

func (h *harness) defaultPath() string {
	return filepath.Join(h.dir, DefaultFilePath)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSetLevelFromTextRecognizesAllNames(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	tests := []struct {
		name string
		want Level
	}{
		{"off", OffLevel},
		{"CRITICAL", CriticalLevel},
		{"Error", ErrorLevel},
		{"wArN", WarnLevel},
		{"info", InfoLevel},
		{"Debug", DebugLevel},
		{"TRACE", TraceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, SetLevelFromText(tt.name))
			assert.Equal(t, tt.want, GetLevel())
			assert.Equal(t, tt.want.String(), GetLevelText())
		})
	}
}

func TestSetLevelFromTextRejectsUnknownName(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	SetLevel(DebugLevel)

	for _, name := range []string{"verbose", "", "warning", "info "} {
		err := SetLevelFromText(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, stderrors.Is(err, ErrInvalidLevelName))
		assert.Contains(t, err.Error(), "got "+name+".")

		var structErr *errors.StructuredError
		require.True(t, stderrors.As(err, &structErr))
		assert.Equal(t, errors.ConfigurationError, structErr.Type)
		assert.Equal(t, errors.ErrInvalidLevelName, structErr.Code)

		assert.Equal(t, DebugLevel, GetLevel(), "level must not change")
	}
}

func TestShouldLogMatrix(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	for _, threshold := range Levels() {
		SetLevel(threshold)
		for _, query := range Levels() {
			want := threshold != OffLevel && query <= threshold
			assert.Equal(t, want, ShouldLog(query), "threshold %s, query %s", threshold, query)
		}
	}

	SetLevel(OffLevel)
	assert.False(t, ShouldLog(CriticalLevel), "Off admits nothing, not even Critical")
	SetLevel(TraceLevel)
	assert.True(t, ShouldLog(TraceLevel))
}

func TestSetLevelLogsConfirmation(t *testing.T) {
	h := newHarness(t)
	RemoveFileSink()

	SetLevel(DebugLevel)
	assert.Contains(t, h.console.String(), "[info] Set log level to Debug.\n")

	h.console.Reset()
	SetLevel(ErrorLevel)
	assert.Empty(t, h.console.String(), "confirmation is itself filtered by the new level")
}

func TestUnknownLevelIsReportedAsInternalError(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	SetLevel(WarnLevel)

	var reported []error
	SetFatalHandler(func(err error) { reported = append(reported, err) })

	SetLevel(Level(42))
	assert.False(t, ShouldLog(Level(-1)))

	require.Len(t, reported, 2)
	for _, err := range reported {
		var structErr *errors.StructuredError
		require.True(t, stderrors.As(err, &structErr))
		assert.Equal(t, errors.InternalError, structErr.Type)
		assert.Equal(t, errors.ErrUnknownLevel, structErr.Code)
	}
	assert.Equal(t, WarnLevel, GetLevel())
}

func TestDefaultFatalHandlerPanics(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	assert.Panics(t, func() { SetLevel(Level(99)) })
}

func TestFirstUseCreatesFileSinkOnceUnderConcurrency(t *testing.T) {
	h := newHarness(t)

	const goroutines = 16
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			Info("message %d", i)
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), h.opens.Load())
	path, ok := FilePath()
	require.True(t, ok)
	assert.Equal(t, h.defaultPath(), path)

	content := readFile(t, path)
	assert.Equal(t, goroutines, strings.Count(content, "[info] message "))
}

func TestFirstUseCreatesFileSinkEvenWhenFiltered(t *testing.T) {
	h := newHarness(t)

	Debug("not admitted at the default level")

	assert.Equal(t, int32(1), h.opens.Load())
	assert.Equal(t, fileAttached, facade.currentFileState())
}

func TestRemoveFileSinkBeforeFirstUseSuppressesAutoCreation(t *testing.T) {
	h := newHarness(t)

	RemoveFileSink()
	Info("one")
	Warn("two")
	ConsoleOnly("three")

	assert.Equal(t, int32(0), h.opens.Load())
	assert.Equal(t, fileSuppressed, facade.currentFileState())
	_, err := os.Stat(h.defaultPath())
	assert.True(t, os.IsNotExist(err))

	explicit := filepath.Join(h.dir, "explicit.log")
	AddFileSink(explicit)
	Info("four")

	assert.Equal(t, int32(1), h.opens.Load())
	path, ok := FilePath()
	require.True(t, ok)
	assert.Equal(t, explicit, path)
	assert.Equal(t, "[info] four\n", readFile(t, explicit))
}

func TestAddFileSinkTwiceKeepsFirst(t *testing.T) {
	h := newHarness(t)

	first := filepath.Join(h.dir, "first.log")
	second := filepath.Join(h.dir, "second.log")
	AddFileSink(first)
	AddFileSink(second)

	path, ok := FilePath()
	require.True(t, ok)
	assert.Equal(t, first, path)
	assert.Equal(t, int32(1), h.opens.Load())
	assert.Contains(t, h.console.String(), "[warning] Already logging to file '"+first+"'")

	_, err := os.Stat(second)
	assert.True(t, os.IsNotExist(err))

	Info("after")
	assert.Contains(t, readFile(t, first), "[info] after\n")
}

func TestAddFileSinkEmptyPathUsesDefault(t *testing.T) {
	h := newHarness(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(h.dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	AddFileSink("")

	path, ok := FilePath()
	require.True(t, ok)
	assert.Equal(t, DefaultFilePath, path)
}

func TestAddFileSinkFailureIsAWarning(t *testing.T) {
	h := newHarness(t)
	RemoveFileSink()

	blocker := filepath.Join(h.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	bad := filepath.Join(blocker, "sub", "app.log")

	assert.NotPanics(t, func() { AddFileSink(bad) })

	_, ok := FilePath()
	assert.False(t, ok)
	assert.Equal(t, fileFailed, facade.currentFileState())
	assert.Contains(t, h.console.String(), "[warning] Can't open file '"+bad+"' for writing.")

	h.console.Reset()
	Error("still logging")
	assert.Equal(t, "[error] still logging\n", h.console.String())

	good := filepath.Join(h.dir, "good.log")
	AddFileSink(good)
	_, ok = FilePath()
	assert.True(t, ok, "explicit calls work after a failure")
}

func TestAutoFileSinkFailureIsNotRetried(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	h := newHarness(t, func(opts *facilityOptions) {
		opts.defaultPath = filepath.Join(blocker, DefaultFilePath)
	})

	Info("first")
	Info("second")

	assert.Equal(t, int32(1), h.opens.Load())
	assert.Equal(t, fileFailed, facade.currentFileState())
	assert.Equal(t, 1, strings.Count(h.console.String(), "Can't open file"))
	assert.Contains(t, h.console.String(), "[info] first\n[info] second\n")
}

func TestFileOpenWarningNamesCauseOnce(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	h := newHarness(t)
	bad := filepath.Join(blocker, "app.log")

	AddFileSink(bad)

	out := h.console.String()
	assert.Equal(t, 1, strings.Count(out, bad), "path named once: %s", out)
	assert.Contains(t, out, "not a directory")
	assert.NotContains(t, out, string(errors.ResourceError))
}

func TestAutoFileSinkDisabledByBuildOption(t *testing.T) {
	h := newHarness(t, func(opts *facilityOptions) {
		opts.autoFile = false
	})

	Info("hello")

	assert.Equal(t, int32(0), h.opens.Load())
	assert.Equal(t, fileUnattempted, facade.currentFileState())
}

func TestRemoveFileSinkClosesAndDoesNotRecreate(t *testing.T) {
	h := newHarness(t)

	Info("before")
	require.Equal(t, int32(1), h.opens.Load())

	RemoveFileSink()
	Info("after")

	_, ok := FilePath()
	assert.False(t, ok)
	assert.Equal(t, fileDetached, facade.currentFileState())
	assert.Equal(t, int32(1), h.opens.Load())

	data, err := os.ReadFile(h.defaultPath())
	require.NoError(t, err)
	assert.Equal(t, "[info] before\n", string(data))

	RemoveFileSink()
	assert.Equal(t, fileDetached, facade.currentFileState(), "second removal is a no-op")
}

func TestExplicitFileThenRemoveBeforeFirstUse(t *testing.T) {
	h := newHarness(t)

	AddFileSink(filepath.Join(h.dir, "explicit.log"))
	RemoveFileSink()
	Info("first real message")

	assert.Equal(t, int32(1), h.opens.Load(), "automatic creation must not follow an explicit removal")
	_, err := os.Stat(h.defaultPath())
	assert.True(t, os.IsNotExist(err))
}

func TestAddRemoveSinkDelivery(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	custom := NewBufferSink()
	AddSink(custom)
	Info("one")
	Warn("two")
	ConsoleOnly("three")
	RemoveSink(custom)
	Info("four")
	Error("five")
	ConsoleOnly("six")

	assert.Equal(t, []string{"[info] one", "[warning] two", "three"}, custom.Lines())

	assert.NotPanics(t, func() { RemoveSink(NewBufferSink()) })
}

func TestAddSinkTwiceDeliversOnce(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	custom := NewBufferSink()
	AddSink(custom)
	AddSink(custom)
	Info("once")

	assert.Equal(t, []string{"[info] once"}, custom.Lines())
}

func TestSinksReceiveInAttachmentOrder(t *testing.T) {
	newHarness(t)
	RemoveFileSink()

	var mu sync.Mutex
	var order []string
	record := func(name string) Sink {
		return NewFuncSink(func(line string) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name+":"+line)
		}, nil)
	}
	AddSink(record("a"))
	AddSink(record("b"))
	Info("x")

	assert.Equal(t, []string{"a:[info] x", "b:[info] x"}, order)
}

func TestConsoleOnlyNeverReachesFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "app.log")
	AddFileSink(path)

	ConsoleOnly("progress %d%%", 50)
	Info("persisted")
	ConsoleOnly("done")

	content := readFile(t, path)
	assert.Equal(t, "[info] persisted\n", content)
	assert.NotContains(t, content, "progress")
	assert.Contains(t, h.console.String(), "progress 50%\n[info] persisted\ndone\n")
}

func TestConsoleOnlyRespectsThreshold(t *testing.T) {
	h := newHarness(t)
	RemoveFileSink()
	SetLevel(WarnLevel)

	ConsoleOnly("hidden")
	assert.NotContains(t, h.console.String(), "hidden")
}

func TestAllEntryPointsRouteToDefaultChannel(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	SetLevel(TraceLevel)

	custom := NewBufferSink()
	AddSink(custom)
	Critical("c")
	Error("e")
	Warn("w")
	Info("i")
	Debug("d")
	Trace("t")
	Log(WarnLevel, "generic %s", "call")
	Log(OffLevel, "ignored")

	assert.Equal(t, []string{
		"[critical] c",
		"[error] e",
		"[warning] w",
		"[info] i",
		"[debug] d",
		"[trace] t",
		"[warning] generic call",
	}, custom.Lines())
}

func TestFormattingFailuresFallBackToTemplate(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	custom := NewBufferSink()
	AddSink(custom)

	Info("value %d", "text")
	Info("%d and %d", 1)
	Info("100% done")

	lines := custom.Lines()
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "[info] value %d [format error: "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[info] %d and %d [format error: "), lines[1])
	assert.Equal(t, "[info] 100% done", lines[2])
}

func TestCustomFormatter(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	custom := NewBufferSink()
	AddSink(custom)

	SetFormatter(func(template string, args ...interface{}) (string, error) {
		if len(args) == 0 {
			return "", fmt.Errorf("need arguments")
		}
		if args[0] == "boom" {
			panic("formatter exploded")
		}
		return strings.ReplaceAll(template, "{}", fmt.Sprint(args[0])), nil
	})
	t.Cleanup(func() { SetFormatter(nil) })

	Info("hello {}", "world")
	Info("plain")
	Info("x {}", "boom")

	assert.Equal(t, []string{
		"[info] hello world",
		"[info] plain [format error: need arguments]",
		"[info] x {} [format error: formatter panic: formatter exploded]",
	}, custom.Lines())
}

func TestFileWriteFailureDisablesFileSink(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "app.log")
	AddFileSink(path)

	// Close the descriptor underneath the sink so the next flush fails.
	require.NoError(t, facade.files.sink.file.Close())

	custom := NewBufferSink()
	AddSink(custom)
	Info("boom")

	_, ok := FilePath()
	assert.False(t, ok)
	assert.Equal(t, fileFailed, facade.currentFileState())
	lines := custom.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "[info] boom", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[warning] "), lines[1])
	assert.Contains(t, lines[1], "File logging is disabled.")

	Info("after")
	assert.Equal(t, "[info] after", custom.Lines()[2])
}

func TestFailingCustomSinkIsReportedOnStderr(t *testing.T) {
	var errOut bytes.Buffer
	newHarness(t, func(opts *facilityOptions) {
		opts.errOut = &errOut
	})
	RemoveFileSink()

	AddSink(failingSink{})
	after := NewBufferSink()
	AddSink(after)
	Info("hello")

	assert.Contains(t, errOut.String(), "sinklog: sink write failed: sink is broken")
	assert.Equal(t, []string{"[info] hello"}, after.Lines(), "later sinks still receive the message")
}

type failingSink struct{}

func (failingSink) Write(Entry) error { return stderrors.New("sink is broken") }
func (failingSink) Flush() error      { return nil }

func TestConsoleColorsThroughLockedStdout(t *testing.T) {
	var console bytes.Buffer
	r := lipgloss.NewRenderer(&console)
	r.SetColorProfile(termenv.ANSI)
	newHarness(t, func(opts *facilityOptions) {
		opts.console = &console
		opts.color = true
		opts.renderer = r
	})
	RemoveFileSink()

	Error("failed")
	ConsoleOnly("plain")

	assert.Contains(t, console.String(), "\x1b[")
	assert.Contains(t, console.String(), "[error] failed")
	assert.Contains(t, console.String(), "plain\n")
}

func TestConsoleWithoutTerminalStaysPlain(t *testing.T) {
	h := newHarness(t, func(opts *facilityOptions) {
		opts.color = true
	})
	RemoveFileSink()

	Error("failed")

	assert.Equal(t, "[error] failed\n", h.console.String())
}

type flushFailingSink struct{ BufferSink }

func (*flushFailingSink) Flush() error { return stderrors.New("device gone") }

func TestFlushReportsFailingSinks(t *testing.T) {
	newHarness(t)
	RemoveFileSink()
	bad := &flushFailingSink{}
	AddSink(bad)

	err := Flush()
	require.Error(t, err)
	var serr *errors.StructuredError
	require.True(t, stderrors.As(err, &serr))
	assert.Equal(t, errors.ErrSinkFlush, serr.Code)
	assert.Equal(t, errors.ResourceError, serr.Type)
	assert.Equal(t, "device gone", serr.Details)

	RemoveSink(bad)
	assert.NoError(t, Flush())
}

func TestShutdownFlushesAndClosesFileSink(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.dir, "app.log")
	AddFileSink(path)
	SetLevel(TraceLevel)

	Debug("buffered")
	require.NoError(t, Shutdown())

	_, ok := FilePath()
	assert.False(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[debug] buffered\n")

	assert.NotPanics(t, func() { Info("console still works") })
	assert.Contains(t, h.console.String(), "[info] console still works")
}

func TestConcurrentLoggingAndSinkChanges(t *testing.T) {
	h := newHarness(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Info("worker %d line %d", i, j)
				ConsoleOnly("progress %d", j)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := NewBufferSink()
				AddSink(s)
				RemoveSink(s)
				_ = ShouldLog(DebugLevel)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), h.opens.Load())
	content := readFile(t, h.defaultPath())
	assert.Equal(t, 8*50, strings.Count(content, "[info] worker "))
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "[info] "), "corrupted line %q", line)
	}
}
