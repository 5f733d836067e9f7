package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Init configures the zerolog globals used by ZerologSink: Unix timestamps,
// and no global level filter since the facility threshold already decides
// what is admitted. Call it once at application startup.
func Init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
}

// ZerologSink forwards entries to a zerolog.Logger as structured events.
// The message is logged without the channel pattern; the channel is
// recorded in the "component" field.
type ZerologSink struct {
	zl zerolog.Logger
}

// NewZerologSink wraps zl. The logger's writer must be safe for
// concurrent use (see zerolog.SyncWriter).
func NewZerologSink(zl zerolog.Logger) *ZerologSink {
	return &ZerologSink{zl: zl}
}

// NewJSONSink returns a sink writing one JSON object per entry to w.
func NewJSONSink(w io.Writer) *ZerologSink {
	return NewZerologSink(zerolog.New(zerolog.SyncWriter(w)).With().Timestamp().Logger())
}

// Write emits the entry at the matching zerolog level.
func (s *ZerologSink) Write(entry Entry) error {
	s.zl.WithLevel(zerologLevel(entry.Level)).
		Str("component", entry.Channel).
		Msg(entry.Message)
	return nil
}

// Flush is a no-op; zerolog writes each event immediately.
func (s *ZerologSink) Flush() error { return nil }

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case CriticalLevel:
		return zerolog.FatalLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case DebugLevel:
		return zerolog.DebugLevel
	case TraceLevel:
		return zerolog.TraceLevel
	}
	return zerolog.Disabled
}
