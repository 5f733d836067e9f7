//go:build nologfile

package logger

// autoFileSink is off when built with -tags nologfile, e.g. for hosts that
// run several instances side by side and would collide on one log file.
const autoFileSink = false
