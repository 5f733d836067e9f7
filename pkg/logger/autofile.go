//go:build !nologfile

package logger

// autoFileSink enables creating DefaultFilePath on first use.
const autoFileSink = true
