package errors

// ErrorMessages holds the standard message for every error code.
var ErrorMessages = map[int]string{
	ErrInvalidLevelName:  "Expected log level to be Off, Critical, Error, Warn, Info, Debug, or Trace.",
	ErrInvalidConfigFile: "Logging configuration file could not be read or parsed.",

	ErrFileSinkOpen:  "Can't open log file for writing. Check that you have write permissions to the specified path.",
	ErrFileSinkWrite: "Writing to the log file failed. File logging is disabled.",
	ErrFileSinkClose: "Closing the log file failed; some messages may be lost.",
	ErrSinkFlush:     "Flushing a log sink failed.",

	ErrUnknownLevel: "Internal error: unknown log level value.",
}

// GetErrorMessage returns the standard message for an error code.
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "Unknown error."
}
