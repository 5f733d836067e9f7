package errors

// Error codes, grouped per ErrorType.
const (
	// ConfigurationError codes (1000-1099)
	ErrInvalidLevelName  = 1000
	ErrInvalidConfigFile = 1001

	// ResourceError codes (1100-1199)
	ErrFileSinkOpen  = 1100
	ErrFileSinkWrite = 1101
	ErrFileSinkClose = 1102
	ErrSinkFlush     = 1103

	// InternalError codes (1900-1999)
	ErrUnknownLevel = 1900
)
