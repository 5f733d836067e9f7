package logger

// Config is the declarative form of the facility's settings, as read from
// the [log] table of a configuration file.
type Config struct {
	// Level is a level name such as "debug"; empty keeps the current level.
	Level string `toml:"level"`
	// File is the log file path; empty keeps the automatic behavior.
	File string `toml:"file"`
	// DisableFile turns file logging off, removing an attached file sink or
	// suppressing the automatic one. It wins over File.
	DisableFile bool `toml:"disable_file"`
	// JSON adds a structured JSON sink on stderr; false removes the one a
	// previous Configure added.
	JSON bool `toml:"json"`
}

// Configure applies cfg. The level name is validated before anything
// changes, so an invalid config leaves the facility untouched. Call it
// before the first log message to keep the automatic file out of the way.
func Configure(cfg Config) error {
	var (
		level    Level
		setLevel bool
	)
	if cfg.Level != "" {
		parsed, err := ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level, setLevel = parsed, true
	}

	switch {
	case cfg.DisableFile:
		RemoveFileSink()
	case cfg.File != "":
		AddFileSink(cfg.File)
	}
	facade.setJSON(cfg.JSON)
	if setLevel {
		SetLevel(level)
	}
	return nil
}
