// Package config loads sinklog settings from a TOML file.
//
//	[log]
//	level = "debug"
//	file = "/var/log/app/app.log"
//	disable_file = false
//	json = false
//
//	[metrics]
//	addr = ":9090"
package config

import (
	"fmt"
	"os"

	"github.com/heyjunin/sinklog/pkg/errors"
	"github.com/heyjunin/sinklog/pkg/logger"
	"github.com/pelletier/go-toml/v2"
)

// Config is the whole configuration file.
type Config struct {
	Log     logger.Config `toml:"log"`
	Metrics Metrics       `toml:"metrics"`
}

// Metrics configures the prometheus endpoint.
type Metrics struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Log: logger.Config{Level: "info"}}
}

// Load reads and parses the file at path on top of Default. Unknown keys
// are rejected so typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, errors.ConfigurationError,
			fmt.Sprintf("Can't read configuration file '%s'", path), errors.ErrInvalidConfigFile)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errors.Wrap(err, errors.ConfigurationError,
			fmt.Sprintf("Can't parse configuration file '%s'", path), errors.ErrInvalidConfigFile)
	}
	if cfg.Log.Level != "" {
		if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}
