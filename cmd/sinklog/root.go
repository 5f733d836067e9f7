package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/heyjunin/sinklog/pkg/config"
	"github.com/heyjunin/sinklog/pkg/logger"
	"github.com/heyjunin/sinklog/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath  string
	level       string
	logFile     string
	noLogFile   bool
	json        bool
	metricsAddr string

	metricsServer *http.Server
	metricsSink   *metrics.Sink
}

func newRootCmd() (*cobra.Command, *options) {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "sinklog",
		Short: "Write leveled log messages to the console and a log file",
		Long: `sinklog sends messages through the sinklog logging facility: the console,
a log file created on first use, and optional JSON and metrics sinks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.apply(cmd.Flags())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML configuration file")
	flags.StringVarP(&opts.level, "level", "l", "info", "Log level: off, critical, error, warn, info, debug or trace")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file path (default "+logger.DefaultFilePath+" on first message)")
	flags.BoolVar(&opts.noLogFile, "no-log-file", false, "Do not write a log file")
	flags.BoolVar(&opts.json, "json", false, "Also write JSON log events to stderr")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")

	rootCmd.AddCommand(newLogCmd(), newPipeCmd(), newLevelsCmd())
	return rootCmd, opts
}

// execute runs cmd and then shuts the facility down, also when the command
// failed, so buffered lines still reach the log file.
func execute(cmd *cobra.Command, opts *options) error {
	err := cmd.Execute()
	if closeErr := opts.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// apply configures the facility before anything is logged. Flags given on
// the command line override the configuration file.
func (o *options) apply(flags *pflag.FlagSet) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if flags.Changed("level") {
		cfg.Log.Level = o.level
	}
	if flags.Changed("log-file") {
		cfg.Log.File = o.logFile
	}
	if flags.Changed("no-log-file") {
		cfg.Log.DisableFile = o.noLogFile
	}
	if flags.Changed("json") {
		cfg.Log.JSON = o.json
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = o.metricsAddr
	}

	if err := logger.Configure(cfg.Log); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		o.serveMetrics(cfg.Metrics.Addr)
	}
	return nil
}

func (o *options) serveMetrics(addr string) {
	sink := metrics.NewSink()
	reg := prometheus.NewRegistry()
	reg.MustRegister(sink)
	logger.AddSink(sink)
	o.metricsSink = sink

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	o.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := o.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics endpoint on %s stopped: %v", addr, err)
		}
	}()
	logger.Debug("Serving metrics on %s/metrics", addr)
}

func (o *options) close() error {
	if o.metricsServer != nil {
		_ = o.metricsServer.Close()
		logger.RemoveSink(o.metricsSink)
	}
	return logger.Shutdown()
}
