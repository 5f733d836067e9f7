package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/heyjunin/sinklog/pkg/logger"
	"github.com/heyjunin/sinklog/pkg/progress"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log LEVEL MESSAGE...",
		Short: "Log one message at the given level",
		Example: `  sinklog log warn "disk almost full"
  sinklog --no-log-file log debug cache miss`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logger.ParseLevel(args[0])
			if err != nil {
				return err
			}
			logger.Log(level, "%s", strings.Join(args[1:], " "))
			return nil
		},
	}
}

type pipeOptions struct {
	input       string
	level       string
	consoleOnly bool
	progress    bool
}

func newPipeCmd() *cobra.Command {
	opts := &pipeOptions{}

	cmd := &cobra.Command{
		Use:   "pipe",
		Short: "Log every line read from stdin or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipe(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Read lines from this file instead of stdin")
	cmd.Flags().StringVar(&opts.level, "line-level", "info", "Level each line is logged at")
	cmd.Flags().BoolVar(&opts.consoleOnly, "console-only", false, "Print lines on the console only, never to the log file")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "Show a progress bar when reading from a file")
	return cmd
}

func runPipe(cmd *cobra.Command, opts *pipeOptions) error {
	level, err := logger.ParseLevel(opts.level)
	if err != nil {
		return err
	}

	var (
		in       io.Reader = cmd.InOrStdin()
		total    int64
		reporter progress.Reporter = progress.NopReporter{}
	)
	if opts.input != "" {
		logger.Debug("Reading lines from %s", opts.input)
		f, err := os.Open(opts.input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f

		if info, err := f.Stat(); err == nil {
			total = info.Size()
		}
		if opts.progress {
			reporter = progress.NewReporter(
				progress.WithDescription("Reading "+opts.input),
				progress.WithWriter(cmd.ErrOrStderr()),
				progress.WithThrottle(time.Second),
			)
		}
	}

	reporter.Start(total)
	scanner := bufio.NewScanner(in)
	var read, lines int64
	for scanner.Scan() {
		line := scanner.Text()
		read += int64(len(line)) + 1
		lines++
		if opts.consoleOnly {
			logger.ConsoleOnly("%s", line)
		} else {
			logger.Log(level, "%s", line)
		}
		reporter.Update(read, "reading", fmt.Sprintf("line %d", lines))
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Reading input failed after %d lines: %v", lines, err)
		return err
	}
	reporter.Complete()
	logger.Debug("Piped %d lines", lines)
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the log levels and mark the current one",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			current := logger.GetLevel()
			for _, l := range logger.Levels() {
				marker := " "
				if l == current {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-8s admits %s\n", marker, l, admitted(l))
			}
		},
	}
}

// admitted lists the message levels a threshold lets through.
func admitted(threshold logger.Level) string {
	var names []string
	for _, l := range logger.Levels()[1:] {
		if l <= threshold && threshold != logger.OffLevel {
			names = append(names, l.Label())
		}
	}
	if len(names) == 0 {
		return "nothing"
	}
	return strings.Join(names, ", ")
}
