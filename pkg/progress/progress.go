// Package progress renders progress for long-running operations on the
// console without polluting the log file: the bar is drawn on its own
// writer and stage changes go through logger.ConsoleOnly.
package progress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/heyjunin/sinklog/pkg/logger"
	"github.com/schollz/progressbar/v3"
)

// ProgressEvent represents a single progress update event, often serialized to JSON.
type ProgressEvent struct {
	// Status indicates the current overall status (e.g., "initialized", "started", "processing", "completed").
	Status string `json:"status"`
	// Percentage represents the progress completion from 0.0 to 100.0.
	Percentage float64 `json:"percentage"`
	// Step provides a high-level description of the current phase (e.g., "reading").
	Step string `json:"step"`
	// Stage offers a more detailed description within the current step.
	Stage string `json:"stage"`
	// Timestamp marks when the event occurred in RFC3339 format.
	Timestamp string `json:"timestamp"`
}

// Reporter defines the interface for reporting progress during long-running operations.
type Reporter interface {
	// Start initializes the progress reporting, typically setting the total number of steps or bytes.
	Start(total int64)
	// Update sets the current progress to a specific value.
	// It also takes descriptions of the current step and stage.
	Update(current int64, step, stage string)
	// Increment advances the progress by one step.
	Increment(step, stage string)
	// Complete marks the operation as finished.
	Complete()
}

// reporterOptions holds configuration for the DefaultReporter.
type reporterOptions struct {
	throttle    time.Duration
	description string
	showBytes   bool
	writer      io.Writer
}

// ReporterOption is a function type used to configure a DefaultReporter.
type ReporterOption func(*reporterOptions)

// WithThrottle sets the minimum interval between two stage messages on the
// console. Step changes are always reported. Defaults to 0 (no throttling).
func WithThrottle(duration time.Duration) ReporterOption {
	return func(opts *reporterOptions) {
		opts.throttle = duration
	}
}

// WithDescription sets the description text for the console progress bar.
func WithDescription(desc string) ReporterOption {
	return func(opts *reporterOptions) {
		opts.description = desc
	}
}

// WithShowBytes configures the console progress bar to display progress in bytes.
func WithShowBytes(show bool) ReporterOption {
	return func(opts *reporterOptions) {
		opts.showBytes = show
	}
}

// WithWriter sets where the bar is drawn. Defaults to os.Stderr.
func WithWriter(w io.Writer) ReporterOption {
	return func(opts *reporterOptions) {
		opts.writer = w
	}
}

// DefaultReporter is the default implementation of the Reporter interface.
// It uses the github.com/schollz/progressbar/v3 library to display a progress
// bar and reports step and stage changes as console-only log output.
type DefaultReporter struct {
	Total     int64
	Current   int64
	Started   time.Time
	Bar       *progressbar.ProgressBar
	Event     ProgressEvent
	opts      reporterOptions
	lastStage time.Time
	mu        sync.Mutex // Protects access to shared fields
}

// NewReporter creates a new DefaultReporter.
func NewReporter(opts ...ReporterOption) *DefaultReporter {
	options := reporterOptions{
		description: "Processing...",
		showBytes:   true,
		writer:      os.Stderr,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &DefaultReporter{
		opts: options,
		Event: ProgressEvent{
			Status:    "initialized",
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}
}

// Start initializes the progress tracking and draws an empty bar.
func (r *DefaultReporter) Start(total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Total = total
	r.Current = 0
	r.Started = time.Now()
	r.Event.Status = "started"
	r.Event.Percentage = 0
	r.Event.Timestamp = time.Now().Format(time.RFC3339)

	barOpts := []progressbar.Option{
		progressbar.OptionSetDescription(r.opts.description),
		progressbar.OptionSetWriter(r.opts.writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	}
	if r.opts.showBytes {
		barOpts = append(barOpts, progressbar.OptionShowBytes(true))
	}
	r.Bar = progressbar.NewOptions64(total, barOpts...)

	logger.Debug("%s started, total %d", r.opts.description, total)
}

// Update sets the current progress. A new step or stage is announced on
// the console, subject to WithThrottle.
func (r *DefaultReporter) Update(current int64, step, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateLocked(current, step, stage)
}

func (r *DefaultReporter) updateLocked(current int64, step, stage string) {
	if r.Bar == nil {
		return
	} // Not started
	if current > r.Total {
		current = r.Total
	}
	r.Current = current

	percentage := 0.0
	if r.Total > 0 {
		percentage = float64(current) / float64(r.Total) * 100
	}

	stepChanged := step != r.Event.Step
	stageChanged := stage != r.Event.Stage
	r.Event.Percentage = percentage
	r.Event.Step = step
	r.Event.Stage = stage
	r.Event.Status = "processing"
	r.Event.Timestamp = time.Now().Format(time.RFC3339)

	_ = r.Bar.Set64(current)

	now := time.Now()
	if stepChanged || (stageChanged && now.Sub(r.lastStage) >= r.opts.throttle) {
		r.lastStage = now
		logger.ConsoleOnly("%s: %s (%.0f%%)", step, stage, percentage)
	}
}

// Increment increases the progress by 1.
func (r *DefaultReporter) Increment(step, stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateLocked(r.Current+1, step, stage)
}

// Complete finishes the bar and logs the elapsed time at InfoLevel, so
// the outcome, unlike the progress chatter, lands in the log file.
func (r *DefaultReporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Bar == nil {
		return
	} // Not started or already completed

	_ = r.Bar.Finish()
	r.Current = r.Total
	r.Event.Percentage = 100
	r.Event.Status = "completed"
	r.Event.Timestamp = time.Now().Format(time.RFC3339)
	r.Bar = nil

	logger.Info("%s completed in %s", r.opts.description, time.Since(r.Started).Round(time.Millisecond))
}

// JSON returns the current progress event as a JSON string.
func (r *DefaultReporter) JSON() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(r.Event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal progress event: %w", err)
	}
	return string(data), nil
}

// NopReporter ignores every call. Use it when output is not a terminal.
type NopReporter struct{}

func (NopReporter) Start(int64)                  {}
func (NopReporter) Update(int64, string, string) {}
func (NopReporter) Increment(string, string)     {}
func (NopReporter) Complete()                    {}
