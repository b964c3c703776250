package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/pdfops/internal/config"
	"github.com/harrison/pdfops/internal/logger"
	"github.com/harrison/pdfops/internal/metrics"
	"github.com/harrison/pdfops/internal/pdfdoc"
)

// newCapability builds the PDF backend. Tests replace it with a fake.
var newCapability = func() pdfdoc.Capability {
	return pdfdoc.NewPDFCPU()
}

// app bundles what every subcommand needs for one run.
type app struct {
	cfg     *config.Config
	console *logger.ConsoleLogger
	file    *logger.FileLogger
	log     logger.Logger
	metrics *metrics.Recorder
	pdf     pdfdoc.Capability
	out     io.Writer
	errOut  io.Writer
}

// newApp loads configuration (file, .env, environment, then the global
// flags) and builds the loggers and metrics recorder.
func newApp(cmd *cobra.Command) (*app, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(wd, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logLevelPtr, logDirPtr, metricsPtr *string
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &v
	}
	if cmd.Flags().Changed("log-dir") {
		v, _ := cmd.Flags().GetString("log-dir")
		logDirPtr = &v
	}
	if cmd.Flags().Changed("metrics-file") {
		v, _ := cmd.Flags().GetString("metrics-file")
		metricsPtr = &v
	}
	cfg.MergeWithFlags(logLevelPtr, logDirPtr, nil, metricsPtr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &app{
		cfg:     cfg,
		console: logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel),
		metrics: metrics.New(),
		pdf:     newCapability(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}
	a.log = a.console

	if cfg.LogDir != "" {
		fl, err := logger.NewFileLogger(logger.FileOptions{
			Dir:        cfg.LogDir,
			Level:      cfg.LogLevel,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			Compress:   cfg.LogCompress,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		a.file = fl
		a.log = logger.NewMultiLogger(a.console, fl)
	}
	return a, nil
}

// engineLogger is what the merge and split engines log through. In the
// interactive shell the console is reserved for the prompt, so only the
// file log (if any) receives engine lines.
func (a *app) engineLogger(interactive bool) logger.Logger {
	if !interactive {
		return a.log
	}
	if a.file != nil {
		return a.file
	}
	return logger.NewNoOpLogger()
}

// close exports metrics and closes the run log. Errors are reported on the
// console, never returned, so they cannot mask the run's own error.
func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.console.Warnf("%v", err)
	}
	if a.file != nil {
		if err := a.file.Close(); err != nil {
			a.console.Warnf("close run log: %v", err)
		}
	}
}
