package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"aqprep/internal/config"
	apperrors "aqprep/internal/errors"
	"aqprep/internal/infrastructure"
	"aqprep/internal/operations"
	"aqprep/pkg/contracts"
)

// shutdownTimeout bounds flushing of traces and metrics on exit
const shutdownTimeout = 5 * time.Second

// options holds the command line flags. Empty values leave the loaded
// configuration untouched.
type options struct {
	configFile  string
	input       string
	output      string
	report      string
	sheet       string
	sortBy      string
	logFile     string
	logLevel    string
	logFormat   string
	metricsFile string
	traceFile   string
	bom         bool
	version     bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, failureMessage(err))
		return apperrors.ExitCode(err)
	}

	logger, sink, err := infrastructure.NewLogger(cfg.Logging, stdout)
	if err != nil {
		err = apperrors.NewConfigError("failed to initialize logger", err)
		fmt.Fprintln(stderr, failureMessage(err))
		return apperrors.ExitCode(err)
	}
	defer sink.Close()

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		err = apperrors.NewConfigError("failed to initialize telemetry", err)
		fmt.Fprintln(stderr, failureMessage(err))
		return apperrors.ExitCode(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(tel.Meter)
	if err != nil {
		logger.Warn("Pipeline metrics disabled", slog.String("error", err.Error()))
	}

	pipeline, err := operations.NewPipeline(cfg.Pipeline, logger,
		operations.WithTracer(tel.Tracer),
		operations.WithMetrics(metrics))
	if err != nil {
		fmt.Fprintln(stderr, failureMessage(err))
		return 1
	}

	logger.Info("Starting preprocessing", slog.String("version", contracts.GetVersionString()))
	result, err := pipeline.Run(ctx)
	if err != nil {
		fmt.Fprintln(stderr, failureMessage(err))
		return apperrors.ExitCode(err)
	}

	fmt.Fprintf(stderr, "cleaned %d rows from %s into %s\n",
		result.Frame.Len(), cfg.Pipeline.InputPath, cfg.Pipeline.OutputPath)
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("preprocess", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&opts.input, "input", "", "raw measurements file (.csv or .xlsx)")
	fs.StringVar(&opts.output, "output", "", "cleaned CSV destination")
	fs.StringVar(&opts.report, "report", "", "write a JSON run report to this path")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an Excel input (default: first sheet)")
	fs.StringVar(&opts.sortBy, "sort", "", "row order: location_time or time")
	fs.BoolVar(&opts.bom, "bom", false, "prefix the output with a UTF-8 byte order mark")
	fs.StringVar(&opts.logFile, "log-file", "", "log file path")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "", "log format: json or text")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	fs.StringVar(&opts.traceFile, "trace-file", "", "append trace spans to this file")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return nil, fmt.Errorf("unexpected arguments")
	}
	return opts, nil
}

// loadConfig layers flags over the file and environment configuration
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}

	overrides := []struct {
		value  string
		target *string
	}{
		{opts.input, &cfg.Pipeline.InputPath},
		{opts.output, &cfg.Pipeline.OutputPath},
		{opts.report, &cfg.Pipeline.ReportPath},
		{opts.sheet, &cfg.Pipeline.Sheet},
		{opts.sortBy, &cfg.Pipeline.SortBy},
		{opts.logFile, &cfg.Logging.FilePath},
		{opts.logLevel, &cfg.Logging.Level},
		{opts.logFormat, &cfg.Logging.Format},
		{opts.metricsFile, &cfg.Telemetry.MetricsFile},
		{opts.traceFile, &cfg.Telemetry.TraceFile},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.target = o.value
		}
	}
	if opts.bom {
		cfg.Pipeline.BOMPrefix = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewValidationError("invalid configuration", err)
	}
	return cfg, nil
}

// failureMessage renders err as the one-line message shown to the user
func failureMessage(err error) string {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return "error: " + err.Error()
	}

	reason := appErr.Message
	if appErr.Cause != nil {
		reason += ": " + appErr.Cause.Error()
	}
	if appErr.Stage == "" {
		return fmt.Sprintf("%s error: %s", strings.ToLower(string(appErr.Type)), reason)
	}
	return fmt.Sprintf("stage failed: %s: %s", appErr.Stage, reason)
}
