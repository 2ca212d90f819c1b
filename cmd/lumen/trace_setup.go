package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lumen/internal/config"
	"lumen/internal/trace"
)

var traceCleanup func(failed bool)

func runTraceCleanup(failed bool) {
	if traceCleanup == nil {
		return
	}
	cleanup := traceCleanup
	traceCleanup = nil
	cleanup(failed)
}

// setupTracing reads the trace flags, falling back to [trace] of the
// configuration, and attaches the tracer to the command context.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	output, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !flags.Changed("trace") {
		output = cfg.Trace.Output
	}
	levelStr := stringFlagOr(cmd, "trace-level", cfg.Trace.Level)
	modeStr := stringFlagOr(cmd, "trace-mode", cfg.Trace.Mode)
	formatStr := stringFlagOr(cmd, "trace-format", cfg.Trace.Format)
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	if output == "stderr" {
		output = "-"
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	return func(failed bool) {
		// кольцевой буфер сбрасываем только при ошибке
		if failed {
			if ring := ringOf(tracer); ring != nil {
				fmt.Fprintln(os.Stderr, "trace: last events:")
				dumpFormat := format
				if dumpFormat == trace.FormatAuto {
					dumpFormat = trace.FormatText
				}
				if err := ring.Dump(os.Stderr, dumpFormat); err != nil {
					fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
				}
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	}, nil
}

func ringOf(t trace.Tracer) *trace.RingTracer {
	switch t := t.(type) {
	case *trace.RingTracer:
		return t
	case *trace.MultiTracer:
		return t.Ring()
	}
	return nil
}

func stringFlagOr(cmd *cobra.Command, name, fallback string) string {
	flags := cmd.Root().PersistentFlags()
	if !flags.Changed(name) {
		return fallback
	}
	v, err := flags.GetString(name)
	if err != nil {
		return fallback
	}
	return v
}

var loadedConfig *config.Config

// loadConfig reads --config, or lumen.toml found upwards from the working
// directory, or the defaults. The result is cached for the process.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		if ok {
			path = found
		}
	}
	cfg := config.Default()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	loadedConfig = cfg
	return cfg, nil
}
