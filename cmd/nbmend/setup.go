package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nbmend/internal/prof"
)

var (
	logger       = zap.NewNop()
	traceCleanup = func() {}
	profiling    *prof.Session
)

func setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorMode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorMode); err != nil {
		return err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	if logger, err = buildLogger(verbose, quiet); err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	if profiling, err = setupProfiling(cmd); err != nil {
		return err
	}
	return nil
}

func teardownCommand(cmd *cobra.Command, _ []string) {
	teardown(cmd.ErrOrStderr())
}

// teardown stops profiling, closes the tracer and syncs the logger. cobra
// skips PersistentPostRun when RunE fails, so main calls it as well.
func teardown(errOut io.Writer) {
	if err := profiling.Stop(); err != nil {
		fmt.Fprintf(errOut, "profile: %v\n", err)
	}
	traceCleanup()
	traceCleanup = func() {}
	_ = logger.Sync()
}

func applyColorMode(mode string) error {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// buildLogger returns a console logger on stderr. Warnings and above are
// shown by default, every submission with verbose, nothing with quiet.
func buildLogger(verbose, quiet bool) (*zap.Logger, error) {
	if quiet {
		return zap.NewNop(), nil
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
