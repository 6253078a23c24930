// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package cmd provides the command line interface for the
// https://godoc.org/github.com/bow/domwait/wait package.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bow/domwait/wait"
)

const (
	name = "domwait"
	desc = "Wait until element(s) appear in or detach from an HTML document"
)

var (
	// These are meant to be overidden at built time using ldflags -X.
	buildTime = "?"
	version   = "dev"
	gitCommit = "?"
)

// mode is what a wait is waiting for.
type mode int

const (
	appear mode = iota
	detach
)

// settings holds the resolved command line flags and config file values.
type settings struct {
	file       string
	url        string
	headless   bool
	timeout    time.Duration
	pollFreq   time.Duration
	variant    string
	isQuiet    bool
	isVerbose  bool
	configPath string
}

// effectiveTimeout is the timeout the waits will actually use.
func (s *settings) effectiveTimeout() time.Duration {
	if s.timeout <= 0 {
		return wait.DefaultTimeout
	}
	return s.timeout
}

// Execute peforms the actual CLI argument parsing and launches the wait operation.
func Execute() error {
	return newCommand().Execute()
}

func newCommand() *cobra.Command {
	var (
		s      settings
		logger = zap.NewNop()

		ver = fmt.Sprintf("%s (build time: %s, commit: %s)", version, buildTime, gitCommit)
	)

	root := &cobra.Command{
		Use:           name,
		Short:         desc,
		Version:       ver,
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if s.configPath != "" {
				cfg, err := loadConfig(s.configPath)
				if err != nil {
					return err
				}
				s.apply(cfg, cmd.Flags().Changed)
			}

			var err error
			if logger, err = newLogger(s.isVerbose); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	flagSet := root.PersistentFlags()
	flagSet.SortFlags = false
	flagSet.StringVarP(&s.file, "file", "f", "", "wait on the HTML file at this path, reloaded on change")
	flagSet.StringVarP(&s.url, "url", "u", "", "wait on the page at this URL, in a browser")
	flagSet.DurationVarP(&s.timeout, "timeout", "t", wait.DefaultTimeout, "set wait timeout")
	flagSet.DurationVarP(
		&s.pollFreq,
		"poll-freq",
		"p",
		wait.DefaultPollFreq,
		"set poll frequency of the interval strategy",
	)
	flagSet.StringVarP(
		&s.variant,
		"strategy",
		"s",
		wait.VariantInterval,
		"set wait strategy: "+wait.VariantInterval+" or "+wait.VariantObserver,
	)
	flagSet.BoolVar(&s.headless, "headless", true, "run the browser without a window")
	flagSet.StringVarP(&s.configPath, "config", "c", "", "read defaults from this YAML or TOML file")
	flagSet.BoolVarP(&s.isQuiet, "quiet", "q", false, "suppress waiting messages")
	flagSet.BoolVarP(&s.isVerbose, "verbose", "v", false, "log wait internals to stderr")

	newSub := func(m mode, use, short string) *cobra.Command {
		return &cobra.Command{
			Use:                   use + " [FLAGS] SELECTOR...",
			Short:                 short,
			DisableFlagsInUseLine: true,

			Args: func(cmd *cobra.Command, args []string) error {
				if len(args) < 1 {
					return fmt.Errorf("at least one selector must be specified")
				}
				return nil
			},

			Run: func(cmd *cobra.Command, args []string) {
				var selectors []string
				if dashIdx := cmd.ArgsLenAtDash(); dashIdx == -1 {
					selectors = args
				} else {
					selectors = args[:dashIdx]
				}
				exitCode := run(cmd.OutOrStdout(), m, selectors, s, logger)
				if exitCode != 0 {
					_ = logger.Sync()
					os.Exit(exitCode) // nolint: revive
				}
			},
		}
	}
	root.AddCommand(
		newSub(appear, "appear", "Wait until each selector matches an element"),
		newSub(detach, "detach", "Wait until each selector's current element is detached"),
	)

	return root
}

// newLogger creates the process logger. Only warnings and errors are shown unless verbose is set,
// so that the regular status messages stay readable.
func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
