// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/internal/formatutil"
	"github.com/spf13/cobra"
)

// globalFlags are the flags shared by all the subcommands
type globalFlags struct {
	configPath string
	verbose    bool
	color      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "unsafeflow",
		Short: "unsafeflow - find unsafe dataflow into unresolvable calls",
		Long: `unsafeflow analyzes the intermediate representation of a program and reports the functions where a
lifetime bypass (raw pointer reads, transmutes, vectors built from raw parts...) flows into a generic or
trait-dispatched call that cannot be resolved.

Use "unsafeflow [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setColorMode(flags.color)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file path")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Set the log level to debug")
	root.PersistentFlags().StringVar(&flags.color, "color", "auto", "Color the output: auto, always or never")

	root.AddCommand(newCheckCmd(flags))
	root.AddCommand(newDiscoverCmd(flags))
	root.AddCommand(newConvertCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	return root
}

func setColorMode(mode string) error {
	switch mode {
	case "auto":
		formatutil.SetColorMode(formatutil.ColorAuto)
	case "always":
		formatutil.SetColorMode(formatutil.ColorAlways)
	case "never":
		formatutil.SetColorMode(formatutil.ColorNever)
	default:
		return fmt.Errorf("invalid color mode %q", mode)
	}
	return nil
}

// loadConfig returns the config of the file set with --config, or the default config, with the global flags
// applied
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.NewDefault()
	if f.configPath != "" {
		var err error
		cfg, err = config.Load(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("could not load config %s: %w", f.configPath, err)
		}
	}
	if f.verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, nil
}

// newLogger returns the log group of cfg writing to the error stream of cmd
func newLogger(cmd *cobra.Command, cfg *config.Config) *config.LogGroup {
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(cmd.ErrOrStderr())
	return logger
}
