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

	"github.com/awslabs/unsafeflow/analysis"
	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/spf13/cobra"
)

type checkFlags struct {
	level  string
	format string
	dotDir string
}

func newCheckCmd(global *globalFlags) *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [flags] <program>",
		Short: "Run the enabled analyses on a program and print the diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, global, flags, args[0])
		},
	}
	cmd.Flags().StringVar(&flags.level, "level", "", "Minimum level of the reported diagnostics (info, warning, error)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&flags.dotDir, "dot-dir", "", "Write the graph of each reported function in this directory")
	return cmd
}

func runCheck(cmd *cobra.Command, global *globalFlags, flags *checkFlags, programPath string) error {
	cfg, err := global.loadConfig()
	if err != nil {
		return err
	}
	if flags.level != "" {
		level, err := report.ParseLevel(flags.level)
		if err != nil {
			return err
		}
		cfg.SetReportThreshold(level)
	}
	if flags.format != "" {
		cfg.OutputFormat = flags.format
	}
	if flags.dotDir != "" {
		cfg.ReportsDir = flags.dotDir
		cfg.ReportGraphs = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.EnsureReportsDir(); err != nil {
		return err
	}
	writer, err := report.NewWriter(cfg.OutputFormat)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg)
	prog, err := analysis.LoadProgram(programPath, logger)
	if err != nil {
		return err
	}
	result, err := analysis.Run(cfg, logger, prog)
	if err != nil {
		return err
	}
	if err := writer.Write(cmd.OutOrStdout(), result.Diagnostics); err != nil {
		return fmt.Errorf("could not write diagnostics: %w", err)
	}
	counts := report.CountByLevel(result.Diagnostics)
	logger.Infof("%d diagnostics (%d errors, %d warnings, %d infos)", len(result.Diagnostics),
		counts[report.Error], counts[report.Warning], counts[report.Info])
	if cfg.ReportGraphs {
		logger.Infof("graphs written in %s", cfg.ReportsDir)
	}
	return nil
}
