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

// Package analysis contains helper functions for loading programs and running the analyses on them.
package analysis

import (
	"fmt"
	"time"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/analysis/unsafedataflow"
)

// An Analyzer runs one analysis on the whole program and returns its diagnostics
type Analyzer func(ctx *progctx.ProgramContext, cfg *config.Config, logger *config.LogGroup) []report.Diagnostic

// analyzers maps the analysis names accepted in the config to their implementation
var analyzers = map[string]Analyzer{
	config.UnsafeDataflowAnalysis: func(ctx *progctx.ProgramContext, cfg *config.Config,
		logger *config.LogGroup) []report.Diagnostic {
		return unsafedataflow.NewChecker(ctx, cfg, logger).Analyze()
	},
}

// Result is the result of Run
type Result struct {
	// Diagnostics are the diagnostics of all the analyses, in the order the analyses ran
	Diagnostics []report.Diagnostic

	// Ran are the names of the analyses that ran
	Ran []string
}

// Run builds the program context of prog and runs each analysis enabled in cfg. Unknown analysis names are
// reported as warnings and skipped. The error is non-nil when the program context cannot be built; no analysis
// runs in that case.
func Run(cfg *config.Config, logger *config.LogGroup, prog *ir.Program) (Result, error) {
	start := time.Now()
	ctx, err := progctx.Build(prog)
	if err != nil {
		return Result{}, fmt.Errorf("could not build program context: %w", err)
	}
	logger.Debugf("program context built (%d copyable types, %.2f s)", ctx.NumCopyable(),
		time.Since(start).Seconds())

	names := cfg.EnabledAnalyses
	if len(names) == 0 {
		names = config.AllAnalyses
	}
	var result Result
	for _, name := range names {
		analyzer, ok := analyzers[name]
		if !ok {
			logger.Warnf("unknown analysis %q, skipping", name)
			continue
		}
		logger.Infof("%s analysis started", name)
		start := time.Now()
		diags := analyzer(ctx, cfg, logger)
		logger.Infof("%s analysis finished (%d diagnostics, %.2f s)", name, len(diags), time.Since(start).Seconds())
		result.Diagnostics = append(result.Diagnostics, diags...)
		result.Ran = append(result.Ran, name)
	}
	return result, nil
}
