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

package unsafedataflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/internal/funcutil"
	"github.com/awslabs/unsafeflow/internal/graphutil"
)

// Kind is the analysis kind of the diagnostics of the checker
const Kind = "UnsafeDataflow"

// Checker runs the unsafe dataflow analysis on every function of a program
type Checker struct {
	ctx    *progctx.ProgramContext
	cfg    *config.Config
	logger *config.LogGroup
}

// NewChecker returns a checker for the program of ctx
func NewChecker(ctx *progctx.ProgramContext, cfg *config.Config, logger *config.LogGroup) *Checker {
	return &Checker{ctx: ctx, cfg: cfg, logger: logger}
}

// outcome is the result of a single function
type outcome int

const (
	skipped outcome = iota
	analyzed
	reported
)

type result struct {
	outcome outcome
	diag    report.Diagnostic
}

// Analyze analyzes all the functions of the program and returns the diagnostics whose level is at least the report
// threshold of the config, in the order of the function declarations.
func (c *Checker) Analyze() []report.Diagnostic {
	prog := c.ctx.Program()
	results := funcutil.MapParallel(prog.Functions, c.analyzeFunction, c.cfg.Routines())

	var diags []report.Diagnostic
	numAnalyzed := 0
	for _, r := range results {
		if r.outcome != skipped {
			numAnalyzed++
		}
		if r.outcome == reported {
			diags = append(diags, r.diag)
		}
	}
	c.logger.Infof("analyzed %d of %d functions, %d reported", numAnalyzed, len(prog.Functions), len(diags))
	return diags
}

func (c *Checker) analyzeFunction(f *ir.FunctionDecl) result {
	prog := c.ctx.Program()
	if GetCatalog().Discovery.Contains(f.Name).IsSome() {
		c.logger.Warnf("paths discovery function %s is not analyzed", f.Name)
		return result{outcome: skipped}
	}
	if !c.cfg.ShouldAnalyze(f.Name.String(), prog.FileName(f.Span.File)) {
		c.logger.Tracef("%s is filtered out", f.Name)
		return result{outcome: skipped}
	}

	var graph *graphutil.TaintGraph[BehaviorFlag]
	status, ok := AnalyzeBody(c.ctx, c.logger, f, func(g *graphutil.TaintGraph[BehaviorFlag]) { graph = g })
	if !ok {
		return result{outcome: skipped}
	}
	if status.Flag.IsEmpty() || status.Flag.ReportLevel() < c.cfg.ReportThreshold() {
		return result{outcome: analyzed}
	}
	diag, ok := c.diagnostic(f, status)
	if !ok {
		return result{outcome: analyzed}
	}
	if c.cfg.ReportGraphs && c.cfg.ReportsDir != "" {
		c.writeGraph(f, graph)
	}
	return result{outcome: reported, diag: diag}
}

// diagnostic returns the diagnostic of the function f with status. It returns false if f has no valid span.
func (c *Checker) diagnostic(f *ir.FunctionDecl, status *Status) (report.Diagnostic, bool) {
	prog := c.ctx.Program()
	if !f.Span.IsValid() {
		c.logger.Warnf("%s has no valid source location, its diagnostic is dropped", f.Name)
		return report.Diagnostic{}, false
	}
	d := report.Diagnostic{
		Level:    status.Flag.ReportLevel(),
		Analysis: Kind,
		Flags:    status.Flag.String(),
		Message:  fmt.Sprintf("Potential unsafe dataflow issue in `%s`", f.Name),
		Function: f.Name.String(),
		Primary:  report.NewLocation(prog, f.Span),
	}
	add := func(category report.Category, spans []ir.Span) {
		for _, span := range spans {
			if span.File != f.Span.File || !span.IsValid() {
				c.logger.Debugf("%s: %s span %s not in the function's file, dropped", f.Name, category, span)
				continue
			}
			d.SubSpans = append(d.SubSpans, report.SubSpan{Category: category, Location: report.NewLocation(prog, span)})
		}
	}
	add(report.StrongBypass, status.StrongBypasses)
	add(report.WeakBypass, status.WeakBypasses)
	add(report.UnresolvedSink, status.UnresolvedSinks)
	return d, true
}

func (c *Checker) writeGraph(f *ir.FunctionDecl, g *graphutil.TaintGraph[BehaviorFlag]) {
	if g == nil {
		return
	}
	filename := filepath.Join(c.cfg.ReportsDir, fmt.Sprintf("%s-%d.dot", fileSafe(f.Name.String()), f.ID))
	file, err := os.Create(filename)
	if err != nil {
		c.logger.Errorf("could not create graph file %s: %v", filename, err)
		return
	}
	defer file.Close()
	if err := graphutil.WriteDOT(file, f.Name.String(), g); err != nil {
		c.logger.Errorf("could not write graph of %s: %v", f.Name, err)
		return
	}
	c.logger.Debugf("graph of %s written in %s", f.Name, filename)
}

// fileSafe replaces every character of s that is not a letter, a digit, '-' or '.' by '_'
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
