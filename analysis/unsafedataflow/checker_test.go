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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/analysis/report"
)

func runChecker(t *testing.T, cfg *config.Config, funcs ...*ir.FunctionDecl) ([]report.Diagnostic, string) {
	t.Helper()
	ctx, err := progctx.Build(newProgram(funcs...))
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(&logs)
	logger.SetAllFlags(0)
	return NewChecker(ctx, cfg, logger).Analyze(), logs.String()
}

// readThenSink returns a function reading a raw pointer at line 2 before a call with unresolved generics at line 3
func readThenSink(id ir.FunDeclID, name string) *ir.FunctionDecl {
	return function(id, name,
		block(jump(1), direct(2, fRead, tyArgs(buf))),
		block(ret(), direct(3, fHelper, unresolved())),
	)
}

func TestCheckerReports(t *testing.T) {
	cfg := config.NewDefault()
	cfg.NumRoutines = 2
	transmute := function(21, "reinterpret",
		block(jump(1), direct(5, fTransmute, tyArgs(buf, u8))),
		block(ret(), direct(6, fDropInPlace, tyArgs(buf))),
	)
	safe := function(22, "safe", block(ret(), direct(7, fHelper, tyArgs(u8))))
	diags, _ := runChecker(t, cfg, readThenSink(20, "take"), transmute, safe)

	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d: %v", len(diags), diags)
	}
	d := diags[0]
	if d.Level != report.Warning || d.Analysis != Kind || d.Flags != "ReadFlow" {
		t.Errorf("unexpected diagnostic %+v", d)
	}
	if d.Function != "mycrate::take" || d.Message != "Potential unsafe dataflow issue in `mycrate::take`" {
		t.Errorf("unexpected function %q or message %q", d.Function, d.Message)
	}
	if d.Primary.File != "src/lib.rs" || d.Primary.Line != 1 || d.Primary.EndLine != 40 {
		t.Errorf("unexpected primary location %v", d.Primary)
	}
	if d.Count(report.StrongBypass) != 1 || d.Count(report.UnresolvedSink) != 1 || len(d.SubSpans) != 2 {
		t.Errorf("unexpected sub-spans %v", d.SubSpans)
	}
	if d.SubSpans[0].Category != report.StrongBypass || d.SubSpans[0].Location.Line != 2 {
		t.Errorf("strong bypasses should come first, got %v", d.SubSpans)
	}
}

func TestCheckerThreshold(t *testing.T) {
	cfg := config.NewDefault()
	cfg.SetReportThreshold(report.Info)
	transmute := function(21, "reinterpret",
		block(jump(1), direct(5, fTransmute, tyArgs(buf, u8))),
		block(ret(), direct(6, fDropInPlace, tyArgs(buf))),
	)
	diags, _ := runChecker(t, cfg, readThenSink(20, "take"), transmute)
	if len(diags) != 2 {
		t.Fatalf("expected two diagnostics at info level, got %d", len(diags))
	}
	// diagnostics follow the declaration order
	if diags[0].Function != "mycrate::take" || diags[1].Level != report.Info || diags[1].Flags != "Transmute" {
		t.Errorf("unexpected diagnostics %v", diags)
	}
	if diags[1].Count(report.WeakBypass) != 1 {
		t.Errorf("expected a weak bypass sub-span")
	}

	cfg.SetReportThreshold(report.Error)
	if diags, _ := runChecker(t, cfg, readThenSink(20, "take"), transmute); len(diags) != 0 {
		t.Errorf("no diagnostic should reach the error level, got %v", diags)
	}
}

func TestCheckerSpans(t *testing.T) {
	cfg := config.NewDefault()
	noSpan := readThenSink(20, "nospan")
	noSpan.Span = ir.Span{}
	crossFile := function(21, "cross",
		block(jump(1), direct(2, fRead, tyArgs(buf))),
		block(ret(), ir.Statement{
			Kind: ir.StatementCall,
			Call: &ir.Call{Target: ir.CallTarget{Kind: ir.DirectCall, Fun: fHelper, Generics: unresolved()}},
			Span: ir.Span{File: 1, Begin: ir.Loc{Line: 3, Col: 0}, End: ir.Loc{Line: 3, Col: 9}},
		}),
	)
	diags, logs := runChecker(t, cfg, noSpan, crossFile)
	if len(diags) != 1 || diags[0].Function != "mycrate::cross" {
		t.Fatalf("expected only the diagnostic of cross, got %v", diags)
	}
	if len(diags[0].SubSpans) != 1 || diags[0].SubSpans[0].Category != report.StrongBypass {
		t.Errorf("sub-spans in other files should be dropped, got %v", diags[0].SubSpans)
	}
	if !strings.Contains(logs, "mycrate::nospan has no valid source location") {
		t.Errorf("expected a warning for the function without span:\n%s", logs)
	}
}

func TestCheckerSkips(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Exclude = []config.NameIdentifier{{Name: "mycrate::excluded"}}
	discover := &ir.FunctionDecl{
		ID:   fDiscover + 100,
		Name: ir.NameOf("rudra_paths_discovery", "PathsDiscovery", "discover"),
		Span: span(1),
		Body: readThenSink(0, "").Body,
	}
	diags, logs := runChecker(t, cfg, readThenSink(20, "excluded"), discover, readThenSink(22, "kept"))
	if len(diags) != 1 || diags[0].Function != "mycrate::kept" {
		t.Errorf("expected only the diagnostic of kept, got %v", diags)
	}
	if !strings.Contains(logs, "paths discovery function") {
		t.Errorf("expected a warning for the discovery function:\n%s", logs)
	}
	if !strings.Contains(logs, "analyzed 1 of") {
		t.Errorf("expected a summary:\n%s", logs)
	}
}

func TestCheckerWritesGraphs(t *testing.T) {
	cfg := config.NewDefault()
	cfg.ReportsDir = t.TempDir()
	cfg.ReportGraphs = true
	diags, _ := runChecker(t, cfg, readThenSink(20, "take"))
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diags))
	}
	b, err := os.ReadFile(filepath.Join(cfg.ReportsDir, "mycrate__take-20.dot"))
	if err != nil {
		t.Fatalf("expected a graph file: %v", err)
	}
	dot := string(b)
	if !strings.Contains(dot, `digraph "mycrate::take"`) || !strings.Contains(dot, "bb0 -> bb1") {
		t.Errorf("unexpected graph:\n%s", dot)
	}
}

func TestDiscoverPaths(t *testing.T) {
	discover := &ir.FunctionDecl{
		ID:   200,
		Name: ir.NameOf("rudra_paths_discovery", "PathsDiscovery", "discover"),
		Body: &ir.Body{Blocks: []ir.BasicBlock{
			block(jump(1), direct(2, fRead, tyArgs(u8)), direct(3, fAsRef, ir.GenericArgs{})),
			block(ret(), direct(4, 999, ir.GenericArgs{}), traitCall(5, nil, ir.GenericArgs{})),
		}},
	}
	other := readThenSink(20, "take")
	paths := DiscoverPaths(newProgram(other, discover))
	expected := []string{"core::ptr::read", "core::ptr::non_null::<NonNull<T>>::as_ref"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i := range expected {
		if paths[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, paths)
		}
	}
}
