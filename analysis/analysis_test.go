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

package analysis

import (
	"bytes"
	"embed"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/internal/analysistest"
)

//go:embed testdata/ring
var testfsys embed.FS

func testLogger(cfg *config.Config, buf *bytes.Buffer) *config.LogGroup {
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(buf)
	logger.SetAllFlags(0)
	return logger
}

func TestRun(t *testing.T) {
	prog, cfg := analysistest.LoadTest(t, testfsys, "testdata/ring")
	var logs bytes.Buffer
	result, err := Run(cfg, testLogger(cfg, &logs), prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Ran) != 1 || result.Ran[0] != config.UnsafeDataflowAnalysis {
		t.Errorf("expected only the unsafe dataflow analysis to run, got %v", result.Ran)
	}
	if !strings.Contains(logs.String(), `unknown analysis "not-an-analysis"`) {
		t.Errorf("expected a warning for the unknown analysis:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "unsafe-dataflow analysis started") {
		t.Errorf("expected a progress message:\n%s", logs.String())
	}
	diags := result.Diagnostics
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[0].Function != "ring::<Ring<T>>::drain" || diags[0].Level != report.Warning {
		t.Errorf("unexpected first diagnostic %+v", diags[0])
	}
	if diags[1].Function != "ring::<Ring<T>>::into_vec" || diags[1].Level != report.Error ||
		diags[1].Flags != "VecFromRaw" {
		t.Errorf("unexpected second diagnostic %+v", diags[1])
	}
	counts := report.CountByLevel(diags)
	if counts[report.Error] != 1 || counts[report.Warning] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestRunAmbiguousCopy(t *testing.T) {
	copyName := ir.NameOf("core", "marker", "Copy")
	prog := ir.NewProgram(nil, nil, nil, []*ir.TraitDecl{{ID: 1, Name: copyName}, {ID: 2, Name: copyName}}, nil)
	cfg := config.NewDefault()
	var logs bytes.Buffer
	_, err := Run(cfg, testLogger(cfg, &logs), prog)
	if !errors.Is(err, progctx.ErrAmbiguousCopyTrait) {
		t.Errorf("expected ErrAmbiguousCopyTrait, got %v", err)
	}
}

func TestLoadProgram(t *testing.T) {
	b, err := testfsys.ReadFile("testdata/ring/program.json")
	if err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(t.TempDir(), "ring.json")
	if err := os.WriteFile(file, b, 0600); err != nil {
		t.Fatal(err)
	}
	cfg := config.NewDefault()
	var logs bytes.Buffer
	prog, err := LoadProgram(file, testLogger(cfg, &logs))
	if err != nil {
		t.Fatalf("could not load program: %v", err)
	}
	if len(prog.Functions) != 5 {
		t.Errorf("expected 5 functions, got %d", len(prog.Functions))
	}
	if _, err := LoadProgram(file+".missing", testLogger(cfg, &logs)); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestProgramStatistics(t *testing.T) {
	prog, _ := analysistest.LoadTest(t, testfsys, "testdata/ring")
	s := ProgramStatistics(prog)
	expected := Statistics{
		NumberOfFunctions:              5,
		NumberOfNonemptyFunctions:      2,
		NumberOfBlocks:                 7,
		NumberOfStatements:             3,
		NumberOfCalls:                  4,
		NumberOfLoops:                  1,
		NumberOfUnsupportedTerminators: 1,
	}
	s.CallsByKind, expected.CallsByKind = nil, nil
	if !reflect.DeepEqual(s, expected) {
		t.Errorf("expected %+v, got %+v", expected, s)
	}
	s = ProgramStatistics(prog)
	if s.CallsByKind[ir.DirectCall] != 3 || s.CallsByKind[ir.TraitCall] != 1 {
		t.Errorf("unexpected calls by kind %v", s.CallsByKind)
	}
	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "calls: 4 (direct 3, trait 1, builtin 0, indirect 0)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
