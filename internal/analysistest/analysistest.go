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

package analysistest

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"testing"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/loader"
	"github.com/awslabs/unsafeflow/analysis/report"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// LoadTest loads the program in the directory dir of fsys, looking for a program.json and a config.yaml. The
// logs of the loader are discarded.
func LoadTest(t *testing.T, fsys fs.FS, dir string) (*ir.Program, *config.Config) {
	t.Helper()
	configFile := path.Join(dir, "config.yaml")
	b, err := fs.ReadFile(fsys, configFile)
	if err != nil {
		t.Fatalf("error reading config %s: %v", configFile, err)
	}
	cfg, err := config.LoadFromBytes(configFile, b)
	if err != nil {
		t.Fatalf("error loading config %s: %v", configFile, err)
	}
	programFile := path.Join(dir, "program.json")
	p, err := fs.ReadFile(fsys, programFile)
	if err != nil {
		t.Fatalf("error reading program %s: %v", programFile, err)
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(&bytes.Buffer{})
	prog, err := loader.DecodeJSON(bytes.NewReader(p), logger)
	if err != nil {
		t.Fatalf("error loading program %s: %v", programFile, err)
	}
	return prog, cfg
}

// LPos is a position without column
type LPos struct {
	Filename string `yaml:"file"`
	Line     int    `yaml:"line"`
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// RemoveColumn returns the position of the beginning of loc without column
func RemoveColumn(loc report.Location) LPos {
	return LPos{Filename: loc.File, Line: loc.Line}
}

// Expected is a diagnostic expected in a test, keyed by function name in the expectation file
type Expected struct {
	Level  string `yaml:"level"`
	Flags  string `yaml:"flags"`
	Strong []int  `yaml:"strong-bypass"`
	Weak   []int  `yaml:"weak-bypass"`
	Sinks  []int  `yaml:"unresolved-sink"`
}

// GetExpected reads the expected.yaml file of dir, which maps function names to the diagnostic expected for that
// function. Functions that are not listed must not be reported.
func GetExpected(t *testing.T, fsys fs.FS, dir string) map[string]Expected {
	t.Helper()
	file := path.Join(dir, "expected.yaml")
	b, err := fs.ReadFile(fsys, file)
	if err != nil {
		t.Fatalf("error reading %s: %v", file, err)
	}
	expected := map[string]Expected{}
	if err := yaml.Unmarshal(b, &expected); err != nil {
		t.Fatalf("error parsing %s: %v", file, err)
	}
	return expected
}

// Summarize returns the expectation a diagnostic satisfies. Sub-span lines are sorted.
func Summarize(d report.Diagnostic) Expected {
	e := Expected{Level: d.Level.String(), Flags: d.Flags}
	for _, s := range d.SubSpans {
		switch s.Category {
		case report.StrongBypass:
			e.Strong = append(e.Strong, s.Location.Line)
		case report.WeakBypass:
			e.Weak = append(e.Weak, s.Location.Line)
		case report.UnresolvedSink:
			e.Sinks = append(e.Sinks, s.Location.Line)
		}
	}
	slices.Sort(e.Strong)
	slices.Sort(e.Weak)
	slices.Sort(e.Sinks)
	return e
}

// CheckDiagnostics reports an error for every expected diagnostic that is missing or different in diags, and for
// every diagnostic that is not expected.
func CheckDiagnostics(t *testing.T, expected map[string]Expected, diags []report.Diagnostic) {
	t.Helper()
	seen := map[string]bool{}
	for _, d := range diags {
		seen[d.Function] = true
		exp, ok := expected[d.Function]
		if !ok {
			t.Errorf("unexpected diagnostic for %s at %s: %s", d.Function, RemoveColumn(d.Primary), d.Flags)
			continue
		}
		slices.Sort(exp.Strong)
		slices.Sort(exp.Weak)
		slices.Sort(exp.Sinks)
		if got := Summarize(d); !equalExpected(got, exp) {
			t.Errorf("diagnostic for %s:\n got      %+v\n expected %+v", d.Function, got, exp)
		}
	}
	for name := range expected {
		if !seen[name] {
			t.Errorf("missing diagnostic for %s", name)
		}
	}
}

func equalExpected(a, b Expected) bool {
	return a.Level == b.Level && a.Flags == b.Flags && slices.Equal(a.Strong, b.Strong) && slices.Equal(a.Weak, b.Weak) &&
		slices.Equal(a.Sinks, b.Sinks)
}
