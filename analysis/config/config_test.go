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

package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/awslabs/unsafeflow/analysis/report"
)

//go:embed testdata
var testfsys embed.FS

func checkEqualOnNonEmptyFields(t *testing.T, nid1 NameIdentifier, nid2 NameIdentifier) {
	nid2c := compileRegexes(nid2)
	if !nid1.equalOnNonEmptyFields(nid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", nid1, nid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, nid1 NameIdentifier, nid2 NameIdentifier) {
	nid2c := compileRegexes(nid2)
	if nid1.equalOnNonEmptyFields(nid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", nid1, nid2)
	}
}

func TestNameIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	nid1 := NameIdentifier{Name: "a", File: "b"}
	checkEqualOnNonEmptyFields(t, nid1, nid1)
}

func TestNameIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	nid1 := NameIdentifier{Name: "a", File: "b"}
	nid2 := NameIdentifier{Name: "de", File: "234jbn"}
	nidEmpty := NameIdentifier{}
	checkEqualOnNonEmptyFields(t, nid1, nidEmpty)
	checkEqualOnNonEmptyFields(t, nid2, nidEmpty)
}

func TestNameIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	nid1 := NameIdentifier{Name: "a", File: "b"}
	nid2 := NameIdentifier{Name: "a"}
	checkEqualOnNonEmptyFields(t, nid1, nid2)
	checkNotEqualOnNonEmptyFields(t, nid2, nid1)
}

func TestNameIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	nid1 := NameIdentifier{Name: "mycrate::buf::<Buffer>::read"}
	nid1bis := NameIdentifier{Name: "othercrate::buf::read"}
	nid2 := NameIdentifier{Name: "^(mycrate|othercrate)::buf::"}
	checkEqualOnNonEmptyFields(t, nid1, nid2)
	checkEqualOnNonEmptyFields(t, nid1bis, nid2)
	checkNotEqualOnNonEmptyFields(t, NameIdentifier{Name: "core::ptr::read"}, nid2)
}

func TestNameIdentifier_equalOnNonEmptyFields_notRegex(t *testing.T) {
	// "[_" does not compile: the identifier is compared as a string
	nid := NameIdentifier{Name: "core::slice::<[_"}
	checkEqualOnNonEmptyFields(t, nid, nid)
	checkNotEqualOnNonEmptyFields(t, NameIdentifier{Name: "core::slice::<[T]>"}, nid)
}

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadFromBytes(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func TestLoadFullConfig(t *testing.T) {
	name, cfg, err := loadFromTestDir("full-config.yaml")
	if err != nil {
		t.Fatalf("Error loading %q: %v", name, err)
	}
	if cfg.LogLevel != int(DebugLevel) || !cfg.Verbose() {
		t.Errorf("expected debug log level, got %d", cfg.LogLevel)
	}
	if cfg.ReportThreshold() != report.Info {
		t.Errorf("expected info report level, got %s", cfg.ReportThreshold())
	}
	if cfg.Routines() != 3 {
		t.Errorf("expected 3 routines, got %d", cfg.Routines())
	}
	if cfg.OutputFormat != report.FormatJSON {
		t.Errorf("expected json output, got %q", cfg.OutputFormat)
	}
	if !cfg.IsEnabled(UnsafeDataflowAnalysis) || cfg.IsEnabled("other") {
		t.Errorf("unexpected enabled analyses %v", cfg.EnabledAnalyses)
	}
	if len(cfg.Exclude) != 2 {
		t.Fatalf("expected two exclusions, got %v", cfg.Exclude)
	}
	if cfg.RelPath("x.json") != filepath.Join("testdata", "x.json") {
		t.Errorf("unexpected relative path %q", cfg.RelPath("x.json"))
	}
}

func TestShouldAnalyze(t *testing.T) {
	_, cfg, err := loadFromTestDir("full-config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name     string
		file     string
		expected bool
	}{
		{"mycrate::buf::read_all", "src/buf.rs", true},
		{"othercrate::buf::read_all", "src/buf.rs", false},
		{"mycrate::buf::tests::read_all", "src/buf.rs", false},
		{"mycrate::bench_read", "benches/read.rs", false},
	}
	for _, c := range cases {
		if got := cfg.ShouldAnalyze(c.name, c.file); got != c.expected {
			t.Errorf("ShouldAnalyze(%q, %q) = %v, expected %v", c.name, c.file, got, c.expected)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	name, cfg, err := loadFromTestDir("empty-config.yaml")
	if err != nil {
		t.Fatalf("Error loading %q: %v", name, err)
	}
	if cfg.LogLevel != int(InfoLevel) {
		t.Errorf("expected default log level info, got %d", cfg.LogLevel)
	}
	if cfg.ReportThreshold() != DefaultReportLevel {
		t.Errorf("expected default report level, got %s", cfg.ReportThreshold())
	}
	if cfg.Routines() != runtime.NumCPU() {
		t.Errorf("expected one routine per cpu, got %d", cfg.Routines())
	}
	if !cfg.IsEnabled(UnsafeDataflowAnalysis) {
		t.Errorf("all analyses should be enabled by default")
	}
	if !cfg.ShouldAnalyze("any::thing", "src/lib.rs") {
		t.Errorf("all functions should be analyzed by default")
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, file := range []string{"bad-level.yaml", "bad-format.yaml", "bad-log-level.yaml"} {
		if _, _, err := loadFromTestDir(file); err == nil {
			t.Errorf("expected an error loading %s", file)
		}
	}
	if _, err := LoadFromBytes("x.yaml", []byte("options: [")); err == nil {
		t.Errorf("expected an error for malformed yaml")
	}
	if _, err := Load(filepath.Join("testdata", "does-not-exist.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestBadFilterIsPrefix(t *testing.T) {
	_, cfg, err := loadFromTestDir("bad-filter.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.MatchFunctionFilter("mycrate::<Vec<[_]>>::f") {
		t.Errorf("a filter that is not a regex should be used as a prefix")
	}
	if cfg.MatchFunctionFilter("core::f") {
		t.Errorf("filter should not match core::f")
	}
}

func TestReportGraphsCreatesDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	reports := filepath.Join(dir, "reports")
	content := "options:\n  report-graphs: true\n  reports-dir: " + reports + "\n"
	if err := os.WriteFile(file, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}
	if st, err := os.Stat(cfg.ReportsDir); err != nil || !st.IsDir() {
		t.Errorf("expected reports dir %s to be created", cfg.ReportsDir)
	}
}

func TestLogGroup(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(WarnLevel)
	logger := NewLogGroup(cfg)
	var buf bytes.Buffer
	logger.SetAllOutput(&buf)
	logger.SetAllFlags(0)
	logger.Infof("hidden")
	logger.Warnf("shown %d", 1)
	logger.Errorf("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should not be logged at warn level:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] shown 1") || !strings.Contains(out, "[ERROR] shown 2") {
		t.Errorf("expected prefixed warning and error:\n%s", out)
	}
}

func TestSetReportThreshold(t *testing.T) {
	cfg := NewDefault()
	cfg.SetReportThreshold(report.Error)
	if cfg.ReportThreshold() != report.Error || cfg.ReportLevel != "error" {
		t.Errorf("threshold not set: %s %q", cfg.ReportThreshold(), cfg.ReportLevel)
	}
	if err := cfg.Validate(); err != nil || cfg.ReportThreshold() != report.Error {
		t.Errorf("validation should keep the threshold: %v", err)
	}
}
