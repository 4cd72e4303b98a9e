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
	"fmt"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"

	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/internal/funcutil"
	"gopkg.in/yaml.v3"
)

// Config contains the options of the tool and the list of analyses to run.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	sourceFile string

	// if the FunctionFilter is specified
	functionFilterRegex *regexp.Regexp

	// reportLevel is the parsed ReportLevel option
	reportLevel report.Level

	// EnabledAnalyses lists the names of the analyses to run. The default is all of them.
	EnabledAnalyses []string `yaml:"enabled-analyses"`

	// Exclude lists the functions that are not analyzed
	Exclude []NameIdentifier `yaml:"exclude"`
}

type Options struct {
	// ReportsDir is the directory where the reports will be stored. If the yaml config file this config struct has
	// been loaded does not specify a ReportsDir but sets any Report* option to true, then ReportsDir will be created
	// next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// FunctionFilter restricts the analyses to the functions whose qualified name matches it. It is a regex if it
	// compiles as one, otherwise a prefix.
	FunctionFilter string `yaml:"function-filter"`

	// ReportLevel is the minimum level of the diagnostics that are reported: info, warning or error
	ReportLevel string `yaml:"report-level"`

	// NumRoutines is the number of goroutines the per-function analyses run on. If <= 0, the number of CPUs is used.
	NumRoutines int `yaml:"num-routines"`

	// OutputFormat is the format of the diagnostics: text, json or yaml
	OutputFormat string `yaml:"output-format"`

	// ReportGraphs can be set to true, in which case the control-flow graph of every reported function is written
	// in DOT format in a file named <function>.dot in the reports directory
	ReportGraphs bool `yaml:"report-graphs"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns the default config: all analyses, warnings and errors reported as text.
func NewDefault() *Config {
	return &Config{
		sourceFile:      "",
		reportLevel:     DefaultReportLevel,
		EnabledAnalyses: nil,
		Exclude:         nil,
		Options: Options{
			ReportsDir:     "",
			FunctionFilter: "",
			ReportLevel:    DefaultReportLevel.String(),
			NumRoutines:    0,
			OutputFormat:   report.FormatText,
			ReportGraphs:   false,
			LogLevel:       int(InfoLevel),
			SilenceWarn:    false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes parses the content b of the configuration file filename
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename

	if cfg.ReportGraphs {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.FunctionFilter != "" {
		r, err := regexp.Compile(cfg.FunctionFilter)
		if err == nil {
			cfg.functionFilterRegex = r
		}
	}

	cfg.Exclude = funcutil.Map(cfg.Exclude, compileRegexes)
	return cfg, nil
}

// Validate checks the values of the options and computes the derived fields. It returns an error if the report
// level, the output format or the log level are not valid.
func (c *Config) Validate() error {
	if c.ReportLevel == "" {
		c.ReportLevel = DefaultReportLevel.String()
	}
	level, err := report.ParseLevel(c.ReportLevel)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.reportLevel = level

	if c.OutputFormat == "" {
		c.OutputFormat = report.FormatText
	}
	if _, err := report.NewWriter(c.OutputFormat); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("invalid config: log level %d not in [%d, %d]", c.LogLevel, ErrLevel, TraceLevel)
	}
	return nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// EnsureReportsDir creates the reports directory when graphs are requested but no directory has been set. The
// directory is created in the current directory.
func (c *Config) EnsureReportsDir() error {
	if !c.ReportGraphs {
		return nil
	}
	return setReportsDir(c, "report")
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// ReportThreshold returns the minimum level of the reported diagnostics
func (c Config) ReportThreshold() report.Level {
	return c.reportLevel
}

// SetReportThreshold sets the report level option
func (c *Config) SetReportThreshold(l report.Level) {
	c.reportLevel = l
	c.ReportLevel = l.String()
}

// Routines returns the number of goroutines the analyses should use
func (c Config) Routines() int {
	if c.NumRoutines <= 0 {
		return runtime.NumCPU()
	}
	return c.NumRoutines
}

// IsEnabled returns true if the analysis named name should run
func (c Config) IsEnabled(name string) bool {
	if len(c.EnabledAnalyses) == 0 {
		return true
	}
	return funcutil.Exists(c.EnabledAnalyses, func(s string) bool { return s == name })
}

// MatchFunctionFilter returns true if the qualified function name matches the function filter set in the config
// file. If no function filter has been set in the config file, it returns true. This function safely considers the
// case where a filter has been specified by the user, but it could not be compiled to a regex. The safe case is to
// check whether the function filter string is a prefix of the name.
func (c Config) MatchFunctionFilter(name string) bool {
	if c.functionFilterRegex != nil {
		return c.functionFilterRegex.MatchString(name)
	} else if c.FunctionFilter != "" {
		return strings.HasPrefix(name, c.FunctionFilter)
	} else {
		return true
	}
}

// IsExcluded returns true if the function identified by nid matches some exclusion of the config
func (c Config) IsExcluded(nid NameIdentifier) bool {
	return ExistsNid(c.Exclude, nid.equalOnNonEmptyFields)
}

// ShouldAnalyze returns true if the function with the qualified name in file passes the function filter and is
// not excluded
func (c Config) ShouldAnalyze(name string, file string) bool {
	return c.MatchFunctionFilter(name) && !c.IsExcluded(NameIdentifier{Name: name, File: file})
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
