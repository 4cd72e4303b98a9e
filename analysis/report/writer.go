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

package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/awslabs/unsafeflow/internal/formatutil"
	"gopkg.in/yaml.v3"
)

// Format names accepted by NewWriter
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// A Writer emits a list of diagnostics
type Writer interface {
	Write(w io.Writer, diags []Diagnostic) error
}

// NewWriter returns the writer for the output format
func NewWriter(format string) (Writer, error) {
	switch format {
	case "", FormatText:
		return TextWriter{}, nil
	case FormatJSON:
		return JSONWriter{}, nil
	case FormatYAML:
		return YAMLWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
}

// TextWriter writes diagnostics for a human reader, colored when the output is a terminal
type TextWriter struct{}

func levelColor(l Level) func(...interface{}) string {
	switch l {
	case Error:
		return formatutil.Red
	case Warning:
		return formatutil.Yellow
	default:
		return formatutil.Cyan
	}
}

func categoryColor(c Category) func(...interface{}) string {
	switch c {
	case StrongBypass:
		return formatutil.Red
	case WeakBypass:
		return formatutil.Yellow
	default:
		return formatutil.Cyan
	}
}

func (TextWriter) Write(w io.Writer, diags []Diagnostic) error {
	b := bufio.NewWriter(w)
	for _, d := range diags {
		kind := d.Analysis
		if d.Flags != "" {
			kind += ":" + d.Flags
		}
		fmt.Fprintf(b, "%s[%s]: %s\n", levelColor(d.Level)(d.Level), kind, formatutil.Sanitize(d.Message))
		fmt.Fprintf(b, "  --> %s\n", d.Primary.Range())
		for _, s := range d.SubSpans {
			fmt.Fprintf(b, "   = %s: %s\n", categoryColor(s.Category)(s.Category), s.Location.Range())
		}
		fmt.Fprintln(b)
	}
	return b.Flush()
}

// JSONWriter writes diagnostics as an indented JSON array
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// YAMLWriter writes diagnostics as a YAML sequence
type YAMLWriter struct{}

func (YAMLWriter) Write(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(diags); err != nil {
		return err
	}
	return enc.Close()
}
