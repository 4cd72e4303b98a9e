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

import "github.com/awslabs/unsafeflow/analysis/report"

const (
	// DefaultReportLevel is the minimum level of the reported diagnostics when the config does not set one
	DefaultReportLevel = report.Warning

	// UnsafeDataflowAnalysis is the name of the unsafe dataflow analysis in the enabled-analyses list
	UnsafeDataflowAnalysis = "unsafe-dataflow"
)

// AllAnalyses lists the names of the analyses that can be enabled
var AllAnalyses = []string{UnsafeDataflowAnalysis}
