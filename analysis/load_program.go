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
	"fmt"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/loader"
)

// LoadProgram loads the program in the file at path. MessagePack files (.msgpack, .mp) and JSON files are
// accepted; see package loader for the format.
func LoadProgram(path string, logger *config.LogGroup) (*ir.Program, error) {
	prog, err := loader.Load(path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if len(prog.Functions) == 0 {
		logger.Warnf("%s contains no function", path)
	}
	return prog, nil
}
