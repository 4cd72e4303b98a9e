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

package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
)

// IsMsgpack returns true if the file at path is read as MessagePack
func IsMsgpack(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".msgpack" || ext == ".mp"
}

// Load reads the program in the file at path. The encoding is chosen from the file extension.
func Load(path string, logger *config.LogGroup) (*ir.Program, error) {
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open program: %w", err)
	}
	defer f.Close()

	start := time.Now()
	var prog *ir.Program
	if IsMsgpack(path) {
		prog, err = DecodeMsgpack(f, logger)
	} else {
		prog, err = DecodeJSON(f, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debugf("loaded %s (%d functions) in %.2f s", path, len(prog.Functions), time.Since(start).Seconds())
	return prog, nil
}

// DecodeJSON reads a JSON encoded program from r
func DecodeJSON(r io.Reader, logger *config.LogGroup) (*ir.Program, error) {
	tree, err := DecodeJSONTree(r)
	if err != nil {
		return nil, err
	}
	return FromTree(tree, logger)
}

// DecodeMsgpack reads a MessagePack encoded program from r
func DecodeMsgpack(r io.Reader, logger *config.LogGroup) (*ir.Program, error) {
	tree, err := DecodeMsgpackTree(r)
	if err != nil {
		return nil, err
	}
	return FromTree(tree, logger)
}
