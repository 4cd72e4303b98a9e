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
	"github.com/awslabs/unsafeflow/analysis/ir"
)

// DiscoverPaths returns the qualified names of the functions called directly by the paths discovery functions of
// prog, in call order. Catalog paths of new bypass functions can be found by calling them from a function named
// rudra_paths_discovery::PathsDiscovery::discover and running the discover command on the program.
func DiscoverPaths(prog *ir.Program) []string {
	var paths []string
	discovery := GetCatalog().Discovery
	for _, f := range prog.Functions {
		if f.Body == nil || discovery.Contains(f.Name).IsNone() {
			continue
		}
		for _, block := range f.Body.Blocks {
			block.Calls(func(call *ir.Call, _ ir.Span) {
				if call.Target.Kind != ir.DirectCall {
					return
				}
				if callee, ok := prog.Function(call.Target.Fun); ok {
					paths = append(paths, callee.Name.String())
				}
			})
		}
	}
	return paths
}
