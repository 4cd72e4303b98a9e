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

package main

import (
	"fmt"

	"github.com/awslabs/unsafeflow/analysis"
	"github.com/awslabs/unsafeflow/analysis/unsafedataflow"
	"github.com/spf13/cobra"
)

func newDiscoverCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "discover <program>",
		Short: "Print the functions called by the paths discovery functions of a program",
		Long: `discover prints the qualified name of each function called directly by a function named
rudra_paths_discovery::PathsDiscovery::discover, one per line. This shows the names under which bypass
functions appear in the frontend output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			prog, err := analysis.LoadProgram(args[0], newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			for _, path := range unsafedataflow.DiscoverPaths(prog) {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
}
