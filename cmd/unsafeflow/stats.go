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
	"github.com/awslabs/unsafeflow/analysis"
	"github.com/awslabs/unsafeflow/internal/graphutil"
	"github.com/spf13/cobra"
)

func newStatsCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <program>",
		Short: "Print statistics about the function bodies of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			prog, err := analysis.LoadProgram(args[0], logger)
			if err != nil {
				return err
			}
			if cfg.Verbose() {
				for _, f := range prog.Functions {
					if f.Body == nil {
						continue
					}
					if loops := graphutil.NewBlockGraph(f.Body).Loops(); len(loops) > 0 {
						logger.Debugf("%s: loops %v", f.Name, loops)
					}
				}
			}
			return analysis.ProgramStatistics(prog).Write(cmd.OutOrStdout())
		},
	}
}
