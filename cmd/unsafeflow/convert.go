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
	"os"

	"github.com/awslabs/unsafeflow/analysis/loader"
	"github.com/spf13/cobra"
)

func newConvertCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <program.json> <program.msgpack>",
		Short: "Re-encode a JSON program in MessagePack",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			if err := convertFile(args[0], args[1]); err != nil {
				return err
			}
			newLogger(cmd, cfg).Infof("%s written", args[1])
			return nil
		},
	}
}

func convertFile(in, out string) error {
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("could not open program: %w", err)
	}
	defer src.Close()
	dst, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("could not create output: %w", err)
	}
	if err := loader.ConvertJSONToMsgpack(src, dst); err != nil {
		dst.Close()
		os.Remove(out)
		return fmt.Errorf("%s: %w", in, err)
	}
	return dst.Close()
}
