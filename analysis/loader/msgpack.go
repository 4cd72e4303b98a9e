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

	"github.com/vmihailenco/msgpack/v5"
)

// DecodeMsgpackTree reads one MessagePack value from r. Maps are decoded with string keys and integers as int64
// or uint64, so the tree has the same shape as the one returned by DecodeJSONTree. Map keys must be strings.
func DecodeMsgpackTree(r io.Reader) (any, error) {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	v, err := dec.DecodeInterfaceLoose()
	if err != nil {
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("invalid msgpack: %w", err)
	}
	return v, nil
}

// ConvertJSONToMsgpack re-encodes the JSON document read from in as MessagePack. Map keys are sorted, so the
// output only depends on the content of the document.
func ConvertJSONToMsgpack(in io.Reader, out io.Writer) error {
	tree, err := DecodeJSONTree(in)
	if err != nil {
		return err
	}
	enc := msgpack.NewEncoder(out)
	enc.SetSortMapKeys(true)
	return enc.Encode(tree)
}
