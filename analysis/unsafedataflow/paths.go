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
	"sync"

	"github.com/awslabs/unsafeflow/analysis/names"
)

// Strong bypasses: the callee fabricates or duplicates an owned value
var (
	PtrRead                      = []string{"core", "ptr", "read"}
	PtrDirectRead                = []string{"core", "ptr", "const_ptr", "<_>", "read"}
	IntrinsicsCopy               = []string{"core", "intrinsics", "copy"}
	IntrinsicsCopyNonoverlapping = []string{"core", "intrinsics", "copy_nonoverlapping"}
	VecSetLenPath                = []string{"alloc", "vec", "<Vec<_>>", "set_len"}
	VecFromRawParts              = []string{"alloc", "vec", "<Vec<_>>", "from_raw_parts"}
)

// Weak bypasses: the callee reinterprets or reborrows existing memory
var (
	// TransmuteExtern is the transmute intrinsic declared in an extern block, which has an empty path segment
	TransmuteExtern         = []string{"core", "intrinsics", "", "transmute"}
	TransmutePath           = []string{"core", "intrinsics", "transmute"}
	PtrWrite                = []string{"core", "ptr", "write"}
	PtrDirectWrite          = []string{"core", "ptr", "mut_ptr", "<_>", "write"}
	PtrAsRefPath            = []string{"core", "ptr", "const_ptr", "<_>", "as_ref"}
	PtrAsMut                = []string{"core", "ptr", "mut_ptr", "<_>", "as_mut"}
	NonNullAsRef            = []string{"core", "ptr", "non_null", "<NonNull<_>>", "as_ref"}
	NonNullAsMut            = []string{"core", "ptr", "non_null", "<NonNull<_>>", "as_mut"}
	SliceGetUnchecked       = []string{"core", "slice", "<[_]>", "get_unchecked"}
	SliceGetUncheckedMut    = []string{"core", "slice", "<[_]>", "get_unchecked_mut"}
	PtrSliceFromRawParts    = []string{"core", "ptr", "slice_from_raw_parts"}
	PtrSliceFromRawPartsMut = []string{"core", "ptr", "slice_from_raw_parts_mut"}
	SliceFromRawParts       = []string{"core", "slice", "from_raw_parts"}
	SliceFromRawPartsMut    = []string{"core", "slice", "from_raw_parts_mut"}
)

// Generic functions: the callee runs code that cannot be resolved statically
var (
	PtrDropInPlace       = []string{"core", "ptr", "drop_in_place"}
	PtrDirectDropInPlace = []string{"core", "ptr", "mut_ptr", "<_>", "drop_in_place"}
)

// PathsDiscovery is the path of the functions whose callees are listed by DiscoverPaths instead of being analyzed
var PathsDiscovery = []string{"rudra_paths_discovery", "PathsDiscovery", "discover"}

// Catalog contains the path sets of the analysis and the flag of each bypass path. It is built once and never
// modified, so it can be read concurrently.
type Catalog struct {
	// Strong, Weak and Generic are the bypass lists, in the order in which a callee is tested against them
	Strong  names.PathSet
	Weak    names.PathSet
	Generic names.PathSet

	// Flags maps each path of the strong and weak lists to its flag
	Flags map[string]BehaviorFlag

	// Reads and Writes are the raw read and write families, for which calls on copyable types are not bypasses
	Reads  names.PathSet
	Writes names.PathSet

	// SetLen is the vector length override
	SetLen names.Pattern

	// Discovery matches the path discovery functions
	Discovery names.PathSet
}

// GetCatalog returns the catalog. The catalog is built on the first call; a malformed path panics.
var GetCatalog = sync.OnceValue(newCatalog)

func newCatalog() *Catalog {
	flags := map[string]BehaviorFlag{}
	add := func(flag BehaviorFlag, paths ...[]string) [][]string {
		for _, p := range paths {
			flags[names.JoinPath(p)] = flag
		}
		return paths
	}
	var strong, weak [][]string
	strong = append(strong, add(ReadFlow, PtrRead, PtrDirectRead)...)
	strong = append(strong, add(CopyFlow, IntrinsicsCopy, IntrinsicsCopyNonoverlapping)...)
	strong = append(strong, add(VecSetLen, VecSetLenPath)...)
	strong = append(strong, add(VecFromRaw, VecFromRawParts)...)

	weak = append(weak, add(Transmute, TransmuteExtern, TransmutePath)...)
	weak = append(weak, add(WriteFlow, PtrWrite, PtrDirectWrite)...)
	weak = append(weak, add(PtrAsRef, PtrAsRefPath, PtrAsMut, NonNullAsRef, NonNullAsMut)...)
	weak = append(weak, add(SliceUnchecked, SliceGetUnchecked, SliceGetUncheckedMut)...)
	weak = append(weak,
		add(SliceFromRaw, PtrSliceFromRawParts, PtrSliceFromRawPartsMut, SliceFromRawParts, SliceFromRawPartsMut)...)

	return &Catalog{
		Strong:    names.NewPathSet(strong...),
		Weak:      names.NewPathSet(weak...),
		Generic:   names.NewPathSet(PtrDropInPlace, PtrDirectDropInPlace),
		Flags:     flags,
		Reads:     names.NewPathSet(PtrRead, PtrDirectRead),
		Writes:    names.NewPathSet(PtrWrite, PtrDirectWrite),
		SetLen:    names.MustParse(names.JoinPath(VecSetLenPath)),
		Discovery: names.NewPathSet(PathsDiscovery),
	}
}
