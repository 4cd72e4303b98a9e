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

// Package progctx computes whole-program facts about types and traits that the per-function analyses query.
package progctx

import (
	"errors"
	"fmt"

	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/names"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CopyTraitPath is the path of the marker trait of bitwise-copyable types
const CopyTraitPath = "core::marker::Copy"

// ErrAmbiguousCopyTrait is returned by Build when several trait declarations match CopyTraitPath. The input is
// inconsistent and no analysis can be trusted on it.
var ErrAmbiguousCopyTrait = errors.New("more than one trait declaration matches " + CopyTraitPath)

var copyPattern = names.MustParse(CopyTraitPath)

// ProgramContext contains the program and the whole-program indices. It is built once with Build and is read-only
// afterwards, so it can be shared by all the analysis goroutines.
type ProgramContext struct {
	prog *ir.Program

	// traitImpls maps each trait to the set of its implementations
	traitImpls map[ir.TraitDeclID]map[ir.TraitImplID]bool

	// copyable is the set of nominal types that have an implementation of the copy marker trait
	copyable map[ir.TypeDeclID]bool
}

// Build computes the indices of prog.
func Build(prog *ir.Program) (*ProgramContext, error) {
	c := &ProgramContext{
		prog:       prog,
		traitImpls: make(map[ir.TraitDeclID]map[ir.TraitImplID]bool, len(prog.Traits)),
		copyable:   map[ir.TypeDeclID]bool{},
	}

	// First pass: trait implementor map. Implementations of traits that are not declared in the program are
	// kept too.
	for _, t := range prog.Traits {
		c.traitImpls[t.ID] = map[ir.TraitImplID]bool{}
	}
	for _, impl := range prog.Impls {
		set, ok := c.traitImpls[impl.Trait]
		if !ok {
			set = map[ir.TraitImplID]bool{}
			c.traitImpls[impl.Trait] = set
		}
		set[impl.ID] = true
	}

	// Second pass: copyable types
	var copyTraits []ir.TraitDeclID
	for _, t := range prog.Traits {
		if copyPattern.Matches(t.Name) {
			copyTraits = append(copyTraits, t.ID)
		}
	}
	if len(copyTraits) > 1 {
		return nil, fmt.Errorf("%w (trait ids %v)", ErrAmbiguousCopyTrait, copyTraits)
	}
	if len(copyTraits) == 1 {
		for _, impl := range prog.Impls {
			if impl.Trait != copyTraits[0] {
				continue
			}
			if adt, ok := impl.Generics.FirstType().(*ir.AdtTy); ok {
				c.copyable[adt.ID] = true
			}
		}
	}
	return c, nil
}

// Program returns the program the context has been built for
func (c *ProgramContext) Program() *ir.Program {
	return c.prog
}

// Implementors returns the implementations of trait, sorted by id
func (c *ProgramContext) Implementors(trait ir.TraitDeclID) []ir.TraitImplID {
	ids := maps.Keys(c.traitImpls[trait])
	slices.Sort(ids)
	return ids
}

// NumCopyable returns the number of nominal types known to be copyable
func (c *ProgramContext) NumCopyable() int {
	return len(c.copyable)
}

// IsCopyable returns true if values of type ty can be duplicated bitwise without invalidating the original. The
// result is an under-approximation: false may be returned for copyable types, never the opposite.
func (c *ProgramContext) IsCopyable(ty ir.Ty) bool {
	switch t := ty.(type) {
	case *ir.TupleTy:
		for _, e := range t.Elems {
			if !c.IsCopyable(e) {
				return false
			}
		}
		return true
	case *ir.AdtTy:
		return c.copyable[t.ID]
	case *ir.LiteralTy:
		return true
	case *ir.RefTy:
		return t.Kind == ir.Shared
	case *ir.RawPtrTy:
		return true
	default:
		// builtin containers, type variables, never, projections, trait objects, function pointers, or missing
		return false
	}
}
