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

package ir

import (
	"fmt"
	"strings"
)

// Ty is a type of the analyzed program. The set of implementations is closed: *AdtTy, *TupleTy, *BuiltinTy,
// *TypeVarTy, *LiteralTy, *NeverTy, *RefTy, *RawPtrTy, *TraitTypeTy, *DynTraitTy and *ArrowTy.
type Ty interface {
	fmt.Stringer
	isTy()
}

// AdtTy is a nominal type (struct, enum, union) applied to generic arguments
type AdtTy struct {
	ID       TypeDeclID
	Generics GenericArgs
}

// TupleTy is a tuple type. The unit type is the empty tuple.
type TupleTy struct {
	Elems []Ty
}

// BuiltinTy is a type provided by the language (Box, arrays, slices, str)
type BuiltinTy struct {
	Name     string
	Generics GenericArgs
}

// TypeVarTy is a type parameter that is not bound at this point of the program
type TypeVarTy struct {
	Index int
}

// LiteralTy is a scalar type: integers, floats, bool, char
type LiteralTy struct {
	Name string
}

// NeverTy is the type of diverging expressions
type NeverTy struct{}

// RefKind is the kind of reference
type RefKind int

const (
	// Shared references can be duplicated freely
	Shared RefKind = iota
	// Mut references are unique
	Mut
)

// RefTy is a reference type &T or &mut T
type RefTy struct {
	Kind RefKind
	Elem Ty
}

// RawPtrTy is a raw pointer type *const T or *mut T
type RawPtrTy struct {
	Mutable bool
	Elem    Ty
}

// TraitTypeTy is an associated type projection (<T as Trait>::Item)
type TraitTypeTy struct {
	TraitRef *TraitRef
	Item     string
}

// DynTraitTy is a dynamically dispatched trait object type
type DynTraitTy struct {
	Trait TraitDeclID
}

// ArrowTy is a function pointer type
type ArrowTy struct {
	Inputs []Ty
	Output Ty
}

func (*AdtTy) isTy()       {}
func (*TupleTy) isTy()     {}
func (*BuiltinTy) isTy()   {}
func (*TypeVarTy) isTy()   {}
func (*LiteralTy) isTy()   {}
func (*NeverTy) isTy()     {}
func (*RefTy) isTy()       {}
func (*RawPtrTy) isTy()    {}
func (*TraitTypeTy) isTy() {}
func (*DynTraitTy) isTy()  {}
func (*ArrowTy) isTy()     {}

func (t *AdtTy) String() string { return fmt.Sprintf("adt#%d%s", t.ID, t.Generics.typeString()) }

func (t *TupleTy) String() string { return "(" + joinTys(t.Elems) + ")" }

func (t *BuiltinTy) String() string { return t.Name + t.Generics.typeString() }

func (t *TypeVarTy) String() string { return fmt.Sprintf("T%d", t.Index) }

func (t *LiteralTy) String() string { return t.Name }

func (t *NeverTy) String() string { return "!" }

func (t *RefTy) String() string {
	if t.Kind == Mut {
		return "&mut " + tyString(t.Elem)
	}
	return "&" + tyString(t.Elem)
}

func (t *RawPtrTy) String() string {
	if t.Mutable {
		return "*mut " + tyString(t.Elem)
	}
	return "*const " + tyString(t.Elem)
}

func (t *TraitTypeTy) String() string { return "<_>::" + t.Item }

func (t *DynTraitTy) String() string { return fmt.Sprintf("dyn trait#%d", t.Trait) }

func (t *ArrowTy) String() string {
	return "fn(" + joinTys(t.Inputs) + ") -> " + tyString(t.Output)
}

func tyString(t Ty) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

func joinTys(tys []Ty) string {
	s := make([]string, len(tys))
	for i, t := range tys {
		s[i] = tyString(t)
	}
	return strings.Join(s, ", ")
}

// TraitRefKind tells how a trait obligation has been resolved by the frontend
type TraitRefKind int

const (
	// TraitRefImpl means the obligation resolved to a concrete implementation
	TraitRefImpl TraitRefKind = iota
	// TraitRefClause means the obligation is satisfied by a where-clause of the enclosing item (unresolved)
	TraitRefClause
	// TraitRefSelf is the Self obligation inside a trait declaration (unresolved)
	TraitRefSelf
	// TraitRefDyn is an obligation satisfied by a trait object (unresolved)
	TraitRefDyn
	// TraitRefBuiltin is an obligation satisfied by a compiler builtin implementation
	TraitRefBuiltin
	// TraitRefUnknown is any other form the frontend could not classify
	TraitRefUnknown
)

func (k TraitRefKind) String() string {
	switch k {
	case TraitRefImpl:
		return "impl"
	case TraitRefClause:
		return "clause"
	case TraitRefSelf:
		return "self"
	case TraitRefDyn:
		return "dyn"
	case TraitRefBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// TraitRef is a reference to a trait obligation. When Kind is TraitRefImpl, Impl is the implementation and
// Generics its generic arguments.
type TraitRef struct {
	Kind     TraitRefKind
	Trait    TraitDeclID
	Impl     TraitImplID
	Generics GenericArgs
}

// IsResolved returns true when the trait reference points to a concrete implementation
func (r TraitRef) IsResolved() bool {
	return r.Kind == TraitRefImpl
}

// GenericArgs are the generic arguments of an item
type GenericArgs struct {
	Types     []Ty
	TraitRefs []TraitRef
}

// HasUnresolved returns true if some trait reference of the generic arguments is not bound to a concrete
// implementation.
func (g GenericArgs) HasUnresolved() bool {
	for _, tr := range g.TraitRefs {
		if !tr.IsResolved() {
			return true
		}
	}
	return false
}

// FirstType returns the first type argument, or nil if there is none
func (g GenericArgs) FirstType() Ty {
	if len(g.Types) == 0 {
		return nil
	}
	return g.Types[0]
}

func (g GenericArgs) typeString() string {
	if len(g.Types) == 0 {
		return ""
	}
	return "<" + joinTys(g.Types) + ">"
}
