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

/*
Package ir contains the in-memory representation of the program being analyzed. The representation is produced by
an upstream frontend: every call is already resolved to a declaration id or to a trait method reference, and every
function body is a control-flow graph of basic blocks.

A [Program] is immutable once it has been built, either by the loader package or directly by tests. All the
analyses share it read-only.
*/
package ir

import "fmt"

// FunDeclID identifies a function declaration
type FunDeclID int

// TypeDeclID identifies a nominal type declaration
type TypeDeclID int

// TraitDeclID identifies a trait declaration
type TraitDeclID int

// TraitImplID identifies a trait implementation
type TraitImplID int

// FileID identifies a source file in the program's file table
type FileID int

// Program is the whole input of the analysis.
type Program struct {
	// Files is the file table. Spans refer to files by their id.
	Files []File

	// Functions contains all the function declarations, with or without body.
	Functions []*FunctionDecl

	// Types contains the nominal type declarations
	Types []*TypeDecl

	// Traits contains the trait declarations
	Traits []*TraitDecl

	// Impls contains all the trait implementations
	Impls []*TraitImpl

	funcs  map[FunDeclID]*FunctionDecl
	types  map[TypeDeclID]*TypeDecl
	traits map[TraitDeclID]*TraitDecl
	impls  map[TraitImplID]*TraitImpl
	files  map[FileID]string
}

// File is an entry of the file table
type File struct {
	ID   FileID
	Name string
}

// FunctionDecl is a function declaration. Body is nil when the function has no body available (e.g. external
// declarations, intrinsics).
type FunctionDecl struct {
	ID   FunDeclID
	Name Name
	Span Span
	Body *Body
}

// TypeDecl is a nominal type declaration (struct, enum or union)
type TypeDecl struct {
	ID   TypeDeclID
	Name Name
	Span Span
}

// TraitDecl is a trait declaration
type TraitDecl struct {
	ID   TraitDeclID
	Name Name
}

// TraitImpl is an implementation of the trait Trait. Generics are the arguments of the implemented trait; the
// first type argument is the type the trait is implemented for.
type TraitImpl struct {
	ID       TraitImplID
	Name     Name
	Trait    TraitDeclID
	Generics GenericArgs
}

// NewProgram returns a program with the declarations provided, with its lookup tables initialized.
func NewProgram(files []File, funcs []*FunctionDecl, types []*TypeDecl, traits []*TraitDecl,
	impls []*TraitImpl) *Program {
	p := &Program{
		Files:     files,
		Functions: funcs,
		Types:     types,
		Traits:    traits,
		Impls:     impls,
	}
	p.index()
	return p
}

func (p *Program) index() {
	p.funcs = make(map[FunDeclID]*FunctionDecl, len(p.Functions))
	for _, f := range p.Functions {
		p.funcs[f.ID] = f
	}
	p.types = make(map[TypeDeclID]*TypeDecl, len(p.Types))
	for _, t := range p.Types {
		p.types[t.ID] = t
	}
	p.traits = make(map[TraitDeclID]*TraitDecl, len(p.Traits))
	for _, t := range p.Traits {
		p.traits[t.ID] = t
	}
	p.impls = make(map[TraitImplID]*TraitImpl, len(p.Impls))
	for _, i := range p.Impls {
		p.impls[i.ID] = i
	}
	p.files = make(map[FileID]string, len(p.Files))
	for _, f := range p.Files {
		p.files[f.ID] = f.Name
	}
}

// Function returns the function declaration with id, and false if there is none
func (p *Program) Function(id FunDeclID) (*FunctionDecl, bool) {
	f, ok := p.funcs[id]
	return f, ok
}

// Type returns the type declaration with id, and false if there is none
func (p *Program) Type(id TypeDeclID) (*TypeDecl, bool) {
	t, ok := p.types[id]
	return t, ok
}

// Trait returns the trait declaration with id, and false if there is none
func (p *Program) Trait(id TraitDeclID) (*TraitDecl, bool) {
	t, ok := p.traits[id]
	return t, ok
}

// Impl returns the trait implementation with id, and false if there is none
func (p *Program) Impl(id TraitImplID) (*TraitImpl, bool) {
	i, ok := p.impls[id]
	return i, ok
}

// FileName returns the name of the file with id. The empty string is returned for unknown files.
func (p *Program) FileName(id FileID) string {
	return p.files[id]
}

// Position returns a human-readable "file:line:col" representation of the start of span
func (p *Program) Position(span Span) string {
	name := p.FileName(span.File)
	if name == "" {
		name = fmt.Sprintf("<file %d>", span.File)
	}
	return fmt.Sprintf("%s:%d:%d", name, span.Begin.Line, span.Begin.Col)
}

// Loc is a position in a file. Lines start at 1, columns at 0.
type Loc struct {
	Line int
	Col  int
}

// Span is a range of source text in one file. The zero value means the frontend did not provide a source mapping.
type Span struct {
	File  FileID
	Begin Loc
	End   Loc
}

// IsValid returns true if the span maps to some source text
func (s Span) IsValid() bool {
	return s.Begin.Line > 0 && (s.End.Line > s.Begin.Line || (s.End.Line == s.Begin.Line && s.End.Col >= s.Begin.Col))
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d-%d:%d", s.File, s.Begin.Line, s.Begin.Col, s.End.Line, s.End.Col)
}
