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

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
)

// FromTree converts a decoded document into a program. Malformed documents return an error naming the position
// of the faulty element; references to missing bodies are logged as warnings.
func FromTree(tree any, logger *config.LogGroup) (*ir.Program, error) {
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
	}
	root, err := asObject(tree)
	if err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}

	files, err := convertList(root, "files", convertFile)
	if err != nil {
		return nil, err
	}
	types, err := convertList(root, "types", convertTypeDecl)
	if err != nil {
		return nil, err
	}
	traits, err := convertList(root, "traits", convertTraitDecl)
	if err != nil {
		return nil, err
	}
	impls, err := convertList(root, "impls", convertImpl)
	if err != nil {
		return nil, err
	}
	bodies, err := convertList(root, "bodies", convertBody)
	if err != nil {
		return nil, err
	}
	bodyByID := make(map[int]*ir.Body, len(bodies))
	for _, b := range bodies {
		bodyByID[b.id] = b.body
	}

	rawFuncs, err := root.list("functions")
	if err != nil {
		return nil, err
	}
	funcs := make([]*ir.FunctionDecl, 0, len(rawFuncs))
	for i, raw := range rawFuncs {
		f, bodyID, err := convertFunction(raw)
		if err != nil {
			return nil, fmt.Errorf("functions[%d]: %w", i, err)
		}
		if bodyID >= 0 {
			if body, ok := bodyByID[bodyID]; ok {
				f.Body = body
			} else {
				logger.Warnf("function %s refers to missing body %d, it will not be analyzed", f.Name, bodyID)
			}
		}
		funcs = append(funcs, f)
	}
	return ir.NewProgram(files, funcs, types, traits, impls), nil
}

// convertList converts each element of the array root[key] with f
func convertList[T any](root object, key string, f func(object) (T, error)) ([]T, error) {
	raw, err := root.list(key)
	if err != nil {
		return nil, err
	}
	res := make([]T, 0, len(raw))
	for i, r := range raw {
		o, err := asObject(r)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		x, err := f(o)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		res = append(res, x)
	}
	return res, nil
}

// convertEach converts each element of the array o[key] with f. Elements need not be objects.
func convertEach[T any](o object, key string, f func(any) (T, error)) ([]T, error) {
	raw, err := o.list(key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	res := make([]T, 0, len(raw))
	for i, r := range raw {
		x, err := f(r)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		res = append(res, x)
	}
	return res, nil
}

func convertFile(o object) (ir.File, error) {
	id, err := o.int("id")
	if err != nil {
		return ir.File{}, err
	}
	name, err := o.str("name")
	if err != nil {
		return ir.File{}, err
	}
	return ir.File{ID: ir.FileID(id), Name: name}, nil
}

func convertName(o object) (ir.Name, error) {
	return convertEach(o, "name", func(v any) (ir.PathElem, error) {
		e, err := asObject(v)
		if err != nil {
			return ir.PathElem{}, err
		}
		if e.has("impl") {
			impl, err := e.str("impl")
			return ir.PathElem{Impl: impl}, err
		}
		ident, err := e.str("ident")
		return ir.PathElem{Ident: ident}, err
	})
}

func convertSpan(o object, key string) (ir.Span, error) {
	if !o.has(key) {
		return ir.Span{}, nil
	}
	s, err := o.obj(key)
	if err != nil {
		return ir.Span{}, err
	}
	file, err := s.int("file")
	if err != nil {
		return ir.Span{}, fmt.Errorf("%s: %w", key, err)
	}
	begin, err := convertLoc(s, "begin")
	if err != nil {
		return ir.Span{}, fmt.Errorf("%s: %w", key, err)
	}
	end, err := convertLoc(s, "end")
	if err != nil {
		return ir.Span{}, fmt.Errorf("%s: %w", key, err)
	}
	return ir.Span{File: ir.FileID(file), Begin: begin, End: end}, nil
}

func convertLoc(o object, key string) (ir.Loc, error) {
	l, err := o.obj(key)
	if err != nil {
		return ir.Loc{}, err
	}
	line, err := l.int("line")
	if err != nil {
		return ir.Loc{}, fmt.Errorf("%s: %w", key, err)
	}
	col, err := l.int("col")
	if err != nil {
		return ir.Loc{}, fmt.Errorf("%s: %w", key, err)
	}
	return ir.Loc{Line: line, Col: col}, nil
}

func convertTypeDecl(o object) (*ir.TypeDecl, error) {
	id, err := o.int("id")
	if err != nil {
		return nil, err
	}
	name, err := convertName(o)
	if err != nil {
		return nil, err
	}
	span, err := convertSpan(o, "span")
	if err != nil {
		return nil, err
	}
	return &ir.TypeDecl{ID: ir.TypeDeclID(id), Name: name, Span: span}, nil
}

func convertTraitDecl(o object) (*ir.TraitDecl, error) {
	id, err := o.int("id")
	if err != nil {
		return nil, err
	}
	name, err := convertName(o)
	if err != nil {
		return nil, err
	}
	return &ir.TraitDecl{ID: ir.TraitDeclID(id), Name: name}, nil
}

func convertImpl(o object) (*ir.TraitImpl, error) {
	id, err := o.int("id")
	if err != nil {
		return nil, err
	}
	name, err := convertName(o)
	if err != nil {
		return nil, err
	}
	trait, err := o.obj("trait")
	if err != nil {
		return nil, err
	}
	traitID, err := trait.int("trait_id")
	if err != nil {
		return nil, fmt.Errorf("trait: %w", err)
	}
	generics, err := convertGenerics(trait, "generics")
	if err != nil {
		return nil, fmt.Errorf("trait: %w", err)
	}
	return &ir.TraitImpl{ID: ir.TraitImplID(id), Name: name, Trait: ir.TraitDeclID(traitID), Generics: generics}, nil
}

// convertFunction returns the function and the id of its body, or -1 if it has none
func convertFunction(raw any) (*ir.FunctionDecl, int, error) {
	o, err := asObject(raw)
	if err != nil {
		return nil, -1, err
	}
	id, err := o.int("id")
	if err != nil {
		return nil, -1, err
	}
	name, err := convertName(o)
	if err != nil {
		return nil, -1, err
	}
	span, err := convertSpan(o, "span")
	if err != nil {
		return nil, -1, err
	}
	bodyID, err := o.optInt("body", -1)
	if err != nil {
		return nil, -1, err
	}
	return &ir.FunctionDecl{ID: ir.FunDeclID(id), Name: name, Span: span}, bodyID, nil
}

type bodyEntry struct {
	id   int
	body *ir.Body
}

func convertBody(o object) (bodyEntry, error) {
	id, err := o.int("id")
	if err != nil {
		return bodyEntry{}, err
	}
	blocks, err := convertList(o, "blocks", convertBlock)
	if err != nil {
		return bodyEntry{}, fmt.Errorf("body %d: %w", id, err)
	}
	return bodyEntry{id: id, body: &ir.Body{Blocks: blocks}}, nil
}

func convertBlock(o object) (ir.BasicBlock, error) {
	statements, err := convertList(o, "statements", convertStatement)
	if err != nil {
		return ir.BasicBlock{}, err
	}
	t, err := o.obj("terminator")
	if err != nil {
		return ir.BasicBlock{}, err
	}
	term, err := convertTerminator(t)
	if err != nil {
		return ir.BasicBlock{}, fmt.Errorf("terminator: %w", err)
	}
	return ir.BasicBlock{Statements: statements, Terminator: term}, nil
}

func convertStatement(o object) (ir.Statement, error) {
	kind, err := o.str("kind")
	if err != nil {
		return ir.Statement{}, err
	}
	span, err := convertSpan(o, "span")
	if err != nil {
		return ir.Statement{}, err
	}
	if kind != "call" {
		return ir.Statement{Kind: ir.StatementOther, Span: span}, nil
	}
	c, err := o.obj("call")
	if err != nil {
		return ir.Statement{}, err
	}
	call, err := convertCall(c)
	if err != nil {
		return ir.Statement{}, fmt.Errorf("call: %w", err)
	}
	return ir.Statement{Kind: ir.StatementCall, Call: call, Span: span}, nil
}

func convertTerminator(o object) (ir.Terminator, error) {
	kind, err := o.str("kind")
	if err != nil {
		return ir.Terminator{}, err
	}
	span, err := convertSpan(o, "span")
	if err != nil {
		return ir.Terminator{}, err
	}
	t := ir.Terminator{Target: ir.NoBlock, OnUnwind: ir.NoBlock, Span: span}
	switch kind {
	case "goto":
		t.Kind = ir.TerminatorGoto
		t.Target, err = o.int("target")
	case "switch":
		t.Kind = ir.TerminatorSwitch
		t.Targets, err = convertEach(o, "targets", toInt)
	case "return":
		t.Kind = ir.TerminatorReturn
	case "abort":
		t.Kind = ir.TerminatorAbort
	case "call":
		t.Kind = ir.TerminatorCall
		if t.Target, err = o.optInt("target", ir.NoBlock); err != nil {
			return t, err
		}
		if t.OnUnwind, err = o.optInt("on_unwind", ir.NoBlock); err != nil {
			return t, err
		}
		var c object
		if c, err = o.obj("call"); err != nil {
			return t, err
		}
		t.Call, err = convertCall(c)
	default:
		t.Kind = ir.TerminatorUnknown
	}
	return t, err
}

func convertCall(o object) (*ir.Call, error) {
	target, err := o.obj("target")
	if err != nil {
		return nil, err
	}
	kind, err := target.str("kind")
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	call := &ir.Call{}
	switch kind {
	case "direct":
		call.Target.Kind = ir.DirectCall
		fun, err := target.int("fun")
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		call.Target.Fun = ir.FunDeclID(fun)
	case "trait":
		call.Target.Kind = ir.TraitCall
		tr, err := target.obj("trait_ref")
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		ref, err := convertTraitRef(tr)
		if err != nil {
			return nil, fmt.Errorf("target: trait_ref: %w", err)
		}
		call.Target.TraitRef = &ref
		if call.Target.Method, err = target.optStr("method"); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
	case "builtin":
		call.Target.Kind = ir.BuiltinCall
		if call.Target.Builtin, err = target.optStr("name"); err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
	case "indirect":
		call.Target.Kind = ir.IndirectCall
	default:
		return nil, fmt.Errorf("target: unknown call target kind %q", kind)
	}
	if call.Target.Generics, err = convertGenerics(target, "generics"); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	call.Args, err = convertList(o, "args", convertOperand)
	if err != nil {
		return nil, err
	}
	return call, nil
}

func convertOperand(o object) (ir.Operand, error) {
	kind, err := o.str("kind")
	if err != nil {
		return ir.Operand{}, err
	}
	switch kind {
	case "copy":
		return ir.Operand{Kind: ir.OperandCopy}, nil
	case "move":
		return ir.Operand{Kind: ir.OperandMove}, nil
	case "const":
		c := &ir.Constant{Kind: ir.ConstantOther}
		if o.has("value") {
			v, err := o.obj("value")
			if err != nil {
				return ir.Operand{}, err
			}
			vk, err := v.optStr("kind")
			if err != nil {
				return ir.Operand{}, fmt.Errorf("value: %w", err)
			}
			switch vk {
			case "usize", "int":
				c.Kind = ir.ConstantUsize
				if vk == "int" {
					c.Kind = ir.ConstantInt
				}
				if c.Value, err = v.uint64("value"); err != nil {
					// negative or non-integer values are kept as opaque constants
					c.Kind = ir.ConstantOther
					c.Value = 0
				}
			}
		}
		return ir.Operand{Kind: ir.OperandConst, Const: c}, nil
	default:
		return ir.Operand{}, fmt.Errorf("unknown operand kind %q", kind)
	}
}

func convertGenerics(o object, key string) (ir.GenericArgs, error) {
	if !o.has(key) {
		return ir.GenericArgs{}, nil
	}
	g, err := o.obj(key)
	if err != nil {
		return ir.GenericArgs{}, err
	}
	types, err := convertEach(g, "types", convertTy)
	if err != nil {
		return ir.GenericArgs{}, fmt.Errorf("%s: %w", key, err)
	}
	refs, err := convertList(g, "trait_refs", convertTraitRef)
	if err != nil {
		return ir.GenericArgs{}, fmt.Errorf("%s: %w", key, err)
	}
	if len(refs) == 0 {
		refs = nil
	}
	return ir.GenericArgs{Types: types, TraitRefs: refs}, nil
}

var traitRefKinds = map[string]ir.TraitRefKind{
	"impl":    ir.TraitRefImpl,
	"clause":  ir.TraitRefClause,
	"self":    ir.TraitRefSelf,
	"dyn":     ir.TraitRefDyn,
	"builtin": ir.TraitRefBuiltin,
}

func convertTraitRef(o object) (ir.TraitRef, error) {
	kind, err := o.str("kind")
	if err != nil {
		return ir.TraitRef{}, err
	}
	k, ok := traitRefKinds[kind]
	if !ok {
		k = ir.TraitRefUnknown
	}
	trait, err := o.optInt("trait_id", 0)
	if err != nil {
		return ir.TraitRef{}, err
	}
	ref := ir.TraitRef{Kind: k, Trait: ir.TraitDeclID(trait)}
	if k == ir.TraitRefImpl {
		impl, err := o.int("impl")
		if err != nil {
			return ir.TraitRef{}, err
		}
		ref.Impl = ir.TraitImplID(impl)
		if ref.Generics, err = convertGenerics(o, "generics"); err != nil {
			return ir.TraitRef{}, err
		}
	}
	return ref, nil
}

func convertTy(v any) (ir.Ty, error) {
	o, err := asObject(v)
	if err != nil {
		return nil, err
	}
	kind, err := o.str("kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "adt":
		id, err := o.int("id")
		if err != nil {
			return nil, err
		}
		g, err := convertGenerics(o, "generics")
		if err != nil {
			return nil, err
		}
		return &ir.AdtTy{ID: ir.TypeDeclID(id), Generics: g}, nil
	case "tuple":
		elems, err := convertEach(o, "elems", convertTy)
		if err != nil {
			return nil, err
		}
		return &ir.TupleTy{Elems: elems}, nil
	case "builtin":
		name, err := o.str("name")
		if err != nil {
			return nil, err
		}
		g, err := convertGenerics(o, "generics")
		if err != nil {
			return nil, err
		}
		return &ir.BuiltinTy{Name: name, Generics: g}, nil
	case "var":
		idx, err := o.optInt("index", 0)
		if err != nil {
			return nil, err
		}
		return &ir.TypeVarTy{Index: idx}, nil
	case "literal":
		name, err := o.str("name")
		if err != nil {
			return nil, err
		}
		return &ir.LiteralTy{Name: name}, nil
	case "never":
		return &ir.NeverTy{}, nil
	case "ref", "ptr":
		mutable, err := o.bool("mutable")
		if err != nil {
			return nil, err
		}
		e, err := o.obj("elem")
		if err != nil {
			return nil, err
		}
		elem, err := convertTy(map[string]any(e))
		if err != nil {
			return nil, fmt.Errorf("elem: %w", err)
		}
		if kind == "ptr" {
			return &ir.RawPtrTy{Mutable: mutable, Elem: elem}, nil
		}
		rk := ir.Shared
		if mutable {
			rk = ir.Mut
		}
		return &ir.RefTy{Kind: rk, Elem: elem}, nil
	case "trait_type":
		item, err := o.optStr("item")
		if err != nil {
			return nil, err
		}
		t := &ir.TraitTypeTy{Item: item}
		if o.has("trait_ref") {
			tr, err := o.obj("trait_ref")
			if err != nil {
				return nil, err
			}
			ref, err := convertTraitRef(tr)
			if err != nil {
				return nil, fmt.Errorf("trait_ref: %w", err)
			}
			t.TraitRef = &ref
		}
		return t, nil
	case "dyn":
		trait, err := o.optInt("trait_id", 0)
		if err != nil {
			return nil, err
		}
		return &ir.DynTraitTy{Trait: ir.TraitDeclID(trait)}, nil
	case "arrow":
		inputs, err := convertEach(o, "inputs", convertTy)
		if err != nil {
			return nil, err
		}
		t := &ir.ArrowTy{Inputs: inputs}
		if o.has("output") {
			if t.Output, err = convertTy(o["output"]); err != nil {
				return nil, fmt.Errorf("output: %w", err)
			}
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", kind)
	}
}
