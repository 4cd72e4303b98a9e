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
	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/names"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/internal/graphutil"
)

// Status is the result of the analysis of one function body
type Status struct {
	// StrongBypasses are the spans of the calls marked as strong bypass sources
	StrongBypasses []ir.Span

	// WeakBypasses are the spans of the calls marked as weak bypass sources
	WeakBypasses []ir.Span

	// UnresolvedSinks are the spans of the calls marked as sinks
	UnresolvedSinks []ir.Span

	// Flag is the union of the bypass flags that reach some sink
	Flag BehaviorFlag
}

// bodyAnalyzer scans the calls of one function body. It is used once and discarded.
type bodyAnalyzer struct {
	ctx     *progctx.ProgramContext
	logger  *config.LogGroup
	catalog *Catalog
	fun     *ir.FunctionDecl
	taint   *graphutil.TaintGraph[BehaviorFlag]
	status  Status
}

// AnalyzeBody runs the analysis on the body of fun. It returns false if fun has no body. When graph is not nil,
// it is called with the taint graph of the function after propagation.
func AnalyzeBody(ctx *progctx.ProgramContext, logger *config.LogGroup, fun *ir.FunctionDecl,
	graph func(*graphutil.TaintGraph[BehaviorFlag])) (*Status, bool) {
	if fun.Body == nil {
		return nil, false
	}
	cfg := graphutil.NewBlockGraph(fun.Body)
	if u := cfg.Unsupported(); len(u) > 0 {
		logger.Debugf("%s: blocks %v have unsupported terminators and no successors", fun.Name, u)
	}
	if d := cfg.Dropped(); d > 0 {
		logger.Warnf("%s: ignored %d successors out of the body's range", fun.Name, d)
	}
	a := &bodyAnalyzer{
		ctx:     ctx,
		logger:  logger,
		catalog: GetCatalog(),
		fun:     fun,
		taint:   graphutil.NewTaintGraph[BehaviorFlag](cfg),
	}
	for id, block := range fun.Body.Blocks {
		block.Calls(func(call *ir.Call, span ir.Span) {
			a.visitCall(id, call, span)
		})
	}
	a.status.Flag = a.taint.Propagate()
	if graph != nil {
		graph(a.taint)
	}
	return &a.status, true
}

func (a *bodyAnalyzer) visitCall(block int, call *ir.Call, span ir.Span) {
	switch call.Target.Kind {
	case ir.DirectCall:
		a.visitDirectCall(block, call, span)
	case ir.TraitCall:
		a.visitTraitCall(block, call, span)
	default:
		a.logger.Tracef("%s: %s call in block %d not classified", a.fun.Name, call.Target.Kind, block)
	}
}

func (a *bodyAnalyzer) visitDirectCall(block int, call *ir.Call, span ir.Span) {
	callee, ok := a.ctx.Program().Function(call.Target.Fun)
	if !ok {
		a.logger.Warnf("%s: could not find callee %d in block %d", a.fun.Name, call.Target.Fun, block)
		return
	}
	name := callee.Name
	generics := call.Target.Generics
	a.logger.Tracef("%s: analyzing call to %s", a.fun.Name, name)

	if path, isStrong := a.catalog.Strong.Contains(name).Get(); isStrong {
		if a.calledOnCopyable(name, generics, a.catalog.Reads) {
			// reading a copyable value does not duplicate ownership
			return
		}
		if a.catalog.SetLen.Matches(name) && setsLenToZero(call.Args) {
			// leaking the elements is safe
			return
		}
		a.logger.Tracef("%s: strong lifetime bypass %s (block %d)", a.fun.Name, name, block)
		a.taint.MarkSource(block, a.catalog.Flags[path])
		a.status.StrongBypasses = append(a.status.StrongBypasses, span)
	} else if path, isWeak := a.catalog.Weak.Contains(name).Get(); isWeak {
		if a.calledOnCopyable(name, generics, a.catalog.Writes) {
			return
		}
		a.logger.Tracef("%s: weak lifetime bypass %s (block %d)", a.fun.Name, name, block)
		a.taint.MarkSource(block, a.catalog.Flags[path])
		a.status.WeakBypasses = append(a.status.WeakBypasses, span)
	} else if a.catalog.Generic.Contains(name).IsSome() {
		a.logger.Tracef("%s: unresolvable generic function %s (block %d)", a.fun.Name, name, block)
		a.markSink(block, span)
	} else if generics.HasUnresolved() {
		a.logger.Tracef("%s: call with unresolvable generic parts %s (block %d)", a.fun.Name, name, block)
		a.markSink(block, span)
	}
}

func (a *bodyAnalyzer) visitTraitCall(block int, call *ir.Call, span ir.Span) {
	implUnresolved := true
	if tr := call.Target.TraitRef; tr != nil && tr.Kind == ir.TraitRefImpl {
		implUnresolved = tr.Generics.HasUnresolved()
	}
	if implUnresolved || call.Target.Generics.HasUnresolved() {
		a.logger.Tracef("%s: unresolvable call to trait method %s (block %d)", a.fun.Name, call.Target.Method, block)
		a.markSink(block, span)
	}
}

func (a *bodyAnalyzer) markSink(block int, span ir.Span) {
	a.taint.MarkSink(block)
	a.status.UnresolvedSinks = append(a.status.UnresolvedSinks, span)
}

// calledOnCopyable returns true if name is in family and the first generic type argument of the call is copyable
func (a *bodyAnalyzer) calledOnCopyable(name ir.Name, generics ir.GenericArgs, family names.PathSet) bool {
	if family.Contains(name).IsNone() {
		return false
	}
	ty := generics.FirstType()
	if ty == nil {
		a.logger.Debugf("%s: call to %s has no type argument", a.fun.Name, name)
		return false
	}
	return a.ctx.IsCopyable(ty)
}

// setsLenToZero returns true if some argument is the usize literal 0
func setsLenToZero(args []ir.Operand) bool {
	for _, arg := range args {
		if arg.IsUsizeLiteral(0) {
			return true
		}
	}
	return false
}
