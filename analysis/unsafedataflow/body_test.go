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
	"bytes"
	"testing"

	"github.com/awslabs/unsafeflow/analysis/config"
	"github.com/awslabs/unsafeflow/analysis/ir"
	"github.com/awslabs/unsafeflow/analysis/progctx"
	"github.com/awslabs/unsafeflow/analysis/report"
	"github.com/awslabs/unsafeflow/internal/graphutil"
)

// Callee declarations of the test programs
const (
	fRead ir.FunDeclID = iota + 1
	fWrite
	fSetLen
	fFromRawParts
	fTransmute
	fDropInPlace
	fHelper
	fCopy
	fDiscover
	fAsRef
)

const (
	copyTrait  ir.TraitDeclID = 100
	pointType  ir.TypeDeclID  = 50
	bufferType ir.TypeDeclID  = 51
)

var (
	u8    = &ir.LiteralTy{Name: "u8"}
	point = &ir.AdtTy{ID: pointType}
	buf   = &ir.AdtTy{ID: bufferType}
	tVar  = &ir.TypeVarTy{Index: 0}
)

func callees() []*ir.FunctionDecl {
	return []*ir.FunctionDecl{
		{ID: fRead, Name: ir.NameOf("core", "ptr", "read")},
		{ID: fWrite, Name: ir.NameOf("core", "ptr", "write")},
		{ID: fSetLen, Name: ir.NameOf("alloc", "vec", "<Vec<T, A>>", "set_len")},
		{ID: fFromRawParts, Name: ir.NameOf("alloc", "vec", "<Vec<T>>", "from_raw_parts")},
		{ID: fTransmute, Name: ir.NameOf("core", "intrinsics", "", "transmute")},
		{ID: fDropInPlace, Name: ir.NameOf("core", "ptr", "drop_in_place")},
		{ID: fHelper, Name: ir.NameOf("mycrate", "helper")},
		{ID: fCopy, Name: ir.NameOf("core", "intrinsics", "copy_nonoverlapping")},
		{ID: fDiscover, Name: ir.NameOf("rudra_paths_discovery", "PathsDiscovery", "discover")},
		{ID: fAsRef, Name: ir.NameOf("core", "ptr", "non_null", "<NonNull<T>>", "as_ref")},
	}
}

// newProgram returns a program with the test callees, a copyable Point type and a non-copyable Buffer type, and
// the functions funcs.
func newProgram(funcs ...*ir.FunctionDecl) *ir.Program {
	files := []ir.File{{ID: 0, Name: "src/lib.rs"}, {ID: 1, Name: "src/other.rs"}}
	types := []*ir.TypeDecl{
		{ID: pointType, Name: ir.NameOf("mycrate", "Point")},
		{ID: bufferType, Name: ir.NameOf("mycrate", "Buffer")},
	}
	traits := []*ir.TraitDecl{{ID: copyTrait, Name: ir.NameOf("core", "marker", "Copy")}}
	impls := []*ir.TraitImpl{{ID: 1, Trait: copyTrait, Generics: tyArgs(point)}}
	return ir.NewProgram(files, append(callees(), funcs...), types, traits, impls)
}

func span(line int) ir.Span {
	return ir.Span{File: 0, Begin: ir.Loc{Line: line, Col: 4}, End: ir.Loc{Line: line, Col: 20}}
}

func tyArgs(tys ...ir.Ty) ir.GenericArgs {
	return ir.GenericArgs{Types: tys}
}

// unresolved returns generic arguments with a trait obligation satisfied by a where-clause
func unresolved(tys ...ir.Ty) ir.GenericArgs {
	return ir.GenericArgs{Types: tys, TraitRefs: []ir.TraitRef{{Kind: ir.TraitRefClause, Trait: 7}}}
}

func usize(v uint64) ir.Operand {
	return ir.Operand{Kind: ir.OperandConst, Const: &ir.Constant{Kind: ir.ConstantUsize, Value: v}}
}

func direct(line int, fun ir.FunDeclID, g ir.GenericArgs, args ...ir.Operand) ir.Statement {
	return ir.Statement{
		Kind: ir.StatementCall,
		Call: &ir.Call{Target: ir.CallTarget{Kind: ir.DirectCall, Fun: fun, Generics: g}, Args: args},
		Span: span(line),
	}
}

func traitCall(line int, ref *ir.TraitRef, g ir.GenericArgs) ir.Statement {
	return ir.Statement{
		Kind: ir.StatementCall,
		Call: &ir.Call{Target: ir.CallTarget{Kind: ir.TraitCall, TraitRef: ref, Method: "next", Generics: g}},
		Span: span(line),
	}
}

func block(term ir.Terminator, statements ...ir.Statement) ir.BasicBlock {
	return ir.BasicBlock{Statements: statements, Terminator: term}
}

func jump(target int) ir.Terminator {
	return ir.Terminator{Kind: ir.TerminatorGoto, Target: target, OnUnwind: ir.NoBlock}
}

func ret() ir.Terminator {
	return ir.Terminator{Kind: ir.TerminatorReturn, Target: ir.NoBlock, OnUnwind: ir.NoBlock}
}

func function(id ir.FunDeclID, name string, blocks ...ir.BasicBlock) *ir.FunctionDecl {
	return &ir.FunctionDecl{
		ID:   id,
		Name: ir.NameOf("mycrate", name),
		Span: ir.Span{File: 0, Begin: ir.Loc{Line: 1, Col: 0}, End: ir.Loc{Line: 40, Col: 1}},
		Body: &ir.Body{Blocks: blocks},
	}
}

func testLogger(buf *bytes.Buffer) *config.LogGroup {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.TraceLevel)
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(buf)
	logger.SetAllFlags(0)
	return logger
}

// analyze runs the analysis on f in a program made of the test callees and f
func analyze(t *testing.T, f *ir.FunctionDecl) (*Status, string) {
	t.Helper()
	ctx, err := progctx.Build(newProgram(f))
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	status, ok := AnalyzeBody(ctx, testLogger(&logs), f, nil)
	if !ok {
		t.Fatalf("%s should have been analyzed", f.Name)
	}
	return status, logs.String()
}

func TestReadReachesSink(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, fRead, tyArgs(buf))),
		block(ret(), direct(3, fHelper, unresolved(tVar))),
	)
	status, _ := analyze(t, f)
	if status.Flag != ReadFlow || status.Flag.ReportLevel() != report.Warning {
		t.Errorf("expected ReadFlow, got %s", status.Flag)
	}
	if len(status.StrongBypasses) != 1 || status.StrongBypasses[0].Begin.Line != 2 {
		t.Errorf("expected one strong bypass at line 2, got %v", status.StrongBypasses)
	}
	if len(status.UnresolvedSinks) != 1 || status.UnresolvedSinks[0].Begin.Line != 3 {
		t.Errorf("expected one sink at line 3, got %v", status.UnresolvedSinks)
	}
}

func TestSourceAfterSink(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, fHelper, unresolved())),
		block(ret(), direct(3, fRead, tyArgs(buf))),
	)
	status, _ := analyze(t, f)
	if !status.Flag.IsEmpty() {
		t.Errorf("a bypass after the last sink should not be reported, got %s", status.Flag)
	}
	if len(status.StrongBypasses) != 1 || len(status.UnresolvedSinks) != 1 {
		t.Errorf("sources and sinks should be recorded even when nothing is reported")
	}
}

func TestSourceAndSinkInSameBlock(t *testing.T) {
	f := function(20, "f",
		block(ret(), direct(2, fHelper, unresolved()), direct(3, fWrite, tyArgs(buf))),
	)
	status, _ := analyze(t, f)
	if status.Flag != WriteFlow {
		t.Errorf("expected WriteFlow, got %s", status.Flag)
	}
	if len(status.WeakBypasses) != 1 {
		t.Errorf("expected one weak bypass, got %v", status.WeakBypasses)
	}
}

func TestNoSink(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, fRead, tyArgs(buf))),
		block(ret(), direct(3, fHelper, tyArgs(u8))),
	)
	status, _ := analyze(t, f)
	if !status.Flag.IsEmpty() || len(status.UnresolvedSinks) != 0 {
		t.Errorf("calls with resolved generics are not sinks, got %s", status.Flag)
	}
}

func TestCopyableExclusions(t *testing.T) {
	cases := []struct {
		name     string
		call     ir.Statement
		expected BehaviorFlag
	}{
		{"read u8", direct(2, fRead, tyArgs(u8)), 0},
		{"read copyable struct", direct(2, fRead, tyArgs(point)), 0},
		{"read shared reference", direct(2, fRead, tyArgs(&ir.RefTy{Kind: ir.Shared, Elem: buf})), 0},
		{"read tuple", direct(2, fRead, tyArgs(&ir.TupleTy{Elems: []ir.Ty{u8, buf}})), ReadFlow},
		{"read struct", direct(2, fRead, tyArgs(buf)), ReadFlow},
		{"read type variable", direct(2, fRead, tyArgs(tVar)), ReadFlow},
		{"read without type argument", direct(2, fRead, ir.GenericArgs{}), ReadFlow},
		{"write u8", direct(2, fWrite, tyArgs(u8)), 0},
		{"write struct", direct(2, fWrite, tyArgs(buf)), WriteFlow},
		// the exclusion only applies to raw reads and writes
		{"copy u8", direct(2, fCopy, tyArgs(u8)), CopyFlow},
		{"transmute u8", direct(2, fTransmute, tyArgs(u8, u8)), Transmute},
		{"nonnull as_ref", direct(2, fAsRef, tyArgs(u8)), PtrAsRef},
	}
	for _, c := range cases {
		f := function(20, "f",
			block(jump(1), c.call),
			block(ret(), direct(3, fHelper, unresolved())),
		)
		status, _ := analyze(t, f)
		if status.Flag != c.expected {
			t.Errorf("%s: expected %s, got %s", c.name, c.expected, status.Flag)
		}
	}
}

func TestSetLen(t *testing.T) {
	for _, c := range []struct {
		args     []ir.Operand
		expected BehaviorFlag
	}{
		{[]ir.Operand{{Kind: ir.OperandMove}, usize(0)}, 0},
		{[]ir.Operand{{Kind: ir.OperandMove}, usize(5)}, VecSetLen},
		{[]ir.Operand{{Kind: ir.OperandMove}, {Kind: ir.OperandCopy}}, VecSetLen},
		{[]ir.Operand{{Kind: ir.OperandMove},
			{Kind: ir.OperandConst, Const: &ir.Constant{Kind: ir.ConstantInt, Value: 0}}}, VecSetLen},
	} {
		f := function(20, "f",
			block(jump(1), direct(2, fSetLen, tyArgs(buf), c.args...)),
			block(ret(), direct(3, fHelper, unresolved())),
		)
		status, _ := analyze(t, f)
		if status.Flag != c.expected {
			t.Errorf("set_len%v: expected %s, got %s", c.args, c.expected, status.Flag)
		}
		if !c.expected.IsEmpty() && status.Flag.ReportLevel() != report.Error {
			t.Errorf("vector length overrides should be errors")
		}
	}
}

func TestGenericFunctionIsSink(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, fFromRawParts, tyArgs(buf))),
		block(jump(2), direct(3, fTransmute, tyArgs(buf, u8))),
		block(ret(), direct(4, fDropInPlace, tyArgs(buf))),
	)
	status, _ := analyze(t, f)
	if status.Flag != VecFromRaw|Transmute {
		t.Errorf("expected VecFromRaw|Transmute, got %s", status.Flag)
	}
	if status.Flag.ReportLevel() != report.Error {
		t.Errorf("expected an error, got %s", status.Flag.ReportLevel())
	}
	if len(status.UnresolvedSinks) != 1 || status.UnresolvedSinks[0].Begin.Line != 4 {
		t.Errorf("drop_in_place should be a sink, got %v", status.UnresolvedSinks)
	}
}

func TestTraitCalls(t *testing.T) {
	resolved := &ir.TraitRef{Kind: ir.TraitRefImpl, Trait: 7, Impl: 3, Generics: tyArgs(u8)}
	unresolvedImpl := &ir.TraitRef{Kind: ir.TraitRefImpl, Trait: 7, Impl: 3, Generics: unresolved()}
	cases := []struct {
		name   string
		call   ir.Statement
		isSink bool
	}{
		{"resolved", traitCall(3, resolved, tyArgs(u8)), false},
		{"impl with unresolved generics", traitCall(3, unresolvedImpl, tyArgs(u8)), true},
		{"resolved with unresolved method generics", traitCall(3, resolved, unresolved()), true},
		{"where-clause", traitCall(3, &ir.TraitRef{Kind: ir.TraitRefClause, Trait: 7}, tyArgs()), true},
		{"trait object", traitCall(3, &ir.TraitRef{Kind: ir.TraitRefDyn, Trait: 7}, tyArgs()), true},
		{"builtin", traitCall(3, &ir.TraitRef{Kind: ir.TraitRefBuiltin, Trait: 7}, tyArgs()), true},
		{"missing reference", traitCall(3, nil, tyArgs()), true},
	}
	for _, c := range cases {
		f := function(20, "f",
			block(jump(1), direct(2, fRead, tyArgs(buf))),
			block(ret(), c.call),
		)
		status, _ := analyze(t, f)
		if got := len(status.UnresolvedSinks) == 1; got != c.isSink {
			t.Errorf("%s: expected sink %v, got %v", c.name, c.isSink, got)
		}
		if got := status.Flag == ReadFlow; got != c.isSink {
			t.Errorf("%s: unexpected flag %s", c.name, status.Flag)
		}
	}
}

func TestOtherCallsIgnored(t *testing.T) {
	builtin := ir.Statement{
		Kind: ir.StatementCall,
		Call: &ir.Call{Target: ir.CallTarget{Kind: ir.BuiltinCall, Builtin: "box_new", Generics: unresolved()}},
		Span: span(3),
	}
	indirect := ir.Statement{
		Kind: ir.StatementCall,
		Call: &ir.Call{Target: ir.CallTarget{Kind: ir.IndirectCall, Generics: unresolved()}},
		Span: span(4),
	}
	f := function(20, "f",
		block(ret(), direct(2, fRead, tyArgs(buf)), builtin, indirect, ir.Statement{Kind: ir.StatementOther}),
	)
	status, _ := analyze(t, f)
	if !status.Flag.IsEmpty() || len(status.UnresolvedSinks) != 0 {
		t.Errorf("builtin and indirect calls are not classified, got %s", status.Flag)
	}
}

func TestUnknownCallee(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, 999, unresolved()), direct(3, fRead, tyArgs(buf))),
		block(ret(), direct(4, fHelper, unresolved())),
	)
	status, logs := analyze(t, f)
	if status.Flag != ReadFlow {
		t.Errorf("the analysis should continue after an unknown callee, got %s", status.Flag)
	}
	if !bytes.Contains([]byte(logs), []byte("could not find callee 999")) {
		t.Errorf("expected a warning for the unknown callee:\n%s", logs)
	}
}

func TestCallTerminator(t *testing.T) {
	read := direct(2, fRead, tyArgs(buf))
	f := function(20, "f",
		ir.BasicBlock{Terminator: ir.Terminator{
			Kind: ir.TerminatorCall, Call: read.Call, Span: read.Span, Target: 1, OnUnwind: 2,
		}},
		block(ret()),
		block(ret(), direct(5, fHelper, unresolved())),
	)
	status, _ := analyze(t, f)
	if status.Flag != ReadFlow {
		t.Errorf("expected the read in the call terminator to reach the cleanup sink, got %s", status.Flag)
	}
}

func TestLoop(t *testing.T) {
	f := function(20, "f",
		block(jump(1)),
		block(ir.Terminator{Kind: ir.TerminatorSwitch, Targets: []int{2, 3}}, direct(3, fHelper, unresolved())),
		block(jump(1), direct(4, fWrite, tyArgs(buf))),
		block(ret()),
	)
	status, _ := analyze(t, f)
	if status.Flag != WriteFlow {
		t.Errorf("a bypass in a loop reaches the sink at the loop head, got %s", status.Flag)
	}
}

func TestUnsupportedTerminator(t *testing.T) {
	f := function(20, "f",
		block(ir.Terminator{Kind: ir.TerminatorUnknown}, direct(2, fRead, tyArgs(buf))),
		block(ret(), direct(3, fHelper, unresolved())),
	)
	status, logs := analyze(t, f)
	if !status.Flag.IsEmpty() {
		t.Errorf("unsupported terminators have no successors, got %s", status.Flag)
	}
	if !bytes.Contains([]byte(logs), []byte("unsupported terminators")) {
		t.Errorf("expected a debug message for the unsupported terminator:\n%s", logs)
	}
}

func TestNoBody(t *testing.T) {
	ctx, err := progctx.Build(newProgram())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	if _, ok := AnalyzeBody(ctx, testLogger(&logs), &ir.FunctionDecl{Name: ir.NameOf("f")}, nil); ok {
		t.Errorf("functions without body should not be analyzed")
	}
}

func TestGraphCallback(t *testing.T) {
	f := function(20, "f",
		block(jump(1), direct(2, fRead, tyArgs(buf))),
		block(ret(), direct(3, fHelper, unresolved())),
	)
	ctx, err := progctx.Build(newProgram(f))
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	var graph *graphutil.TaintGraph[BehaviorFlag]
	AnalyzeBody(ctx, testLogger(&logs), f, func(g *graphutil.TaintGraph[BehaviorFlag]) { graph = g })
	if graph == nil {
		t.Fatalf("the graph callback should be called")
	}
	if flag, ok := graph.Source(0); !ok || flag != ReadFlow {
		t.Errorf("block 0 should be a ReadFlow source")
	}
	if !graph.IsSink(1) || graph.IsSink(0) {
		t.Errorf("block 1 should be the only sink")
	}
}
