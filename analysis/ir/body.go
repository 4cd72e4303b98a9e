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

// NoBlock is the value of a block index that is absent, e.g. the cleanup block of a call that cannot unwind
const NoBlock = -1

// Body is the control-flow graph of a function. Blocks are indexed from 0, and block 0 is the entry.
type Body struct {
	Blocks []BasicBlock
}

// BasicBlock is a sequence of statements followed by one terminator
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// StatementKind is the kind of a statement. Only calls are relevant to the analyses; every other statement is
// StatementOther.
type StatementKind int

const (
	// StatementOther is any statement that is not a call
	StatementOther StatementKind = iota
	// StatementCall is a function call
	StatementCall
)

// Statement is a statement in a basic block. Call is non-nil iff Kind is StatementCall.
type Statement struct {
	Kind StatementKind
	Call *Call
	Span Span
}

// TerminatorKind is the kind of a block terminator
type TerminatorKind int

const (
	// TerminatorUnknown is a terminator form the frontend emitted but that is not modelled. It has no successors.
	TerminatorUnknown TerminatorKind = iota
	// TerminatorGoto jumps unconditionally to Target
	TerminatorGoto
	// TerminatorSwitch branches to one of Targets
	TerminatorSwitch
	// TerminatorReturn returns from the function
	TerminatorReturn
	// TerminatorAbort aborts execution (panic, unreachable)
	TerminatorAbort
	// TerminatorCall performs Call and continues in Target, or in OnUnwind when the callee unwinds
	TerminatorCall
)

func (k TerminatorKind) String() string {
	switch k {
	case TerminatorGoto:
		return "goto"
	case TerminatorSwitch:
		return "switch"
	case TerminatorReturn:
		return "return"
	case TerminatorAbort:
		return "abort"
	case TerminatorCall:
		return "call"
	default:
		return "unknown"
	}
}

// Terminator ends a basic block.
type Terminator struct {
	Kind TerminatorKind

	// Target is the successor of a goto, and the normal continuation of a call terminator (NoBlock if the call
	// diverges)
	Target int

	// Targets are the successors of a switch
	Targets []int

	// OnUnwind is the cleanup continuation of a call terminator (NoBlock if none)
	OnUnwind int

	// Call is the call performed by a call terminator
	Call *Call

	Span Span
}

// Successors returns the successor block indices of the terminator, in order. Unsupported and terminal forms have
// no successors.
func (t Terminator) Successors() []int {
	switch t.Kind {
	case TerminatorGoto:
		return []int{t.Target}
	case TerminatorSwitch:
		return t.Targets
	case TerminatorCall:
		var s []int
		if t.Target != NoBlock {
			s = append(s, t.Target)
		}
		if t.OnUnwind != NoBlock {
			s = append(s, t.OnUnwind)
		}
		return s
	default:
		return nil
	}
}

// CallTargetKind distinguishes the forms of call targets
type CallTargetKind int

const (
	// DirectCall is a call to a function declaration, Fun
	DirectCall CallTargetKind = iota
	// TraitCall is a call to the method Method of the trait reference TraitRef
	TraitCall
	// BuiltinCall is a call to a function provided by the language (e.g. box allocation)
	BuiltinCall
	// IndirectCall is a call through a function pointer or closure value
	IndirectCall
)

func (k CallTargetKind) String() string {
	switch k {
	case DirectCall:
		return "direct"
	case TraitCall:
		return "trait"
	case BuiltinCall:
		return "builtin"
	default:
		return "indirect"
	}
}

// CallTarget is the callee of a call. The resolution state is carried by the trait references in Generics and
// TraitRef.
type CallTarget struct {
	Kind     CallTargetKind
	Fun      FunDeclID
	TraitRef *TraitRef
	Method   string
	Builtin  string
	Generics GenericArgs
}

// Call is a function call with its arguments
type Call struct {
	Target CallTarget
	Args   []Operand
}

// OperandKind is the kind of operand
type OperandKind int

const (
	// OperandCopy copies a place
	OperandCopy OperandKind = iota
	// OperandMove moves out of a place
	OperandMove
	// OperandConst is a constant; Const is set
	OperandConst
)

// Operand is an argument of a call
type Operand struct {
	Kind  OperandKind
	Const *Constant
}

// ConstantKind is the kind of a constant
type ConstantKind int

const (
	// ConstantOther is any constant that is not an integer scalar
	ConstantOther ConstantKind = iota
	// ConstantUsize is a usize scalar
	ConstantUsize
	// ConstantInt is an integer scalar of any other integer type
	ConstantInt
)

// Constant is a constant operand. Value holds the integer value of scalar constants.
type Constant struct {
	Kind  ConstantKind
	Value uint64
}

// IsUsizeLiteral returns true if the operand is the usize constant v
func (o Operand) IsUsizeLiteral(v uint64) bool {
	return o.Kind == OperandConst && o.Const != nil && o.Const.Kind == ConstantUsize && o.Const.Value == v
}

// Calls iterates over all the calls of the block, statements first and then the terminator, calling f with the
// call and its span.
func (b BasicBlock) Calls(f func(call *Call, span Span)) {
	for _, st := range b.Statements {
		if st.Kind == StatementCall && st.Call != nil {
			f(st.Call, st.Span)
		}
	}
	if b.Terminator.Kind == TerminatorCall && b.Terminator.Call != nil {
		f(b.Terminator.Call, b.Terminator.Span)
	}
}
