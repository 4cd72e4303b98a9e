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
Package loader reads programs produced by the frontend into the in-memory representation of package ir.

Two encodings of the same document are accepted: JSON, and MessagePack for large programs (files ending in .msgpack
or .mp). Both are first decoded into a generic tree, and the tree is then converted by [FromTree]. The JSON decoder
keeps its own stack, so there is no limit on the nesting depth of the input.

# Document

The document is an object with the lists files, functions, bodies, types, traits and impls. Field names are
snake_case. Every tagged union has a "kind" field.

	{
	  "files":     [{"id": 0, "name": "src/lib.rs"}],
	  "types":     [{"id": 3, "name": [{"ident": "mycrate"}, {"ident": "Buf"}], "span": SPAN}],
	  "traits":    [{"id": 1, "name": [{"ident": "core"}, {"ident": "marker"}, {"ident": "Copy"}]}],
	  "impls":     [{"id": 7, "name": NAME, "trait": {"trait_id": 1, "generics": GENERICS}}],
	  "functions": [{"id": 12, "name": NAME, "span": SPAN, "body": 4}],
	  "bodies":    [{"id": 4, "blocks": [BLOCK, ...]}]
	}

A NAME is a list of path elements, each {"ident": "read"} or {"impl": "Vec<T>"}. The "body" of a function is
optional; a body id that does not refer to a body is reported as a warning and the function is left without body.

A SPAN is {"file": 0, "begin": {"line": 1, "col": 0}, "end": {"line": 3, "col": 1}}.

A BLOCK is {"statements": [STATEMENT, ...], "terminator": TERMINATOR}. A STATEMENT is {"kind": "call", "call": CALL,
"span": SPAN}; statements of any other kind are kept without call. Terminators are:

	{"kind": "goto", "target": 1}
	{"kind": "switch", "targets": [1, 2]}
	{"kind": "return"}
	{"kind": "abort"}
	{"kind": "call", "call": CALL, "target": 2, "on_unwind": 5, "span": SPAN}

A missing target or on_unwind of a call terminator means there is no such continuation. Any other kind is kept as
an unsupported terminator without successors.

A CALL is {"target": TARGET, "args": [OPERAND, ...]} where TARGET is one of

	{"kind": "direct", "fun": 12, "generics": GENERICS}
	{"kind": "trait", "trait_ref": TRAIT_REF, "method": "next", "generics": GENERICS}
	{"kind": "builtin", "name": "box_new"}
	{"kind": "indirect"}

An OPERAND is {"kind": "copy"}, {"kind": "move"} or {"kind": "const", "value": {"kind": "usize", "value": 0}}.
Constants of kind usize and int carry their value; other constants are opaque.

GENERICS is {"types": [TY, ...], "trait_refs": [TRAIT_REF, ...]}, both lists optional. A TRAIT_REF is
{"kind": K, "trait_id": 1} where K is impl, clause, self, dyn or builtin; impl references add "impl" and "generics".

A TY is one of

	{"kind": "adt", "id": 3, "generics": GENERICS}
	{"kind": "tuple", "elems": [TY, ...]}
	{"kind": "builtin", "name": "Box", "generics": GENERICS}
	{"kind": "var", "index": 0}
	{"kind": "literal", "name": "u8"}
	{"kind": "never"}
	{"kind": "ref", "mutable": false, "elem": TY}
	{"kind": "ptr", "mutable": true, "elem": TY}
	{"kind": "trait_type", "trait_ref": TRAIT_REF, "item": "Item"}
	{"kind": "dyn", "trait_id": 2}
	{"kind": "arrow", "inputs": [TY, ...], "output": TY}
*/
package loader
