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
Unsafeflow finds functions in which a value created by bypassing the ownership and lifetime rules of the analyzed
language can reach a call the tool cannot resolve statically. The input is a program produced by the frontend, in
JSON or MessagePack (see package loader).

Usage:

	unsafeflow check [flags] program.json
	unsafeflow discover program.json
	unsafeflow convert program.json program.msgpack
	unsafeflow stats program.json

The flags of check are:

	--config path     a path to the configuration file
	--level level     the minimum level of the reported diagnostics (info, warning or error)
	--format format   the output format (text, json or yaml)
	--dot-dir dir     write the graph of each reported function in dir
	--verbose         set the log level to debug
	--color mode      color the text output (auto, always or never)

Check exits with status 1 when the program cannot be loaded or analyzed.
*/
package main
