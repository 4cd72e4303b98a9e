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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// A tree is a decoded document: objects are map[string]any, arrays []any, numbers int64, uint64 or float64,
// and the other values string, bool or nil.

// frame is an object or array being decoded
type frame struct {
	obj    map[string]any
	arr    []any
	isObj  bool
	key    string
	hasKey bool
}

func (f *frame) value() any {
	if f.isObj {
		return f.obj
	}
	if f.arr == nil {
		return []any{}
	}
	return f.arr
}

// DecodeJSONTree reads one JSON value from r. The nesting depth of the value is only bounded by memory.
func DecodeJSONTree(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var stack []*frame
	var root any
	done := false

	put := func(v any) error {
		if len(stack) == 0 {
			root = v
			done = true
			return nil
		}
		top := stack[len(stack)-1]
		if top.isObj {
			if !top.hasKey {
				return errors.New("value without key in object")
			}
			top.obj[top.key] = v
			top.hasKey = false
			return nil
		}
		top.arr = append(top.arr, v)
		return nil
	}

	for !done {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				stack = append(stack, &frame{obj: map[string]any{}, isObj: true})
			case '[':
				stack = append(stack, &frame{})
			default:
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				err = put(top.value())
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].isObj && !stack[n-1].hasKey {
				stack[n-1].key = t
				stack[n-1].hasKey = true
				continue
			}
			err = put(t)
		case json.Number:
			var num any
			num, err = parseNumber(t)
			if err == nil {
				err = put(num)
			}
		default:
			// bool or nil
			err = put(t)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid json at offset %d: %w", dec.InputOffset(), err)
		}
	}
	return root, nil
}

func parseNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return u, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", n)
	}
	return f, nil
}

// object is a decoded JSON object with typed accessors. The accessors return errors naming the missing or
// mistyped field.
type object map[string]any

func asObject(v any) (object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %T", v)
	}
	return m, nil
}

func (o object) has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

func (o object) str(key string) (string, error) {
	v, ok := o[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected a string, got %T", key, v)
	}
	return s, nil
}

func (o object) optStr(key string) (string, error) {
	if !o.has(key) {
		return "", nil
	}
	return o.str(key)
}

func (o object) int(key string) (int, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	i, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return i, nil
}

func (o object) optInt(key string, def int) (int, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.int(key)
}

func (o object) uint64(key string) (uint64, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	switch n := v.(type) {
	case int64:
		if n >= 0 {
			return uint64(n), nil
		}
	case uint64:
		return n, nil
	}
	return 0, fmt.Errorf("field %q: expected an unsigned integer, got %v", key, v)
}

func (o object) bool(key string) (bool, error) {
	if !o.has(key) {
		return false, nil
	}
	b, ok := o[key].(bool)
	if !ok {
		return false, fmt.Errorf("field %q: expected a boolean, got %T", key, o[key])
	}
	return b, nil
}

// list returns the array in field key, or nil if the field is absent
func (o object) list(key string) ([]any, error) {
	if !o.has(key) {
		return nil, nil
	}
	l, ok := o[key].([]any)
	if !ok {
		return nil, fmt.Errorf("field %q: expected an array, got %T", key, o[key])
	}
	return l, nil
}

func (o object) obj(key string) (object, error) {
	if !o.has(key) {
		return nil, fmt.Errorf("missing field %q", key)
	}
	m, err := asObject(o[key])
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	return m, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int64:
		if n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	case uint64:
		if n <= math.MaxInt {
			return int(n), nil
		}
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt && n <= math.MaxInt {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("expected an integer, got %v", v)
}
