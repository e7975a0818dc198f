//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package model supplies small concrete value types for the vocabulary this engine is built
// around: exception types (model.Type) and member symbols (model.Member). They are used where a
// stable cache key or display string is needed; the other packages also use go/types and go/ast
// directly.
package model

import (
	"fmt"
	"go/token"
	"go/types"
)

// Type wraps a go/types.Type that implements the builtin error interface - the host's rendition
// of an "exception type" (spec.md §3 "Exception Type").
type Type struct {
	t types.Type
}

// NewType wraps t as a model.Type, normalizing a pointer type *T to its element type T so that
// every exception type has one canonical non-pointer representation. Callers are expected to have
// already checked util.IsErrorType.
func NewType(t types.Type) Type {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	return Type{t: t}
}

// Underlying returns the wrapped go/types.Type.
func (t Type) Underlying() types.Type {
	return t.t
}

// IsValid reports whether the Type wraps a non-nil underlying type.
func (t Type) IsValid() bool {
	return t.t != nil
}

// ID returns the type's fully qualified name (TypeID), used as the map/cache key throughout the
// engine exactly as nilaway keys its caches off types.Object identity.
func (t Type) ID() TypeID {
	if t.t == nil {
		return ""
	}
	return TypeID(t.t.String())
}

// String implements fmt.Stringer, returning a short display name (no package qualification) for
// diagnostic message arguments.
func (t Type) String() string {
	if t.t == nil {
		return "<invalid>"
	}
	if named, ok := t.t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return t.t.String()
}

// TypeID is the fully qualified name of an exception type (`pkg/path.Name`), used as the
// canonical map/set key for classification, excset membership, and contract comparison.
type TypeID string

// Member is the host's rendition of a "member symbol" (spec.md §3): a method, constructor,
// function, property accessor, or lambda/local function, identified by its *types.Func object
// together with the *ast.FuncDecl/*ast.FuncLit that supplies its doc comment and body.
type Member struct {
	// Func is the resolved type-checker object for the member, nil for a FuncLit that has no
	// separate declaration (lambdas are identified purely by their *ast.FuncLit).
	Func *types.Func
	// Name is a human-readable, partially-qualified name for diagnostic messages
	// (e.g., "Parser.Parse" or "func literal at demo.go:12:5").
	Name string
	// Pos is the position of the member's signature.
	Pos token.Pos
}

// String implements fmt.Stringer for debug printing and test failure messages.
func (m Member) String() string {
	return fmt.Sprintf("Member(%s)", m.Name)
}
