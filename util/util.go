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

// Package util implements utility functions for AST and types shared across cxcheck's
// sub-analyzers.
package util

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/util/asthelper"
	"golang.org/x/tools/go/analysis"
)

// ErrorType is the type of the builtin "error" interface - the root `Exception` sentinel that
// every exception type in an analyzed program is a subtype of.
var ErrorType = types.Universe.Lookup("error").Type()

// BuiltinLen is the builtin "len" function object.
var BuiltinLen = types.Universe.Lookup("len")

// UnwrapPtr unwraps a pointer type and returns the element type. For all other types it returns
// the type unmodified.
func UnwrapPtr(t types.Type) types.Type {
	if ptr, ok := t.(*types.Pointer); ok {
		return ptr.Elem()
	}
	return t
}

// IsErrorType returns true if `t` implements the builtin `error` interface, i.e., it is a
// candidate exception type.
func IsErrorType(t types.Type) bool {
	if t == nil {
		return false
	}
	return types.Implements(t, ErrorType.Underlying().(*types.Interface)) ||
		types.Implements(types.NewPointer(t), ErrorType.Underlying().(*types.Interface))
}

// FuncIdentFromCallExpr returns the identifier naming the function in a call expression, or nil
// for calls through an anonymous function expression.
func FuncIdentFromCallExpr(expr *ast.CallExpr) *ast.Ident {
	switch fun := expr.Fun.(type) {
	case *ast.Ident:
		return fun
	case *ast.SelectorExpr:
		return fun.Sel
	default:
		return nil
	}
}

// PartiallyQualifiedFuncName returns the name of the passed function, with the name of its
// receiver if defined (e.g., "Parser.Parse").
func PartiallyQualifiedFuncName(f *types.Func) string {
	if sig, ok := f.Type().(*types.Signature); ok && sig.Recv() != nil {
		return fmt.Sprintf("%s.%s", PortionAfterSep(UnwrapPtr(sig.Recv().Type()).String(), ".", 0), f.Name())
	}
	return f.Name()
}

// PortionAfterSep returns the suffix of the passed string `input` containing at most `occ`
// occurrences of the separator `sep`.
func PortionAfterSep(input, sep string, occ int) string {
	splits := strings.Split(input, sep)
	n := len(splits)
	if n <= occ+1 {
		return input
	}
	out := ""
	for i := n - (1 + occ); i < n; i++ {
		if len(out) > 0 {
			out += sep
		}
		out += splits[i]
	}
	return out
}

// IsSliceAppendCall checks if `node` represents the builtin `append(slice, elems...)` call - a
// call the engine never treats as throwing.
func IsSliceAppendCall(node *ast.CallExpr, pass *analysis.Pass) bool {
	return IsBuiltinCall(pass, node, "append")
}

// IsBuiltinCall reports whether call invokes the named builtin function (e.g. "panic", "append").
func IsBuiltinCall(pass *analysis.Pass, call *ast.CallExpr, name string) bool {
	ident, ok := call.Fun.(*ast.Ident)
	if !ok || ident.Name != name {
		return false
	}
	declObj := pass.TypesInfo.Uses[ident]
	return declObj != nil && declObj.Parent() == types.Universe
}

// FuncNumResults looks at a function declaration and returns the number of results of that
// function.
func FuncNumResults(decl *types.Func) int {
	return decl.Type().(*types.Signature).Results().Len()
}

// FuncIsErrReturning reports whether a function's last (and only trailing) result is of type
// `error` - the convention this engine uses to recognize a "SetX(v) error" property setter.
func FuncIsErrReturning(fdecl *types.Func) bool {
	results := fdecl.Type().(*types.Signature).Results()
	n := results.Len()
	if n == 0 {
		return false
	}
	return types.Identical(results.At(n-1).Type(), ErrorType)
}

// IsLiteral returns true if `expr` is an identifier matching one of the given literal names
// (e.g., "nil", "true", "false").
func IsLiteral(expr ast.Expr, literals ...string) bool {
	return asthelper.IsLiteral(expr, literals...)
}

// TruncatePosition truncates the prefix of the filename to keep it at the given depth
// (config.DirLevelsToPrintForTriggers).
func TruncatePosition(position token.Position) token.Position {
	position.Filename = PortionAfterSep(position.Filename, "/", config.DirLevelsToPrintForTriggers)
	return position
}

// PosToLocation converts a token.Pos to a human-readable, depth-truncated token.Position.
func PosToLocation(pos token.Pos, pass *analysis.Pass) token.Position {
	return TruncatePosition(pass.Fset.Position(pos))
}

// GetSelectorExprHeadIdent gets the head of a chained selector expression if it is an ident.
// Returns nil otherwise.
func GetSelectorExprHeadIdent(selExpr *ast.SelectorExpr) *ast.Ident {
	if ident, ok := selExpr.X.(*ast.Ident); ok {
		return ident
	}
	if x, ok := selExpr.X.(*ast.SelectorExpr); ok {
		return GetSelectorExprHeadIdent(x)
	}
	return nil
}
