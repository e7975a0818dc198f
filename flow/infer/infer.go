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

// Package infer implements the per-construct exception inference rules of spec.md §4.4: for a
// single expression, which exception types may escape it and at what anchor position. flow
// drives the traversal and owns constructs that need frame context (await, rethrow, lambda
// bodies); infer only needs the expression and the semantic model.
package infer

import (
	"go/ast"
	"go/types"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/contract"
	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
	"golang.org/x/tools/go/analysis"
)

// Occurrence is one exception type that may escape an expression, anchored at the position a
// diagnostic about it should be reported.
type Occurrence struct {
	Type model.Type
	Pos  ast.Node
}

// Context bundles the read-only state every inference rule needs.
type Context struct {
	Pass *analysis.Pass
	Conf *config.Config
	Prog *contract.Program
}

// Panic implements the throw-statement/expression rule for a call to the builtin panic: the
// may-throw set is the static type of panic's single argument, anchored at the call itself (the
// `throw` token of spec.md §4.4 has no Go equivalent other than the panic call).
func (c Context) Panic(call *ast.CallExpr) []Occurrence {
	if !util.IsBuiltinCall(c.Pass, call, "panic") || len(call.Args) != 1 {
		return nil
	}
	t := c.Pass.TypesInfo.TypeOf(call.Args[0])
	if t == nil || !util.IsErrorType(t) {
		return nil
	}
	return []Occurrence{{Type: model.NewType(t), Pos: call}}
}

// Invocation implements the invocation rule: declared(m) ∪ documented(m) (docs only if enabled),
// anchored at the call expression. Covers ordinary function/method calls, property-accessor
// calls (a Get<Field>/Set<Field> method in this host binding), and object construction (a NewXxx
// function), since all three are plain invocations of a contract.Program-resolved symbol in Go.
func (c Context) Invocation(call *ast.CallExpr) []Occurrence {
	obj := c.calleeObject(call)
	if obj == nil {
		return nil
	}
	return c.occurrencesFor(obj, call)
}

func (c Context) calleeObject(call *ast.CallExpr) types.Object {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		return c.Pass.TypesInfo.Uses[fun]
	case *ast.SelectorExpr:
		if sel, ok := c.Pass.TypesInfo.Selections[fun]; ok {
			return sel.Obj()
		}
		return c.Pass.TypesInfo.Uses[fun.Sel]
	default:
		return nil
	}
}

func (c Context) occurrencesFor(obj types.Object, anchor ast.Node) []Occurrence {
	contr := c.Prog.Contract(obj)
	set := contr.DeclaredSet()
	if !c.Conf.DisableXMLDocInterop {
		set = set.Union(contr.Documented)
	}
	return toOccurrences(set, anchor)
}

// Cast implements the cast rule. A type assertion `v.(T)` (any form other than a type switch's
// `v.(type)`, the comma-ok form included) yields cxexc's InvalidCastError; flow's walk passes
// only call expressions to Cast, so type assertions produce no occurrence in a member's flow. A
// call to cxexc.CheckedConvert, a checked type conversion that panics with InvalidCastError, also
// yields InvalidCastError; no rule yields cxexc's OverflowError. Plain Go type conversions between numeric types (`int32(x)`) are not flagged: truncation of
// floating point to integer, and the ordinary widening/narrowing conversions the Go spec defines
// as always well-defined, are not exceptional per spec.md §4.4.
func (c Context) Cast(expr ast.Expr) []Occurrence {
	switch e := expr.(type) {
	case *ast.TypeAssertExpr:
		if e.Type == nil {
			return nil // the `v.(type)` form inside a type switch, not a runtime assertion
		}
		t, ok := c.lookupCxExcType("InvalidCastError")
		if !ok {
			return nil
		}
		return []Occurrence{{Type: t, Pos: e}}
	case *ast.CallExpr:
		if !c.isCheckedConvertCall(e) {
			return nil
		}
		t, ok := c.lookupCxExcType("InvalidCastError")
		if !ok {
			return nil
		}
		return []Occurrence{{Type: t, Pos: e}}
	default:
		return nil
	}
}

func (c Context) isCheckedConvertCall(call *ast.CallExpr) bool {
	obj := c.calleeObject(call)
	fn, ok := obj.(*types.Func)
	return ok && fn != nil && fn.Name() == "CheckedConvert" && isCxExcPkg(fn.Pkg())
}

// NullCoalescingThrow implements the `a ?? throw new E(...)` rule, realized in this host binding
// as a call to cxexc.OrThrow(value, err): the error expression's static type is the may-throw
// occurrence, anchored at the call.
func (c Context) NullCoalescingThrow(call *ast.CallExpr) []Occurrence {
	obj := c.calleeObject(call)
	fn, ok := obj.(*types.Func)
	if !ok || fn == nil || fn.Name() != "OrThrow" || !isCxExcPkg(fn.Pkg()) || len(call.Args) != 2 {
		return nil
	}
	t := c.Pass.TypesInfo.TypeOf(call.Args[1])
	if t == nil || !util.IsErrorType(t) {
		return nil
	}
	return []Occurrence{{Type: model.NewType(t), Pos: call}}
}

func (c Context) lookupCxExcType(name string) (model.Type, bool) {
	for _, p := range c.Pass.Pkg.Imports() {
		if !isCxExcPkg(p) {
			continue
		}
		obj := p.Scope().Lookup(name)
		tn, ok := obj.(*types.TypeName)
		if !ok {
			continue
		}
		return model.NewType(types.NewPointer(tn.Type())), true
	}
	return model.Type{}, false
}

func isCxExcPkg(pkg *types.Package) bool {
	return pkg != nil && (pkg.Path() == config.CxCheckPkgPathPrefix+"/cxexc" || hasSuffixPath(pkg.Path(), "/cxexc"))
}

func hasSuffixPath(path, suffix string) bool {
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}

func toOccurrences(set excset.Set, anchor ast.Node) []Occurrence {
	elems := set.Elements()
	out := make([]Occurrence, 0, len(elems))
	for _, t := range elems {
		out = append(out, Occurrence{Type: t, Pos: anchor})
	}
	return out
}
