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

package flow

import (
	"go/ast"
	"go/types"

	"github.com/cxcheck/cxcheck/linqmodel"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util/typeshelper"
)

// linqDeferred is the deferred-exception set attached to a LINQ-style pipeline value: every
// exception type a composed predicate/selector lambda may throw, unioned across the whole chain,
// plus whether any stage of the chain came from the Queryable catalogue (for independent
// disableLinqQueryableSupport gating at the materialization point).
type linqDeferred struct {
	escaping  []Occurrence
	queryable bool
}

// linqClassify resolves call's callee against linqmodel.Classify, folding disableLinqQueryableSupport
// into the result so a Queryable-catalogue call is reported as NotOperator when that support is off.
func (v *visitor) linqClassify(call *ast.CallExpr) (linqmodel.Kind, string, *types.Func) {
	fn, ok := v.calleeFunc(call)
	if !ok || fn == nil || fn.Pkg() == nil {
		return linqmodel.NotOperator, "", nil
	}
	pkgPath := fn.Pkg().Path()
	kind := linqmodel.Classify(v.conf, pkgPath, fn.Name())
	if kind != linqmodel.NotOperator && linqmodel.IsQueryable(pkgPath) && v.conf.DisableLinqQueryableSupport {
		return linqmodel.NotOperator, pkgPath, fn
	}
	if kind != linqmodel.NotOperator && !linqmodel.IsBuiltinOperator(pkgPath) && !firstParamIsIterator(fn) {
		// A conf.LinqOperators registration that happens to name a function whose first parameter
		// isn't shaped like a Go 1.23 iterator is almost certainly a misconfiguration rather than a
		// real LINQ-style operator; fall back to treating the call as ordinary rather than tracking
		// a deferred set that will never materialize correctly.
		return linqmodel.NotOperator, pkgPath, fn
	}
	return kind, pkgPath, fn
}

// firstParamIsIterator reports whether fn's first parameter is shaped like a Go 1.23 iterator
// function (iter.Seq/iter.Seq2's underlying func(func(...) bool) form), the shape every built-in
// and custom-registered LINQ-style operator takes its source sequence as.
func firstParamIsIterator(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() == 0 {
		return false
	}
	return typeshelper.IsIterType(sig.Params().At(0).Type())
}

// deferredFor resolves expr's deferred-exception set: a bare identifier already bound by
// bindDeferred, or a fresh Deferred-classified call composed inline (recognizing the idiomatic
// chained-call shape `Select(Where(seq, pred), proj)` the same way flow traces the Await
// one-liner). A Queryable/Future stored across a wider dataflow than this is not traced
// (documented simplification, see DESIGN.md).
func (b *memberBuilder) deferredFor(v *visitor, expr ast.Expr) (linqDeferred, bool) {
	if v.conf.DisableLinqSupport {
		return linqDeferred{}, false
	}
	switch e := expr.(type) {
	case *ast.Ident:
		info, ok := b.deferredVals[v.pass.TypesInfo.Uses[e]]
		return info, ok
	case *ast.CallExpr:
		kind, pkgPath, _ := v.linqClassify(e)
		if kind != linqmodel.Deferred {
			return linqDeferred{}, false
		}
		var base linqDeferred
		if len(e.Args) > 0 {
			base, _ = b.deferredFor(v, e.Args[0])
		}
		var lambdaEscaping []Occurrence
		if lit := lastFuncLitArg(e.Args); lit != nil {
			res := v.analyzeMember(lit.Body)
			v.flowProg.setLit(lit, res)
			lambdaEscaping = res.Escaping
			if !v.conf.DisableLinqImplicitlyDeclaredExceptions {
				for _, occ := range res.Escaping {
					b.implicitDeclared = append(b.implicitDeclared, Occurrence{Type: occ.Type, Pos: lit, ThrownHere: occ.ThrownHere})
				}
			}
		}
		merged := make([]Occurrence, 0, len(base.escaping)+len(lambdaEscaping))
		merged = append(merged, base.escaping...)
		merged = append(merged, lambdaEscaping...)
		return linqDeferred{escaping: merged, queryable: base.queryable || linqmodel.IsQueryable(pkgPath)}, true
	default:
		return linqDeferred{}, false
	}
}

func lastFuncLitArg(args []ast.Expr) *ast.FuncLit {
	for i := len(args) - 1; i >= 0; i-- {
		if lit, ok := args[i].(*ast.FuncLit); ok {
			return lit
		}
	}
	return nil
}

// bindDeferred records the deferred-exception set of every recognized deferred-query RHS of an
// assignment, keyed by the LHS identifier's object, so a materialization point or boundary crossing
// reached later in the same frame can resolve it by name.
func (b *memberBuilder) bindDeferred(v *visitor, assign *ast.AssignStmt) {
	if v.conf.DisableLinqSupport {
		return
	}
	for i, rhs := range assign.Rhs {
		if i >= len(assign.Lhs) {
			break
		}
		info, ok := b.deferredFor(v, rhs)
		if !ok {
			continue
		}
		ident, ok := assign.Lhs[i].(*ast.Ident)
		if !ok || ident.Name == "_" {
			continue
		}
		obj := v.pass.TypesInfo.Defs[ident]
		if obj == nil {
			obj = v.pass.TypesInfo.Uses[ident]
		}
		if obj == nil {
			continue
		}
		if b.deferredVals == nil {
			b.deferredVals = make(map[types.Object]linqDeferred)
		}
		b.deferredVals[obj] = info
	}
}

// linqMaterializeOccurrences recognizes a Materializer-classified call, unioning its source's
// deferred-exception set into an ordinary may-throw set anchored at the call, plus any
// materializer-specific built-in exception (First's ErrSequenceEmpty).
func (v *visitor) linqMaterializeOccurrences(b *memberBuilder, call *ast.CallExpr) []Occurrence {
	if v.conf.DisableLinqSupport || len(call.Args) == 0 {
		return nil
	}
	kind, _, fn := v.linqClassify(call)
	if kind != linqmodel.Materializer {
		return nil
	}
	var out []Occurrence
	if info, ok := b.deferredFor(v, call.Args[0]); ok {
		for _, occ := range info.escaping {
			out = append(out, Occurrence{Type: occ.Type, Pos: call, ThrownHere: false})
		}
	}
	if linqmodel.NormalizeAsync(fn.Name()) == "First" {
		if t, ok := resolveErrSequenceEmpty(fn); ok {
			out = append(out, Occurrence{Type: t, Pos: call, ThrownHere: true})
		}
	}
	return out
}

func resolveErrSequenceEmpty(fn *types.Func) (model.Type, bool) {
	if fn.Pkg() == nil {
		return model.Type{}, false
	}
	obj := fn.Pkg().Scope().Lookup("ErrSequenceEmpty")
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return model.Type{}, false
	}
	return model.NewType(tn.Type()), true
}

// checkArgBoundary flags every already-bound deferred identifier passed as a plain argument to a
// call that is neither a deferred composer nor a materializer - the value crosses a method
// boundary the analyzer cannot track further (spec.md §4.4 "enumerable-as-argument boundary").
func (b *memberBuilder) checkArgBoundary(v *visitor, call *ast.CallExpr) {
	if v.conf.DisableLinqSupport || len(b.deferredVals) == 0 {
		return
	}
	if kind, _, _ := v.linqClassify(call); kind != linqmodel.NotOperator {
		return
	}
	for _, arg := range call.Args {
		ident, ok := arg.(*ast.Ident)
		if !ok {
			continue
		}
		info, ok := b.deferredVals[v.pass.TypesInfo.Uses[ident]]
		if !ok {
			continue
		}
		b.recordBoundary(info, arg)
	}
}

// checkReturnBoundary flags a deferred identifier returned directly from the member, the other
// boundary shape spec.md §4.4 names.
func (b *memberBuilder) checkReturnBoundary(v *visitor, ret *ast.ReturnStmt) {
	if v.conf.DisableLinqSupport || len(b.deferredVals) == 0 {
		return
	}
	for _, res := range ret.Results {
		ident, ok := res.(*ast.Ident)
		if !ok {
			continue
		}
		info, ok := b.deferredVals[v.pass.TypesInfo.Uses[ident]]
		if !ok {
			continue
		}
		b.recordBoundary(info, res)
	}
}

func (b *memberBuilder) recordBoundary(info linqDeferred, pos ast.Node) {
	seen := make(map[model.TypeID]bool, len(info.escaping))
	for _, occ := range info.escaping {
		if seen[occ.Type.ID()] {
			continue
		}
		seen[occ.Type.ID()] = true
		b.deferredBoundaries = append(b.deferredBoundaries, DeferredBoundary{Type: occ.Type, Pos: pos})
	}
}
