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
	"reflect"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/contract"
	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/flow/infer"
	"github.com/cxcheck/cxcheck/flow/reach"
	"github.com/cxcheck/cxcheck/lattice"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"golang.org/x/tools/go/analysis"
)

// Analyzer resolves Handler Resolution & Flow for every member declared in the package.
var Analyzer = &analysis.Analyzer{
	Name:       "cxcheck_flow",
	Doc:        "Resolves the escaping exception set for every member body by walking its try/catch/finally construct.",
	Run:        analysishelper.WrapRun(run),
	Requires:   []*analysis.Analyzer{config.Analyzer, contract.Analyzer},
	ResultType: reflect.TypeOf((*analysishelper.Result[*Program])(nil)),
}

func run(pass *analysis.Pass) (*Program, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	prog := pass.ResultOf[contract.Analyzer].(*analysishelper.Result[*contract.Result]).Res.Program

	v := &visitor{
		pass:     pass,
		conf:     conf,
		contract: prog,
		infer:    infer.Context{Pass: pass, Conf: conf, Prog: prog},
		flowProg: newProgram(),
	}
	for _, file := range pass.Files {
		if !conf.IsFileInScope(file) {
			continue
		}
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			obj, _ := pass.TypesInfo.Defs[fd.Name].(*types.Func)
			if obj == nil {
				continue
			}
			v.flowProg.set(obj, v.analyzeMember(fd.Body))
		}
	}
	return v.flowProg, nil
}

// visitor drives the body walk for one package pass.
type visitor struct {
	pass     *analysis.Pass
	conf     *config.Config
	contract *contract.Program
	infer    infer.Context
	flowProg *Program
}

// memberBuilder accumulates the escaping occurrences, handled-type set, and structural
// redundancy findings for a single member frame (spec.md §4.5 "member frame").
type memberBuilder struct {
	escaping           []Occurrence
	handled            excset.Set
	redundant          []RedundantCatch
	implicitDeclared   []Occurrence
	deferredBoundaries []DeferredBoundary
	deferredVals       map[types.Object]linqDeferred
	// reach is this frame's control-flow reachability graph (spec.md §4.5's optional
	// control-flow analysis), built fresh for every frame entered by walk. Nil when
	// config.DisableControlFlowAnalysis is set, in which case Graph.Live always reports true.
	reach *reach.Graph
}

// analyzeMember resolves one member's MemberResult from its function body.
func (v *visitor) analyzeMember(body *ast.BlockStmt) *MemberResult {
	b := &memberBuilder{}
	b.walk(v, body)
	return &MemberResult{
		Escaping:           b.escaping,
		HandledTypes:       b.handled,
		Redundant:          b.redundant,
		ImplicitDeclared:   b.implicitDeclared,
		DeferredBoundaries: b.deferredBoundaries,
	}
}

// walk inspects node for throwing constructs in the current frame, recognizing the
// cxexc.Try/Catch/CatchAny/Finally call chain specially and treating any other bare func literal
// as the start of its own, independently-analyzed frame (spec.md §4.4 "local function/lambda
// definition"), and tracking LINQ deferred-query values bound by assignment for materialization
// and boundary-crossing detection (spec.md §4.4).
func (b *memberBuilder) walk(v *visitor, node ast.Node) {
	if block, ok := node.(*ast.BlockStmt); ok && !v.conf.DisableControlFlowAnalysis {
		b.reach = reach.Build(block)
	}
	ast.Inspect(node, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FuncLit:
			v.flowProg.setLit(x, v.analyzeMember(x.Body))
			return false
		case *ast.AssignStmt:
			if !b.reach.Live(x) {
				return false
			}
			b.bindDeferred(v, x)
			return true
		case *ast.ReturnStmt:
			if !b.reach.Live(x) {
				return false
			}
			b.checkReturnBoundary(v, x)
			return true
		case *ast.CallExpr:
			if !b.reach.Live(x) {
				return false
			}
			if chain := v.parseTryChain(x); chain != nil {
				b.resolveTryChain(v, chain)
				return false
			}
			if occs := v.linqMaterializeOccurrences(b, x); occs != nil {
				b.escaping = append(b.escaping, occs...)
				return true
			}
			for _, occ := range v.exprOccurrences(x) {
				b.escaping = append(b.escaping, occ)
			}
			b.checkArgBoundary(v, x)
			return true
		default:
			return true
		}
	})
}

// exprOccurrences runs every per-construct inference rule infer.Context exposes against a single
// call expression, returning whichever (at most one family) rule matches.
func (v *visitor) exprOccurrences(call *ast.CallExpr) []Occurrence {
	if occs := v.infer.Panic(call); occs != nil {
		return toFlowOccurrences(occs, true)
	}
	if occs := v.infer.Cast(call); occs != nil {
		return toFlowOccurrences(occs, true)
	}
	if occs := v.infer.NullCoalescingThrow(call); occs != nil {
		return toFlowOccurrences(occs, true)
	}
	if occs := v.awaitOccurrences(call); occs != nil {
		return toFlowOccurrences(occs, false)
	}
	if occs := v.infer.Invocation(call); occs != nil {
		return toFlowOccurrences(occs, false)
	}
	return nil
}

// toFlowOccurrences tags each inferred occurrence with whether it is actually thrown at this site
// (panic, cast, null-coalescing throw) vs. merely propagated in from a callee's declared contract
// (invocation, await) - the distinction checker needs for the ThrowException/base-exception-thrown
// check and for the legacy InfoMode Throw/Propagation split.
func toFlowOccurrences(occs []infer.Occurrence, thrownHere bool) []Occurrence {
	out := make([]Occurrence, 0, len(occs))
	for _, o := range occs {
		out = append(out, Occurrence{Type: o.Type, Pos: o.Pos, ThrownHere: thrownHere})
	}
	return out
}

// awaitOccurrences recognizes the idiomatic `cxasync.Go(func() (T, error) { ... }).Await()`
// one-liner: the awaited future's escaping set is the lambda body's own escaping set, analyzed as
// a fresh frame. A Future stored in a variable and awaited at a distant call site is not
// statically traced (documented simplification: see DESIGN.md).
func (v *visitor) awaitOccurrences(call *ast.CallExpr) []infer.Occurrence {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Await" {
		return nil
	}
	fn, ok := v.pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn == nil || !isCxAsyncFuture(fn) {
		return nil
	}
	goCall, ok := sel.X.(*ast.CallExpr)
	if !ok {
		return nil
	}
	goFn, ok := v.calleeFunc(goCall)
	if !ok || goFn == nil || goFn.Name() != "Go" || !isCxAsyncPkg(goFn.Pkg()) || len(goCall.Args) != 1 {
		return nil
	}
	lit, ok := goCall.Args[0].(*ast.FuncLit)
	if !ok {
		return nil
	}
	inner := &memberBuilder{}
	inner.walk(v, lit.Body)
	v.flowProg.setLit(lit, &MemberResult{
		Escaping:           inner.escaping,
		HandledTypes:       inner.handled,
		Redundant:          inner.redundant,
		ImplicitDeclared:   inner.implicitDeclared,
		DeferredBoundaries: inner.deferredBoundaries,
	})

	out := make([]infer.Occurrence, 0, len(inner.escaping))
	for _, occ := range inner.escaping {
		out = append(out, infer.Occurrence{Type: occ.Type, Pos: call})
	}
	return out
}

func (v *visitor) calleeFunc(call *ast.CallExpr) (*types.Func, bool) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		fn, ok := v.pass.TypesInfo.Uses[fun].(*types.Func)
		return fn, ok
	case *ast.SelectorExpr:
		fn, ok := v.pass.TypesInfo.Uses[fun.Sel].(*types.Func)
		return fn, ok
	default:
		return nil, false
	}
}

func isCxAsyncPkg(pkg *types.Package) bool { return pkg != nil && hasSuffix(pkg.Path(), "/cxasync") }

func isCxAsyncFuture(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return false
	}
	recv := util.UnwrapPtr(sig.Recv().Type())
	named, ok := recv.(*types.Named)
	return ok && named.Obj().Name() == "Future" && isCxAsyncPkg(named.Obj().Pkg())
}

func hasSuffix(path, suffix string) bool {
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}

// tryChain is the parsed shape of a recognized cxexc.Try/Catch/CatchAny/Finally call chain.
type tryChain struct {
	tryLit     *ast.FuncLit
	catches    []catchClause
	finallyLit *ast.FuncLit
	outer      ast.Node
}

// catchClause is one resolved Catch/CatchAny call in the chain, in call-chain (attempt) order.
type catchClause struct {
	isCatchAny bool
	paramType  model.Type
	handler    *ast.FuncLit
	pos        ast.Node
}

// parseTryChain recognizes call as (a suffix of) the cxexc construct chain, returning nil if it
// is not one.
func (v *visitor) parseTryChain(call *ast.CallExpr) *tryChain {
	if sel, ok := call.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "Finally" {
		fn, ok := v.pass.TypesInfo.Uses[sel.Sel].(*types.Func)
		if !ok || fn == nil || !isCxExcResultMethod(fn) {
			return nil
		}
		inner, ok := sel.X.(*ast.CallExpr)
		if !ok {
			return nil
		}
		chain := v.parseCatchOrTry(inner)
		if chain == nil {
			return nil
		}
		chain.finallyLit = funcLitArg(call.Args, 0)
		chain.outer = call
		return chain
	}
	return v.parseCatchOrTry(call)
}

func (v *visitor) parseCatchOrTry(call *ast.CallExpr) *tryChain {
	fn, ok := v.calleeFunc(call)
	if !ok || fn == nil || !isCxExcPkg(fn.Pkg()) {
		return nil
	}
	switch fn.Name() {
	case "Try":
		lit := funcLitArg(call.Args, 0)
		if lit == nil {
			return nil
		}
		return &tryChain{tryLit: lit, outer: call}
	case "Catch", "CatchAny":
		if len(call.Args) != 2 {
			return nil
		}
		inner, ok := call.Args[0].(*ast.CallExpr)
		if !ok {
			return nil
		}
		chain := v.parseCatchOrTry(inner)
		if chain == nil {
			return nil
		}
		handler := funcLitArg(call.Args, 1)
		if handler == nil {
			return chain
		}
		cl := catchClause{isCatchAny: fn.Name() == "CatchAny", handler: handler, pos: call}
		if !cl.isCatchAny {
			if t, ok := v.resolveHandlerType(handler); ok {
				cl.paramType = model.NewType(t)
			}
		}
		chain.catches = append(chain.catches, cl)
		chain.outer = call
		return chain
	default:
		return nil
	}
}

func funcLitArg(args []ast.Expr, i int) *ast.FuncLit {
	if i >= len(args) {
		return nil
	}
	lit, _ := args[i].(*ast.FuncLit)
	return lit
}

// resolveHandlerType returns the error-implementing type of a Catch handler's single parameter -
// the T in `func(e *SomeError)`, which drives Go's generic type inference for Catch[T].
func (v *visitor) resolveHandlerType(lit *ast.FuncLit) (types.Type, bool) {
	params := lit.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) > 1 {
		return nil, false
	}
	t := v.pass.TypesInfo.TypeOf(params.List[0].Type)
	if t == nil || !util.IsErrorType(t) {
		return nil, false
	}
	// Normalize to the named type, matching contract.resolveTypeByName's canonical (non-pointer)
	// representation of a `//throws:` pragma reference - a handler's parameter is conventionally
	// *T for a pointer-receiver error type, but the contract it satisfies is named T.
	return util.UnwrapPtr(t), true
}

func isCxExcPkg(pkg *types.Package) bool { return pkg != nil && hasSuffix(pkg.Path(), "/cxexc") }

func isCxExcResultMethod(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return false
	}
	recv := util.UnwrapPtr(sig.Recv().Type())
	named, ok := recv.(*types.Named)
	return ok && named.Obj().Name() == "Result" && isCxExcPkg(named.Obj().Pkg())
}

// resolveTryChain resolves which occurrences inside the try body (and each handler, and the
// finally block) escape the construct, and records structural redundancy findings.
func (b *memberBuilder) resolveTryChain(v *visitor, chain *tryChain) {
	inner := &memberBuilder{}
	inner.walk(v, chain.tryLit.Body)
	b.adoptLinqFindings(inner)

	caughtByClause := make([]bool, len(chain.catches))
	for _, occ := range inner.escaping {
		caught := false
		for i, cl := range chain.catches {
			if lattice.Match(occ.Type, cl.paramType, cl.isCatchAny) {
				caught = true
				caughtByClause[i] = true
				b.handled.Add(occ.Type)
				break
			}
		}
		if !caught {
			b.escaping = append(b.escaping, occ)
		}
	}

	// Reachability-refined empty-caught-set detection (spec.md §4.5's "control-flow analysis
	// strengthens this" remark on the catch-all case): only meaningful with control-flow
	// analysis on, per spec.md's own note that legacy mode "ignores reachability" and control-
	// flow-off mode "cannot prove unreachability" at all. With CFA enabled, inner.escaping has
	// already had unreachable throw sites dropped by walk's reach filtering, so a catch-all that
	// still caught nothing here genuinely never receives a reachable type.
	if !v.conf.DisableControlFlowAnalysis && !v.conf.EnableLegacyRedundancyChecks {
		for i, cl := range chain.catches {
			if cl.isCatchAny && !caughtByClause[i] {
				b.redundant = append(b.redundant, RedundantCatch{Kind: RedundantCatchAll, Pos: cl.pos})
			}
		}
	}

	for _, cl := range chain.catches {
		handlerBuilder := &memberBuilder{}
		handlerBuilder.walk(v, cl.handler.Body)
		b.escaping = append(b.escaping, handlerBuilder.escaping...)
		b.adoptLinqFindings(handlerBuilder)
	}

	b.redundant = append(b.redundant, structuralRedundancy(chain.catches)...)

	if chain.finallyLit != nil {
		finallyBuilder := &memberBuilder{}
		finallyBuilder.walk(v, chain.finallyLit.Body)
		// finally-block independence: its exceptions escape regardless of the try/catch outcome.
		b.escaping = append(b.escaping, finallyBuilder.escaping...)
		b.adoptLinqFindings(finallyBuilder)
	}
}

// adoptLinqFindings carries a nested frame's LINQ implicit-declared and boundary-crossing
// findings up into b - unlike Escaping, these are not subject to catch matching, so they are
// unconditionally adopted regardless of how the nested frame's exceptions were handled.
func (b *memberBuilder) adoptLinqFindings(nested *memberBuilder) {
	b.implicitDeclared = append(b.implicitDeclared, nested.implicitDeclared...)
	b.deferredBoundaries = append(b.deferredBoundaries, nested.deferredBoundaries...)
}

// structuralRedundancy finds, within a single chain and without reachability analysis, a typed
// catch shadowed by an earlier typed catch, a CatchAny following an earlier CatchAny, and a
// typed catch following a CatchAny (spec.md §4.6 redundant-catch family).
func structuralRedundancy(catches []catchClause) []RedundantCatch {
	var out []RedundantCatch
	seen := excset.Set{}
	seenCatchAny := false
	for _, cl := range catches {
		if seenCatchAny {
			if cl.isCatchAny {
				out = append(out, RedundantCatch{Kind: RedundantCatchAll, Pos: cl.pos})
			} else {
				out = append(out, RedundantCatch{Kind: RedundantCatch, Pos: cl.pos, Type: cl.paramType})
			}
			continue
		}
		if cl.isCatchAny {
			seenCatchAny = true
			continue
		}
		if !cl.paramType.IsValid() {
			continue
		}
		for _, prior := range seen.Elements() {
			if lattice.IsSubtype(cl.paramType, prior) {
				out = append(out, RedundantCatch{Kind: RedundantTypedCatch, Pos: cl.pos, Type: cl.paramType, ShadowedBy: prior})
				break
			}
		}
		seen.Add(cl.paramType)
	}
	return out
}
