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

// Package flow implements Handler Resolution & Flow (spec.md §4.5): for every member, walk its
// body recognizing the cxexc.Try/Catch/CatchAny/Finally call chain as a try/catch/finally
// construct, resolve which of a throw's types each catch clause actually handles (in call-chain
// order, the same left-to-right ordering `.Catch().Catch().CatchAny()` encodes for a C# catch
// clause list), and report the set of exception types that escape the member uncaught.
package flow

import (
	"go/ast"
	"go/types"

	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
)

// Occurrence is one exception type observed escaping a member, with the position that should
// anchor a diagnostic about it and whether it was actually thrown there (a panic/cast/null-
// coalescing throw) vs. merely propagated in from an invoked or awaited callee's contract - the
// distinction checker needs for InfoMode's Throw/Propagation split and the base-exception-thrown
// check.
type Occurrence struct {
	Type       model.Type
	Pos        ast.Node
	ThrownHere bool
}

// MemberResult is everything checker needs about one member's body: the set of exception types
// that escape it uncaught, the handled (caught-somewhere) set for redundancy checks, and any
// redundancy diagnostics flow itself is positioned to detect (a catch clause whose type is
// already subsumed by an earlier one in the same chain).
type MemberResult struct {
	Escaping     []Occurrence
	HandledTypes excset.Set
	Redundant    []RedundantCatch
	// ImplicitDeclared holds, for every undeclared LINQ predicate/selector lambda that throws, the
	// type it throws and the lambda's parameter-list position (spec.md §4.4 "implicitly declared
	// exceptions").
	ImplicitDeclared []Occurrence
	// DeferredBoundaries holds, per exception type, the position where a deferred-query value
	// crossed a method or return boundary the analyzer cannot track further (spec.md §4.4
	// "enumerable-as-argument boundary").
	DeferredBoundaries []DeferredBoundary
}

// DeferredBoundary is one exception type carried by a deferred-query value across a method or
// return boundary (spec.md §4.4).
type DeferredBoundary struct {
	Type model.Type
	Pos  ast.Node
}

// ThrownSet returns the union of every type ever inferred in this member's body - escaped or
// caught - the "actually thrown" set checker's REDUNDANT_DECLARATION check compares a declared
// type against.
func (r *MemberResult) ThrownSet() excset.Set {
	s := r.HandledTypes.Clone()
	for _, occ := range r.Escaping {
		s.Add(occ.Type)
	}
	return s
}

// RedundantCatch records a catch clause that can never run because an earlier clause in the same
// chain already subsumes it (spec.md §4.6 "redundant catch" family).
type RedundantCatch struct {
	Kind        RedundantKind
	Pos         ast.Node
	Type        model.Type
	ShadowedBy  model.Type
}

// RedundantKind distinguishes the redundancy shapes flow can detect, some structurally (from the
// catch-clause list alone) and some only with control-flow reachability data (package
// flow/reach) available.
type RedundantKind int

const (
	// RedundantTypedCatch is a typed catch whose type is already subsumed by an earlier typed
	// catch in the same chain. Structural; detected regardless of reachability settings.
	RedundantTypedCatch RedundantKind = iota
	// RedundantCatchAll is a CatchAny clause following an earlier CatchAny in the chain (structural),
	// or - when control-flow analysis is enabled and legacy redundancy mode is not - a CatchAny
	// clause whose caught set is empty because no reachable throw site ever reaches it (spec.md
	// §4.5: "control-flow analysis strengthens this").
	RedundantCatchAll
	// RedundantCatch is a typed catch appearing after a CatchAny in the same chain.
	RedundantCatch
)

// Program is the package-wide lookup from member object to its MemberResult. Lambdas have no
// types.Object of their own, so their results are keyed separately by the *ast.FuncLit node that
// defines them.
type Program struct {
	results map[types.Object]*MemberResult
	lits    map[*ast.FuncLit]*MemberResult
}

func newProgram() *Program {
	return &Program{
		results: make(map[types.Object]*MemberResult),
		lits:    make(map[*ast.FuncLit]*MemberResult),
	}
}

// Result returns the resolved MemberResult for obj, or an empty one if flow analysis never ran
// for it (e.g., a lambda with no statically traceable binding).
func (p *Program) Result(obj types.Object) *MemberResult {
	if p == nil {
		return &MemberResult{}
	}
	if r, ok := p.results[obj]; ok {
		return r
	}
	return &MemberResult{}
}

// ResultForLit returns the resolved MemberResult for a func-literal member frame.
func (p *Program) ResultForLit(lit *ast.FuncLit) *MemberResult {
	if p == nil {
		return &MemberResult{}
	}
	if r, ok := p.lits[lit]; ok {
		return r
	}
	return &MemberResult{}
}

func (p *Program) set(obj types.Object, r *MemberResult) {
	p.results[obj] = r
}

func (p *Program) setLit(lit *ast.FuncLit, r *MemberResult) {
	p.lits[lit] = r
}
