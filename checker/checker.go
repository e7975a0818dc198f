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

// Package checker implements the ten contract checks of spec.md §4.6: for every member, compare
// its resolved Contract (from the contract package) against its actual exception flow (from the
// flow package) and its inheritance relationships, producing the diagnostic.Diagnostic values
// accumulate.Analyzer hands to diagnostic.Engine.
package checker

import (
	"fmt"
	"go/types"
	"reflect"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/contract"
	"github.com/cxcheck/cxcheck/diagnostic"
	"github.com/cxcheck/cxcheck/flow"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/analysis"
)

// Analyzer runs every contract check over the package's resolved Contract and flow Programs.
var Analyzer = &analysis.Analyzer{
	Name:       "cxcheck_checker",
	Doc:        "Checks every member's declared exception contract against its actual exception flow and inheritance relationships.",
	Run:        analysishelper.WrapRun(run),
	Requires:   []*analysis.Analyzer{config.Analyzer, contract.Analyzer, flow.Analyzer},
	ResultType: reflect.TypeOf((*analysishelper.Result[[]diagnostic.Diagnostic])(nil)),
}

var rootException = model.NewType(util.ErrorType)

func run(pass *analysis.Pass) ([]diagnostic.Diagnostic, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	contractRes := pass.ResultOf[contract.Analyzer].(*analysishelper.Result[*contract.Result]).Res
	flowProg := pass.ResultOf[flow.Analyzer].(*analysishelper.Result[*flow.Program]).Res
	prog := contractRes.Program

	c := &checks{pass: pass, conf: conf, contract: prog, flow: flowProg}

	var members []memberEntry
	prog.ForEach(func(obj types.Object, ct *contract.Contract) {
		if fn, ok := obj.(*types.Func); ok {
			members = append(members, memberEntry{obj: obj, fn: fn, contract: ct})
		}
	})

	// Per-member checking is embarrassingly parallel: every member's diagnostics depend only on
	// its own resolved Contract and MemberResult, never on another member's. Fan the checks out
	// across an errgroup, bounding concurrency to GOMAXPROCS and guarding the shared sink with a
	// mutex, the same shape the package-resolution fan-out in packagemanager.Manager uses for its
	// own embarrassingly parallel per-package work.
	var (
		mu    sync.Mutex
		diags []diagnostic.Diagnostic
	)
	var g errgroup.Group
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	for _, m := range members {
		m := m
		g.Go(func() (err error) {
			sem <- struct{}{}
			defer func() { <-sem }()

			// A panic in one member's checks must not take down the whole fan-out the way an
			// unrecovered panic in any other goroutine would crash the process outright;
			// analysishelper.WrapRun only guards run's own goroutine, not these.
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic checking %s: %v\n%s", util.PartiallyQualifiedFuncName(m.fn), r, debug.Stack())
				}
			}()

			d := c.checkMember(m.fn, m.contract, flowProg.Result(m.obj))

			mu.Lock()
			diags = append(diags, d...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return diags, err
	}

	for _, pos := range prog.InvalidPlacements() {
		diags = append(diags, diagnostic.Diagnostic{Kind: diagnostic.InvalidThrowsPlacement, Pos: pos, End: pos})
	}

	return diags, nil
}

type memberEntry struct {
	obj      types.Object
	fn       *types.Func
	contract *contract.Contract
}

// checkMember runs every contract check against a single member, the unit of work fanned out by
// run's errgroup.
func (c *checks) checkMember(fn *types.Func, ct *contract.Contract, result *flow.MemberResult) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	diags = append(diags, c.duplicateDeclared(fn, ct)...)
	diags = append(diags, c.baseExceptionDeclared(fn, ct)...)
	diags = append(diags, c.redundantSupertype(fn, ct)...)
	diags = append(diags, c.xmlDocNoThrows(fn, ct)...)
	diags = append(diags, c.inheritanceCompatibility(fn, ct)...)

	diags = append(diags, c.undeclaredPropagation(fn, ct, result)...)
	diags = append(diags, c.baseExceptionThrown(fn, result)...)
	diags = append(diags, c.redundantDeclaration(fn, ct, result)...)
	diags = append(diags, c.redundantCatches(fn, result)...)
	diags = append(diags, c.linqImplicitDeclared(fn, result)...)
	diags = append(diags, c.linqDeferredBoundary(fn, result)...)
	return diags
}

type checks struct {
	pass     *analysis.Pass
	conf     *config.Config
	contract *contract.Program
	flow     *flow.Program
}
