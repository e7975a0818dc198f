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

package contract

import (
	"reflect"

	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"golang.org/x/tools/go/analysis"
)

// Result is the sub-analyzer's output: the resolved Program plus any non-fatal resolution errors
// (an unresolvable `//throws:` type reference, for example) that downstream analyzers may choose
// to surface as diagnostics rather than abort on.
type Result struct {
	Program *Program
	Errors  []error
}

// Analyzer resolves every member's Contract in the package under analysis, producing a *Result
// wrapped in analysishelper.Result for panic-safety (SPEC_FULL.md §4.2).
var Analyzer = &analysis.Analyzer{
	Name:       "cxcheck_contract",
	Doc:        "Resolves the declared, documented, and inherited exception contracts for every member in the package.",
	Run:        analysishelper.WrapRun(run),
	Requires:   []*analysis.Analyzer{config.Analyzer},
	ResultType: reflect.TypeOf((*analysishelper.Result[*Result])(nil)),
}

func run(pass *analysis.Pass) (*Result, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)

	r := &resolver{
		pass: pass,
		conf: conf,
		prog: newProgram(),
	}
	errs := r.Run()

	return &Result{Program: r.prog, Errors: errs}, nil
}
