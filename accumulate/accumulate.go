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

// Package accumulate coordinates the final stage of the workflow: it reads the checks analyzer's
// diagnostics as a Result, folds in a CONFIG_ERROR when the settings file failed to load, and
// hands the combined list through diagnostic.Engine for deduplication, nolint suppression, and
// deterministic ordering, returning the resolved list as a Result for the top-level analyzer to
// report. This mirrors the teacher's accumulation package, which reads assertion and annotation
// Results, builds a diagnostic engine from the pass, and exports a resolved diagnostic list rather
// than reporting directly itself.
package accumulate

import (
	"go/token"
	"reflect"

	"github.com/cxcheck/cxcheck/checker"
	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/diagnostic"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"golang.org/x/tools/go/analysis"
)

const _doc = "Read the checks analyzer's diagnostics as a Result, fold in any configuration " +
	"errors, and resolve the combined list (dedup, nolint-suppression, deterministic ordering) " +
	"for the top-level analyzer to report"

// Analyzer combines the checker analyzer's diagnostics with any configuration-loading error and
// resolves the result through diagnostic.Engine.
var Analyzer = &analysis.Analyzer{
	Name:       "cxcheck_accumulate",
	Doc:        _doc,
	Run:        analysishelper.WrapRun(run),
	Requires:   []*analysis.Analyzer{config.Analyzer, checker.Analyzer, diagnostic.NoLintAnalyzer},
	ResultType: reflect.TypeOf((*analysishelper.Result[[]diagnostic.Diagnostic])(nil)),
}

func run(pass *analysis.Pass) ([]diagnostic.Diagnostic, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	checksResult := pass.ResultOf[checker.Analyzer].(*analysishelper.Result[[]diagnostic.Diagnostic])
	nolintResult := pass.ResultOf[diagnostic.NoLintAnalyzer].(*analysishelper.Result[[]diagnostic.Range])

	var diags []diagnostic.Diagnostic

	// As a last resort, surface a sub-analyzer's internal error as a diagnostic anchored at the
	// package's first file rather than dropping it, so a panic deep in contract resolution or
	// flow analysis is still visible to the user instead of silently suppressing the package.
	if checksResult.Err != nil {
		diags = append(diags, configErrorDiagnostic(pass, checksResult.Err))
	}
	if nolintResult.Err != nil {
		diags = append(diags, configErrorDiagnostic(pass, nolintResult.Err))
	}
	if conf.LoadError != nil {
		diags = append(diags, configErrorDiagnostic(pass, conf.LoadError))
	}
	diags = append(diags, checksResult.Res...)

	engine := diagnostic.NewEngine(pass, nolintResult.Res)
	return engine.Resolve(diags), nil
}

// configErrorDiagnostic anchors a CONFIG_ERROR diagnostic at the first position of the package's
// first file, since the originating error (a bad settings file, an internal panic) has no
// syntactic site of its own to report against.
func configErrorDiagnostic(pass *analysis.Pass, err error) diagnostic.Diagnostic {
	pos := token.Pos(1) // diagnostics at pos <= 0 are silently suppressed by the driver.
	if len(pass.Files) > 0 {
		pos = pass.Files[0].Package
	}
	return diagnostic.Diagnostic{
		Kind: diagnostic.ConfigError,
		Pos:  pos,
		End:  pos,
		Args: []any{err.Error()},
	}
}
