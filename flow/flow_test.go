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

package flow_test

import (
	"testing"

	"github.com/cxcheck/cxcheck/flow"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/analysistest"
)

func run(t *testing.T) (*flow.Program, *analysistest.Result) {
	t.Helper()
	testdata := analysistest.TestData()
	results := analysistest.Run(t, testdata, flow.Analyzer, "cxtest/trycatch")
	require.Len(t, results, 1)
	res := results[0].Result.(*analysishelper.Result[*flow.Program])
	require.NoError(t, res.Err)
	return res.Res, results[0]
}

func TestAnalyzer_HandledCallLeavesNothingEscaping(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("Handled")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Empty(t, r.Escaping)
	require.Equal(t, 1, r.HandledTypes.Len())
}

func TestAnalyzer_UnhandledCallEscapes(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("Unhandled")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Len(t, r.Escaping, 1)
	require.Equal(t, "NotFoundError", r.Escaping[0].Type.String())
}

func TestAnalyzer_RedundantTypedCatchDetected(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("RedundantTypedCatch")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Len(t, r.Redundant, 1)
	require.Equal(t, flow.RedundantTypedCatch, r.Redundant[0].Kind)
}

func TestAnalyzer_TypedCatchAfterCatchAnyDetected(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("CatchAnyNotLast")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Len(t, r.Redundant, 1)
	require.Equal(t, flow.RedundantCatch, r.Redundant[0].Kind)
}

func TestAnalyzer_UnreachableThrowNotEscaping(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("UnreachableThrow")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Empty(t, r.Escaping, "a throw site dead code past an unconditional return must not be reported as escaping")
}

func TestAnalyzer_EmptyCatchAllCaughtSetDetected(t *testing.T) {
	t.Parallel()

	prog, result := run(t)
	obj := result.Pass.Pkg.Scope().Lookup("EmptyCatchAllCaughtSet")
	require.NotNil(t, obj)

	r := prog.Result(obj)
	require.Len(t, r.Redundant, 1)
	require.Equal(t, flow.RedundantCatchAll, r.Redundant[0].Kind)
}
