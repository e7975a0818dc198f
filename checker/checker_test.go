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

package checker_test

import (
	"testing"

	"github.com/cxcheck/cxcheck/checker"
	"github.com/cxcheck/cxcheck/diagnostic"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/tools/go/analysis/analysistest"
)

// TestMain verifies that checker.Analyzer's errgroup-based per-member fan-out leaves no
// goroutines running past test completion, the same check nilaway's own TestMain performs on its
// parallelized inference path.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T) []diagnostic.Diagnostic {
	t.Helper()
	testdata := analysistest.TestData()
	results := analysistest.Run(t, testdata, checker.Analyzer, "cxtest/checks")
	require.Len(t, results, 1)
	res := results[0].Result.(*analysishelper.Result[[]diagnostic.Diagnostic])
	require.NoError(t, res.Err)
	return res.Res
}

func byKind(diags []diagnostic.Diagnostic, kind diagnostic.Kind) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestChecker_UndeclaredPropagationReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	unhandled := byKind(diags, diagnostic.Unhandled)
	require.Len(t, unhandled, 1)
	require.Equal(t, "NotFoundError", unhandled[0].Args[0])
	require.Equal(t, "CallsUndeclared", unhandled[0].Args[1])
}

func TestChecker_RedundantDeclarationReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	redundant := byKind(diags, diagnostic.RedundantDeclaration)
	require.NotEmpty(t, redundant)

	var found bool
	for _, d := range redundant {
		if d.Args[1] == "DeclaresButNeverThrows" {
			found = true
			require.Equal(t, "TimeoutError", d.Args[0])
		}
	}
	require.True(t, found)
}

func TestChecker_DuplicateDeclaredReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	dups := byKind(diags, diagnostic.DuplicateDeclared)
	require.Len(t, dups, 1)
	require.Equal(t, "NotFoundError", dups[0].Args[0])
}

func TestChecker_BaseExceptionDeclaredReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	declared := byKind(diags, diagnostic.DeclareException)
	require.Len(t, declared, 1)
}

func TestChecker_LinqImplicitDeclaredReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	implicit := byKind(diags, diagnostic.ImplicitDeclared)
	require.Len(t, implicit, 1)
	require.Equal(t, "ParseError", implicit[0].Args[0])
}

func TestChecker_LinqDeferredBoundaryReported(t *testing.T) {
	t.Parallel()

	diags := run(t)
	boundary := byKind(diags, diagnostic.DeferredMustBeHandled)
	require.Len(t, boundary, 1)
	require.Equal(t, "ParseError", boundary[0].Args[0])
}
