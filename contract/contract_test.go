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

package contract_test

import (
	"go/types"
	"testing"

	"github.com/cxcheck/cxcheck/contract"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer_ResolvesDeclaredTokensAndDuplicates(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	results := analysistest.Run(t, testdata, contract.Analyzer, "cxtest/declared")
	require.Len(t, results, 1)

	res := results[0].Result.(*analysishelper.Result[*contract.Result])
	require.NoError(t, res.Err)
	require.Empty(t, res.Res.Errors)

	pkg := results[0].Pass.Pkg
	obj := pkg.Scope().Lookup("DoWork")
	require.NotNil(t, obj)

	c := res.Res.Program.Contract(obj)
	require.Len(t, c.DeclaredTokens, 3)
	require.Equal(t, 2, c.DeclaredSet().Len())
	require.Len(t, c.Duplicates(), 1)
}

func TestAnalyzer_InterfaceImplementationInheritsDeclaredSet(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	results := analysistest.Run(t, testdata, contract.Analyzer, "cxtest/inherit")
	require.Len(t, results, 1)

	res := results[0].Result.(*analysishelper.Result[*contract.Result])
	require.NoError(t, res.Err)

	pkg := results[0].Pass.Pkg
	formType, ok := pkg.Scope().Lookup("Form").Type().(*types.Named)
	require.True(t, ok)

	obj, _, _ := types.LookupFieldOrMethod(formType, true, pkg, "Validate")
	require.NotNil(t, obj)

	inherited := res.Res.Program.Inherited(obj)
	require.Equal(t, 1, inherited.Len())
}

func TestAnalyzer_EmbeddedOverrideInheritsDeclaredSet(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	results := analysistest.Run(t, testdata, contract.Analyzer, "cxtest/inherit")
	require.Len(t, results, 1)

	res := results[0].Result.(*analysishelper.Result[*contract.Result])
	require.NoError(t, res.Err)

	pkg := results[0].Pass.Pkg
	derivedType, ok := pkg.Scope().Lookup("Derived").Type().(*types.Named)
	require.True(t, ok)

	obj, _, _ := types.LookupFieldOrMethod(derivedType, true, pkg, "Check")
	require.NotNil(t, obj)

	inherited := res.Res.Program.Inherited(obj)
	require.Equal(t, 1, inherited.Len())
}
