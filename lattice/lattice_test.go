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

package lattice_test

import (
	"go/types"
	"testing"

	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/lattice"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util"
	"github.com/stretchr/testify/require"
)

// mkStruct builds a named struct type, optionally embedding `embed`, approximating the
// single-inheritance exception hierarchies this engine models.
func mkStruct(name string, embed types.Type) model.Type {
	pkg := types.NewPackage("example.com/exc", "exc")
	var fields []*types.Var
	if embed != nil {
		fields = append(fields, types.NewField(0, pkg, embedName(embed), embed, true))
	}
	st := types.NewStruct(fields, nil)
	obj := types.NewTypeName(0, pkg, name, nil)
	named := types.NewNamed(obj, st, nil)
	// Every exception type implements error; attach an Error() string method so
	// types.Implements(..., error) holds true for the root-sentinel checks.
	sig := types.NewSignatureType(types.NewVar(0, pkg, "", named), nil, nil, nil,
		types.NewTuple(types.NewVar(0, pkg, "", types.Typ[types.String])), false)
	errMethod := types.NewFunc(0, pkg, "Error", sig)
	named.AddMethod(errMethod)
	return model.NewType(named)
}

func embedName(t types.Type) string {
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return "Embedded"
}

func TestIsSubtype_Reflexive(t *testing.T) {
	t.Parallel()
	base := mkStruct("BaseError", nil)
	require.True(t, lattice.IsSubtype(base, base))
}

func TestIsSubtype_Embedding(t *testing.T) {
	t.Parallel()
	base := mkStruct("IOError", nil)
	derived := mkStruct("FileNotFoundError", base.Underlying())
	require.True(t, lattice.IsSubtype(derived, base))
	require.False(t, lattice.IsSubtype(base, derived))
}

func TestIsSubtype_RootSentinelIsTop(t *testing.T) {
	t.Parallel()
	base := mkStruct("AnyError", nil)
	root := model.NewType(util.ErrorType)
	require.True(t, lattice.IsSubtype(base, root))
}

func TestMatch_CatchAll(t *testing.T) {
	t.Parallel()
	a := mkStruct("FormatError", nil)
	b := mkStruct("OverflowError", nil)
	require.True(t, lattice.Match(a, b, true))
	require.False(t, lattice.Match(a, b, false))
}

func TestCanonicalize_RemovesSubtypes(t *testing.T) {
	t.Parallel()
	base := mkStruct("IOError", nil)
	derived := mkStruct("FileNotFoundError", base.Underlying())
	other := mkStruct("FormatError", nil)

	s := excset.New(base, derived, other)
	out, removed := lattice.Canonicalize(s)

	require.Equal(t, 2, out.Len())
	require.True(t, out.Contains(base.ID()))
	require.True(t, out.Contains(other.ID()))
	require.False(t, out.Contains(derived.ID()))
	require.Len(t, removed, 1)
	require.Equal(t, derived.ID(), removed[0].ID())
}
