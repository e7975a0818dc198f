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

package excset_test

import (
	"go/types"
	"testing"

	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
	"github.com/stretchr/testify/require"
)

func namedType(pkg, name string) model.Type {
	p := types.NewPackage("example.com/"+pkg, pkg)
	obj := types.NewTypeName(0, p, name, nil)
	named := types.NewNamed(obj, types.Universe.Lookup("error").Type().Underlying(), nil)
	return model.NewType(named)
}

func TestSet_UnionIntersectDifference(t *testing.T) {
	t.Parallel()

	a := excset.New(namedType("io", "IOError"), namedType("io", "FormatError"))
	b := excset.New(namedType("io", "FormatError"), namedType("io", "OverflowError"))

	union := a.Union(b)
	require.Equal(t, 3, union.Len())

	inter := a.Intersect(b)
	require.Equal(t, 1, inter.Len())
	require.True(t, inter.Contains(namedType("io", "FormatError").ID()))

	diff := a.Difference(b)
	require.Equal(t, 1, diff.Len())
	require.True(t, diff.Contains(namedType("io", "IOError").ID()))
}

func TestSet_IsEmpty(t *testing.T) {
	t.Parallel()

	var s excset.Set
	require.True(t, s.IsEmpty())

	s.Add(namedType("io", "IOError"))
	require.False(t, s.IsEmpty())
}

func TestSet_RemoveSubtypesOf(t *testing.T) {
	t.Parallel()

	base := namedType("io", "IOError")
	derived := namedType("io", "FileNotFoundError")
	other := namedType("io", "FormatError")

	s := excset.New(base, derived, other)
	isSubtype := func(sub, super model.Type) bool {
		return sub.ID() == derived.ID() && super.ID() == base.ID()
	}

	out := s.RemoveSubtypesOf(base, isSubtype)
	require.Equal(t, 2, out.Len())
	require.False(t, out.Contains(derived.ID()))
	require.True(t, out.Contains(base.ID()))
	require.True(t, out.Contains(other.ID()))
}

func TestSet_ElementsDeterministicOrder(t *testing.T) {
	t.Parallel()

	s := excset.New(namedType("io", "ZError"), namedType("io", "AError"), namedType("io", "MError"))
	first := s.Elements()
	for i := 0; i < 5; i++ {
		again := s.Elements()
		require.Equal(t, first, again)
	}
}
