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
	"testing"

	"github.com/cxcheck/cxcheck/contract"
	"github.com/stretchr/testify/require"
)

func TestRouteDoc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		text          string
		hasGet        bool
		hasSet        bool
		accessorCount int
		want          contract.Accessor
	}{
		{"setting keyword", "Thrown when setting a negative value.", true, true, 2, contract.AccessorSetter},
		{"getting keyword", "Thrown when getting an uninitialized value.", true, true, 2, contract.AccessorGetter},
		{"both keywords", "Thrown when getting or setting an invalid value.", true, true, 2, contract.AccessorBoth},
		{"no keyword, single accessor is getter", "Thrown on invalid state.", true, false, 1, contract.AccessorGetter},
		{"no keyword, single accessor is setter", "Thrown on invalid state.", false, true, 1, contract.AccessorSetter},
		{"no keyword, ambiguous defaults to getter", "Thrown on invalid state.", true, true, 2, contract.AccessorGetter},
		{"whole word match, not substring", "The offsetting computation may fail.", true, true, 2, contract.AccessorGetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := contract.RouteDoc(tt.text, tt.hasGet, tt.hasSet, tt.accessorCount)
			require.Equal(t, tt.want, got)
		})
	}
}
