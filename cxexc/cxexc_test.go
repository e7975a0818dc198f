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

package cxexc_test

import (
	"testing"

	"github.com/cxcheck/cxcheck/cxexc"
	"github.com/stretchr/testify/require"
)

type notFoundError struct{ id string }

func (e *notFoundError) Error() string { return "not found: " + e.id }

type timeoutError struct{}

func (*timeoutError) Error() string { return "timeout" }

func TestCatch_HandlesMatchingType(t *testing.T) {
	t.Parallel()

	var caught *notFoundError
	cxexc.Catch(cxexc.Try(func() {
		panic(&notFoundError{id: "42"})
	}), func(e *notFoundError) {
		caught = e
	}).Finally(func() {})

	require.NotNil(t, caught)
	require.Equal(t, "42", caught.id)
}

func TestCatch_SkipsNonMatchingType(t *testing.T) {
	t.Parallel()

	var anyCaught error
	r := cxexc.Catch(cxexc.Try(func() {
		panic(&timeoutError{})
	}), func(e *notFoundError) {
		t.Fatal("should not be called")
	})
	cxexc.CatchAny(r, func(e error) { anyCaught = e })

	require.Error(t, anyCaught)
	require.IsType(t, &timeoutError{}, anyCaught)
}

func TestFinally_RepanicsUnhandledError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		cxexc.Try(func() {
			panic(&timeoutError{})
		}).Finally(func() {})
	})
}

func TestFinally_RunsCleanupEvenWithoutError(t *testing.T) {
	t.Parallel()

	ran := false
	cxexc.Try(func() {}).Finally(func() { ran = true })
	require.True(t, ran)
}

func TestOrThrow_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		cxexc.OrThrow(0, &notFoundError{id: "x"})
	})
	require.Equal(t, 5, cxexc.OrThrow(5, nil))
}

func TestCheckedConvert_PanicsOnBadConversion(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		cxexc.CheckedConvert[int](any("not an int"))
	})
	require.Equal(t, 7, cxexc.CheckedConvert[int](any(7)))
}
