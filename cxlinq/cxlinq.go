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

// Package cxlinq is Go's nearest idiomatic analogue of C#'s deferred LINQ composition, built on
// the standard iter.Seq[T] range-over-func pattern (Go 1.23). Where/Select/Take/Skip defer
// execution - they return a new sequence without iterating their source - while ToSlice/First/
// Any/Count/ForEach materialize it. linqmodel.Classify recognizes these by package path and
// function name so the analyzer can treat a cxlinq pipeline the way spec.md §4.4 treats a LINQ
// query: exceptions raised inside a deferred lambda attach to the resulting sequence value and
// only surface at a materialization point.
package cxlinq

import "iter"

// Where returns a sequence yielding only the elements of seq for which pred returns true.
func Where[T any](seq iter.Seq[T], pred func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}
}

// Select returns a sequence of proj applied to every element of seq.
func Select[T, R any](seq iter.Seq[T], proj func(T) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		for v := range seq {
			if !yield(proj(v)) {
				return
			}
		}
	}
}

// Take returns a sequence of at most n leading elements of seq.
func Take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		count := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

// Skip returns a sequence omitting the first n elements of seq.
func Skip[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		skipped := 0
		for v := range seq {
			if skipped < n {
				skipped++
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// ToSlice materializes seq into a slice.
func ToSlice[T any](seq iter.Seq[T]) []T {
	var out []T
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// First materializes the first element of seq, panicking with ErrSequenceEmpty if seq yields
// nothing - the runtime counterpart of LINQ's first-on-empty InvalidOperationException analogue.
func First[T any](seq iter.Seq[T]) T {
	for v := range seq {
		return v
	}
	panic(&ErrSequenceEmpty{Operation: "First"})
}

// Any materializes seq far enough to report whether it yields at least one element.
func Any[T any](seq iter.Seq[T]) bool {
	for range seq {
		return true
	}
	return false
}

// Count materializes the full sequence to count its elements.
func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// ForEach materializes seq, invoking f for every element.
func ForEach[T any](seq iter.Seq[T], f func(T)) {
	for v := range seq {
		f(v)
	}
}

// ErrSequenceEmpty is raised by a materializer that requires at least one element.
type ErrSequenceEmpty struct {
	Operation string
}

func (e *ErrSequenceEmpty) Error() string {
	return e.Operation + ": sequence contains no elements"
}
