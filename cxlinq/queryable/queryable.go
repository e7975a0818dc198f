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

// Package queryable stands in for C#'s IQueryable: the same deferred operator shapes as cxlinq,
// wrapped over a Queryable[T] value, gated independently by disableLinqQueryableSupport so a
// project can allow in-memory LINQ composition (cxlinq) while still flagging provider-backed
// query composition (queryable) as unsupported/ignored.
package queryable

import "iter"

// Queryable wraps a deferred sequence the way IQueryable wraps an expression tree: composing
// operators on it builds up a pipeline without executing it.
type Queryable[T any] struct {
	seq iter.Seq[T]
}

// From wraps seq as a Queryable.
func From[T any](seq iter.Seq[T]) Queryable[T] {
	return Queryable[T]{seq: seq}
}

// Where returns a Queryable yielding only the elements for which pred returns true.
func Where[T any](q Queryable[T], pred func(T) bool) Queryable[T] {
	return Queryable[T]{seq: func(yield func(T) bool) {
		for v := range q.seq {
			if pred(v) && !yield(v) {
				return
			}
		}
	}}
}

// Select returns a Queryable of proj applied to every element of q.
func Select[T, R any](q Queryable[T], proj func(T) R) Queryable[R] {
	return Queryable[R]{seq: func(yield func(R) bool) {
		for v := range q.seq {
			if !yield(proj(v)) {
				return
			}
		}
	}}
}

// ToSlice materializes q into a slice.
func ToSlice[T any](q Queryable[T]) []T {
	var out []T
	for v := range q.seq {
		out = append(out, v)
	}
	return out
}

// First materializes the first element of q, panicking with ErrSequenceEmpty if none exists.
func First[T any](q Queryable[T]) T {
	for v := range q.seq {
		return v
	}
	panic(&ErrSequenceEmpty{})
}

// ErrSequenceEmpty is raised by First when the queryable has no elements.
type ErrSequenceEmpty struct{}

func (e *ErrSequenceEmpty) Error() string { return "queryable sequence contains no elements" }
