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

// Package cxexc is the runtime counterpart of the try/catch/finally construct that the checked
// exceptions analyzer reasons about statically. Go has no try/catch statement, so this package
// hosts the construct as a call-chain builder: Try wraps a block that may panic with an error,
// Catch/CatchAny attach typed or catch-all handlers, and Finally attaches cleanup that always
// runs, paralleling the builder-pattern rendition of try/catch in the reference Go exceptions
// library this package adapts (a panic/recover-based Result chain rather than a language
// statement).
package cxexc

import "fmt"

// Result carries the outcome of a Try block: either no panic occurred, or the panicking value
// (always an error, see Try) is available for Catch/CatchAny to inspect and possibly handle.
type Result struct {
	err     error
	handled bool
}

// Try runs block, recovering any panic raised inside it. A panic value that is already an error
// is kept as-is; any other panic value is wrapped in a RuntimeError so that downstream Catch
// handlers always see an `error`.
func Try(block func()) (r *Result) {
	r = &Result{}
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if err, ok := rec.(error); ok {
			r.err = err
			return
		}
		r.err = &RuntimeError{Value: rec}
	}()
	block()
	return r
}

// Catch attaches a typed handler: if r carries an unhandled error assignable to T, handler runs
// and the error is marked handled. T is inferred from handler's parameter type, so callers never
// need an explicit type argument (e.g., cxexc.Catch(r, func(e *NotFoundError) { ... })).
func Catch[T error](r *Result, handler func(T)) *Result {
	if r == nil || r.err == nil || r.handled {
		return r
	}
	if typed, ok := r.err.(T); ok {
		handler(typed)
		r.handled = true
	}
	return r
}

// CatchAny attaches a catch-all handler: if r carries any unhandled error, handler runs and the
// error is marked handled.
func CatchAny(r *Result, handler func(error)) *Result {
	if r == nil || r.err == nil || r.handled {
		return r
	}
	handler(r.err)
	r.handled = true
	return r
}

// Finally runs cleanup unconditionally, then re-panics any error that was never handled by a
// preceding Catch/CatchAny, mirroring the propagation of an unhandled exception past a finally
// block.
func (r *Result) Finally(cleanup func()) {
	cleanup()
	if r != nil && r.err != nil && !r.handled {
		panic(r.err)
	}
}

// Err returns the error that reached the end of the Catch/CatchAny chain unhandled, or nil.
// Unlike Finally, Err does not panic; it lets the caller decide how to propagate.
func (r *Result) Err() error {
	if r == nil || r.handled {
		return nil
	}
	return r.err
}

// Rethrow re-panics err from within a Catch/CatchAny handler, the runtime counterpart of a bare
// `throw;` inside a catch clause.
func Rethrow(err error) {
	panic(err)
}

// OrThrow returns value if err is nil, otherwise panics with err - the runtime counterpart of the
// null-coalescing throw `a ?? throw new E(...)`.
func OrThrow[T any](value T, err error) T {
	if err != nil {
		panic(err)
	}
	return value
}

// CheckedConvert performs a checked type conversion, panicking with an InvalidCastError if from
// cannot be converted to To - the runtime counterpart of a cast expression that may fail.
func CheckedConvert[To, From any](from From) To {
	var toZero To
	anyFrom := any(from)
	converted, ok := anyFrom.(To)
	if !ok {
		panic(&InvalidCastError{From: fmt.Sprintf("%T", from), To: fmt.Sprintf("%T", toZero)})
	}
	return converted
}

// RuntimeError wraps a non-error panic value so that Try's Result always carries an error.
type RuntimeError struct {
	Value any
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime panic: %v", e.Value)
}

// InvalidCastError is raised by CheckedConvert when a reference conversion fails.
type InvalidCastError struct {
	From, To string
}

func (e *InvalidCastError) Error() string {
	return fmt.Sprintf("invalid cast from %s to %s", e.From, e.To)
}

// OverflowError describes a numeric conversion that would overflow its target type. No function
// in this package raises it: CheckedConvert reports a failed conversion as InvalidCastError.
type OverflowError struct {
	Value   any
	ToType  string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("value %v overflows %s", e.Value, e.ToType)
}

// ArgumentNilError is raised for a non-nullable parameter that received a nil value, the runtime
// counterpart of ArgumentNullException.
type ArgumentNilError struct {
	ParamName string
}

func (e *ArgumentNilError) Error() string {
	return fmt.Sprintf("argument %q must not be nil", e.ParamName)
}
