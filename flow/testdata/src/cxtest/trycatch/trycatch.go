package trycatch

import "github.com/cxcheck/cxcheck/cxexc"

// NotFoundError is a sample exception type implementing error.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return "not found: " + e.ID }

// TimeoutError is a sample exception type implementing error.
type TimeoutError struct{}

func (e *TimeoutError) Error() string { return "timed out" }

//throws:NotFoundError
func lookup(id string) error {
	if id == "" {
		return &NotFoundError{ID: id}
	}
	return nil
}

// Handled calls lookup inside a Try/Catch that fully handles NotFoundError, so nothing escapes.
func Handled(id string) {
	cxexc.Catch(cxexc.Try(func() {
		_ = lookup(id)
	}), func(e *NotFoundError) {
		_ = e
	})
}

// Unhandled calls lookup without any surrounding Try/Catch, so NotFoundError escapes.
func Unhandled(id string) {
	_ = lookup(id)
}

// RedundantTypedCatch declares a catch for NotFoundError twice; the second is structurally
// redundant.
func RedundantTypedCatch(id string) {
	cxexc.Catch(cxexc.Catch(cxexc.Try(func() {
		_ = lookup(id)
	}), func(e *NotFoundError) {
		_ = e
	}), func(e *NotFoundError) {
		_ = e
	})
}

// CatchAnyNotLast puts a typed catch after a CatchAny clause, which can never run.
func CatchAnyNotLast(id string) {
	cxexc.Catch(cxexc.CatchAny(cxexc.Try(func() {
		_ = lookup(id)
	}), func(e error) {
		_ = e
	}), func(e *TimeoutError) {
		_ = e
	})
}

// UnreachableThrow returns unconditionally before the call to lookup, so the call is dead code;
// with control-flow analysis enabled (the default) it contributes nothing to the escaping set.
func UnreachableThrow(id string) {
	return
	_ = lookup(id)
}

// EmptyCatchAllCaughtSet wraps a try body that never throws in a CatchAny: with control-flow
// analysis enabled, the catch-all's caught set is empty because lookup's error branch never
// executes (it is not even called), so the clause is flagged redundant.
func EmptyCatchAllCaughtSet() {
	cxexc.CatchAny(cxexc.Try(func() {
		_ = 1 + 1
	}), func(e error) {
		_ = e
	})
}
