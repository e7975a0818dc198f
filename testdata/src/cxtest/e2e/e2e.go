package e2e

import "errors"

// NotFoundError is a sample exception type implementing error.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return "not found: " + e.ID }

//throws:NotFoundError
func lookup(id string) error {
	if id == "" {
		return &NotFoundError{ID: id}
	}
	return nil
}

// CallsUndeclared calls lookup without declaring or catching NotFoundError, so the exception
// should be reported as escaping uncaught.
func CallsUndeclared(id string) {
	_ = lookup(id) // want `exception NotFoundError may escape CallsUndeclared and is not declared or caught`
}

// ThrowsBase panics with the root error sentinel directly instead of a specific type.
func ThrowsBase() {
	panic(errors.New("boom")) // want `do not throw the base exception type error directly; throw a specific type` `exception error may escape ThrowsBase and is not declared or caught`
}
