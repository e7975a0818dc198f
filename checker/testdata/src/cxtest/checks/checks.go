package checks

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

// CallsUndeclared calls lookup without declaring or catching NotFoundError, so it should escape
// uncaught.
func CallsUndeclared(id string) {
	_ = lookup(id)
}

// DeclaresButNeverThrows declares TimeoutError but its body never calls anything that throws it.
//
//throws:TimeoutError
func DeclaresButNeverThrows() {
}

// DuplicateDeclares repeats the same declared type twice.
//
//throws:NotFoundError,NotFoundError
func DuplicateDeclares(id string) error {
	return lookup(id)
}

// DeclaresBaseException declares the root sentinel instead of a specific type.
//
//throws:error
func DeclaresBaseException() {
}
