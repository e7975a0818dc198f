package e2elinq

import (
	"iter"
	"slices"

	"github.com/cxcheck/cxcheck/cxlinq"
)

type ParseError struct{}

func (e *ParseError) Error() string { return "parse error" }

func numbers() []string { return []string{"1", "2"} }

// Consume accepts a deferred query value without materializing it.
func Consume(q iter.Seq[string]) { _ = q }

// CrossesLinqBoundary composes a deferred query whose predicate throws, then passes the
// still-deferred value across a method boundary without materializing or declaring it.
func CrossesLinqBoundary() {
	q := cxlinq.Where(slices.Values(numbers()), func(s string) bool { // want `lambda implicitly throws exception ParseError; consider declaring it`
		panic(&ParseError{})
	})
	Consume(q) // want `deferred query carries exception ParseError across a method boundary and cannot be tracked further`
}
