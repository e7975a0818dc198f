package checks

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
// still-deferred value across a method boundary.
func CrossesLinqBoundary() {
	q := cxlinq.Where(slices.Values(numbers()), func(s string) bool {
		panic(&ParseError{})
	})
	Consume(q)
}
