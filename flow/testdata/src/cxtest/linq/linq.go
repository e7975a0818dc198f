package linq

import (
	"iter"
	"slices"

	"github.com/cxcheck/cxcheck/cxexc"
	"github.com/cxcheck/cxcheck/cxlinq"
)

type ParseError struct{}

func (e *ParseError) Error() string { return "parse error" }

func source() []string { return []string{"a", "b"} }

func MaterializedHandled() {
	cxexc.Catch(cxexc.Try(func() {
		_ = cxlinq.First(cxlinq.Where(slices.Values(source()), func(s string) bool {
			panic(&ParseError{})
		}))
	}), func(e *ParseError) { _ = e })
}

func MaterializedUnhandled() {
	_ = cxlinq.First(cxlinq.Where(slices.Values(source()), func(s string) bool {
		panic(&ParseError{})
	}))
}

func Consume(q iter.Seq[string]) { _ = q }

func CrossesBoundary() {
	q := cxlinq.Where(slices.Values(source()), func(s string) bool {
		panic(&ParseError{})
	})
	Consume(q)
}
