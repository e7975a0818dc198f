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

package diagnostic

import (
	"fmt"
	"go/token"
	"sort"

	"github.com/cxcheck/cxcheck/util/tokenhelper"
	"golang.org/x/tools/go/analysis"
)

// Diagnostic is one catalogue entry ready to be reported: a Kind, an anchor span, and the
// arguments that fill its message template (spec.md §6.3).
type Diagnostic struct {
	Kind Kind
	Pos  token.Pos
	End  token.Pos
	Args []any
}

func (d Diagnostic) key() string {
	return fmt.Sprintf("%s|%d|%d|%v", d.Kind, d.Pos, d.End, d.Args)
}

// Engine dedups, orders, and reports a package's diagnostics, honoring nolint-suppression ranges
// and per-type classification already folded into each Diagnostic by the caller (flow/checker
// downgrade or drop a Diagnostic before handing it to the Engine rather than asking the Engine to
// re-derive classification, since only the caller knows which exception type produced it).
type Engine struct {
	pass   *analysis.Pass
	nolint []Range
}

// NewEngine creates an Engine for pass, honoring the nolint ranges collected by NoLintAnalyzer
// (local to the package plus any imported via facts).
func NewEngine(pass *analysis.Pass, nolint []Range) *Engine {
	return &Engine{pass: pass, nolint: nolint}
}

// Resolve deduplicates diags by (kind, span, arguments), drops any whose position falls inside a
// nolint range, and sorts the remainder by (path, span start, span end, kind, arguments) for
// deterministic output (spec.md §8). It does not report anything, letting a caller (e.g.
// accumulate.Analyzer) convert the result to analysis.Diagnostic and defer the actual pass.Report
// call to the top-level analyzer, mirroring the teacher's deferred-reporting split between its
// accumulation and top-level analyzers.
func (e *Engine) Resolve(diags []Diagnostic) []Diagnostic {
	seen := make(map[string]bool, len(diags))
	var out []Diagnostic
	for _, d := range diags {
		k := d.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		if e.suppressed(d.Pos) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		pi, pj := e.pass.Fset.Position(out[i].Pos), e.pass.Fset.Position(out[j].Pos)
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		ei, ej := e.pass.Fset.Position(out[i].End), e.pass.Fset.Position(out[j].End)
		switch {
		case pi.Offset != pj.Offset:
			return pi.Offset < pj.Offset
		case ei.Offset != ej.Offset:
			return ei.Offset < ej.Offset
		case out[i].Kind != out[j].Kind:
			return out[i].Kind < out[j].Kind
		default:
			return fmt.Sprint(out[i].Args) < fmt.Sprint(out[j].Args)
		}
	})
	return out
}

// Report resolves diags and reports each one directly through the pass. Most callers go through
// accumulate.Analyzer instead, which needs the resolved list as a Result rather than an immediate
// side effect.
func (e *Engine) Report(diags []Diagnostic) {
	for _, d := range e.Resolve(diags) {
		e.pass.Report(analysis.Diagnostic{
			Pos:     d.Pos,
			End:     d.End,
			Message: Message(d.Kind, d.Args...),
		})
	}
}

func (e *Engine) suppressed(pos token.Pos) bool {
	if len(e.nolint) == 0 {
		return false
	}
	position := e.pass.Fset.Position(pos)
	filename := tokenhelper.RelToCwd(position.Filename)
	for _, r := range e.nolint {
		if r.Filename == filename && position.Line >= r.From && position.Line <= r.To {
			return true
		}
	}
	return false
}
