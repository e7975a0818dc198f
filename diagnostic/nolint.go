//	Copyright (c) 2025 Uber Technologies, Inc.
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
	"go/ast"
	"reflect"
	"slices"
	"strings"

	"github.com/cxcheck/cxcheck/util/analysishelper"
	"github.com/cxcheck/cxcheck/util/tokenhelper"
	"golang.org/x/tools/go/analysis"
)

// NoLintAnalyzer reads all of cxcheck's nolint comments. This is needed since cxcheck is able to
// report violations rooted in a member's contract when analyzing a caller in a downstream
// package. Most drivers only respect nolint comments in the package currently being compiled, so
// here we parse the nolint comments ourselves, export them as facts, and do the filtering in
// [diagnostic.Engine].
var NoLintAnalyzer = &analysis.Analyzer{
	Name:       "cxcheck_nolint_analyzer",
	Doc:        "Read cxcheck's nolint comments and export them as facts for cxcheck's diagnostic engine.",
	Run:        analysishelper.WrapRun(run),
	FactTypes:  []analysis.Fact{new(NoLint)},
	Requires:   []*analysis.Analyzer{},
	ResultType: reflect.TypeOf((*analysishelper.Result[[]Range])(nil)),
}

// NoLint is a fact that stores the ranges of "//nolint:cxcheck" comments for cross-package nolint
// suppression support.
type NoLint struct {
	// Ranges lists the ranges of the nolint scopes in the package.
	Ranges []Range
}

// AFact makes NoLint satisfy the analysis.Fact interface such that it can be exported as a fact.
func (*NoLint) AFact() {}

// Range is a minimal struct that stores the filename and the start and end lines of a nolint scope.
type Range struct {
	// Filename is the filename of the file where the nolint comment is located.
	Filename string
	// From and To are the start and end lines of the nolint scope.
	From, To int
}

func run(p *analysis.Pass) ([]Range, error) {
	pass := analysishelper.NewEnhancedPass(p)
	var ranges []Range
	for _, f := range pass.Files {
		// CommentMap will correctly associate comments to the largest node group
		// applicable. This handles inline comments that might trail a large
		// assignment and will apply the comment to the entire assignment.
		commentMap := ast.NewCommentMap(pass.Fset, f, f.Comments)
		for node, groups := range commentMap {
			for _, group := range groups {
				for _, comm := range group.List {
					if !nolintContainsCxCheck(comm.Text) {
						continue
					}
					fromPos, toPos := pass.Fset.Position(node.Pos()), pass.Fset.Position(node.End())
					ranges = append(ranges, Range{Filename: tokenhelper.RelToCwd(fromPos.Filename), From: fromPos.Line, To: toPos.Line})
				}
			}
		}
	}

	// Import all nolint ranges from upstream.
	var upstreamRanges []Range
	for _, f := range pass.AllPackageFacts() {
		upstreamNoLintRanges, ok := f.Fact.(*NoLint)
		if !ok {
			continue
		}
		upstreamRanges = append(upstreamRanges, upstreamNoLintRanges.Ranges...)
	}

	// Export local nolint ranges (if available) for downstream uses.
	if len(ranges) > 0 {
		pass.ExportPackageFact(&NoLint{Ranges: ranges})
	}

	return slices.Concat(ranges, upstreamRanges), nil
}

// nolintContainsCxCheck checks if the particular comment is a nolint comment for cxcheck suppression.
func nolintContainsCxCheck(text string) bool {
	// This implementation is adapted from
	// https://github.com/bazel-contrib/rules_go/blob/eb13b736d9568044427f23359329155e67071948/go/tools/builders/nolint.go#L21
	// under Apache 2.0 license.
	text = strings.TrimLeft(text, "/ ")
	if !strings.HasPrefix(text, "nolint") {
		return false
	}

	// strip explanation comments
	split := strings.Split(text, "//")
	text = strings.TrimSpace(split[0])

	parts := strings.Split(text, ":")
	if len(parts) == 1 {
		return true
	}
	for _, linter := range strings.Split(strings.TrimSpace(parts[1]), ",") {
		if strings.EqualFold(linter, "all") || strings.EqualFold(linter, "cxcheck") {
			return true
		}
	}
	return false
}
