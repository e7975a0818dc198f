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

// Package cxcheck implements the top-level analyzer that retrieves the resolved diagnostics from
// the accumulate analyzer and reports them, optionally decorating messages for terminal display.
package cxcheck

import (
	"fmt"
	"regexp"

	"github.com/cxcheck/cxcheck/accumulate"
	"github.com/cxcheck/cxcheck/config"
	"github.com/cxcheck/cxcheck/diagnostic"
	"github.com/cxcheck/cxcheck/util/analysishelper"
	"golang.org/x/tools/go/analysis"
)

const _doc = "Run cxcheck on this package to report retrofitted checked-exception contract " +
	"violations: undeclared propagation, redundant or duplicate declarations, incompatible " +
	"overrides, and misuse of the base exception type, among others"

// Analyzer is the top-level instance that coordinates the entire pipeline (config, contract,
// flow, checker, accumulate) to report checked-exception diagnostics in this package.
var Analyzer = &analysis.Analyzer{
	Name:       "cxcheck",
	Doc:        _doc,
	Run:        run,
	FactTypes:  []analysis.Fact{},
	Requires:   []*analysis.Analyzer{config.Analyzer, accumulate.Analyzer},
	ResultType: nil,
}

func run(pass *analysis.Pass) (interface{}, error) {
	conf := pass.ResultOf[config.Analyzer].(*config.Config)
	result := pass.ResultOf[accumulate.Analyzer].(*analysishelper.Result[[]diagnostic.Diagnostic])

	for _, d := range result.Res {
		msg := diagnostic.Message(d.Kind, d.Args...)
		if conf.PrettyPrint {
			msg = prettyPrintMessage(msg)
		}
		pass.Report(analysis.Diagnostic{Pos: d.Pos, End: d.End, Message: msg})
	}

	return nil, nil
}

var (
	codeReferencePattern = regexp.MustCompile("`(.*?)`")
	pathPattern          = regexp.MustCompile(`"(.*?)"`)
)

const ansiEsc = "\x1b["

// prettyPrintMessage post-processes a diagnostic message with ANSI colors for terminal display:
// backtick-quoted code references in magenta, double-quoted paths/identifiers in cyan.
func prettyPrintMessage(msg string) string {
	errorPrefix := ansiEsc + "31merror: " + ansiEsc + "0m"
	codeColor := ansiEsc + "95m${1}" + ansiEsc + "0m"
	pathColor := ansiEsc + "36m${1}" + ansiEsc + "0m"

	msg = codeReferencePattern.ReplaceAllString(msg, fmt.Sprintf("`%s`", codeColor))
	msg = pathPattern.ReplaceAllString(msg, fmt.Sprintf(`"%s"`, pathColor))
	return errorPrefix + msg
}
