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

// Package linqmodel implements the LINQ Module's operator-recognition rules (spec.md §4.4): given
// a called function's import path and name, classify it as a deferred composer, a materializer,
// or neither. Recognition is by import path rather than "declaring type's simple name ends in
// Enumerable/Queryable" (Go has no nominal extension-method namespace to pattern-match on) - the
// built-in catalogue covers cxlinq and cxlinq/queryable, and config.Config.LinqOperators lets a
// caller register their own, exactly as the host's settings extend every other classification.
package linqmodel

import (
	"strings"

	"github.com/cxcheck/cxcheck/config"
)

// Kind distinguishes what role, if any, a called function plays in a LINQ-style pipeline.
type Kind int

const (
	// NotOperator means the call is ordinary - not part of any recognized LINQ pipeline.
	NotOperator Kind = iota
	// Deferred means the call composes a new deferred-query value without evaluating its source.
	Deferred
	// Materializer means the call forces evaluation, converting a deferred-exception set into an
	// ordinary may-throw set at the call site.
	Materializer
)

const cxlinqSuffix = "/cxlinq"
const queryableSuffix = "/cxlinq/queryable"

var deferredOps = map[string]bool{
	"Where":  true,
	"Select": true,
	"Take":   true,
	"Skip":   true,
}

var materializerOps = map[string]bool{
	"ToSlice": true,
	"First":   true,
	"Any":     true,
	"Count":   true,
	"ForEach": true,
}

// Classify reports whether the function named funcName, declared in package pkgPath, is a
// deferred composer or a materializer - first against the built-in cxlinq/cxlinq-queryable
// catalogue, then against conf.LinqOperators.
func Classify(conf *config.Config, pkgPath, funcName string) Kind {
	name := NormalizeAsync(funcName)
	if isLinqPkg(pkgPath) {
		if deferredOps[name] {
			return Deferred
		}
		if materializerOps[name] {
			return Materializer
		}
	}
	if conf == nil {
		return NotOperator
	}
	for _, op := range conf.LinqOperators {
		if op.PkgPath != pkgPath || op.FuncName != funcName {
			continue
		}
		if op.Deferred {
			return Deferred
		}
		if op.Materializer {
			return Materializer
		}
	}
	return NotOperator
}

// IsQueryable reports whether pkgPath is the cxlinq/queryable package, so callers can gate it
// independently behind disableLinqQueryableSupport while still recognizing plain cxlinq.
func IsQueryable(pkgPath string) bool {
	return strings.HasSuffix(pkgPath, queryableSuffix)
}

func isLinqPkg(pkgPath string) bool {
	return strings.HasSuffix(pkgPath, cxlinqSuffix) || strings.HasSuffix(pkgPath, queryableSuffix)
}

// IsBuiltinOperator reports whether pkgPath is one of the built-in catalogue packages (cxlinq or
// cxlinq/queryable), as opposed to a caller-registered conf.LinqOperators entry. Callers use this
// to apply shape-validation heuristics (e.g. "does the first parameter look like an iterator?")
// only to custom registrations, since the built-in catalogue's shapes are already known-good.
func IsBuiltinOperator(pkgPath string) bool {
	return isLinqPkg(pkgPath)
}

// NormalizeAsync strips the async-suffix family (AwaitWithCancellation, Await, Async) from an
// operator name so built-in exception knowledge keyed on the synchronous form still applies
// (spec.md §4.4 "async suffixes ... are normalized to the synchronous form").
func NormalizeAsync(name string) string {
	for _, suffix := range []string{"AwaitWithCancellation", "Await", "Async"} {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return name
}
