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

package contract

import "strings"

// Accessor identifies which property accessor an XML-doc `<exception>`-equivalent comment block
// should be routed to (spec.md §4.2 "Property-accessor heuristics").
type Accessor int

const (
	// AccessorGetter routes the documented exception to the property's getter.
	AccessorGetter Accessor = iota
	// AccessorSetter routes the documented exception to the property's setter.
	AccessorSetter
	// AccessorBoth routes the documented exception to both accessors.
	AccessorBoth
)

var (
	_getterTokens = []string{"get", "gets", "getting", "retrieved"}
	_setterTokens = []string{"set", "sets", "setting"}
)

// RouteDoc implements the property-accessor heuristic verbatim: a case-insensitive, whole-word
// scan of text for getter/setter tokens, falling back to the single existing accessor, and
// defaulting to the getter on genuine ambiguity (spec.md §4.2).
func RouteDoc(text string, hasGet, hasSet bool, accessorCount int) Accessor {
	lower := strings.ToLower(text)
	words := splitWords(lower)

	sawGetter := containsAny(words, _getterTokens)
	sawSetter := containsAny(words, _setterTokens)

	switch {
	case sawSetter && !sawGetter:
		return AccessorSetter
	case sawGetter && !sawSetter:
		return AccessorGetter
	case sawGetter && sawSetter:
		return AccessorBoth
	}

	// No token matched either list.
	if accessorCount == 1 {
		if hasSet && !hasGet {
			return AccessorSetter
		}
		return AccessorGetter
	}

	return AccessorGetter
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func containsAny(words, tokens []string) bool {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
