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

// Package contract implements the Contract Resolver (spec.md §4.2): for a given member symbol,
// it yields the declared exception set (from `//throws:` pragmas), the documented set (from
// `Exceptions:` doc blocks), and the inherited set (from overridden/implemented ancestors).
package contract

import (
	"go/token"
	"go/types"

	"github.com/cxcheck/cxcheck/excset"
	"github.com/cxcheck/cxcheck/model"
	"github.com/cxcheck/cxcheck/util/orderedmap"
)

// Contract is the Member Contract of spec.md §3: the declared set (exact authored list,
// duplicates preserved for DUPLICATE_DECLARED) and the derived, read-only documented set.
type Contract struct {
	// DeclaredTokens is the exact authored sequence of `//throws:` tokens, one entry per type
	// reference as written, duplicates preserved, each paired with the position of that token for
	// per-duplicate diagnostic anchoring.
	DeclaredTokens []DeclaredToken
	// Documented is the set parsed from the member's `Exceptions:` doc-comment block, empty when
	// disableXmlDocInterop is set or no such block is present.
	Documented excset.Set
	// AttrPos is the position of the member's declaration, used to anchor signature-level
	// diagnostics (XMLDOC_NO_THROWS, INCOMPATIBLE_OVERRIDE, MISSING_FROM_BASE) and as
	// REDUNDANT_SUPERTYPE's fallback anchor; the other declaration diagnostics use each
	// DeclaredToken's own position.
	AttrPos token.Pos
}

// DeclaredToken is one authored reference to an exception type in a `//throws:` pragma.
type DeclaredToken struct {
	Type model.Type
	Pos  token.Pos
}

// DeclaredSet returns the canonical (duplicate-free) declared set.
func (c Contract) DeclaredSet() excset.Set {
	s := excset.Set{}
	for _, tok := range c.DeclaredTokens {
		s.Add(tok.Type)
	}
	return s
}

// Duplicates returns every DeclaredToken beyond the first occurrence of its type, for
// DUPLICATE_DECLARED (spec.md §4.6 check 5).
func (c Contract) Duplicates() []DeclaredToken {
	seen := make(map[model.TypeID]bool, len(c.DeclaredTokens))
	var dups []DeclaredToken
	for _, tok := range c.DeclaredTokens {
		id := tok.Type.ID()
		if seen[id] {
			dups = append(dups, tok)
			continue
		}
		seen[id] = true
	}
	return dups
}

// Program is the resolved, immutable-for-the-pass contract database produced by
// contract.Analyzer: a lookup from member symbol to its Contract, plus the inheritance
// relationships needed by checker's inheritance-compatibility check (spec.md §4.6 check 8).
type Program struct {
	// contracts is an OrderedMap rather than a plain map so that ForEach below replays contracts
	// in declaration order, matching the teacher's own use of orderedmap.OrderedMap for
	// reproducible iteration over a per-pass accumulated symbol table.
	contracts         *orderedmap.OrderedMap[types.Object, *Contract]
	inherited         map[types.Object]excset.Set
	bases             map[types.Object][]types.Object
	invalidPlacements []token.Pos
}

// newProgram creates an empty, mutable Program for the resolver to populate.
func newProgram() *Program {
	return &Program{
		contracts: orderedmap.New[types.Object, *Contract](),
		inherited: make(map[types.Object]excset.Set),
		bases:     make(map[types.Object][]types.Object),
	}
}

// InvalidPlacements returns the position of every `//throws:` pragma found on a struct field's
// doc comment instead of on the accessor method it should annotate.
func (p *Program) InvalidPlacements() []token.Pos {
	if p == nil {
		return nil
	}
	return p.invalidPlacements
}

// Contract returns the resolved Contract for obj, or an empty Contract if obj declares nothing.
func (p *Program) Contract(obj types.Object) *Contract {
	if p == nil {
		return &Contract{}
	}
	if c, ok := p.contracts.Load(obj); ok {
		return c
	}
	return &Contract{}
}

// Inherited returns the union of declared sets over every member obj overrides or implements
// (spec.md §4.2 "Inheritance walk").
func (p *Program) Inherited(obj types.Object) excset.Set {
	if p == nil {
		return excset.Set{}
	}
	return p.inherited[obj]
}

// ForEach calls f once for every member with a resolved Contract, in declaration order (diagnostic.Engine
// sorts the final diagnostic list in accumulate regardless, but a stable replay order here makes
// panics and debug traces reproducible across runs).
func (p *Program) ForEach(f func(obj types.Object, c *Contract)) {
	if p == nil {
		return
	}
	for _, pair := range p.contracts.Pairs {
		f(pair.Key, pair.Value)
	}
}

// Bases returns the ancestor members (base-class overrides, interface-method implementations)
// that obj overrides or implements, for checker's per-ancestor INCOMPATIBLE_OVERRIDE /
// MISSING_FROM_BASE diagnostics.
func (p *Program) Bases(obj types.Object) []types.Object {
	if p == nil {
		return nil
	}
	return p.bases[obj]
}
