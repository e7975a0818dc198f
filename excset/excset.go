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

// Package excset implements the Exception Set data type (spec.md §3): a finite collection of
// exception types. Set itself never enforces the subsumption invariant (no element a proper
// subtype of another) - that is lattice.Canonicalize's job, since subtyping requires the host's
// type system and excset must not depend on lattice (both lattice and checker/flow depend on
// excset, and neither should own the other - SPEC_FULL.md §3).
package excset

import (
	"sort"

	"github.com/cxcheck/cxcheck/model"
)

// Set is a finite, de-duplicated (by model.TypeID) collection of exception types. The zero value
// is an empty, usable set.
type Set struct {
	byID map[model.TypeID]model.Type
}

// New returns an empty Set, optionally seeded with the given types.
func New(types ...model.Type) Set {
	s := Set{}
	for _, t := range types {
		s.Add(t)
	}
	return s
}

// Add inserts t into the set, overwriting any prior entry with the same TypeID.
func (s *Set) Add(t model.Type) {
	if !t.IsValid() {
		return
	}
	if s.byID == nil {
		s.byID = make(map[model.TypeID]model.Type)
	}
	s.byID[t.ID()] = t
}

// Remove deletes the type with the given ID from the set, if present.
func (s *Set) Remove(id model.TypeID) {
	delete(s.byID, id)
}

// Contains reports whether a type with the given ID is a direct (non-subtype) member of the set.
func (s Set) Contains(id model.TypeID) bool {
	_, ok := s.byID[id]
	return ok
}

// Len returns the number of elements in the set.
func (s Set) Len() int {
	return len(s.byID)
}

// IsEmpty reports whether the set has no elements - "emptiness is observable" per spec.md §3.
func (s Set) IsEmpty() bool {
	return len(s.byID) == 0
}

// Elements returns the set's members in a deterministic order (sorted by TypeID), so that
// iteration and diagnostic generation over a Set is reproducible across runs (spec.md §8
// "Determinism").
func (s Set) Elements() []model.Type {
	out := make([]model.Type, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Clone returns a deep (enough) copy of s that can be mutated independently.
func (s Set) Clone() Set {
	out := Set{byID: make(map[model.TypeID]model.Type, len(s.byID))}
	for id, t := range s.byID {
		out.byID[id] = t
	}
	return out
}

// Union returns a new set containing every element of s and other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	for _, t := range other.Elements() {
		out.Add(t)
	}
	return out
}

// Intersect returns a new set containing only the elements present (by TypeID) in both s and
// other.
func (s Set) Intersect(other Set) Set {
	out := Set{}
	for id, t := range s.byID {
		if other.Contains(id) {
			out.Add(t)
		}
	}
	return out
}

// Difference returns a new set containing the elements of s not present (by TypeID) in other.
func (s Set) Difference(other Set) Set {
	out := Set{}
	for id, t := range s.byID {
		if !other.Contains(id) {
			out.Add(t)
		}
	}
	return out
}

// RemoveSubtypesOf returns a new set with every element for which isSubtype(elem, t) holds
// removed - the "remove all subtypes of T" total operation required by spec.md §3. isSubtype is
// injected by the caller (normally lattice.IsSubtype) to keep this package independent of the
// lattice's go/types-backed subtyping logic.
func (s Set) RemoveSubtypesOf(t model.Type, isSubtype func(sub, super model.Type) bool) Set {
	out := Set{}
	for _, elem := range s.Elements() {
		if isSubtype(elem, t) {
			continue
		}
		out.Add(elem)
	}
	return out
}
