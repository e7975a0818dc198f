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

package config

import (
	"encoding/json"
	"fmt"
)

// Classification is one of {Ignored, NonStrict, Strict} (spec.md §3 "Classification").
type Classification int

const (
	// Strict is the default: the engine requires the type to be declared/caught and reports the
	// full diagnostic when it is not.
	Strict Classification = iota
	// NonStrict reports only informational diagnostics and never requires the type to be
	// declared/caught.
	NonStrict
	// Ignored suppresses every diagnostic that would otherwise reference the type.
	Ignored
)

// String implements fmt.Stringer.
func (c Classification) String() string {
	switch c {
	case Strict:
		return "Strict"
	case NonStrict:
		return "NonStrict"
	case Ignored:
		return "Ignored"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// MarshalJSON implements json.Marshaler.
func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler, accepting the three string spellings used in the
// settings file (spec.md §6.2).
func (c *Classification) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Strict", "":
		*c = Strict
	case "NonStrict":
		*c = NonStrict
	case "Ignored":
		*c = Ignored
	default:
		return fmt.Errorf("unrecognized classification %q", s)
	}
	return nil
}

// InfoMode is the legacy `informationalExceptions` mode, consulted at diagnostic time to decide
// whether an informational report is suppressed at a thrown-here site vs. a propagation site vs.
// always (spec.md §6.2).
type InfoMode int

const (
	// InfoAlways always reports the informational diagnostic, both at the throw site and at
	// every propagation site.
	InfoAlways InfoMode = iota
	// InfoThrow reports only at the site where the exception is actually thrown.
	InfoThrow
	// InfoPropagation reports only at sites where the exception merely propagates through,
	// without being thrown there.
	InfoPropagation
)

// UnmarshalJSON implements json.Unmarshaler.
func (m *InfoMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Always", "":
		*m = InfoAlways
	case "Throw":
		*m = InfoThrow
	case "Propagation":
		*m = InfoPropagation
	default:
		return fmt.Errorf("unrecognized informational mode %q", s)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m InfoMode) MarshalJSON() ([]byte, error) {
	switch m {
	case InfoThrow:
		return json.Marshal("Throw")
	case InfoPropagation:
		return json.Marshal("Propagation")
	default:
		return json.Marshal("Always")
	}
}
