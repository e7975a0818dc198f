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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessage_FormatsKnownKind(t *testing.T) {
	t.Parallel()
	got := Message(Unhandled, "NotFoundError", "Parser.Parse")
	require.Equal(t, "exception NotFoundError may escape Parser.Parse and is not declared or caught", got)
}

func TestDefaultSeverity(t *testing.T) {
	t.Parallel()
	require.Equal(t, SeverityInfo, DefaultSeverity(InfoPropagated))
	require.Equal(t, SeverityWarning, DefaultSeverity(Unhandled))
}

func TestDiagnostic_KeyDedupesIdenticalEntries(t *testing.T) {
	t.Parallel()
	a := Diagnostic{Kind: Unhandled, Pos: 10, End: 12, Args: []any{"NotFoundError"}}
	b := Diagnostic{Kind: Unhandled, Pos: 10, End: 12, Args: []any{"NotFoundError"}}
	c := Diagnostic{Kind: Unhandled, Pos: 10, End: 12, Args: []any{"TimeoutError"}}
	require.Equal(t, a.key(), b.key())
	require.NotEqual(t, a.key(), c.key())
}
