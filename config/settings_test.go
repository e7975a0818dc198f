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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cxcheck/cxcheck/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	c := config.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, c.LoadError)
	require.Equal(t, config.Strict, c.DefaultClassification)
	require.Equal(t, config.Strict, c.Classify("example.com/pkg.SomeError"))
}

func TestLoad_MalformedFileFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o600))

	c := config.Load(path)
	require.Error(t, c.LoadError)
	require.Equal(t, config.Strict, c.DefaultClassification)
}

func TestLoad_LegacyIgnoredExceptionsMergeAsIgnored(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{
		"defaultExceptionClassification": "Strict",
		"ignoredExceptions": ["example.com/pkg.NoisyError"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c := config.Load(path)
	require.NoError(t, c.LoadError)
	require.Equal(t, config.Ignored, c.Classify("example.com/pkg.NoisyError"))
	require.Equal(t, config.Strict, c.Classify("example.com/pkg.OtherError"))
}

func TestLoad_LegacyInformationalExceptionsMergeAsNonStrict(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{
		"informationalExceptions": {"example.com/pkg.NoisyError": "Throw"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c := config.Load(path)
	require.NoError(t, c.LoadError)
	require.Equal(t, config.NonStrict, c.Classify("example.com/pkg.NoisyError"))
	require.Equal(t, config.InfoThrow, c.InfoModeFor("example.com/pkg.NoisyError"))
}

func TestLoad_ExplicitExceptionsMap(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{
		"defaultExceptionClassification": "NonStrict",
		"exceptions": {"example.com/pkg.CriticalError": "Strict"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c := config.Load(path)
	require.NoError(t, c.LoadError)
	require.Equal(t, config.Strict, c.Classify("example.com/pkg.CriticalError"))
	require.Equal(t, config.NonStrict, c.Classify("example.com/pkg.AnythingElse"))
}
