// Copyright 2023 - 2026 The cubectl Authors
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

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "CareProviders.nt"), OutputPath("out", "CareProviders", ".nt"))
	assert.Equal(t, "MeanPopulation2021.json", OutputPath("", "MeanPopulation2021", ".json"))
}

func TestCreateOutputFileOrDie(t *testing.T) {
	dir := t.TempDir()

	t.Run("new file", func(t *testing.T) {
		path := OutputPath(dir, "CareProviders", ".nt")

		file := CreateOutputFileOrDie(path)
		defer file.Close()

		info, err := file.Stat()
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
		_, err = file.WriteString("<a> <b> <c> .\n")
		assert.NoError(t, err)
	})

	t.Run("nested directory", func(t *testing.T) {
		nested := filepath.Join(dir, "cubes", "2021")
		require.NoError(t, os.MkdirAll(nested, 0755))

		file := CreateOutputFileOrDie(OutputPath(nested, "MeanPopulation2021", ".json"))
		defer file.Close()

		_, err := os.Stat(filepath.Join(nested, "MeanPopulation2021.json"))
		assert.NoError(t, err)
	})

	// An existing file makes the command exit with code 3, which can't be
	// observed in process. Check the condition leading to the exit instead.
	t.Run("existing file", func(t *testing.T) {
		path := OutputPath(dir, "Existing", ".nt")
		require.NoError(t, os.WriteFile(path, []byte("keep"), 0644))

		_, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		assert.True(t, os.IsExist(err))

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(b))
	})
}
