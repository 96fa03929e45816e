package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corovcam/cubectl/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtension(t *testing.T) {
	ext, err := extension("ntriples")
	require.NoError(t, err)
	assert.Equal(t, ".nt", ext)

	ext, err = extension("json")
	require.NoError(t, err)
	assert.Equal(t, ".json", ext)

	_, err = extension("turtle")
	assert.EqualError(t, err, "unknown format `turtle`, use ntriples or json")
}

func TestGenerateCmd_NTriples(t *testing.T) {
	stdout, stderr, err := execute(t, "generate", writeCube(t, careProvidersCSV))

	require.NoError(t, err)
	assert.Contains(t, stdout, "<https://ndbi046-martincorovcak.com/resources/observation-0000> <https://ndbi046-martincorovcak.com/ontology#numberOfCareProviders> \"2\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n")
	assert.Contains(t, stdout, `"Benešov"@cs`)
	assert.Contains(t, stderr, "CareProviders")
	assert.Contains(t, stderr, "3, 3, 0")
	assert.NotContains(t, stderr, "Violations:")
}

func TestGenerateCmd_JSON(t *testing.T) {
	stdout, _, err := execute(t, "generate", writeCube(t, careProvidersCSV), "--format", "json")

	require.NoError(t, err)
	var snapshot export.Snapshot
	require.NoError(t, json.Unmarshal([]byte(stdout), &snapshot))
	assert.Equal(t, "CareProviders", snapshot.Dataset.ID)
	require.Len(t, snapshot.Observations, 2)
	assert.Equal(t, "CZ0100", snapshot.Observations[0].Dimensions["county"])
	assert.Equal(t, 2.0, snapshot.Observations[0].Measures["numberOfCareProviders"])
}

func TestGenerateCmd_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "generate", writeCube(t, careProvidersCSV), "--format", "turtle")

	assert.EqualError(t, err, "unknown format `turtle`, use ntriples or json")
}

func TestGenerateCmd_OutputDir(t *testing.T) {
	outputDir := t.TempDir()

	stdout, _, err := execute(t, "generate", writeCube(t, careProvidersCSV), "--output-dir", outputDir)

	require.NoError(t, err)
	assert.Empty(t, stdout)
	b, err := os.ReadFile(filepath.Join(outputDir, "CareProviders.nt"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), " .\n"))
}

func TestGenerateCmd_SeveralCubesWithoutOutputDir(t *testing.T) {
	filename := writeCube(t, careProvidersCSV)

	_, _, err := execute(t, "generate", filename, filename)

	assert.EqualError(t, err, "more than one cube requires --output-dir")
}

func TestGenerateCmd_RowErrors(t *testing.T) {
	csv := careProvidersCSV + "CZ0311,Tábor,\n"

	_, stderr, err := execute(t, "generate", writeCube(t, csv))

	require.NoError(t, err)
	assert.Contains(t, stderr, "Row Errors:")
	assert.Contains(t, stderr, "row excluded")
}

func TestGenerateCmd_MissingInput(t *testing.T) {
	filename := writeCube(t, careProvidersCSV)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(filename), "care-providers.csv")))

	_, _, err := execute(t, "generate", filename)

	assert.ErrorContains(t, err, "error while building")
}
