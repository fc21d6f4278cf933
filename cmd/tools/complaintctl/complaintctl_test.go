package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModelsDir = "../../../internal/classifier/testdata"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// ==========================
// classify / normalize
// ==========================

func TestClassify_FromArgs(t *testing.T) {
	out, err := execute(t, "", "classify", "--models-dir", testModelsDir, "--explain=false",
		"I", "was", "charged", "twice")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got, "category")
	assert.Contains(t, got, "priority")
	assert.NotContains(t, got, "normalized_text")
}

func TestClassify_ExplainFromStdin(t *testing.T) {
	out, err := execute(t, "I was charged twice for one order\n",
		"classify", "--models-dir", testModelsDir, "--explain")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "High", got["priority"])
	assert.NotEmpty(t, got["normalized_text"])
	assert.NotEmpty(t, got["rule_pattern"])
}

func TestClassify_EmptyText(t *testing.T) {
	_, err := execute(t, "   ", "classify", "--models-dir", testModelsDir, "--explain=false")
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	out, err := execute(t, "", "normalize", "--models-dir", testModelsDir, "The", "Packages", "ARRIVED!")
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(strings.TrimSpace(out)), strings.TrimSpace(out))
	assert.NotContains(t, out, "!")
}

// ==========================
// models inspect
// ==========================

func TestModelsInspect(t *testing.T) {
	out, err := execute(t, "", "models", "inspect", "--models-dir", testModelsDir)
	require.NoError(t, err)

	var infos []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.NotEmpty(t, infos[0]["labels"])
}

func TestModelsInspect_MissingDir(t *testing.T) {
	_, err := execute(t, "", "models", "inspect", "--models-dir", t.TempDir())
	require.Error(t, err)
}

// ==========================
// registry
// ==========================

func TestRegistryValidate(t *testing.T) {
	out, err := execute(t, "", "registry", "validate", "--path", "../../../configs/activity-registry.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Registry validation passed. Found 2 activities.")
}

func TestRegistryValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "", "registry", "validate", "--path", "does-not-exist.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load registry")
}
