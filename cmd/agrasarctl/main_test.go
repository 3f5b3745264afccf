package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVillagesList(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("SYSTEM_PROMPT_PATH", "")
	t.Setenv("SCHEMES_PATH", "")
	t.Setenv("QDRANT_URL", "")

	out, err := execute(t, "villages", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Rampur")
}

func TestForecastGenerateRejectsBadDate(t *testing.T) {
	_, err := execute(t, "forecast", "generate", "--village", "V1", "--start", "March 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --start")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := execute(t, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestKnowledgeIndexRequiresQdrant(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("QDRANT_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("SYSTEM_PROMPT_PATH", "")
	t.Setenv("SCHEMES_PATH", "")

	_, err := execute(t, "knowledge", "index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QDRANT_URL")
}

func TestForecastGenerateMigrationFlagUsage(t *testing.T) {
	flag := forecastGenerateCmd.Flags().Lookup("migration")
	require.NotNil(t, flag)
	assert.Equal(t, "migration adjustment (percent)", flag.Usage)
}
