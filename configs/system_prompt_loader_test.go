package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSystemPromptEmbedded(t *testing.T) {
	cfg, err := LoadSystemPrompt("")
	require.NoError(t, err)

	assert.Equal(t, "GramSathi", cfg.System.Name)
	assert.Equal(t, 370, cfg.Wages.DailyWage)
	assert.Equal(t, 100, cfg.Wages.EmploymentDays)
	assert.Len(t, cfg.Languages, 25)
	assert.NotEmpty(t, cfg.Forecast.ExpertInstruction)
}

func TestLanguageName(t *testing.T) {
	cfg, err := LoadSystemPrompt("")
	require.NoError(t, err)

	assert.Equal(t, "Garhwali", cfg.LanguageName("gar"))
	assert.Equal(t, "Garhwali", cfg.LanguageName(" GAR "))
	// 未知・未指定のコードは英語にフォールバック
	assert.Equal(t, "English", cfg.LanguageName("xx"))
	assert.Equal(t, "English", cfg.LanguageName(""))
}

func TestBuildSystemPrompt(t *testing.T) {
	cfg, err := LoadSystemPrompt("")
	require.NoError(t, err)

	prompt := cfg.BuildSystemPrompt(cfg.LanguageName("kum"))

	assert.Contains(t, prompt, "You are GramSathi")
	assert.Contains(t, prompt, "IMPORTANT: Respond ONLY in Kumaoni language.")
	assert.Contains(t, prompt, "Daily wage: ₹370")
	assert.Contains(t, prompt, "100 days/year")
	assert.Contains(t, prompt, "1. Provide information about MGNREGA and rural schemes")
}

func TestParseSystemPromptDefaults(t *testing.T) {
	cfg, err := ParseSystemPrompt([]byte("system:\n  name: Test\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDailyWage, cfg.Wages.DailyWage)
	assert.Equal(t, DefaultEmploymentDays, cfg.Wages.EmploymentDays)
	assert.Equal(t, DefaultLanguageName, cfg.LanguageName("hi"))
}

func TestParseSystemPromptInvalid(t *testing.T) {
	_, err := ParseSystemPrompt([]byte("system: [unterminated"))
	assert.Error(t, err)
}

func TestLoadSystemPromptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wages:\n  daily_wage: 400\nlanguages:\n  hi: Hindi\n"), 0o600))

	cfg, err := LoadSystemPrompt(path)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Wages.DailyWage)
	assert.Equal(t, "Hindi", cfg.LanguageName("hi"))

	_, err = LoadSystemPrompt(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadSeedVillages(t *testing.T) {
	seed, err := LoadSeed("")
	require.NoError(t, err)
	villages := seed.Villages
	require.NotEmpty(t, villages)

	assert.Equal(t, "V1", villages[0].ID)
	assert.Equal(t, "Rampur", villages[0].Name)
	assert.Equal(t, 1200, villages[0].Population)
	assert.Equal(t, 240, villages[0].Households)
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed("")
	require.NoError(t, err)

	require.Len(t, seed.Assets, 4)
	assert.Equal(t, "Poor", seed.Assets[0].Condition)
	require.NotNil(t, seed.Assets[0].LastInspection)
	assert.Equal(t, "2024-11-12", seed.Assets[0].LastInspection.String())
	assert.Nil(t, seed.Assets[2].LastInspection)

	require.Len(t, seed.WorkOrders, 3)
	assert.Equal(t, "Open", seed.WorkOrders[0].Status)
	assert.Equal(t, "2025-03-31", seed.WorkOrders[0].EndDate.String())
	assert.Nil(t, seed.WorkOrders[1].EndDate)
	assert.Equal(t, "Completed", seed.WorkOrders[2].Status)
}

func TestLoadSeedRejectsBadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("work_orders:\n  - id: \"W\"\n    start_date: \"03/01/2025\"\n"), 0o600))

	_, err := LoadSeed(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work order W")
}

func TestLoadSchemes(t *testing.T) {
	schemes, err := LoadSchemes("")
	require.NoError(t, err)
	require.NotEmpty(t, schemes)

	assert.Equal(t, "mgnrega", schemes[0].ID)
	assert.Contains(t, schemes[0].Text(), "Eligibility:")
	for _, s := range schemes {
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Name)
	}
}
