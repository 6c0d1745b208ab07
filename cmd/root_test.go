package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", config.APIURL)
	assert.Equal(t, config.APIURL, config.Catalog.APIURL)
	assert.Equal(t, "heuristic", config.AI.Provider)
	assert.Equal(t, 60.0, config.Matching.GoodMatchThreshold)
	assert.Equal(t, 2, config.Matching.MinGoodMatches)
	assert.Equal(t, 5, config.Matching.Limit)
	assert.Equal(t, 0.75, config.Matching.RankThreshold)
	assert.Equal(t, 3001, config.Server.Port)
	assert.Equal(t, 20*time.Second, config.Timeouts.Classify)
}

func TestGetConfigEnvironment(t *testing.T) {
	t.Setenv("SKILLMATCH_API_URL", "http://catalog.internal/api")
	t.Setenv("SKILLMATCH_MATCHING_GOOD_MATCH_THRESHOLD", "70")
	t.Setenv("SKILLMATCH_SERVER_PORT", "8080")
	t.Setenv("SKILLMATCH_TIMEOUTS_SEARCH", "2s")

	config, err := getConfig(newTestViper())
	require.NoError(t, err)

	assert.Equal(t, "http://catalog.internal/api", config.Catalog.APIURL)
	assert.Equal(t, 70.0, config.Matching.GoodMatchThreshold)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 2*time.Second, config.Timeouts.Search)
}

func TestGetConfigInvalid(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"bad provider":  func(v *viper.Viper) { v.Set("ai.provider", "llama") },
		"bad threshold": func(v *viper.Viper) { v.Set("matching.good-match-threshold", 0) },
		"bad url":       func(v *viper.Viper) { v.Set("api-url", "not a url") },
		"bad rank":      func(v *viper.Viper) { v.Set("matching.rank-threshold", 1.5) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := newTestViper()
			mutate(v)
			_, err := getConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestNewClassifierWithoutCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	classifier, llm, err := newClassifier(t.Context(), AIConfig{Provider: "gemini"}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, llm)
	assert.Equal(t, "heuristic", classifier.Name())

	_, _, err = newClassifier(t.Context(), AIConfig{Provider: "llama"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNewClassifierWithCredentials(t *testing.T) {
	classifier, llm, err := newClassifier(t.Context(), AIConfig{
		Provider: "openai",
		OpenAI:   ProviderConfig{APIKey: "sk-test"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, llm)
	assert.Equal(t, "openai", classifier.Name())
}

func TestRank(t *testing.T) {
	dir := t.TempDir()
	jobsFile := filepath.Join(dir, "jobs.json")
	evidenceFile := filepath.Join(dir, "evidence.json")

	require.NoError(t, os.WriteFile(jobsFile, []byte(`[
		{"id": "a", "title": "Go Developer", "required_skills": ["go", "docker"]},
		{"id": "b", "title": "Designer", "required_skills": ["figma"]}
	]`), 0o600))
	require.NoError(t, os.WriteFile(evidenceFile, []byte(`[
		{"skill": "go", "credential_count": 1, "experience_count": 2}
	]`), 0o600))

	config, err := getConfig(newTestViper())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, rank(&out, jobsFile, evidenceFile, config.Matching))

	var report rankReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.Jobs, 2)
	assert.Equal(t, "a", report.Jobs[0].ID)
	assert.Equal(t, []string{"go"}, report.Jobs[0].MatchedSkills)
	assert.Equal(t, []string{"docker"}, report.Jobs[0].MissingSkills)
	assert.Equal(t, 0.0, report.Jobs[1].MatchScore)
	require.NotNil(t, report.Analysis)
	assert.True(t, report.Analysis.NeedsTraining)

	assert.Error(t, rank(&out, filepath.Join(dir, "missing.json"), evidenceFile, config.Matching))
}
