package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "  secret  ")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.True(t, cfg.GitHub.HasToken())
	assert.Equal(t, 15*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "survey", cfg.GitHub.Label)
	assert.Equal(t, "https://api.github.com/repos/aoz-jcf-1165/Ary-event-survey-web-2025.12/issues", cfg.GitHub.IssuesURL())
	assert.Equal(t, "memory", cfg.RateLimit.Storage)
	assert.Equal(t, "GET,POST,OPTIONS", cfg.CORS.AllowedMethods)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_OWNER", " acme ")
	t.Setenv("GITHUB_REPO", "answers")
	t.Setenv("GITHUB_API_URL", "http://localhost:9999/")
	t.Setenv("GITHUB_TIMEOUT", "2s")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.False(t, cfg.GitHub.HasToken())
	assert.Equal(t, 2*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, "http://localhost:9999/repos/acme/answers/issues", cfg.GitHub.IssuesURL())
}

func TestParse_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_STORAGE", "disk")
	_, err := Parse()
	require.Error(t, err)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	_, err = Parse()
	require.NoError(t, err)
}

func TestLoadEnv_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(present, []byte("SURVEYRELAY_TEST_VAR=from-file\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("SURVEYRELAY_TEST_VAR") })

	n, err := LoadEnv([]string{present, filepath.Join(dir, ".env.local")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "from-file", os.Getenv("SURVEYRELAY_TEST_VAR"))
}

func TestLoadSummaryConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadSummaryConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Summary.Input)

	path := filepath.Join(dir, "summary.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[summary]
input = "in.csv"
output = "out/summary.json"

[export]
repo = "answers"
`), 0o644))
	cfg, err = LoadSummaryConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Summary.Input)
	assert.Equal(t, "in.csv", *cfg.Summary.Input)
	assert.Equal(t, "out/summary.json", *cfg.Summary.Output)
	require.NotNil(t, cfg.Export.Repo)
	assert.Equal(t, "answers", *cfg.Export.Repo)
	assert.Nil(t, cfg.Export.Owner)

	_, err = LoadSummaryConfig("")
	require.Error(t, err)
}
