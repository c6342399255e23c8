package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildFromFlags(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "answers.csv")
	output := filepath.Join(dir, "out", "summary.json")
	csv := "timestamp,language,player_name,Q2_time,Q3_time,Q4_day\n" +
		"2025-01-01T00:00:00Z,en,A,m,x,d1\n" +
		"2025-01-02T00:00:00Z,en,A,n,x,d1\n"
	require.NoError(t, os.WriteFile(input, []byte(csv), 0o644))

	out, err := runCLI(t, "--config", filepath.Join(dir, "none.toml"), "--input", input, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(2), doc["total_rows"])
	assert.Equal(t, float64(1), doc["unique_players"])
}

func TestBuildConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "answers.csv")
	fromFile := filepath.Join(dir, "file.json")
	fromFlag := filepath.Join(dir, "flag.json")
	require.NoError(t, os.WriteFile(input, []byte("timestamp,player_name\n1,A\n"), 0o644))

	cfgPath := filepath.Join(dir, "summary.toml")
	toml := "[summary]\ninput = \"" + filepath.ToSlash(input) + "\"\noutput = \"" + filepath.ToSlash(fromFile) + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(toml), 0o644))

	_, err := runCLI(t, "build", "--config", cfgPath, "--output", fromFlag)
	require.NoError(t, err)

	assert.FileExists(t, fromFlag)
	assert.NoFileExists(t, fromFile)
}

func TestBuildMissingInputIsNoop(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "summary.json")

	out, err := runCLI(t, "--config", filepath.Join(dir, "none.toml"),
		"--input", filepath.Join(dir, "missing.csv"), "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing written")
	assert.NoFileExists(t, output)
}

func TestBuildWriteFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "answers.csv")
	require.NoError(t, os.WriteFile(input, []byte("timestamp,player_name\n1,A\n"), 0o644))
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := runCLI(t, "--config", filepath.Join(dir, "none.toml"),
		"--input", input, "--output", filepath.Join(blocker, "summary.json"))
	assert.Error(t, err)
}
