package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docscheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: docs\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "docs", cfg.Root)
	require.Equal(t, "text", cfg.Format)
	require.Contains(t, cfg.Extensions, ".md")
	require.Equal(t, 10, cfg.External.MaxConcurrent)
	require.Equal(t, "10s", cfg.External.RequestTimeout)
	require.Equal(t, "docscheck.broken_links", cfg.Events.Subject)
	require.Equal(t, "2s", cfg.Watch.Debounce)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("DOCSCHECK_TEST_ROOT", "manual")

	dir := t.TempDir()
	path := filepath.Join(dir, "docscheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: ${DOCSCHECK_TEST_ROOT}\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "manual", cfg.Root)
}

func TestLoadOrDefault_MissingDefaultPathUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := LoadOrDefault(DefaultConfigPath)
	require.NoError(t, err)
	require.Equal(t, "text", cfg.Format)
}

func TestInit_WritesExampleAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docscheck.yaml")

	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "docs", cfg.Root)
	require.False(t, cfg.External.Enabled)

	err = Init(path, false)
	require.Error(t, err)

	require.NoError(t, Init(path, true))
}
