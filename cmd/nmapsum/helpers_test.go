package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/nmapsum/pkg/nmapdir"
)

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NMAPSUM_TEST_DOTENV=from-file\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("NMAPSUM_TEST_DOTENV") })

		require.NoError(t, loadDotEnv(path))
		assert.Equal(t, "from-file", os.Getenv("NMAPSUM_TEST_DOTENV"))
	})
}

func TestResolveConfigPath(t *testing.T) {
	dir := nmapdir.New(t.TempDir())

	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml", dir))
	assert.Equal(t, "nmapsum.yaml", resolveConfigPath("", dir))

	require.NoError(t, os.WriteFile(dir.ConfigPath(), []byte("model: gemini-pro\n"), 0o600))
	assert.Equal(t, dir.ConfigPath(), resolveConfigPath("", dir))
}

func TestReadScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.txt")
	require.NoError(t, os.WriteFile(path, []byte("PORT 22/tcp open ssh"), 0o600))

	got, err := readScan(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "PORT 22/tcp open ssh", got)

	got, err = readScan("-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readScan("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = readScan(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestBuildDeps_LogFile(t *testing.T) {
	t.Setenv("NMAPSUM_LOG_LEVEL", "debug")
	root := filepath.Join(t.TempDir(), ".nmapsum")

	d, err := buildDeps(commonFlags{dir: root, env: filepath.Join(root, "missing.env")}, logFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	assert.Equal(t, "debug", d.cfg.LogLevel)
	assert.FileExists(t, d.dir.LogPath())
	assert.FileExists(t, d.dir.GitignorePath())
	assert.NotNil(t, d.sum)
}

func TestBuildDeps_InvalidConfig(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log_level: loud\n"), 0o600))
	t.Setenv("NMAPSUM_LOG_LEVEL", "")

	_, err := buildDeps(commonFlags{config: cfgPath, dir: root, env: filepath.Join(root, "missing.env")}, logStderr)
	assert.Error(t, err)
}
