package nmapdir

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_PathAccessors(t *testing.T) {
	d := New("/project/.nmapsum")

	assert.Equal(t, "/project/.nmapsum", d.Root())
	assert.Equal(t, "/project/.nmapsum/config.yaml", d.ConfigPath())
	assert.Equal(t, "/project/.nmapsum/local", d.LocalDir())
	assert.Equal(t, "/project/.nmapsum/local/credentials.yaml", d.CredentialsPath())
	assert.Equal(t, "/project/.nmapsum/local/nmapsum.log", d.LogPath())
	assert.Equal(t, "/project/.nmapsum/.gitignore", d.GitignorePath())
}

func TestDir_RelativeBecomesAbsolute(t *testing.T) {
	d := New(".nmapsum")
	assert.True(t, filepath.IsAbs(d.Root()))
}

func TestDir_Exists(t *testing.T) {
	tmp := t.TempDir()

	assert.False(t, New(filepath.Join(tmp, "missing")).Exists())
	assert.True(t, New(tmp).Exists())
}

func TestDir_EnsureStructure(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), ".nmapsum"))

	require.NoError(t, d.EnsureStructure())
	assert.True(t, d.Exists())

	info, err := os.Stat(d.LocalDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "local/\n", string(data))
}

func TestDir_EnsureStructureKeepsExistingGitignore(t *testing.T) {
	d := New(t.TempDir())
	require.NoError(t, os.WriteFile(d.GitignorePath(), []byte("custom\n"), 0o600))

	require.NoError(t, d.EnsureStructure())
	require.NoError(t, d.EnsureStructure())

	data, err := os.ReadFile(d.GitignorePath())
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(data))
}
