package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ZeroValue(t *testing.T) {
	var m Memory

	key, err := m.Get()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestMemory_SetOverwrites(t *testing.T) {
	m := NewMemory("k0")

	require.NoError(t, m.Set("k1"))
	require.NoError(t, m.Set("k2"))

	key, err := m.Get()
	require.NoError(t, err)
	assert.Equal(t, "k2", key)
}

func TestMemory_Concurrent(t *testing.T) {
	m := &Memory{}
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.Set("k")
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Get()
		}()
	}
	wg.Wait()

	key, _ := m.Get()
	assert.Equal(t, "k", key)
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nope", "credentials.yaml"))

	key, err := f.Get()
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestFile_SetThenGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local", "credentials.yaml")
	f := NewFile(path)

	require.NoError(t, f.Set("k1"))

	key, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, "k1", key)

	// A second provider reading the same file sees the persisted key.
	key, err = NewFile(path).Get()
	require.NoError(t, err)
	assert.Equal(t, "k1", key)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_SetPreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("OTHER: keep\nGEMINI_KEY: old\n"), 0o600))

	f := NewFile(path)
	require.NoError(t, f.Set("new"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OTHER: keep")
	assert.Contains(t, string(data), "GEMINI_KEY: new")
}

func TestFile_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	f := NewFile(path)
	key, err := f.Get()
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, f.Set("k"))
	key, err = f.Get()
	require.NoError(t, err)
	assert.Equal(t, "k", key)
}

func TestFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[not: a map"), 0o600))

	_, err := NewFile(path).Get()
	require.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "parse")
}

func TestFile_SetReplacesMalformedFile(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bare key", data: "AIzaOldKeyPastedByHand\n"},
		{name: "broken yaml", data: "[not: a map"},
		{name: "list", data: "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			f := NewFile(path)
			require.NoError(t, f.Set("k1"))

			key, err := f.Get()
			require.NoError(t, err)
			assert.Equal(t, "k1", key)

			// Later writes keep working.
			require.NoError(t, f.Set("k2"))
			key, err = NewFile(path).Get()
			require.NoError(t, err)
			assert.Equal(t, "k2", key)
		})
	}
}

func TestWithEnvFallback(t *testing.T) {
	t.Setenv("NMAPSUM_TEST_KEY", "from-env")

	m := &Memory{}
	p := WithEnvFallback(m, "NMAPSUM_TEST_KEY")

	key, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	require.NoError(t, p.Set("stored"))
	key, err = p.Get()
	require.NoError(t, err)
	assert.Equal(t, "stored", key)

	stored, _ := m.Get()
	assert.Equal(t, "stored", stored)
}

type failingProvider struct{}

func (failingProvider) Get() (string, error) { return "", errors.New("boom") }
func (failingProvider) Set(string) error     { return errors.New("boom") }

func TestWithEnvFallback_PropagatesError(t *testing.T) {
	t.Setenv("NMAPSUM_TEST_KEY", "from-env")

	_, err := WithEnvFallback(failingProvider{}, "NMAPSUM_TEST_KEY").Get()
	assert.EqualError(t, err, "boom")
}
