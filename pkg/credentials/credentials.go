// Package credentials stores the Gemini API key between sessions.
//
// A [Provider] is injected into whatever reads or persists the key, instead
// of reaching for process-wide storage. [File] persists to a YAML file,
// [Memory] keeps the key in-process, and [WithEnvFallback] lets an
// environment variable stand in when nothing has been stored yet.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// KeyName is the name the API key is stored under.
const KeyName = "GEMINI_KEY"

// ErrMalformed is returned by File.Get when the backing file is not a YAML map.
var ErrMalformed = errors.New("credentials: malformed file")

// Provider reads and overwrites the stored API key. Get returns an empty
// string when nothing is stored.
type Provider interface {
	Get() (string, error)
	Set(key string) error
}

// --- Memory ---

var _ Provider = (*Memory)(nil)

// Memory is a thread-safe in-process Provider. The zero value is ready to use.
type Memory struct {
	mu  sync.RWMutex
	key string
}

// NewMemory returns a Memory holding key.
func NewMemory(key string) *Memory {
	return &Memory{key: key}
}

func (m *Memory) Get() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.key, nil
}

func (m *Memory) Set(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.key = key
	return nil
}

// --- File ---

var _ Provider = (*File)(nil)

// File persists the key in a YAML map under KeyName. Other entries in the
// file are preserved on write. A file that does not parse is replaced on the
// next Set.
type File struct {
	// Log receives a warning when a malformed file is replaced. Nil discards.
	Log *slog.Logger

	path string
	mu   sync.Mutex
}

// NewFile returns a File backed by path. The file and its parent directory
// are created on the first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Get() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", err
	}
	return entries[KeyName], nil
}

func (f *File) Set(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	switch {
	case errors.Is(err, ErrMalformed):
		f.logger().Warn("replacing unreadable credentials file", "path", f.path, "err", err)
		entries = map[string]string{}
	case err != nil:
		return err
	}
	entries[KeyName] = key

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("credentials: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("credentials: create dir: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("credentials: write: %w", err)
	}

	return nil
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credentials: read: %w", err)
	}

	entries := map[string]string{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrMalformed, f.path, err)
	}
	if entries == nil {
		entries = map[string]string{}
	}

	return entries, nil
}

func (f *File) logger() *slog.Logger {
	if f.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.Log
}

// --- env fallback ---

type envFallback struct {
	Provider
	envVar string
}

// WithEnvFallback wraps p so that Get returns the value of envVar when p
// holds no key. Set always writes to p.
func WithEnvFallback(p Provider, envVar string) Provider {
	return envFallback{Provider: p, envVar: envVar}
}

func (e envFallback) Get() (string, error) {
	key, err := e.Provider.Get()
	if err != nil || key != "" {
		return key, err
	}
	return os.Getenv(e.envVar), nil
}
