// Package nmapdir encapsulates all path knowledge for the .nmapsum/ project
// directory: the config file, and the gitignored local/ directory holding
// the stored API key and the log file.
package nmapdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const gitignoreContent = "local/\n"

// Dir is a value object that resolves paths within a .nmapsum/ directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Root returns the absolute path to the .nmapsum/ directory.
func (d Dir) Root() string { return d.root }

// ConfigPath returns the path to the config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "config.yaml") }

// LocalDir returns the path to the local (gitignored) runtime state directory.
func (d Dir) LocalDir() string { return filepath.Join(d.root, "local") }

// CredentialsPath returns the path to the stored API key file.
func (d Dir) CredentialsPath() string { return filepath.Join(d.root, "local", "credentials.yaml") }

// LogPath returns the path to the log file written while the TUI runs.
func (d Dir) LogPath() string { return filepath.Join(d.root, "local", "nmapsum.log") }

// GitignorePath returns the path to the .gitignore file inside .nmapsum/.
func (d Dir) GitignorePath() string { return filepath.Join(d.root, ".gitignore") }

// Exists reports whether the root directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}

// EnsureStructure creates the root, local/ and .gitignore if they are
// missing. It is safe to call multiple times.
func (d Dir) EnsureStructure() error {
	if err := os.MkdirAll(d.LocalDir(), 0o750); err != nil {
		return fmt.Errorf("nmapdir: create local dir: %w", err)
	}

	if _, err := os.Stat(d.GitignorePath()); err == nil {
		return nil
	}

	if err := os.WriteFile(d.GitignorePath(), []byte(gitignoreContent), 0o600); err != nil {
		return fmt.Errorf("nmapdir: gitignore: %w", err)
	}

	return nil
}
