package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/germanamz/nmapsum/pkg/config"
	"github.com/germanamz/nmapsum/pkg/credentials"
	"github.com/germanamz/nmapsum/pkg/logger"
	"github.com/germanamz/nmapsum/pkg/nmapdir"
	"github.com/germanamz/nmapsum/pkg/providers/gemini"
	"github.com/germanamz/nmapsum/pkg/summarizer"
)

// commonFlags are accepted by every command.
type commonFlags struct {
	config string
	dir    string
	env    string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "path to configuration file (default: .nmapsum/config.yaml or nmapsum.yaml)")
	fs.StringVar(&c.dir, "dir", ".nmapsum", "path to .nmapsum directory")
	fs.StringVar(&c.env, "env", ".env", "path to .env file (ignored if missing)")
}

// deps is everything a command needs to talk to the model.
type deps struct {
	cfg    config.Config
	dir    nmapdir.Dir
	creds  credentials.Provider
	client *gemini.Client
	sum    *summarizer.Summarizer
	log    *slog.Logger
	closer io.Closer
}

// logTarget says where a command's structured logs go.
type logTarget int

const (
	logStderr logTarget = iota
	logFile             // the TUI owns the terminal
)

func buildDeps(c commonFlags, target logTarget) (*deps, error) {
	if err := loadDotEnv(c.env); err != nil {
		return nil, err
	}

	dir := nmapdir.New(c.dir)

	cfg, err := config.Load(resolveConfigPath(c.config, dir))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, dir: dir}

	switch target {
	case logFile:
		if err := dir.EnsureStructure(); err != nil {
			return nil, err
		}
		log, closer, err := logger.NewFile(dir.LogPath(), cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		d.log, d.closer = log, closer
	default:
		d.log = logger.New(os.Stderr, cfg.LogLevel)
	}

	store := credentials.NewFile(dir.CredentialsPath())
	store.Log = d.log
	d.creds = credentials.WithEnvFallback(store, credentials.KeyName)
	d.client = gemini.NewClient(cfg.BaseURL, cfg.Model, nil)
	d.sum = summarizer.New(d.client, d.log)

	d.log.Debug("dependencies ready", "model", cfg.Model, "base_url", cfg.BaseURL, "dir", dir.Root())

	return d, nil
}

func (d *deps) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the config file to use. Priority:
// 1. Explicit --config flag (non-empty)
// 2. .nmapsum/config.yaml (if it exists)
// 3. nmapsum.yaml
//
// A path that does not exist yields the built-in defaults.
func resolveConfigPath(explicit string, dir nmapdir.Dir) string {
	if explicit != "" {
		return explicit
	}

	if _, err := os.Stat(dir.ConfigPath()); err == nil {
		return dir.ConfigPath()
	}

	return "nmapsum.yaml"
}

// readScan returns the scan text at path. "-" reads stdin; an empty path
// yields an empty scan.
func readScan(path string, stdin io.Reader) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read scan from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read scan: %w", err)
	}
	return string(data), nil
}
