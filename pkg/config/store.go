package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/gwstream/pkg/dotdir"
)

const (
	fileName = "config.toml"

	// CurrentV is the only config.toml version understood so far.
	CurrentV = 0
)

// ErrNoConfigDir is returned by Save on a Store with no directory.
var ErrNoConfigDir = errors.New("no .gwstream directory to save config in")

// Store reads and writes config.toml inside a resolved .gwstream directory.
// The zero Store loads defaults and refuses to save.
type Store struct {
	path string
}

// NewStore resolves the .gwstream directory, preferring override when set.
func NewStore(override string) (*Store, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dir, fileName)}, nil
}

// Path is the config.toml location, or "" for the zero Store.
func (s *Store) Path() string {
	return s.path
}

// Load reads config.toml. A missing file yields NewDefaultConfig and fields
// absent from the file keep their defaults.
func (s *Store) Load() (*Config, error) {
	if s.path == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewDefaultConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	return cfg, nil
}

// Save writes cfg as TOML with owner-only permissions, since it may hold
// gateway.api_key.
func (s *Store) Save(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if s.path == "" {
		return ErrNoConfigDir
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the string form of one key.
func (s *Store) Get(name string) (string, error) {
	k, err := lookup(name)
	if err != nil {
		return "", err
	}
	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

// Set validates and stores one key, leaving the rest of the file intact.
func (s *Store) Set(name, value string) error {
	k, err := lookup(name)
	if err != nil {
		return err
	}
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	if err := k.set(cfg, value); err != nil {
		return err
	}
	return s.Save(cfg)
}

// ParseConfigTOML decodes config.toml bytes. An explicit version other than
// CurrentV is rejected.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	if cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	return cfg, nil
}

func fillDefaults(cfg *Config) {
	d := NewDefaultConfig()

	orDefault(&cfg.Gateway.BaseURL, d.Gateway.BaseURL)
	orDefault(&cfg.Gateway.Model, d.Gateway.Model)
	orDefault(&cfg.Gateway.Timeout, d.Gateway.Timeout)
	orDefault(&cfg.EventStream.Provider, d.EventStream.Provider)
	orDefault(&cfg.EventStream.Topic, d.EventStream.Topic)
	orDefault(&cfg.EventStream.QueueSize, d.EventStream.QueueSize)
	orDefault(&cfg.Replay.Listen, d.Replay.Listen)
}

func orDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}
