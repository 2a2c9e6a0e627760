package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for blitmigrate.
type Config struct {
	BaseDir string        `toml:"base_dir"`
	LogDir  string        `toml:"log_dir"`
	Journal JournalConfig `toml:"journal"`
	Assets  AssetsConfig  `toml:"assets"`
	Staging StagingConfig `toml:"staging"`
}

// JournalConfig represents configuration for the run journal.
// The Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// AssetsConfig represents configuration for copying cel images.
type AssetsConfig struct {
	Type string `toml:"type"` // "filesystem" or "memory"
	// VerifyChecksums re-reads each copied asset and compares its SHA-256
	// with the source's.
	VerifyChecksums bool `toml:"verify_checksums"`
}

// StagingConfig represents configuration for the staging directory.
type StagingConfig struct {
	// KeepOnFailure leaves the staging directory of a failed run on disk.
	KeepOnFailure bool `toml:"keep_on_failure"`
}

// NewConfig creates a Config rooted at baseDir with every section set to
// its default.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Journal: JournalConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "journal"),
		},
		Assets: AssetsConfig{
			Type:            "filesystem",
			VerifyChecksums: true,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path on top of NewConfig(baseDir). A missing
// file yields the defaults unchanged. Keys absent from the file keep their
// default, and directories derived from base_dir follow it unless set
// explicitly.
func Load(path, baseDir string) (*Config, error) {
	cfg := NewConfig(baseDir)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	md, err := toml.NewDecoder(f).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("reading config from %s: unknown keys %v", path, undecoded)
	}

	if md.IsDefined("base_dir") {
		if !md.IsDefined("log_dir") {
			cfg.LogDir = filepath.Join(cfg.BaseDir, "log")
		}
		if !md.IsDefined("journal", "data_dir") {
			cfg.Journal.DataDir = filepath.Join(cfg.BaseDir, "journal")
		}
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
