package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir: "/home/user/.local/share/blitmigrate",
		LogDir:  "/var/log/blitmigrate",
		Journal: JournalConfig{Type: "sqlite", DataDir: "/home/user/.local/share/blitmigrate/journal"},
		Assets:  AssetsConfig{Type: "filesystem", VerifyChecksums: true},
		Staging: StagingConfig{KeepOnFailure: true},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if *got != *original {
		t.Errorf("Read() = %+v, want %+v", got, original)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/blit")

	if cfg.BaseDir != "/data/blit" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/blit")
	}
	if cfg.LogDir != "/data/blit/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/blit/log")
	}
	if cfg.Journal.Type != "sqlite" {
		t.Errorf("Journal.Type = %q, want %q", cfg.Journal.Type, "sqlite")
	}
	if cfg.Journal.DataDir != "/data/blit/journal" {
		t.Errorf("Journal.DataDir = %q, want %q", cfg.Journal.DataDir, "/data/blit/journal")
	}
	if cfg.Assets.Type != "filesystem" || !cfg.Assets.VerifyChecksums {
		t.Errorf("Assets = %+v, want filesystem with checksum verification", cfg.Assets)
	}
	if cfg.Staging.KeepOnFailure {
		t.Error("Staging.KeepOnFailure = true, want false")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "blitmigrate.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "blitmigrate.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "blitmigrate.toml")
		cfg := NewConfig(dir)
		cfg.Journal = JournalConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Journal.Type != "memory" {
			t.Errorf("Journal.Type = %q, want %q", got.Journal.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/blitmigrate.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "blitmigrate.toml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		return path
	}

	t.Run("missing file yields defaults", func(t *testing.T) {
		got, err := Load(filepath.Join(t.TempDir(), "absent.toml"), "/base")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if *got != *NewConfig("/base") {
			t.Errorf("Load() = %+v, want defaults", got)
		}
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		path := write(t, "[staging]\nkeep_on_failure = true\n")

		got, err := Load(path, "/base")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !got.Staging.KeepOnFailure {
			t.Error("Staging.KeepOnFailure = false, want true")
		}
		if !got.Assets.VerifyChecksums {
			t.Error("Assets.VerifyChecksums = false, want default true")
		}
		if got.Journal.DataDir != "/base/journal" {
			t.Errorf("Journal.DataDir = %q, want %q", got.Journal.DataDir, "/base/journal")
		}
	})

	t.Run("base_dir moves derived directories", func(t *testing.T) {
		path := write(t, "base_dir = \"/elsewhere\"\n[journal]\ntype = \"sqlite\"\n")

		got, err := Load(path, "/base")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.LogDir != "/elsewhere/log" {
			t.Errorf("LogDir = %q, want %q", got.LogDir, "/elsewhere/log")
		}
		if got.Journal.DataDir != "/elsewhere/journal" {
			t.Errorf("Journal.DataDir = %q, want %q", got.Journal.DataDir, "/elsewhere/journal")
		}
	})

	t.Run("explicit log_dir wins over base_dir", func(t *testing.T) {
		path := write(t, "base_dir = \"/elsewhere\"\nlog_dir = \"/logs\"\n")

		got, err := Load(path, "/base")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.LogDir != "/logs" {
			t.Errorf("LogDir = %q, want %q", got.LogDir, "/logs")
		}
	})

	t.Run("unknown key is an error", func(t *testing.T) {
		path := write(t, "[remote]\nname = \"x\"\n")

		if _, err := Load(path, "/base"); err == nil {
			t.Fatal("Load() expected error for unknown key")
		}
	})

	t.Run("invalid toml is an error", func(t *testing.T) {
		path := write(t, "log_dir = \n")

		if _, err := Load(path, "/base"); err == nil {
			t.Fatal("Load() expected error for invalid TOML")
		}
	})
}
