package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klausman/pngme/png"
	"github.com/klausman/pngme/seal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pngme.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level=warn, got %s", cfg.LogLevel)
	}
	if cfg.ScryptWorkFactor != seal.DefaultWorkFactor {
		t.Errorf("expected scrypt_work_factor=%d, got %d", seal.DefaultWorkFactor, cfg.ScryptWorkFactor)
	}
	if cfg.ChunkType != "" || cfg.KeyFile != "" {
		t.Errorf("expected no chunk_type or key_file, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
chunk_type: ruSt
key_file: /etc/pngme/key
log_level: debug
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := Config{
		ChunkType:        "ruSt",
		KeyFile:          "/etc/pngme/key",
		LogLevel:         "debug",
		ScryptWorkFactor: seal.DefaultWorkFactor,
	}
	if *cfg != want {
		t.Errorf("LoadFile = %+v, want %+v", *cfg, want)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"digit in chunk type", "chunk_type: ru1t\n", png.ErrInvalidByte},
		{"short chunk type", "chunk_type: ruS\n", png.ErrInvalidLength},
		{"reserved bit", "chunk_type: rust\n", nil},
		{"work factor", "scrypt_work_factor: 40\n", nil},
		{"log level", "log_level: loud\n", nil},
		{"not yaml", "chunk_type: [\n", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("LoadFile accepted an invalid config")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("LoadFile error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestConfigFromEnvironment(t *testing.T) {
	path := writeConfig(t, "chunk_type: ruSt\n")
	ta := newTestApp(t)
	t.Setenv("PNGME_CONFIG", path)

	file := writeTestPNG(t)
	ta.mustRun(t, "encode", file, "from the config")
	if _, ok := readTestPNG(t, file).ChunkByType("ruSt"); !ok {
		t.Error("encode did not use the configured chunk type")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := parseLevel("verbose"); err == nil {
		t.Error("parseLevel accepted an unknown level")
	}
}

func TestReadKeyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "key")
	if err := os.WriteFile(path, []byte("s3cret\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if key, err := readKeyFile(path); err != nil || key != "s3cret" {
		t.Errorf("readKeyFile = %q, %v", key, err)
	}

	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readKeyFile(empty); err == nil {
		t.Error("readKeyFile accepted an empty key")
	}
}
