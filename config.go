// Copyright 2023 Tobias Klausmann
// Licensed under the GPLv3, see COPYING for details
//

package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klausman/pngme/png"
	"github.com/klausman/pngme/seal"
)

// Config holds settings read from the file named by --config or
// $PNGME_CONFIG. There is no config file discovery. Flags override
// anything set here.
type Config struct {
	// ChunkType is used when a command is not given a chunk type.
	ChunkType string `yaml:"chunk_type"`

	// KeyFile holds the passphrase used when no key flag is given.
	KeyFile string `yaml:"key_file"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// ScryptWorkFactor is log2 of the scrypt N parameter used when
	// encrypting messages.
	ScryptWorkFactor int `yaml:"scrypt_work_factor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:         "warn",
		ScryptWorkFactor: seal.DefaultWorkFactor,
	}
}

// LoadFile reads the config file at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkType != "" {
		typ, err := png.ParseChunkType(c.ChunkType)
		if err != nil {
			return fmt.Errorf("chunk_type: %w", err)
		}
		if !typ.IsValid() {
			return fmt.Errorf("chunk_type: %s has a lowercase third letter", typ)
		}
	}
	if c.ScryptWorkFactor < 10 || c.ScryptWorkFactor > 22 {
		return fmt.Errorf("scrypt_work_factor: %d is outside 10..22", c.ScryptWorkFactor)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// readKeyFile reads a passphrase, dropping the trailing newline most editors
// and echo add.
func readKeyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading key file: %w", err)
	}
	key := strings.TrimRight(string(data), "\r\n")
	if key == "" {
		return "", fmt.Errorf("key file %s is empty", path)
	}
	return key, nil
}
