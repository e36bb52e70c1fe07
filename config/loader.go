// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global CurioConfig
	once   sync.Once
)

// Load ensures the config is loaded into the Global variable. The first
// run creates ~/.curio/curio.yaml with defaults. Environment variables
// (CURIO_ENDPOINT, CURIO_API_KEY, CURIO_WORKSPACE, CURIO_BATCH_SIZE,
// CURIO_CACHE_DIR, CURIO_LOG_LEVEL) override the file.
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not find the user's home directory: %w", err)
	}
	configPath := filepath.Join(home, ".curio", "curio.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf(" First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		return err
	}
	Global = cfg
	return nil
}

// LoadFile reads and parses one config file, applying environment
// overrides. Exported for tests and for callers managing their own path.
func LoadFile(path string) (CurioConfig, error) {
	var cfg CurioConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// applyEnv layers CURIO_* environment variables over the file values.
func applyEnv(cfg *CurioConfig) {
	if v := os.Getenv("CURIO_ENDPOINT"); v != "" {
		cfg.Server.Endpoint = v
	}
	if v := os.Getenv("CURIO_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("CURIO_WORKSPACE"); v != "" {
		cfg.Defaults.Workspace = v
	}
	if v := os.Getenv("CURIO_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Defaults.BatchSize = n
		}
	}
	if v := os.Getenv("CURIO_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("CURIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
