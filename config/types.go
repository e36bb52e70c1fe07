// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
)

// CurioConfig is the on-disk client configuration (~/.curio/curio.yaml).
type CurioConfig struct {
	// Server: where the Curio API lives and how to authenticate.
	Server ServerConfig `yaml:"server"`

	// Defaults: values applied when a command doesn't override them.
	Defaults DefaultsConfig `yaml:"defaults"`

	// Cache: local snapshot persistence for warm starts.
	Cache CacheConfig `yaml:"cache"`

	// Logging: client log output.
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Endpoint string `yaml:"endpoint"` // e.g. http://localhost:6900
	APIKey   string `yaml:"api_key"`
}

type DefaultsConfig struct {
	Workspace string `yaml:"workspace"`  // e.g. "research"
	BatchSize int    `yaml:"batch_size"` // records per fetched page
}

type CacheConfig struct {
	// Enabled turns snapshot persistence on.
	Enabled bool `yaml:"enabled"`

	// Dir is the BadgerDB directory. Defaults to ~/.curio/cache.
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Dir enables JSON file logging when set.
	Dir string `yaml:"dir,omitempty"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() CurioConfig {
	cacheDir := ".curio/cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".curio", "cache")
	}
	return CurioConfig{
		Server: ServerConfig{
			Endpoint: "http://localhost:6900",
		},
		Defaults: DefaultsConfig{
			Workspace: "default",
			BatchSize: 32,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     cacheDir,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
