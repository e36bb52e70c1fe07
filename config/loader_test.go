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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  endpoint: https://curio.example.com
  api_key: secret-key
defaults:
  workspace: research
  batch_size: 64
cache:
  enabled: true
  dir: /tmp/curio-cache
logging:
  level: debug
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://curio.example.com", cfg.Server.Endpoint)
	assert.Equal(t, "secret-key", cfg.Server.APIKey)
	assert.Equal(t, "research", cfg.Defaults.Workspace)
	assert.Equal(t, 64, cfg.Defaults.BatchSize)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  endpoint: http://localhost:6900
defaults:
  workspace: default
  batch_size: 32
`)

	t.Setenv("CURIO_ENDPOINT", "http://override:9999")
	t.Setenv("CURIO_API_KEY", "env-key")
	t.Setenv("CURIO_WORKSPACE", "ops")
	t.Setenv("CURIO_BATCH_SIZE", "128")
	t.Setenv("CURIO_LOG_LEVEL", "error")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9999", cfg.Server.Endpoint)
	assert.Equal(t, "env-key", cfg.Server.APIKey)
	assert.Equal(t, "ops", cfg.Defaults.Workspace)
	assert.Equal(t, 128, cfg.Defaults.BatchSize)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadFile_BadBatchSizeIgnored(t *testing.T) {
	path := writeConfig(t, `
defaults:
  batch_size: 32
`)
	t.Setenv("CURIO_BATCH_SIZE", "not-a-number")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Defaults.BatchSize)
}

func TestDefaultConfig_RoundTrips(t *testing.T) {
	def := DefaultConfig()
	data, err := yaml.Marshal(def)
	require.NoError(t, err)

	var back CurioConfig
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, def, back)
	assert.Equal(t, "http://localhost:6900", back.Server.Endpoint)
	assert.Equal(t, 32, back.Defaults.BatchSize)
}
