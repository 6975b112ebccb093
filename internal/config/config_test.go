// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, "simple", cfg.Chat.Strategy)
	assert.Equal(t, 0.2, cfg.Chat.Temperature)
	assert.Equal(t, 2048, cfg.Chat.MaxTokens)
	assert.True(t, cfg.Chat.Streaming)
	assert.Equal(t, 20, cfg.History.MaxEntries)
	assert.Equal(t, 30, cfg.History.SessionDays)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.BaseURL, cfg.Server.BaseURL)
}

func TestLoadFromPathPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "http://10.0.0.5:9000"

[chat]
model = "gpt-4o-mini"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:9000", cfg.Server.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)
	// Unset fields keep defaults.
	assert.Equal(t, "simple", cfg.Chat.Strategy)
	assert.Equal(t, 2048, cfg.Chat.MaxTokens)
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.Model = "gpt-3.5-turbo"
	cfg.UI.Theme = "light"
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", loaded.Chat.Model)
	assert.Equal(t, "light", loaded.UI.Theme)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad strategy", func(c *Config) { c.Chat.Strategy = "mystery" }, "chat.strategy"},
		{"temperature too high", func(c *Config) { c.Chat.Temperature = 3.5 }, "chat.temperature"},
		{"negative max tokens", func(c *Config) { c.Chat.MaxTokens = -1 }, "chat.max_tokens"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"bad url", func(c *Config) { c.Server.BaseURL = "not a url" }, "server.base_url"},
		{"history cap too large", func(c *Config) { c.History.MaxEntries = 5000 }, "history.max_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NYAYA_URL", "http://example.com:8080")
	t.Setenv("NYAYA_MODEL", "gpt-4o-mini")
	t.Setenv("NYAYA_STREAM", "false")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://example.com:8080", cfg.Server.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)
	assert.False(t, cfg.Chat.Streaming)
}

func TestGetSetDotNotation(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("chat.model")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", val)

	require.NoError(t, cfg.Set("chat.model", "gpt-4o-mini"))
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)

	// String input converts to the field's type.
	require.NoError(t, cfg.Set("chat.max_tokens", "512"))
	assert.Equal(t, 512, cfg.Chat.MaxTokens)

	require.NoError(t, cfg.Set("chat.temperature", "0.7"))
	assert.Equal(t, 0.7, cfg.Chat.Temperature)

	require.NoError(t, cfg.Set("ui.compact_mode", "true"))
	assert.True(t, cfg.UI.CompactMode)

	_, err = cfg.Get("no.such.key")
	assert.Error(t, err)

	err = cfg.Set("chat.nonexistent", "x")
	assert.Error(t, err)
}

func TestGetAllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, "key %s", key)
	}
}
