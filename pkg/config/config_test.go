// Mini NTP Clock
// Copyright (c) 2026 The Mini NTP Clock Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Mini NTP Clock.
//
// Mini NTP Clock is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Mini NTP Clock is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Mini NTP Clock.  If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	testhelpers "github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstance(t *testing.T, content string) *Instance {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	err := os.WriteFile(cfgPath, []byte(content), 0o600)
	require.NoError(t, err)

	return &Instance{
		cfgPath:  cfgPath,
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}
}

func TestNewConfigWritesDefaults(t *testing.T) {
	t.Parallel()

	tempDir := filepath.Join(t.TempDir(), "nested")
	cfg, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tempDir, CfgFile), cfg.Path())
	assert.FileExists(t, cfg.Path())

	assert.False(t, cfg.DebugLogging())
	assert.Equal(t, BackendFile, cfg.StorageBackend())
	assert.True(t, cfg.HostSource())
	assert.True(t, cfg.SeedFromHost())
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())

	data, err := os.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_schema = 1")
	assert.Contains(t, string(data), "[storage]")
	assert.Regexp(t, `backend = ['"]file['"]`, string(data))
}

func TestLoad_PreservesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, fmt.Sprintf("config_schema = %d\n", SchemaVersion))
	require.NoError(t, cfg.Load())

	assert.Equal(t, BackendFile, cfg.vals.Storage.Backend, "Storage.Backend should retain default")
	assert.True(t, cfg.vals.Clock.HostSource, "Clock.HostSource should retain default true")
	assert.True(t, cfg.vals.Clock.SeedFromHost, "Clock.SeedFromHost should retain default true")
	assert.Equal(t, "1m0s", cfg.vals.Clock.PollInterval)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, fmt.Sprintf(`config_schema = %d
debug_logging = true

[storage]
backend = "bolt"
path = "/var/lib/mini-ntp/eeprom.db"

[clock]
host_source = false
seed_from_host = false
poll_interval = "15s"
`, SchemaVersion))
	require.NoError(t, cfg.Load())

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, BackendBolt, cfg.StorageBackend())
	assert.Equal(t, "/var/lib/mini-ntp/eeprom.db", cfg.StoragePath("/ignored"))
	assert.False(t, cfg.HostSource())
	assert.False(t, cfg.SeedFromHost())
	assert.Equal(t, 15*time.Second, cfg.PollInterval())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "unknown backend",
			content: "config_schema = 1\n[storage]\nbackend = \"sdcard\"\n",
			errMsg:  "Values.Storage.Backend",
		},
		{
			name:    "bad poll interval",
			content: "config_schema = 1\n[clock]\npoll_interval = \"soon\"\n",
			errMsg:  "Values.Clock.PollInterval",
		},
		{
			name:    "negative poll interval",
			content: "config_schema = 1\n[clock]\npoll_interval = \"-5s\"\n",
			errMsg:  "Values.Clock.PollInterval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newTestInstance(t, tt.content)
			err := cfg.Load()
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Equal(t, BackendFile, cfg.StorageBackend(), "values should be untouched")
		})
	}
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "config_schema = 7\n")
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()

	cfg := newTestInstance(t, "config_schema = [\n")
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal config")
}

func TestLoad_ReloadCycle(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	cfg.SetStorageBackend(BackendMemory)
	cfg.SetPollInterval(30 * time.Second)
	cfg.SetHostSource(false)
	require.NoError(t, cfg.Save())

	require.NoError(t, cfg.Load())
	assert.Equal(t, BackendMemory, cfg.StorageBackend())
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
	assert.False(t, cfg.HostSource())
	assert.True(t, cfg.SeedFromHost(), "SeedFromHost should retain default true after reload")
}

func TestSave_RejectsInvalidBackend(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	cfg.SetStorageBackend("tape")
	require.ErrorIs(t, cfg.Save(), ErrInvalidConfig)

	// file on disk is unchanged
	require.NoError(t, cfg.Load())
	assert.Equal(t, BackendFile, cfg.StorageBackend())
}

func TestStoragePath(t *testing.T) {
	t.Parallel()

	dataDir := filepath.Join(string(filepath.Separator)+"data", AppName)

	tests := []struct {
		name    string
		backend string
		path    string
		want    string
	}{
		{
			name:    "file default",
			backend: BackendFile,
			want:    filepath.Join(dataDir, ImageFile),
		},
		{
			name:    "bolt default",
			backend: BackendBolt,
			want:    filepath.Join(dataDir, BoltImageFile),
		},
		{
			name:    "relative path",
			backend: BackendFile,
			path:    "images/board.bin",
			want:    filepath.Join(dataDir, "images", "board.bin"),
		},
		{
			name:    "absolute path",
			backend: BackendFile,
			path:    filepath.Join(string(filepath.Separator)+"mnt", "eeprom.bin"),
			want:    filepath.Join(string(filepath.Separator)+"mnt", "eeprom.bin"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &Instance{vals: BaseDefaults}
			cfg.SetStorageBackend(tt.backend)
			cfg.SetStoragePath(tt.path)
			assert.Equal(t, tt.want, cfg.StoragePath(dataDir))
		})
	}
}

func TestPollIntervalFallback(t *testing.T) {
	t.Parallel()

	cfg := &Instance{vals: BaseDefaults}
	cfg.vals.Clock.PollInterval = ""
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())

	cfg.vals.Clock.PollInterval = "garbage"
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())

	cfg.SetPollInterval(0)
	assert.Equal(t, time.Duration(0), cfg.PollInterval())
}

func TestNewConfigLoadsExistingFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	fs := testhelpers.NewOSFS()
	err := fs.CreateConfigFile(filepath.Join(tempDir, CfgFile), map[string]any{
		"config_schema": SchemaVersion,
		"debug_logging": true,
		"storage": map[string]any{
			"backend": BackendMemory,
		},
		"clock": map[string]any{
			"poll_interval": "2m",
		},
	})
	require.NoError(t, err)

	cfg, err := NewConfig(tempDir, BaseDefaults)
	require.NoError(t, err)
	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, BackendMemory, cfg.StorageBackend())
	assert.Equal(t, 2*time.Minute, cfg.PollInterval())
	assert.True(t, cfg.HostSource(), "missing keys keep their defaults")

	before, err := fs.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.True(t, fs.FileExists(cfg.Path()))
	assert.NotEmpty(t, before)
}
