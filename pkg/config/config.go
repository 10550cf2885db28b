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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers/syncutil"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "MININTP_CFG"
	AppEnv        = "MININTP_APP"

	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendMemory = "memory"

	DefaultPollInterval = time.Minute
)

type Values struct {
	Storage      Storage `toml:"storage"`
	Clock        Clock   `toml:"clock"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

type Storage struct {
	Backend string `toml:"backend" validate:"oneof=file bolt memory"`
	Path    string `toml:"path,omitempty"`
}

type Clock struct {
	PollInterval string `toml:"poll_interval" validate:"duration"`
	HostSource   bool   `toml:"host_source"`
	SeedFromHost bool   `toml:"seed_from_host"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Storage: Storage{
		Backend: BackendFile,
	},
	Clock: Clock{
		PollInterval: DefaultPollInterval.String(),
		HostSource:   true,
		SeedFromHost: true,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		mu:       syncutil.RWMutex{},
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	if err := Validate(&newVals); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	// set current schema version
	c.vals.ConfigSchema = SchemaVersion

	if err := Validate(&c.vals); err != nil {
		return err
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) StorageBackend() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Storage.Backend
}

func (c *Instance) SetStorageBackend(backend string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Storage.Backend = backend
}

// StoragePath returns the configured medium path. An empty or relative
// path is resolved against dataDir, with a file name matching the backend.
func (c *Instance) StoragePath(dataDir string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.vals.Storage.Path
	if path == "" {
		if c.vals.Storage.Backend == BackendBolt {
			return filepath.Join(dataDir, BoltImageFile)
		}
		return filepath.Join(dataDir, ImageFile)
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(dataDir, path)
	}
	return path
}

func (c *Instance) SetStoragePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Storage.Path = path
}

func (c *Instance) HostSource() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Clock.HostSource
}

func (c *Instance) SetHostSource(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Clock.HostSource = enabled
}

func (c *Instance) SeedFromHost() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Clock.SeedFromHost
}

func (c *Instance) SetSeedFromHost(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Clock.SeedFromHost = enabled
}

// PollInterval returns how often sources are polled. Zero disables polling.
// An unparsable or negative value falls back to the default.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.vals.Clock.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(c.vals.Clock.PollInterval)
	if err != nil || d < 0 {
		log.Warn().Msgf("invalid poll interval %q, using default", c.vals.Clock.PollInterval)
		return DefaultPollInterval
	}
	return d
}

func (c *Instance) SetPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Clock.PollInterval = d.String()
}
