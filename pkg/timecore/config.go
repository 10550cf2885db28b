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

package timecore

import (
	"fmt"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/rs/zerolog/log"
)

// Setters only change the in-memory settings; call SaveConfig to persist.

// Config returns the current timezone settings.
func (a *Authority) Config() datastore.TimecoreConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// SetConfig replaces all timezone settings. Out of range indexes fall back
// to their defaults.
func (a *Authority) SetConfig(c datastore.TimecoreConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applyLocked(c)
}

func (a *Authority) applyLocked(c datastore.TimecoreConfig) {
	c = c.Normalize()
	if c.TimeZone != a.engine.Index() {
		a.engine.Load(c.TimeZone)
	}
	a.cfg = c
}

func (a *Authority) update(fn func(c *datastore.TimecoreConfig)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.cfg
	fn(&c)
	a.applyLocked(c)
}

// TimeZone returns the index of the active timezone.
func (a *Authority) TimeZone() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.TimeZone
}

// SetTimeZone selects the timezone at index. An out of range index selects
// entry 0.
func (a *Authority) SetTimeZone(index int) {
	a.update(func(c *datastore.TimecoreConfig) { c.TimeZone = index })
}

// DstOffsetIndex returns the selected manual DST offset index.
func (a *Authority) DstOffsetIndex() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.DstOffsetIndex
}

// SetDstOffsetIndex selects a manual DST offset.
func (a *Authority) SetDstOffsetIndex(index int) {
	a.update(func(c *datastore.TimecoreConfig) { c.DstOffsetIndex = index })
}

// GMTOffset returns the manual GMT offset in minutes.
func (a *Authority) GMTOffset() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.GMTOffsetMinutes
}

// SetGMTOffset sets the GMT offset used when the timezone is overridden.
func (a *Authority) SetGMTOffset(minutes int32) {
	a.update(func(c *datastore.TimecoreConfig) { c.GMTOffsetMinutes = minutes })
}

func (a *Authority) AutomaticDst() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.AutomaticDst
}

func (a *Authority) SetAutomaticDst(enabled bool) {
	a.update(func(c *datastore.TimecoreConfig) { c.AutomaticDst = enabled })
}

func (a *Authority) ManualDst() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.ManualDst
}

func (a *Authority) SetManualDst(enabled bool) {
	a.update(func(c *datastore.TimecoreConfig) { c.ManualDst = enabled })
}

func (a *Authority) TimeZoneOverride() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.TimeZoneOverride
}

func (a *Authority) SetTimeZoneOverride(enabled bool) {
	a.update(func(c *datastore.TimecoreConfig) { c.TimeZoneOverride = enabled })
}

// SaveConfig persists the current timezone settings.
func (a *Authority) SaveConfig() error {
	cfg := a.Config()
	if err := a.store.SetTimecoreConfig(cfg); err != nil {
		return fmt.Errorf("failed to save timecore config: %w", err)
	}
	log.Info().
		Int("timezone", cfg.TimeZone).
		Bool("auto_dst", cfg.AutomaticDst).
		Msg("timecore: config saved")
	return nil
}

// LoadConfig replaces the settings with the stored ones. A corrupt record
// is replaced by the defaults, which are applied even if persisting them
// fails.
func (a *Authority) LoadConfig() error {
	cfg, err := a.store.TimecoreConfig()

	a.mu.Lock()
	a.applyLocked(cfg)
	a.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to load timecore config: %w", err)
	}
	return nil
}
