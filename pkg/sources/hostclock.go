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

// Package sources provides time producers that can be registered with the
// time authority.
package sources

import (
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// HostClock reads time from the host oscillator. Corrections pushed by the
// authority are kept as an offset so the host clock itself is never set.
type HostClock struct {
	clock  clockwork.Clock
	offset time.Duration
	mu     syncutil.Mutex
	synced bool
}

// NewHostClock returns a source backed by clock. A nil clock uses the real
// system clock.
func NewHostClock(clock clockwork.Clock) *HostClock {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HostClock{clock: clock}
}

// SetTime stores the difference between utc and the host clock.
func (h *HostClock) SetTime(utc uint32) {
	now := h.clock.Now()
	offset := time.Unix(int64(utc), 0).Sub(now.Truncate(time.Second))

	h.mu.Lock()
	h.offset = offset
	h.synced = true
	h.mu.Unlock()

	log.Debug().Dur("offset", offset).Msg("hostclock: corrected by authority")
}

// Time returns the corrected host time. The reading is delayed while the
// host clock has never been corrected and its year looks unset.
func (h *HostClock) Time() (utc uint32, delayed bool) {
	now := h.clock.Now()

	h.mu.Lock()
	offset := h.offset
	synced := h.synced
	h.mu.Unlock()

	t := now.Add(offset)
	if !synced && !helpers.IsClockReliable(now) {
		return 0, true
	}
	utc, ok := helpers.UnixSeconds(t)
	return utc, !ok
}

// Offset returns the correction currently applied to the host clock.
func (h *HostClock) Offset() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.offset
}

// Synced reports whether the authority has corrected this clock.
func (h *HostClock) Synced() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.synced
}
