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

// Package timecore owns the device's canonical UTC clock. Time sources
// offer readings tagged with a priority; the authority accepts a reading
// only from a source at least as trusted as the current master, pushes
// accepted values down to less trusted sources and slowly lowers its trust
// in the master when no fresh reading arrives.
package timecore

import (
	"errors"
	"fmt"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/helpers/syncutil"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timezones"
	"github.com/rs/zerolog/log"
)

var ErrInvalidPriority = errors.New("invalid source priority")

// Authority arbitrates between time sources and converts UTC to local
// time. All methods are safe for concurrent use.
type Authority struct {
	store   *datastore.Store
	engine  *timezones.Engine
	sources [UserDefined + 1]Source
	cfg     datastore.TimecoreConfig
	mu      syncutil.Mutex
	utc     uint32
	degrade uint16
	master  Priority

	// pushMu orders write-backs. seq stamps accepted offers under mu and
	// pushed is the newest stamp sent out under pushMu.
	pushMu syncutil.Mutex
	seq    uint64
	pushed uint64
}

// New returns an authority with its timezone settings loaded from store.
// The clock starts at zero with no master.
func New(store *datastore.Store) *Authority {
	a := &Authority{
		store:   store,
		engine:  timezones.NewEngine(0),
		cfg:     datastore.DefaultTimecoreConfig(),
		degrade: DegradeTicks,
	}
	if err := a.LoadConfig(); err != nil {
		log.Warn().Err(err).Msg("timecore: failed to persist default config")
	}
	return a
}

// OfferUTC proposes a new UTC value from a source of priority p. The value
// is accepted when p is at least the current master priority. Less trusted
// registered sources are then updated, outside the lock, exactly once each.
// A push is dropped when a newer accepted value has already been pushed, so
// subordinate sources never end on an older value than the clock.
func (a *Authority) OfferUTC(utc uint32, p Priority) bool {
	if !p.Valid() {
		return false
	}

	a.mu.Lock()
	if p < a.master {
		a.mu.Unlock()
		return false
	}
	a.utc = utc
	if p != UserDefined {
		a.master = p
		a.degrade = DegradeTicks
	}
	targets := make([]Source, 0, len(a.sources))
	for level := LocalClock; level < p; level++ {
		if s := a.sources[level]; s != nil {
			targets = append(targets, s)
		}
	}
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	a.push(seq, utc, targets)
	return true
}

func (a *Authority) push(seq uint64, utc uint32, targets []Source) {
	a.pushMu.Lock()
	defer a.pushMu.Unlock()
	if seq < a.pushed {
		log.Debug().Uint32("utc", utc).Msg("timecore: dropped stale write-back")
		return
	}
	a.pushed = seq
	for _, s := range targets {
		s.SetTime(utc)
	}
}

// OfferLocal proposes a local calendar time entered by the user. Invalid
// fields are clamped. The value is converted to UTC with the current
// timezone settings and offered as UserDefined.
func (a *Authority) OfferLocal(d calendar.Datum) bool {
	d = d.Clamp()
	local := int64(calendar.ToSeconds(d))

	a.mu.Lock()
	def := a.engine.Definition()
	std := local - int64(a.baseOffsetLocked())*calendar.SecsPerMin
	switch {
	case a.cfg.AutomaticDst && def.HasDST:
		if a.engine.Window(d.YearIndex()).Contains(std) {
			std -= int64(def.DstOffsetMinutes()) * calendar.SecsPerMin
		}
	case !a.cfg.AutomaticDst && a.cfg.ManualDst:
		std -= int64(timezones.ManualOffset(a.cfg.DstOffsetIndex)) * calendar.SecsPerMin
	}
	a.mu.Unlock()

	return a.OfferUTC(calendar.ClampSeconds(std), UserDefined)
}

// UTC returns the current UTC seconds.
func (a *Authority) UTC() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.utc
}

// Local returns the current local time as seconds since 1970. Offsets that
// would move the value below zero are clamped.
func (a *Authority) Local() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.localLocked()
}

// LocalCalendar returns the current local time broken into fields.
func (a *Authority) LocalCalendar() calendar.Datum {
	return calendar.FromSeconds(a.Local())
}

func (a *Authority) baseOffsetLocked() int32 {
	if a.cfg.TimeZoneOverride {
		return a.cfg.GMTOffsetMinutes
	}
	return int32(a.engine.Definition().BaseOffsetMinutes)
}

// dstOffsetLocked returns the DST shift in minutes applied at utc.
func (a *Authority) dstOffsetLocked(utc int64) int32 {
	switch {
	case a.cfg.AutomaticDst:
		if a.engine.Active(utc) {
			return int32(a.engine.Definition().DstOffsetMinutes())
		}
	case a.cfg.ManualDst:
		return int32(timezones.ManualOffset(a.cfg.DstOffsetIndex))
	}
	return 0
}

func (a *Authority) localLocked() uint32 {
	utc := int64(a.utc)
	minutes := a.baseOffsetLocked() + a.dstOffsetLocked(utc)
	return calendar.ClampSeconds(utc + int64(minutes)*calendar.SecsPerMin)
}

// Tick advances the clock by one second and ages the master's trust. It
// does no I/O.
func (a *Authority) Tick() {
	a.tick()
}

func (a *Authority) tick() (from, to Priority, demoted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.utc++
	from = a.master
	if a.degrade > 0 {
		a.degrade--
	}
	if a.degrade == 0 {
		if a.master > None {
			a.master--
		}
		a.degrade = DegradeTicks
		demoted = from != a.master
	}
	return from, a.master, demoted
}

// Master returns the priority of the source that last set the clock.
func (a *Authority) Master() Priority {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.master
}

// RegisterSource installs s as the source for priority p, replacing any
// previous source. None cannot hold a source.
func (a *Authority) RegisterSource(p Priority, s Source) error {
	if p == None || !p.Valid() {
		return fmt.Errorf("register %s: %w", p, ErrInvalidPriority)
	}
	if s == nil {
		return errors.New("register: nil source")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sources[p] = s
	return nil
}

// UnregisterSource removes the source for priority p.
func (a *Authority) UnregisterSource(p Priority) {
	if !p.Valid() {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sources[p] = nil
}

// PollReport summarises one pass over the registered sources.
type PollReport struct {
	Accepted int
	Rejected int
	Delayed  int
}

// PollSources reads every registered source from the most to the least
// trusted and offers non delayed readings at the source's priority.
// Sources below the current master are skipped. UserDefined is never
// polled.
func (a *Authority) PollSources() PollReport {
	var report PollReport
	for p := SatelliteTime; p >= LocalClock; p-- {
		a.mu.Lock()
		s := a.sources[p]
		skip := p < a.master
		a.mu.Unlock()
		if s == nil || skip {
			continue
		}

		utc, delayed := s.Time()
		if delayed {
			report.Delayed++
			continue
		}
		if a.OfferUTC(utc, p) {
			report.Accepted++
		} else {
			report.Rejected++
		}
	}
	return report
}

// DstActive reports whether daylight saving time is in effect. With
// automatic DST it follows the zone's window. Otherwise it reports the
// manual DST switch, even when the selected manual shift is zero.
func (a *Authority) DstActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dstActiveLocked()
}

func (a *Authority) dstActiveLocked() bool {
	if a.cfg.AutomaticDst {
		return a.engine.Active(int64(a.utc))
	}
	return a.cfg.ManualDst
}

// DstWindow returns the daylight saving window of the current local year.
func (a *Authority) DstWindow() timezones.Window {
	a.mu.Lock()
	defer a.mu.Unlock()
	local := int64(a.utc) + int64(a.engine.Definition().BaseOffsetMinutes)*calendar.SecsPerMin
	return a.engine.Window(calendar.YearIndex(local))
}

// Status is a consistent snapshot of the authority.
type Status struct {
	TimeZone string
	Config   datastore.TimecoreConfig
	UTC      uint32
	Local    uint32
	Master   Priority
	// DegradeIn is the number of ticks until the master is demoted.
	DegradeIn int
	DstActive bool
}

// Status returns a snapshot of the clock and its settings.
func (a *Authority) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{
		TimeZone:  a.engine.Definition().Name,
		Config:    a.cfg,
		UTC:       a.utc,
		Local:     a.localLocked(),
		Master:    a.master,
		DegradeIn: int(a.degrade),
		DstActive: a.dstActiveLocked(),
	}
}
