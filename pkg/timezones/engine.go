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

package timezones

import "github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"

// Engine holds the active timezone and caches its daylight saving window
// for one year at a time. It is not safe for concurrent use; the owner
// serialises access.
type Engine struct {
	def    Definition
	index  int
	cached Window
	valid  bool
	// computed counts window computations.
	computed int
}

// NewEngine returns an engine with the timezone at index loaded.
func NewEngine(index int) *Engine {
	e := &Engine{}
	e.Load(index)
	return e
}

// Load makes the timezone at index active and drops the cached window.
// It returns the index actually loaded.
func (e *Engine) Load(index int) int {
	if index < 0 || index >= len(table) {
		index = 0
	}
	e.index = index
	e.def = LoadDefinition(index)
	e.valid = false
	return index
}

// Index returns the table index of the active timezone.
func (e *Engine) Index() int {
	return e.index
}

// Definition returns a copy of the active timezone.
func (e *Engine) Definition() Definition {
	return e.def
}

// Window returns the daylight saving window in UTC for the year yearIndex
// years after 1970. The result is cached until the year or the timezone
// changes. Zones without DST get an empty window.
func (e *Engine) Window(yearIndex int) Window {
	if e.valid && e.cached.Year == calendar.EpochYear+yearIndex {
		return e.cached
	}

	w := Window{Year: calendar.EpochYear + yearIndex}
	if e.def.HasDST {
		base := int64(e.def.BaseOffsetMinutes) * calendar.SecsPerMin
		shift := int64(e.def.Start.OffsetMinutes) * calendar.SecsPerMin
		w.Start = ResolveRuleInstant(e.def.Start, w.Year) - base
		w.End = ResolveRuleInstant(e.def.End, w.Year) - base - shift
	}

	e.computed++
	e.cached = w
	e.valid = true
	return w
}

// Active reports whether daylight saving is in effect at utc. The window
// year is taken from local standard time.
func (e *Engine) Active(utc int64) bool {
	if !e.def.HasDST {
		return false
	}
	local := utc + int64(e.def.BaseOffsetMinutes)*calendar.SecsPerMin
	return e.Window(calendar.YearIndex(local)).Contains(utc)
}
