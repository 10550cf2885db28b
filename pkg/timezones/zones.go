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

// Package timezones holds the fixed table of supported timezones and the
// recurring daylight saving rules used to convert between UTC and local
// time. It is not a general timezone database.
package timezones

import "time"

// DefaultManualDstOffsetIndex selects the zero entry of ManualOffsets.
const DefaultManualDstOffsetIndex = 2

// ManualOffsets are the daylight saving shifts, in minutes, a user can pick
// when automatic DST is disabled.
var ManualOffsets = [...]int16{-60, -30, 0, 30, 60}

// ManualOffset returns the manual DST shift for index, clamping an out of
// range index to the zero offset.
func ManualOffset(index int) int16 {
	if index < 0 || index >= len(ManualOffsets) {
		index = DefaultManualDstOffsetIndex
	}
	return ManualOffsets[index]
}

// Definition describes one timezone. Start and End are ignored unless
// HasDST is set.
type Definition struct {
	Name              string
	BaseOffsetMinutes int16
	HasDST            bool
	Start             Rule
	End               Rule
}

// DstOffsetMinutes is the shift applied while daylight saving is active.
func (d Definition) DstOffsetMinutes() int16 {
	if !d.HasDST {
		return 0
	}
	return d.Start.OffsetMinutes
}

var (
	euWestern = [2]Rule{
		{Week: Last, Weekday: time.Sunday, Month: March, Hour: 1, OffsetMinutes: 60},
		{Week: Last, Weekday: time.Sunday, Month: October, Hour: 2},
	}
	euCentral = [2]Rule{
		{Week: Last, Weekday: time.Sunday, Month: March, Hour: 2, OffsetMinutes: 60},
		{Week: Last, Weekday: time.Sunday, Month: October, Hour: 3},
	}
	euEastern = [2]Rule{
		{Week: Last, Weekday: time.Sunday, Month: March, Hour: 3, OffsetMinutes: 60},
		{Week: Last, Weekday: time.Sunday, Month: October, Hour: 4},
	}
	northAmerica = [2]Rule{
		{Week: Second, Weekday: time.Sunday, Month: March, Hour: 2, OffsetMinutes: 60},
		{Week: First, Weekday: time.Sunday, Month: November, Hour: 2},
	}
	australiaSouthEast = [2]Rule{
		{Week: First, Weekday: time.Sunday, Month: October, Hour: 2, OffsetMinutes: 60},
		{Week: First, Weekday: time.Sunday, Month: April, Hour: 3},
	}
	newZealand = [2]Rule{
		{Week: Last, Weekday: time.Sunday, Month: September, Hour: 2, OffsetMinutes: 60},
		{Week: First, Weekday: time.Sunday, Month: April, Hour: 3},
	}
)

func withDST(name string, base int16, rules [2]Rule) Definition {
	return Definition{
		Name:              name,
		BaseOffsetMinutes: base,
		HasDST:            true,
		Start:             rules[0],
		End:               rules[1],
	}
}

func fixed(name string, base int16) Definition {
	return Definition{Name: name, BaseOffsetMinutes: base}
}

// table is indexed by the persisted timezone index. Entries may be appended
// but never reordered.
var table = []Definition{
	withDST("Europe/London", 0, euWestern),
	withDST("Europe/Dublin", 0, euWestern),
	withDST("Europe/Lisbon", 0, euWestern),
	withDST("Europe/Berlin", 60, euCentral),
	withDST("Europe/Paris", 60, euCentral),
	withDST("Europe/Amsterdam", 60, euCentral),
	withDST("Europe/Madrid", 60, euCentral),
	withDST("Europe/Rome", 60, euCentral),
	withDST("Europe/Athens", 120, euEastern),
	withDST("Europe/Helsinki", 120, euEastern),
	fixed("Europe/Moscow", 180),
	withDST("America/New_York", -300, northAmerica),
	withDST("America/Chicago", -360, northAmerica),
	withDST("America/Denver", -420, northAmerica),
	fixed("America/Phoenix", -420),
	withDST("America/Los_Angeles", -480, northAmerica),
	withDST("America/Anchorage", -540, northAmerica),
	fixed("Pacific/Honolulu", -600),
	fixed("America/Sao_Paulo", -180),
	fixed("America/Argentina/Buenos_Aires", -180),
	fixed("Africa/Johannesburg", 120),
	fixed("Asia/Dubai", 240),
	fixed("Asia/Kolkata", 330),
	fixed("Asia/Singapore", 480),
	fixed("Asia/Shanghai", 480),
	fixed("Asia/Tokyo", 540),
	fixed("Australia/Perth", 480),
	withDST("Australia/Adelaide", 570, australiaSouthEast),
	fixed("Australia/Brisbane", 600),
	withDST("Australia/Sydney", 600, australiaSouthEast),
	withDST("Australia/Melbourne", 600, australiaSouthEast),
	withDST("Pacific/Auckland", 720, newZealand),
	fixed("UTC", 0),
}

// Count returns the number of timezones in the table.
func Count() int {
	return len(table)
}

// Name returns the name of the timezone at index, or "" if there is none.
func Name(index int) string {
	if index < 0 || index >= len(table) {
		return ""
	}
	return table[index].Name
}

// Find returns the index of the timezone with the given name.
func Find(name string) (int, bool) {
	for i := range table {
		if table[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// LoadDefinition returns a copy of the definition at index. An out of range
// index falls back to entry 0 and rule fields are clamped.
func LoadDefinition(index int) Definition {
	if index < 0 || index >= len(table) {
		index = 0
	}
	def := table[index]
	def.Start = def.Start.Clamp()
	def.End = def.End.Clamp()
	return def
}
