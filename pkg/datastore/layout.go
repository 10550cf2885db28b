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

package datastore

import (
	"fmt"
	"slices"
)

// LayoutVersion identifies the address map below. Changing any address or
// size requires a new version.
const LayoutVersion = 1

// TrailerSize is the length of the CRC32 trailer after every record.
const TrailerSize = 4

// Region is the fixed location of one record on the medium.
type Region struct {
	Name string
	Addr int
	Size int
	// Window is the erase window reserved for the record, 0 when the
	// record has none.
	Window int
}

// Span returns the number of bytes the region occupies.
func (r Region) Span() int {
	return max(r.Size+TrailerSize, r.Window)
}

// End returns the first address after the region.
func (r Region) End() int {
	return r.Addr + r.Span()
}

const (
	credentialFieldSize = 128
	notesTextLimit      = 500
)

var (
	RegionCredentials = Region{Name: "credentials", Addr: 0, Size: 2 * credentialFieldSize}
	RegionTimecore    = Region{Name: "timecoreconf", Addr: 280, Size: timecoreConfigSize}
	RegionGPS         = Region{Name: "gps", Addr: 320, Size: 1}
	RegionDisplay     = Region{Name: "display", Addr: 400, Size: 1}
	RegionIPv4        = Region{Name: "ipv4", Addr: 420, Size: ipv4SettingsSize}
	RegionNotes       = Region{Name: "notes", Addr: 500, Size: notesTextLimit + 1, Window: 512}
)

// Layout is the set of records stored on a medium.
type Layout []Region

// DefaultLayout returns the address map for LayoutVersion.
func DefaultLayout() Layout {
	return Layout{
		RegionCredentials,
		RegionTimecore,
		RegionGPS,
		RegionDisplay,
		RegionIPv4,
		RegionNotes,
	}
}

// ValidateLayout checks that no two regions overlap and that every region
// fits inside capacity.
func ValidateLayout(l Layout, capacity int) error {
	sorted := slices.Clone(l)
	slices.SortFunc(sorted, func(a, b Region) int {
		return a.Addr - b.Addr
	})

	prev := Region{}
	for i, r := range sorted {
		if r.Addr < 0 || r.Size <= 0 {
			return fmt.Errorf("region %s: invalid address %d or size %d", r.Name, r.Addr, r.Size)
		}
		if r.End() > capacity {
			return fmt.Errorf("region %s ends at %d beyond capacity %d: %w",
				r.Name, r.End(), capacity, ErrOutOfRange)
		}
		if i > 0 && r.Addr < prev.End() {
			return fmt.Errorf("region %s at %d overlaps %s ending at %d",
				r.Name, r.Addr, prev.Name, prev.End())
		}
		prev = r
	}
	return nil
}
