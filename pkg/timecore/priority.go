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

import "fmt"

// Priority ranks time sources. A higher value is more trusted.
type Priority uint8

const (
	None Priority = iota
	LocalClock
	NetworkTime
	SatelliteTime
	// UserDefined always wins but never becomes the master.
	UserDefined
)

// DegradeTicks is the number of ticks without a fresh update after which
// the master priority drops one level.
const DegradeTicks = 900

func (p Priority) String() string {
	switch p {
	case None:
		return "none"
	case LocalClock:
		return "local"
	case NetworkTime:
		return "network"
	case SatelliteTime:
		return "satellite"
	case UserDefined:
		return "user"
	default:
		return fmt.Sprintf("priority(%d)", uint8(p))
	}
}

// Valid reports whether p is one of the defined levels.
func (p Priority) Valid() bool {
	return p <= UserDefined
}

// Source is a producer of time that can also be corrected by the
// authority. SetTime pushes a more trusted UTC value back to the source.
// Time returns the source's current UTC reading; delayed is true when the
// reading is not yet usable.
type Source interface {
	SetTime(utc uint32)
	Time() (utc uint32, delayed bool)
}
