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

package helpers

import "time"

const (
	// MinReliableYear is the earliest year considered valid for the host
	// clock. Boards without a battery-backed RTC boot at the epoch, so any
	// earlier date means the clock was never set.
	MinReliableYear = 2024
)

// IsClockReliable checks if the host clock appears to be set correctly.
// Returns false if the clock is clearly wrong (e.g., year < 2024).
func IsClockReliable(t time.Time) bool {
	return t.Year() >= MinReliableYear
}

// UnixSeconds converts t to the 32-bit seconds counter used by the time
// authority. Times outside the counter's range report false.
func UnixSeconds(t time.Time) (uint32, bool) {
	sec := t.Unix()
	if sec < 0 || sec > int64(^uint32(0)) {
		return 0, false
	}
	return uint32(sec), true
}
