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

// Package calendar converts between second counters and calendar tuples
// using the device's legacy epoch conventions.
//
// Two conversion paths exist and both must be kept as they are:
//
//   - ToSeconds takes a Datum whose year is stored as an offset from 2000
//     (full years are reduced first), adds a fixed 30 year bias and then
//     expands leap years counted from 1970.
//   - YearIndex and Compose work directly on years counted from 1970 and
//     are used to key and resolve daylight saving rules.
//
// Both yield seconds since 1970-01-01T00:00:00Z for the same calendar date.
package calendar

import "fmt"

const (
	SecsPerMin  = 60
	SecsPerHour = 60 * SecsPerMin
	SecsPerDay  = 24 * SecsPerHour

	// EpochYear is year zero of every second counter.
	EpochYear = 1970
	// BaseYear is the year stored calendar years are offset from.
	BaseYear = 2000
	// BaseBias is the number of years between EpochYear and BaseYear.
	BaseBias = BaseYear - EpochYear
)

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Datum is a broken down calendar time. Weekday is 0 for Sunday.
type Datum struct {
	Year    uint16
	Month   uint8
	Day     uint8
	Weekday uint8
	Hour    uint8
	Minute  uint8
	Second  uint8
}

func (d Datum) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// Clamp resets every out of range field to its minimum valid value.
// Weekday is derived data and left untouched.
func (d Datum) Clamp() Datum {
	if d.Month == 0 || d.Month > 12 {
		d.Month = 1
	}
	if d.Day == 0 || d.Day > 31 {
		d.Day = 1
	}
	if d.Hour > 23 {
		d.Hour = 0
	}
	if d.Minute > 59 {
		d.Minute = 0
	}
	if d.Second > 59 {
		d.Second = 0
	}
	return d
}

// YearIndex returns the stored year of d as years since 1970, applying the
// same normalisation as ToSeconds.
func (d Datum) YearIndex() int {
	year := int(d.Year)
	if year >= BaseYear {
		year -= BaseYear
	}
	// stored years are a single byte
	return int(uint8(year)) + BaseBias
}

// IsLeap reports whether the year yearIndex years after 1970 is a leap year.
func IsLeap(yearIndex int) bool {
	y := EpochYear + yearIndex
	return y > 0 && y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// ToSeconds converts a calendar tuple to seconds since 1970. Out of range
// fields are clamped, never rejected.
func ToSeconds(d Datum) uint32 {
	d = d.Clamp()
	year := d.YearIndex()

	seconds := uint32(year) * SecsPerDay * 365
	for i := 0; i < year; i++ {
		if IsLeap(i) {
			seconds += SecsPerDay
		}
	}

	for m := 1; m < int(d.Month); m++ {
		if m == 2 && IsLeap(year) {
			seconds += SecsPerDay * 29
		} else {
			seconds += SecsPerDay * uint32(monthDays[m-1])
		}
	}

	seconds += uint32(d.Day-1) * SecsPerDay
	seconds += uint32(d.Hour) * SecsPerHour
	seconds += uint32(d.Minute) * SecsPerMin
	seconds += uint32(d.Second)
	return seconds
}

// FromSeconds breaks seconds since 1970 into a calendar tuple with a full
// four digit year.
func FromSeconds(t uint32) Datum {
	var d Datum

	d.Second = uint8(t % 60)
	t /= 60
	d.Minute = uint8(t % 60)
	t /= 60
	d.Hour = uint8(t % 24)
	days := int(t / 24)
	d.Weekday = uint8((days + 4) % 7)

	year := 0
	elapsed := 0
	for {
		length := 365
		if IsLeap(year) {
			length = 366
		}
		if elapsed+length > days {
			break
		}
		elapsed += length
		year++
	}
	d.Year = uint16(EpochYear + year)
	days -= elapsed

	month := 0
	for ; month < 12; month++ {
		length := monthDays[month]
		if month == 1 && IsLeap(year) {
			length = 29
		}
		if days < length {
			break
		}
		days -= length
	}
	d.Month = uint8(month + 1)
	d.Day = uint8(days + 1)
	return d
}

// YearIndex returns the number of whole years between 1970 and t.
func YearIndex(t int64) int {
	if t < 0 {
		return 0
	}
	days := t / SecsPerDay
	year := 0
	var elapsed int64
	for {
		length := int64(365)
		if IsLeap(year) {
			length = 366
		}
		elapsed += length
		if elapsed > days {
			return year
		}
		year++
	}
}

// Compose returns seconds since 1970 for a wall clock date given as years
// since 1970 and a zero based month.
func Compose(yearIndex, month0, day, hour, minute, second int) int64 {
	seconds := int64(yearIndex) * SecsPerDay * 365
	for i := 0; i < yearIndex; i++ {
		if IsLeap(i) {
			seconds += SecsPerDay
		}
	}
	for m := 0; m < month0; m++ {
		if m == 1 && IsLeap(yearIndex) {
			seconds += SecsPerDay * 29
		} else {
			seconds += SecsPerDay * int64(monthDays[m])
		}
	}
	seconds += int64(day-1) * SecsPerDay
	seconds += int64(hour) * SecsPerHour
	seconds += int64(minute) * SecsPerMin
	seconds += int64(second)
	return seconds
}

// Weekday returns the day of week of t, 0 for Sunday.
func Weekday(t int64) int {
	days := t / SecsPerDay
	if t%SecsPerDay < 0 {
		days--
	}
	return int((days%7 + 7 + 4) % 7)
}

// ClampSeconds narrows a signed second count to the uint32 clock range.
func ClampSeconds(t int64) uint32 {
	switch {
	case t < 0:
		return 0
	case t > int64(^uint32(0)):
		return ^uint32(0)
	default:
		return uint32(t)
	}
}
