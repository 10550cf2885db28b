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

import (
	"fmt"
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"
)

// Week selects which occurrence of a weekday in a month a rule fires on.
type Week uint8

const (
	Last Week = iota
	First
	Second
	Third
	Fourth
)

func (w Week) String() string {
	switch w {
	case Last:
		return "last"
	case First:
		return "first"
	case Second:
		return "second"
	case Third:
		return "third"
	case Fourth:
		return "fourth"
	default:
		return fmt.Sprintf("week(%d)", uint8(w))
	}
}

// Month is a zero based month, January is 0.
type Month uint8

const (
	January Month = iota
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

func (m Month) String() string {
	if m > December {
		return fmt.Sprintf("month(%d)", uint8(m))
	}
	return time.Month(m + 1).String()
}

// Rule is a recurring calendar instant such as "last Sunday of March at
// 01:00". Hour and Minute are wall clock time in the zone's standard time
// for start rules and in daylight time for end rules. OffsetMinutes is the
// daylight saving shift that applies once the rule has fired.
type Rule struct {
	Week          Week
	Weekday       time.Weekday
	Month         Month
	Hour          uint8
	Minute        uint8
	OffsetMinutes int16
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s of %s %02d:%02d (%+d min)",
		r.Week, r.Weekday, r.Month, r.Hour, r.Minute, r.OffsetMinutes)
}

// Clamp resets every out of range field to its minimum valid value.
func (r Rule) Clamp() Rule {
	if r.Week > Fourth {
		r.Week = Last
	}
	if r.Weekday > time.Saturday || r.Weekday < time.Sunday {
		r.Weekday = time.Sunday
	}
	if r.Month > December {
		r.Month = January
	}
	if r.Hour > 23 {
		r.Hour = 0
	}
	if r.Minute > 59 {
		r.Minute = 0
	}
	return r
}

// ResolveRuleInstant returns the wall clock instant, as seconds since 1970,
// at which r fires in the given calendar year.
//
// Last rules take the first matching weekday of the following month and
// step back one week. December rolls over into January of the next year.
func ResolveRuleInstant(r Rule, year int) int64 {
	r = r.Clamp()
	yearIndex := year - calendar.EpochYear
	month := int(r.Month)
	week := int(r.Week)

	if r.Week == Last {
		month++
		if month > int(December) {
			month = int(January)
			yearIndex++
		}
		week = 1
	}

	t := calendar.Compose(yearIndex, month, 1, int(r.Hour), int(r.Minute), 0)
	first := calendar.Weekday(t)
	t += int64(7*(week-1)+(int(r.Weekday)-first+7)%7) * calendar.SecsPerDay

	if r.Week == Last {
		t -= 7 * calendar.SecsPerDay
	}
	return t
}

// Window is the daylight saving period of one calendar year in UTC.
type Window struct {
	Year  int
	Start int64
	End   int64
}

// Northern reports whether the window lies inside one calendar year. A
// southern window starts late in the year and wraps over New Year.
func (w Window) Northern() bool {
	return w.Start < w.End
}

// Contains reports whether daylight saving is in effect at t. An empty
// window (Start == End) never contains anything.
func (w Window) Contains(t int64) bool {
	switch {
	case w.Start < w.End:
		return t >= w.Start && t < w.End
	case w.Start > w.End:
		return t < w.End || t >= w.Start
	default:
		return false
	}
}
