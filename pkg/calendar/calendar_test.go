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

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    Datum
		want uint32
	}{
		{
			name: "base year midnight",
			d:    Datum{Year: 2000, Month: 1, Day: 1},
			want: 946684800,
		},
		{
			name: "london dst start 2024",
			d:    Datum{Year: 2024, Month: 3, Day: 31, Hour: 1},
			want: 1711846800,
		},
		{
			name: "two digit year",
			d:    Datum{Year: 24, Month: 3, Day: 31, Hour: 1},
			want: 1711846800,
		},
		{
			name: "leap day",
			d:    Datum{Year: 2024, Month: 2, Day: 29, Hour: 12, Minute: 30, Second: 15},
			want: 1709209815,
		},
		{
			name: "end of century leap year",
			d:    Datum{Year: 2000, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
			want: 978307199,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ToSeconds(tt.d))
		})
	}
}

func TestToSecondsClampsFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		given Datum
		same  Datum
	}{
		{
			name:  "month above 12",
			given: Datum{Year: 2024, Month: 13, Day: 5, Hour: 4},
			same:  Datum{Year: 2024, Month: 1, Day: 5, Hour: 4},
		},
		{
			name:  "month zero",
			given: Datum{Year: 2024, Month: 0, Day: 5},
			same:  Datum{Year: 2024, Month: 1, Day: 5},
		},
		{
			name:  "day above 31",
			given: Datum{Year: 2024, Month: 6, Day: 32, Hour: 10},
			same:  Datum{Year: 2024, Month: 6, Day: 1, Hour: 10},
		},
		{
			name:  "day zero",
			given: Datum{Year: 2024, Month: 6, Day: 0},
			same:  Datum{Year: 2024, Month: 6, Day: 1},
		},
		{
			name:  "hour minute second",
			given: Datum{Year: 2024, Month: 6, Day: 2, Hour: 24, Minute: 60, Second: 99},
			same:  Datum{Year: 2024, Month: 6, Day: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, ToSeconds(tt.same), ToSeconds(tt.given))
		})
	}
}

func TestFromSeconds(t *testing.T) {
	t.Parallel()

	got := FromSeconds(1711846800)
	assert.Equal(t, Datum{
		Year:    2024,
		Month:   3,
		Day:     31,
		Weekday: 0,
		Hour:    1,
	}, got)

	assert.Equal(t, Datum{Year: 1970, Month: 1, Day: 1, Weekday: 4}, FromSeconds(0))
}

func TestFromSecondsMatchesStdlib(t *testing.T) {
	t.Parallel()

	for _, ts := range []uint32{0, 68169600, 951782400, 1709209815, 2147483647, 4102444799} {
		want := time.Unix(int64(ts), 0).UTC()
		got := FromSeconds(ts)
		assert.Equal(t, want.Year(), int(got.Year), "year for %d", ts)
		assert.Equal(t, int(want.Month()), int(got.Month), "month for %d", ts)
		assert.Equal(t, want.Day(), int(got.Day), "day for %d", ts)
		assert.Equal(t, int(want.Weekday()), int(got.Weekday), "weekday for %d", ts)
		assert.Equal(t, want.Hour(), int(got.Hour), "hour for %d", ts)
	}
}

func TestYearIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, YearIndex(0))
	assert.Equal(t, 0, YearIndex(-5))
	assert.Equal(t, 29, YearIndex(946684799))
	assert.Equal(t, 30, YearIndex(946684800))
	assert.Equal(t, 54, YearIndex(1711846800))
}

func TestDatumYearIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 54, Datum{Year: 2024}.YearIndex())
	assert.Equal(t, 54, Datum{Year: 24}.YearIndex())
	assert.Equal(t, 30, Datum{Year: 2000}.YearIndex())
}

func TestComposeAgreesWithToSeconds(t *testing.T) {
	t.Parallel()

	d := Datum{Year: 2031, Month: 10, Day: 26, Hour: 2, Minute: 15, Second: 9}
	got := Compose(d.YearIndex(), int(d.Month)-1, int(d.Day), int(d.Hour), int(d.Minute), int(d.Second))
	assert.Equal(t, int64(ToSeconds(d)), got)
}

func TestWeekday(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, Weekday(0))
	assert.Equal(t, 0, Weekday(1711846800))
	assert.Equal(t, 3, Weekday(-1))
}

func TestClampSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), ClampSeconds(-3600))
	assert.Equal(t, uint32(42), ClampSeconds(42))
	assert.Equal(t, ^uint32(0), ClampSeconds(1<<40))
}

func TestDatumString(t *testing.T) {
	t.Parallel()

	d := Datum{Year: 2024, Month: 3, Day: 1, Hour: 7, Minute: 5, Second: 9}
	assert.Equal(t, "2024-03-01 07:05:09", d.String())
}
