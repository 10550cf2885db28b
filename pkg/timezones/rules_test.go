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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func wall(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).Unix()
}

func TestResolveRuleInstant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule Rule
		year int
		want int64
	}{
		{
			name: "last sunday of march",
			rule: Rule{Week: Last, Weekday: time.Sunday, Month: March, Hour: 1},
			year: 2024,
			want: wall(2024, time.March, 31, 1, 0),
		},
		{
			name: "last sunday of october",
			rule: Rule{Week: Last, Weekday: time.Sunday, Month: October, Hour: 2},
			year: 2024,
			want: wall(2024, time.October, 27, 2, 0),
		},
		{
			name: "second sunday of march",
			rule: Rule{Week: Second, Weekday: time.Sunday, Month: March, Hour: 2},
			year: 2024,
			want: wall(2024, time.March, 10, 2, 0),
		},
		{
			name: "first sunday of november",
			rule: Rule{Week: First, Weekday: time.Sunday, Month: November, Hour: 2},
			year: 2024,
			want: wall(2024, time.November, 3, 2, 0),
		},
		{
			name: "first day of month matches weekday",
			rule: Rule{Week: First, Weekday: time.Monday, Month: April, Hour: 4, Minute: 30},
			year: 2024,
			want: wall(2024, time.April, 1, 4, 30),
		},
		{
			name: "fourth friday",
			rule: Rule{Week: Fourth, Weekday: time.Friday, Month: February},
			year: 2025,
			want: wall(2025, time.February, 28, 0, 0),
		},
		{
			name: "last sunday of december rolls into next year",
			rule: Rule{Week: Last, Weekday: time.Sunday, Month: December, Hour: 3},
			year: 2024,
			want: wall(2024, time.December, 29, 3, 0),
		},
		{
			name: "last saturday of february in leap year",
			rule: Rule{Week: Last, Weekday: time.Saturday, Month: February},
			year: 2020,
			want: wall(2020, time.February, 29, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ResolveRuleInstant(tt.rule, tt.year))
		})
	}
}

func TestRuleClamp(t *testing.T) {
	t.Parallel()

	r := Rule{Week: 9, Weekday: 12, Month: 14, Hour: 30, Minute: 75, OffsetMinutes: 60}.Clamp()
	assert.Equal(t, Rule{Week: Last, Weekday: time.Sunday, Month: January, OffsetMinutes: 60}, r)

	valid := Rule{Week: Third, Weekday: time.Tuesday, Month: June, Hour: 23, Minute: 59}
	assert.Equal(t, valid, valid.Clamp())
}

func TestRuleString(t *testing.T) {
	t.Parallel()

	r := Rule{Week: Last, Weekday: time.Sunday, Month: March, Hour: 1, OffsetMinutes: 60}
	assert.Equal(t, "last Sunday of March 01:00 (+60 min)", r.String())
	assert.Equal(t, "week(7)", Week(7).String())
	assert.Equal(t, "month(12)", Month(12).String())
}

func TestWindowContains(t *testing.T) {
	t.Parallel()

	northern := Window{Year: 2024, Start: 100, End: 200}
	assert.True(t, northern.Northern())
	assert.False(t, northern.Contains(99))
	assert.True(t, northern.Contains(100))
	assert.True(t, northern.Contains(199))
	assert.False(t, northern.Contains(200))

	southern := Window{Year: 2024, Start: 200, End: 100}
	assert.False(t, southern.Northern())
	assert.True(t, southern.Contains(99))
	assert.False(t, southern.Contains(100))
	assert.False(t, southern.Contains(199))
	assert.True(t, southern.Contains(200))

	empty := Window{Year: 2024, Start: 150, End: 150}
	assert.False(t, empty.Contains(150))
	assert.False(t, empty.Contains(0))
}
