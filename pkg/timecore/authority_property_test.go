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

import (
	"testing"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/calendar"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/timezones"
	"pgregory.net/rapid"
)

func propertyAuthority(t *rapid.T) *Authority {
	store, err := datastore.NewStore(datastore.NewMemoryMedium(datastore.DefaultCapacity))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return New(store)
}

// arbitrationModel tracks what the authority should be doing.
type arbitrationModel struct {
	utc     uint32
	degrade int
	master  Priority
}

// TestPropertyArbitrationMatchesModel drives random offers and ticks and
// compares the authority with a direct model of the rules.
func TestPropertyArbitrationMatchesModel(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := propertyAuthority(t)
		model := arbitrationModel{degrade: DegradeTicks}

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := range steps {
			if rapid.Bool().Draw(t, "offer") {
				p := Priority(rapid.IntRange(0, int(UserDefined)).Draw(t, "priority"))
				utc := rapid.Uint32().Draw(t, "utc")

				want := p >= model.master
				if got := a.OfferUTC(utc, p); got != want {
					t.Fatalf("step %d: offer %v with master %v returned %v", i, p, model.master, got)
				}
				if want {
					model.utc = utc
					if p != UserDefined {
						model.master = p
						model.degrade = DegradeTicks
					}
				}
			} else {
				n := rapid.IntRange(1, 2*DegradeTicks).Draw(t, "ticks")
				for range n {
					a.Tick()
					model.utc++
					model.degrade--
					if model.degrade == 0 {
						if model.master > None {
							model.master--
						}
						model.degrade = DegradeTicks
					}
				}
			}

			if a.UTC() != model.utc || a.Master() != model.master {
				t.Fatalf("step %d: authority %d/%v, model %d/%v",
					i, a.UTC(), a.Master(), model.utc, model.master)
			}
			if a.Master() == UserDefined {
				t.Fatalf("step %d: user defined became master", i)
			}
		}
	})
}

// TestPropertyLocalRoundTrip verifies a local time offered by the user reads
// back unchanged outside the ambiguous hour after a DST transition.
func TestPropertyLocalRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		a := propertyAuthority(t)
		a.SetTimeZone(rapid.IntRange(0, timezones.Count()-1).Draw(t, "zone"))

		utc := uint32(rapid.Int64Range(
			calendar.Compose(31, 0, 2, 0, 0, 0),
			calendar.Compose(126, 11, 30, 0, 0, 0),
		).Draw(t, "utc"))
		a.OfferUTC(utc, UserDefined)

		w := a.DstWindow()
		margin := int64(2 * calendar.SecsPerHour)
		for _, edge := range []int64{w.Start, w.End} {
			if d := int64(utc) - edge; d > -margin && d < margin {
				t.Skip("too close to a DST transition")
			}
		}

		local := a.LocalCalendar()
		if !a.OfferLocal(local) {
			t.Fatalf("user offer rejected")
		}
		if a.UTC() != utc {
			t.Fatalf("local %v mapped back to %d, want %d", local, a.UTC(), utc)
		}
	})
}
