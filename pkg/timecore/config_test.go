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
	"errors"
	"testing"
	"time"

	"github.com/ElektorLabs/180662-mini-NTP-ESP32/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettersDoNotPersist(t *testing.T) {
	t.Parallel()

	a, store := newTestAuthority(t)
	berlin := zoneIndex(t, "Europe/Berlin")

	a.SetTimeZone(berlin)
	a.SetAutomaticDst(false)
	a.SetManualDst(true)
	a.SetDstOffsetIndex(3)
	a.SetGMTOffset(-90)
	a.SetTimeZoneOverride(true)

	assert.Equal(t, berlin, a.TimeZone())
	assert.False(t, a.AutomaticDst())
	assert.True(t, a.ManualDst())
	assert.Equal(t, 3, a.DstOffsetIndex())
	assert.Equal(t, int32(-90), a.GMTOffset())
	assert.True(t, a.TimeZoneOverride())

	stored, err := store.TimecoreConfig()
	require.NoError(t, err)
	assert.Equal(t, datastore.DefaultTimecoreConfig(), stored)

	require.NoError(t, a.SaveConfig())
	stored, err = store.TimecoreConfig()
	require.NoError(t, err)
	assert.Equal(t, a.Config(), stored)
}

func TestSetterClampsIndexes(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	a.SetTimeZone(9999)
	assert.Equal(t, 0, a.TimeZone())
	a.SetTimeZone(-4)
	assert.Equal(t, 0, a.TimeZone())

	a.SetDstOffsetIndex(12)
	assert.Equal(t, 2, a.DstOffsetIndex())
}

func TestLoadConfigRestoresSaved(t *testing.T) {
	t.Parallel()

	a, store := newTestAuthority(t)
	tokyo := zoneIndex(t, "Asia/Tokyo")
	a.SetTimeZone(tokyo)
	require.NoError(t, a.SaveConfig())

	a.SetTimeZone(0)
	require.NoError(t, a.LoadConfig())
	assert.Equal(t, tokyo, a.TimeZone())
	assert.Equal(t, "Asia/Tokyo", a.Status().TimeZone)

	// a second authority on the same store picks up the saved zone
	b := New(store)
	assert.Equal(t, tokyo, b.TimeZone())
}

func TestTimeZoneChangeRecomputesWindow(t *testing.T) {
	t.Parallel()

	a, _ := newTestAuthority(t)
	require.True(t, a.OfferUTC(utcAt(2024, time.July, 1, 12, 0), NetworkTime))
	london := a.DstWindow()

	a.SetTimeZone(zoneIndex(t, "America/New_York"))
	ny := a.DstWindow()
	assert.NotEqual(t, london, ny)
	assert.Equal(t, int64(utcAt(2024, time.March, 10, 7, 0)), ny.Start)
}

func TestLoadConfigHealsCorruptRecord(t *testing.T) {
	t.Parallel()

	m := datastore.NewMemoryMedium(datastore.DefaultCapacity)
	store, err := datastore.NewStore(m)
	require.NoError(t, err)
	require.NoError(t, store.SetTimecoreConfig(datastore.TimecoreConfig{TimeZone: 5, DstOffsetIndex: 2}))
	m.SetByte(datastore.RegionTimecore.Addr, 0x77)

	a := New(store)
	assert.Equal(t, datastore.DefaultTimecoreConfig(), a.Config())
}

func TestSaveConfigReportsCommitFailure(t *testing.T) {
	t.Parallel()

	m := datastore.NewMemoryMedium(datastore.DefaultCapacity)
	store, err := datastore.NewStore(m)
	require.NoError(t, err)
	a := New(store)

	boom := errors.New("flash busy")
	m.CommitErr = boom
	assert.ErrorIs(t, a.SaveConfig(), boom)

	// defaults still apply when the heal cannot be persisted
	m.SetByte(datastore.RegionTimecore.Addr, 0x01)
	err = a.LoadConfig()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, datastore.DefaultTimecoreConfig(), a.Config())
}
